package main

import (
	"os"

	"github.com/flameguard/flameguard-site/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
