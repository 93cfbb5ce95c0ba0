package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flameguard/flameguard-site/internal/config"
)

func init() { //nolint: gochecknoinits
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "toml", "output format: toml or json")

	configCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	dumpFormat string

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration after environment overrides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.ReadConfig(configPath)
			if err != nil {
				return err //nolint:wrapcheck
			}

			var out string

			switch dumpFormat {
			case "toml":
				out, err = config.DumpConfig(&c)
			case "json":
				out, err = config.DumpConfigJSON(&c)
			default:
				return fmt.Errorf("unknown format %q", dumpFormat)
			}

			if err != nil {
				return err //nolint:wrapcheck
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err //nolint:wrapcheck
		},
	}
)
