// Package app implements the main application commands.
package app

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/flameguard/flameguard-site/internal/config"
)

var (
	configPath string // Path to the configuration directory
	envFile    string // Optional .env file loaded before the configuration

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:   "flameguard-site",
		Short: "flameguard-site serves the fire alarm company website and its admin panel",
		Long: `flameguard-site serves the public website of a fire alarm systems vendor,
the JSON API behind it and the admin panel used to edit content and process leads.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadEnv(envFile)
		},
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file loaded before the configuration")
}

// loadEnv reads an optional .env file. Variables already set in the environment win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err == nil {
		log.Debug().Str("file", path).Msg("loaded environment file")
	}

	return err //nolint:wrapcheck
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
