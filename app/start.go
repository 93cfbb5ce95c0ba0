package app

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/daemon"
	"github.com/flameguard/flameguard-site/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	startCmd.Flags().BoolVar(
		&browseStatic,
		"browse",
		false,
		"Enable static file browsing (for development purposes only)",
	)

	rootCmd.AddCommand(startCmd)
}

var (
	devMode      bool
	browseStatic bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the website and admin panel",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err //nolint:wrapcheck
			}

			if devMode {
				cfg.DevMode = true
			}

			if browseStatic {
				cfg.Webserver.BrowseStatic = true
			}

			if err = logger.Init(cfg.Log); err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			log.Info().Int("port", cfg.Webserver.Port).Bool("dev", cfg.DevMode).
				Str("db", cfg.DB.GormEngine).Msg("starting flameguard-site")

			d := daemon.New(&cfg)

			return d.Start()
		},
	}
)
