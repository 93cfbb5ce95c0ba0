package daemon

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/content"
)

// seed creates the first admin account and fills an empty site with the built-in content.
func seed(ctx context.Context, cfg *config.Config, db *gorm.DB, fb *content.Fallback) {
	created, err := auth.NewLocalProvider(db).EnsureSeedAdmin(cfg.Auth.SeedAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create the initial admin account")
	}

	if created {
		log.Warn().Str("username", cfg.Auth.SeedAdmin.Username).
			Msg("created the initial admin account, change its password after the first login")
	}

	seeded, err := content.Seed(ctx, db, fb)
	if err != nil {
		log.Error().Err(err).Msg("failed to seed site content")
		return
	}

	if len(seeded) > 0 {
		log.Info().Strs("parts", seeded).Msg("seeded site content")
	}
}
