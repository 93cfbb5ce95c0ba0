// Package daemon wires storage, sessions and the web service together.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/content"
	"github.com/flameguard/flameguard-site/internal/db/dsn"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/export"
	"github.com/flameguard/flameguard-site/internal/hotspot"
	gormlogger "github.com/flameguard/flameguard-site/internal/logger/adapter/gorm"
	"github.com/flameguard/flameguard-site/internal/upload"
	"github.com/flameguard/flameguard-site/internal/web"
	"github.com/flameguard/flameguard-site/internal/web/session"
)

const (
	slowQueryThreshold = 200 * time.Millisecond
	sessionGCInterval  = 10 * time.Minute
	reportMaxAge       = 24 * time.Hour
	reportPurgeEvery   = time.Hour
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
	exports    *export.Writer
	cancel     context.CancelFunc
}

// Start runs the web service until a termination signal shuts it down.
func (d *Daemon) Start() error {
	defer d.cancel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.purgeReports(ctx)
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

func (d *Daemon) purgeReports(ctx context.Context) {
	ticker := time.NewTicker(reportPurgeEvery)
	defer ticker.Stop()

	for {
		if n, err := d.exports.Purge(reportMaxAge); err != nil {
			log.Warn().Err(err).Msg("failed to purge old reports")
		} else if n > 0 {
			log.Info().Int("removed", n).Msg("purged old reports")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// OpenDB connects to the configured database engine.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.Create(cfg))
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite, "":
		path := dsn.Create(cfg)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownGormEngine, cfg.DB.GormEngine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.New(slowQueryThreshold)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if cfg.DB.GormEngine == config.EngineSQLite || cfg.DB.GormEngine == "" {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// sessionStorage picks the fiber session storage matching the database engine.
func sessionStorage(cfg *config.Config, db *gorm.DB) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.URI(cfg),
			Table:         "sessions",
			GCInterval:    sessionGCInterval,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.URI(cfg),
			Table:         "sessions",
			GCInterval:    sessionGCInterval,
		})
	default:
		return session.NewGormStorage(db, sessionGCInterval)
	}
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("engine", cfg.DB.GormEngine).Msg("failed to open database")
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	loader, err := content.NewLoader(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load fallback content")
	}

	ctx, cancel := context.WithCancel(context.Background())

	seed(ctx, cfg, db, loader.Fallback())

	session.Init(sessionStorage(cfg, db))

	regions := make([]hotspot.Region, 0, len(cfg.Hotspot.Regions))
	for _, r := range cfg.Hotspot.Regions {
		regions = append(regions, hotspot.Region{
			Color: r.Color, AreaID: r.AreaID, Name: r.Name, HoverImage: r.HoverImage,
		})
	}

	exports := export.New(cfg.Export)

	webService := web.New(ctx, cfg, db, web.Deps{
		Loader:  loader,
		Hotspot: hotspot.Load(cfg.Hotspot.MaskPath, regions),
		Uploads: upload.New(cfg.Upload),
		Exports: exports,
	})

	return &Daemon{
		cfg:        cfg,
		webService: webService,
		exports:    exports,
		cancel:     cancel,
	}
}
