package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/content"
	"github.com/flameguard/flameguard-site/internal/export"
	"github.com/flameguard/flameguard-site/internal/hotspot"
	fiberlogger "github.com/flameguard/flameguard-site/internal/logger/adapter/fiber"
	"github.com/flameguard/flameguard-site/internal/metrics"
	"github.com/flameguard/flameguard-site/internal/upload"
	adminblock "github.com/flameguard/flameguard-site/internal/web/handler/admin/block"
	admincontent "github.com/flameguard/flameguard-site/internal/web/handler/admin/content"
	adminlead "github.com/flameguard/flameguard-site/internal/web/handler/admin/lead"
	adminuser "github.com/flameguard/flameguard-site/internal/web/handler/admin/user"
	apiblock "github.com/flameguard/flameguard-site/internal/web/handler/api/block"
	apiexport "github.com/flameguard/flameguard-site/internal/web/handler/api/export"
	apihotspot "github.com/flameguard/flameguard-site/internal/web/handler/api/hotspot"
	apilead "github.com/flameguard/flameguard-site/internal/web/handler/api/lead"
	"github.com/flameguard/flameguard-site/internal/web/handler/api/resource"
	"github.com/flameguard/flameguard-site/internal/web/handler/api/token"
	apiupload "github.com/flameguard/flameguard-site/internal/web/handler/api/upload"
	oidchandler "github.com/flameguard/flameguard-site/internal/web/handler/auth/oidc"
	"github.com/flameguard/flameguard-site/internal/web/handler/dashboard"
	"github.com/flameguard/flameguard-site/internal/web/handler/login"
	"github.com/flameguard/flameguard-site/internal/web/handler/logout"
	"github.com/flameguard/flameguard-site/internal/web/handler/site"
	authmw "github.com/flameguard/flameguard-site/internal/web/middleware/auth"
	"github.com/flameguard/flameguard-site/internal/web/navigation"
)

// CheckAlivePath answers load balancer health checks.
const CheckAlivePath = "/checkalive"

// Deps are the domain services shared by the handlers.
type Deps struct {
	Loader  *content.Loader
	Hotspot *hotspot.Resolver
	Uploads *upload.Store
	Exports *export.Writer
}

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan error, 1)

	s.alive.Store(true)

	go func() {
		err := s.App.Listen(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			doneFiber <- err
			return
		}

		doneFiber <- nil
	}()

	return <-doneFiber // wait for fiber to stop
}

// WaitShutdown waits for a termination signal and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// TemplateFuncs are the helpers available to every template.
func TemplateFuncs() map[string]interface{} {
	return map[string]interface{}{
		"iterate": func(count int) []int {
			result := make([]int, count)
			for i := range result {
				result[i] = i
			}

			return result
		},
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"menu": func(perms interface{}) []navigation.MenuItem {
			p, _ := perms.([]string)
			return navigation.Menu(p)
		},
		"can": func(perms interface{}, permission string) bool {
			p, _ := perms.([]string)
			for _, v := range p {
				if v == permission {
					return true
				}
			}

			return false
		},
		"bytes": func(n int64) string {
			if n <= 0 {
				return ""
			}

			return humanize.Bytes(uint64(n))
		},
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}

			return humanize.Time(t)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}

			return t.Format("2006-01-02 15:04")
		},
		// nl2br keeps the line breaks editors type into long texts.
		"nl2br": func(s string) template.HTML {
			return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>")) //nolint:gosec
		},
	}
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	httpFS := ViewsFS()
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFuncMap(TemplateFuncs())

	return templateEngine
}

// New creates a new web service with the given configuration.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, deps Deps) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if deps.Loader == nil || deps.Uploads == nil || deps.Exports == nil {
		panic("loader, upload store and export writer cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize:    8192,
			AppName:           "flameguard-site",
			CaseSensitive:     true,
			Prefork:           false,
			Immutable:         true,
			Views:             newTemplateEngine(cfg),
			PassLocalsToViews: true,
			BodyLimit:         int(deps.Uploads.MaxSize()) + 1<<20,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{Config: cfg.Log, CheckAliveURI: CheckAlivePath}))

	if cfg.Webserver.CookieEncryptionKey != "" {
		app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.Webserver.CookieEncryptionKey}))
	}

	if len(cfg.Webserver.AllowOrigins) > 0 {
		app.Use("/api", cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.Webserver.AllowOrigins, ","),
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowCredentials: false,
		}))
	}

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:   StaticFS(),
				Browse: cfg.Webserver.BrowseStatic,
				MaxAge: 3600,
			},
		),
	)

	app.Static(cfg.Upload.URLPrefix, deps.Uploads.Dir(), fiber.Static{MaxAge: 86400})

	authService := auth.NewService(db)

	// session and bearer authentication
	app.Use(authmw.New(authmw.Config{
		Tokens: auth.NewTokenIssuer(cfg.Auth.JWT),
		Users:  auth.NewLocalProvider(db),
	}))

	// Add permissions to fiber.Locals middleware (after auth)
	app.Use(auth.AddPermissionsToLocals(authService))

	// reports carry personal data
	app.Use(cfg.Export.URLPrefix, auth.RequirePermission(authService, auth.PermExport))
	app.Static(cfg.Export.URLPrefix, deps.Exports.Dir(), fiber.Static{Download: true})

	// init web service
	service := &Service{
		cfg:          cfg,
		App:          app,
		db:           db,
		authService:  authService,
		fastShutDown: cfg.DevMode,
	}

	app.Get(CheckAlivePath, service.checkAlive)
	metrics.Register(app)

	navigation.Reset()

	// init handlers (they register their own routes with permission checks)
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg)
	oidchandler.Handler.Init(ctx, app, cfg, db)

	counters := make([]dashboard.Counter, 0, 8)
	for _, c := range resource.Handler.Counters() {
		counters = append(counters, c)
	}

	dashboard.Handler.Init(app, cfg, db, authService, counters...)

	// REST API
	resource.Handler.Init(app, db, authService)
	apiblock.Handler.Init(app, db, authService)
	apilead.Handler.Init(app, cfg, db, authService)
	apiupload.Handler.Init(app, deps.Uploads, authService)
	apiexport.Handler.Init(app, db, deps.Exports, authService)
	token.Handler.Init(app, cfg, auth.NewLocalProvider(db), auth.NewTokenIssuer(cfg.Auth.JWT))
	apihotspot.Handler.Init(app, db, deps.Hotspot)

	// admin panel
	admincontent.Handler.Init(app, db, authService)
	adminblock.Handler.Init(app, db, authService)
	adminlead.Handler.Init(app, db, deps.Exports, authService)
	adminuser.Handler.Init(app, cfg, db, authService)

	// public site
	site.Handler.Init(app, cfg, db, deps.Loader, deps.Hotspot)

	return service
}
