// Package dashboard provides the admin landing page with lead statistics and content counts.
package dashboard

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/controller/lead"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	"github.com/flameguard/flameguard-site/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	// RecentLeads is the number of newest leads shown.
	RecentLeads = 5

	defaultTimeout = 10 * time.Second
)

// Counter reports the size of one content type.
type Counter interface {
	Label() string
	Count(ctx context.Context) (int64, error)
}

// ContentCount is one row of the content table.
type ContentCount struct {
	Label string
	Count int64
}

// Data represents the complete dashboard data.
type Data struct {
	Leads   *lead.Stats
	Recent  []models.Lead
	Content []ContentCount
}

// Service is the dashboard handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	counters []Counter
	now      func() time.Time
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, counters ...Counter) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.counters = counters
	s.now = time.Now

	navigation.Register(navigation.MenuItem{
		Title: "Dashboard", URL: Path, Section: "dashboard", Page: "dashboard", Permission: auth.PermDashboardView,
	})

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermDashboardView),
		s.Get,
	)
}

// Load collects the dashboard data.
func (s *Service) Load(ctx context.Context) (*Data, error) {
	stats, err := lead.Overview(ctx, s.db, s.now())
	if err != nil {
		return nil, err
	}

	recent, err := lead.List(ctx, s.db, lead.Filter{PageSize: RecentLeads})
	if err != nil {
		return nil, err
	}

	data := &Data{
		Leads:   stats,
		Recent:  recent.Items,
		Content: make([]ContentCount, 0, len(s.counters)),
	}

	for _, c := range s.counters {
		n, err := c.Count(ctx)
		if err != nil {
			return nil, err
		}

		data.Content = append(data.Content, ContentCount{Label: c.Label(), Count: n})
	}

	return data, nil
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Dashboard", "dashboard", "dashboard").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Dashboard", Path, true)

	ctx, cancel := context.WithTimeout(c.UserContext(), defaultTimeout)
	defer cancel()

	data, err := s.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load dashboard data")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load dashboard data",
		}, handler.BaseLayout)
	}

	log.Debug().
		Int64("leads_total", data.Leads.Total).
		Int64("leads_today", data.Leads.Today).
		Int("content_types", len(data.Content)).
		Msg("dashboard data loaded")

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
		"Statuses":   models.LeadStatuses,
		"Priorities": models.LeadPriorities,
	}, handler.BaseLayout)
}
