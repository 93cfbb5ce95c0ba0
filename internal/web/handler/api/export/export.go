// Package export serves the lead report endpoint.
package export

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	controller "github.com/flameguard/flameguard-site/internal/db/controller/lead"
	"github.com/flameguard/flameguard-site/internal/export"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	leadapi "github.com/flameguard/flameguard-site/internal/web/handler/api/lead"
)

// Path is the export endpoint.
const Path = handler.APIPath + "/export"

// Service is the export handler service.
type Service struct {
	db     *gorm.DB
	writer *export.Writer
}

// Handler is the export handler.
var Handler = Service{}

// Init registers the route.
func (s *Service) Init(app *fiber.App, db *gorm.DB, writer *export.Writer, authService *auth.Service) {
	if app == nil || db == nil || writer == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.writer = writer

	app.Post(Path, auth.RequirePermission(authService, auth.PermExport), s.Post)
}

// Post writes a CSV report of the leads matching the query filters and answers 201 with its download URL.
func (s *Service) Post(c *fiber.Ctx) error {
	f, err := leadapi.ParseFilter(c)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	leads, err := controller.All(c.UserContext(), s.db, f)
	if err != nil {
		log.Error().Err(err).Msg("failed to load leads for export")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to load leads")
	}

	report, err := s.writer.Leads(leads)
	if err != nil {
		log.Error().Err(err).Msg("failed to write lead report")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to write report")
	}

	log.Info().Str("report", report.Name).Int("rows", report.Rows).Msg("lead report exported")

	return c.Status(fiber.StatusCreated).JSON(report)
}
