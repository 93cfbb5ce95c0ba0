// Package block serves the JSON endpoints of the one-of-a-kind site blocks
// (footer settings, requisites, scroll section) and the scroll section layout preview.
package block

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/db/controller/singleton"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/scrollpin"
	"github.com/flameguard/flameguard-site/internal/web/handler"
)

// Service serves GET, PUT and DELETE of one block.
type Service[T any] struct {
	// Name is the URL segment, e.g. "footer-settings".
	Name string
	Kind singleton.Kind[T]

	db *gorm.DB
}

// Path returns the endpoint path.
func (s *Service[T]) Path() string {
	return handler.APIPath + "/" + s.Name
}

// Init registers the routes.
func (s *Service[T]) Init(app *fiber.App, db *gorm.DB, authService *auth.Service) {
	if app == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db

	edit := auth.RequirePermission(authService, auth.PermContentEdit)

	app.Get(s.Path(), s.Get)
	app.Put(s.Path(), edit, s.Put)
	app.Delete(s.Path(), edit, s.Delete)
}

// Get returns the stored block, 404 when it was never saved.
func (s *Service[T]) Get(c *fiber.Ctx) error {
	v, err := s.Kind.Load(c.UserContext(), s.db)
	if errors.Is(err, singleton.ErrNotFound) {
		return handler.APIError(c, fiber.StatusNotFound, err.Error())
	}

	if err != nil {
		log.Error().Err(err).Str("block", s.Name).Msg("failed to load block")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to load "+s.Name)
	}

	return c.JSON(v)
}

// Put validates and stores the block.
func (s *Service[T]) Put(c *fiber.Ctx) error {
	v := new(T)
	if err := c.BodyParser(v); err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, "invalid request body")
	}

	err := s.Kind.Save(c.UserContext(), s.db, v)
	if errs := handler.ValidationErrors(err); len(errs) > 0 {
		return handler.APIValidationError(c, errs)
	}

	if err != nil {
		log.Error().Err(err).Str("block", s.Name).Msg("failed to save block")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to save "+s.Name)
	}

	log.Info().Str("block", s.Name).Msg("block saved")

	return c.JSON(v)
}

// Delete removes the block so the site shows its default content again.
func (s *Service[T]) Delete(c *fiber.Ctx) error {
	err := s.Kind.Delete(c.UserContext(), s.db)
	if errors.Is(err, singleton.ErrNotFound) {
		return handler.APIError(c, fiber.StatusNotFound, err.Error())
	}

	if err != nil {
		log.Error().Err(err).Str("block", s.Name).Msg("failed to delete block")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to delete "+s.Name)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LayoutRequest is one scroll tick of the scroll section.
type LayoutRequest struct {
	State    scrollpin.State    `json:"state"`
	Metrics  scrollpin.Metrics  `json:"metrics"`
	Geometry scrollpin.Geometry `json:"geometry"`
}

// LayoutResponse is the next state and the style to apply.
type LayoutResponse struct {
	State    scrollpin.State    `json:"state"`
	Decision scrollpin.Decision `json:"decision"`
}

// LayoutPath is the scroll section layout endpoint.
const LayoutPath = handler.APIPath + "/scroll-section/layout"

// Layout evaluates one scroll tick.
func Layout(c *fiber.Ctx) error {
	var req LayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Metrics.ViewportHeight <= 0 {
		return handler.APIError(c, fiber.StatusBadRequest, "viewport_height must be positive")
	}

	state, decision := scrollpin.Evaluate(req.State, req.Metrics, req.Geometry)

	return c.JSON(LayoutResponse{State: state, Decision: decision})
}

// Registry holds the block endpoints of the site.
type Registry struct {
	Footer        *Service[models.FooterSettings]
	Requisites    *Service[models.Requisites]
	ScrollSection *Service[models.ScrollSection]
}

// Handler is the block API of the site.
var Handler = Registry{
	Footer:        &Service[models.FooterSettings]{Name: "footer-settings", Kind: singleton.Footer},
	Requisites:    &Service[models.Requisites]{Name: "requisites", Kind: singleton.Requisites},
	ScrollSection: &Service[models.ScrollSection]{Name: "scroll-section", Kind: singleton.ScrollSection},
}

// Init registers every block and the layout endpoint.
func (r *Registry) Init(app *fiber.App, db *gorm.DB, authService *auth.Service) {
	app.Post(LayoutPath, Layout)

	r.Footer.Init(app, db, authService)
	r.Requisites.Init(app, db, authService)
	r.ScrollSection.Init(app, db, authService)
}
