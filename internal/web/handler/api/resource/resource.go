// Package resource serves the JSON CRUD endpoints of the ordered content types.
//
// Every type gets the same routes under /api/<name>:
//
//	GET    /api/<name>          active rows by sort order, ?all=1 (editors) includes hidden rows
//	GET    /api/<name>/:id      one row, hidden rows only for editors
//	POST   /api/<name>          create
//	PUT    /api/<name>/:id      replace
//	DELETE /api/<name>/:id      delete
//	POST   /api/<name>/reorder  {"ids":[...]} renumbers sort_order 1..N in one transaction
package resource

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/db/controller/content"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/handler"
)

const requestTimeout = 10 * time.Second

// ReorderRequest is the body of the reorder endpoint.
type ReorderRequest struct {
	IDs []uint64 `json:"ids" form:"ids"`
}

// Service serves one content type.
type Service[T any, P content.Row[T]] struct {
	// Name is the URL segment of the type, e.g. "products".
	Name string
	// FilterParam optionally names a query parameter (and column) narrowing listings, e.g. "area_id".
	FilterParam string

	repo        *content.Repo[T, P]
	authService *auth.Service
}

// Path returns the base path of the endpoints.
func (s *Service[T, P]) Path() string {
	return handler.APIPath + "/" + s.Name
}

// Init registers the routes.
func (s *Service[T, P]) Init(app *fiber.App, db *gorm.DB, authService *auth.Service) {
	if app == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.repo = content.New[T, P](db)
	s.authService = authService

	edit := auth.RequirePermission(authService, auth.PermContentEdit)

	app.Route(s.Path(), func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.List)
		router.Post("/reorder", edit, s.Reorder)
		router.Get("/:id", s.Get)
		router.Post(handler.RouterRootPath, edit, s.Create)
		router.Put("/:id", edit, s.Update)
		router.Delete("/:id", edit, s.Delete)
	})
}

func (s *Service[T, P]) canEdit(c *fiber.Ctx) bool {
	return auth.HasPermissionInContext(c, s.authService, auth.PermContentEdit)
}

// List returns the rows of the type.
func (s *Service[T, P]) List(c *fiber.Ctx) error {
	activeOnly := true

	if c.QueryBool("all") {
		if auth.CurrentUser(c) == nil {
			return handler.APIError(c, fiber.StatusUnauthorized, "unauthorized")
		}

		if !s.canEdit(c) {
			return handler.APIError(c, fiber.StatusForbidden, "forbidden")
		}

		activeOnly = false
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var (
		items []T
		err   error
	)

	if v := c.Query(s.FilterParam); s.FilterParam != "" && v != "" {
		items, err = s.repo.ListBy(ctx, activeOnly, s.FilterParam, v)
	} else {
		items, err = s.repo.List(ctx, activeOnly)
	}

	if err != nil {
		log.Error().Err(err).Str("resource", s.Name).Msg("failed to list content")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to load "+s.Name)
	}

	return c.JSON(items)
}

// Get returns one row.
func (s *Service[T, P]) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	item, err := s.repo.Get(c.UserContext(), id)
	if errors.Is(err, content.ErrNotFound) {
		return handler.APIError(c, fiber.StatusNotFound, err.Error())
	}

	if err != nil {
		log.Error().Err(err).Str("resource", s.Name).Uint64("id", id).Msg("failed to get content")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to load "+s.Name)
	}

	if !P(item).Row().IsActive && !s.canEdit(c) {
		return handler.APIError(c, fiber.StatusNotFound, content.ErrNotFound.Error())
	}

	return c.JSON(item)
}

func (s *Service[T, P]) parse(c *fiber.Ctx) (*T, error) {
	item := new(T)
	if err := c.BodyParser(item); err != nil {
		return nil, handler.APIError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if errs := handler.Validator.Validate(item); len(errs) > 0 {
		return nil, handler.APIValidationError(c, errs)
	}

	return item, nil
}

// Create inserts a row and answers 201 with the stored row.
func (s *Service[T, P]) Create(c *fiber.Ctx) error {
	item, err := s.parse(c)
	if item == nil {
		return err
	}

	if err = s.repo.Create(c.UserContext(), item); err != nil {
		log.Error().Err(err).Str("resource", s.Name).Msg("failed to create content")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to create "+s.Name)
	}

	log.Info().Str("resource", s.Name).Uint64("id", P(item).Row().ID).Msg("content created")

	return c.Status(fiber.StatusCreated).JSON(item)
}

// Update replaces a row.
func (s *Service[T, P]) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	item, err := s.parse(c)
	if item == nil {
		return err
	}

	err = s.repo.Update(c.UserContext(), id, item)
	if errors.Is(err, content.ErrNotFound) {
		return handler.APIError(c, fiber.StatusNotFound, err.Error())
	}

	if err != nil {
		log.Error().Err(err).Str("resource", s.Name).Uint64("id", id).Msg("failed to update content")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to update "+s.Name)
	}

	return c.JSON(item)
}

// Delete removes a row and answers 204.
func (s *Service[T, P]) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	err = s.repo.Delete(c.UserContext(), id)
	if errors.Is(err, content.ErrNotFound) {
		return handler.APIError(c, fiber.StatusNotFound, err.Error())
	}

	if err != nil {
		log.Error().Err(err).Str("resource", s.Name).Uint64("id", id).Msg("failed to delete content")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to delete "+s.Name)
	}

	log.Info().Str("resource", s.Name).Uint64("id", id).Msg("content deleted")

	return c.SendStatus(fiber.StatusNoContent)
}

// Reorder renumbers the rows in the given order.
func (s *Service[T, P]) Reorder(c *fiber.Ctx) error {
	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, "invalid request body")
	}

	positions, err := s.repo.Reorder(c.UserContext(), req.IDs)

	switch {
	case errors.Is(err, content.ErrEmptyOrder), errors.Is(err, content.ErrDuplicateID),
		errors.Is(err, content.ErrUnknownID), errors.Is(err, content.ErrIncompleteOrder):
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		log.Error().Err(err).Str("resource", s.Name).Msg("failed to reorder content")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to reorder "+s.Name)
	}

	log.Info().Str("resource", s.Name).Int("count", len(positions)).Msg("content reordered")

	return c.JSON(positions)
}

// Counter is implemented by every registered type; the dashboard uses it.
type Counter interface {
	Label() string
	Count(ctx context.Context) (int64, error)
}

// Label returns the name of the type.
func (s *Service[T, P]) Label() string {
	return s.Name
}

// Count returns the number of stored rows.
func (s *Service[T, P]) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Registry holds the content endpoints of the site.
type Registry struct {
	Hero           *Service[models.Hero, *models.Hero]
	About          *Service[models.AboutItem, *models.AboutItem]
	Products       *Service[models.Product, *models.Product]
	Videos         *Service[models.Video, *models.Video]
	Documents      *Service[models.Document, *models.Document]
	Navigation     *Service[models.NavigationItem, *models.NavigationItem]
	ProductModals  *Service[models.ProductModal, *models.ProductModal]
	TechnicalSpecs *Service[models.TechnicalSpec, *models.TechnicalSpec]
}

// Handler is the content API of the site.
var Handler = Registry{
	Hero:           &Service[models.Hero, *models.Hero]{Name: "hero"},
	About:          &Service[models.AboutItem, *models.AboutItem]{Name: "about"},
	Products:       &Service[models.Product, *models.Product]{Name: "products"},
	Videos:         &Service[models.Video, *models.Video]{Name: "videos"},
	Documents:      &Service[models.Document, *models.Document]{Name: "documents"},
	Navigation:     &Service[models.NavigationItem, *models.NavigationItem]{Name: "navigation"},
	ProductModals:  &Service[models.ProductModal, *models.ProductModal]{Name: "product-modals", FilterParam: "area_id"},
	TechnicalSpecs: &Service[models.TechnicalSpec, *models.TechnicalSpec]{Name: "technical-specs", FilterParam: "product_id"},
}

// Init registers the routes of every type.
func (r *Registry) Init(app *fiber.App, db *gorm.DB, authService *auth.Service) {
	r.Hero.Init(app, db, authService)
	r.About.Init(app, db, authService)
	r.Products.Init(app, db, authService)
	r.Videos.Init(app, db, authService)
	r.Documents.Init(app, db, authService)
	r.Navigation.Init(app, db, authService)
	r.ProductModals.Init(app, db, authService)
	r.TechnicalSpecs.Init(app, db, authService)
}

// Counters returns the types in dashboard order.
func (r *Registry) Counters() []Counter {
	return []Counter{
		r.Hero, r.About, r.Products, r.Videos, r.Documents, r.Navigation, r.ProductModals, r.TechnicalSpecs,
	}
}

// ParseIDs converts string ids from a form submission.
func ParseIDs(raw []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(raw))

	for _, s := range raw {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			return nil, handler.ErrInvalidID
		}

		ids = append(ids, id)
	}

	return ids, nil
}
