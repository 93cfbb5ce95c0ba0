// Package hotspot answers pointer lookups on the products image map.
package hotspot

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/db/controller/content"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/hotspot"
	"github.com/flameguard/flameguard-site/internal/web/handler"
)

const (
	// Path is the hotspot lookup endpoint.
	Path = handler.APIPath + "/product-hotspot"

	// ActionHover only resolves the region.
	ActionHover = "hover"
	// ActionClick also returns the modals of the region.
	ActionClick = "click"
)

// Query is a pointer position on the displayed image.
type Query struct {
	X      float64 `query:"x"`
	Y      float64 `query:"y"`
	Width  float64 `query:"width"  validate:"gt=0"`
	Height float64 `query:"height" validate:"gt=0"`
	Action string  `query:"action" validate:"omitempty,oneof=hover click"`
}

// Response is the lookup result. Region is nil on a miss.
type Response struct {
	Enabled bool                  `json:"enabled"`
	Region  *hotspot.Region       `json:"region"`
	Cursor  string                `json:"cursor"`
	Modals  []models.ProductModal `json:"modals,omitempty"`
}

// Service is the hotspot handler service.
type Service struct {
	resolver *hotspot.Resolver
	modals   *content.Repo[models.ProductModal, *models.ProductModal]
}

// Handler is the hotspot handler.
var Handler = Service{}

// Init registers the route. A nil or disabled resolver answers every lookup with a miss.
func (s *Service) Init(app *fiber.App, db *gorm.DB, resolver *hotspot.Resolver) {
	if app == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.resolver = resolver
	s.modals = content.New[models.ProductModal](db)

	app.Get(Path, s.Get)
}

// Get resolves the region under the pointer.
func (s *Service) Get(c *fiber.Ctx) error {
	var q Query
	if err := c.QueryParser(&q); err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, "invalid query")
	}

	if errs := handler.Validator.Validate(q); len(errs) > 0 {
		return handler.APIValidationError(c, errs)
	}

	resp := Response{Enabled: s.resolver.Enabled(), Cursor: "default"}

	region, ok := s.resolver.Resolve(hotspot.Point{X: q.X, Y: q.Y}, hotspot.Size{Width: q.Width, Height: q.Height})
	if !ok {
		return c.JSON(resp)
	}

	resp.Region = &region
	resp.Cursor = "pointer"

	if q.Action == ActionClick {
		modals, err := s.modals.ListBy(c.UserContext(), true, "area_id", region.AreaID)
		if err != nil {
			log.Error().Err(err).Str("area_id", region.AreaID).Msg("failed to load product modals")
			return handler.APIError(c, fiber.StatusInternalServerError, "failed to load product details")
		}

		resp.Modals = modals
	}

	return c.JSON(resp)
}
