// Package lead serves the contact form endpoint and the lead manager API.
package lead

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	controller "github.com/flameguard/flameguard-site/internal/db/controller/lead"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/metrics"
	"github.com/flameguard/flameguard-site/internal/web/handler"
)

const (
	// Path is the lead endpoint.
	Path = handler.APIPath + "/leads"

	// StatsPath is the lead statistics endpoint.
	StatsPath = Path + "/stats/overview"

	// DateLayout is the format of the from/to query parameters.
	DateLayout = "2006-01-02"

	// SourceAPI marks leads submitted through the JSON endpoint without a source.
	SourceAPI = "api"
)

// SubmitRequest is a contact form submission.
type SubmitRequest struct {
	Name    string `json:"name"    form:"name"    validate:"required,max=255"`
	Phone   string `json:"phone"   form:"phone"   validate:"required,max=50"`
	Email   string `json:"email"   form:"email"   validate:"omitempty,email,max=255"`
	Company string `json:"company" form:"company" validate:"max=255"`
	Message string `json:"message" form:"message" validate:"max=5000"`
	Consent bool   `json:"consent" form:"consent"`
	Source  string `json:"source"  form:"source"  validate:"max=50"`
}

// ValidationError carries the field errors of a rejected submission.
type ValidationError struct {
	Fields []handler.ErrorResponse
}

func (e *ValidationError) Error() string {
	return handler.ValidationMessage(e.Fields)
}

// Submit validates and stores a submission. It fails with controller.ErrConsentRequired
// or *ValidationError without writing anything when the input is rejected.
func Submit(ctx context.Context, db *gorm.DB, req SubmitRequest) (*models.Lead, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)

	if !req.Consent {
		metrics.LeadRejected("consent")
		return nil, controller.ErrConsentRequired
	}

	if errs := handler.Validator.Validate(req); len(errs) > 0 {
		metrics.LeadRejected("validation")
		return nil, &ValidationError{Fields: errs}
	}

	l := &models.Lead{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Company: strings.TrimSpace(req.Company),
		Message: strings.TrimSpace(req.Message),
		Consent: req.Consent,
		Source:  req.Source,
	}

	if err := controller.Create(ctx, db, l); err != nil {
		return nil, err
	}

	metrics.LeadSubmitted(l.Source)
	log.Info().Uint64("lead_id", l.ID).Str("source", l.Source).Msg("lead submitted")

	return l, nil
}

// ParseFilter reads the lead manager query parameters. The to date is inclusive.
func ParseFilter(c *fiber.Ctx) (controller.Filter, error) {
	f := controller.Filter{
		Status:   models.LeadStatus(c.Query("status")),
		Priority: models.LeadPriority(c.Query("priority")),
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", controller.DefaultPageSize),
	}

	if f.Status != "" && !f.Status.Valid() {
		return f, controller.ErrInvalidStatus
	}

	if f.Priority != "" && !f.Priority.Valid() {
		return f, controller.ErrInvalidPriority
	}

	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation(DateLayout, v, time.Local)
		if err != nil {
			return f, errors.New("from must be YYYY-MM-DD")
		}

		f.From = t
	}

	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation(DateLayout, v, time.Local)
		if err != nil {
			return f, errors.New("to must be YYYY-MM-DD")
		}

		f.To = t.AddDate(0, 0, 1)
	}

	f.Normalize()

	return f, nil
}

// Service is the lead API handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
	now func() time.Time
}

// Handler is the lead API handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.now = time.Now

	manage := auth.RequirePermission(authService, auth.PermLeadsManage)

	app.Post(Path, s.Create)
	app.Get(StatsPath, manage, s.Stats)
	app.Get(Path, manage, s.List)
	app.Get(Path+"/:id", manage, s.Get)
	app.Put(Path+"/:id", manage, s.Update)
	app.Patch(Path+"/:id", manage, s.Update)
	app.Delete(Path+"/:id", manage, s.Delete)
}

// Create accepts a public submission.
func (s *Service) Create(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Source == "" {
		req.Source = SourceAPI
	}

	l, err := Submit(c.UserContext(), s.db, req)

	var verr *ValidationError

	switch {
	case errors.Is(err, controller.ErrConsentRequired):
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &verr):
		return handler.APIValidationError(c, verr.Fields)
	case err != nil:
		log.Error().Err(err).Msg("failed to store lead")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to store request")
	}

	return c.Status(fiber.StatusCreated).JSON(l)
}

// List returns one page of leads.
func (s *Service) List(c *fiber.Ctx) error {
	f, err := ParseFilter(c)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	page, err := controller.List(c.UserContext(), s.db, f)
	if err != nil {
		log.Error().Err(err).Msg("failed to list leads")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to load leads")
	}

	return c.JSON(page)
}

// Stats returns the lead overview.
func (s *Service) Stats(c *fiber.Ctx) error {
	st, err := controller.Overview(c.UserContext(), s.db, s.now())
	if err != nil {
		log.Error().Err(err).Msg("failed to compute lead stats")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to load statistics")
	}

	return c.JSON(st)
}

// Get returns one lead.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	l, err := controller.Get(c.UserContext(), s.db, id)
	if errors.Is(err, controller.ErrNotFound) {
		return handler.APIError(c, fiber.StatusNotFound, err.Error())
	}

	if err != nil {
		log.Error().Err(err).Uint64("lead_id", id).Msg("failed to get lead")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to load lead")
	}

	return c.JSON(l)
}

// Update changes the status, priority, notes or contact fields of a lead.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	var u controller.Update
	if err = c.BodyParser(&u); err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if errs := handler.Validator.Validate(u); len(errs) > 0 {
		return handler.APIValidationError(c, errs)
	}

	l, err := controller.Apply(c.UserContext(), s.db, id, u)

	switch {
	case errors.Is(err, controller.ErrNotFound):
		return handler.APIError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, controller.ErrInvalidStatus), errors.Is(err, controller.ErrInvalidPriority),
		errors.Is(err, controller.ErrContactRequired):
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		log.Error().Err(err).Uint64("lead_id", id).Msg("failed to update lead")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to update lead")
	}

	return c.JSON(l)
}

// Delete removes a lead.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	}

	err = controller.Delete(c.UserContext(), s.db, id)
	if errors.Is(err, controller.ErrNotFound) {
		return handler.APIError(c, fiber.StatusNotFound, err.Error())
	}

	if err != nil {
		log.Error().Err(err).Uint64("lead_id", id).Msg("failed to delete lead")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to delete lead")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
