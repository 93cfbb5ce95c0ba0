// Package lead provides the admin lead manager.
package lead

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	controller "github.com/flameguard/flameguard-site/internal/db/controller/lead"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/export"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	leadapi "github.com/flameguard/flameguard-site/internal/web/handler/api/lead"
	"github.com/flameguard/flameguard-site/internal/web/handler/dashboard"
	"github.com/flameguard/flameguard-site/internal/web/navigation"
)

const (
	// Path is the lead manager.
	Path = handler.AdminPath + "/leads"

	// TemplateList is the filtered listing.
	TemplateList = "admin/lead/list"
	// TemplateForm is the lead detail/edit form.
	TemplateForm = "admin/lead/form"
)

// Form is the lead edit form.
type Form struct {
	Name     string `form:"name"     validate:"required,max=255"`
	Phone    string `form:"phone"    validate:"required,max=50"`
	Email    string `form:"email"    validate:"omitempty,email,max=255"`
	Company  string `form:"company"  validate:"max=255"`
	Message  string `form:"message"`
	Status   string `form:"status"   validate:"required"`
	Priority string `form:"priority" validate:"required"`
	Notes    string `form:"notes"`
}

func (f *Form) update() controller.Update {
	status := models.LeadStatus(f.Status)
	priority := models.LeadPriority(f.Priority)

	return controller.Update{
		Name:     &f.Name,
		Phone:    &f.Phone,
		Email:    &f.Email,
		Company:  &f.Company,
		Message:  &f.Message,
		Status:   &status,
		Priority: &priority,
		Notes:    &f.Notes,
	}
}

// Service is the lead manager handler service.
type Service struct {
	db     *gorm.DB
	writer *export.Writer
	now    func() time.Time
}

// Handler is the lead manager handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, db *gorm.DB, writer *export.Writer, authService *auth.Service) {
	if app == nil || db == nil || writer == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.writer = writer
	s.now = time.Now

	navigation.Register(navigation.MenuItem{
		Title: "Leads", URL: Path, Section: "leads", Page: "leads", Permission: auth.PermLeadsManage,
	})

	manage := auth.RequirePermission(authService, auth.PermLeadsManage)

	app.Get(Path, manage, s.List)
	app.Post(Path+"/export", auth.RequirePermission(authService, auth.PermExport), s.Export)
	app.Get(Path+"/:id", manage, s.Edit)
	app.Post(Path+"/:id", manage, s.Update)
	app.Post(Path+"/:id/delete", manage, s.Delete)
}

func listNav() *navigation.Context {
	return navigation.NewContext("Leads", "leads", "leads").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Leads", Path, true)
}

// List shows the filtered, paginated leads with the overall statistics.
func (s *Service) List(c *fiber.Ctx) error {
	data := fiber.Map{
		"Navigation": listNav(),
		"Statuses":   models.LeadStatuses,
		"Priorities": models.LeadPriorities,
		"Query": fiber.Map{
			"Status":   c.Query("status"),
			"Priority": c.Query("priority"),
			"Search":   c.Query("search"),
			"From":     c.Query("from"),
			"To":       c.Query("to"),
		},
		"Saved": c.Query("saved") != "",
	}

	f, err := leadapi.ParseFilter(c)
	if err != nil {
		data["Error"] = err.Error()
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, data, handler.BaseLayout)
	}

	page, err := controller.List(c.UserContext(), s.db, f)
	if err != nil {
		log.Error().Err(err).Msg("failed to list leads")

		data["Error"] = "Failed to load leads"

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, data, handler.BaseLayout)
	}

	stats, err := controller.Overview(c.UserContext(), s.db, s.now())
	if err != nil {
		log.Error().Err(err).Msg("failed to compute lead statistics")

		data["Error"] = "Failed to load lead statistics"

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, data, handler.BaseLayout)
	}

	data["Page"] = page
	data["Stats"] = stats
	data["HasPrev"] = page.Page > 1
	data["HasNext"] = page.Page < page.TotalPages
	data["PrevURL"] = pageURL(c, page.Page-1)
	data["NextURL"] = pageURL(c, page.Page+1)
	data["FilterQuery"] = filterQuery(c).Encode()

	return c.Render(TemplateList, data, handler.BaseLayout)
}

// filterQuery returns the filter parameters of the request without paging.
func filterQuery(c *fiber.Ctx) url.Values {
	q := url.Values{}

	for _, k := range []string{"status", "priority", "search", "from", "to", "page_size"} {
		if v := strings.TrimSpace(c.Query(k)); v != "" {
			q.Set(k, v)
		}
	}

	return q
}

func pageURL(c *fiber.Ctx, page int) string {
	q := filterQuery(c)
	q.Set("page", strconv.Itoa(page))

	return Path + "?" + q.Encode()
}

func (s *Service) renderForm(c *fiber.Ctx, status int, l *models.Lead, errMsg string) error {
	id := strconv.FormatUint(l.ID, 10)

	nav := navigation.NewContext("Lead #"+id, "leads", "leads").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Leads", Path, false).
		AddBreadcrumb("#"+id, Path+"/"+id, true)

	return c.Status(status).Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"Lead":       l,
		"Statuses":   models.LeadStatuses,
		"Priorities": models.LeadPriorities,
		"Error":      errMsg,
	}, handler.BaseLayout)
}

// Edit shows one lead.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return c.Redirect(Path)
	}

	l, err := controller.Get(c.UserContext(), s.db, id)
	if errors.Is(err, controller.ErrNotFound) {
		return c.Redirect(Path)
	}

	if err != nil {
		log.Error().Err(err).Uint64("id", id).Msg("failed to load lead")
		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Failed to load lead",
		}, handler.BaseLayout)
	}

	return s.renderForm(c, fiber.StatusOK, l, "")
}

// Update saves the manager's changes.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return c.Redirect(Path)
	}

	var form Form
	if err = c.BodyParser(&form); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, &models.Lead{ID: id}, "Invalid form data")
	}

	edited := &models.Lead{
		ID: id, Name: form.Name, Phone: form.Phone, Email: form.Email, Company: form.Company,
		Message: form.Message, Status: models.LeadStatus(form.Status),
		Priority: models.LeadPriority(form.Priority), Notes: form.Notes,
	}

	if errs := handler.Validator.Validate(form); len(errs) > 0 {
		return s.renderForm(c, fiber.StatusBadRequest, edited, handler.ValidationMessage(errs))
	}

	_, err = controller.Apply(c.UserContext(), s.db, id, form.update())

	switch {
	case errors.Is(err, controller.ErrNotFound):
		return c.Redirect(Path)
	case errors.Is(err, controller.ErrInvalidStatus), errors.Is(err, controller.ErrInvalidPriority),
		errors.Is(err, controller.ErrContactRequired):
		return s.renderForm(c, fiber.StatusBadRequest, edited, err.Error())
	case err != nil:
		log.Error().Err(err).Uint64("id", id).Msg("failed to update lead")
		return s.renderForm(c, fiber.StatusInternalServerError, edited, "Failed to save lead")
	}

	log.Info().Uint64("id", id).Str("status", form.Status).Str("priority", form.Priority).Msg("lead updated")

	return c.Redirect(Path + "?saved=1")
}

// Delete removes a lead.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return c.Redirect(Path)
	}

	if err = controller.Delete(c.UserContext(), s.db, id); err != nil && !errors.Is(err, controller.ErrNotFound) {
		log.Error().Err(err).Uint64("id", id).Msg("failed to delete lead")
		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Failed to delete lead",
		}, handler.BaseLayout)
	}

	log.Info().Uint64("id", id).Msg("lead deleted")

	return c.Redirect(Path + "?saved=1")
}

// Export writes a CSV report of the leads matching the current filters and redirects to its download URL.
func (s *Service) Export(c *fiber.Ctx) error {
	f, err := leadapi.ParseFilter(c)
	if err != nil {
		return c.Redirect(Path)
	}

	leads, err := controller.All(c.UserContext(), s.db, f)
	if err == nil {
		var report *export.Report

		report, err = s.writer.Leads(leads)
		if err == nil {
			log.Info().Str("report", report.Name).Int("rows", report.Rows).Msg("lead report exported")
			return c.Redirect(report.URL)
		}
	}

	log.Error().Err(err).Msg("failed to export leads")

	return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
		"Navigation": listNav(),
		"Error":      "Failed to export leads",
	}, handler.BaseLayout)
}
