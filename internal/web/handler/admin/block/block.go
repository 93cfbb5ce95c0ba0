// Package block provides the admin editors of the one-of-a-kind site blocks.
package block

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/db/controller/singleton"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	"github.com/flameguard/flameguard-site/internal/web/handler/admin/content"
	"github.com/flameguard/flameguard-site/internal/web/handler/dashboard"
	"github.com/flameguard/flameguard-site/internal/web/navigation"
)

const (
	// BasePath prefixes every block editor.
	BasePath = handler.AdminPath + "/blocks"

	// TemplateForm renders a flat block form.
	TemplateForm = "admin/block/form"
	// TemplateScroll renders the scroll section form with its text blocks.
	TemplateScroll = "admin/block/scroll"

	section = "blocks"
)

// Editor serves the form of one block.
type Editor[T any] struct {
	// Name is the URL segment, e.g. "footer".
	Name  string
	Title string
	Kind  singleton.Kind[T]
	// Fields drive the generic form; empty when Template renders the form itself.
	Fields   []content.Field
	Template string
	// Parse reads the submitted form; nil uses the form tags of T.
	Parse func(c *fiber.Ctx) (*T, error)

	db *gorm.DB
}

// Path returns the editor path.
func (e *Editor[T]) Path() string {
	return BasePath + "/" + e.Name
}

func (e *Editor[T]) template() string {
	if e.Template != "" {
		return e.Template
	}

	return TemplateForm
}

// Init registers the routes.
func (e *Editor[T]) Init(app *fiber.App, db *gorm.DB, authService *auth.Service) {
	if app == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	e.db = db

	navigation.Register(navigation.MenuItem{
		Title: e.Title, URL: e.Path(), Section: section, Page: e.Name, Permission: auth.PermContentEdit,
	})

	edit := auth.RequirePermission(authService, auth.PermContentEdit)

	app.Get(e.Path(), edit, e.Get)
	app.Post(e.Path(), edit, e.Post)
	app.Post(e.Path()+"/delete", edit, e.Delete)
}

func (e *Editor[T]) render(c *fiber.Ctx, status int, v *T, configured bool, errMsg string) error {
	nav := navigation.NewContext(e.Title, section, e.Name).
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Blocks", "#", false).
		AddBreadcrumb(e.Title, e.Path(), true)

	return c.Status(status).Render(e.template(), fiber.Map{
		"Navigation": nav,
		"Editor":     e,
		"Block":      v,
		"Values":     content.Values(v),
		"MaxBlocks":  models.MaxTextBlocks,
		"Configured": configured,
		"Saved":      c.Query("saved") != "",
		"Error":      errMsg,
	}, handler.BaseLayout)
}

// Get shows the form, empty when the block was never saved.
func (e *Editor[T]) Get(c *fiber.Ctx) error {
	v, err := e.Kind.Load(c.UserContext(), e.db)

	switch {
	case errors.Is(err, singleton.ErrNotFound):
		return e.render(c, fiber.StatusOK, new(T), false, "")
	case err != nil:
		log.Error().Err(err).Str("block", e.Name).Msg("failed to load block")
		return e.render(c, fiber.StatusInternalServerError, new(T), false, "Failed to load "+e.Title)
	}

	return e.render(c, fiber.StatusOK, v, true, "")
}

func (e *Editor[T]) parse(c *fiber.Ctx) (*T, error) {
	if e.Parse != nil {
		return e.Parse(c)
	}

	v := new(T)

	return v, c.BodyParser(v)
}

// Post validates and stores the block.
func (e *Editor[T]) Post(c *fiber.Ctx) error {
	v, err := e.parse(c)
	if err != nil {
		return e.render(c, fiber.StatusBadRequest, v, true, "Invalid form data")
	}

	err = e.Kind.Save(c.UserContext(), e.db, v)
	if errs := handler.ValidationErrors(err); len(errs) > 0 {
		return e.render(c, fiber.StatusBadRequest, v, true, handler.ValidationMessage(errs))
	}

	if err != nil {
		log.Error().Err(err).Str("block", e.Name).Msg("failed to save block")
		return e.render(c, fiber.StatusInternalServerError, v, true, "Failed to save "+e.Title)
	}

	log.Info().Str("block", e.Name).Msg("block saved")

	return c.Redirect(e.Path() + "?saved=1")
}

// Delete removes the block; the public site falls back to its built-in content.
func (e *Editor[T]) Delete(c *fiber.Ctx) error {
	err := e.Kind.Delete(c.UserContext(), e.db)
	if err != nil && !errors.Is(err, singleton.ErrNotFound) {
		log.Error().Err(err).Str("block", e.Name).Msg("failed to delete block")
		return e.render(c, fiber.StatusInternalServerError, new(T), true, "Failed to delete "+e.Title)
	}

	return c.Redirect(e.Path())
}

// ParseScrollSection reads the scroll section form. Text blocks come as parallel repeated
// block_title and block_description values; rows with both empty are dropped.
func ParseScrollSection(c *fiber.Ctx) (*models.ScrollSection, error) {
	s := &models.ScrollSection{
		Title:    strings.TrimSpace(c.FormValue("title")),
		Subtitle: strings.TrimSpace(c.FormValue("subtitle")),
		VideoURL: strings.TrimSpace(c.FormValue("video_url")),
	}

	args := c.Request().PostArgs()
	titles := args.PeekMulti("block_title")
	descriptions := args.PeekMulti("block_description")

	for i, t := range titles {
		var d string
		if i < len(descriptions) {
			d = string(descriptions[i])
		}

		b := models.TextBlock{Title: strings.TrimSpace(string(t)), Description: strings.TrimSpace(d)}
		if b.Title == "" && b.Description == "" {
			continue
		}

		s.TextBlocks = append(s.TextBlocks, b)
	}

	return s, nil
}

// Registry holds the block editors.
type Registry struct {
	Footer        *Editor[models.FooterSettings]
	Requisites    *Editor[models.Requisites]
	ScrollSection *Editor[models.ScrollSection]
}

// Handler holds the block editors of the admin panel.
var Handler = Registry{
	Footer: &Editor[models.FooterSettings]{
		Name: "footer", Title: "Footer", Kind: singleton.Footer,
		Fields: []content.Field{
			{Name: "company_name", Label: "Company name", Type: content.FieldText},
			{Name: "address", Label: "Address", Type: content.FieldTextarea},
			{Name: "phone", Label: "Phone", Type: content.FieldText},
			{Name: "email", Label: "Email", Type: content.FieldText},
			{Name: "working_hours", Label: "Working hours", Type: content.FieldText},
			{Name: "copyright", Label: "Copyright", Type: content.FieldText},
			{Name: "telegram", Label: "Telegram", Type: content.FieldText},
			{Name: "whatsapp", Label: "WhatsApp", Type: content.FieldText},
			{Name: "youtube", Label: "YouTube", Type: content.FieldText},
			{Name: "vk", Label: "VK", Type: content.FieldText},
		},
	},
	Requisites: &Editor[models.Requisites]{
		Name: "requisites", Title: "Requisites", Kind: singleton.Requisites,
		Fields: []content.Field{
			{Name: "full_name", Label: "Full name", Type: content.FieldText},
			{Name: "short_name", Label: "Short name", Type: content.FieldText},
			{Name: "inn", Label: "INN", Type: content.FieldText},
			{Name: "kpp", Label: "KPP", Type: content.FieldText},
			{Name: "ogrn", Label: "OGRN", Type: content.FieldText},
			{Name: "legal_address", Label: "Legal address", Type: content.FieldTextarea},
			{Name: "postal_address", Label: "Postal address", Type: content.FieldTextarea},
			{Name: "bank_name", Label: "Bank", Type: content.FieldText},
			{Name: "bik", Label: "BIK", Type: content.FieldText},
			{Name: "account", Label: "Account", Type: content.FieldText},
			{Name: "corr_account", Label: "Correspondent account", Type: content.FieldText},
		},
	},
	ScrollSection: &Editor[models.ScrollSection]{
		Name: "scroll-section", Title: "Scroll section", Kind: singleton.ScrollSection,
		Template: TemplateScroll,
		Parse:    ParseScrollSection,
	},
}

// Init registers every block editor.
func (r *Registry) Init(app *fiber.App, db *gorm.DB, authService *auth.Service) {
	r.Footer.Init(app, db, authService)
	r.Requisites.Init(app, db, authService)
	r.ScrollSection.Init(app, db, authService)
}
