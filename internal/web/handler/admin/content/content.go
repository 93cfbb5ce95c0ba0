// Package content provides the admin editors of the ordered content types.
//
// One generic Editor serves every type with the same pages:
//
//	GET  /admin/content/<name>             listing with drag-and-drop ordering
//	GET  /admin/content/<name>/new         creation form
//	POST /admin/content/<name>             create
//	GET  /admin/content/<name>/:id/edit    edit form
//	POST /admin/content/<name>/:id         update
//	POST /admin/content/<name>/:id/delete  delete
//	POST /admin/content/<name>/reorder     renumber the whole list in one request
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	repo "github.com/flameguard/flameguard-site/internal/db/controller/content"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	"github.com/flameguard/flameguard-site/internal/web/handler/api/resource"
	"github.com/flameguard/flameguard-site/internal/web/handler/dashboard"
	"github.com/flameguard/flameguard-site/internal/web/navigation"
)

const (
	// BasePath prefixes every content editor.
	BasePath = handler.AdminPath + "/content"

	// TemplateList is the listing template.
	TemplateList = "admin/content/list"
	// TemplateForm is the create/edit form template.
	TemplateForm = "admin/content/form"

	section = "content"
)

// Field input types understood by the form template.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldURL      = "url"
	FieldNumber   = "number"
	FieldCheckbox = "checkbox"
)

// Field describes one form input. Name is the form and JSON key of the model field.
type Field struct {
	Name  string
	Label string
	Type  string
	// Upload adds a file picker that fills the field with the URL returned by the upload endpoint.
	Upload bool
}

// Editor serves the admin pages of one content type.
type Editor[T any, P repo.Row[T]] struct {
	// Name is the URL segment, e.g. "products".
	Name string
	// Title is the human readable name shown in menus and headings.
	Title string
	// Fields are the editable fields in form order.
	Fields []Field
	// Columns name the fields shown in the listing.
	Columns []string

	repo *repo.Repo[T, P]
}

// Path returns the base path of the editor.
func (e *Editor[T, P]) Path() string {
	return BasePath + "/" + e.Name
}

// Init registers the routes.
func (e *Editor[T, P]) Init(app *fiber.App, db *gorm.DB, authService *auth.Service) {
	if app == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	e.repo = repo.New[T, P](db)

	navigation.Register(navigation.MenuItem{
		Title: e.Title, URL: e.Path(), Section: section, Page: e.Name, Permission: auth.PermContentEdit,
	})

	app.Route(e.Path(), func(router fiber.Router) {
		router.Use(auth.RequirePermission(authService, auth.PermContentEdit))
		router.Get(handler.RouterRootPath, e.List)
		router.Get("/new", e.New)
		router.Post(handler.RouterRootPath, e.Create)
		router.Post("/reorder", e.Reorder)
		router.Get("/:id/edit", e.Edit)
		router.Post("/:id", e.Update)
		router.Post("/:id/delete", e.Delete)
	})
}

func (e *Editor[T, P]) nav(page, url string) *navigation.Context {
	nav := navigation.NewContext(e.Title, section, e.Name).
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Content", "#", false)

	if page == "" {
		return nav.AddBreadcrumb(e.Title, e.Path(), true)
	}

	return nav.AddBreadcrumb(e.Title, e.Path(), false).AddBreadcrumb(page, url, true)
}

// Values exposes an item to the templates keyed by its JSON field names.
func Values(item any) map[string]any {
	out := make(map[string]any)

	b, err := json.Marshal(item)
	if err != nil {
		return out
	}

	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	_ = d.Decode(&out)

	return out
}

func (e *Editor[T, P]) listData(c *fiber.Ctx, errMsg string) fiber.Map {
	data := fiber.Map{
		"Navigation": e.nav("", ""),
		"Editor":     e,
		"Saved":      c.Query("saved") != "",
		"Error":      errMsg,
	}

	items, err := e.repo.List(c.UserContext(), false)
	if err != nil {
		log.Error().Err(err).Str("content", e.Name).Msg("failed to list content")
		data["Error"] = "Failed to load " + e.Title

		return data
	}

	rows := make([]map[string]any, 0, len(items))
	for i := range items {
		rows = append(rows, Values(&items[i]))
	}

	data["Items"] = rows

	return data
}

// List shows every row, hidden ones included.
func (e *Editor[T, P]) List(c *fiber.Ctx) error {
	data := e.listData(c, "")
	if data["Items"] == nil {
		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, data, handler.BaseLayout)
	}

	return c.Render(TemplateList, data, handler.BaseLayout)
}

func (e *Editor[T, P]) renderForm(c *fiber.Ctx, status int, item *T, id uint64, errMsg string) error {
	page, url, action := "New", e.Path()+"/new", e.Path()
	if id != 0 {
		page = "Edit"
		url = e.Path() + "/" + strconv.FormatUint(id, 10) + "/edit"
		action = e.Path() + "/" + strconv.FormatUint(id, 10)
	}

	return c.Status(status).Render(TemplateForm, fiber.Map{
		"Navigation": e.nav(page, url),
		"Editor":     e,
		"Values":     Values(item),
		"IsCreate":   id == 0,
		"Action":     action,
		"Error":      errMsg,
	}, handler.BaseLayout)
}

// New shows the creation form. New rows are visible and go to the end of the list.
func (e *Editor[T, P]) New(c *fiber.Ctx) error {
	item := new(T)
	row := P(item).Row()
	row.IsActive = true

	if n, err := e.repo.Count(c.UserContext()); err == nil {
		row.SortOrder = int(n) + 1
	}

	return e.renderForm(c, fiber.StatusOK, item, 0, "")
}

func (e *Editor[T, P]) parse(c *fiber.Ctx) (*T, string) {
	item := new(T)
	if err := c.BodyParser(item); err != nil {
		return item, "Invalid form data"
	}

	if errs := handler.Validator.Validate(item); len(errs) > 0 {
		return item, handler.ValidationMessage(errs)
	}

	return item, ""
}

// Create stores a new row.
func (e *Editor[T, P]) Create(c *fiber.Ctx) error {
	item, msg := e.parse(c)
	if msg != "" {
		return e.renderForm(c, fiber.StatusBadRequest, item, 0, msg)
	}

	if err := e.repo.Create(c.UserContext(), item); err != nil {
		log.Error().Err(err).Str("content", e.Name).Msg("failed to create content")
		return e.renderForm(c, fiber.StatusInternalServerError, item, 0, "Failed to save: "+err.Error())
	}

	log.Info().Str("content", e.Name).Uint64("id", P(item).Row().ID).Msg("content created")

	return c.Redirect(e.Path() + "?saved=1")
}

// Edit shows the form of an existing row.
func (e *Editor[T, P]) Edit(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return c.Redirect(e.Path())
	}

	item, err := e.repo.Get(c.UserContext(), id)
	if errors.Is(err, repo.ErrNotFound) {
		return c.Redirect(e.Path())
	}

	if err != nil {
		log.Error().Err(err).Str("content", e.Name).Uint64("id", id).Msg("failed to load content")
		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, e.listData(c, "Failed to load item"),
			handler.BaseLayout)
	}

	return e.renderForm(c, fiber.StatusOK, item, id, "")
}

// Update saves an existing row.
func (e *Editor[T, P]) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return c.Redirect(e.Path())
	}

	item, msg := e.parse(c)
	if msg != "" {
		return e.renderForm(c, fiber.StatusBadRequest, item, id, msg)
	}

	err = e.repo.Update(c.UserContext(), id, item)
	if errors.Is(err, repo.ErrNotFound) {
		return c.Redirect(e.Path())
	}

	if err != nil {
		log.Error().Err(err).Str("content", e.Name).Uint64("id", id).Msg("failed to update content")
		return e.renderForm(c, fiber.StatusInternalServerError, item, id, "Failed to save: "+err.Error())
	}

	return c.Redirect(e.Path() + "?saved=1")
}

// Delete removes a row.
func (e *Editor[T, P]) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return c.Redirect(e.Path())
	}

	err = e.repo.Delete(c.UserContext(), id)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		log.Error().Err(err).Str("content", e.Name).Uint64("id", id).Msg("failed to delete content")
		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, e.listData(c, "Failed to delete item"),
			handler.BaseLayout)
	}

	log.Info().Str("content", e.Name).Uint64("id", id).Msg("content deleted")

	return c.Redirect(e.Path() + "?saved=1")
}

// Reorder takes the complete new order as repeated "ids" form values or a JSON {"ids": [...]} body.
// JSON requests get the assigned positions back, form posts are redirected to the listing.
func (e *Editor[T, P]) Reorder(c *fiber.Ctx) error {
	isJSON := c.Is("json")

	var (
		ids []uint64
		err error
	)

	if isJSON {
		var req resource.ReorderRequest
		if err = c.BodyParser(&req); err == nil {
			ids = req.IDs
		}
	} else {
		raw := make([]string, 0)
		for _, v := range c.Request().PostArgs().PeekMulti("ids") {
			raw = append(raw, string(v))
		}

		ids, err = resource.ParseIDs(raw)
	}

	var positions []repo.Position
	if err == nil {
		positions, err = e.repo.Reorder(c.UserContext(), ids)
	}

	if err != nil {
		log.Warn().Err(err).Str("content", e.Name).Msg("reorder rejected")

		if isJSON {
			return handler.APIError(c, fiber.StatusBadRequest, err.Error())
		}

		return c.Status(fiber.StatusBadRequest).Render(TemplateList, e.listData(c, "Failed to reorder: "+err.Error()),
			handler.BaseLayout)
	}

	log.Info().Str("content", e.Name).Int("count", len(positions)).Msg("content reordered")

	if isJSON {
		return c.JSON(positions)
	}

	return c.Redirect(e.Path() + "?saved=1")
}

// Registry holds the editors of the site.
type Registry struct {
	Hero           *Editor[models.Hero, *models.Hero]
	About          *Editor[models.AboutItem, *models.AboutItem]
	Products       *Editor[models.Product, *models.Product]
	Videos         *Editor[models.Video, *models.Video]
	Documents      *Editor[models.Document, *models.Document]
	Navigation     *Editor[models.NavigationItem, *models.NavigationItem]
	ProductModals  *Editor[models.ProductModal, *models.ProductModal]
	TechnicalSpecs *Editor[models.TechnicalSpec, *models.TechnicalSpec]
}

var (
	fieldTitle       = Field{Name: "title", Label: "Title", Type: FieldText}
	fieldDescription = Field{Name: "description", Label: "Description", Type: FieldTextarea}
	fieldImage       = Field{Name: "image_url", Label: "Image", Type: FieldURL, Upload: true}
	fieldSortOrder   = Field{Name: "sort_order", Label: "Sort order", Type: FieldNumber}
	fieldActive      = Field{Name: "is_active", Label: "Visible on the site", Type: FieldCheckbox}
)

// Handler holds the content editors of the admin panel.
var Handler = Registry{
	Hero: &Editor[models.Hero, *models.Hero]{
		Name: "hero", Title: "Hero",
		Fields: []Field{
			fieldTitle,
			{Name: "subtitle", Label: "Subtitle", Type: FieldText},
			fieldDescription,
			{Name: "button_text", Label: "Button text", Type: FieldText},
			{Name: "button_link", Label: "Button link", Type: FieldText},
			{Name: "background_url", Label: "Background", Type: FieldURL, Upload: true},
			fieldSortOrder, fieldActive,
		},
		Columns: []string{"title", "subtitle"},
	},
	About: &Editor[models.AboutItem, *models.AboutItem]{
		Name: "about", Title: "About",
		Fields:  []Field{fieldTitle, fieldDescription, fieldImage, fieldSortOrder, fieldActive},
		Columns: []string{"title"},
	},
	Products: &Editor[models.Product, *models.Product]{
		Name: "products", Title: "Products",
		Fields: []Field{
			fieldTitle, fieldDescription, fieldImage,
			{Name: "link", Label: "Link", Type: FieldText},
			fieldSortOrder, fieldActive,
		},
		Columns: []string{"title", "link"},
	},
	Videos: &Editor[models.Video, *models.Video]{
		Name: "videos", Title: "Videos",
		Fields: []Field{
			fieldTitle, fieldDescription,
			{Name: "video_url", Label: "Video", Type: FieldURL, Upload: true},
			{Name: "thumbnail_url", Label: "Thumbnail", Type: FieldURL, Upload: true},
			fieldSortOrder, fieldActive,
		},
		Columns: []string{"title", "video_url"},
	},
	Documents: &Editor[models.Document, *models.Document]{
		Name: "documents", Title: "Documents",
		Fields: []Field{
			fieldTitle, fieldDescription,
			{Name: "file_url", Label: "File", Type: FieldURL, Upload: true},
			{Name: "file_type", Label: "File type", Type: FieldText},
			{Name: "file_size", Label: "File size (bytes)", Type: FieldNumber},
			fieldSortOrder, fieldActive,
		},
		Columns: []string{"title", "file_type"},
	},
	Navigation: &Editor[models.NavigationItem, *models.NavigationItem]{
		Name: "navigation", Title: "Navigation",
		Fields: []Field{
			{Name: "label", Label: "Label", Type: FieldText},
			{Name: "url", Label: "URL", Type: FieldText},
			fieldSortOrder, fieldActive,
		},
		Columns: []string{"label", "url"},
	},
	ProductModals: &Editor[models.ProductModal, *models.ProductModal]{
		Name: "product-modals", Title: "Product modals",
		Fields: []Field{
			{Name: "area_id", Label: "Hotspot area", Type: FieldText},
			fieldTitle, fieldDescription, fieldImage,
			{Name: "position_x", Label: "Position X (%)", Type: FieldNumber},
			{Name: "position_y", Label: "Position Y (%)", Type: FieldNumber},
			{Name: "width", Label: "Width (px)", Type: FieldNumber},
			fieldSortOrder, fieldActive,
		},
		Columns: []string{"area_id", "title"},
	},
	TechnicalSpecs: &Editor[models.TechnicalSpec, *models.TechnicalSpec]{
		Name: "technical-specs", Title: "Technical specs",
		Fields: []Field{
			{Name: "product_id", Label: "Product ID", Type: FieldNumber},
			{Name: "name", Label: "Name", Type: FieldText},
			{Name: "value", Label: "Value", Type: FieldText},
			{Name: "unit", Label: "Unit", Type: FieldText},
			fieldSortOrder, fieldActive,
		},
		Columns: []string{"product_id", "name", "value", "unit"},
	},
}

// Init registers every editor.
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
