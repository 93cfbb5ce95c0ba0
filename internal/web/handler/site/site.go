// Package site renders the public pages: home, documents, contacts and requisites.
package site

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/content"
	controller "github.com/flameguard/flameguard-site/internal/db/controller/lead"
	"github.com/flameguard/flameguard-site/internal/hotspot"
	"github.com/flameguard/flameguard-site/internal/scrollpin"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	leadapi "github.com/flameguard/flameguard-site/internal/web/handler/api/lead"
)

const (
	// HomePath is the landing page.
	HomePath = handler.RootPath
	// DocumentsPath lists the downloadable documents.
	DocumentsPath = handler.RootPath + "documents"
	// ContactsPath shows and accepts the contact form.
	ContactsPath = handler.RootPath + "contacts"
	// RequisitesPath shows the legal details.
	RequisitesPath = handler.RootPath + "requisites"

	// TemplateHome is the home page template.
	TemplateHome = "site/home"
	// TemplateDocuments is the documents page template.
	TemplateDocuments = "site/documents"
	// TemplateContacts is the contacts page template.
	TemplateContacts = "site/contacts"
	// TemplateRequisites is the requisites page template.
	TemplateRequisites = "site/requisites"

	// SourceContacts and SourceHome mark where a form submission came from.
	SourceContacts = "contacts"
	SourceHome     = "home"

	// SuccessMessage is shown after a lead was stored.
	SuccessMessage = "Thank you! We will contact you shortly."
)

// AboutGeometry is the nominal layout of the about section used for the server-side
// initial state; the browser replaces it with measured values.
var AboutGeometry = scrollpin.Geometry{TextHeight: 320, ItemHeight: 480, Gap: 64}

// ScrollData seeds the scroll-pin script of the about section.
type ScrollData struct {
	Initial       scrollpin.Decision
	ReleaseOffset float64
	Items         int
}

// Service is the public site handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	loader   *content.Loader
	resolver *hotspot.Resolver
}

// Handler is the public site handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, loader *content.Loader,
	resolver *hotspot.Resolver,
) {
	if app == nil || cfg == nil || db == nil || loader == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.loader = loader
	s.resolver = resolver

	app.Get(HomePath, s.Home)
	app.Get(DocumentsPath, s.Documents)
	app.Get(ContactsPath, s.Contacts)
	app.Post(ContactsPath, s.Submit)
	app.Get(RequisitesPath, s.Requisites)
}

func (s *Service) render(c *fiber.Ctx, status int, tpl string, page *content.Page, extra fiber.Map) error {
	if len(page.Failed) > 0 {
		log.Warn().Str("page", tpl).Str("sections", page.FailedNames()).Msg("page rendered with fallback content")
	}

	data := fiber.Map{
		"Title":     s.cfg.Title,
		"Page":      page,
		"PageError": page.Error(),
	}

	for k, v := range extra {
		data[k] = v
	}

	return c.Status(status).Render(tpl, data, handler.PublicLayout)
}

// Scroll returns the scroll-pin state of n about items before the visitor scrolls.
func Scroll(n int) ScrollData {
	m := scrollpin.Metrics{Items: make([]scrollpin.Rect, n)}

	return ScrollData{
		Initial:       scrollpin.Layout(scrollpin.State{}, m, AboutGeometry),
		ReleaseOffset: scrollpin.ReleaseOffset(n, AboutGeometry),
		Items:         n,
	}
}

// Home renders the landing page.
func (s *Service) Home(c *fiber.Ctx) error {
	page := s.loader.Home(c.UserContext())

	return s.render(c, fiber.StatusOK, TemplateHome, page, fiber.Map{
		"Scroll":         Scroll(len(page.About)),
		"HotspotEnabled": s.resolver.Enabled(),
		"HotspotImage":   s.cfg.Hotspot.ImagePath,
		"HotspotRegions": s.resolver.Regions(),
		"Form":           leadapi.SubmitRequest{Source: SourceHome},
	})
}

// Documents renders the documents page.
func (s *Service) Documents(c *fiber.Ctx) error {
	page := s.loader.Load(c.UserContext(), content.SectionNavigation, content.SectionDocuments, content.SectionFooter)

	return s.render(c, fiber.StatusOK, TemplateDocuments, page, nil)
}

// Requisites renders the legal details page.
func (s *Service) Requisites(c *fiber.Ctx) error {
	page := s.loader.Load(c.UserContext(), content.SectionNavigation, content.SectionRequisites, content.SectionFooter)

	return s.render(c, fiber.StatusOK, TemplateRequisites, page, nil)
}

func (s *Service) contactsPage(c *fiber.Ctx) *content.Page {
	return s.loader.Load(c.UserContext(), content.SectionNavigation, content.SectionFooter)
}

// Contacts renders the contact form.
func (s *Service) Contacts(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, TemplateContacts, s.contactsPage(c), fiber.Map{
		"Form": leadapi.SubmitRequest{Source: SourceContacts},
	})
}

// Submit stores a contact form submission. On success the form comes back empty with a
// confirmation; a rejected submission keeps the entered values and shows the reason.
func (s *Service) Submit(c *fiber.Ctx) error {
	var req leadapi.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return s.render(c, fiber.StatusBadRequest, TemplateContacts, s.contactsPage(c), fiber.Map{
			"Form":      leadapi.SubmitRequest{Source: SourceContacts},
			"FormError": "Invalid form data",
		})
	}

	req.Source = strings.TrimSpace(req.Source)
	if req.Source != SourceHome {
		req.Source = SourceContacts
	}

	_, err := leadapi.Submit(c.UserContext(), s.db, req)
	if err == nil {
		return s.render(c, fiber.StatusOK, TemplateContacts, s.contactsPage(c), fiber.Map{
			"Form":    leadapi.SubmitRequest{Source: req.Source},
			"Success": SuccessMessage,
		})
	}

	var verr *leadapi.ValidationError

	msg := "Failed to send the request, please try again later"
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, controller.ErrConsentRequired):
		msg, status = err.Error(), fiber.StatusBadRequest
	case errors.As(err, &verr):
		msg, status = verr.Error(), fiber.StatusBadRequest
	default:
		log.Error().Err(err).Msg("failed to store contact form submission")
	}

	return s.render(c, status, TemplateContacts, s.contactsPage(c), fiber.Map{
		"Form":      req,
		"FormError": msg,
	})
}
