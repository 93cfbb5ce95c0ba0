// Package upload serves the media and document upload endpoint.
package upload

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/metrics"
	"github.com/flameguard/flameguard-site/internal/upload"
	"github.com/flameguard/flameguard-site/internal/web/handler"
)

const (
	// Path is the upload endpoint.
	Path = handler.APIPath + "/upload"

	// FormField is the multipart field carrying the file.
	FormField = "file"
)

// Service is the upload handler service.
type Service struct {
	store *upload.Store
}

// Handler is the upload handler.
var Handler = Service{}

// Init registers the route.
func (s *Service) Init(app *fiber.App, store *upload.Store, authService *auth.Service) {
	if app == nil || store == nil {
		log.Fatal().Msg("app or upload store is nil")
		return
	}

	s.store = store

	app.Post(Path, auth.RequirePermission(authService, auth.PermUpload), s.Post)
}

// Post stores the uploaded file and answers 201 with its URL and size.
func (s *Service) Post(c *fiber.Ctx) error {
	fh, err := c.FormFile(FormField)
	if err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, "multipart field \""+FormField+"\" is missing")
	}

	f, err := s.store.Save(fh)

	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return handler.APIError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, upload.ErrEmptyFile), errors.Is(err, upload.ErrExtensionNotAllowed):
		return handler.APIError(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		log.Error().Err(err).Str("file", fh.Filename).Msg("failed to store upload")
		return handler.APIError(c, fiber.StatusInternalServerError, "failed to store file")
	}

	metrics.Uploaded(f.Size)

	user := auth.CurrentUser(c)
	log.Info().Str("file", f.Name).Str("original", f.OriginalName).Int64("size", f.Size).
		Str("user", user.Username).Msg("file uploaded")

	return c.Status(fiber.StatusCreated).JSON(f)
}
