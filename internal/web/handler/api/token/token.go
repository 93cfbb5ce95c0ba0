// Package token issues API bearer tokens to admin accounts.
package token

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/web/handler"
)

// Path is the token endpoint.
const Path = handler.APIPath + "/auth/token"

// Request holds the credentials exchanged for a token.
type Request struct {
	Username string `json:"username"  form:"username"  validate:"required"`
	Password string `json:"password"  form:"password"  validate:"required"`
	TOTPCode string `json:"totp_code" form:"totp_code"`
}

// Response carries the issued token.
type Response struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service is the token handler service.
type Service struct {
	cfg    *config.Config
	local  *auth.LocalProvider
	tokens *auth.TokenIssuer
	now    func() time.Time
}

// Handler is the token handler.
var Handler = Service{}

// Init registers the route. Tokens are only issued to local accounts.
func (s *Service) Init(app *fiber.App, cfg *config.Config, local *auth.LocalProvider, tokens *auth.TokenIssuer) {
	if app == nil || cfg == nil || local == nil || tokens == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.local = local
	s.tokens = tokens
	s.now = time.Now

	app.Post(Path, s.Post)
}

// Post exchanges credentials for a bearer token.
func (s *Service) Post(c *fiber.Ctx) error {
	if !s.cfg.Auth.LocalDB.Enabled {
		return handler.APIError(c, fiber.StatusForbidden, "local authentication is disabled")
	}

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return handler.APIError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if errs := handler.Validator.Validate(req); len(errs) > 0 {
		return handler.APIValidationError(c, errs)
	}

	user, err := s.local.Authenticate(req.Username, req.Password)

	switch {
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrUserAccountDisabled):
		log.Warn().Str("username", req.Username).Str("ip", c.IP()).Msg("token request rejected")
		return handler.APIError(c, fiber.StatusUnauthorized, "invalid username or password")
	case err != nil:
		log.Error().Err(err).Msg("failed to authenticate token request")
		return handler.APIError(c, fiber.StatusInternalServerError, "internal server error")
	}

	if user.TOTPEnabled() {
		if err = auth.VerifyTOTP(req.TOTPCode, user.TOTPSecret, s.now()); err != nil {
			return handler.APIError(c, fiber.StatusUnauthorized, auth.ErrInvalidTOTPCode.Error())
		}
	}

	raw, exp, err := s.tokens.Issue(user)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to issue token")
		return handler.APIError(c, fiber.StatusInternalServerError, "internal server error")
	}

	log.Info().Str("username", user.Username).Time("expires_at", exp).Msg("api token issued")

	return c.JSON(Response{Token: raw, TokenType: "Bearer", ExpiresAt: exp})
}
