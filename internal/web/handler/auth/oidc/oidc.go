package oidc

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	"github.com/flameguard/flameguard-site/internal/web/handler/login"
	"github.com/flameguard/flameguard-site/internal/web/session"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = handler.RootPath + "auth/oidc/login"

	// CallbackPath is the path for OIDC callback.
	CallbackPath = handler.RootPath + "auth/oidc/callback"

	// LogoutPath is the path for OIDC logout.
	LogoutPath = handler.RootPath + "auth/oidc/logout"

	stateTTL        = 5 * time.Minute
	cleanupInterval = time.Minute

	msgUnavailable = "OIDC authentication is not available"
	msgInternal    = "Internal server error"
)

// Service is the OIDC handler service.
type Service struct {
	cfg          *config.Config
	db           *gorm.DB
	local        *auth.LocalProvider
	oidcProvider *auth.OIDCProvider
	states       *auth.StateStore
}

// Handler is the OIDC handler.
var Handler = Service{}

// Init initializes the OIDC handler. Routes are only registered when the provider is reachable;
// ctx bounds provider discovery and the state cleanup loop.
func (s *Service) Init(ctx context.Context, app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.local = auth.NewLocalProvider(db)
	s.states = auth.NewStateStore(stateTTL)

	if !cfg.Auth.OIDC.Enabled {
		log.Info().Msg("OIDC authentication is disabled by configuration")
		return
	}

	oidcProvider, err := auth.NewOIDCProvider(ctx, auth.OIDCConfigFrom(cfg.Auth.OIDC), db)
	if err != nil {
		if errors.Is(err, auth.ErrOIDCDisabled) {
			log.Info().Msg("OIDC authentication is disabled by configuration")
		} else {
			log.Warn().Err(err).Msg("failed to initialize OIDC provider - OIDC authentication will be disabled")
		}

		return
	}

	s.oidcProvider = oidcProvider

	log.Info().Msg("OIDC authentication provider initialized")

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)
	app.Get(LogoutPath, s.Logout)

	go s.states.RunCleanup(ctx, cleanupInterval)
}

// Login initiates the OIDC login flow.
func (s *Service) Login(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString(msgUnavailable)
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate state token")
		return c.Status(fiber.StatusInternalServerError).SendString(msgInternal)
	}

	s.states.Add(state)

	return c.Redirect(s.oidcProvider.GetAuthURL(state))
}

// Callback handles the OIDC callback.
func (s *Service) Callback(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString(msgUnavailable)
	}

	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		log.Error().Msg("missing code or state in OIDC callback")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid callback parameters")
	}

	if !s.states.Consume(state) {
		log.Error().Str("state", state).Msg("invalid or expired state token")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state token")
	}

	user, idToken, err := s.oidcProvider.HandleCallback(c.UserContext(), code)
	if err != nil {
		log.Error().Err(err).Msg("OIDC authentication failed")
		return c.Status(fiber.StatusUnauthorized).SendString("Authentication failed")
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return c.Status(fiber.StatusInternalServerError).SendString(msgInternal)
	}

	userSession := &session.Data{
		User:    *user,
		IDToken: idToken,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Status(fiber.StatusInternalServerError).SendString(msgInternal)
	}

	session.SetCookie(c, sessionID, s.cfg.Webserver.Session.ExpiryTime, s.cfg.DevMode)
	s.local.TouchLogin(user.ID)

	log.Info().Str("username", user.Username).Msg("user logged in via OIDC")

	return c.Redirect(login.DashboardPath)
}

// Logout ends the local session and, when the provider supports it, the provider session.
func (s *Service) Logout(c *fiber.Ctx) error {
	var idToken string

	if sess, err := session.FromRequest(c); err == nil {
		idToken = sess.IDToken
	}

	if err := session.Delete(c.Cookies(session.CookieName)); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}

	session.ClearCookie(c, s.cfg.DevMode)

	if s.oidcProvider != nil {
		if logoutURL := s.oidcProvider.GetLogoutURL(idToken, s.cfg.Webserver.URL); logoutURL != "" {
			return c.Redirect(logoutURL)
		}
	}

	return c.Redirect(login.Path)
}
