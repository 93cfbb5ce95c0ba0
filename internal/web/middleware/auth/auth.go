package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/session"
)

// DashboardPath is where authenticated users visiting the login page are sent.
const DashboardPath = "/dashboard"

// Config configures the middleware.
type Config struct {
	// Tokens verifies bearer tokens. Nil disables bearer authentication.
	Tokens *auth.TokenIssuer
	// Users loads the account a bearer token refers to.
	Users *auth.LocalProvider
}

// New returns the authentication middleware.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		originalURL := strings.ToLower(c.OriginalURL())
		if strings.HasPrefix(originalURL, "/static") {
			return c.Next()
		}

		user := fromSession(c)
		if user == nil {
			user = fromBearer(c, cfg)
		}

		if user != nil {
			c.Locals(auth.LocalsUser, user)

			if IsLoginPage(c) {
				return c.Redirect(DashboardPath)
			}
		}

		return c.Next()
	}
}

func fromSession(c *fiber.Ctx) *models.User {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return nil
	}

	sessData := new(session.Data)
	if err := sessData.Read(sessionID); err != nil {
		return nil
	}

	if !sessData.Authenticated() {
		return nil
	}

	return &sessData.User
}

func fromBearer(c *fiber.Ctx, cfg Config) *models.User {
	if cfg.Tokens == nil || cfg.Users == nil {
		return nil
	}

	header := c.Get(fiber.HeaderAuthorization)

	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return nil
	}

	claims, err := cfg.Tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		log.Debug().Err(err).Str("ip", c.IP()).Msg("rejected bearer token")
		return nil
	}

	id, _ := claims.UserID()

	user, err := cfg.Users.GetUserByID(id)
	if err != nil || !user.Active {
		return nil
	}

	return user
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())
	return originalURL == auth.LoginPath || strings.HasPrefix(originalURL, auth.LoginPath+"?") ||
		strings.HasPrefix(originalURL, auth.LoginPath+"/")
}
