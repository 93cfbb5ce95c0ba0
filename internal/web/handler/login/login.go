package login

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	"github.com/flameguard/flameguard-site/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = auth.LoginPath

	// TOTPPath is the second step of a login with a one-time code.
	TOTPPath = Path + "/totp"

	// DashboardPath is where a successful login lands.
	DashboardPath = handler.RootPath + "dashboard"

	// TemplateName is the login page template.
	TemplateName = "login"

	// TemplateTOTP is the one-time code page template.
	TemplateTOTP = "login_totp"

	authTypeLocal = "local"
	authTypeLDAP  = "ldap"
)

// Form is the submitted login form.
type Form struct {
	Username string `form:"username"  validate:"required,max=100"`
	Password string `form:"password"  validate:"required"`
	AuthType string `form:"auth_type"`
}

// Service is the login handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	local    *auth.LocalProvider
	ldapAuth *auth.LDAPProvider
	now      func() time.Time
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg
	s.local = auth.NewLocalProvider(db)
	s.now = time.Now

	if cfg.Auth.LDAP.Enabled {
		ldapProvider, err := auth.NewLDAPProvider(auth.LDAPConfigFrom(cfg.Auth.LDAP), db)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize LDAP provider - LDAP authentication will be disabled")
		} else {
			s.ldapAuth = ldapProvider
		}
	}

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
		router.Get("/totp", s.GetTOTP)
		router.Post("/totp", s.PostTOTP)
	})

	return nil
}

func (s *Service) viewData(errMsg string) fiber.Map {
	return fiber.Map{
		"Title":          s.cfg.Title,
		"LocalDBEnabled": s.cfg.Auth.LocalDB.Enabled,
		"LDAPEnabled":    s.cfg.Auth.LDAP.Enabled && s.ldapAuth != nil,
		"OIDCEnabled":    s.cfg.Auth.OIDC.Enabled,
		"Error":          errMsg,
	}
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render(TemplateName, s.viewData(""))
}

// pickAuthType resolves the requested login method against the configuration.
// An empty request picks local login when enabled, LDAP otherwise.
func (s *Service) pickAuthType(requested string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "":
		if s.cfg.Auth.LocalDB.Enabled {
			return authTypeLocal, nil
		}

		if s.cfg.Auth.LDAP.Enabled {
			return authTypeLDAP, nil
		}

		return "", ErrNoAuthMethod
	case authTypeLocal:
		if !s.cfg.Auth.LocalDB.Enabled {
			return "", ErrLocalAuthDisabled
		}

		return authTypeLocal, nil
	case authTypeLDAP:
		if !s.cfg.Auth.LDAP.Enabled || s.ldapAuth == nil {
			return "", ErrLDAPAuthDisabled
		}

		return authTypeLDAP, nil
	default:
		return "", ErrInvalidAuthMethod
	}
}

// authenticate checks the credentials with the given method and maps provider errors to login errors.
func (s *Service) authenticate(authType, username, password string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)

	switch authType {
	case authTypeLocal:
		user, err = s.local.Authenticate(username, password)
	case authTypeLDAP:
		if s.ldapAuth == nil {
			return nil, ErrLDAPAuthDisabled
		}

		user, err = s.ldapAuth.Authenticate(username, password)
	default:
		return nil, ErrInvalidAuthMethod
	}

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return nil, ErrAccountDisabled
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword):
		return nil, ErrInvalidCredentials
	default:
		log.Error().Err(err).Str("auth_type", authType).Msg("authentication backend failed")
		return nil, ErrInternalServerError
	}
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	var form Form

	if err := c.BodyParser(&form); err != nil {
		return c.Render(TemplateName, s.viewData(ErrInvalidFormData.Error()))
	}

	authType, err := s.pickAuthType(form.AuthType)
	if err != nil {
		return c.Render(TemplateName, s.viewData(err.Error()))
	}

	if errs := handler.Validator.Validate(form); len(errs) > 0 {
		return c.Render(TemplateName, s.viewData(ErrInvalidFormData.Error()))
	}

	user, err := s.authenticate(authType, form.Username, form.Password)
	if err != nil {
		log.Warn().Str("username", form.Username).Str("ip", c.IP()).Err(err).Msg("login failed")
		return c.Render(TemplateName, s.viewData(err.Error()))
	}

	if user.TOTPEnabled() {
		if err = s.startSession(c, user, true); err != nil {
			return c.Render(TemplateName, s.viewData(ErrInternalServerError.Error()))
		}

		return c.Redirect(TOTPPath)
	}

	if err = s.startSession(c, user, false); err != nil {
		return c.Render(TemplateName, s.viewData(ErrInternalServerError.Error()))
	}

	s.local.TouchLogin(user.ID)
	log.Info().Str("username", user.Username).Str("auth_type", authType).Msg("user logged in")

	return c.Redirect(DashboardPath)
}

// startSession replaces any existing session with a fresh one for user.
func (s *Service) startSession(c *fiber.Ctx, user *models.User, pendingTOTP bool) error {
	if old := c.Cookies(session.CookieName); old != "" {
		if err := session.Delete(old); err != nil {
			log.Warn().Err(err).Msg("failed to delete previous session")
		}
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return err
	}

	userSession := &session.Data{
		User:        *user,
		PendingTOTP: pendingTOTP,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return err
	}

	session.SetCookie(c, sessionID, s.cfg.Webserver.Session.ExpiryTime, s.cfg.DevMode)

	return nil
}

// GetTOTP renders the one-time code form for a session that passed the password step.
func (s *Service) GetTOTP(c *fiber.Ctx) error {
	sess, err := session.FromRequest(c)
	if err != nil || !sess.PendingTOTP {
		return c.Redirect(Path)
	}

	return c.Render(TemplateTOTP, fiber.Map{
		"Title":    s.cfg.Title,
		"Username": sess.User.Username,
	})
}

// PostTOTP checks the one-time code and completes the login.
func (s *Service) PostTOTP(c *fiber.Ctx) error {
	sess, err := session.FromRequest(c)
	if err != nil || !sess.PendingTOTP {
		return c.Redirect(Path)
	}

	// the stored copy may be stale if the secret was reset meanwhile
	user, err := s.local.GetUserByID(sess.User.ID)
	if err != nil || !user.Active {
		return c.Redirect(Path)
	}

	if err = auth.VerifyTOTP(strings.TrimSpace(c.FormValue("code")), user.TOTPSecret, s.now()); err != nil {
		log.Warn().Str("username", user.Username).Str("ip", c.IP()).Msg("invalid one-time code")

		return c.Render(TemplateTOTP, fiber.Map{
			"Title":    s.cfg.Title,
			"Username": user.Username,
			"Error":    ErrInvalidCode.Error(),
		})
	}

	if err = s.startSession(c, user, false); err != nil {
		return c.Render(TemplateTOTP, fiber.Map{
			"Title": s.cfg.Title,
			"Error": ErrInternalServerError.Error(),
		})
	}

	s.local.TouchLogin(user.ID)
	log.Info().Str("username", user.Username).Msg("user logged in with one-time code")

	return c.Redirect(DashboardPath)
}
