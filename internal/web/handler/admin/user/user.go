// Package user provides handlers for managing admin panel accounts.
package user

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/handler"
	"github.com/flameguard/flameguard-site/internal/web/handler/dashboard"
	"github.com/flameguard/flameguard-site/internal/web/navigation"
)

const (
	// Path is the base path for user management.
	Path = handler.AdminPath + "/users"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for creating/updating a user.
	TemplateForm = "admin/user/form"
	// TemplateTOTP is the second factor enrolment page.
	TemplateTOTP = "admin/user/totp"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25

	minPasswordLength = 8
)

var (
	// ErrSelfDelete is shown when an admin tries to delete their own account.
	ErrSelfDelete = errors.New("you cannot delete your own account")
	// ErrSelfDeactivate is shown when an admin tries to deactivate their own account.
	ErrSelfDeactivate = errors.New("you cannot deactivate your own account")
	// ErrPasswordTooShort is shown for passwords below the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

// CreateForm is the new account form.
type CreateForm struct {
	Username string `form:"username" validate:"required,min=3,max=100"`
	Email    string `form:"email"    validate:"required,email,max=255"`
	Password string `form:"password" validate:"required"`
	Role     string `form:"role"     validate:"required,oneof=admin editor"`
}

// UpdateForm is the account edit form. An empty password keeps the current one.
type UpdateForm struct {
	Email    string `form:"email"    validate:"required,email,max=255"`
	Role     string `form:"role"     validate:"required,oneof=admin editor"`
	Active   bool   `form:"active"`
	Password string `form:"password"`
}

// Service provides CRUD operations for users.
type Service struct {
	cfg   *config.Config
	db    *gorm.DB
	local *auth.LocalProvider
	now   func() time.Time
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.local = auth.NewLocalProvider(db)
	s.now = time.Now

	navigation.Register(navigation.MenuItem{
		Title: "Users", URL: Path, Section: "admin", Page: "user", Permission: auth.PermAdminUsers,
	})

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequirePermission(authService, auth.PermAdminUsers))
		router.Get(handler.RouterRootPath, s.List)
		router.Get("/new", s.New)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/:id/edit", s.Edit)
		router.Post("/:id", s.Update)
		router.Post("/:id/delete", s.Delete)
		router.Get("/:id/totp", s.GetTOTP)
		router.Post("/:id/totp", s.PostTOTP)
		router.Post("/:id/totp/disable", s.DisableTOTP)
	})
}

func listNav() *navigation.Context {
	return navigation.NewContext("Users", "admin", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, true)
}

func formNav(title, url string) *navigation.Context {
	return navigation.NewContext(title, "admin", "user").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb(title, url, true)
}

func userPath(id uint64) string {
	return Path + "/" + strconv.FormatUint(id, 10)
}

func currentUserID(c *fiber.Ctx) uint64 {
	if u := auth.CurrentUser(c); u != nil {
		return u.ID
	}

	return 0
}

func checkPassword(pw string) error {
	if len(pw) < minPasswordLength {
		return ErrPasswordTooShort
	}

	return nil
}

// List shows users with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	return s.renderList(c, fiber.StatusOK, "")
}

func (s *Service) renderList(c *fiber.Ctx, status int, errMsg string) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	users, totalCount, err := s.local.ListUsers(search, pageSize, (page-1)*pageSize)
	if err != nil {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": listNav(),
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	return c.Status(status).Render(TemplateList, fiber.Map{
		"Navigation":    listNav(),
		"Users":         users,
		"CurrentUserID": currentUserID(c),
		"Search":        search,
		"Page":          page,
		"PageSize":      pageSize,
		"TotalItems":    totalCount,
		"TotalPages":    totalPages,
		"HasPrev":       page > 1,
		"HasNext":       page < totalPages,
		"PrevPage":      page - 1,
		"NextPage":      page + 1,
		"Saved":         c.Query("saved") != "",
		"Error":         errMsg,
	}, handler.BaseLayout)
}

func (s *Service) renderForm(c *fiber.Ctx, status int, user *models.User, errMsg string) error {
	isCreate := user.ID == 0

	title, url, action := "New User", Path+"/new", Path
	if !isCreate {
		title, url, action = "Edit User", userPath(user.ID)+"/edit", userPath(user.ID)
	}

	return c.Status(status).Render(TemplateForm, fiber.Map{
		"Navigation":     formNav(title, url),
		"User":           user,
		"IsCreate":       isCreate,
		"IsSelf":         user.ID != 0 && user.ID == currentUserID(c),
		"Action":         action,
		"Roles":          []models.Role{models.RoleAdmin, models.RoleEditor},
		"LocalDBEnabled": s.cfg.Auth.LocalDB.Enabled,
		"Error":          errMsg,
	}, handler.BaseLayout)
}

// New shows the creation form.
func (s *Service) New(c *fiber.Ctx) error {
	return s.renderForm(c, fiber.StatusOK, &models.User{
		AuthSource: models.AuthSourceLocal, Active: true, Role: models.RoleEditor,
	}, "")
}

// Create creates a new local user.
func (s *Service) Create(c *fiber.Ctx) error {
	var in CreateForm

	if err := c.BodyParser(&in); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, &models.User{Active: true}, "Invalid form data")
	}

	draft := &models.User{
		Username: in.Username, Email: in.Email, Role: models.Role(in.Role),
		AuthSource: models.AuthSourceLocal, Active: true,
	}

	if errs := handler.Validator.Validate(in); len(errs) > 0 {
		return s.renderForm(c, fiber.StatusBadRequest, draft, handler.ValidationMessage(errs))
	}

	if err := checkPassword(in.Password); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, draft, err.Error())
	}

	user, err := s.local.CreateUser(in.Username, strings.TrimSpace(in.Email), in.Password, models.Role(in.Role))
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, auth.ErrUserNameOrEmailExists) || errors.Is(err, auth.ErrInvalidRole) {
			status = fiber.StatusBadRequest
		} else {
			log.Error().Err(err).Str("username", in.Username).Msg("failed to create user")
		}

		return s.renderForm(c, status, draft, "Failed to create user: "+err.Error())
	}

	log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user created")

	return c.Redirect(Path + "?saved=1")
}

func (s *Service) load(c *fiber.Ctx) (*models.User, error) {
	id, err := handler.ParseID(c)
	if err != nil {
		return nil, err
	}

	return s.local.GetUserByID(id)
}

// Edit shows the edit form for a user.
func (s *Service) Edit(c *fiber.Ctx) error {
	user, err := s.load(c)
	if err != nil {
		return c.Redirect(Path)
	}

	return s.renderForm(c, fiber.StatusOK, user, "")
}

// Update changes email, role, active flag and optionally the password of a user.
func (s *Service) Update(c *fiber.Ctx) error {
	user, err := s.load(c)
	if err != nil {
		return c.Redirect(Path)
	}

	var in UpdateForm
	if err = c.BodyParser(&in); err != nil {
		return s.renderForm(c, fiber.StatusBadRequest, user, "Invalid form data")
	}

	if errs := handler.Validator.Validate(in); len(errs) > 0 {
		return s.renderForm(c, fiber.StatusBadRequest, user, handler.ValidationMessage(errs))
	}

	isSelf := user.ID == currentUserID(c)

	if isSelf && !in.Active {
		return s.renderForm(c, fiber.StatusBadRequest, user, ErrSelfDeactivate.Error())
	}

	if in.Password != "" {
		if user.AuthSource != models.AuthSourceLocal {
			return s.renderForm(c, fiber.StatusBadRequest, user, "Only local accounts have a password")
		}

		if err = checkPassword(in.Password); err != nil {
			return s.renderForm(c, fiber.StatusBadRequest, user, err.Error())
		}
	}

	if err = s.local.UpdateUser(user.ID, strings.TrimSpace(in.Email), models.Role(in.Role)); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to update user")
		return s.renderForm(c, fiber.StatusInternalServerError, user, "Failed to update user: "+err.Error())
	}

	if err = s.local.SetActive(user.ID, in.Active); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to change user state")
		return s.renderForm(c, fiber.StatusInternalServerError, user, "Failed to update user: "+err.Error())
	}

	if in.Password != "" {
		if err = s.local.ResetPassword(user.ID, in.Password); err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to reset password")
			return s.renderForm(c, fiber.StatusInternalServerError, user, "Failed to reset password")
		}

		log.Info().Uint64("user_id", user.ID).Msg("password reset")
	}

	log.Info().Uint64("user_id", user.ID).Str("role", in.Role).Bool("active", in.Active).Msg("user updated")

	return c.Redirect(Path + "?saved=1")
}

// Delete removes a user. Nobody can delete their own account.
func (s *Service) Delete(c *fiber.Ctx) error {
	user, err := s.load(c)
	if err != nil {
		return c.Redirect(Path)
	}

	if user.ID == currentUserID(c) {
		return s.renderList(c, fiber.StatusBadRequest, ErrSelfDelete.Error())
	}

	if err = s.local.DeleteUser(user.ID); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to delete user")
		return s.renderList(c, fiber.StatusInternalServerError, "Failed to delete user: "+err.Error())
	}

	log.Info().Str("username", user.Username).Msg("user deleted")

	return c.Redirect(Path + "?saved=1")
}

func (s *Service) renderTOTP(c *fiber.Ctx, status int, user *models.User, secret, url, errMsg string) error {
	return c.Status(status).Render(TemplateTOTP, fiber.Map{
		"Navigation": formNav("Two-factor login", userPath(user.ID)+"/totp"),
		"User":       user,
		"Secret":     secret,
		"URL":        url,
		"Action":     userPath(user.ID) + "/totp",
		"Error":      errMsg,
	}, handler.BaseLayout)
}

// GetTOTP shows a fresh secret to enrol in an authenticator app.
func (s *Service) GetTOTP(c *fiber.Ctx) error {
	user, err := s.load(c)
	if err != nil {
		return c.Redirect(Path)
	}

	secret, url, err := auth.GenerateTOTP(s.cfg.Auth.TOTP.Issuer, user.Username)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate TOTP secret")
		return s.renderTOTP(c, fiber.StatusInternalServerError, user, "", "", "Failed to generate secret")
	}

	return s.renderTOTP(c, fiber.StatusOK, user, secret, url, "")
}

// PostTOTP enables the second factor once a code generated from the shown secret checks out.
func (s *Service) PostTOTP(c *fiber.Ctx) error {
	user, err := s.load(c)
	if err != nil {
		return c.Redirect(Path)
	}

	secret := strings.TrimSpace(c.FormValue("secret"))
	code := strings.TrimSpace(c.FormValue("code"))

	if secret == "" || auth.VerifyTOTP(code, secret, s.now()) != nil {
		return s.renderTOTP(c, fiber.StatusBadRequest, user, secret, c.FormValue("url"), auth.ErrInvalidTOTPCode.Error())
	}

	if err = s.local.SetTOTPSecret(user.ID, secret); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to store TOTP secret")
		return s.renderTOTP(c, fiber.StatusInternalServerError, user, secret, c.FormValue("url"), "Failed to enable")
	}

	log.Info().Str("username", user.Username).Msg("two-factor login enabled")

	return c.Redirect(Path + "?saved=1")
}

// DisableTOTP removes the second factor of a user.
func (s *Service) DisableTOTP(c *fiber.Ctx) error {
	user, err := s.load(c)
	if err != nil {
		return c.Redirect(Path)
	}

	if err = s.local.SetTOTPSecret(user.ID, ""); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to remove TOTP secret")
		return s.renderList(c, fiber.StatusInternalServerError, "Failed to disable two-factor login")
	}

	log.Info().Str("username", user.Username).Msg("two-factor login disabled")

	return c.Redirect(Path + "?saved=1")
}
