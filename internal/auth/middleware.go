package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/flameguard/flameguard-site/internal/db/models"
)

const (
	// LocalsUser is the fiber.Locals key holding the *models.User of an authenticated request.
	LocalsUser = "CurrentUser"
	// LocalsPermissions is the fiber.Locals key holding the permission list for templates.
	LocalsPermissions = "permissions"

	// LoginPath is where unauthenticated browser requests are sent.
	LoginPath = "/login"
	// APIPrefix marks requests answered with JSON errors instead of redirects.
	APIPrefix = "/api/"
)

// CurrentUser returns the user stored by the authentication middleware, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalsUser).(*models.User)
	return u
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), APIPrefix)
}

func deny(c *fiber.Ctx, status int, msg string) error {
	if isAPI(c) {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	if status == fiber.StatusUnauthorized {
		return c.Redirect(LoginPath)
	}

	return c.Status(status).SendString(msg)
}

// RequirePermission creates Fiber middleware that requires a specific permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return RequireAnyPermission(authService, permission)
}

// RequireAnyPermission creates Fiber middleware that requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || user.ID == 0 {
			return deny(c, fiber.StatusUnauthorized, "unauthorized")
		}

		for _, perm := range permissions {
			has, err := authService.HasPermission(user.ID, perm)
			if err != nil {
				log.Error().Err(err).Uint64("user_id", user.ID).Str("permission", perm).
					Msg("failed to check permission")

				return deny(c, fiber.StatusInternalServerError, "internal server error")
			}

			if has {
				return c.Next()
			}
		}

		log.Warn().Uint64("user_id", user.ID).Strs("permissions", permissions).
			Msg("user lacks required permission")

		return deny(c, fiber.StatusForbidden, "forbidden: you don't have permission to access this resource")
	}
}

// HasPermissionInContext checks if the current user has a permission. Useful for conditional rendering.
func HasPermissionInContext(c *fiber.Ctx, authService *Service, permission string) bool {
	user := CurrentUser(c)
	if user == nil {
		return false
	}

	has, err := authService.HasPermission(user.ID, permission)

	return err == nil && has
}

// AddPermissionsToLocals exposes the current user's permissions to templates.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return c.Next()
		}

		permissions, err := authService.GetUserPermissions(user.ID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", user.ID).Msg("failed to get user permissions")
			return c.Next()
		}

		c.Locals(LocalsPermissions, permissions)

		return c.Next()
	}
}
