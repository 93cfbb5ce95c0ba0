package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// AuthSource represents how an admin account authenticates.
type AuthSource string

// Role decides what an admin account may edit.
type Role string

const (
	// AuthSourceLocal indicates the user authenticates with a local database password.
	AuthSourceLocal AuthSource = "local"
	// AuthSourceOIDC indicates the user authenticates via OpenID Connect (OIDC).
	AuthSourceOIDC AuthSource = "oidc"
	// AuthSourceLDAP indicates the user authenticates via LDAP or Active Directory.
	AuthSourceLDAP AuthSource = "ldap"

	// RoleAdmin may do everything including account management.
	RoleAdmin Role = "admin"
	// RoleEditor may edit content and work on leads.
	RoleEditor Role = "editor"
)

// User is an admin panel account.
type User struct {
	ID          uint64     `gorm:"primaryKey"                                  json:"id"`
	Active      bool       `json:"active"`
	Username    string     `gorm:"unique;size:100;not null"                    json:"username"`
	Email       string     `gorm:"size:255;not null"                           json:"email"`
	Password    string     `gorm:"size:255"                                    json:"-"`
	Role        Role       `gorm:"type:varchar(20);not null;default:'editor'"  json:"role"`
	AuthSource  AuthSource `gorm:"type:varchar(20);not null;default:'local'"   json:"auth_source"`
	ExternalID  string     `gorm:"size:255"                                    json:"-"`
	TOTPSecret  string     `gorm:"size:64"                                     json:"-"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HashPassword hashes a plaintext password with Argon2id default parameters.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams) //nolint:wrapcheck
}

// VerifyPassword compares a plaintext password against the stored hash in constant time.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("failed to verify password")
		return false
	}

	return match
}

// TOTPEnabled reports whether logins need a second factor.
func (u *User) TOTPEnabled() bool {
	return u.TOTPSecret != ""
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
