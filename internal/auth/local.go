package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/models"
)

// LocalProvider handles local database authentication and account management.
type LocalProvider struct {
	db *gorm.DB
}

const (
	whereIDAndAuthSource = "id = ? AND auth_source = ?"

	whereID = "id = ?"
)

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(username, password string) (*models.User, error) {
	var user models.User

	err := p.db.Where("username = ? AND auth_source = ?", username, models.AuthSourceLocal).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return &user, nil
}

// TouchLogin records a successful login.
func (p *LocalProvider) TouchLogin(userID uint64) {
	now := time.Now()

	if err := p.db.Model(&models.User{}).Where(whereID, userID).Update("last_login_at", now).Error; err != nil {
		log.Warn().Err(err).Uint64("user_id", userID).Msg("failed to record login time")
	}
}

// CreateUser creates a new active local user.
func (p *LocalProvider) CreateUser(username, email, password string, role models.Role) (*models.User, error) {
	username = strings.TrimSpace(username)

	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}

	if password == "" {
		return nil, ErrEmptyPassword
	}

	var existingUser models.User

	err := p.db.Where("username = ? OR (email <> '' AND email = ?)", username, email).First(&existingUser).Error
	if err == nil {
		return nil, ErrUserNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Active:     true,
		Username:   username,
		Email:      email,
		Password:   hashedPassword,
		Role:       role,
		AuthSource: models.AuthSourceLocal,
	}

	if err := p.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// UpdateUser changes email and role of any user.
func (p *LocalProvider) UpdateUser(userID uint64, email string, role models.Role) error {
	if !ValidRole(role) {
		return ErrInvalidRole
	}

	return p.db.Model(&models.User{}).
		Where(whereID, userID).
		Updates(map[string]interface{}{
			"email":      email,
			"role":       role,
			"updated_at": time.Now(),
		}).Error
}

// ChangePassword changes a user's password.
func (p *LocalProvider) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	var user models.User
	if err := p.db.Where(whereIDAndAuthSource, userID, models.AuthSourceLocal).
		First(&user).Error; err != nil {
		return fmt.Errorf("user not found: %w", err)
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return p.ResetPassword(userID, newPassword)
}

// ResetPassword resets a user's password (admin function).
func (p *LocalProvider) ResetPassword(userID uint64, newPassword string) error {
	if newPassword == "" {
		return ErrEmptyPassword
	}

	hashedPassword, err := models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return p.db.Model(&models.User{}).
		Where(whereIDAndAuthSource, userID, models.AuthSourceLocal).
		Update("password", hashedPassword).Error
}

// SetTOTPSecret stores or, with an empty secret, removes the second factor of a user.
func (p *LocalProvider) SetTOTPSecret(userID uint64, secret string) error {
	return p.db.Model(&models.User{}).
		Where(whereID, userID).
		Update("totp_secret", secret).Error
}

// SetActive activates or deactivates a user account.
func (p *LocalProvider) SetActive(userID uint64, active bool) error {
	return p.db.Model(&models.User{}).
		Where(whereID, userID).
		Update("active", active).Error
}

// DeleteUser deletes a user.
func (p *LocalProvider) DeleteUser(userID uint64) error {
	return p.db.Delete(&models.User{}, userID).Error
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(userID uint64) (*models.User, error) {
	var user models.User

	err := p.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (p *LocalProvider) GetUserByUsername(username string) (*models.User, error) {
	var user models.User

	err := p.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ListUsers lists users, newest first.
func (p *LocalProvider) ListUsers(search string, limit, offset int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := p.db.Model(&models.User{})

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// EnsureSeedAdmin creates the configured admin account when the users table is empty.
// It reports whether an account was created.
func (p *LocalProvider) EnsureSeedAdmin(seed config.SeedAdmin) (bool, error) {
	var count int64
	if err := p.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 || seed.Username == "" {
		return false, nil
	}

	if _, err := p.CreateUser(seed.Username, seed.Email, seed.Password, models.RoleAdmin); err != nil {
		return false, err
	}

	return true, nil
}
