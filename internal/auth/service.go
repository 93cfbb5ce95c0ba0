package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/db/models"
)

// Service provides authorization checks against the current state of an account.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) activeUser(userID uint64) (*models.User, error) {
	var user models.User

	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	return &user, nil
}

// HasPermission checks if an active user's role grants a specific permission.
// Unknown or disabled accounts have no permissions.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	user, err := s.activeUser(userID)
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUserAccountDisabled) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return RoleAllows(user.Role, permission), nil
}

// GetUserPermissions retrieves all permissions of an active user.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	user, err := s.activeUser(userID)
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUserAccountDisabled) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return RolePermissions(user.Role), nil
}

// AssignRoleToUser changes the role of a user.
func (s *Service) AssignRoleToUser(userID uint64, role models.Role) error {
	if !ValidRole(role) {
		return ErrInvalidRole
	}

	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", role).Error
}
