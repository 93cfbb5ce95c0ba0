// Package singleton stores the one-of-a-kind site blocks (footer, requisites, scroll section)
// as validated JSON settings.
package singleton

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/db/controller/setting"
	"github.com/flameguard/flameguard-site/internal/db/models"
)

// ErrNotFound is returned when the block was never saved.
var ErrNotFound = errors.New("block not configured")

var validate = validator.New()

// Kind is a singleton stored under a fixed setting name.
type Kind[T any] struct {
	Name string
}

var (
	// Footer is the site footer.
	Footer = Kind[models.FooterSettings]{Name: "footer_settings"}
	// Requisites holds the legal details page.
	Requisites = Kind[models.Requisites]{Name: "requisites"}
	// ScrollSection is the pinned text over video block.
	ScrollSection = Kind[models.ScrollSection]{Name: "scroll_section"}
)

// Load returns the stored value or ErrNotFound.
func (k Kind[T]) Load(ctx context.Context, db *gorm.DB) (*T, error) {
	v, err := setting.LoadJSON[T](ctx, db, k.Name)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil, ErrNotFound
	}

	return v, err
}

// Save validates v and stores it. Validation failures are returned as validator.ValidationErrors.
func (k Kind[T]) Save(ctx context.Context, db *gorm.DB, v *T) error {
	if err := validate.Struct(v); err != nil {
		return err //nolint:wrapcheck
	}

	return setting.SaveJSON(ctx, db, k.Name, v)
}

// Delete removes the stored value.
func (k Kind[T]) Delete(ctx context.Context, db *gorm.DB) error {
	err := setting.Delete(ctx, db, k.Name)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return ErrNotFound
	}

	return err
}
