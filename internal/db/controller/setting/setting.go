// Package setting stores named JSON blobs in the settings table.
package setting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flameguard/flameguard-site/internal/db/models"
)

const nameQueryPattern = "name = ?"

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to read or write a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

func check(db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	return nil
}

// Get retrieves a setting by its name.
func Get(ctx context.Context, db *gorm.DB, name string) (*models.Setting, error) {
	if err := check(db, name); err != nil {
		return nil, err
	}

	var s models.Setting

	err := db.WithContext(ctx).Where(nameQueryPattern, name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSettingNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get setting %q: %w", name, err)
	}

	return &s, nil
}

// Set creates or replaces a setting by name in a single statement.
func Set(ctx context.Context, db *gorm.DB, name string, value []byte) (*models.Setting, error) {
	if err := check(db, name); err != nil {
		return nil, err
	}

	s := &models.Setting{Name: name, Value: value, UpdatedAt: time.Now()}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return nil, fmt.Errorf("set setting %q: %w", name, err)
	}

	return Get(ctx, db, name)
}

// Delete removes a setting by name.
func Delete(ctx context.Context, db *gorm.DB, name string) error {
	if err := check(db, name); err != nil {
		return err
	}

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return fmt.Errorf("delete setting %q: %w", name, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// LoadJSON reads a setting and decodes its JSON value into a new T.
func LoadJSON[T any](ctx context.Context, db *gorm.DB, name string) (*T, error) {
	s, err := Get(ctx, db, name)
	if err != nil {
		return nil, err
	}

	out := new(T)
	if err = json.Unmarshal(s.Value, out); err != nil {
		return nil, fmt.Errorf("decode setting %q: %w", name, err)
	}

	return out, nil
}

// SaveJSON encodes v as JSON and stores it under name.
func SaveJSON[T any](ctx context.Context, db *gorm.DB, name string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", name, err)
	}

	_, err = Set(ctx, db, name, data)

	return err
}
