package content

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	repo "github.com/flameguard/flameguard-site/internal/db/controller/content"
	"github.com/flameguard/flameguard-site/internal/db/controller/singleton"
)

// Seed copies the fallback content into empty tables and unsaved blocks, so a fresh
// installation starts with an editable site. It returns the names of the seeded parts.
func Seed(ctx context.Context, db *gorm.DB, fb *Fallback) ([]string, error) {
	var seeded []string

	steps := []struct {
		name string
		run  func() (bool, error)
	}{
		{"navigation", func() (bool, error) { return seedRows(ctx, db, fb.Navigation) }},
		{"hero", func() (bool, error) { return seedRows(ctx, db, fb.Hero) }},
		{"about", func() (bool, error) { return seedRows(ctx, db, fb.About) }},
		{"products", func() (bool, error) { return seedRows(ctx, db, fb.Products) }},
		{"videos", func() (bool, error) { return seedRows(ctx, db, fb.Videos) }},
		{"documents", func() (bool, error) { return seedRows(ctx, db, fb.Documents) }},
		{"product_modals", func() (bool, error) { return seedRows(ctx, db, fb.ProductModals) }},
		{"footer", func() (bool, error) { return seedBlock(ctx, db, singleton.Footer, fb.Footer) }},
		{"requisites", func() (bool, error) { return seedBlock(ctx, db, singleton.Requisites, fb.Requisites) }},
		{"scroll_section", func() (bool, error) {
			return seedBlock(ctx, db, singleton.ScrollSection, fb.ScrollSection)
		}},
	}

	for _, s := range steps {
		done, err := s.run()
		if err != nil {
			return seeded, fmt.Errorf("seed %s: %w", s.name, err)
		}

		if done {
			seeded = append(seeded, s.name)
		}
	}

	return seeded, nil
}

func seedRows[T any, P repo.Row[T]](ctx context.Context, db *gorm.DB, rows []T) (bool, error) {
	if len(rows) == 0 {
		return false, nil
	}

	r := repo.New[T, P](db)

	n, err := r.Count(ctx)
	if err != nil || n > 0 {
		return false, err
	}

	for i := range rows {
		row := rows[i]
		if err = r.Create(ctx, &row); err != nil {
			return false, err
		}
	}

	return true, nil
}

func seedBlock[T any](ctx context.Context, db *gorm.DB, k singleton.Kind[T], v T) (bool, error) {
	_, err := k.Load(ctx, db)
	if err == nil {
		return false, nil
	}

	if !errors.Is(err, singleton.ErrNotFound) {
		return false, err
	}

	if err = k.Save(ctx, db, &v); err != nil {
		return false, err
	}

	return true, nil
}
