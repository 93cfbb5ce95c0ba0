// Package content provides an ordered repository shared by every content type of the site.
package content

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/db/models"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("content not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrEmptyOrder is returned when a reorder request names no rows.
	ErrEmptyOrder = errors.New("reorder list is empty")
	// ErrDuplicateID is returned when a reorder request names a row twice.
	ErrDuplicateID = errors.New("reorder list contains duplicate ids")
	// ErrUnknownID is returned when a reorder request names a row that does not exist.
	ErrUnknownID = errors.New("reorder list contains unknown ids")
	// ErrIncompleteOrder is returned when a reorder request leaves out some rows.
	ErrIncompleteOrder = errors.New("reorder list must name every row")
)

// Row is satisfied by a pointer to any content model embedding models.Base.
type Row[T any] interface {
	*T
	Row() *models.Base
}

// Position is the sort order assigned to one row by a reorder.
type Position struct {
	ID        uint64 `json:"id"`
	SortOrder int    `json:"sort_order"`
}

// Renumber assigns consecutive sort orders starting at 1 following the order of ids.
func Renumber(ids []uint64) ([]Position, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyOrder
	}

	seen := make(map[uint64]struct{}, len(ids))
	out := make([]Position, 0, len(ids))

	for i, id := range ids {
		if _, ok := seen[id]; ok {
			return nil, ErrDuplicateID
		}

		seen[id] = struct{}{}
		out = append(out, Position{ID: id, SortOrder: i + 1})
	}

	return out, nil
}

// Repo reads and writes one ordered content table.
type Repo[T any, P Row[T]] struct {
	db *gorm.DB
}

// New returns a repository for T.
func New[T any, P Row[T]](db *gorm.DB) *Repo[T, P] {
	return &Repo[T, P]{db: db}
}

func (r *Repo[T, P]) conn(ctx context.Context) (*gorm.DB, error) {
	if r == nil || r.db == nil {
		return nil, ErrDBNil
	}

	return r.db.WithContext(ctx), nil
}

// List returns rows by sort order. With activeOnly set, hidden rows are skipped.
func (r *Repo[T, P]) List(ctx context.Context, activeOnly bool) ([]T, error) {
	return r.ListBy(ctx, activeOnly, "", nil)
}

// ListBy is List restricted to rows where column equals value. An empty column means no restriction.
func (r *Repo[T, P]) ListBy(ctx context.Context, activeOnly bool, column string, value any) ([]T, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	q := db.Model(new(T))
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	if column != "" {
		q = q.Where(column+" = ?", value)
	}

	items := make([]T, 0)
	if err = q.Order("sort_order ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	return items, nil
}

// Get returns one row by id.
func (r *Repo[T, P]) Get(ctx context.Context, id uint64) (*T, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	item := new(T)

	err = db.First(item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get content %d: %w", id, err)
	}

	return item, nil
}

// Count returns the number of rows in the table.
func (r *Repo[T, P]) Count(ctx context.Context) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}

	var n int64
	if err = db.Model(new(T)).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count content: %w", err)
	}

	return n, nil
}

// Create inserts item. A zero sort order places it after the last row.
func (r *Repo[T, P]) Create(ctx context.Context, item *T) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	base := P(item).Row()
	base.ID = 0

	if base.SortOrder == 0 {
		var last int
		if err = db.Model(new(T)).Select("COALESCE(MAX(sort_order), 0)").Scan(&last).Error; err != nil {
			return fmt.Errorf("find last sort order: %w", err)
		}

		base.SortOrder = last + 1
	}

	if err = db.Create(item).Error; err != nil {
		return fmt.Errorf("create content: %w", err)
	}

	return nil
}

// Update replaces every field of the row with the given id by the fields of item.
func (r *Repo[T, P]) Update(ctx context.Context, id uint64, item *T) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	base := P(item).Row()
	base.ID = id
	base.CreatedAt = P(current).Row().CreatedAt

	if err = db.Save(item).Error; err != nil {
		return fmt.Errorf("update content %d: %w", id, err)
	}

	return nil
}

// Delete removes the row with the given id.
func (r *Repo[T, P]) Delete(ctx context.Context, id uint64) error {
	db, err := r.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Delete(new(T), id)
	if result.Error != nil {
		return fmt.Errorf("delete content %d: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Reorder sets sort_order to 1..N following ids in a single transaction.
// ids must name every row of the table. Either every row is renumbered or none is.
func (r *Repo[T, P]) Reorder(ctx context.Context, ids []uint64) ([]Position, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	positions, err := Renumber(ids)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(new(T)).Where("id IN ?", ids).Count(&n).Error; err != nil {
			return fmt.Errorf("count reordered rows: %w", err)
		}

		if n != int64(len(ids)) {
			return ErrUnknownID
		}

		var total int64
		if err := tx.Model(new(T)).Count(&total).Error; err != nil {
			return fmt.Errorf("count rows: %w", err)
		}

		if total != n {
			return ErrIncompleteOrder
		}

		for _, p := range positions {
			err := tx.Model(new(T)).Where("id = ?", p.ID).Update("sort_order", p.SortOrder).Error
			if err != nil {
				return fmt.Errorf("set sort order of %d: %w", p.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return positions, nil
}
