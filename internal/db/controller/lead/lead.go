// Package lead stores contact form submissions and serves the lead manager queries.
package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/db/models"
)

// Paging defaults of the lead manager.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	// ErrNotFound is returned when a lead does not exist.
	ErrNotFound = errors.New("lead not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrConsentRequired is returned when a lead is submitted without consent to data processing.
	ErrConsentRequired = errors.New("consent to personal data processing is required")
	// ErrContactRequired is returned when an update would blank the name or phone of a lead.
	ErrContactRequired = errors.New("lead name and phone can not be empty")
	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invalid lead status")
	// ErrInvalidPriority is returned for an unknown priority value.
	ErrInvalidPriority = errors.New("invalid lead priority")
)

// Filter narrows a lead listing. Zero fields do not filter.
type Filter struct {
	Status   models.LeadStatus
	Priority models.LeadPriority
	Search   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// Normalize clamps paging to sane values.
func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}

	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}

	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Page is one page of a lead listing.
type Page struct {
	Items      []models.Lead `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// Stats summarises all leads for the dashboard.
type Stats struct {
	Total      int64                         `json:"total"`
	ByStatus   map[models.LeadStatus]int64   `json:"by_status"`
	ByPriority map[models.LeadPriority]int64 `json:"by_priority"`
	Today      int64                         `json:"today"`
	LastWeek   int64                         `json:"last_7_days"`
}

// Update carries the fields a manager may change. Nil fields stay untouched.
type Update struct {
	Name     *string              `json:"name"     validate:"omitempty,min=1,max=255"`
	Phone    *string              `json:"phone"    validate:"omitempty,min=1,max=50"`
	Email    *string              `json:"email"    validate:"omitempty,max=255"`
	Company  *string              `json:"company"  validate:"omitempty,max=255"`
	Message  *string              `json:"message"  validate:"omitempty,max=5000"`
	Status   *models.LeadStatus   `json:"status"`
	Priority *models.LeadPriority `json:"priority"`
	Notes    *string              `json:"notes"    validate:"omitempty,max=5000"`
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"(LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?)",
			like, like, like, like,
		)
	}

	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}

	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}

	return q
}

// Create stores a new submission. Consent is mandatory; status and priority fall back to new and medium.
func Create(ctx context.Context, db *gorm.DB, l *models.Lead) error {
	if db == nil {
		return ErrDBNil
	}

	if !l.Consent {
		return ErrConsentRequired
	}

	l.ID = 0

	if l.Status == "" {
		l.Status = models.LeadStatusNew
	}

	if l.Priority == "" {
		l.Priority = models.LeadPriorityMedium
	}

	if !l.Status.Valid() {
		return ErrInvalidStatus
	}

	if !l.Priority.Valid() {
		return ErrInvalidPriority
	}

	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create lead: %w", err)
	}

	return nil
}

// Get returns one lead.
func Get(ctx context.Context, db *gorm.DB, id uint64) (*models.Lead, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var l models.Lead

	err := db.WithContext(ctx).First(&l, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get lead %d: %w", id, err)
	}

	return &l, nil
}

// List returns one page of leads matching f, newest first.
func List(ctx context.Context, db *gorm.DB, f Filter) (*Page, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	f.Normalize()

	var total int64
	if err := f.apply(db.WithContext(ctx).Model(&models.Lead{})).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	items := make([]models.Lead, 0, f.PageSize)

	err := f.apply(db.WithContext(ctx).Model(&models.Lead{})).
		Order("created_at DESC").Order("id DESC").
		Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	pages := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))

	return &Page{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize, TotalPages: pages}, nil
}

// All returns every lead matching f, newest first, ignoring paging.
func All(ctx context.Context, db *gorm.DB, f Filter) ([]models.Lead, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	items := make([]models.Lead, 0)

	err := f.apply(db.WithContext(ctx).Model(&models.Lead{})).
		Order("created_at DESC").Order("id DESC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	return items, nil
}

// Apply changes the non-nil fields of u on the lead with the given id.
func Apply(ctx context.Context, db *gorm.DB, id uint64, u Update) (*models.Lead, error) {
	l, err := Get(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if u.Status != nil && !u.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if u.Priority != nil && !u.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	if blank(u.Name) || blank(u.Phone) {
		return nil, ErrContactRequired
	}

	set(&l.Name, u.Name)
	set(&l.Phone, u.Phone)
	set(&l.Email, u.Email)
	set(&l.Company, u.Company)
	set(&l.Message, u.Message)
	set(&l.Status, u.Status)
	set(&l.Priority, u.Priority)
	set(&l.Notes, u.Notes)

	if err = db.WithContext(ctx).Save(l).Error; err != nil {
		return nil, fmt.Errorf("update lead %d: %w", id, err)
	}

	return l, nil
}

func blank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Delete removes a lead.
func Delete(ctx context.Context, db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.WithContext(ctx).Delete(&models.Lead{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete lead %d: %w", id, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

type groupCount struct {
	Grp string
	N   int64
}

// Overview computes lead statistics relative to now. Today starts at local midnight of now.
func Overview(ctx context.Context, db *gorm.DB, now time.Time) (*Stats, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	db = db.WithContext(ctx)

	st := &Stats{
		ByStatus:   make(map[models.LeadStatus]int64, len(models.LeadStatuses)),
		ByPriority: make(map[models.LeadPriority]int64, len(models.LeadPriorities)),
	}

	for _, s := range models.LeadStatuses {
		st.ByStatus[s] = 0
	}

	for _, p := range models.LeadPriorities {
		st.ByPriority[p] = 0
	}

	if err := db.Model(&models.Lead{}).Count(&st.Total).Error; err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}

	var rows []groupCount
	if err := db.Model(&models.Lead{}).Select("status AS grp, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}

	for _, r := range rows {
		st.ByStatus[models.LeadStatus(r.Grp)] = r.N
	}

	rows = rows[:0]
	if err := db.Model(&models.Lead{}).Select("priority AS grp, COUNT(*) AS n").Group("priority").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count leads by priority: %w", err)
	}

	for _, r := range rows {
		st.ByPriority[models.LeadPriority(r.Grp)] = r.N
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if err := db.Model(&models.Lead{}).Where("created_at >= ?", midnight).Count(&st.Today).Error; err != nil {
		return nil, fmt.Errorf("count today's leads: %w", err)
	}

	if err := db.Model(&models.Lead{}).Where("created_at >= ?", now.AddDate(0, 0, -7)).Count(&st.LastWeek).Error; err != nil {
		return nil, fmt.Errorf("count last week's leads: %w", err)
	}

	return st, nil
}
