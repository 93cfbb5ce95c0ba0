package models

import "time"

// Setting is a named JSON blob. Singleton content (footer, requisites, scroll section) lives here.
type Setting struct {
	ID        uint64 `gorm:"primaryKey"`
	Name      string `gorm:"size:100;unique"`
	Value     []byte
	UpdatedAt time.Time
}
