package models

// SessionEntry backs the admin session store when the database has no fiber storage driver (sqlite).
type SessionEntry struct {
	Key       string `gorm:"column:session_key;primaryKey;size:64"`
	Value     []byte
	ExpiresAt int64 `gorm:"index"` // unix seconds, 0 never expires
}

// TableName overrides gorm's pluralization.
func (SessionEntry) TableName() string { return "admin_sessions" }
