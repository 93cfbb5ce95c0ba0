package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flameguard/flameguard-site/internal/db/models"
)

// GormStorage is a fiber.Storage on the admin_sessions table, used where no gofiber storage driver fits.
type GormStorage struct {
	db   *gorm.DB
	done chan struct{}
	once sync.Once
}

// NewGormStorage returns a storage that purges expired rows every gcInterval. A zero interval disables purging.
func NewGormStorage(db *gorm.DB, gcInterval time.Duration) *GormStorage {
	s := &GormStorage{db: db, done: make(chan struct{})}

	if gcInterval > 0 {
		go s.gc(gcInterval)
	}

	return s
}

// Get returns the value for key, or nil when it is missing or expired.
func (s *GormStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var e models.SessionEntry

	err := s.db.Where("session_key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if e.ExpiresAt != 0 && e.ExpiresAt <= time.Now().Unix() {
		return nil, nil
	}

	return e.Value, nil
}

// Set stores val under key. A zero exp never expires.
func (s *GormStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	var expiresAt int64
	if exp > 0 {
		expiresAt = time.Now().Add(exp).Unix()
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&models.SessionEntry{Key: key, Value: val, ExpiresAt: expiresAt}).Error
}

// Delete removes key.
func (s *GormStorage) Delete(key string) error {
	if key == "" {
		return nil
	}

	return s.db.Where("session_key = ?", key).Delete(&models.SessionEntry{}).Error
}

// Reset removes every session.
func (s *GormStorage) Reset() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SessionEntry{}).Error
}

// Close stops the purge loop.
func (s *GormStorage) Close() error {
	s.once.Do(func() { close(s.done) })

	return nil
}

func (s *GormStorage) gc(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case t := <-ticker.C:
			err := s.db.Where("expires_at <> 0 AND expires_at <= ?", t.Unix()).Delete(&models.SessionEntry{}).Error
			if err != nil {
				log.Error().Err(err).Msg("failed to purge expired sessions")
			}
		}
	}
}
