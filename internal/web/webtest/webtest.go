// Package webtest holds the fixtures shared by handler tests: a recording views engine,
// an in-memory session storage, an in-memory database and logged-in sessions.
package webtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/models"
	authmw "github.com/flameguard/flameguard-site/internal/web/middleware/auth"
	"github.com/flameguard/flameguard-site/internal/web/session"
)

// Views is a minimal Fiber Views engine. It remembers the last render and writes
// the "Error" field of the data (if any), otherwise the template name.
type Views struct {
	mu   sync.Mutex
	name string
	data fiber.Map
}

// Load implements fiber.Views.
func (v *Views) Load() error { return nil }

// Render implements fiber.Views.
func (v *Views) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	m, _ := data.(fiber.Map)

	v.mu.Lock()
	v.name = name
	v.data = m
	v.mu.Unlock()

	if msg, ok := m["Error"].(string); ok && msg != "" {
		_, _ = io.WriteString(w, msg)
		return nil
	}

	_, _ = io.WriteString(w, name)

	return nil
}

// Last returns the template name and data of the last render.
func (v *Views) Last() (string, fiber.Map) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.name, v.data
}

// Storage is an in-memory fiber.Storage.
type Storage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ fiber.Storage = (*Storage)(nil)

// Get implements fiber.Storage.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

// Set implements fiber.Storage.
func (s *Storage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

// Delete implements fiber.Storage.
func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Reset implements fiber.Storage.
func (s *Storage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

// Close implements fiber.Storage.
func (s *Storage) Close() error { return nil }

// InitSessions installs a fresh in-memory session store.
func InitSessions() {
	session.Init(&Storage{data: make(map[string][]byte)})
}

// NewDB opens an in-memory database with every model migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection of :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

// NewConfig returns a config good enough for handler tests.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Title: "Test site",
		Webserver: config.Webserver{
			URL:     "http://localhost",
			Port:    3000,
			Session: config.Session{ExpiryTime: time.Minute},
		},
		Auth: config.Auth{
			LocalDB: config.LocalDBAuth{Enabled: true},
			JWT:     config.JWT{Secret: "test-secret", Issuer: "test", TTL: time.Hour},
			TOTP:    config.TOTP{Issuer: "Test"},
		},
		Upload: config.Upload{Dir: t.TempDir(), URLPrefix: "/uploads", MaxSizeMB: 1},
		Export: config.Export{Dir: t.TempDir(), URLPrefix: "/exports"},
	}
}

// NewApp returns a fiber app with the views engine and the authentication middleware installed.
func NewApp(cfg *config.Config, db *gorm.DB, views fiber.Views) *fiber.App {
	app := fiber.New(fiber.Config{Views: views})

	app.Use(authmw.New(authmw.Config{
		Tokens: auth.NewTokenIssuer(cfg.Auth.JWT),
		Users:  auth.NewLocalProvider(db),
	}))

	return app
}

// NewUser creates an active local account.
func NewUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	u, err := auth.NewLocalProvider(db).CreateUser(username, username+"@example.com", "secret-"+username, role)
	require.NoError(t, err)

	return u
}

// Login stores a session for u and returns the cookie header value.
func Login(t *testing.T, u *models.User) string {
	t.Helper()

	id, err := session.GenerateSessionID()
	require.NoError(t, err)

	require.NoError(t, (&session.Data{User: *u}).Write(id, time.Minute))

	return session.CookieName + "=" + id
}

// Request performs a request against app. A non-empty cookie is sent as Cookie header.
// Bodies starting with '{' or '[' are sent as JSON, others as a url-encoded form.
func Request(t *testing.T, app *fiber.App, method, target, body, cookie string) *http.Response {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)

	if body != "" {
		if body[0] == '{' || body[0] == '[' {
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		} else {
			req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		}
	}

	if cookie != "" {
		req.Header.Set(fiber.HeaderCookie, cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

// DecodeJSON reads the response body into v.
func DecodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// Body returns the response body as a string.
func Body(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(b)
}
