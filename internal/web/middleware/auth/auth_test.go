package auth

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/session"
)

type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *memStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.data[key], nil
}

func (s *memStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = val

	return nil
}

func (s *memStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *memStorage) Reset() error { return nil }

func (s *memStorage) Close() error { return nil }

func setup(t *testing.T) (*fiber.App, *models.User, *auth.TokenIssuer) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	session.Init(&memStorage{data: make(map[string][]byte)})

	users := auth.NewLocalProvider(db)

	user, err := users.CreateUser("ed", "", "pw", models.RoleEditor)
	require.NoError(t, err)

	tokens := auth.NewTokenIssuer(config.JWT{Secret: "k", Issuer: "test"})

	app := fiber.New()
	app.Use(New(Config{Tokens: tokens, Users: users}))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if u := auth.CurrentUser(c); u != nil {
			return c.SendString(u.Username)
		}

		return c.SendString("anonymous")
	})
	app.Get(auth.LoginPath, func(c *fiber.Ctx) error { return c.SendString("login") })

	return app, user, tokens
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)

	return resp, string(buf[:n])
}

func TestMiddleware_Session(t *testing.T) {
	app, user, _ := setup(t)

	require.NoError(t, (&session.Data{User: *user}).Write("full", time.Minute))
	require.NoError(t, (&session.Data{User: *user, PendingTOTP: true}).Write("half", time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	_, body := do(t, app, req)
	assert.Equal(t, "anonymous", body)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "full"})
	_, body = do(t, app, req)
	assert.Equal(t, "ed", body)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "half"})
	_, body = do(t, app, req)
	assert.Equal(t, "anonymous", body, "pending second factor is not a login")

	req = httptest.NewRequest(http.MethodGet, auth.LoginPath, nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "full"})
	resp, _ := do(t, app, req)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, DashboardPath, resp.Header.Get("Location"))
}

func TestMiddleware_Bearer(t *testing.T) {
	app, user, tokens := setup(t)

	raw, _, err := tokens.Issue(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+raw)
	_, body := do(t, app, req)
	assert.Equal(t, "ed", body)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer garbage")
	_, body = do(t, app, req)
	assert.Equal(t, "anonymous", body)
}
