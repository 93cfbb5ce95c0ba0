package oidc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flameguard/flameguard-site/internal/web/webtest"
)

func TestInit_DisabledRegistersNoRoutes(t *testing.T) {
	webtest.InitSessions()

	db := webtest.NewDB(t)
	cfg := webtest.NewConfig(t)
	app := webtest.NewApp(cfg, db, &webtest.Views{})

	var s Service
	s.Init(context.Background(), app, cfg, db)

	for _, p := range []string{LoginPath, CallbackPath, LogoutPath} {
		resp := webtest.Request(t, app, http.MethodGet, p, "", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, p)
	}
}

func TestHandlers_WithoutProvider(t *testing.T) {
	webtest.InitSessions()

	db := webtest.NewDB(t)
	cfg := webtest.NewConfig(t)
	app := webtest.NewApp(cfg, db, &webtest.Views{})

	var s Service
	s.Init(context.Background(), app, cfg, db)

	app.Get("/test/login", s.Login)
	app.Get("/test/callback", s.Callback)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test/login", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/test/callback?code=x&state=y", nil))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
