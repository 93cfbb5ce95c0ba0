package export

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flameguard/flameguard-site/internal/auth"
	controller "github.com/flameguard/flameguard-site/internal/db/controller/lead"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/export"
	"github.com/flameguard/flameguard-site/internal/web/webtest"
)

func TestPost(t *testing.T) {
	webtest.InitSessions()

	db := webtest.NewDB(t)
	cfg := webtest.NewConfig(t)
	app := webtest.NewApp(cfg, db, &webtest.Views{})
	writer := export.New(cfg.Export)

	var s Service
	s.Init(app, db, writer, auth.NewService(db))

	ctx := context.Background()
	require.NoError(t, controller.Create(ctx, db, &models.Lead{Name: "Anna", Phone: "1", Consent: true}))
	require.NoError(t, controller.Create(ctx, db, &models.Lead{Name: "Boris", Phone: "2", Consent: true, Status: models.LeadStatusClosed}))

	assert.Equal(t, http.StatusUnauthorized, webtest.Request(t, app, http.MethodPost, Path, "", "").StatusCode)

	cookie := webtest.Login(t, webtest.NewUser(t, db, "editor", models.RoleEditor))

	resp := webtest.Request(t, app, http.MethodPost, Path+"?status=closed", "", cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var report export.Report
	webtest.DecodeJSON(t, resp, &report)

	assert.Equal(t, 1, report.Rows)
	assert.True(t, strings.HasPrefix(report.URL, "/exports/leads-"))

	data, err := os.ReadFile(filepath.Join(writer.Dir(), report.Name))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Boris")
	assert.NotContains(t, string(data), "Anna")

	assert.Equal(t, http.StatusBadRequest, webtest.Request(t, app, http.MethodPost, Path+"?status=nope", "", cookie).StatusCode)
}
