package block

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/db/controller/singleton"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/webtest"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB, *webtest.Views, string) {
	t.Helper()

	webtest.InitSessions()

	db := webtest.NewDB(t)
	cfg := webtest.NewConfig(t)
	views := &webtest.Views{}
	app := webtest.NewApp(cfg, db, views)

	Handler.Init(app, db, auth.NewService(db))

	return app, db, views, webtest.Login(t, webtest.NewUser(t, db, "editor", models.RoleEditor))
}

func TestFooter_GetEmptyThenSave(t *testing.T) {
	app, db, views, cookie := setup(t)

	resp := webtest.Request(t, app, http.MethodGet, Handler.Footer.Path(), "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	name, data := views.Last()
	assert.Equal(t, TemplateForm, name)
	assert.Equal(t, false, data["Configured"])

	form := url.Values{"company_name": {"FlameGuard"}, "email": {"info@example.com"}}
	resp = webtest.Request(t, app, http.MethodPost, Handler.Footer.Path(), form.Encode(), cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	got, err := singleton.Footer.Load(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, "FlameGuard", got.CompanyName)

	resp = webtest.Request(t, app, http.MethodGet, Handler.Footer.Path(), "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, data = views.Last()
	assert.Equal(t, true, data["Configured"])
	assert.Equal(t, "FlameGuard", data["Values"].(map[string]any)["company_name"])
}

func TestFooter_InvalidEmail(t *testing.T) {
	app, db, _, cookie := setup(t)

	form := url.Values{"email": {"not-an-email"}}
	resp := webtest.Request(t, app, http.MethodPost, Handler.Footer.Path(), form.Encode(), cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, webtest.Body(t, resp), "Email")

	_, err := singleton.Footer.Load(context.Background(), db)
	assert.ErrorIs(t, err, singleton.ErrNotFound)
}

func TestScrollSection_TextBlockLimits(t *testing.T) {
	app, db, _, cookie := setup(t)

	post := func(blocks int) *http.Response {
		form := url.Values{"title": {"Protection"}}
		for i := 0; i < blocks; i++ {
			form.Add("block_title", "Block")
			form.Add("block_description", "Text")
		}
		// an empty row is ignored
		form.Add("block_title", "")
		form.Add("block_description", "")

		return webtest.Request(t, app, http.MethodPost, Handler.ScrollSection.Path(), form.Encode(), cookie)
	}

	assert.Equal(t, http.StatusBadRequest, post(2).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(6).StatusCode)

	require.Equal(t, http.StatusFound, post(4).StatusCode)

	got, err := singleton.ScrollSection.Load(context.Background(), db)
	require.NoError(t, err)
	assert.Len(t, got.TextBlocks, 4)
}

func TestDelete(t *testing.T) {
	app, db, _, cookie := setup(t)

	require.NoError(t, singleton.Requisites.Save(context.Background(), db, &models.Requisites{FullName: "LLC"}))

	resp := webtest.Request(t, app, http.MethodPost, Handler.Requisites.Path()+"/delete", "", cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	_, err := singleton.Requisites.Load(context.Background(), db)
	assert.ErrorIs(t, err, singleton.ErrNotFound)
}

func TestEditorsRequirePermission(t *testing.T) {
	app, _, _, _ := setup(t)

	resp := webtest.Request(t, app, http.MethodGet, Handler.Requisites.Path(), "", "")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
