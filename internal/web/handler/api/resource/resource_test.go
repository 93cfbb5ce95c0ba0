package resource

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/db/controller/content"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/webtest"
)

func setup(t *testing.T) (*Registry, func(method, target, body, cookie string) *http.Response, string) {
	t.Helper()

	webtest.InitSessions()

	db := webtest.NewDB(t)
	cfg := webtest.NewConfig(t)
	app := webtest.NewApp(cfg, db, &webtest.Views{})

	r := &Registry{
		Hero:           &Service[models.Hero, *models.Hero]{Name: "hero"},
		About:          &Service[models.AboutItem, *models.AboutItem]{Name: "about"},
		Products:       &Service[models.Product, *models.Product]{Name: "products"},
		Videos:         &Service[models.Video, *models.Video]{Name: "videos"},
		Documents:      &Service[models.Document, *models.Document]{Name: "documents"},
		Navigation:     &Service[models.NavigationItem, *models.NavigationItem]{Name: "navigation"},
		ProductModals:  &Service[models.ProductModal, *models.ProductModal]{Name: "product-modals", FilterParam: "area_id"},
		TechnicalSpecs: &Service[models.TechnicalSpec, *models.TechnicalSpec]{Name: "technical-specs", FilterParam: "product_id"},
	}
	r.Init(app, db, auth.NewService(db))

	editor := webtest.NewUser(t, db, "editor", models.RoleEditor)
	cookie := webtest.Login(t, editor)

	do := func(method, target, body, cookie string) *http.Response {
		return webtest.Request(t, app, method, target, body, cookie)
	}

	return r, do, cookie
}

func TestCreateThenList_RoundTrip(t *testing.T) {
	_, do, cookie := setup(t)

	body := `{"title":"Smoke detector","description":"Optical","image_url":"/uploads/a.jpg","link":"/p/1","is_active":true}`
	resp := do(http.MethodPost, "/api/products", body, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Product
	webtest.DecodeJSON(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 1, created.SortOrder)

	resp = do(http.MethodGet, "/api/products", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []models.Product
	webtest.DecodeJSON(t, resp, &listed)
	require.Len(t, listed, 1)

	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "Smoke detector", listed[0].Title)
	assert.Equal(t, "Optical", listed[0].Description)
	assert.Equal(t, "/uploads/a.jpg", listed[0].ImageURL)
	assert.Equal(t, "/p/1", listed[0].Link)
	assert.True(t, listed[0].IsActive)
}

func TestWrites_RequireAuth(t *testing.T) {
	_, do, _ := setup(t)

	tests := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/api/hero", `{"title":"x"}`},
		{http.MethodPut, "/api/hero/1", `{"title":"x"}`},
		{http.MethodDelete, "/api/hero/1", ""},
		{http.MethodPost, "/api/hero/reorder", `{"ids":[1]}`},
		{http.MethodGet, "/api/hero?all=1", ""},
	}

	for _, tt := range tests {
		resp := do(tt.method, tt.target, tt.body, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tt.method, tt.target)
	}
}

func TestCreate_Validation(t *testing.T) {
	_, do, cookie := setup(t)

	resp := do(http.MethodPost, "/api/videos", `{"title":"no url"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var out map[string]interface{}
	webtest.DecodeJSON(t, resp, &out)
	assert.Contains(t, out["error"], "VideoURL is required")

	resp = do(http.MethodPost, "/api/videos", `{bad json`, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHiddenRows(t *testing.T) {
	r, do, cookie := setup(t)
	ctx := context.Background()

	visible := &models.AboutItem{Title: "visible", Base: models.Base{IsActive: true}}
	hidden := &models.AboutItem{Title: "hidden"}
	require.NoError(t, r.About.repo.Create(ctx, visible))
	require.NoError(t, r.About.repo.Create(ctx, hidden))

	var items []models.AboutItem

	webtest.DecodeJSON(t, do(http.MethodGet, "/api/about", "", ""), &items)
	require.Len(t, items, 1)
	assert.Equal(t, "visible", items[0].Title)

	webtest.DecodeJSON(t, do(http.MethodGet, "/api/about?all=1", "", cookie), &items)
	assert.Len(t, items, 2)

	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, fmt.Sprintf("/api/about/%d", hidden.ID), "", "").StatusCode)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, fmt.Sprintf("/api/about/%d", hidden.ID), "", cookie).StatusCode)
}

func TestUpdateAndDelete(t *testing.T) {
	r, do, cookie := setup(t)
	ctx := context.Background()

	nav := &models.NavigationItem{Label: "Home", URL: "/", Base: models.Base{IsActive: true}}
	require.NoError(t, r.Navigation.repo.Create(ctx, nav))

	target := fmt.Sprintf("/api/navigation/%d", nav.ID)

	resp := do(http.MethodPut, target, `{"label":"Start","url":"/start","is_active":true,"sort_order":7}`, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := r.Navigation.repo.Get(ctx, nav.ID)
	require.NoError(t, err)
	assert.Equal(t, "Start", got.Label)
	assert.Equal(t, 7, got.SortOrder)

	assert.Equal(t, http.StatusNotFound, do(http.MethodPut, "/api/navigation/999", `{"label":"a","url":"/"}`, cookie).StatusCode)
	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, target, "", cookie).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, target, "", cookie).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodDelete, "/api/navigation/abc", "", cookie).StatusCode)
}

func TestReorder(t *testing.T) {
	r, do, cookie := setup(t)
	ctx := context.Background()

	var ids []uint64

	for _, title := range []string{"a", "b", "c"} {
		p := &models.Product{Title: title, Base: models.Base{IsActive: true}}
		require.NoError(t, r.Products.repo.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	body := fmt.Sprintf(`{"ids":[%d,%d,%d]}`, ids[2], ids[0], ids[1])
	resp := do(http.MethodPost, "/api/products/reorder", body, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var positions []content.Position
	webtest.DecodeJSON(t, resp, &positions)
	assert.Equal(t, []content.Position{{ID: ids[2], SortOrder: 1}, {ID: ids[0], SortOrder: 2}, {ID: ids[1], SortOrder: 3}}, positions)

	var listed []models.Product
	webtest.DecodeJSON(t, do(http.MethodGet, "/api/products", "", ""), &listed)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{listed[0].Title, listed[1].Title, listed[2].Title})

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/products/reorder", `{"ids":[]}`, cookie).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/products/reorder", `{"ids":[1,1]}`, cookie).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/products/reorder", `{"ids":[1,999]}`, cookie).StatusCode)

	partial := fmt.Sprintf(`{"ids":[%d]}`, ids[1])
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/products/reorder", partial, cookie).StatusCode)

	webtest.DecodeJSON(t, do(http.MethodGet, "/api/products", "", ""), &listed)
	assert.Equal(t, []int{1, 2, 3}, []int{listed[0].SortOrder, listed[1].SortOrder, listed[2].SortOrder})
}

func TestFilterParam(t *testing.T) {
	r, do, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, r.ProductModals.repo.Create(ctx, &models.ProductModal{AreaID: "sounder", Title: "S", Base: models.Base{IsActive: true}}))
	require.NoError(t, r.ProductModals.repo.Create(ctx, &models.ProductModal{AreaID: "panel", Title: "P", Base: models.Base{IsActive: true}}))

	var modals []models.ProductModal
	webtest.DecodeJSON(t, do(http.MethodGet, "/api/product-modals?area_id=panel", "", ""), &modals)
	require.Len(t, modals, 1)
	assert.Equal(t, "P", modals[0].Title)
}

func TestCounters(t *testing.T) {
	r, _, _ := setup(t)

	require.NoError(t, r.Hero.repo.Create(context.Background(), &models.Hero{Title: "h"}))

	counters := r.Counters()
	require.Len(t, counters, 8)
	assert.Equal(t, "hero", counters[0].Label())

	n, err := counters[0].Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs([]string{"3", "1"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1}, ids)

	_, err = ParseIDs([]string{"x"})
	assert.Error(t, err)
}
