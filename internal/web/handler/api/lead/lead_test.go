package lead

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	controller "github.com/flameguard/flameguard-site/internal/db/controller/lead"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/web/webtest"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB, string) {
	t.Helper()

	webtest.InitSessions()

	db := webtest.NewDB(t)
	cfg := webtest.NewConfig(t)
	app := webtest.NewApp(cfg, db, &webtest.Views{})

	var s Service
	s.Init(app, cfg, db, auth.NewService(db))

	return app, db, webtest.Login(t, webtest.NewUser(t, db, "manager", models.RoleEditor))
}

func countLeads(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&models.Lead{}).Count(&n).Error)

	return n
}

func TestCreate_WithConsent(t *testing.T) {
	app, db, _ := setup(t)

	resp := webtest.Request(t, app, http.MethodPost, Path, `{"name":"Ivan","phone":"+7 900","consent":true}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var l models.Lead
	webtest.DecodeJSON(t, resp, &l)
	assert.NotZero(t, l.ID)
	assert.Equal(t, models.LeadStatusNew, l.Status)
	assert.Equal(t, models.LeadPriorityMedium, l.Priority)
	assert.Equal(t, SourceAPI, l.Source)
	assert.EqualValues(t, 1, countLeads(t, db))
}

func TestCreate_Rejected(t *testing.T) {
	app, db, _ := setup(t)

	tests := []struct {
		name string
		body string
	}{
		{"no consent", `{"name":"Ivan","phone":"+7 900"}`},
		{"consent false", `{"name":"Ivan","phone":"+7 900","consent":false}`},
		{"no phone", `{"name":"Ivan","consent":true}`},
		{"blank name", `{"name":"   ","phone":"1","consent":true}`},
		{"bad email", `{"name":"Ivan","phone":"1","email":"x","consent":true}`},
		{"malformed", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := webtest.Request(t, app, http.MethodPost, Path, tt.body, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var out map[string]interface{}
			webtest.DecodeJSON(t, resp, &out)
			assert.NotEmpty(t, out["error"])
		})
	}

	assert.Zero(t, countLeads(t, db))
}

func TestManagerEndpoints_RequireAuth(t *testing.T) {
	app, _, _ := setup(t)

	for _, target := range []string{Path, StatsPath, Path + "/1"} {
		assert.Equal(t, http.StatusUnauthorized, webtest.Request(t, app, http.MethodGet, target, "", "").StatusCode, target)
	}
}

func seed(t *testing.T, db *gorm.DB) []models.Lead {
	t.Helper()

	ctx := context.Background()
	leads := []models.Lead{
		{Name: "Anna", Phone: "111", Company: "Acme", Consent: true},
		{Name: "Boris", Phone: "222", Email: "boris@example.com", Consent: true, Priority: models.LeadPriorityUrgent},
		{Name: "Clara", Phone: "333", Consent: true, Status: models.LeadStatusClosed},
	}

	for i := range leads {
		require.NoError(t, controller.Create(ctx, db, &leads[i]))
	}

	return leads
}

func TestList_Filters(t *testing.T) {
	app, db, cookie := setup(t)
	seed(t, db)

	tests := []struct {
		query string
		want  int64
	}{
		{"", 3},
		{"?status=closed", 1},
		{"?priority=urgent", 1},
		{"?search=acme", 1},
		{"?search=BORIS", 1},
		{"?from=" + time.Now().Format(DateLayout) + "&to=" + time.Now().Format(DateLayout), 3},
		{"?to=2000-01-01", 0},
	}

	for _, tt := range tests {
		resp := webtest.Request(t, app, http.MethodGet, Path+tt.query, "", cookie)
		require.Equal(t, http.StatusOK, resp.StatusCode, tt.query)

		var page controller.Page
		webtest.DecodeJSON(t, resp, &page)
		assert.Equal(t, tt.want, page.Total, tt.query)
	}
}

func TestList_BadFilter(t *testing.T) {
	app, _, cookie := setup(t)

	for _, q := range []string{"?status=lost", "?priority=meh", "?from=yesterday"} {
		assert.Equal(t, http.StatusBadRequest, webtest.Request(t, app, http.MethodGet, Path+q, "", cookie).StatusCode, q)
	}
}

func TestList_Paging(t *testing.T) {
	app, db, cookie := setup(t)
	seed(t, db)

	var page controller.Page
	webtest.DecodeJSON(t, webtest.Request(t, app, http.MethodGet, Path+"?page=2&page_size=2", "", cookie), &page)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)
}

func TestUpdateGetDelete(t *testing.T) {
	app, db, cookie := setup(t)
	leads := seed(t, db)
	target := fmt.Sprintf("%s/%d", Path, leads[0].ID)

	resp := webtest.Request(t, app, http.MethodPut, target, `{"status":"in_progress","priority":"high","notes":"called"}`, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var l models.Lead
	webtest.DecodeJSON(t, webtest.Request(t, app, http.MethodGet, target, "", cookie), &l)
	assert.Equal(t, models.LeadStatusInProgress, l.Status)
	assert.Equal(t, models.LeadPriorityHigh, l.Priority)
	assert.Equal(t, "called", l.Notes)
	assert.Equal(t, "Anna", l.Name)

	assert.Equal(t, http.StatusBadRequest, webtest.Request(t, app, http.MethodPatch, target, `{"status":"lost"}`, cookie).StatusCode)
	assert.Equal(t, http.StatusNoContent, webtest.Request(t, app, http.MethodDelete, target, "", cookie).StatusCode)
	assert.Equal(t, http.StatusNotFound, webtest.Request(t, app, http.MethodGet, target, "", cookie).StatusCode)
}

func TestUpdate_RejectsEmptyContact(t *testing.T) {
	app, db, cookie := setup(t)
	leads := seed(t, db)
	target := fmt.Sprintf("%s/%d", Path, leads[0].ID)

	for _, body := range []string{`{"name":"","phone":""}`, `{"phone":""}`, `{"name":"   "}`} {
		resp := webtest.Request(t, app, http.MethodPut, target, body, cookie)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	var l models.Lead
	webtest.DecodeJSON(t, webtest.Request(t, app, http.MethodGet, target, "", cookie), &l)
	assert.Equal(t, "Anna", l.Name)
	assert.NotEmpty(t, l.Phone)
}

func TestStats(t *testing.T) {
	app, db, cookie := setup(t)
	seed(t, db)

	resp := webtest.Request(t, app, http.MethodGet, StatsPath, "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st controller.Stats
	webtest.DecodeJSON(t, resp, &st)

	assert.EqualValues(t, 3, st.Total)
	assert.EqualValues(t, 2, st.ByStatus[models.LeadStatusNew])
	assert.EqualValues(t, 1, st.ByStatus[models.LeadStatusClosed])
	assert.EqualValues(t, 0, st.ByStatus[models.LeadStatusCompleted])
	assert.EqualValues(t, 1, st.ByPriority[models.LeadPriorityUrgent])
	assert.EqualValues(t, 3, st.Today)
	assert.EqualValues(t, 3, st.LastWeek)
}
