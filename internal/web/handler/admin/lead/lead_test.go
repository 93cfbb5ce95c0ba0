package lead

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flameguard/flameguard-site/internal/auth"
	"github.com/flameguard/flameguard-site/internal/config"
	controller "github.com/flameguard/flameguard-site/internal/db/controller/lead"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/export"
	"github.com/flameguard/flameguard-site/internal/web/webtest"
)

func setup(t *testing.T) (*fiber.App, *gorm.DB, *webtest.Views, *config.Config, string) {
	t.Helper()

	webtest.InitSessions()

	db := webtest.NewDB(t)
	cfg := webtest.NewConfig(t)
	views := &webtest.Views{}
	app := webtest.NewApp(cfg, db, views)

	var s Service
	s.Init(app, db, export.New(cfg.Export), auth.NewService(db))

	return app, db, views, cfg, webtest.Login(t, webtest.NewUser(t, db, "manager", models.RoleEditor))
}

func newLead(t *testing.T, db *gorm.DB, name string, status models.LeadStatus) *models.Lead {
	t.Helper()

	l := &models.Lead{Name: name, Phone: "+100", Consent: true, Status: status, Priority: models.LeadPriorityMedium}
	require.NoError(t, db.Create(l).Error)

	return l
}

func TestList_FiltersAndStats(t *testing.T) {
	app, db, views, _, cookie := setup(t)

	newLead(t, db, "Anna", models.LeadStatusNew)
	newLead(t, db, "Boris", models.LeadStatusInProgress)
	newLead(t, db, "Anton", models.LeadStatusNew)

	resp := webtest.Request(t, app, http.MethodGet, Path+"?status=new&search=an", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	name, data := views.Last()
	assert.Equal(t, TemplateList, name)

	page := data["Page"].(*controller.Page)
	assert.EqualValues(t, 2, page.Total)

	stats := data["Stats"].(*controller.Stats)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.ByStatus[models.LeadStatusInProgress])

	assert.Equal(t, "search=an&status=new", data["FilterQuery"])
}

func TestList_Pagination(t *testing.T) {
	app, db, views, _, cookie := setup(t)

	for i := 0; i < 5; i++ {
		newLead(t, db, "L"+strconv.Itoa(i), models.LeadStatusNew)
	}

	resp := webtest.Request(t, app, http.MethodGet, Path+"?page_size=2&page=2", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, data := views.Last()
	page := data["Page"].(*controller.Page)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, true, data["HasPrev"])
	assert.Equal(t, true, data["HasNext"])
	assert.Equal(t, Path+"?page=3&page_size=2", data["NextURL"])
}

func TestList_InvalidFilter(t *testing.T) {
	app, _, _, _, cookie := setup(t)

	resp := webtest.Request(t, app, http.MethodGet, Path+"?status=bogus", "", cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, webtest.Body(t, resp), controller.ErrInvalidStatus.Error())
}

func TestUpdate(t *testing.T) {
	app, db, _, _, cookie := setup(t)
	l := newLead(t, db, "Anna", models.LeadStatusNew)
	target := Path + "/" + strconv.FormatUint(l.ID, 10)

	form := url.Values{
		"name": {"Anna K"}, "phone": {"+100"}, "status": {"in_progress"}, "priority": {"urgent"},
		"notes": {"call back on monday"},
	}

	resp := webtest.Request(t, app, http.MethodPost, target, form.Encode(), cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	got, err := controller.Get(t.Context(), db, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna K", got.Name)
	assert.Equal(t, models.LeadStatusInProgress, got.Status)
	assert.Equal(t, models.LeadPriorityUrgent, got.Priority)
	assert.Equal(t, "call back on monday", got.Notes)

	form.Set("status", "archived")
	resp = webtest.Request(t, app, http.MethodPost, target, form.Encode(), cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, webtest.Body(t, resp), controller.ErrInvalidStatus.Error())
}

func TestDelete(t *testing.T) {
	app, db, _, _, cookie := setup(t)
	l := newLead(t, db, "Anna", models.LeadStatusNew)

	resp := webtest.Request(t, app, http.MethodPost, Path+"/"+strconv.FormatUint(l.ID, 10)+"/delete", "", cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	_, err := controller.Get(t.Context(), db, l.ID)
	assert.ErrorIs(t, err, controller.ErrNotFound)
}

func TestExport_RedirectsToReport(t *testing.T) {
	app, db, _, cfg, cookie := setup(t)
	newLead(t, db, "Anna", models.LeadStatusNew)
	newLead(t, db, "Boris", models.LeadStatusClosed)

	resp := webtest.Request(t, app, http.MethodPost, Path+"/export?status=closed", "", cookie)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	loc := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, cfg.Export.URLPrefix+"/"), loc)

	b, err := os.ReadFile(filepath.Join(cfg.Export.Dir, strings.TrimPrefix(loc, cfg.Export.URLPrefix+"/")))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Boris")
	assert.NotContains(t, string(b), "Anna")
}
