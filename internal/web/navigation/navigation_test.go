package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Test Page", "section1", "page1")

	assert.Equal(t, "Test Page", ctx.PageTitle)
	assert.Equal(t, "section1", ctx.ActiveSection)
	assert.Equal(t, "page1", ctx.ActivePage)
	assert.NotNil(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Breadcrumbs)
}

func TestContext_AddBreadcrumb(t *testing.T) {
	ctx := NewContext("Test Page", "section1", "page1")

	// Add first breadcrumb
	ctx.AddBreadcrumb("Home", "/", false)
	assert.Len(t, ctx.Breadcrumbs, 1)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "/", ctx.Breadcrumbs[0].URL)
	assert.False(t, ctx.Breadcrumbs[0].Active)

	// Add second breadcrumb
	ctx.AddBreadcrumb("Leads", "/admin/leads", false)
	assert.Len(t, ctx.Breadcrumbs, 2)
	assert.Equal(t, "Leads", ctx.Breadcrumbs[1].Title)

	// Add active breadcrumb
	ctx.AddBreadcrumb("Current Page", "/admin/leads/7", true)
	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := NewContext("Test Page", "section1", "page1").
		AddBreadcrumb("Home", "/", false).
		AddBreadcrumb("Leads", "/admin/leads", false).
		AddBreadcrumb("Current", "/admin/leads/7", true)

	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "Leads", ctx.Breadcrumbs[1].Title)
	assert.Equal(t, "Current", ctx.Breadcrumbs[2].Title)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_IsActive(t *testing.T) {
	ctx := NewContext("Test Page", "content", "products")

	// Should return true when both section and page match
	assert.True(t, ctx.IsActive("content", "products"))

	// Should return false when section doesn't match
	assert.False(t, ctx.IsActive("dashboard", "products"))

	// Should return false when page doesn't match
	assert.False(t, ctx.IsActive("content", "videos"))

	// Should return false when neither match
	assert.False(t, ctx.IsActive("dashboard", "main"))
}

func TestContext_IsSectionActive(t *testing.T) {
	ctx := NewContext("Test Page", "content", "products")

	// Should return true when section matches
	assert.True(t, ctx.IsSectionActive("content"))

	// Should return false when section doesn't match
	assert.False(t, ctx.IsSectionActive("dashboard"))
	assert.False(t, ctx.IsSectionActive("admin"))
}

func TestBreadcrumbItem(t *testing.T) {
	item := BreadcrumbItem{
		Title:  "Test",
		URL:    "/test",
		Active: true,
	}

	assert.Equal(t, "Test", item.Title)
	assert.Equal(t, "/test", item.URL)
	assert.True(t, item.Active)
}

func TestMenu_FiltersByPermission(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register(
		MenuItem{Title: "Dashboard", URL: "/dashboard", Permission: "dashboard.view"},
		MenuItem{Title: "Users", URL: "/admin/users", Permission: "admin.users"},
		MenuItem{Title: "Site", URL: "/"},
	)
	// duplicate URLs are ignored
	Register(MenuItem{Title: "Dashboard again", URL: "/dashboard"})

	all := Menu([]string{"dashboard.view", "admin.users"})
	assert.Len(t, all, 3)
	assert.Equal(t, "Dashboard", all[0].Title)

	editor := Menu([]string{"dashboard.view"})
	assert.Len(t, editor, 2)

	for _, it := range editor {
		assert.NotEqual(t, "Users", it.Title)
	}

	anon := Menu(nil)
	assert.Len(t, anon, 1)
	assert.Equal(t, "Site", anon[0].Title)
}
