// Package navigation provides utilities for managing navigation state, breadcrumbs and the admin menu.
package navigation

import "slices"

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// MenuItem is one entry of the admin sidebar.
type MenuItem struct {
	Title      string
	URL        string
	Section    string
	Page       string
	Permission string
}

var menu []MenuItem

// Register appends items to the admin menu. Handlers call it from Init, so the menu
// follows registration order.
func Register(items ...MenuItem) {
	for _, it := range items {
		if !slices.ContainsFunc(menu, func(m MenuItem) bool { return m.URL == it.URL }) {
			menu = append(menu, it)
		}
	}
}

// Reset clears the admin menu.
func Reset() {
	menu = nil
}

// Menu returns the menu entries permitted by perms. Items without a permission are always shown.
func Menu(perms []string) []MenuItem {
	out := make([]MenuItem, 0, len(menu))

	for _, it := range menu {
		if it.Permission == "" || slices.Contains(perms, it.Permission) {
			out = append(out, it)
		}
	}

	return out
}
