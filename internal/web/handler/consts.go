package handler

const (
	// BaseLayout is the default path for admin layout templates.
	BaseLayout = "layouts/base"

	// PublicLayout wraps the pages of the public site.
	PublicLayout = "layouts/public"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the root of a route group created with app.Route.
	RouterRootPath = "/"

	// APIPath prefixes every JSON endpoint.
	APIPath = RootPath + "api"

	// AdminPath prefixes the admin panel pages.
	AdminPath = RootPath + "admin"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
