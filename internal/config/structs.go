package config

import (
	"time"

	"github.com/flameguard/flameguard-site/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Upload    Upload
	Export    Export
	Hotspot   Hotspot
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic        bool     // enable static file browsing (for development purposes only)
	CleanPath           bool     // use clean path middleware to allow multi slash requests
	DisableRecover      bool     // disable recover middleware
	Domain              string   // domain name for the webserver
	Port                int      // listening port for the webserver
	ShutDownTime        int      // wait time for shutdown
	URL                 string   // base url for the webserver
	AllowOrigins        []string // CORS origins allowed to call /api
	CookieEncryptionKey string   // encryption key for cookies
	Session             Session  // session settings
}

// Upload holds the settings of the file upload endpoint.
type Upload struct {
	Dir               string
	URLPrefix         string
	MaxSizeMB         int
	AllowedExtensions []string
}

// Export holds the settings of the report export endpoint.
type Export struct {
	Dir       string
	URLPrefix string
}

// HotspotRegion maps one solid mask color to a named product area.
type HotspotRegion struct {
	Color      string
	AreaID     string
	Name       string
	HoverImage string
}

// Hotspot holds the image-map settings of the products section.
type Hotspot struct {
	MaskPath  string
	ImagePath string
	Regions   []HotspotRegion
}
