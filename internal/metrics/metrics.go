// Package metrics holds the site's prometheus collectors and the /metrics endpoint.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path is where the metrics are exposed.
const Path = "/metrics"

var (
	leadsSubmitted = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "flameguard",
			Name:      "leads_submitted_total",
			Help:      "Number of accepted contact form submissions, by source.",
		},
		[]string{"source"},
	)

	leadsRejected = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "flameguard",
			Name:      "leads_rejected_total",
			Help:      "Number of contact form submissions rejected by validation, by reason.",
		},
		[]string{"reason"},
	)

	contentFallbacks = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "flameguard",
			Name:      "content_fallback_total",
			Help:      "Number of page sections served from fallback content, by section.",
		},
		[]string{"section"},
	)

	uploadedBytes = promauto.NewCounter( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "flameguard",
			Name:      "upload_bytes_total",
			Help:      "Bytes stored by the upload endpoint.",
		},
	)
)

// LeadSubmitted counts an accepted lead.
func LeadSubmitted(source string) {
	if source == "" {
		source = "unknown"
	}

	leadsSubmitted.WithLabelValues(source).Inc()
}

// LeadRejected counts a rejected lead.
func LeadRejected(reason string) {
	leadsRejected.WithLabelValues(reason).Inc()
}

// ContentFallback counts a section served from fallback content.
func ContentFallback(section string) {
	contentFallbacks.WithLabelValues(section).Inc()
}

// Uploaded adds n stored bytes.
func Uploaded(n int64) {
	uploadedBytes.Add(float64(n))
}

// Register mounts the metrics handler on app.
func Register(app *fiber.App) {
	app.Get(Path, adaptor.HTTPHandler(promhttp.Handler()))
}
