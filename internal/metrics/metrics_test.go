package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, app *fiber.App) string {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, Path, nil), -1)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return string(body)
}

func TestRegister(t *testing.T) {
	app := fiber.New()
	Register(app)

	LeadSubmitted("contact_form")
	LeadSubmitted("")
	LeadRejected("consent")
	ContentFallback("hero")
	Uploaded(10)

	body := scrape(t, app)

	assert.Contains(t, body, `flameguard_leads_submitted_total{source="contact_form"}`)
	assert.Contains(t, body, `flameguard_leads_submitted_total{source="unknown"}`)
	assert.Contains(t, body, `flameguard_leads_rejected_total{reason="consent"}`)
	assert.Contains(t, body, `flameguard_content_fallback_total{section="hero"}`)
	assert.Contains(t, body, "flameguard_upload_bytes_total")
}
