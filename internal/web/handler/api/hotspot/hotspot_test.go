package hotspot

import (
	"context"
	"image"
	"image/color"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flameguard/flameguard-site/internal/db/controller/content"
	"github.com/flameguard/flameguard-site/internal/db/models"
	"github.com/flameguard/flameguard-site/internal/hotspot"
	"github.com/flameguard/flameguard-site/internal/web/webtest"
)

// mask is 100x50: left half red, right half transparent.
func mask() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))

	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.NRGBA{R: 255, A: 255})
		}
	}

	return img
}

func setup(t *testing.T, resolver *hotspot.Resolver) *fiber.App {
	t.Helper()

	db := webtest.NewDB(t)
	app := fiber.New()

	repo := content.New[models.ProductModal](db)
	require.NoError(t, repo.Create(context.Background(), &models.ProductModal{
		AreaID: "panel", Title: "Control panel", Base: models.Base{IsActive: true},
	}))
	require.NoError(t, repo.Create(context.Background(), &models.ProductModal{
		AreaID: "panel", Title: "Hidden",
	}))

	var s Service
	s.Init(app, db, resolver)

	return app
}

func TestGet(t *testing.T) {
	resolver, err := hotspot.New(mask(), []hotspot.Region{{Color: "#FF0000", AreaID: "panel", Name: "Panel", HoverImage: "/h.png"}})
	require.NoError(t, err)

	app := setup(t, resolver)

	tests := []struct {
		name       string
		query      string
		wantRegion bool
		wantModals int
	}{
		// displayed at twice the mask size
		{"hover hit", "?x=20&y=20&width=200&height=100&action=hover", true, 0},
		{"click hit", "?x=20&y=20&width=200&height=100&action=click", true, 1},
		{"transparent", "?x=150&y=20&width=200&height=100", false, 0},
		{"outside", "?x=250&y=20&width=200&height=100", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := webtest.Request(t, app, http.MethodGet, Path+tt.query, "", "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var out Response
			webtest.DecodeJSON(t, resp, &out)

			assert.True(t, out.Enabled)
			assert.Equal(t, tt.wantRegion, out.Region != nil)
			assert.Len(t, out.Modals, tt.wantModals)

			if tt.wantRegion {
				assert.Equal(t, "panel", out.Region.AreaID)
				assert.Equal(t, "pointer", out.Cursor)
			} else {
				assert.Equal(t, "default", out.Cursor)
			}
		})
	}
}

func TestGet_Disabled(t *testing.T) {
	app := setup(t, hotspot.Load("/does/not/exist.png", nil))

	resp := webtest.Request(t, app, http.MethodGet, Path+"?x=1&y=1&width=10&height=10&action=click", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	webtest.DecodeJSON(t, resp, &out)
	assert.False(t, out.Enabled)
	assert.Nil(t, out.Region)
}

func TestGet_BadQuery(t *testing.T) {
	app := setup(t, nil)

	for _, q := range []string{"?x=1&y=1", "?x=1&y=1&width=0&height=10", "?x=1&y=1&width=5&height=5&action=drag"} {
		assert.Equal(t, http.StatusBadRequest, webtest.Request(t, app, http.MethodGet, Path+q, "", "").StatusCode, q)
	}
}
