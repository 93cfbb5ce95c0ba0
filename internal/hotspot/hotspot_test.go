package hotspot

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var regions = []Region{
	{Color: "#FF0000", AreaID: "control-panel", Name: "Control panel"},
	{Color: "#00ff00", AreaID: "smoke-detector", Name: "Smoke detector"},
	{Color: "0000FF", AreaID: "manual-call-point", Name: "Manual call point"},
}

// testMask is 200x100: red, green, blue and an unmapped gray in four 50px columns,
// with a transparent bottom row band.
func testMask() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 100))
	cols := []color.NRGBA{
		{R: 0xff, A: 0xff},
		{G: 0xff, A: 0xff},
		{B: 0xff, A: 0xff},
		{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	}

	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if y >= 90 {
				continue
			}

			img.SetNRGBA(x, y, cols[x/50])
		}
	}

	return img
}

func TestResolve_EveryRegionColor(t *testing.T) {
	r, err := New(testMask(), regions)
	require.NoError(t, err)
	require.True(t, r.Enabled())

	native := Size{Width: 200, Height: 100}

	for i, want := range []string{"control-panel", "smoke-detector", "manual-call-point"} {
		reg, ok := r.Resolve(Point{X: float64(i*50 + 25), Y: 40}, native)
		require.True(t, ok, want)
		assert.Equal(t, want, reg.AreaID)
	}

	_, ok := r.Resolve(Point{X: 175, Y: 40}, native)
	assert.False(t, ok, "unmapped color")

	_, ok = r.Resolve(Point{X: 25, Y: 95}, native)
	assert.False(t, ok, "transparent pixel")
}

func TestResolve_ScalesDisplayCoordinates(t *testing.T) {
	r, err := New(testMask(), regions)
	require.NoError(t, err)

	// displayed at half size: x=60 maps to mask x=120 (blue column)
	reg, ok := r.Resolve(Point{X: 60, Y: 20}, Size{Width: 100, Height: 50})
	require.True(t, ok)
	assert.Equal(t, "manual-call-point", reg.AreaID)

	// displayed at double size: x=110 maps to mask x=55 (green column)
	reg, ok = r.Resolve(Point{X: 110, Y: 20}, Size{Width: 400, Height: 200})
	require.True(t, ok)
	assert.Equal(t, "smoke-detector", reg.AreaID)
}

func TestResolve_OutOfBounds(t *testing.T) {
	r, err := New(testMask(), regions)
	require.NoError(t, err)

	display := Size{Width: 200, Height: 100}

	for _, p := range []Point{{X: -1, Y: 10}, {X: 10, Y: -1}, {X: 200, Y: 10}, {X: 10, Y: 100}} {
		_, ok := r.Resolve(p, display)
		assert.False(t, ok, "%+v", p)
	}

	_, ok := r.Resolve(Point{X: 10, Y: 10}, Size{})
	assert.False(t, ok, "zero display size")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, testMask()))
	require.NoError(t, f.Close())

	r := Load(path, regions)
	require.True(t, r.Enabled())

	reg, ok := r.Resolve(Point{X: 10, Y: 10}, Size{Width: 200, Height: 100})
	require.True(t, ok)
	assert.Equal(t, "control-panel", reg.AreaID)

	var areas []string
	for _, reg := range r.Regions() {
		areas = append(areas, reg.AreaID)
	}

	assert.Equal(t, []string{"control-panel", "manual-call-point", "smoke-detector"}, areas)
}

func TestLoad_FailureDisables(t *testing.T) {
	for name, path := range map[string]string{
		"missing": filepath.Join(t.TempDir(), "nope.png"),
		"empty":   "",
	} {
		t.Run(name, func(t *testing.T) {
			r := Load(path, regions)
			assert.False(t, r.Enabled())
			assert.Nil(t, r.Regions())

			_, ok := r.Resolve(Point{X: 1, Y: 1}, Size{Width: 10, Height: 10})
			assert.False(t, ok)
		})
	}

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o600))
	assert.False(t, Load(garbage, regions).Enabled())

	var zero *Resolver
	assert.False(t, zero.Enabled())
}

func TestNew_InvalidColor(t *testing.T) {
	_, err := New(testMask(), []Region{{Color: "red", AreaID: "x"}})
	require.ErrorIs(t, err, ErrInvalidColor)
}

func TestHexHelpers(t *testing.T) {
	assert.Equal(t, "#ff8000", HexColor(color.NRGBA{R: 0xff, G: 0x80, A: 0xff}))

	got, err := NormalizeHex(" #ABCDEF ")
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", got)

	for _, bad := range []string{"", "#abc", "#gg0000", "#1234567"} {
		_, err = NormalizeHex(bad)
		require.ErrorIs(t, err, ErrInvalidColor, bad)
	}
}
