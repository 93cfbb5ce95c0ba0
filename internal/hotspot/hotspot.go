// Package hotspot turns a flat product photo into an image map.
//
// A mask bitmap of the same aspect ratio paints every hotspot in one solid color.
// A pointer position on the displayed photo is scaled to the mask's native size,
// the pixel under it is sampled and its color is looked up in the region table.
package hotspot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // mask decoder
	_ "image/jpeg" // mask decoder
	_ "image/png"  // mask decoder
	"math"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrInvalidColor is returned for a region color that is not #rrggbb.
var ErrInvalidColor = errors.New("color must be in #rrggbb form")

// Region is a named hotspot.
type Region struct {
	Color      string `json:"color"`
	AreaID     string `json:"area_id"`
	Name       string `json:"name"`
	HoverImage string `json:"hover_image"`
}

// Point is a pointer position relative to the displayed image's top left corner.
type Point struct {
	X float64
	Y float64
}

// Size is the rendered size of the displayed image.
type Size struct {
	Width  float64
	Height float64
}

// Resolver maps pointer positions to regions. The zero value and a resolver whose mask
// failed to load are disabled and never match.
type Resolver struct {
	mask    image.Image
	regions map[string]Region
}

// New returns a resolver over mask. Region colors are matched case-insensitively.
func New(mask image.Image, regions []Region) (*Resolver, error) {
	table := make(map[string]Region, len(regions))

	for _, r := range regions {
		key, err := NormalizeHex(r.Color)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", r.AreaID, err)
		}

		r.Color = key
		table[key] = r
	}

	return &Resolver{mask: mask, regions: table}, nil
}

// Load reads the mask from path. Any failure is logged and yields a disabled resolver.
func Load(path string, regions []Region) *Resolver {
	mask, err := decodeFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("hotspot mask unavailable, image map disabled")
		return &Resolver{}
	}

	r, err := New(mask, regions)
	if err != nil {
		log.Warn().Err(err).Msg("invalid hotspot region table, image map disabled")
		return &Resolver{}
	}

	log.Info().Str("path", path).Int("regions", len(regions)).
		Int("width", mask.Bounds().Dx()).Int("height", mask.Bounds().Dy()).
		Msg("hotspot mask loaded")

	return r
}

func decodeFile(path string) (image.Image, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}

	f, err := os.Open(path) //nolint:gosec // path comes from the config file
	if err != nil {
		return nil, err
	}

	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close hotspot mask")
		}
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode mask: %w", err)
	}

	return img, nil
}

// Enabled reports whether a mask is loaded.
func (r *Resolver) Enabled() bool {
	return r != nil && r.mask != nil && !r.mask.Bounds().Empty()
}

// Regions returns the region table ordered by area id, or nil when the resolver is disabled.
func (r *Resolver) Regions() []Region {
	if !r.Enabled() {
		return nil
	}

	out := make([]Region, 0, len(r.regions))
	for _, reg := range r.regions {
		out = append(out, reg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].AreaID < out[j].AreaID })

	return out
}

// Resolve returns the region under p on an image displayed at size display.
func (r *Resolver) Resolve(p Point, display Size) (Region, bool) {
	if !r.Enabled() || display.Width <= 0 || display.Height <= 0 {
		return Region{}, false
	}

	if p.X < 0 || p.Y < 0 || p.X >= display.Width || p.Y >= display.Height {
		return Region{}, false
	}

	b := r.mask.Bounds()
	mx := b.Min.X + int(math.Floor(p.X*float64(b.Dx())/display.Width))
	my := b.Min.Y + int(math.Floor(p.Y*float64(b.Dy())/display.Height))

	c := r.mask.At(mx, my)
	if _, _, _, a := c.RGBA(); a == 0 {
		return Region{}, false
	}

	reg, ok := r.regions[HexColor(c)]

	return reg, ok
}

// HexColor formats c as lowercase #rrggbb, ignoring alpha.
func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA) //nolint:forcetypeassert // NRGBAModel always returns NRGBA

	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// NormalizeHex validates s and returns it in lowercase #rrggbb form. The leading # is optional.
func NormalizeHex(s string) (string, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if len(s) != 6 {
		return "", ErrInvalidColor
	}

	for _, ch := range s {
		if !strings.ContainsRune("0123456789abcdef", ch) {
			return "", ErrInvalidColor
		}
	}

	return "#" + s, nil
}
