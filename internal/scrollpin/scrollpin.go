// Package scrollpin decides the layout of a "pinned text, scrolling media" section.
//
// The section shows N (text, media) pairs. While the visitor scrolls through the media
// column, the text column is pinned to the viewport center and shows the text of the
// media item nearest that center. Once the last item has passed the center the text is
// released back into the flow, aligned with the last media item.
//
// All coordinates are CSS pixels. Item rects are in viewport coordinates, so Top is
// negative once an item has scrolled above the viewport.
package scrollpin

import "math"

// FadeDuration is the cross-fade between two texts, in milliseconds.
const FadeDuration = 300

// Position is the CSS position of the text column.
type Position string

const (
	// PositionStatic leaves the text column in normal flow.
	PositionStatic Position = "static"
	// PositionFixed pins the text column to the viewport.
	PositionFixed Position = "fixed"
	// PositionRelative keeps the column in flow but shifts it down to the last media item.
	PositionRelative Position = "relative"
)

// Rect is the vertical extent of one media item in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Center returns the vertical center of r.
func (r Rect) Center() float64 { return r.Top + r.Height/2 }

// Metrics is one scroll sample.
type Metrics struct {
	ViewportHeight float64 `json:"viewport_height"`
	Items          []Rect  `json:"items"`
}

// State is carried from one scroll tick to the next.
type State struct {
	Pinned        bool `json:"pinned"`
	ReleasedAtEnd bool `json:"released_at_end"`
	ActiveIndex   int  `json:"active_index"`
}

// Geometry is the static layout of the section.
type Geometry struct {
	ContainerLeft  float64 `json:"container_left"`
	ContainerWidth float64 `json:"container_width"`
	TextHeight     float64 `json:"text_height"`
	ItemHeight     float64 `json:"item_height"`
	Gap            float64 `json:"gap"`
}

// Decision is the style to apply to the text column and the text to show.
type Decision struct {
	Position    Position `json:"position"`
	Left        float64  `json:"left"`
	Width       float64  `json:"width"`
	TranslateY  float64  `json:"translate_y"`
	ActiveIndex int      `json:"active_index"`
	FadeMS      int      `json:"fade_ms"`
}

// Step evaluates one scroll tick. Sections with fewer than two items never pin.
// The returned state always satisfies ReleasedAtEnd implies Pinned, and ActiveIndex is within [0, N).
// The rule holds per state, not across ticks: a jump past the section goes from the zero state
// straight to released without an intermediate pinned tick. Large jumps are not interpolated.
func Step(prev State, m Metrics) State {
	n := len(m.Items)
	if n < 2 {
		return State{}
	}

	center := m.ViewportHeight / 2

	next := State{
		ReleasedAtEnd: m.Items[n-1].Center() < center,
	}
	next.Pinned = next.ReleasedAtEnd || m.Items[0].Center() <= center

	switch {
	case next.ReleasedAtEnd:
		next.ActiveIndex = n - 1
	case !next.Pinned:
		next.ActiveIndex = 0
	default:
		next.ActiveIndex = nearest(m, center, clamp(prev.ActiveIndex, n))
	}

	return next
}

// nearest returns the intersecting item whose center is closest to center,
// or fallback when no item intersects the viewport.
func nearest(m Metrics, center float64, fallback int) int {
	best, bestDist := fallback, math.Inf(1)

	for i, r := range m.Items {
		if r.Top >= m.ViewportHeight || r.Top+r.Height <= 0 {
			continue
		}

		if d := math.Abs(r.Center() - center); d < bestDist {
			best, bestDist = i, d
		}
	}

	return best
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}

	if i >= n {
		return n - 1
	}

	return i
}

// ReleaseOffset is how far the released text column is shifted down so it lines up
// with the start of the last of n media items.
func ReleaseOffset(n int, g Geometry) float64 {
	if n < 2 {
		return 0
	}

	return float64(n-1) * (g.ItemHeight + g.Gap)
}

// Layout turns a state into a style decision.
func Layout(s State, m Metrics, g Geometry) Decision {
	d := Decision{
		Position:    PositionStatic,
		ActiveIndex: s.ActiveIndex,
		FadeMS:      FadeDuration,
	}

	switch {
	case s.ReleasedAtEnd:
		d.Position = PositionRelative
		d.TranslateY = ReleaseOffset(len(m.Items), g)
	case s.Pinned:
		d.Position = PositionFixed
		d.Left = g.ContainerLeft
		d.Width = g.ContainerWidth
		d.TranslateY = (m.ViewportHeight - g.TextHeight) / 2
	}

	return d
}

// Evaluate runs Step and Layout for one tick.
func Evaluate(prev State, m Metrics, g Geometry) (State, Decision) {
	s := Step(prev, m)
	return s, Layout(s, m, g)
}

// MetricsAt builds the sample seen at document scroll offset scrollY for n equally sized
// items starting at document offset top.
func MetricsAt(scrollY, viewportHeight, top float64, n int, g Geometry) Metrics {
	items := make([]Rect, n)
	for i := range items {
		items[i] = Rect{
			Top:    top + float64(i)*(g.ItemHeight+g.Gap) - scrollY,
			Height: g.ItemHeight,
		}
	}

	return Metrics{ViewportHeight: viewportHeight, Items: items}
}
