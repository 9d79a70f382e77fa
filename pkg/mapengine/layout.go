package mapengine

import (
	"math"

	"github.com/sudorandom/imprint-map/pkg/geo"
	"github.com/sudorandom/imprint-map/pkg/timemap"
)

type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

const (
	panelWidth   = 580.0
	margin       = 20.0
	rowHeight    = 18.0
	buttonHeight = 32.0
	sliderHeight = 50.0
)

// Layout places every widget on the canvas. The map keeps the 5:4 aspect
// of the original page and the city list fills the right-hand panel.
type Layout struct {
	Map        Rect
	Slider     Rect
	PlayButton Rect
	ZoomIn     Rect
	ZoomOut    Rect
	Summary    Rect
	List       Rect
	Detail     Rect
}

func NewLayout(width, height int) Layout {
	w, h := float64(width), float64(height)
	mapW := math.Max(200, w-panelWidth-margin)
	mapH := math.Min(mapW*0.8, h-sliderHeight-buttonHeight-3*margin)
	if mapH < 100 {
		mapH = 100
	}
	panelX := mapW + margin
	panelW := w - panelX - margin

	sliderY := mapH + margin/2
	buttonY := sliderY + sliderHeight + margin/2
	detailH := 140.0

	return Layout{
		Map:        Rect{0, 0, mapW, mapH},
		Slider:     Rect{margin, sliderY, mapW - 2*margin, sliderHeight},
		PlayButton: Rect{margin, buttonY, 90, buttonHeight},
		ZoomIn:     Rect{margin + 100, buttonY, 40, buttonHeight},
		ZoomOut:    Rect{margin + 150, buttonY, 40, buttonHeight},
		Summary:    Rect{panelX, margin, panelW, 30},
		List:       Rect{panelX, margin + 40, panelW, h - detailH - 3*margin - 40},
		Detail:     Rect{panelX, h - detailH - margin, panelW, detailH},
	}
}

// Slider maps years onto a horizontal track.
type Slider struct {
	Track    Rect
	Min, Max int
}

// TrackY is the vertical position of the slider line.
func (s Slider) TrackY() float64 { return s.Track.Y + 12 }

// ValueAt is the year under x, rounded to the nearest step and clamped.
func (s Slider) ValueAt(x float64) int {
	if s.Max <= s.Min || s.Track.W <= 0 {
		return s.Min
	}
	t := (x - s.Track.X) / s.Track.W
	t = math.Max(0, math.Min(1, t))
	return s.Min + int(math.Round(t*float64(s.Max-s.Min)))
}

func (s Slider) PositionOf(v int) float64 {
	if s.Max <= s.Min {
		return s.Track.X
	}
	if v < s.Min {
		v = s.Min
	}
	if v > s.Max {
		v = s.Max
	}
	return s.Track.X + s.Track.W*float64(v-s.Min)/float64(s.Max-s.Min)
}

// Ticks returns the years labelled under the track: every step years,
// starting at the first multiple of step.
func (s Slider) Ticks(step int) []int {
	if step <= 0 {
		return nil
	}
	var out []int
	first := ((s.Min + step - 1) / step) * step
	for y := first; y <= s.Max; y += step {
		out = append(out, y)
	}
	return out
}

// RowAt resolves a click inside the list to the city under it.
func RowAt(list Rect, t timemap.Table, scroll, x, y float64) (timemap.Row, bool) {
	if !list.Contains(x, y) || len(t.Columns) == 0 {
		return timemap.Row{}, false
	}
	colW := list.W / float64(len(t.Columns))
	col := int((x - list.X) / colW)
	row := int((y - list.Y + scroll) / rowHeight)
	if col < 0 || col >= len(t.Columns) || row < 0 || row >= len(t.Columns[col]) {
		return timemap.Row{}, false
	}
	return t.Columns[col][row], true
}

// MaxScroll is how far the list can scroll before the tallest column's last
// row reaches the bottom of the list.
func MaxScroll(list Rect, t timemap.Table) float64 {
	rows := 0
	for _, c := range t.Columns {
		if len(c) > rows {
			rows = len(c)
		}
	}
	return math.Max(0, float64(rows)*rowHeight-list.H)
}

// tween moves the view from one transform to another over a fixed time.
type tween struct {
	from, to geo.Transform
	start    float64
	duration float64
	active   bool
}

// at returns the transform after elapsed seconds and whether the tween is
// still running.
func (tw tween) at(now float64) (geo.Transform, bool) {
	if !tw.active {
		return tw.to, false
	}
	t := (now - tw.start) / tw.duration
	if t >= 1 || tw.duration <= 0 {
		return tw.to, false
	}
	if t < 0 {
		t = 0
	}
	// Cubic ease in-out.
	if t < 0.5 {
		t = 4 * t * t * t
	} else {
		t = 1 - math.Pow(-2*t+2, 3)/2
	}
	return lerpTransform(tw.from, tw.to, t), true
}

func lerpTransform(a, b geo.Transform, t float64) geo.Transform {
	return geo.Transform{
		K: a.K + (b.K-a.K)*t,
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}
