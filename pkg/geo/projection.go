// Package geo projects geographic coordinates onto the map surface and
// tracks the pan/zoom transform applied on top of the projection.
package geo

import (
	"math"
)

const (
	MinZoom = 1.0
	MaxZoom = 8.0
)

// Mercator is a spherical Mercator projection whose center point lands on
// (TX, TY) and whose scale is pixels per radian.
type Mercator struct {
	CenterLon, CenterLat float64
	Scale                float64
	TX, TY               float64
}

// NewEuropeMercator frames central Europe on a width x height surface.
func NewEuropeMercator(width, height int) Mercator {
	return Mercator{
		CenterLon: 13,
		CenterLat: 52,
		Scale:     float64(width) / 1.5,
		TX:        float64(width) / 2,
		TY:        float64(height) / 2,
	}
}

func mercatorY(lat float64) float64 {
	if lat > 89.5 {
		lat = 89.5
	}
	if lat < -89.5 {
		lat = -89.5
	}
	return math.Log(math.Tan(math.Pi/4 + lat*math.Pi/360))
}

// Project maps latitude/longitude in degrees to untransformed map pixels.
// NaN coordinates project to NaN.
func (m Mercator) Project(lat, lng float64) (x, y float64) {
	x = m.TX + m.Scale*(lng-m.CenterLon)*math.Pi/180
	y = m.TY - m.Scale*(mercatorY(lat)-mercatorY(m.CenterLat))
	return x, y
}

// Invert is the inverse of Project.
func (m Mercator) Invert(x, y float64) (lat, lng float64) {
	lng = m.CenterLon + (x-m.TX)/m.Scale*180/math.Pi
	my := mercatorY(m.CenterLat) - (y-m.TY)/m.Scale
	lat = (2*math.Atan(math.Exp(my)) - math.Pi/2) * 180 / math.Pi
	return lat, lng
}

// Transform is the pan/zoom state: screen = map*K + (X, Y).
type Transform struct {
	K, X, Y float64
}

var Identity = Transform{K: 1}

func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

func (t Transform) Invert(x, y float64) (float64, float64) {
	return (x - t.X) / t.K, (y - t.Y) / t.K
}

func clampZoom(k float64) float64 {
	if k < MinZoom {
		return MinZoom
	}
	if k > MaxZoom {
		return MaxZoom
	}
	return k
}

// ScaleBy multiplies the zoom by factor, clamped to [MinZoom, MaxZoom],
// keeping the map point under the screen anchor (ax, ay) fixed.
func (t Transform) ScaleBy(factor, ax, ay float64) Transform {
	k := clampZoom(t.K * factor)
	mx, my := t.Invert(ax, ay)
	return Transform{K: k, X: ax - mx*k, Y: ay - my*k}
}

func (t Transform) Translate(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + dx, Y: t.Y + dy}
}

// Box is a lat/long bounding box in degrees.
type Box struct {
	MinLat, MaxLat   float64
	MinLong, MaxLong float64
}

// FitBounds returns the transform that centers box on a width x height
// surface, filling 90% of the tighter dimension, with zoom kept in range.
func FitBounds(m Mercator, box Box, width, height int) Transform {
	x0, y0 := m.Project(box.MinLat, box.MinLong)
	x1, y1 := m.Project(box.MaxLat, box.MaxLong)
	w, h := float64(width), float64(height)
	dx, dy := math.Abs(x1-x0), math.Abs(y1-y0)
	cx, cy := (x0+x1)/2, (y0+y1)/2

	k := clampZoom(0.9 / math.Max(dx/w, dy/h))
	return Transform{K: k, X: w/2 - k*cx, Y: h/2 - k*cy}
}
