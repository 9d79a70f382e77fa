package mapengine

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sudorandom/imprint-map/pkg/geo"
)

// generateBackground rasterizes the country outlines once. The image is
// bgScale times the map size so it stays crisp when zoomed in.
func (e *Engine) generateBackground() error {
	w := int(e.layout.Map.W * e.bgScale)
	h := int(e.layout.Map.H * e.bgScale)
	img := renderOutlines(e.countries, e.proj, w, h, e.bgScale, ColorOutline)
	e.bgImage = ebiten.NewImageFromImage(img)
	return nil
}

// renderOutlines draws every ring of every country onto a transparent
// w x h image, with projected coordinates multiplied by scale.
func renderOutlines(countries []geo.Country, proj geo.Mercator, w, h int, scale float64, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	thickness := int(math.Max(1, math.Round(scale)))
	for _, country := range countries {
		for _, poly := range country.Polygons {
			for _, ring := range poly {
				drawRing(img, proj, ring, scale, thickness, c)
			}
		}
	}
	return img
}

func drawRing(img *image.RGBA, proj geo.Mercator, coords [][]float64, scale float64, thickness int, c color.RGBA) {
	for i := 0; i < len(coords)-1; i++ {
		if len(coords[i]) < 2 || len(coords[i+1]) < 2 {
			continue
		}
		x1, y1 := proj.Project(coords[i][1], coords[i][0])
		x2, y2 := proj.Project(coords[i+1][1], coords[i+1][0])
		drawLine(img, int(x1*scale), int(y1*scale), int(x2*scale), int(y2*scale), thickness, c)
	}
}

// drawLine is Bresenham with a square pen of the given thickness.
func drawLine(img *image.RGBA, x1, y1, x2, y2, thickness int, c color.RGBA) {
	b := img.Bounds()
	// Segments far outside the image would only burn cycles.
	if (x1 < -b.Dx() && x2 < -b.Dx()) || (x1 > 2*b.Dx() && x2 > 2*b.Dx()) ||
		(y1 < -b.Dy() && y2 < -b.Dy()) || (y1 > 2*b.Dy() && y2 > 2*b.Dy()) {
		return
	}
	dx, dy := math.Abs(float64(x2-x1)), math.Abs(float64(y2-y1))
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		for oy := 0; oy < thickness; oy++ {
			for ox := 0; ox < thickness; ox++ {
				px, py := x1+ox, y1+oy
				if px >= 0 && px < b.Dx() && py >= 0 && py < b.Dy() {
					off := py*img.Stride + px*4
					img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
				}
			}
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
