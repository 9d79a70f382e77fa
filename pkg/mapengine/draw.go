package mapengine

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sudorandom/imprint-map/pkg/timemap"
)

func (e *Engine) face(size float64) *text.GoTextFace {
	return &text.GoTextFace{Source: e.fontSource, Size: size}
}

func (e *Engine) drawText(dst *ebiten.Image, s string, face *text.GoTextFace, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, face, op)
}

func (e *Engine) drawMap(screen *ebiten.Image) {
	r := e.layout.Map
	mapImg := screen.SubImage(image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))).(*ebiten.Image)
	tr := e.ctrl.State().Transform

	if e.bgImage != nil {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(tr.K/e.bgScale, tr.K/e.bgScale)
		op.GeoM.Translate(tr.X, tr.Y)
		op.Filter = ebiten.FilterLinear
		mapImg.DrawImage(e.bgImage, op)
	}

	if tr.K >= labelZoomLevel && e.fontSource != nil {
		face := e.face(11)
		for _, c := range e.countries {
			if c.Label == "" {
				continue
			}
			x, y := tr.Apply(e.proj.Project(c.AnchorLat, c.AnchorLng))
			w, _ := text.Measure(c.Label, face, 0)
			e.drawText(mapImg, c.Label, face, x-w/2, y, ColorLabel)
		}
	}

	for _, m := range e.markers {
		if math.IsNaN(m.X) || math.IsNaN(m.Y) {
			continue
		}
		x, y := tr.Apply(m.X, m.Y)
		radius := math.Max(0, m.Radius*tr.K)
		fill := color.RGBA{
			uint8(float64(m.Color.R) * timemap.MarkerOpacity),
			uint8(float64(m.Color.G) * timemap.MarkerOpacity),
			uint8(float64(m.Color.B) * timemap.MarkerOpacity),
			uint8(math.Floor(255 * timemap.MarkerOpacity)),
		}
		vector.DrawFilledCircle(mapImg, float32(x), float32(y), float32(radius), fill, true)
	}

	e.drawTooltip(mapImg)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, ColorFrame, false)
}

func (e *Engine) drawTooltip(dst *ebiten.Image) {
	t := e.tooltip
	if !t.Visible {
		return
	}
	r := e.layout.Map
	if t.Crosshair {
		line := color.RGBA{timemap.ColorCrosshair.R, timemap.ColorCrosshair.G, timemap.ColorCrosshair.B, 77}
		dashLine(dst, t.CrossX, r.Y, t.CrossX, r.Y+r.H, line)
		dashLine(dst, r.X, t.CrossY, r.X+r.W, t.CrossY, line)
	}
	if e.fontSource != nil {
		face := e.face(14)
		w, h := text.Measure(t.Text, face, 0)
		vector.DrawFilledRect(dst, float32(t.X-3), float32(t.Y-h-2), float32(w+6), float32(h+4), color.RGBA{255, 255, 255, 200}, false)
		e.drawText(dst, t.Text, face, t.X, t.Y-h, timemap.ColorSelected)
	}
}

// dashLine draws a 16-on 4-off dashed line.
func dashLine(dst *ebiten.Image, x1, y1, x2, y2 float64, c color.Color) {
	length := math.Hypot(x2-x1, y2-y1)
	if length == 0 || math.IsNaN(length) {
		return
	}
	ux, uy := (x2-x1)/length, (y2-y1)/length
	for d := 0.0; d < length; d += 20 {
		end := math.Min(d+16, length)
		vector.StrokeLine(dst, float32(x1+ux*d), float32(y1+uy*d), float32(x1+ux*end), float32(y1+uy*end), 1, c, false)
	}
}

func (e *Engine) drawButton(screen *ebiten.Image, r Rect, label string) {
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), ColorControl, false)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, ColorFrame, false)
	if e.fontSource == nil {
		return
	}
	face := e.face(14)
	w, h := text.Measure(label, face, 0)
	e.drawText(screen, label, face, r.X+(r.W-w)/2, r.Y+(r.H-h)/2, ColorText)
}

func (e *Engine) drawControls(screen *ebiten.Image) {
	s := e.slider
	y := s.TrackY()
	vector.StrokeLine(screen, float32(s.Track.X), float32(y), float32(s.Track.X+s.Track.W), float32(y), 4, ColorFrame, true)

	if e.fontSource != nil {
		face := e.face(11)
		for _, tick := range s.Ticks(yearTickStep) {
			x := s.PositionOf(tick)
			vector.StrokeLine(screen, float32(x), float32(y+4), float32(x), float32(y+10), 1, ColorMuted, false)
			label := strconv.Itoa(tick)
			w, _ := text.Measure(label, face, 0)
			e.drawText(screen, label, face, x-w/2, y+12, ColorMuted)
		}
	}

	hx := s.PositionOf(e.ctrl.Year())
	vector.DrawFilledCircle(screen, float32(hx), float32(y), 8, ColorPage, true)
	vector.StrokeCircle(screen, float32(hx), float32(y), 8, 2, timemap.ColorDefault, true)

	label := "Play"
	if e.playback.State() == timemap.Playing {
		label = "Pause"
	}
	e.drawButton(screen, e.layout.PlayButton, label)
	e.drawButton(screen, e.layout.ZoomIn, "+")
	e.drawButton(screen, e.layout.ZoomOut, "-")

	if e.fontSource != nil {
		zoomLabel := fmt.Sprintf("zoom %.1fx", e.ctrl.State().Transform.K)
		z := e.layout.ZoomOut
		e.drawText(screen, zoomLabel, e.face(12), z.X+z.W+15, z.Y+9, ColorMuted)
	}
}

func (e *Engine) drawPanel(screen *ebiten.Image) {
	if e.fontSource == nil {
		return
	}
	e.drawText(screen, timemap.SummaryText(e.summary), e.face(18), e.layout.Summary.X, e.layout.Summary.Y, ColorText)
	e.drawList(screen)
	e.drawDetail(screen)
}

func (e *Engine) drawList(screen *ebiten.Image) {
	l := e.layout.List
	listImg := screen.SubImage(image.Rect(int(l.X), int(l.Y), int(l.X+l.W), int(l.Y+l.H))).(*ebiten.Image)
	if len(e.table.Columns) == 0 {
		return
	}
	colW := l.W / float64(len(e.table.Columns))
	nameFace := e.face(13)
	countFace := &text.GoTextFace{Source: e.monoSource, Size: 12}

	for ci, col := range e.table.Columns {
		x := l.X + float64(ci)*colW
		for ri, row := range col {
			y := l.Y + float64(ri)*rowHeight - e.listScroll
			if y+rowHeight < l.Y || y > l.Y+l.H {
				continue
			}
			if row.ID == e.input.hoverRow {
				vector.DrawFilledRect(listImg, float32(x), float32(y), float32(colW-6), rowHeight, ColorRowHover, false)
			}
			nameColor := color.Color(ColorText)
			if row.ID == e.highlighted {
				nameColor = timemap.ColorSelected
			}
			count := strconv.Itoa(row.Count)
			cw, _ := text.Measure(count, countFace, 0)
			name := truncate(row.Name, nameFace, colW-cw-16)
			e.drawText(listImg, name, nameFace, x+2, y+1, nameColor)
			if row.ID == e.highlighted {
				// No bold face is loaded, so overdraw one pixel right.
				e.drawText(listImg, name, nameFace, x+3, y+1, nameColor)
			}
			e.drawText(listImg, count, countFace, x+colW-cw-8, y+2, ColorMuted)
		}
	}
}

func truncate(s string, face *text.GoTextFace, width float64) string {
	if w, _ := text.Measure(s, face, 0); w <= width {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + "…"
		if w, _ := text.Measure(candidate, face, 0); w <= width {
			return candidate
		}
	}
	return ""
}

func (e *Engine) drawDetail(screen *ebiten.Image) {
	d := e.layout.Detail
	vector.StrokeRect(screen, float32(d.X), float32(d.Y), float32(d.W), float32(d.H), 1, ColorFrame, false)
	if e.detail.Empty() {
		e.drawText(screen, "Select a city on the map or in the list.", e.face(13), d.X+10, d.Y+10, ColorMuted)
		return
	}

	face := e.face(13)
	e.drawText(screen, "name variants:", face, d.X+10, d.Y+10, ColorMuted)

	// Wrap the variants, separated by em dashes, inside the panel.
	x, y := d.X+10, d.Y+30
	for i, v := range e.detail.Variants {
		item := v
		if i < len(e.detail.Variants)-1 {
			item += " —"
		}
		w, _ := text.Measure(item, face, 0)
		if x+w > d.X+d.W-10 && x > d.X+10 {
			x, y = d.X+10, y+18
		}
		e.drawText(screen, item, face, x, y, ColorText)
		x += w + 6
	}

	link := "→ [Search]"
	w, h := text.Measure(link, face, 0)
	if x+w > d.X+d.W-10 {
		x, y = d.X+10, y+18
	}
	e.drawText(screen, link, face, x, y, ColorLink)
	vector.StrokeLine(screen, float32(x), float32(y+h+1), float32(x+w), float32(y+h+1), 1, ColorLink, false)
	e.searchLink = Rect{x, y, w, h + 2}

	if hint := strings.TrimSpace(e.detail.SearchURL); hint != "" {
		e.drawText(screen, "press O to open the catalogue search", e.face(11), d.X+10, d.Y+d.H-20, ColorMuted)
	}
}
