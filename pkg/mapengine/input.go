package mapengine

import (
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type dragMode int

const (
	dragNone dragMode = iota
	dragMap
	dragSlider
)

type inputState struct {
	drag         dragMode
	lastX, lastY float64
	hoverID      string
	hoverRow     string
}

func (e *Engine) handleKeys(now time.Time) {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		e.playback.Toggle(now)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		e.ctrl.Step(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		e.ctrl.Step(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd):
		e.zoomBy(zoomStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		e.zoomBy(1 / zoomStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		e.ctrl.ClearSelection()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		e.openSearch()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if e.CaptureDir != "" {
			e.captureRequested = true
		}
	}
}

func (e *Engine) handleMouse(now time.Time) {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)

	if _, wy := ebiten.Wheel(); wy != 0 {
		e.handleWheel(x, y, wy)
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		e.press(x, y, now)
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		e.drag(x, y)
	default:
		e.input.drag = dragNone
	}

	e.updateHover(x, y)
	e.input.lastX, e.input.lastY = x, y
}

func (e *Engine) handleWheel(x, y, wy float64) {
	switch {
	case e.layout.Map.Contains(x, y):
		e.zoom.active = false
		e.ctrl.ZoomBy(math.Pow(1.1, wy), x, y)
	case e.layout.List.Contains(x, y):
		e.scrollList(-wy * rowHeight * 3)
	}
}

func (e *Engine) scrollList(delta float64) {
	e.listScroll = math.Max(0, math.Min(MaxScroll(e.layout.List, e.table), e.listScroll+delta))
}

// press dispatches a fresh left click to whatever is under the cursor.
func (e *Engine) press(x, y float64, now time.Time) {
	l := e.layout
	switch {
	case l.PlayButton.Contains(x, y):
		e.playback.Toggle(now)
	case l.ZoomIn.Contains(x, y):
		e.zoomBy(zoomStep)
	case l.ZoomOut.Contains(x, y):
		e.zoomBy(1 / zoomStep)
	case e.sliderHit(x, y):
		e.input.drag = dragSlider
		e.setYear(e.slider.ValueAt(x))
	case e.searchLink.W > 0 && e.searchLink.Contains(x, y):
		e.openSearch()
	case l.List.Contains(x, y):
		if row, ok := RowAt(l.List, e.table, e.listScroll, x, y); ok {
			e.ctrl.SelectCity(row.ID)
		}
	case l.Map.Contains(x, y):
		if m, ok := e.ctrl.MarkerAt(x, y); ok {
			e.ctrl.SelectCity(m.ID)
			return
		}
		e.zoom.active = false
		e.input.drag = dragMap
	}
}

func (e *Engine) drag(x, y float64) {
	switch e.input.drag {
	case dragSlider:
		e.setYear(e.slider.ValueAt(x))
	case dragMap:
		if dx, dy := x-e.input.lastX, y-e.input.lastY; dx != 0 || dy != 0 {
			e.ctrl.Pan(dx, dy)
		}
	}
}

// sliderHit accepts clicks on the handle row, a little above and below the
// track line.
func (e *Engine) sliderHit(x, y float64) bool {
	t := e.slider.Track
	return x >= t.X-10 && x <= t.X+t.W+10 && math.Abs(y-e.slider.TrackY()) <= 12
}

func (e *Engine) setYear(year int) {
	if year != e.ctrl.Year() {
		e.ctrl.Render(year)
	}
}

func (e *Engine) updateHover(x, y float64) {
	e.input.hoverRow = ""
	if row, ok := RowAt(e.layout.List, e.table, e.listScroll, x, y); ok {
		e.input.hoverRow = row.ID
	}

	id := ""
	if e.input.drag == dragNone && e.layout.Map.Contains(x, y) {
		if m, ok := e.ctrl.MarkerAt(x, y); ok {
			id = m.ID
		}
	}
	if id == e.input.hoverID {
		return
	}
	if e.input.hoverID != "" {
		e.ctrl.Unhover(e.input.hoverID)
	}
	e.input.hoverID = id
	if id != "" {
		e.ctrl.Hover(id, x, y)
	}
}

func (e *Engine) openSearch() {
	if e.detail.Empty() || e.OpenURL == nil {
		return
	}
	if err := e.OpenURL(e.detail.SearchURL); err != nil {
		log.Printf("Error opening search link: %v", err)
	}
}
