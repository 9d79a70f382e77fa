// Package mapengine runs the interactive map window: it draws what the
// timemap controller computes and turns mouse and keyboard input into
// controller calls.
package mapengine

import (
	"bytes"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/pkg/browser"
	"github.com/sudorandom/imprint-map/pkg/geo"
	"github.com/sudorandom/imprint-map/pkg/places"
	"github.com/sudorandom/imprint-map/pkg/timemap"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	ColorPage     = color.RGBA{255, 255, 255, 255}
	ColorOutline  = color.RGBA{204, 204, 204, 255} // #ccc
	ColorText     = color.RGBA{33, 33, 33, 255}
	ColorMuted    = color.RGBA{120, 120, 120, 255}
	ColorControl  = color.RGBA{230, 230, 230, 255}
	ColorFrame    = color.RGBA{190, 190, 190, 255}
	ColorLabel    = color.RGBA{170, 170, 170, 255}
	ColorLink     = color.RGBA{20, 90, 170, 255}
	ColorRowHover = color.RGBA{240, 240, 245, 255}
)

const (
	zoomStep       = 1.3
	zoomDuration   = 0.75
	labelZoomLevel = 2.0
	yearTickStep   = 10
)

type Engine struct {
	Width, Height int
	// CaptureDir enables frame capture with the P key when set.
	CaptureDir string
	// OpenURL opens the catalogue search link. Defaults to the system browser.
	OpenURL func(string) error

	layout    Layout
	slider    Slider
	proj      geo.Mercator
	countries []geo.Country
	ctrl      *timemap.Controller
	playback  *timemap.Playback

	// Everything below is what the controller last rendered.
	summary     timemap.Summary
	table       timemap.Table
	markers     []timemap.Marker
	markerIdx   map[string]int
	highlighted string
	tooltip     timemap.Tooltip
	detail      timemap.Detail

	input      inputState
	zoom       tween
	listScroll float64
	searchLink Rect
	started    time.Time

	bgImage    *ebiten.Image
	bgScale    float64
	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource

	captureRequested bool
}

func NewEngine(width, height int) *Engine {
	s, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	m, _ := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))

	return &Engine{
		Width:      width,
		Height:     height,
		OpenURL:    browser.OpenURL,
		layout:     NewLayout(width, height),
		markerIdx:  make(map[string]int),
		bgScale:    2,
		started:    time.Now(),
		fontSource: s,
		monoSource: m,
	}
}

// LoadData wires the dataset and country outlines into the engine, renders
// the first year, and starts the transition to the data's bounding box.
func (e *Engine) LoadData(data *places.Dataset, countries []geo.Country, year int) error {
	e.setup(data, countries, year)
	return e.generateBackground()
}

func (e *Engine) setup(data *places.Dataset, countries []geo.Country, year int) {
	e.proj = geo.NewEuropeMercator(int(e.layout.Map.W), int(e.layout.Map.H))
	e.countries = countries
	e.ctrl = timemap.NewController(data, e.proj, e)
	e.playback = timemap.NewPlayback(e.ctrl, timemap.PlayInterval)
	e.playback.OnStateChange = func(s timemap.PlayState) {
		log.Printf("Playback %s at %d", s, e.ctrl.Year())
	}

	minYear, maxYear := e.ctrl.YearRange()
	e.slider = Slider{Track: e.layout.Slider, Min: minYear, Max: maxYear}
	if year < minYear || year > maxYear {
		year = minYear
	}
	e.ctrl.Render(year)

	if b, ok := data.Bounds(); ok {
		target := geo.FitBounds(e.proj, geo.Box{MinLat: b.MinLat, MaxLat: b.MaxLat, MinLong: b.MinLong, MaxLong: b.MaxLong}, int(e.layout.Map.W), int(e.layout.Map.H))
		log.Printf("Initial view: scale %.3f, translate (%.1f, %.1f)", target.K, target.X, target.Y)
		e.animateTo(target)
	}
}

// SetYearRange limits the slider and playback to [minYear, maxYear].
func (e *Engine) SetYearRange(minYear, maxYear int) {
	if e.ctrl == nil || minYear > maxYear {
		return
	}
	e.ctrl.SetYearRange(minYear, maxYear)
	e.slider.Min, e.slider.Max = minYear, maxYear
	if y := e.ctrl.Year(); y < minYear || y > maxYear {
		e.ctrl.Render(minYear)
	}
}

func (e *Engine) Controller() *timemap.Controller { return e.ctrl }

func (e *Engine) elapsed() float64 { return time.Since(e.started).Seconds() }

func (e *Engine) animateTo(t geo.Transform) {
	e.zoom = tween{from: e.ctrl.State().Transform, to: t, start: e.elapsed(), duration: zoomDuration, active: true}
}

func (e *Engine) zoomBy(factor float64) {
	target := e.zoom.to
	if !e.zoom.active {
		target = e.ctrl.State().Transform
	}
	cx, cy := e.layout.Map.Center()
	e.animateTo(target.ScaleBy(factor, cx, cy))
}

func (e *Engine) Update() error {
	now := time.Now()
	if e.zoom.active {
		t, running := e.zoom.at(e.elapsed())
		e.ctrl.SetTransform(t)
		e.zoom.active = running
	}
	e.handleKeys(now)
	e.handleMouse(now)
	e.playback.Tick(now)
	return nil
}

func (e *Engine) Draw(screen *ebiten.Image) {
	screen.Fill(ColorPage)
	e.drawMap(screen)
	e.drawControls(screen)
	e.drawPanel(screen)

	if e.captureRequested {
		e.captureRequested = false
		e.captureFrame(screen, e.ctrl.Year(), time.Now())
	}
}

func (e *Engine) Layout(w, h int) (int, int) { return e.Width, e.Height }

// timemap.View

func (e *Engine) RenderSummary(s timemap.Summary) { e.summary = s }

func (e *Engine) RenderTable(t timemap.Table) {
	e.table = t
	if limit := MaxScroll(e.layout.List, t); e.listScroll > limit {
		e.listScroll = limit
	}
}

func (e *Engine) RenderMarkers(ms []timemap.Marker) {
	e.markers = ms
	e.markerIdx = make(map[string]int, len(ms))
	for i, m := range ms {
		e.markerIdx[m.ID] = i
	}
	// A hovered city that left the marker set takes its tooltip with it.
	if prev := e.input.hoverID; prev != "" {
		if _, ok := e.markerIdx[prev]; !ok {
			e.input.hoverID = ""
			e.ctrl.Unhover(prev)
		}
	}
}

func (e *Engine) RenderHighlight(id string, selected bool) {
	if selected {
		e.highlighted = id
	} else if e.highlighted == id {
		e.highlighted = ""
	}
	if i, ok := e.markerIdx[id]; ok {
		if selected {
			e.markers[i].Color = timemap.ColorSelected
		} else {
			e.markers[i].Color = timemap.ColorDefault
		}
	}
}

func (e *Engine) RenderTooltip(t timemap.Tooltip) { e.tooltip = t }

func (e *Engine) RenderDetail(d timemap.Detail) {
	e.detail = d
	if d.Empty() {
		e.searchLink = Rect{}
	}
}
