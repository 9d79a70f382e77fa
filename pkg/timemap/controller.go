package timemap

import (
	"github.com/sudorandom/imprint-map/pkg/geo"
	"github.com/sudorandom/imprint-map/pkg/places"
)

// ListColumns is the number of columns the city list is split into.
const ListColumns = 4

// Tooltip offset from the selected marker, in screen pixels.
const (
	tooltipDX = 10
	tooltipDY = -10
)

// State is everything the user can change. Only the Controller mutates it.
type State struct {
	Year int
	// SelectedID is empty when nothing is selected. A selection survives
	// year changes even when the city has no record in the new year.
	SelectedID string
	// SelectedAvailable reports whether the selection is in the current
	// year's records. Nothing reads it yet.
	SelectedAvailable bool
	Transform         geo.Transform
}

type Controller struct {
	data  *places.Dataset
	proj  geo.Mercator
	scale SqrtScale
	view  View

	state   State
	visible []places.CityRecord
	markers map[string]Marker
	records map[string]places.CityRecord

	minYear, maxYear int
}

// NewController starts at the dataset's first year with no selection and
// the identity transform. Nothing is rendered until Render is called.
func NewController(data *places.Dataset, proj geo.Mercator, view View) *Controller {
	minYear, maxYear, _ := data.YearRange()
	return &Controller{
		data:    data,
		proj:    proj,
		scale:   NewCountScale(data.MaxCount()),
		view:    view,
		state:   State{Year: minYear, Transform: geo.Identity},
		markers: make(map[string]Marker),
		records: make(map[string]places.CityRecord),
		minYear: minYear,
		maxYear: maxYear,
	}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Year() int { return c.state.Year }

// YearRange is the span the year may be set to.
func (c *Controller) YearRange() (int, int) { return c.minYear, c.maxYear }

// SetYearRange narrows or widens the selectable span. min must not exceed max.
func (c *Controller) SetYearRange(minYear, maxYear int) {
	c.minYear, c.maxYear = minYear, maxYear
}

// Marker returns the marker currently shown for id.
func (c *Controller) Marker(id string) (Marker, bool) {
	m, ok := c.markers[id]
	return m, ok
}

// Render shows the given year: summary, city list, markers, and the
// refreshed selection if there is one. It returns the year's records.
func (c *Controller) Render(year int) []places.CityRecord {
	c.state.Year = year
	c.visible = c.data.ForYear(year)

	books := 0
	rows := make([]Row, 0, len(c.visible))
	markers := make([]Marker, 0, len(c.visible))
	c.markers = make(map[string]Marker, len(c.visible))
	c.records = make(map[string]places.CityRecord, len(c.visible))
	for _, r := range c.visible {
		books += r.Count
		rows = append(rows, Row{ID: r.ID, Name: r.Name, Count: r.Count})

		x, y := c.proj.Project(r.Lat, r.Long)
		m := Marker{
			ID:     r.ID,
			X:      x,
			Y:      y,
			Radius: c.scale.Radius(r.Count),
			Color:  ColorDefault,
			Title:  TooltipText(r),
		}
		if r.ID == c.state.SelectedID {
			m.Color = ColorSelected
		}
		markers = append(markers, m)
		c.markers[r.ID] = m
		c.records[r.ID] = r
	}
	_, c.state.SelectedAvailable = c.records[c.state.SelectedID]

	c.view.RenderSummary(Summary{Year: year, Books: books, Locations: len(c.visible)})
	c.view.RenderTable(Table{Columns: Paginate(rows, ListColumns)})
	c.view.RenderMarkers(markers)

	if c.state.SelectedID != "" {
		c.SelectCity(c.state.SelectedID)
	}
	return c.visible
}

// SelectCity moves the selection to id. When id has a marker in the current
// year, the tooltip and detail panel follow it; otherwise the detail panel
// is cleared and the tooltip hidden.
func (c *Controller) SelectCity(id string) {
	if prev := c.state.SelectedID; prev != "" {
		c.view.RenderHighlight(prev, false)
		if m, ok := c.markers[prev]; ok {
			m.Color = ColorDefault
			c.markers[prev] = m
		}
	}

	c.view.RenderHighlight(id, true)
	c.state.SelectedID = id

	m, ok := c.markers[id]
	if !ok {
		c.view.RenderTooltip(Tooltip{})
		c.view.RenderDetail(Detail{})
		return
	}
	m.Color = ColorSelected
	c.markers[id] = m

	r := c.records[id]
	c.view.RenderTooltip(c.selectionTooltip(m, r))
	c.view.RenderDetail(Detail{ID: id, Variants: r.VariantList(), SearchURL: SearchURL(r)})
}

// ClearSelection drops the selection entirely.
func (c *Controller) ClearSelection() {
	if c.state.SelectedID == "" {
		return
	}
	c.view.RenderHighlight(c.state.SelectedID, false)
	if m, ok := c.markers[c.state.SelectedID]; ok {
		m.Color = ColorDefault
		c.markers[c.state.SelectedID] = m
	}
	c.state.SelectedID = ""
	c.state.SelectedAvailable = false
	c.view.RenderTooltip(Tooltip{})
	c.view.RenderDetail(Detail{})
}

func (c *Controller) selectionTooltip(m Marker, r places.CityRecord) Tooltip {
	sx, sy := c.state.Transform.Apply(m.X, m.Y)
	return Tooltip{
		Visible:   true,
		X:         sx + tooltipDX,
		Y:         sy + tooltipDY,
		Text:      TooltipText(r),
		Crosshair: true,
		CrossX:    sx,
		CrossY:    sy,
	}
}

// Hover shows a transient tooltip for id at the screen point (x, y).
func (c *Controller) Hover(id string, x, y float64) {
	r, ok := c.records[id]
	if !ok {
		return
	}
	tip := Tooltip{Visible: true, X: x, Y: y, Text: TooltipText(r)}
	if sel, ok := c.markers[c.state.SelectedID]; ok {
		s := c.selectionTooltip(sel, c.records[c.state.SelectedID])
		tip.Crosshair, tip.CrossX, tip.CrossY = true, s.CrossX, s.CrossY
	}
	c.view.RenderTooltip(tip)
}

// Unhover ends a hover over id. The selection's tooltip comes back if it
// has a marker; otherwise the tooltip is hidden.
func (c *Controller) Unhover(id string) {
	if id == c.state.SelectedID {
		return
	}
	if sel, ok := c.markers[c.state.SelectedID]; ok {
		c.view.RenderTooltip(c.selectionTooltip(sel, c.records[c.state.SelectedID]))
		return
	}
	c.view.RenderTooltip(Tooltip{})
}

// SetTransform records a pan/zoom change and keeps the selection's tooltip
// pinned to its marker.
func (c *Controller) SetTransform(t geo.Transform) {
	c.state.Transform = t
	if m, ok := c.markers[c.state.SelectedID]; ok {
		c.view.RenderTooltip(c.selectionTooltip(m, c.records[c.state.SelectedID]))
	}
}

// ZoomBy scales the view about the screen point (ax, ay).
func (c *Controller) ZoomBy(factor, ax, ay float64) {
	c.SetTransform(c.state.Transform.ScaleBy(factor, ax, ay))
}

func (c *Controller) Pan(dx, dy float64) {
	c.SetTransform(c.state.Transform.Translate(dx, dy))
}

// Step moves the year by delta, staying inside the year range.
func (c *Controller) Step(delta int) {
	y := c.state.Year + delta
	if y < c.minYear {
		y = c.minYear
	}
	if y > c.maxYear {
		y = c.maxYear
	}
	if y != c.state.Year {
		c.Render(y)
	}
}

// MarkerAt returns the topmost marker whose disc contains the screen point.
func (c *Controller) MarkerAt(x, y float64) (Marker, bool) {
	mx, my := c.state.Transform.Invert(x, y)
	var best Marker
	found := false
	for i := len(c.visible) - 1; i >= 0; i-- {
		m := c.markers[c.visible[i].ID]
		r := m.Radius
		if r < 2 {
			// Keep tiny markers clickable.
			r = 2
		}
		dx, dy := mx-m.X, my-m.Y
		if dx*dx+dy*dy <= r*r {
			best, found = m, true
			break
		}
	}
	return best, found
}
