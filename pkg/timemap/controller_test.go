package timemap

import (
	"math"
	"strings"
	"testing"

	"github.com/sudorandom/imprint-map/pkg/geo"
	"github.com/sudorandom/imprint-map/pkg/places"
)

// recordingView keeps the latest state of everything rendered, the way a
// real view would.
type recordingView struct {
	summary     Summary
	table       Table
	markers     map[string]Marker
	highlighted map[string]bool
	tooltip     Tooltip
	detail      Detail
	calls       []string
}

func newRecordingView() *recordingView {
	return &recordingView{markers: make(map[string]Marker), highlighted: make(map[string]bool)}
}

func (v *recordingView) RenderSummary(s Summary) {
	v.summary = s
	v.calls = append(v.calls, "summary")
}

func (v *recordingView) RenderTable(t Table) {
	v.table = t
	v.calls = append(v.calls, "table")
}

func (v *recordingView) RenderMarkers(ms []Marker) {
	v.markers = make(map[string]Marker, len(ms))
	for _, m := range ms {
		v.markers[m.ID] = m
	}
	v.calls = append(v.calls, "markers")
}

func (v *recordingView) RenderHighlight(id string, selected bool) {
	if selected {
		v.highlighted[id] = true
	} else {
		delete(v.highlighted, id)
	}
	if m, ok := v.markers[id]; ok {
		m.Color = ColorDefault
		if selected {
			m.Color = ColorSelected
		}
		v.markers[id] = m
	}
	v.calls = append(v.calls, "highlight")
}

func (v *recordingView) RenderTooltip(t Tooltip) {
	v.tooltip = t
	v.calls = append(v.calls, "tooltip")
}

func (v *recordingView) RenderDetail(d Detail) {
	v.detail = d
	v.calls = append(v.calls, "detail")
}

func (v *recordingView) selectedMarkers() int {
	n := 0
	for _, m := range v.markers {
		if m.Color == ColorSelected {
			n++
		}
	}
	return n
}

func testDataset() *places.Dataset {
	return places.NewDataset([]places.CityRecord{
		{ID: "id-1", Name: "Wien", Lat: 48.2082, Long: 16.3738, Year: 1750, Count: 2, Variants: "Wien|Vienna"},
		{ID: "id-2", Name: "Prag", Lat: 50.0755, Long: 14.4378, Year: 1750, Count: 5, Variants: "Prag|Praha"},
		{ID: "id-3", Name: "Graz", Lat: 47.0707, Long: 15.4395, Year: 1750, Count: 1, Variants: "Graz"},
		{ID: "id-1", Name: "Wien", Lat: 48.2082, Long: 16.3738, Year: 1751, Count: 20, Variants: "Wien|Vienna"},
		{ID: "id-4", Name: "Linz", Lat: 48.3069, Long: 14.2858, Year: 1752, Count: 3, Variants: "Linz"},
		{ID: "id-5", Name: "Salzburg", Lat: 47.8095, Long: 13.0550, Year: 1700, Count: 1, Variants: "Salzburg"},
	})
}

func newTestController() (*Controller, *recordingView) {
	v := newRecordingView()
	return NewController(testDataset(), geo.NewEuropeMercator(800, 640), v), v
}

func TestRenderFiltersByYear(t *testing.T) {
	c, v := newTestController()
	minY, maxY := c.YearRange()
	for y := minY; y <= maxY; y++ {
		got := c.Render(y)
		want := 0
		for _, r := range got {
			if r.Year != y {
				t.Errorf("Render(%d) returned a record from %d", y, r.Year)
			}
			want += r.Count
		}
		if v.summary.Books != want {
			t.Errorf("Render(%d) reported %d books, want %d", y, v.summary.Books, want)
		}
		if v.summary.Locations != len(got) || len(v.markers) != len(got) {
			t.Errorf("Render(%d): %d locations, %d markers, %d records", y, v.summary.Locations, len(v.markers), len(got))
		}
	}
}

func TestRenderExampleYear(t *testing.T) {
	c, v := newTestController()
	c.Render(1750)

	if v.summary.Books != 8 || v.summary.Locations != 3 {
		t.Errorf("Expected 8 books in 3 locations, got %+v", v.summary)
	}
	if got := SummaryText(v.summary); got != "1750: 8 books published in 3 locations" {
		t.Errorf("Unexpected summary text %q", got)
	}

	sizes := []int{}
	for _, col := range v.table.Columns {
		sizes = append(sizes, len(col))
	}
	if len(sizes) != 4 || sizes[0] != 1 || sizes[1] != 1 || sizes[2] != 1 || sizes[3] != 0 {
		t.Errorf("Expected column sizes [1 1 1 0], got %v", sizes)
	}

	if strings.Join(v.calls, ",") != "summary,table,markers" {
		t.Errorf("Unexpected render sequence %v", v.calls)
	}
}

func TestRenderEmptyYear(t *testing.T) {
	c, v := newTestController()
	got := c.Render(1725)
	if len(got) != 0 || len(v.markers) != 0 {
		t.Errorf("Expected nothing for an empty year, got %d records", len(got))
	}
	if SummaryText(v.summary) != "1725: 0 books published in 0 locations" {
		t.Errorf("Unexpected summary %q", SummaryText(v.summary))
	}
}

func TestMarkerRadius(t *testing.T) {
	c, v := newTestController()
	c.Render(1751)
	if r := v.markers["id-1"].Radius; math.Abs(r-5) > 1e-9 {
		t.Errorf("Largest count should get radius 5, got %f", r)
	}
	c.Render(1750)
	if r := v.markers["id-3"].Radius; math.Abs(r-1) > 1e-9 {
		t.Errorf("Count 1 should get radius 1, got %f", r)
	}
	if v.markers["id-2"].Radius <= v.markers["id-1"].Radius {
		t.Error("Expected larger counts to get larger markers")
	}
}

func TestSelectCityIdempotent(t *testing.T) {
	c, v := newTestController()
	c.Render(1750)

	c.SelectCity("id-2")
	c.SelectCity("id-2")
	if n := v.selectedMarkers(); n != 1 {
		t.Errorf("Expected exactly one highlighted marker, got %d", n)
	}
	if len(v.highlighted) != 1 || !v.highlighted["id-2"] {
		t.Errorf("Expected only id-2 highlighted, got %v", v.highlighted)
	}

	c.SelectCity("id-1")
	if n := v.selectedMarkers(); n != 1 {
		t.Errorf("Expected exactly one highlighted marker after switching, got %d", n)
	}
	if m, _ := c.Marker("id-2"); m.Color != ColorDefault {
		t.Error("Expected previous selection to return to the default color")
	}
	if c.State().SelectedID != "id-1" {
		t.Errorf("Expected id-1 selected, got %q", c.State().SelectedID)
	}
}

func TestSelectCityTooltip(t *testing.T) {
	c, v := newTestController()
	c.Render(1750)
	c.SetTransform(geo.Transform{K: 2, X: -100, Y: 50})
	c.SelectCity("id-1")

	m, _ := c.Marker("id-1")
	wantX, wantY := m.X*2-100, m.Y*2+50
	if !v.tooltip.Visible || !v.tooltip.Crosshair {
		t.Fatal("Expected a visible tooltip with crosshair")
	}
	if math.Abs(v.tooltip.CrossX-wantX) > 1e-9 || math.Abs(v.tooltip.CrossY-wantY) > 1e-9 {
		t.Errorf("Crosshair at (%f, %f), want (%f, %f)", v.tooltip.CrossX, v.tooltip.CrossY, wantX, wantY)
	}
	if math.Abs(v.tooltip.X-(wantX+10)) > 1e-9 || math.Abs(v.tooltip.Y-(wantY-10)) > 1e-9 {
		t.Errorf("Tooltip at (%f, %f), want offset (+10, -10) from marker", v.tooltip.X, v.tooltip.Y)
	}
	if v.tooltip.Text != "Wien: 2 publications" {
		t.Errorf("Unexpected tooltip text %q", v.tooltip.Text)
	}
	if v.detail.ID != "id-1" || len(v.detail.Variants) != 2 || v.detail.SearchURL == "" {
		t.Errorf("Unexpected detail %+v", v.detail)
	}

	// Zooming keeps the tooltip on the marker.
	c.ZoomBy(1.3, 400, 320)
	sx, sy := c.State().Transform.Apply(m.X, m.Y)
	if math.Abs(v.tooltip.CrossX-sx) > 1e-9 || math.Abs(v.tooltip.CrossY-sy) > 1e-9 {
		t.Error("Expected tooltip to follow the marker after zooming")
	}
}

func TestSelectAbsentCity(t *testing.T) {
	c, v := newTestController()
	c.Render(1750)
	c.SelectCity("id-1")

	c.SelectCity("id-4")
	if !v.detail.Empty() {
		t.Errorf("Expected empty detail panel, got %+v", v.detail)
	}
	if v.tooltip.Visible {
		t.Error("Expected tooltip hidden for a city without a marker")
	}
	if c.State().SelectedID != "id-4" {
		t.Error("Expected selection to move even without a marker")
	}
	if n := v.selectedMarkers(); n != 0 {
		t.Errorf("Expected no highlighted markers, got %d", n)
	}
}

func TestSelectionSurvivesYearChange(t *testing.T) {
	c, v := newTestController()
	c.Render(1750)
	c.SelectCity("id-1")

	c.Render(1752)
	st := c.State()
	if st.SelectedID != "id-1" || st.SelectedAvailable {
		t.Errorf("Expected id-1 still selected but unavailable, got %+v", st)
	}
	if !v.detail.Empty() {
		t.Error("Expected detail panel cleared while the city is absent")
	}

	c.Render(1751)
	st = c.State()
	if !st.SelectedAvailable {
		t.Error("Expected selection available again in 1751")
	}
	if m := v.markers["id-1"]; m.Color != ColorSelected {
		t.Error("Expected the selected marker to be highlighted after re-render")
	}
	if v.tooltip.Text != "Wien: 20 publications" {
		t.Errorf("Expected tooltip refreshed for the new year, got %q", v.tooltip.Text)
	}
}

func TestHover(t *testing.T) {
	c, v := newTestController()
	c.Render(1750)

	c.Hover("id-3", 120, 80)
	if !v.tooltip.Visible || v.tooltip.Text != "Graz: 1 publication" || v.tooltip.X != 120 {
		t.Errorf("Unexpected hover tooltip %+v", v.tooltip)
	}
	c.Unhover("id-3")
	if v.tooltip.Visible {
		t.Error("Expected tooltip hidden after hover ends without a selection")
	}

	c.SelectCity("id-2")
	c.Hover("id-3", 120, 80)
	c.Unhover("id-3")
	if !v.tooltip.Visible || v.tooltip.Text != "Prag: 5 publications" {
		t.Errorf("Expected the selection's tooltip back, got %+v", v.tooltip)
	}
}

func TestClearSelection(t *testing.T) {
	c, v := newTestController()
	c.Render(1750)
	c.SelectCity("id-2")
	c.ClearSelection()
	if c.State().SelectedID != "" || len(v.highlighted) != 0 || v.selectedMarkers() != 0 {
		t.Error("Expected selection cleared")
	}
}

func TestStep(t *testing.T) {
	c, _ := newTestController()
	c.Render(1751)
	c.Step(1)
	if c.Year() != 1752 {
		t.Errorf("Expected 1752, got %d", c.Year())
	}
	c.Step(1)
	if c.Year() != 1752 {
		t.Errorf("Expected to stay at the upper bound, got %d", c.Year())
	}
	c.Step(-100)
	if c.Year() != 1700 {
		t.Errorf("Expected to stop at the lower bound, got %d", c.Year())
	}
}

func TestMarkerAt(t *testing.T) {
	c, _ := newTestController()
	c.Render(1750)
	c.SetTransform(geo.Transform{K: 2, X: -300, Y: -200})

	m, _ := c.Marker("id-2")
	sx, sy := c.State().Transform.Apply(m.X, m.Y)
	got, ok := c.MarkerAt(sx+1, sy)
	if !ok || got.ID != "id-2" {
		t.Errorf("Expected id-2 under the cursor, got %v %v", got.ID, ok)
	}
	if _, ok := c.MarkerAt(-50, -50); ok {
		t.Error("Expected no marker far off the map")
	}
}

func BenchmarkRender(b *testing.B) {
	records := make([]places.CityRecord, 0, 5000)
	for i := 0; i < 5000; i++ {
		records = append(records, places.CityRecord{
			ID:    "id-" + string(rune('a'+i%26)) + string(rune('a'+i/26%26)),
			Name:  "City",
			Lat:   45 + float64(i%100)/10,
			Long:  5 + float64(i%150)/10,
			Year:  1700 + i%101,
			Count: 1 + i%40,
		})
	}
	c := NewController(places.NewDataset(records), geo.NewEuropeMercator(800, 640), newRecordingView())
	c.SelectCity("id-aa")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c.Render(1700 + i%101)
	}
}
