// Package timemap holds the year filter and the single-city selection that
// link the map, the city list and the tooltip. It computes what to show and
// hands it to a View; it never draws anything itself.
package timemap

import "image/color"

var (
	ColorSelected  = color.RGBA{128, 0, 0, 255}  // maroon
	ColorDefault   = color.RGBA{6, 57, 112, 255} // #063970
	ColorCrosshair = color.RGBA{69, 52, 61, 255} // #45343D
)

const MarkerOpacity = 0.5

// Summary is the headline for the current year.
type Summary struct {
	Year      int
	Books     int
	Locations int
}

// Row is one entry of the city list.
type Row struct {
	ID    string
	Name  string
	Count int
}

// Table is the city list split into display columns.
type Table struct {
	Columns [][]Row
}

// Marker is one city on the map, in untransformed map pixels.
type Marker struct {
	ID     string
	X, Y   float64
	Radius float64
	Color  color.RGBA
	Title  string
}

// Tooltip is the text overlay and crosshair, in screen pixels.
type Tooltip struct {
	Visible bool
	X, Y    float64
	Text    string
	// CrossX/CrossY position the crosshair lines. Only set for a selection.
	Crosshair      bool
	CrossX, CrossY float64
}

// Detail is the name-variant panel of the selected city. The zero value
// clears the panel.
type Detail struct {
	ID        string
	Variants  []string
	SearchURL string
}

func (d Detail) Empty() bool { return d.ID == "" }

// View receives everything the controller computes. Calls arrive from the
// UI loop only.
type View interface {
	RenderSummary(Summary)
	RenderTable(Table)
	// RenderMarkers replaces the marker set. Markers are keyed by ID.
	RenderMarkers([]Marker)
	// RenderHighlight styles the row and marker of id as selected or not.
	RenderHighlight(id string, selected bool)
	RenderTooltip(Tooltip)
	RenderDetail(Detail)
}
