package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/biter777/countries"
	geojson "github.com/paulmach/go.geojson"
)

// Polygon is a list of rings; each ring is a list of [lng, lat] pairs.
type Polygon [][][]float64

// Country is one boundary feature ready to be drawn.
type Country struct {
	Label    string
	Polygons []Polygon
	// AnchorLat/AnchorLng is the center of the largest polygon's bounding
	// box, used to place the label.
	AnchorLat, AnchorLng float64
}

var labelKeys = []string{"iso_a2", "ISO2", "iso_a3", "ISO3", "ISO_A3", "name", "NAME", "admin", "ADMIN"}

// LoadCountries parses a GeoJSON FeatureCollection of country boundaries.
// Features without polygon geometry are skipped.
func LoadCountries(data []byte) ([]Country, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse country features: %w", err)
	}
	out := make([]Country, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		var polys []Polygon
		switch {
		case f.Geometry.IsPolygon():
			polys = append(polys, f.Geometry.Polygon)
		case f.Geometry.IsMultiPolygon():
			for _, p := range f.Geometry.MultiPolygon {
				polys = append(polys, p)
			}
		default:
			continue
		}
		c := Country{Label: CountryLabel(f.Properties), Polygons: polys}
		c.AnchorLat, c.AnchorLng = anchor(polys)
		out = append(out, c)
	}
	return out, nil
}

// CountryLabel resolves a feature's properties to a short country name.
func CountryLabel(props map[string]interface{}) string {
	var fallback string
	for _, k := range labelKeys {
		v, ok := props[k].(string)
		if !ok || v == "" || v == "-99" {
			continue
		}
		if fallback == "" && len(v) > 3 {
			fallback = v
		}
		name := countries.ByName(v).String()
		if name == "Unknown" {
			continue
		}
		return shortName(name)
	}
	return fallback
}

func shortName(name string) string {
	if idx := strings.Index(name, " ("); idx != -1 {
		name = name[:idx]
	}
	if strings.Contains(name, "Russia") {
		name = "Russia"
	}
	if strings.Contains(name, "Moldova") {
		name = "Moldova"
	}
	if strings.Contains(name, "Macedonia") {
		name = "North Macedonia"
	}
	return name
}

func anchor(polys []Polygon) (lat, lng float64) {
	best := -1.0
	for _, p := range polys {
		if len(p) == 0 || len(p[0]) == 0 {
			continue
		}
		minLng, maxLng := math.Inf(1), math.Inf(-1)
		minLat, maxLat := math.Inf(1), math.Inf(-1)
		for _, pt := range p[0] {
			if len(pt) < 2 {
				continue
			}
			minLng, maxLng = math.Min(minLng, pt[0]), math.Max(maxLng, pt[0])
			minLat, maxLat = math.Min(minLat, pt[1]), math.Max(maxLat, pt[1])
		}
		if area := (maxLng - minLng) * (maxLat - minLat); area > best {
			best = area
			lat, lng = (minLat+maxLat)/2, (minLng+maxLng)/2
		}
	}
	return lat, lng
}
