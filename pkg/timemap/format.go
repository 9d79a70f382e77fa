package timemap

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/sudorandom/imprint-map/pkg/places"
)

// SearchBase is the catalogue the search link points at.
const SearchBase = "http://ddb.qa-catalogue.eu/onb/"

// SqrtScale maps a count onto a marker radius through a square-root scale.
// It does not clamp, so counts below the domain floor give smaller radii.
type SqrtScale struct {
	D0, D1 float64
	R0, R1 float64
}

// NewCountScale spans counts 1..maxCount onto radii 1..5.
func NewCountScale(maxCount int) SqrtScale {
	return SqrtScale{D0: 1, D1: float64(maxCount), R0: 1, R1: 5}
}

func (s SqrtScale) Radius(n int) float64 {
	a, b := math.Sqrt(s.D0), math.Sqrt(s.D1)
	v := math.Sqrt(float64(n))
	t := 0.5
	if b != a {
		t = (v - a) / (b - a)
	}
	return s.R0 + t*(s.R1-s.R0)
}

// Paginate splits rows into n columns of ceil(len/n) rows; the last
// column takes whatever is left and may be shorter or empty.
func Paginate(rows []Row, n int) [][]Row {
	cols := make([][]Row, n)
	if n == 0 {
		return cols
	}
	per := (len(rows) + n - 1) / n
	for i := 0; i < n; i++ {
		lo, hi := i*per, (i+1)*per
		if i == n-1 {
			hi = len(rows)
		}
		if lo > len(rows) {
			lo = len(rows)
		}
		if hi > len(rows) {
			hi = len(rows)
		}
		cols[i] = rows[lo:hi]
	}
	return cols
}

func Pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func TooltipText(c places.CityRecord) string {
	return fmt.Sprintf("%s: %d %s", c.Name, c.Count, Pluralize(c.Count, "publication"))
}

func SummaryText(s Summary) string {
	return fmt.Sprintf("%d: %d books published in %d locations", s.Year, s.Books, s.Locations)
}

// SearchQuery is the catalogue query for the city's year and every one of
// its name variants. A record without variants still gets one empty place
// term.
func SearchQuery(c places.CityRecord) string {
	variants := strings.Split(c.Variants, "|")
	terms := make([]string, 0, len(variants))
	for _, v := range variants {
		terms = append(terms, `264a_ProvisionActivity_place_ss:"`+v+`"`)
	}
	return fmt.Sprintf(`008all07_GeneralInformation_date1_ss:"%d" AND (%s)`, c.Year, strings.Join(terms, " OR "))
}

func SearchURL(c places.CityRecord) string {
	return SearchBase + "?tab=data&query=" + encodeComponent(SearchQuery(c))
}

// componentUnescaper undoes the escapes QueryEscape applies to characters
// a URI component leaves alone.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes like a URI component: everything outside
// A-Z a-z 0-9 and -_.!~*'() is percent-encoded, spaces as %20.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
