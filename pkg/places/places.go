// Package places loads the city/year publication table the map is drawn from.
package places

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when the table header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// IDPrefix keeps record identifiers valid as element keys even when the
// source ids are purely numeric.
const IDPrefix = "id-"

var requiredColumns = []string{"id", "lat", "long", "date", "n", "city", "variants"}

// CityRecord is one row of the table: a place of publication in a given year.
type CityRecord struct {
	ID       string
	Name     string
	Lat      float64
	Long     float64
	Year     int
	Count    int
	Variants string
}

// VariantList splits the pipe-delimited name variants.
func (c CityRecord) VariantList() []string {
	if c.Variants == "" {
		return nil
	}
	return strings.Split(c.Variants, "|")
}

type Bounds struct {
	MinLat, MaxLat   float64
	MinLong, MaxLong float64
}

// Dataset is the immutable record set. Records keep their file order.
type Dataset struct {
	records  []CityRecord
	byYear   map[int][]int
	maxCount int
	minYear  int
	maxYear  int
	bounds   Bounds
}

func NewDataset(records []CityRecord) *Dataset {
	d := &Dataset{
		records: records,
		byYear:  make(map[int][]int),
		bounds: Bounds{
			MinLat: math.Inf(1), MaxLat: math.Inf(-1),
			MinLong: math.Inf(1), MaxLong: math.Inf(-1),
		},
	}
	for i, r := range records {
		d.byYear[r.Year] = append(d.byYear[r.Year], i)
		if r.Count > d.maxCount {
			d.maxCount = r.Count
		}
		if i == 0 || r.Year < d.minYear {
			d.minYear = r.Year
		}
		if i == 0 || r.Year > d.maxYear {
			d.maxYear = r.Year
		}
		if !math.IsNaN(r.Lat) && !math.IsNaN(r.Long) {
			d.bounds.MinLat = math.Min(d.bounds.MinLat, r.Lat)
			d.bounds.MaxLat = math.Max(d.bounds.MaxLat, r.Lat)
			d.bounds.MinLong = math.Min(d.bounds.MinLong, r.Long)
			d.bounds.MaxLong = math.Max(d.bounds.MaxLong, r.Long)
		}
	}
	return d
}

func (d *Dataset) Len() int { return len(d.records) }

// ForYear returns the records whose year equals y, in file order.
func (d *Dataset) ForYear(y int) []CityRecord {
	idx := d.byYear[y]
	out := make([]CityRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, d.records[i])
	}
	return out
}

// MaxCount is the largest publication count over all years.
func (d *Dataset) MaxCount() int { return d.maxCount }

// YearRange reports the smallest and largest year present. ok is false for
// an empty dataset.
func (d *Dataset) YearRange() (minYear, maxYear int, ok bool) {
	return d.minYear, d.maxYear, len(d.records) > 0
}

// Bounds covers every record with finite coordinates. ok is false when no
// such record exists.
func (d *Dataset) Bounds() (Bounds, bool) {
	return d.bounds, !math.IsInf(d.bounds.MinLat, 1)
}

// Parse reads the CSV table. Columns may appear in any order; unknown
// columns are ignored. Cells that do not parse as numbers are coerced
// (coordinates to NaN, year and count to 0) rather than failing the load.
func Parse(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var records []CityRecord
	coerced := 0
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cell := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		floatCell := func(name string) float64 {
			v, err := strconv.ParseFloat(cell(name), 64)
			if err != nil {
				coerced++
				return math.NaN()
			}
			return v
		}
		intCell := func(name string) int {
			v, err := strconv.Atoi(cell(name))
			if err != nil {
				f, ferr := strconv.ParseFloat(cell(name), 64)
				if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
					coerced++
					return 0
				}
				return int(f)
			}
			return v
		}
		records = append(records, CityRecord{
			ID:       IDPrefix + cell("id"),
			Name:     cell("city"),
			Lat:      floatCell("lat"),
			Long:     floatCell("long"),
			Year:     intCell("date"),
			Count:    intCell("n"),
			Variants: cell("variants"),
		})
	}
	if coerced > 0 {
		log.Printf("[places] Coerced %d malformed numeric cells", coerced)
	}
	log.Printf("[places] Loaded %d records", len(records))
	return NewDataset(records), nil
}
