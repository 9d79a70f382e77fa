// Package sources loads the two inputs the map needs before it can draw
// anything: the place/time table and the country boundaries.
package sources

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/sudorandom/imprint-map/pkg/geo"
	"github.com/sudorandom/imprint-map/pkg/places"
	"golang.org/x/sync/errgroup"
)

// Fetcher reads a whole source, local or remote. *utils.Fetcher is the
// implementation used by the command.
type Fetcher interface {
	Fetch(ctx context.Context, src string) ([]byte, error)
}

// Inputs is everything needed to build the first view.
type Inputs struct {
	Places    *places.Dataset
	Countries []geo.Country
}

// LoadAll loads the places table and the boundaries concurrently. It
// returns once both are in; the first failure cancels the other load.
func LoadAll(ctx context.Context, f Fetcher, placesSrc, geoSrc string) (*Inputs, error) {
	g, ctx := errgroup.WithContext(ctx)

	var in Inputs
	g.Go(func() error {
		d, err := loadPlaces(ctx, f, placesSrc)
		if err != nil {
			return err
		}
		in.Places = d
		return nil
	})
	g.Go(func() error {
		data, err := f.Fetch(ctx, geoSrc)
		if err != nil {
			return fmt.Errorf("load boundaries from %s: %w", geoSrc, err)
		}
		cs, err := geo.LoadCountries(data)
		if err != nil {
			return err
		}
		log.Printf("[geo] Loaded %d country outlines", len(cs))
		in.Countries = cs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &in, nil
}

func loadPlaces(ctx context.Context, f Fetcher, src string) (*places.Dataset, error) {
	data, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load places from %s: %w", src, err)
	}
	return places.Parse(bytes.NewReader(data))
}
