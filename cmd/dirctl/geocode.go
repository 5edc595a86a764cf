package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"halal-directory/internal/domain"
	"halal-directory/internal/geo"
	"halal-directory/internal/geocoding"
)

type GeocodeCmd struct {
	Location []string      `arg:"" sep:"none" help:"Address or \"city, state\" text"`
	Fallback []string      `sep:"none" help:"Further candidates tried when the location is not found" short:"f"`
	From     string        `help:"Also report the distance from this \"lat,lon\" and whether a search there would find the location"`
	Timeout  time.Duration `default:"30s" help:"Give up after this long"`
}

func (g *GeocodeCmd) Run(ctx *Context) error {
	var origin *domain.Coordinates
	if g.From != "" {
		o, err := parseLatLon(g.From)
		if err != nil {
			return err
		}
		origin = &o
	}

	client := geocoding.NewFromConfig(ctx.Config.Geocoding, nil, nil, ctx.Logger)

	c, cancel := context.WithTimeout(context.Background(), g.Timeout)
	defer cancel()

	candidates := append([]string{strings.Join(g.Location, " ")}, g.Fallback...)
	coords, err := client.ResolveFirst(c, candidates...)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(ctx.Out, "%.6f,%.6f\n", coords.Latitude, coords.Longitude); err != nil {
		return err
	}
	if origin == nil {
		return nil
	}

	_, err = fmt.Fprintf(ctx.Out, "distance %.0fm, within search radius: %t\n",
		geo.Distance(*origin, coords), geo.WithinRadius(*origin, coords))
	return err
}

func parseLatLon(raw string) (domain.Coordinates, error) {
	latText, lonText, ok := strings.Cut(raw, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("invalid --from %q: expected \"lat,lon\"", raw)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid --from latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonText), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid --from longitude: %w", err)
	}

	c := domain.Coordinates{Latitude: lat, Longitude: lon}
	if !geo.Valid(c) {
		return domain.Coordinates{}, fmt.Errorf("invalid --from %q: out of range", raw)
	}
	return c, nil
}
