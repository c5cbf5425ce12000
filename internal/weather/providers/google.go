package providers

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-events/internal/weather"
)

// geocoderNoResults is the error text the geocoder reports for a
// ZERO_RESULTS status.
const geocoderNoResults = "No results found."

// GoogleGeoResolver resolves places with the Google geocoding API.
type GoogleGeoResolver struct {
	country string
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeoResolver configures the geocoder package with apiKey. The
// geocoder keeps its key in a package variable, so only one key is in use
// per process.
func NewGoogleGeoResolver(apiKey, country string) *GoogleGeoResolver {
	geocoder.ApiKey = apiKey
	return &GoogleGeoResolver{
		country: country,
		lookup:  geocoder.Geocoding,
	}
}

// Resolve geocodes place. The geocoder has no context support; a cancelled
// ctx abandons the lookup and returns ctx.Err().
func (g *GoogleGeoResolver) Resolve(ctx context.Context, place string) (weather.Coordinates, error) {
	type result struct {
		loc geocoder.Location
		err error
	}

	done := make(chan result, 1)
	go func() {
		// The geocoder indexes the first result without checking for
		// statuses it does not know, such as OVER_DAILY_LIMIT.
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("unexpected geocoder response: %v", r)}
			}
		}()
		loc, err := g.lookup(geocoder.Address{City: place, Country: g.country})
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			if r.err.Error() == geocoderNoResults {
				return weather.Coordinates{}, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, place)
			}
			return weather.Coordinates{}, fmt.Errorf("google geocoding %s: %w", place, r.err)
		}
		return weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}
