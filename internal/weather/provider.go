package weather

import (
	"context"
	"errors"
)

// ErrLocationNotFound is returned when geocoding yields no candidates.
var ErrLocationNotFound = errors.New("location not found")

// GeoResolver resolves a place name to coordinates.
type GeoResolver interface {
	Resolve(ctx context.Context, place string) (Coordinates, error)
}

// Client fetches current weather and the forecast series for coordinates.
// Returned entries are already normalized; ForecastAt keeps only the
// ForecastHour slots.
type Client interface {
	CurrentAt(ctx context.Context, c Coordinates) (Weather, error)
	ForecastAt(ctx context.Context, c Coordinates) ([]Weather, error)
}
