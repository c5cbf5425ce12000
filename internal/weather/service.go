package weather

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/weather-events/internal/common"
)

// HorizonDays is how far past today a date may be and still have forecast data.
const HorizonDays = 5

// Sentinel messages shown in place of weather data.
const (
	MsgBeyondRange   = "No weather data available. Selected date is beyond the forecast range."
	MsgNoDataForDate = "No weather data available for the selected date."
	MsgNoForecast    = "No weather data available for the forecast."
)

// State is the weather data held between triggers: the reading last shown
// for the active date and the fetched forecast series.
type State struct {
	Current *Weather
	Series  []Weather
}

// Service fetches weather for a fixed place and resolves the panel for a
// selected date. It holds no mutable state of its own; callers keep the
// State and decide whether to commit what Select returns.
type Service struct {
	place  string
	geo    GeoResolver
	client Client
	logger *zap.Logger
}

// NewService creates a Service for place.
func NewService(place string, geo GeoResolver, client Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		place:  place,
		geo:    geo,
		client: client,
		logger: logger,
	}
}

// Place returns the place name weather is fetched for.
func (s *Service) Place() string {
	return s.place
}

// Fetch geocodes the place and fetches current weather and the forecast
// series from scratch.
func (s *Service) Fetch(ctx context.Context) (State, error) {
	coords, err := s.geo.Resolve(ctx, s.place)
	if err != nil {
		return State{}, fmt.Errorf("resolve %s: %w", s.place, err)
	}

	current, err := s.client.CurrentAt(ctx, coords)
	if err != nil {
		return State{}, fmt.Errorf("current weather: %w", err)
	}

	series, err := s.client.ForecastAt(ctx, coords)
	if err != nil {
		return State{}, fmt.Errorf("forecast: %w", err)
	}

	s.logger.Info("weather refreshed",
		zap.String("place", s.place),
		zap.String("condition", string(current.MainType)),
		zap.Float64("temperature", current.Temperature),
		zap.Int("forecast_slots", len(series)),
	)

	return State{Current: &current, Series: series}, nil
}

// Select resolves the weather for date given the previous state.
//
// Dates more than HorizonDays after today yield the beyond-range sentinel.
// Selecting today refetches everything; a failed refetch keeps prev. Other
// dates are looked up in the cached series. When no reading is found the
// returned state is prev unchanged.
func (s *Service) Select(ctx context.Context, prev State, date, today common.Date) (State, Panel) {
	if date.After(today.AddDays(HorizonDays)) {
		return prev, sentinelPanel(date, MsgBeyondRange)
	}

	next := prev
	var selected *Weather

	if date == today {
		fresh, err := s.Fetch(ctx)
		if err != nil {
			s.logger.Error("weather refresh failed; keeping previous weather", zap.Error(err))
		} else {
			next = fresh
		}
		selected = next.Current
	} else if w, ok := OnDate(date, next.Series); ok {
		selected = &w
	}

	if selected == nil {
		return next, sentinelPanel(date, MsgNoDataForDate)
	}

	next.Current = selected
	return next, s.Panel(next, date)
}

// Panel renders the panel for an already selected state.
func (s *Service) Panel(st State, date common.Date) Panel {
	if st.Current == nil {
		return sentinelPanel(date, MsgNoDataForDate)
	}

	current := *st.Current
	p := Panel{
		Date:     date,
		Current:  &current,
		Forecast: WindowFrom(date, st.Series),
	}
	if len(p.Forecast) == 0 {
		p.ForecastMessage = MsgNoForecast
	}
	return p
}

func sentinelPanel(date common.Date, msg string) Panel {
	return Panel{
		Date:            date,
		Message:         msg,
		Forecast:        []Weather{},
		ForecastMessage: msg,
	}
}
