package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-events/internal/weather"
)

// DefaultOpenWeatherHost is the public OpenWeatherMap API host.
const DefaultOpenWeatherHost = "https://api.openweathermap.org"

const forecastTimeLayout = "2006-01-02 15:04:05"

var errNoAPIKey = errors.New("openweather api key is not configured")

// JSONGetter performs a GET and decodes the JSON body into out.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, out interface{}) error
}

// OpenWeather talks to OpenWeatherMap. It implements both weather.GeoResolver
// and weather.Client.
type OpenWeather struct {
	host   string
	apiKey string
	getter JSONGetter
	logger *zap.Logger
	now    func() time.Time
}

// NewOpenWeather creates an OpenWeatherMap client. An empty host means
// DefaultOpenWeatherHost.
func NewOpenWeather(host, apiKey string, getter JSONGetter, logger *zap.Logger) *OpenWeather {
	if host == "" {
		host = DefaultOpenWeatherHost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenWeather{
		host:   strings.TrimRight(host, "/"),
		apiKey: apiKey,
		getter: getter,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve looks up place with the direct geocoding endpoint.
func (p *OpenWeather) Resolve(ctx context.Context, place string) (weather.Coordinates, error) {
	if p.apiKey == "" {
		return weather.Coordinates{}, errNoAPIKey
	}

	values := url.Values{}
	values.Set("q", place)
	values.Set("limit", "1")
	values.Set("appid", p.apiKey)

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := p.getter.GetJSON(ctx, p.host+"/geo/1.0/direct?"+values.Encode(), &payload); err != nil {
		return weather.Coordinates{}, err
	}
	if len(payload) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, place)
	}

	return weather.Coordinates{Lat: payload[0].Lat, Lon: payload[0].Lon}, nil
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// CurrentAt fetches the current conditions. DateTime is the local call time.
func (p *OpenWeather) CurrentAt(ctx context.Context, c weather.Coordinates) (weather.Weather, error) {
	if p.apiKey == "" {
		return weather.Weather{}, errNoAPIKey
	}

	var payload struct {
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			OneH float64 `json:"1h"`
		} `json:"rain"`
		Weather []owmCondition `json:"weather"`
	}

	if err := p.getter.GetJSON(ctx, p.dataURL("weather", c), &payload); err != nil {
		return weather.Weather{}, err
	}
	if len(payload.Weather) == 0 {
		return weather.Weather{}, fmt.Errorf("openweather: current weather has no conditions")
	}

	return weather.Weather{
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Rain:        payload.Rain.OneH,
		WindSpeed:   payload.Wind.Speed,
		MainType:    weather.Normalize(payload.Weather[0].Main),
		Description: payload.Weather[0].Description,
		DateTime:    p.now(),
	}, nil
}

// ForecastAt fetches the 5-day / 3-hour forecast and keeps only the
// weather.ForecastHour slots.
func (p *OpenWeather) ForecastAt(ctx context.Context, c weather.Coordinates) ([]weather.Weather, error) {
	if p.apiKey == "" {
		return nil, errNoAPIKey
	}

	var payload struct {
		List []struct {
			Main struct {
				Temp      float64  `json:"temp"`
				FeelsLike *float64 `json:"feels_like"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Rain *struct {
				ThreeH float64 `json:"3h"`
			} `json:"rain"`
			Weather []owmCondition `json:"weather"`
			DtTxt   string         `json:"dt_txt"`
		} `json:"list"`
	}

	if err := p.getter.GetJSON(ctx, p.dataURL("forecast", c), &payload); err != nil {
		return nil, err
	}

	out := make([]weather.Weather, 0, len(payload.List)/8+1)
	for _, item := range payload.List {
		ts, err := time.ParseInLocation(forecastTimeLayout, item.DtTxt, time.UTC)
		if err != nil {
			p.logger.Warn("skipping forecast slot with bad timestamp", zap.String("dt_txt", item.DtTxt), zap.Error(err))
			continue
		}
		if ts.Hour() != weather.ForecastHour {
			continue
		}
		if len(item.Weather) == 0 {
			p.logger.Warn("skipping forecast slot without conditions", zap.String("dt_txt", item.DtTxt))
			continue
		}

		w := weather.Weather{
			Temperature: item.Main.Temp,
			FeelsLike:   item.Main.Temp,
			WindSpeed:   item.Wind.Speed,
			MainType:    weather.Normalize(item.Weather[0].Main),
			Description: item.Weather[0].Description,
			DateTime:    ts,
		}
		if item.Main.FeelsLike != nil {
			w.FeelsLike = *item.Main.FeelsLike
		}
		if item.Rain != nil {
			w.Rain = item.Rain.ThreeH
		}
		out = append(out, w)
	}

	return out, nil
}

func (p *OpenWeather) dataURL(endpoint string, c weather.Coordinates) string {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", c.Lat))
	values.Set("lon", fmt.Sprintf("%f", c.Lon))
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	return fmt.Sprintf("%s/data/2.5/%s?%s", p.host, endpoint, values.Encode())
}
