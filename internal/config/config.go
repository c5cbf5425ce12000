package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPlace is the only location the service recommends events for.
const DefaultPlace = "Tampere"

const (
	defaultFeedURL     = "https://api.visittampere.com/api/v1/eventztoday/event/"
	defaultWeatherHost = "https://api.openweathermap.org"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	// GeocoderAPIKey switches place resolution to the Google geocoder when set.
	GeocoderAPIKey string

	Place       string
	WeatherHost string

	EventsFeedURL  string
	EventsMaxPages int

	// CachePath is the catalog file; empty keeps the catalog in memory only.
	CachePath string

	HTTPTimeout time.Duration

	// WeatherRatePerSecond throttles OpenWeatherMap calls (free tier is 60/min).
	WeatherRatePerSecond float64
	WeatherBurst         int

	// Timezone decides when "today" rolls over.
	Timezone *time.Location

	LogLevel  string
	LogFormat string

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{
		Place: DefaultPlace,
	}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.WeatherHost = getenvDefault("OPENWEATHER_HOST", defaultWeatherHost)

	cfg.EventsFeedURL = getenvDefault("EVENTS_FEED_URL", defaultFeedURL)
	cfg.EventsMaxPages = getenvInt("EVENTS_MAX_PAGES", 100)
	if cfg.EventsMaxPages <= 0 {
		return nil, fmt.Errorf("invalid EVENTS_MAX_PAGES: must be positive")
	}

	cfg.CachePath = "events.json"
	if v, ok := os.LookupEnv("CACHE_PATH"); ok {
		cfg.CachePath = v
	}

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	rps, err := strconv.ParseFloat(getenvDefault("WEATHER_RATE_PER_SECOND", "1"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid WEATHER_RATE_PER_SECOND: %q", os.Getenv("WEATHER_RATE_PER_SECOND"))
	}
	cfg.WeatherRatePerSecond = rps
	cfg.WeatherBurst = getenvInt("WEATHER_BURST", 5)

	tz, err := time.LoadLocation(getenvDefault("ROLLOVER_TIMEZONE", "Europe/Helsinki"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROLLOVER_TIMEZONE: %w", err)
	}
	cfg.Timezone = tz

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
