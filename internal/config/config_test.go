package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("CACHE_PATH", "")
	os.Unsetenv("CACHE_PATH")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Place != DefaultPlace {
		t.Errorf("expected place %q, got %q", DefaultPlace, cfg.Place)
	}
	if cfg.OpenWeatherAPIKey != "test-key" {
		t.Errorf("api key not read from environment")
	}
	if cfg.CachePath != "events.json" {
		t.Errorf("expected default cache path, got %q", cfg.CachePath)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.EventsMaxPages != 100 {
		t.Errorf("expected 100 max pages, got %d", cfg.EventsMaxPages)
	}
	if cfg.Timezone == nil || cfg.Timezone.String() != "Europe/Helsinki" {
		t.Errorf("unexpected timezone %v", cfg.Timezone)
	}
}

func TestEmptyCachePathMeansMemory(t *testing.T) {
	t.Setenv("CACHE_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CachePath != "" {
		t.Errorf("expected empty cache path, got %q", cfg.CachePath)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_TIMEOUT":            "soon",
		"WEATHER_RATE_PER_SECOND": "-1",
		"ROLLOVER_TIMEZONE":       "Mars/Olympus",
		"EVENTS_MAX_PAGES":        "-3",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
