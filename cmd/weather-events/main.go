package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-events/internal/api/http"
	"github.com/i474232898/weather-events/internal/config"
	"github.com/i474232898/weather-events/internal/events"
	"github.com/i474232898/weather-events/internal/httpclient"
	"github.com/i474232898/weather-events/internal/logging"
	"github.com/i474232898/weather-events/internal/metrics"
	"github.com/i474232898/weather-events/internal/recommend"
	"github.com/i474232898/weather-events/internal/scheduler"
	"github.com/i474232898/weather-events/internal/store"
	"github.com/i474232898/weather-events/internal/weather"
	"github.com/i474232898/weather-events/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	if cfg.OpenWeatherAPIKey == "" {
		zl.Warn("OPENWEATHER_API_KEY is not set; weather will be unavailable")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector("weather_events", reg)

	// Shared HTTP client for outbound calls; each upstream gets its own breaker.
	httpClient := httpclient.NewHTTPClient(cfg.HTTPTimeout)
	feedGetter := httpclient.NewGetter("events_feed", httpClient, httpclient.WithMetrics(m))
	weatherGetter := httpclient.NewGetter("openweather", httpClient,
		httpclient.WithRateLimit(cfg.WeatherRatePerSecond, cfg.WeatherBurst),
		httpclient.WithMetrics(m),
	)

	owm := providers.NewOpenWeather(cfg.WeatherHost, cfg.OpenWeatherAPIKey, weatherGetter, zl.Named("openweather"))
	var geo weather.GeoResolver = owm
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeoResolver(cfg.GeocoderAPIKey, "Finland")
		zl.Info("using google geocoder for place resolution")
	}
	weatherSvc := weather.NewService(cfg.Place, geo, owm, zl.Named("weather"))

	feed := events.NewFeedClient(cfg.EventsFeedURL, feedGetter, cfg.EventsMaxPages, zl.Named("feed"), m)

	var cache store.EventCache
	if cfg.CachePath != "" {
		cache = store.NewFileCache(cfg.CachePath, zl.Named("cache"), m)
	} else {
		cache = store.NewMemoryCache()
	}

	presenter := httpapi.NewPresenter()
	coord := recommend.NewCoordinator(recommend.Options{
		Cache:    cache,
		Feed:     feed,
		Weather:  weatherSvc,
		Sink:     presenter,
		Location: cfg.Timezone,
		Logger:   zl.Named("coordinator"),
		Metrics:  m,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup ingestion can take a while; serve requests meanwhile.
	started := coord.Submit(ctx, recommend.Trigger{Kind: recommend.TriggerStart})
	go func() {
		o := <-started
		if o.Err != nil {
			zl.Error("startup failed", zap.Error(o.Err))
			return
		}
		zl.Info("startup completed", zap.Stringer("date", o.View.Date), zap.Int("events", len(o.View.Events)))
	}()

	sched := scheduler.New(cfg.Timezone, coord, zl.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-events",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-events",
			"place":   weatherSvc.Place(),
		})
	})

	httpapi.RegisterMetrics(app, reg)
	httpapi.RegisterRoutes(app, coord, presenter)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("fiber server stopped", zap.Error(err))
		}
	}()
	zl.Info("server listening", zap.String("port", cfg.Port))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
}
