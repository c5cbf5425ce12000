package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection.
// A nil *Collector is valid and records nothing.
type Collector struct {
	// Ingestion Metrics
	IngestionRecordsTotal prometheus.Counter
	IngestionPagesTotal   prometheus.Counter
	IngestionErrorsTotal  *prometheus.CounterVec
	IngestionDuration     prometheus.Histogram

	// Cache Metrics
	CacheLoadsTotal *prometheus.CounterVec

	// Outbound HTTP Metrics
	OutboundRequestsTotal *prometheus.CounterVec

	// Coordinator Metrics
	TriggerDuration *prometheus.HistogramVec
	DisplayedEvents prometheus.Gauge
}

// NewCollector creates a new metrics collector registered on reg.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		IngestionRecordsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestion_records_total",
				Help:      "Total number of event records ingested from the feed",
			},
		),

		IngestionPagesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestion_pages_total",
				Help:      "Total number of feed pages fetched",
			},
		),

		IngestionErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestion_errors_total",
				Help:      "Total number of ingestion errors by type",
			},
			[]string{"error_type"},
		),

		IngestionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ingestion_duration_seconds",
				Help:      "Duration of full catalog ingestion in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),

		CacheLoadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_loads_total",
				Help:      "Catalog cache loads by result",
			},
			[]string{"result"}, // "hit", "miss", "corrupt"
		),

		OutboundRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbound_requests_total",
				Help:      "Outbound HTTP requests by target and outcome",
			},
			[]string{"target", "outcome"},
		),

		TriggerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "trigger_duration_seconds",
				Help:      "Duration of coordinator triggers in seconds",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"trigger"},
		),

		DisplayedEvents: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "displayed_events",
				Help:      "Number of events in the last rendered set",
			},
		),
	}
}

// RecordIngestionError increments ingestion error counter
func (c *Collector) RecordIngestionError(errorType string) {
	if c == nil {
		return
	}
	c.IngestionErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordIngestion records a completed ingestion run.
func (c *Collector) RecordIngestion(pages, records int, d time.Duration) {
	if c == nil {
		return
	}
	c.IngestionPagesTotal.Add(float64(pages))
	c.IngestionRecordsTotal.Add(float64(records))
	c.IngestionDuration.Observe(d.Seconds())
}

// RecordCacheLoad increments the cache load counter for result.
func (c *Collector) RecordCacheLoad(result string) {
	if c == nil {
		return
	}
	c.CacheLoadsTotal.WithLabelValues(result).Inc()
}

// RecordOutbound increments the outbound request counter.
func (c *Collector) RecordOutbound(target, outcome string) {
	if c == nil {
		return
	}
	c.OutboundRequestsTotal.WithLabelValues(target, outcome).Inc()
}

// ObserveTrigger records how long a coordinator trigger took.
func (c *Collector) ObserveTrigger(trigger string, d time.Duration) {
	if c == nil {
		return
	}
	c.TriggerDuration.WithLabelValues(trigger).Observe(d.Seconds())
}

// SetDisplayed records the size of the last rendered event set.
func (c *Collector) SetDisplayed(n int) {
	if c == nil {
		return
	}
	c.DisplayedEvents.Set(float64(n))
}
