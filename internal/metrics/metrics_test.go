package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecords(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordIngestion(2, 40, time.Second)
	c.RecordIngestionError("parse_error")
	c.RecordCacheLoad("miss")
	c.RecordOutbound("events", "ok")
	c.SetDisplayed(7)

	if got := testutil.ToFloat64(c.IngestionPagesTotal); got != 2 {
		t.Errorf("pages = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.IngestionRecordsTotal); got != 40 {
		t.Errorf("records = %v, want 40", got)
	}
	if got := testutil.ToFloat64(c.IngestionErrorsTotal.WithLabelValues("parse_error")); got != 1 {
		t.Errorf("parse errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.CacheLoadsTotal.WithLabelValues("miss")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.DisplayedEvents); got != 7 {
		t.Errorf("displayed = %v, want 7", got)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.RecordIngestion(1, 1, time.Millisecond)
	c.RecordIngestionError("x")
	c.RecordCacheLoad("hit")
	c.RecordOutbound("weather", "error")
	c.ObserveTrigger("date", time.Millisecond)
	c.SetDisplayed(3)
}
