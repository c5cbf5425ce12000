package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-events/internal/httpclient"
	"github.com/i474232898/weather-events/internal/metrics"
)

// PageSize is the number of records requested per feed page.
const PageSize = 1000

var (
	// ErrTooManyPages is returned when the feed still has a next cursor after
	// the configured page cap.
	ErrTooManyPages = errors.New("events feed exceeded page limit")
	// ErrCursorLoop is returned when the feed points back to a page it already served.
	ErrCursorLoop = errors.New("events feed cursor loop")
)

// Getter is the transport the feed client needs.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, out interface{}) error
}

// FeedClient ingests the full paginated event catalog.
type FeedClient struct {
	baseURL  string
	maxPages int
	getter   Getter
	parser   *Parser
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// NewFeedClient creates a FeedClient for baseURL. maxPages bounds cursor
// following; values <= 0 mean 100.
func NewFeedClient(baseURL string, getter Getter, maxPages int, logger *zap.Logger, m *metrics.Collector) *FeedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPages <= 0 {
		maxPages = 100
	}
	return &FeedClient{
		baseURL:  baseURL,
		maxPages: maxPages,
		getter:   getter,
		parser:   NewParser(logger),
		logger:   logger,
		metrics:  m,
	}
}

type feedPage struct {
	Results []json.RawMessage `json:"results"`
	Next    *string           `json:"next"`
}

// FetchAll follows the feed's next cursors to completion and returns every
// parsable record in feed order (first page first). A failed page fails the
// whole call; a malformed record is logged and skipped.
func (c *FeedClient) FetchAll(ctx context.Context) ([]Event, error) {
	start := time.Now()

	first, err := c.firstPageURL()
	if err != nil {
		return nil, err
	}

	var (
		raws  []json.RawMessage
		pages int
		seen  = make(map[string]struct{})
		next  = first
	)

	for next != "" {
		if pages >= c.maxPages {
			c.metrics.RecordIngestionError("page_limit")
			return nil, fmt.Errorf("%w: %d pages", ErrTooManyPages, c.maxPages)
		}
		if _, dup := seen[next]; dup {
			c.metrics.RecordIngestionError("cursor_loop")
			return nil, fmt.Errorf("%w: %s", ErrCursorLoop, httpclient.Redact(next))
		}
		seen[next] = struct{}{}

		var page feedPage
		if err := c.getter.GetJSON(ctx, next, &page); err != nil {
			c.metrics.RecordIngestionError("transport_error")
			return nil, fmt.Errorf("fetch events page %d: %w", pages+1, err)
		}
		pages++

		c.logger.Debug("events page fetched",
			zap.Int("page", pages),
			zap.Int("results", len(page.Results)),
		)

		raws = append(raws, page.Results...)
		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	out := make([]Event, 0, len(raws))
	for i, raw := range raws {
		ev, err := c.parser.Parse(raw)
		if err != nil {
			c.metrics.RecordIngestionError("parse_error")
			c.logger.Warn("skipping malformed event record", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, ev)
	}

	elapsed := time.Since(start)
	c.metrics.RecordIngestion(pages, len(out), elapsed)
	c.logger.Info("events catalog ingested",
		zap.Int("pages", pages),
		zap.Int("records", len(raws)),
		zap.Int("events", len(out)),
		zap.Duration("duration", elapsed),
	)

	return out, nil
}

func (c *FeedClient) firstPageURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid events feed url: %w", err)
	}
	q := u.Query()
	q.Set("format", "json")
	q.Set("lang", "fi")
	q.Set("limit", fmt.Sprint(PageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
