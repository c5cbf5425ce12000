package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-events/internal/common"
	"github.com/i474232898/weather-events/internal/events"
	"github.com/i474232898/weather-events/internal/metrics"
)

const (
	schemaName    = "weather-events/catalog"
	schemaVersion = 1
)

var errCorrupt = errors.New("catalog file is corrupt")

// catalogFile is the on-disk layout. Fields are tagged, never positional, so
// any language can read it; bump schemaVersion on incompatible changes.
type catalogFile struct {
	Schema  string        `json:"schema"`
	Version int           `json:"version"`
	SavedAt time.Time     `json:"saved_at"`
	Events  []eventRecord `json:"events"`
}

type eventRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Topics      []string `json:"topics"`
	IsIndoors   bool     `json:"is_indoors"`
}

// FileCache keeps the catalog in a single JSON file.
type FileCache struct {
	path    string
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewFileCache creates a FileCache backed by path.
func NewFileCache(path string, logger *zap.Logger, m *metrics.Collector) *FileCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCache{path: path, logger: logger, metrics: m}
}

// Load restores the catalog. A missing file is a cache miss and a corrupt or
// foreign file is discarded; both yield an empty catalog and no error.
func (c *FileCache) Load(ctx context.Context) ([]events.Event, error) {
	catalog, err := c.read()
	switch {
	case err == nil:
		c.metrics.RecordCacheLoad("hit")
		c.logger.Info("events loaded from cache", zap.String("path", c.path), zap.Int("events", len(catalog)))
		return catalog, nil
	case errors.Is(err, ErrNotFound):
		c.metrics.RecordCacheLoad("miss")
		c.logger.Info("no existing event cache found; starting fresh", zap.String("path", c.path))
	default:
		c.metrics.RecordCacheLoad("corrupt")
		c.logger.Error("error loading events from cache; resetting catalog", zap.String("path", c.path), zap.Error(err))
	}
	return []events.Event{}, nil
}

func (c *FileCache) read() ([]events.Event, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if file.Schema != schemaName {
		return nil, fmt.Errorf("%w: unexpected schema %q", errCorrupt, file.Schema)
	}
	if file.Version != schemaVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", errCorrupt, file.Version)
	}

	catalog := make([]events.Event, 0, len(file.Events))
	for i, rec := range file.Events {
		ev, err := rec.toEvent()
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", errCorrupt, i, err)
		}
		catalog = append(catalog, ev)
	}
	return catalog, nil
}

// Save overwrites the catalog file. The new content is written to a temp file
// in the same directory and renamed over the target, so readers only ever
// see a complete catalog.
func (c *FileCache) Save(ctx context.Context, catalog []events.Event) error {
	file := catalogFile{
		Schema:  schemaName,
		Version: schemaVersion,
		SavedAt: time.Now().UTC(),
		Events:  make([]eventRecord, 0, len(catalog)),
	}
	for _, ev := range catalog {
		file.Events = append(file.Events, recordFromEvent(ev))
	}

	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".events-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	c.logger.Info("events saved to cache", zap.String("path", c.path), zap.Int("events", len(catalog)))
	return nil
}

func recordFromEvent(ev events.Event) eventRecord {
	return eventRecord{
		ID:          ev.ID,
		Name:        ev.Name,
		Location:    ev.Location,
		StartDate:   ev.StartDate.String(),
		EndDate:     ev.EndDate.String(),
		Description: ev.Description,
		Categories:  nonNil(ev.Categories),
		Topics:      nonNil(ev.Topics),
		IsIndoors:   ev.IsIndoors,
	}
}

func (r eventRecord) toEvent() (events.Event, error) {
	start, err := common.ParseDate(r.StartDate)
	if err != nil {
		return events.Event{}, err
	}
	end, err := common.ParseDate(r.EndDate)
	if err != nil {
		return events.Event{}, err
	}
	return events.Event{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		StartDate:   start,
		EndDate:     end,
		Description: r.Description,
		Categories:  nonNil(r.Categories),
		Topics:      nonNil(r.Topics),
		IsIndoors:   r.IsIndoors,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
