package events

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/i474232898/weather-events/internal/common"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// ParseError reports a record (or one field of it) that could not be parsed.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser turns raw feed records into Events.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a Parser that logs degraded fields on logger.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse builds an Event from one feed record. Missing optional fields fall
// back to empty values; an unusable start/end date or a missing
// categories/topics key fails the whole record.
func (p *Parser) Parse(raw json.RawMessage) (Event, error) {
	var rec map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Event{}, &ParseError{Field: "record", Err: err}
	}

	id := stringField(rec, "_id")
	name := stringField(rec, "name")

	start, err := dateField(rec, "start_time")
	if err != nil {
		return Event{}, err
	}
	end, err := dateField(rec, "end_time")
	if err != nil {
		return Event{}, err
	}

	location, ok := firstAddress(rec)
	if !ok {
		p.logger.Info("no location found for event", zap.String("name", name), zap.String("id", id))
	}

	description := NeutralizeHTML(stringField(rec, "description"))

	categories, err := stringsField(rec, "categories")
	if err != nil {
		return Event{}, err
	}
	topics, err := stringsField(rec, "topics")
	if err != nil {
		return Event{}, err
	}

	return Event{
		ID:          id,
		Name:        name,
		Location:    location,
		StartDate:   start,
		EndDate:     end,
		Description: description,
		Categories:  categories,
		Topics:      topics,
		IsIndoors:   Classify(name, description, location),
	}, nil
}

// NeutralizeHTML turns a feed description into plain text: paragraph ends
// become blank lines, tags are dropped and ":&nbsp;" becomes a space.
func NeutralizeHTML(text string) string {
	text = strings.ReplaceAll(text, "</p>", "\n\n")
	text = tagPattern.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, ":&nbsp;", " ")
}

// TruncateDate parses the YYYY-MM-DD prefix of a timestamp.
func TruncateDate(ts string) (common.Date, error) {
	if len(ts) < len(common.DateLayout) {
		return common.Date{}, fmt.Errorf("timestamp %q shorter than %d characters", ts, len(common.DateLayout))
	}
	return common.ParseDate(ts[:len(common.DateLayout)])
}

func stringField(rec map[string]json.RawMessage, key string) string {
	raw, ok := rec[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func dateField(rec map[string]json.RawMessage, key string) (common.Date, error) {
	d, err := TruncateDate(stringField(rec, key))
	if err != nil {
		return common.Date{}, &ParseError{Field: key, Err: err}
	}
	return d, nil
}

// firstAddress returns locations[0].address; ok is false when the record
// has no such value.
func firstAddress(rec map[string]json.RawMessage) (string, bool) {
	raw, present := rec["locations"]
	if !present {
		return "", false
	}

	var locations []struct {
		Address *string `json:"address"`
	}
	if err := json.Unmarshal(raw, &locations); err != nil || len(locations) == 0 || locations[0].Address == nil {
		return "", false
	}
	return *locations[0].Address, true
}

func stringsField(rec map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := rec[key]
	if !ok {
		return nil, &ParseError{Field: key, Err: fmt.Errorf("missing")}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Field: key, Err: err}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var s *string
		if err := json.Unmarshal(item, &s); err != nil || s == nil {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}
