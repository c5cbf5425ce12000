package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/weather-events/internal/common"
	"github.com/i474232898/weather-events/internal/events"
	"github.com/i474232898/weather-events/internal/metrics"
	"github.com/i474232898/weather-events/internal/recommend"
	"github.com/i474232898/weather-events/internal/weather"
)

type fakeRecommender struct {
	date     common.Date
	category string
	query    string
	err      error
	snapshot recommend.View
}

func (f *fakeRecommender) Snapshot() recommend.View {
	return f.snapshot
}

func (f *fakeRecommender) NavigateDate(ctx context.Context, date common.Date) (recommend.View, error) {
	f.date = date
	return recommend.View{Date: date, Events: []events.Event{}}, f.err
}

func (f *fakeRecommender) SelectCategory(ctx context.Context, bucket string) (recommend.View, error) {
	f.category = bucket
	return recommend.View{Category: bucket, Events: []events.Event{}}, f.err
}

func (f *fakeRecommender) Search(ctx context.Context, query string) (recommend.View, error) {
	f.query = query
	return recommend.View{Query: query, Events: []events.Event{}}, f.err
}

func newTestApp() (*fiber.App, *fakeRecommender, *Presenter) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	rec := &fakeRecommender{}
	presenter := NewPresenter()
	RegisterRoutes(app, rec, presenter)
	return app, rec, presenter
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestDateValidation(t *testing.T) {
	app, rec, _ := newTestApp()

	for _, target := range []string{"/api/v1/events", "/api/v1/events?date=tomorrow", "/api/v1/events?date=2024-13-01"} {
		resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, target, nil))
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/events?date=2024-06-01", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, body)
	}
	if rec.date != (common.Date{Year: 2024, Month: time.June, Day: 1}) {
		t.Fatalf("unexpected date passed to recommender: %v", rec.date)
	}
	if !strings.Contains(body, `"date":"2024-06-01"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestPostDate(t *testing.T) {
	app, rec, _ := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/date", strings.NewReader(`{"date":"2024-06-03"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := do(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, body)
	}
	if rec.date.Day != 3 {
		t.Fatalf("unexpected date %v", rec.date)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/date", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = do(t, app, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestCategoryAndSearch(t *testing.T) {
	app, rec, _ := newTestApp()

	resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/events/category", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing category must be rejected, got %d", resp.StatusCode)
	}

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/events/category?name=Ice+Hockey", nil))
	if resp.StatusCode != http.StatusOK || rec.category != "Ice Hockey" {
		t.Fatalf("unexpected category result %d %q", resp.StatusCode, rec.category)
	}

	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/events/search?q=jazz", nil))
	if resp.StatusCode != http.StatusOK || rec.query != "jazz" {
		t.Fatalf("unexpected search result %d %q", resp.StatusCode, rec.query)
	}

	long := strings.Repeat("a", 201)
	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/events/search?q="+long, nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("overlong query must be rejected, got %d", resp.StatusCode)
	}
}

func TestSupersededTriggerIsConflict(t *testing.T) {
	app, rec, _ := newTestApp()
	rec.err = recommend.ErrSuperseded

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/events/search?q=x", nil))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"error":true`) {
		t.Fatalf("expected JSON error body, got %s", body)
	}
}

func TestCategories(t *testing.T) {
	app, _, _ := newTestApp()

	_, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	var payload struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Categories) == 0 || payload.Categories[0] != recommend.CategoryAll {
		t.Fatalf("unexpected categories %v", payload.Categories)
	}
}

func TestViewAndCalendarExport(t *testing.T) {
	app, rec, presenter := newTestApp()
	start := common.Date{Year: 2024, Month: time.June, Day: 1}

	panel := weather.Panel{Date: start, Message: weather.MsgNoDataForDate, Forecast: []weather.Weather{}}
	shown := []events.Event{
		{ID: "abc", Name: "Theater Show", Location: "Tampereen Teatteri", StartDate: start, EndDate: start,
			Description: "indoor show", Categories: []string{"Teatteri"}, Topics: []string{}, IsIndoors: true},
		{Name: "Jazz night", StartDate: start, EndDate: start.AddDays(1), Categories: []string{}, Topics: []string{}},
	}
	presenter.ShowWeather(panel)
	presenter.ShowEvents(shown)
	rec.snapshot = recommend.View{Date: start, Today: start, Weather: panel, Events: shown, Category: "Theater"}

	_, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/view", nil))
	var view viewResponse
	if err := json.Unmarshal([]byte(body), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Events) != 2 || view.Weather.Message != weather.MsgNoDataForDate {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.Date != start || view.Category != "Theater" || view.UpdatedAt.IsZero() {
		t.Fatalf("view must carry the active date, category and render time, got %s", body)
	}

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/v1/events.ics", nil))
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar") {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	cal, err := ical.ParseCalendar(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse calendar: %v", err)
	}
	evs := cal.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 VEVENTs, got %d", len(evs))
	}
	if evs[0].Id() != "abc@weather-events" {
		t.Errorf("unexpected UID %q", evs[0].Id())
	}
	if evs[1].Id() == "" || evs[1].Id() != eventUID(events.Event{Name: "Jazz night", StartDate: start}) {
		t.Errorf("expected stable generated UID, got %q", evs[1].Id())
	}
	if p := evs[0].GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "Theater Show" {
		t.Errorf("unexpected summary %+v", p)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := fiber.New()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector("weather_events", reg)
	collector.RecordCacheLoad("hit")
	RegisterMetrics(app, reg)

	resp, body := do(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `weather_events_cache_loads_total{result="hit"} 1`) {
		t.Fatalf("expected cache metric in output:\n%s", body)
	}
}
