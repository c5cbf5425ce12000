package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-events/internal/common"
	"github.com/i474232898/weather-events/internal/events"
	"github.com/i474232898/weather-events/internal/metrics"
	"github.com/i474232898/weather-events/internal/store"
	"github.com/i474232898/weather-events/internal/weather"
)

// ErrSuperseded is returned by a trigger that a newer trigger replaced before
// it could commit. A superseded trigger leaves the state untouched.
var ErrSuperseded = errors.New("trigger superseded by a newer one")

// Sink is the presentation collaborator that renders committed results.
type Sink interface {
	ShowEvents(evs []events.Event)
	ShowWeather(p weather.Panel)
}

// Ingester fetches the full event catalog.
type Ingester interface {
	FetchAll(ctx context.Context) ([]events.Event, error)
}

// WeatherSelector fetches weather and resolves it for a selected date.
type WeatherSelector interface {
	Fetch(ctx context.Context) (weather.State, error)
	Select(ctx context.Context, prev weather.State, date, today common.Date) (weather.State, weather.Panel)
	Panel(st weather.State, date common.Date) weather.Panel
}

// TriggerKind names a Coordinator trigger.
type TriggerKind string

const (
	TriggerStart    TriggerKind = "start"
	TriggerDate     TriggerKind = "date"
	TriggerCategory TriggerKind = "category"
	TriggerSearch   TriggerKind = "search"
	TriggerRollover TriggerKind = "rollover"
)

// Trigger is an input to Submit. Date, Category and Query are read according
// to Kind.
type Trigger struct {
	Kind     TriggerKind
	Date     common.Date
	Category string
	Query    string
}

// Outcome is delivered once per submitted trigger.
type Outcome struct {
	View View
	Err  error
}

// View is the result of a committed trigger.
type View struct {
	Date     common.Date    `json:"date"`
	Today    common.Date    `json:"today"`
	Weather  weather.Panel  `json:"weather"`
	Events   []events.Event `json:"events"`
	Category string         `json:"category,omitempty"`
	Query    string         `json:"query,omitempty"`
}

// state is owned by the Coordinator and replaced wholesale on commit.
type state struct {
	catalog  []events.Event
	current  []events.Event // active date
	filtered []events.Event // current after the weather rule
	shown    []events.Event

	today    common.Date
	date     common.Date
	weather  weather.State
	panel    weather.Panel
	category string
	query    string
}

// Options configures a Coordinator.
type Options struct {
	Cache    store.EventCache
	Feed     Ingester
	Weather  WeatherSelector
	Sink     Sink
	Location *time.Location
	Logger   *zap.Logger
	Metrics  *metrics.Collector

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Coordinator owns the catalog and the derived working sets and recomputes
// them on each trigger. Triggers run one at a time in arrival order; a date
// or rollover trigger cancels the navigation still in flight.
type Coordinator struct {
	cache   store.EventCache
	feed    Ingester
	weather WeatherSelector
	sink    Sink
	loc     *time.Location
	clock   func() time.Time
	logger  *zap.Logger
	metrics *metrics.Collector

	// Triggers run in the order they began: each waits for the previous
	// trigger's done channel before touching state.
	queueMu sync.Mutex
	tail    chan struct{}

	// nav counts navigation triggers (date, rollover). Only a newer
	// navigation supersedes an older one; category and search queue behind
	// it, and startup is never cancelled.
	nav       uint64
	navCancel context.CancelFunc

	stMu sync.RWMutex
	st   state
}

// NewCoordinator creates a Coordinator. Nothing is loaded until Start.
func NewCoordinator(opts Options) *Coordinator {
	c := &Coordinator{
		cache:   opts.Cache,
		feed:    opts.Feed,
		weather: opts.Weather,
		sink:    opts.Sink,
		loc:     opts.Location,
		clock:   opts.Clock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if c.cache == nil {
		c.cache = store.NewMemoryCache()
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.tail = make(chan struct{})
	close(c.tail)
	c.st = state{
		catalog:  []events.Event{},
		current:  []events.Event{},
		filtered: []events.Event{},
		shown:    []events.Event{},
	}
	return c
}

// Start loads the catalog, ingesting and caching it when the cache is
// empty, fetches weather and shows today's events.
func (c *Coordinator) Start(ctx context.Context) (View, error) {
	return c.Do(ctx, Trigger{Kind: TriggerStart})
}

// NavigateDate makes date the active date.
func (c *Coordinator) NavigateDate(ctx context.Context, date common.Date) (View, error) {
	return c.Do(ctx, Trigger{Kind: TriggerDate, Date: date})
}

// SelectCategory shows the active date's events in bucket. The result is
// derived from all events of the date, so the weather rule does not apply.
func (c *Coordinator) SelectCategory(ctx context.Context, bucket string) (View, error) {
	return c.Do(ctx, Trigger{Kind: TriggerCategory, Category: bucket})
}

// Search shows the weather-filtered events whose title contains query.
func (c *Coordinator) Search(ctx context.Context, query string) (View, error) {
	return c.Do(ctx, Trigger{Kind: TriggerSearch, Query: query})
}

// Rollover moves the today anchor to the current calendar day and navigates
// to it.
func (c *Coordinator) Rollover(ctx context.Context) (View, error) {
	return c.Do(ctx, Trigger{Kind: TriggerRollover})
}

// Do runs t and blocks until it commits, fails or is superseded.
func (c *Coordinator) Do(ctx context.Context, t Trigger) (View, error) {
	tctx, gen, wait, release := c.begin(ctx, t.Kind)
	defer release()
	return c.execute(tctx, gen, wait, t)
}

// Submit runs t asynchronously. t is queued as soon as Submit returns, and a
// date or rollover trigger supersedes the navigation before it. The channel
// receives exactly one Outcome.
func (c *Coordinator) Submit(ctx context.Context, t Trigger) <-chan Outcome {
	out := make(chan Outcome, 1)
	tctx, gen, wait, release := c.begin(ctx, t.Kind)
	go func() {
		defer close(out)
		defer release()
		v, err := c.execute(tctx, gen, wait, t)
		out <- Outcome{View: v, Err: err}
	}()
	return out
}

// Snapshot returns the last committed view.
func (c *Coordinator) Snapshot() View {
	c.stMu.RLock()
	defer c.stMu.RUnlock()
	return viewOf(c.st)
}

func isNavigation(kind TriggerKind) bool {
	return kind == TriggerDate || kind == TriggerRollover
}

// begin queues a trigger of kind. The returned wait blocks until every
// earlier trigger has finished; release must be called exactly once.
func (c *Coordinator) begin(parent context.Context, kind TriggerKind) (ctx context.Context, gen uint64, wait func() error, release func()) {
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})

	c.queueMu.Lock()
	prev := c.tail
	c.tail = done
	if isNavigation(kind) {
		if c.navCancel != nil {
			c.navCancel()
		}
		c.nav++
		c.navCancel = cancel
	}
	gen = c.nav
	c.queueMu.Unlock()

	wait = func() error {
		select {
		case <-prev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	release = func() {
		cancel()
		c.queueMu.Lock()
		if isNavigation(kind) && c.nav == gen {
			c.navCancel = nil
		}
		c.queueMu.Unlock()

		// Keep the order intact when this trigger gave up before its turn.
		select {
		case <-prev:
			close(done)
		default:
			go func() {
				<-prev
				close(done)
			}()
		}
	}
	return ctx, gen, wait, release
}

// superseded reports whether a newer navigation has begun since gen. Only
// navigation triggers can be superseded.
func (c *Coordinator) superseded(gen uint64, kind TriggerKind) bool {
	if !isNavigation(kind) {
		return false
	}
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	return gen != c.nav
}

func (c *Coordinator) execute(ctx context.Context, gen uint64, wait func() error, t Trigger) (View, error) {
	logger := c.logger.With(
		zap.String("trigger", string(t.Kind)),
		zap.String("trigger_id", uuid.NewString()),
	)

	err := wait()
	if c.superseded(gen, t.Kind) {
		logger.Debug("trigger superseded before it started")
		return View{}, ErrSuperseded
	}
	if err != nil {
		return View{}, err
	}

	start := time.Now()
	c.stMu.RLock()
	prev := c.st
	c.stMu.RUnlock()

	next, err := c.apply(ctx, logger, prev, t)
	if c.superseded(gen, t.Kind) {
		logger.Info("trigger superseded; discarding result")
		return View{}, ErrSuperseded
	}
	if err != nil {
		logger.Error("trigger failed", zap.Error(err))
		return View{}, err
	}
	if err := ctx.Err(); err != nil {
		return View{}, err
	}

	c.stMu.Lock()
	c.st = next
	c.stMu.Unlock()

	c.sink.ShowWeather(next.panel)
	c.sink.ShowEvents(next.shown)

	elapsed := time.Since(start)
	c.metrics.ObserveTrigger(string(t.Kind), elapsed)
	c.metrics.SetDisplayed(len(next.shown))
	logger.Info("trigger committed",
		zap.Stringer("date", next.date),
		zap.Int("shown", len(next.shown)),
		zap.Duration("duration", elapsed),
	)

	return viewOf(next), nil
}

func (c *Coordinator) apply(ctx context.Context, logger *zap.Logger, st state, t Trigger) (state, error) {
	switch t.Kind {
	case TriggerStart:
		return c.start(ctx, logger, st), nil
	case TriggerDate:
		if t.Date.IsZero() {
			return st, fmt.Errorf("date trigger without a date")
		}
		if st.today.IsZero() {
			st.today = c.today()
		}
		return c.navigate(ctx, st, t.Date), nil
	case TriggerCategory:
		if !IsCategory(t.Category) {
			logger.Warn("unknown category; showing all events of the date", zap.String("category", t.Category))
		}
		st.category = t.Category
		st.query = ""
		st.shown = ByCategory(st.current, t.Category)
		return st, nil
	case TriggerSearch:
		st.query = t.Query
		st.category = ""
		st.shown = ByTitle(st.filtered, t.Query)
		return st, nil
	case TriggerRollover:
		st.today = c.today()
		return c.navigate(ctx, st, st.today), nil
	default:
		return st, fmt.Errorf("unknown trigger %q", t.Kind)
	}
}

func (c *Coordinator) start(ctx context.Context, logger *zap.Logger, st state) state {
	catalog, err := c.cache.Load(ctx)
	if err != nil {
		logger.Error("event cache load failed", zap.Error(err))
		catalog = []events.Event{}
	}

	if len(catalog) == 0 && c.feed != nil {
		fetched, err := c.feed.FetchAll(ctx)
		if err != nil {
			logger.Error("event ingestion failed; continuing with an empty catalog", zap.Error(err))
		} else {
			catalog = fetched
			if err := c.cache.Save(ctx, catalog); err != nil {
				logger.Error("event cache save failed", zap.Error(err))
			}
		}
	}
	st.catalog = catalog
	st.today = c.today()
	st.date = st.today

	if c.weather != nil {
		ws, err := c.weather.Fetch(ctx)
		if err != nil {
			logger.Error("weather initialization failed", zap.Error(err))
		} else {
			st.weather = ws
		}
		st.panel = c.weather.Panel(st.weather, st.date)
	}

	return derive(st)
}

func (c *Coordinator) navigate(ctx context.Context, st state, date common.Date) state {
	if c.weather != nil {
		st.weather, st.panel = c.weather.Select(ctx, st.weather, date, st.today)
	}
	st.date = date
	return derive(st)
}

// derive recomputes the date and weather sets and resets category and search.
func derive(st state) state {
	st.current = ByDate(st.catalog, st.date)
	st.filtered = ByWeather(st.current, st.weather.Current)
	st.shown = st.filtered
	st.category = ""
	st.query = ""
	return st
}

func (c *Coordinator) today() common.Date {
	return common.DateOf(c.clock().In(c.loc))
}

func viewOf(st state) View {
	shown := make([]events.Event, len(st.shown))
	copy(shown, st.shown)
	return View{
		Date:     st.date,
		Today:    st.today,
		Weather:  st.panel,
		Events:   shown,
		Category: st.category,
		Query:    st.query,
	}
}

type nopSink struct{}

func (nopSink) ShowEvents([]events.Event) {}
func (nopSink) ShowWeather(weather.Panel) {}
