package httpapi

import (
	"sync"
	"time"

	"github.com/i474232898/weather-events/internal/events"
	"github.com/i474232898/weather-events/internal/weather"
)

// Presenter keeps the last rendered output so HTTP clients can read it.
// It implements recommend.Sink.
type Presenter struct {
	mu      sync.RWMutex
	events  []events.Event
	panel   weather.Panel
	updated time.Time
}

// NewPresenter creates an empty Presenter.
func NewPresenter() *Presenter {
	return &Presenter{events: []events.Event{}}
}

func (p *Presenter) ShowEvents(evs []events.Event) {
	cp := make([]events.Event, len(evs))
	copy(cp, evs)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = cp
	p.updated = time.Now().UTC()
}

func (p *Presenter) ShowWeather(panel weather.Panel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panel = panel
	p.updated = time.Now().UTC()
}

// Rendered is the presenter's current output.
type Rendered struct {
	Events    []events.Event `json:"events"`
	Weather   weather.Panel  `json:"weather"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Current returns a copy of the last rendered output.
func (p *Presenter) Current() Rendered {
	p.mu.RLock()
	defer p.mu.RUnlock()

	evs := make([]events.Event, len(p.events))
	copy(evs, p.events)
	return Rendered{Events: evs, Weather: p.panel, UpdatedAt: p.updated}
}
