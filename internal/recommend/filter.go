package recommend

import (
	"strings"

	"github.com/i474232898/weather-events/internal/common"
	"github.com/i474232898/weather-events/internal/events"
	"github.com/i474232898/weather-events/internal/weather"
)

// MinTemperature is the coldest reading, in °C, at which outdoor events are
// still shown.
const MinTemperature = -20.0

var adverseConditions = []string{"rain", "snow", "thunder"}

// ByDate keeps events starting on d.
func ByDate(evs []events.Event, d common.Date) []events.Event {
	return keep(evs, func(e events.Event) bool { return e.StartDate == d })
}

// IndoorsOnly reports whether w calls for hiding outdoor events.
func IndoorsOnly(w weather.Weather) bool {
	return common.HasAnyFold(string(w.MainType), adverseConditions...) || w.Temperature < MinTemperature
}

// ByWeather keeps only indoor events when w is adverse. A nil w applies no
// restriction.
func ByWeather(evs []events.Event, w *weather.Weather) []events.Event {
	if w == nil || !IndoorsOnly(*w) {
		return keep(evs, nil)
	}
	return keep(evs, func(e events.Event) bool { return e.IsIndoors })
}

// ByCategory keeps events having any of the bucket's feed categories.
// CategoryAll and unknown buckets keep everything.
func ByCategory(evs []events.Event, bucket string) []events.Event {
	set, ok := categoryIndex[bucket]
	if !ok {
		return keep(evs, nil)
	}
	return keep(evs, func(e events.Event) bool {
		for _, c := range e.Categories {
			if _, hit := set[c]; hit {
				return true
			}
		}
		return false
	})
}

// ByTitle keeps events whose title contains query, ignoring case.
func ByTitle(evs []events.Event, query string) []events.Event {
	q := strings.ToLower(query)
	return keep(evs, func(e events.Event) bool {
		return strings.Contains(strings.ToLower(e.Title()), q)
	})
}

// keep returns a new slice with the events matching pred; a nil pred keeps all.
func keep(evs []events.Event, pred func(events.Event) bool) []events.Event {
	out := make([]events.Event, 0, len(evs))
	for _, e := range evs {
		if pred == nil || pred(e) {
			out = append(out, e)
		}
	}
	return out
}
