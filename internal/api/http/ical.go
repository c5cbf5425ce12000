package httpapi

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/i474232898/weather-events/internal/events"
)

const icsProductID = "-//weather-events//Tampere events//EN"

// exportCalendar renders evs as an iCalendar feed of all-day events.
func exportCalendar(evs []events.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, e := range evs {
		ve := cal.AddEvent(eventUID(e))
		ve.SetDtStampTime(now)
		ve.SetSummary(e.Name)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		ve.SetAllDayStartAt(e.StartDate.Time())
		// DTEND of an all-day event is exclusive.
		end := e.EndDate
		if end.Before(e.StartDate) {
			end = e.StartDate
		}
		ve.SetAllDayEndAt(end.AddDays(1).Time())
		if len(e.Categories) > 0 {
			ve.SetProperty(ical.ComponentPropertyCategories, strings.Join(e.Categories, ","))
		}
	}

	return cal.Serialize()
}

// eventUID is the feed id, or a stable name-based id for events without one.
func eventUID(e events.Event) string {
	if e.ID != "" {
		return e.ID + "@weather-events"
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(e.Name+"|"+e.StartDate.String())).String() + "@weather-events"
}
