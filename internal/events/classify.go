package events

import "github.com/i474232898/weather-events/internal/common"

// Keyword sets for the indoor/outdoor heuristic (Finnish provider texts).
var (
	outdoorNameKeywords     = []string{"tori"}
	outdoorWordKeywords     = []string{"puisto", "ulko"}
	outdoorLocationKeywords = []string{"puisto", "parkki", "ulkoilma", "säävaraus"}
)

// Classify reports whether an event is held indoors. Rules are checked in
// order (name, description, location) with case-insensitive substring
// matching; the first outdoor hit wins. Anything unmatched is indoors.
func Classify(name, description, location string) bool {
	switch {
	case common.HasAnyFold(name, outdoorNameKeywords...):
		return false
	case common.HasAnyFold(description, outdoorWordKeywords...):
		return false
	case common.HasAnyFold(location, outdoorLocationKeywords...):
		return false
	default:
		return true
	}
}
