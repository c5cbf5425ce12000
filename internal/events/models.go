package events

import "github.com/i474232898/weather-events/internal/common"

// Event is one catalog entry. It is built once during ingestion and never
// mutated afterwards; IsIndoors is decided at that point and not re-derived.
type Event struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	StartDate   common.Date `json:"startDate"`
	EndDate     common.Date `json:"endDate"`
	Description string      `json:"description"`
	Categories  []string    `json:"categories"`
	Topics      []string    `json:"topics"`
	IsIndoors   bool        `json:"isIndoors"`
}

// Title is the text searched by free-text queries.
func (e Event) Title() string {
	return e.Name
}
