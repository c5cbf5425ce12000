package weather

import (
	"time"

	"github.com/i474232898/weather-events/internal/common"
)

// Condition is a canonical weather type used for filtering and display.
type Condition string

const (
	ConditionSunny        Condition = "Sunny"
	ConditionCloudy       Condition = "Cloudy"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionSnow         Condition = "Snow"
	ConditionThunder      Condition = "Thunder"
	ConditionPartlyCloudy Condition = "PartlyCloudy"
)

// ForecastHour is the only hour of day kept from a forecast series.
const ForecastHour = 15

// Coordinates is a resolved geographic position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Weather is a single normalized observation or forecast slot.
type Weather struct {
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Rain        float64   `json:"rainMm"`
	WindSpeed   float64   `json:"windSpeed"`
	MainType    Condition `json:"mainType"`
	Description string    `json:"description"`

	// DateTime is wall clock for current weather and the slot time for
	// forecast entries.
	DateTime time.Time `json:"dateTime"`
}

// Date returns the calendar date of the observation.
func (w Weather) Date() common.Date {
	return common.DateOf(w.DateTime)
}

// Panel is what the presentation layer shows for the active date: either a
// weather reading with its forecast window, or sentinel messages.
type Panel struct {
	Date     common.Date `json:"date"`
	Current  *Weather    `json:"current,omitempty"`
	Message  string      `json:"message,omitempty"`
	Forecast []Weather   `json:"forecast"`

	// ForecastMessage replaces Forecast when there are no entries to show.
	ForecastMessage string `json:"forecastMessage,omitempty"`
}

// HasData reports whether the panel carries a weather reading.
func (p Panel) HasData() bool {
	return p.Current != nil
}
