package weather

import "github.com/i474232898/weather-events/internal/common"

// WindowDays is the number of days following the reference date shown in
// the forecast window.
const WindowDays = 4

// WindowFrom picks, for each of the WindowDays days after ref, the first
// series entry on that date at ForecastHour. Days without such an entry are
// left out, so the result holds at most WindowDays entries in date order.
func WindowFrom(ref common.Date, series []Weather) []Weather {
	window := make([]Weather, 0, WindowDays)
	for i := 1; i <= WindowDays; i++ {
		day := ref.AddDays(i)
		for _, w := range series {
			if w.Date() == day && w.DateTime.Hour() == ForecastHour {
				window = append(window, w)
				break
			}
		}
	}
	return window
}

// OnDate returns the first series entry on date.
func OnDate(date common.Date, series []Weather) (Weather, bool) {
	for _, w := range series {
		if w.Date() == date {
			return w, true
		}
	}
	return Weather{}, false
}
