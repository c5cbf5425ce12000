package weather

import "strings"

// Normalize maps a provider's raw condition name to a canonical Condition.
// Unknown values map to PartlyCloudy.
func Normalize(raw string) Condition {
	switch strings.ToLower(raw) {
	case "clear":
		return ConditionSunny
	case "clouds", "mist", "fog":
		return ConditionCloudy
	case "rain":
		return ConditionRain
	case "drizzle":
		return ConditionDrizzle
	case "snow":
		return ConditionSnow
	case "thunderstorm":
		return ConditionThunder
	default:
		return ConditionPartlyCloudy
	}
}
