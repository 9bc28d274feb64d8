package domain

import "strings"

// Base severity by category, before modifiers.
var categoryBaseScore = map[Category]int{
	CategoryPest:      50,
	CategoryDisease:   50,
	CategoryFlood:     70,
	CategoryDrought:   60,
	CategoryInputNeed: 40,
	CategoryOther:     30,
}

// priorityCrops add a fixed bump to severity.
var priorityCrops = map[Crop]bool{
	CropMaize:   true,
	CropRice:    true,
	CropCassava: true,
}

const (
	priorityCropBonus  = 10
	weatherMatchBonus  = 10
	rapidSpreadBonus   = 15
	severeKeywordBonus = 20
	youngCropBonus     = 5
	maxSeverity        = 100
)

// Enrich derives the weather hint, severity score, and tags for a report.
// It is a pure function of its inputs; unmatched inputs degrade to unknown
// weather and the "other" base score rather than failing.
func Enrich(category Category, crop Crop, lat, lon float64, description string) Enriched {
	weather := deriveWeatherHint(lat, lon, description)
	return Enriched{
		WeatherHint:   weather,
		SeverityScore: scoreSeverity(category, crop, weather, description),
		Tags:          deriveTags(category, crop),
	}
}

// deriveWeatherHint inspects the description for weather keywords. First match wins:
//   - rainy: lat in [6,14] and "rain"
//   - humid: "humid" or "mold"
//   - dry: "dry" or "drought"
//   - sunny: "sunny" or "hot"
//
// Longitude is accepted but not used by the current rules.
func deriveWeatherHint(lat, _ float64, description string) WeatherHint {
	d := strings.ToLower(description)
	switch {
	case lat >= 6 && lat <= 14 && strings.Contains(d, "rain"):
		return WeatherRainy
	case containsAny(d, "humid", "mold"):
		return WeatherHumid
	case containsAny(d, "dry", "drought"):
		return WeatherDry
	case containsAny(d, "sunny", "hot"):
		return WeatherSunny
	default:
		return WeatherUnknown
	}
}

// scoreSeverity applies the additive modifiers to the category base and clamps to [0,100].
func scoreSeverity(category Category, crop Crop, weather WeatherHint, description string) int {
	score, ok := categoryBaseScore[category]
	if !ok {
		score = categoryBaseScore[CategoryOther]
	}
	if priorityCrops[crop] {
		score += priorityCropBonus
	}
	if weatherMatchesCategory(weather, category) {
		score += weatherMatchBonus
	}

	d := strings.ToLower(description)
	if containsAny(d, "fast spread", "rapid") {
		score += rapidSpreadBonus
	}
	if containsAny(d, "severe", "critical") {
		score += severeKeywordBonus
	}
	if containsAny(d, "young", "seedling") {
		score += youngCropBonus
	}
	return clampScore(score)
}

func weatherMatchesCategory(w WeatherHint, c Category) bool {
	switch {
	case w == WeatherHumid && c == CategoryDisease:
		return true
	case w == WeatherRainy && c == CategoryFlood:
		return true
	case w == WeatherDry && c == CategoryDrought:
		return true
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > maxSeverity {
		return maxSeverity
	}
	return score
}

// deriveTags returns the category tag (if any) followed by the "{crop}_crop" tag.
// The "other" category carries only the crop tag.
func deriveTags(category Category, crop Crop) []string {
	tags := make([]string, 0, 2)
	switch category {
	case CategoryPest:
		if crop == CropMaize {
			tags = append(tags, "fall_armyworm")
		} else {
			tags = append(tags, "pest_alert")
		}
	case CategoryDisease:
		if crop == CropCassava {
			tags = append(tags, "cassava_mosaic")
		} else {
			tags = append(tags, "disease_alert")
		}
	case CategoryFlood:
		tags = append(tags, "flood_risk")
	case CategoryDrought:
		tags = append(tags, "drought_alert")
	case CategoryInputNeed:
		tags = append(tags, "input_request")
	}
	return append(tags, string(crop)+"_crop")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
