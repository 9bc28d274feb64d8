package domain

import "fmt"

// Recommendation provenance tags.
const (
	SourceExtensionManual = "extension_manual_stub"
	SourceAgent           = "agent_recommendation"
)

const (
	urgentPrefix = "URGENT: "
	urgentSuffix = " (High severity incident - immediate action required)"
)

type remedyKey struct {
	category Category
	crop     Crop
}

// remedies holds {standard, alternate} texts per (category, crop). Only the
// standard text is selected today.
var remedies = map[remedyKey][2]string{
	{CategoryPest, CropMaize}: {
		"Scout daily, apply recommended Bt pesticide per label, remove heavily infested plants",
		"Use pheromone traps, apply neem-based products, rotate crops",
	},
	{CategoryPest, CropRice}: {
		"Apply recommended insecticide, maintain field hygiene, use resistant varieties",
		"Monitor regularly, apply biological controls, avoid over-fertilization",
	},
	{CategoryPest, CropCassava}: {
		"Apply systemic insecticide, remove affected parts, use clean planting material",
		"Practice crop rotation, maintain field borders, use resistant varieties",
	},
	{CategoryPest, CropTomato}: {
		"Apply appropriate pesticide, use yellow sticky traps, maintain spacing",
		"Remove affected plants, apply neem oil, use floating row covers",
	},
	{CategoryDisease, CropMaize}: {
		"Remove infected plants, apply fungicide, use resistant varieties",
		"Practice crop rotation, maintain field hygiene, avoid overhead irrigation",
	},
	{CategoryDisease, CropRice}: {
		"Apply fungicide, remove infected plants, use certified seeds",
		"Maintain proper spacing, avoid waterlogging, use resistant varieties",
	},
	{CategoryDisease, CropCassava}: {
		"Use disease-free cuttings, remove infected leaves, consider tolerant varieties",
		"Practice crop rotation, maintain field hygiene, use resistant varieties",
	},
	{CategoryDisease, CropTomato}: {
		"Apply fungicide, remove affected leaves, improve air circulation",
		"Use resistant varieties, avoid overhead irrigation, maintain spacing",
	},
	{CategoryFlood, CropMaize}: {
		"Open drainage channels, delay planting for 48 hours, avoid nitrogen top-dressing",
		"Improve field drainage, consider raised beds, monitor for diseases",
	},
	{CategoryFlood, CropRice}: {
		"Open drainage channels, delay new planting for 72 hours, avoid nitrogen top-dressing",
		"Maintain proper water level, use flood-tolerant varieties, monitor for pests",
	},
	{CategoryFlood, CropCassava}: {
		"Improve drainage, delay harvesting, monitor for root rot",
		"Consider raised beds, use tolerant varieties, avoid waterlogging",
	},
	{CategoryFlood, CropTomato}: {
		"Improve drainage immediately, delay planting, monitor for diseases",
		"Use raised beds, consider container gardening, avoid waterlogging",
	},
	{CategoryDrought, CropMaize}: {
		"Apply mulch, use drought-tolerant varieties, consider irrigation",
		"Practice conservation tillage, use organic matter, monitor soil moisture",
	},
	{CategoryDrought, CropRice}: {
		"Maintain water level, use drought-tolerant varieties, consider alternate wetting",
		"Use mulch, practice conservation tillage, monitor water availability",
	},
	{CategoryDrought, CropCassava}: {
		"Apply mulch, use drought-tolerant varieties, consider irrigation",
		"Practice conservation tillage, use organic matter, monitor soil moisture",
	},
	{CategoryDrought, CropTomato}: {
		"Apply mulch, use drought-tolerant varieties, consider drip irrigation",
		"Use shade cloth, practice conservation tillage, monitor soil moisture",
	},
	{CategoryInputNeed, CropMaize}: {
		"Register for input support, recommended seed variety list attached",
		"Contact extension officer, consider improved varieties, plan for next season",
	},
	{CategoryInputNeed, CropRice}: {
		"Register for input support, recommended seed variety list attached",
		"Contact extension officer, consider improved varieties, plan for next season",
	},
	{CategoryInputNeed, CropCassava}: {
		"Register for input support, recommended cutting variety list attached",
		"Contact extension officer, consider improved varieties, plan for next season",
	},
	{CategoryInputNeed, CropTomato}: {
		"Register for input support, recommended seed variety list attached",
		"Contact extension officer, consider improved varieties, plan for next season",
	},
}

// Recommend selects the remedy text for (category, crop), marking it urgent
// when severity is at or above HighSeverityThreshold. Pairs without a table
// entry fall back to a generic extension-officer referral.
func Recommend(category Category, crop Crop, severity int) Recommendation {
	return Recommendation{
		Step:      RemedyText(category, crop, severity),
		Source:    SourceExtensionManual,
		CreatedAt: Now(),
	}
}

// RemedyText is the text portion of Recommend.
func RemedyText(category Category, crop Crop, severity int) string {
	entry, ok := remedies[remedyKey{category, crop}]
	if !ok {
		return fmt.Sprintf("Contact extension officer for %s management in %s", category, crop)
	}
	text := entry[0]
	if severity >= HighSeverityThreshold {
		text = urgentPrefix + text + urgentSuffix
	}
	return text
}

// AgentRecommendation wraps free text supplied by an operator or agent.
func AgentRecommendation(step string) Recommendation {
	return Recommendation{Step: CleanText(step), Source: SourceAgent, CreatedAt: Now()}
}

// HasRemedy reports whether the remedies table covers (category, crop) and
// returns the standard text when it does.
func HasRemedy(category Category, crop Crop) (string, bool) {
	entry, ok := remedies[remedyKey{category, crop}]
	return entry[0], ok
}
