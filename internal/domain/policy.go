package domain

import "fmt"

// ShouldRequestResource reports whether a resource request is raised.
// The category is accepted but does not change the threshold.
func ShouldRequestResource(severity int, _ Category) bool {
	return severity >= HighSeverityThreshold
}

// ResourceTypeFor classifies the aid an incident needs. Crop is accepted but
// not currently discriminating.
func ResourceTypeFor(category Category, _ Crop) ResourceType {
	switch category {
	case CategoryPest, CategoryDisease:
		return ResourceAgrochemical
	case CategoryFlood, CategoryDrought:
		return ResourceIrrigation
	case CategoryInputNeed:
		return ResourceSeed
	default:
		return ResourceTraining
	}
}

// ResourceNotes synthesizes the request note for a triggered request.
func ResourceNotes(category Category, t ResourceType) string {
	return fmt.Sprintf("High severity %s incident requiring %s", category, t)
}

// ApplyPolicy raises a resource request when the incident's severity warrants it.
// It reports whether a request was raised.
func (i *Incident) ApplyPolicy() bool {
	if !ShouldRequestResource(i.Enriched.SeverityScore, i.Category) {
		return false
	}
	i.RaiseResourceRequest(ResourceTypeFor(i.Category, i.Crop))
	return true
}
