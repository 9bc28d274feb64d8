package domain

import (
	"fmt"
	"strings"
)

// Crop is the affected crop.
type Crop string

const (
	CropMaize   Crop = "maize"
	CropRice    Crop = "rice"
	CropCassava Crop = "cassava"
	CropTomato  Crop = "tomato"
	CropSorghum Crop = "sorghum"
	CropOther   Crop = "other"
)

// Crops lists every crop in declaration order.
var Crops = []Crop{CropMaize, CropRice, CropCassava, CropTomato, CropSorghum, CropOther}

// Category is the kind of incident.
type Category string

const (
	CategoryPest      Category = "pest"
	CategoryDisease   Category = "disease"
	CategoryFlood     Category = "flood"
	CategoryDrought   Category = "drought"
	CategoryInputNeed Category = "input_need"
	CategoryOther     Category = "other"
)

// Categories lists every category in declaration order.
var Categories = []Category{CategoryPest, CategoryDisease, CategoryFlood, CategoryDrought, CategoryInputNeed, CategoryOther}

// WeatherHint is the coarse weather label derived from a description.
type WeatherHint string

const (
	WeatherSunny   WeatherHint = "sunny"
	WeatherRainy   WeatherHint = "rainy"
	WeatherHumid   WeatherHint = "humid"
	WeatherDry     WeatherHint = "dry"
	WeatherUnknown WeatherHint = "unknown"
)

// Status is the incident lifecycle state.
type Status string

const (
	StatusReceived    Status = "received"
	StatusRecommended Status = "recommended"
	StatusDispatched  Status = "dispatched"
	StatusClosed      Status = "closed"
)

// statusRank orders the lifecycle; transitions may only move to an equal or higher rank.
var statusRank = map[Status]int{
	StatusReceived:    0,
	StatusRecommended: 1,
	StatusDispatched:  2,
	StatusClosed:      3,
}

// ResourceType is the kind of aid a resource request asks for.
type ResourceType string

const (
	ResourceAgrochemical ResourceType = "agrochemical"
	ResourceSeed         ResourceType = "seed"
	ResourceTraining     ResourceType = "training"
	ResourceIrrigation   ResourceType = "irrigation"
	ResourceNone         ResourceType = "none"
)

// ParseCrop converts a boundary string to a Crop. Matching is exact after trimming.
func ParseCrop(s string) (Crop, error) {
	c := Crop(strings.TrimSpace(s))
	for _, known := range Crops {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: crop %q", ErrInvalidEnum, s)
}

// ParseCategory converts a boundary string to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: category %q", ErrInvalidEnum, s)
}

// ParseWeatherHint converts a boundary string to a WeatherHint.
func ParseWeatherHint(s string) (WeatherHint, error) {
	switch w := WeatherHint(strings.TrimSpace(s)); w {
	case WeatherSunny, WeatherRainy, WeatherHumid, WeatherDry, WeatherUnknown:
		return w, nil
	}
	return "", fmt.Errorf("%w: weather hint %q", ErrInvalidEnum, s)
}

// ParseStatus converts a boundary string to a Status. Unknown values fail with ErrInvalidStatus.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if _, ok := statusRank[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// ParseResourceType converts a boundary string to a ResourceType.
func ParseResourceType(s string) (ResourceType, error) {
	switch t := ResourceType(strings.TrimSpace(s)); t {
	case ResourceAgrochemical, ResourceSeed, ResourceTraining, ResourceIrrigation, ResourceNone:
		return t, nil
	}
	return "", fmt.Errorf("%w: resource type %q", ErrInvalidEnum, s)
}

// ValidateTransition checks that moving from cur to next never goes backward.
func ValidateTransition(cur, next Status) error {
	nextRank, ok := statusRank[next]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	curRank, ok := statusRank[cur]
	if !ok {
		// An unrecognized stored status can only be repaired forward.
		return nil
	}
	if nextRank < curRank {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, next)
	}
	return nil
}
