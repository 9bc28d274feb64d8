package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 8, 30, 0, 123_000_000, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	t.Run("standard text below threshold", func(t *testing.T) {
		rec := Recommend(CategoryPest, CropMaize, 69)
		assert.Equal(t, "Scout daily, apply recommended Bt pesticide per label, remove heavily infested plants", rec.Step)
		assert.Equal(t, SourceExtensionManual, rec.Source)
		assert.Equal(t, "2025-03-01T08:30:00.123Z", rec.CreatedAt)
	})

	t.Run("urgent at threshold", func(t *testing.T) {
		rec := Recommend(CategoryFlood, CropRice, 70)
		assert.Equal(t, "URGENT: Open drainage channels, delay new planting for 72 hours, avoid nitrogen top-dressing (High severity incident - immediate action required)", rec.Step)
	})

	t.Run("cassava input need uses cuttings", func(t *testing.T) {
		rec := Recommend(CategoryInputNeed, CropCassava, 40)
		assert.Equal(t, "Register for input support, recommended cutting variety list attached", rec.Step)
	})

	t.Run("missing pair falls back", func(t *testing.T) {
		rec := Recommend(CategoryPest, CropSorghum, 90)
		assert.Equal(t, "Contact extension officer for pest management in sorghum", rec.Step)
	})

	t.Run("other category falls back", func(t *testing.T) {
		assert.Equal(t, "Contact extension officer for other management in maize", RemedyText(CategoryOther, CropMaize, 10))
	})
}

func TestAgentRecommendation(t *testing.T) {
	rec := AgentRecommendation("Call the ward extension officer")
	assert.Equal(t, "Call the ward extension officer", rec.Step)
	assert.Equal(t, SourceAgent, rec.Source)
	assert.NotEmpty(t, rec.CreatedAt)
}

func TestAgentRecommendation_StripsQuotes(t *testing.T) {
	rec := AgentRecommendation(`Spray "Karate" at dusk`)
	assert.Equal(t, "Spray Karate at dusk", rec.Step)
}

func TestHasRemedy(t *testing.T) {
	text, ok := HasRemedy(CategoryFlood, CropMaize)
	assert.True(t, ok)
	assert.Contains(t, text, "drainage")

	_, ok = HasRemedy(CategoryOther, CropSorghum)
	assert.False(t, ok)
}
