// internal/workers/guidance/recommend-streams/config.go
package recommendstreams

import (
	"time"

	"guidance-workers/internal/models"
)

// SubjectWeights is the contribution of one class-10 subject to each stream.
type SubjectWeights struct {
	Science  float64
	Commerce float64
	Arts     float64
}

// StreamInfo is the static catalog entry shown with a recommended stream.
type StreamInfo struct {
	Subjects      []string
	CareerOptions []string
	Keywords      []string
	// AptitudeCategories feed the assessment-based adjustment.
	AptitudeCategories []models.Category
}

type Config struct {
	Timeout time.Duration

	MinStreamScore int

	SubjectWeights map[string]SubjectWeights
	DefaultWeights SubjectWeights

	Streams map[string]StreamInfo

	ParentalBonus    float64
	ParentalBonusCap float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,

		MinStreamScore: 60,

		SubjectWeights: map[string]SubjectWeights{
			"mathematics":    {Science: 30, Commerce: 25, Arts: 10},
			"science":        {Science: 30, Commerce: 5, Arts: 5},
			"english":        {Science: 10, Commerce: 20, Arts: 25},
			"social_science": {Science: 5, Commerce: 15, Arts: 30},
			"hindi":          {Science: 5, Commerce: 10, Arts: 20},
		},
		DefaultWeights: SubjectWeights{Science: 10, Commerce: 10, Arts: 10},

		Streams: map[string]StreamInfo{
			models.StreamScience: {
				Subjects:           []string{"Physics", "Chemistry", "Mathematics", "Biology"},
				CareerOptions:      []string{"Engineering", "Medicine", "Research", "Information Technology"},
				Keywords:           []string{"engineering", "medical", "doctor", "science", "technology", "research"},
				AptitudeCategories: []models.Category{models.CategoryAnalytical, models.CategoryTechnical},
			},
			models.StreamCommerce: {
				Subjects:           []string{"Accountancy", "Business Studies", "Economics", "Mathematics"},
				CareerOptions:      []string{"Chartered Accountancy", "Business Management", "Banking", "Economics"},
				Keywords:           []string{"business", "finance", "commerce", "accounting", "banking", "management"},
				AptitudeCategories: []models.Category{models.CategoryLeadership, models.CategoryCommunication},
			},
			models.StreamArts: {
				Subjects:           []string{"History", "Political Science", "Psychology", "Literature"},
				CareerOptions:      []string{"Civil Services", "Law", "Journalism", "Design"},
				Keywords:           []string{"arts", "design", "law", "writing", "journalism", "humanities"},
				AptitudeCategories: []models.Category{models.CategoryCreative, models.CategoryCommunication},
			},
		},

		ParentalBonus:    5,
		ParentalBonusCap: 10,
	}
}
