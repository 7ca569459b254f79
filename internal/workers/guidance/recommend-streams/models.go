// internal/workers/guidance/recommend-streams/models.go
package recommendstreams

import "guidance-workers/internal/models"

type SubjectMark struct {
	Name  string  `json:"name"`
	Marks float64 `json:"marks"`
}

type Input struct {
	UserID              string             `json:"userId,omitempty"`
	Percentage          float64            `json:"percentage"`
	Subjects            []SubjectMark      `json:"subjects"`
	Scores              models.ScoreVector `json:"assessmentScores,omitempty"`
	ParentalPreferences []string           `json:"parentalPreferences,omitempty"`
}

type StreamRecommendation struct {
	Stream        string   `json:"stream"`
	Score         int      `json:"score"`
	Subjects      []string `json:"subjects"`
	CareerOptions []string `json:"careerOptions"`
	Reasoning     []string `json:"reasoning"`
}

type Output struct {
	Recommendations []StreamRecommendation `json:"recommendations"`
	AptitudeProfile string                 `json:"aptitudeProfile"`
}
