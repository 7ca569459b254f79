// internal/workers/assessment/analyze-result/models.go
package analyzeresult

import "guidance-workers/internal/models"

type Input struct {
	UserID string             `json:"userId,omitempty"`
	Scores models.ScoreVector `json:"scores"`
}

type Strength struct {
	Category    string `json:"category"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

type Weakness struct {
	Category    string   `json:"category"`
	Score       int      `json:"score"`
	Description string   `json:"description"`
	Improvement []string `json:"improvement"`
}

type Output struct {
	Strengths       []Strength `json:"strengths"`
	Weaknesses      []Weakness `json:"weaknesses"`
	Recommendations []string   `json:"recommendations"`
	LearningStyle   string     `json:"learningStyle"`
	PersonalityType string     `json:"personalityType"`
}
