// internal/models/profile.go
package models

type BudgetRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// StudentProfile carries everything the matchers need about one student.
type StudentProfile struct {
	UserID     string      `json:"userId,omitempty"`
	Stage      string      `json:"stage,omitempty"`
	Stream     string      `json:"stream,omitempty"`
	Percentage float64     `json:"percentage,omitempty"`
	Location   Location    `json:"location,omitempty"`
	Budget     BudgetRange `json:"budget,omitempty"`
	Interests  []string    `json:"interests,omitempty"`
	Strengths  []string    `json:"strengths,omitempty"`
	Scores     ScoreVector `json:"assessmentScores,omitempty"`
}

// Education stages recognized throughout the platform.
const (
	StageAfter10th = "after10th"
	StageAfter12th = "after12th"
	StageOngoing   = "ongoing"
)
