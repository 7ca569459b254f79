// internal/workers/assessment/score-assessment/models.go
package scoreassessment

import "guidance-workers/internal/models"

type Input struct {
	AssessmentID   string                     `json:"assessmentId,omitempty"`
	AssessmentType string                     `json:"assessmentType,omitempty"`
	Questions      []models.Question          `json:"questions,omitempty"`
	Responses      map[string]models.Response `json:"responses"`
}

type Output struct {
	Scores          models.ScoreVector          `json:"scores"`
	AppliedWeights  map[models.Category]float64 `json:"appliedWeights"`
	QuestionsScored int                         `json:"questionsScored"`
	SkippedAnswers  []string                    `json:"skippedAnswers,omitempty"`
}
