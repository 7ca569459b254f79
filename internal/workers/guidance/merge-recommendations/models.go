// internal/workers/guidance/merge-recommendations/models.go
package mergerecommendations

import "guidance-workers/internal/models"

type Input struct {
	UserID             string                     `json:"userId,omitempty"`
	Stage              string                     `json:"stage,omitempty"`
	Profile            *models.StudentProfile     `json:"profile,omitempty"`
	CatalogMatches     []models.CareerMatch       `json:"catalogMatches"`
	ExternalCandidates []models.ExternalCandidate `json:"externalCandidates,omitempty"`
	Persist            bool                       `json:"persist,omitempty"`
}

type Output struct {
	Recommendations  []models.Recommendation `json:"recommendations"`
	RecommendationID string                  `json:"recommendationId,omitempty"`
}
