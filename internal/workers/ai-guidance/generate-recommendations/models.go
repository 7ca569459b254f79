// internal/workers/ai-guidance/generate-recommendations/models.go
package generaterecommendations

import "guidance-workers/internal/models"

type Input struct {
	UserID         string                 `json:"userId"`
	Stage          string                 `json:"stage,omitempty"`
	Profile        *models.StudentProfile `json:"profile,omitempty"`
	CatalogMatches []models.CareerMatch   `json:"catalogMatches,omitempty"`
	FocusAreas     []string               `json:"focusAreas,omitempty"`
}

type Output struct {
	Candidates []models.ExternalCandidate `json:"externalCandidates"`
	Model      string                     `json:"model,omitempty"`
	Confidence float64                    `json:"confidence"`
}
