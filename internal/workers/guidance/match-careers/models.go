// internal/workers/guidance/match-careers/models.go
package matchcareers

import "guidance-workers/internal/models"

// Matcher selects the aptitude similarity formula. The per-category
// independent similarity is the default; Euclidean distance is kept as an
// alternate for callers that request it.
const (
	MatcherIndependent = "independent"
	MatcherEuclidean   = "euclidean"
)

type Input struct {
	UserID  string                 `json:"userId,omitempty"`
	Profile *models.StudentProfile `json:"profile,omitempty"`
	Careers []models.Career        `json:"careers,omitempty"`
	Matcher string                 `json:"matcher,omitempty"`
}

type Output struct {
	Matches        []models.CareerMatch `json:"matches"`
	TotalEvaluated int                  `json:"totalEvaluated"`
}
