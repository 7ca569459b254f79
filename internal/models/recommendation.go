// internal/models/recommendation.go
package models

// EligibilityStatus tags a college/course match independently of its numeric
// score; a below-cutoff entity can still surface as a stretch option.
type EligibilityStatus string

const (
	EligibilityEligible       EligibilityStatus = "Eligible"
	EligibilityBelowCutoff    EligibilityStatus = "Below Cutoff"
	EligibilityStreamMismatch EligibilityStatus = "Not Eligible - Stream Mismatch"
)

// CollegeSummary is the compact enrichment record attached to a merged
// recommendation: colleges in the student's city offering the career's
// education path.
type CollegeSummary struct {
	Name                string  `json:"name"`
	Type                string  `json:"type"`
	Rating              float64 `json:"rating"`
	PlacementPercentage float64 `json:"placementPercentage,omitempty"`
	AveragePackage      int     `json:"averagePackage,omitempty"`
}

// CareerMatch pairs a catalog career with its computed match percentage.
type CareerMatch struct {
	Career          Career `json:"career"`
	MatchPercentage int    `json:"matchPercentage"`
}

// ExternalCandidate is a loosely structured recommendation supplied by the
// external language-model collaborator. Every field besides Title may be
// absent.
type ExternalCandidate struct {
	Title           string          `json:"title"`
	Category        string          `json:"category,omitempty"`
	MatchPercentage int             `json:"matchPercentage,omitempty"`
	Reasoning       string          `json:"reasoning,omitempty"`
	EducationPath   []EducationPath `json:"educationPath,omitempty"`
	Skills          []string        `json:"skills,omitempty"`
	SalaryRange     SalaryRange     `json:"salaryRange,omitempty"`
	Demand          string          `json:"demand,omitempty"`
	FutureScope     string          `json:"futureScope,omitempty"`
	Roadmap         []string        `json:"roadmap,omitempty"`
}

// Recommendation is one entry of the final merged, ranked list.
type Recommendation struct {
	ItemID          string           `json:"itemId,omitempty"`
	ItemType        string           `json:"itemType"`
	Title           string           `json:"title"`
	Category        string           `json:"category,omitempty"`
	Description     string           `json:"description,omitempty"`
	MatchPercentage int              `json:"matchPercentage"`
	Reasoning       []string         `json:"reasoning,omitempty"`
	EducationPath   []EducationPath  `json:"educationPath,omitempty"`
	RequiredSkills  []string         `json:"requiredSkills,omitempty"`
	SalaryRange     SalaryRange      `json:"salaryRange,omitempty"`
	Growth          CareerGrowth     `json:"growth,omitempty"`
	CollegesInCity  []CollegeSummary `json:"collegesInCity,omitempty"`
	Pros            []string         `json:"pros,omitempty"`
	Cons            []string         `json:"cons,omitempty"`
	ActionSteps     []string         `json:"actionSteps,omitempty"`
}
