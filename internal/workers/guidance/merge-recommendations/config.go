// internal/workers/guidance/merge-recommendations/config.go
package mergerecommendations

import "time"

type Config struct {
	Timeout time.Duration

	TopCatalogMatches int
	MaxMerged         int
	CollegeLimit      int

	// DefaultExternalMatch fills in a missing matchPercentage on external
	// candidates.
	DefaultExternalMatch int

	// HighSalaryEntry is the entry-band maximum above which the salary pro
	// fires.
	HighSalaryEntry int

	SkillImportanceCutoff int
	MaxActionSkills       int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,

		TopCatalogMatches: 3,
		MaxMerged:         5,
		CollegeLimit:      5,

		DefaultExternalMatch: 75,

		HighSalaryEntry: 1000000,

		SkillImportanceCutoff: 4,
		MaxActionSkills:       3,
	}
}
