// internal/workers/guidance/match-careers/config.go
package matchcareers

import "time"

type Config struct {
	CacheTTL      time.Duration
	Timeout       time.Duration
	MinMatchScore int
	MaxMatches    int

	// StreamFields maps an academic stream to the education fields it
	// naturally feeds into.
	StreamFields map[string][]string
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL:      10 * time.Minute,
		Timeout:       30 * time.Second,
		MinMatchScore: 60,
		MaxMatches:    10,
		StreamFields: map[string][]string{
			"Science":  {"Engineering", "Medical", "Research"},
			"Commerce": {"Business", "Finance", "Economics"},
			"Arts":     {"Humanities", "Design", "Social Sciences"},
		},
	}
}
