// internal/workers/ai-guidance/generate-recommendations/config.go
package generaterecommendations

import "time"

type Config struct {
	GenAIBaseURL  string
	Timeout       time.Duration
	MaxRetries    int
	MaxTokens     int
	Temperature   float64
	MaxCandidates int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       45 * time.Second,
		MaxRetries:    2,
		MaxTokens:     2048,
		Temperature:   0.4,
		MaxCandidates: 5,
	}
}
