// internal/workers/assessment/score-assessment/config.go
package scoreassessment

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}
}
