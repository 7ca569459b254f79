// internal/workers/data-access/search-colleges/config.go
package searchcolleges

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
