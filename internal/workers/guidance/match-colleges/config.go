// internal/workers/guidance/match-colleges/config.go
package matchcolleges

import "time"

// Config holds the point budgets of the college match blend. The budgets sum
// to 100; each sub-score contributes at most its budget.
type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration

	MaxColleges int

	RatingPoints    float64
	PlacementPoints float64

	TypePoints map[string]float64
	// TypeDefaultPoints applies to college types without an explicit entry.
	TypeDefaultPoints float64

	AffordabilityPoints float64
	// OverrunTolerance is the budget-max multiplier still worth half credit.
	OverrunTolerance   float64
	OverrunHalfPoints  float64
	OverrunFloorPoints float64
	NoBudgetPoints     float64

	MinCourseScore int
	MaxCourses     int
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 10 * time.Minute,
		Timeout:  30 * time.Second,

		MaxColleges: 20,

		RatingPoints:    40,
		PlacementPoints: 20,

		TypePoints: map[string]float64{
			"Government": 20,
			"Central":    20,
			"Deemed":     15,
		},
		TypeDefaultPoints: 10,

		AffordabilityPoints: 20,
		OverrunTolerance:    1.2,
		OverrunHalfPoints:   10,
		OverrunFloorPoints:  4,
		NoBudgetPoints:      15,

		MinCourseScore: 60,
		MaxCourses:     10,
	}
}
