// internal/workers/guidance/match-colleges/handler_test.go
package matchcolleges

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = 10 * time.Second
	return cfg
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	testLog := logger.NewTestLogger(t)
	return NewHandler(config, db, redisClient, testLog)
}

func scienceCollege(name, collegeType string, rating, placement float64, annualFee int) models.College {
	return models.College{
		ID:   "col-" + name,
		Name: name,
		Type: collegeType,
		Courses: []models.Course{
			{
				Name: "B.Tech Computer Science",
				Eligibility: models.CourseEligibility{
					Streams:           []string{models.StreamScience},
					MinimumPercentage: 75,
				},
				Fees: models.Fees{Annual: annualFee},
			},
		},
		Ratings:        models.CollegeRatings{Overall: rating},
		PlacementStats: models.PlacementStats{PlacementPercentage: placement},
	}
}

func scienceProfile(percentage float64, budgetMin, budgetMax int) *models.StudentProfile {
	return &models.StudentProfile{
		Stream:     models.StreamScience,
		Percentage: percentage,
		Budget:     models.BudgetRange{Min: budgetMin, Max: budgetMax},
		Scores:     models.NewScoreVector(),
	}
}

// ==========================
// College Match Score Tests
// ==========================

func TestHandler_CollegeMatchScore(t *testing.T) {
	tests := []struct {
		name     string
		college  models.College
		profile  *models.StudentProfile
		expected int
	}{
		{
			name:     "top government college within budget",
			college:  scienceCollege("IIT", "Government", 5, 100, 80000),
			profile:  scienceProfile(90, 50000, 100000),
			expected: 100, // 40 + 20 + 20 + 20
		},
		{
			name:     "deemed college gets mid type points",
			college:  scienceCollege("Deemed U", "Deemed", 5, 100, 80000),
			profile:  scienceProfile(90, 50000, 100000),
			expected: 95, // 40 + 15 + 20 + 20
		},
		{
			name:     "private college gets default type points",
			college:  scienceCollege("Private U", "Private", 5, 100, 80000),
			profile:  scienceProfile(90, 50000, 100000),
			expected: 90, // 40 + 10 + 20 + 20
		},
		{
			name:     "moderate fee overrun halves affordability",
			college:  scienceCollege("Pricey", "Government", 5, 100, 110000),
			profile:  scienceProfile(90, 50000, 100000),
			expected: 90, // 40 + 20 + 20 + 10 (110000 <= 120000)
		},
		{
			name:     "large fee overrun keeps a floor",
			college:  scienceCollege("Luxury", "Government", 5, 100, 150000),
			profile:  scienceProfile(90, 50000, 100000),
			expected: 84, // 40 + 20 + 20 + 4 (150000 > 120000)
		},
		{
			name:     "no budget earns neutral affordability",
			college:  scienceCollege("Anywhere", "Government", 5, 100, 80000),
			profile:  &models.StudentProfile{Stream: models.StreamScience, Percentage: 90},
			expected: 95, // 40 + 20 + 20 + 15
		},
		{
			name: "stream mismatch earns no affordability points",
			college: models.College{
				Name: "Arts College",
				Type: "Government",
				Courses: []models.Course{{
					Name:        "BA History",
					Eligibility: models.CourseEligibility{Streams: []string{models.StreamArts}},
				}},
				Ratings:        models.CollegeRatings{Overall: 5},
				PlacementStats: models.PlacementStats{PlacementPercentage: 100},
			},
			profile:  scienceProfile(90, 50000, 100000),
			expected: 80, // 40 + 20 + 20 + 0
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, nil, nil, nil)
			got := handler.collegeMatchScore(tt.college, tt.profile)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// ==========================
// Eligibility Gate Tests
// ==========================

func TestHandler_CheckEligibility(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	tests := []struct {
		name     string
		college  models.College
		profile  *models.StudentProfile
		expected models.EligibilityStatus
	}{
		{
			name:     "above cutoff is eligible",
			college:  scienceCollege("IIT", "Government", 5, 100, 80000),
			profile:  scienceProfile(80, 0, 0),
			expected: models.EligibilityEligible,
		},
		{
			name:     "below cutoff",
			college:  scienceCollege("IIT", "Government", 5, 100, 80000),
			profile:  scienceProfile(70, 0, 0),
			expected: models.EligibilityBelowCutoff,
		},
		{
			name:     "stream mismatch",
			college:  scienceCollege("IIT", "Government", 5, 100, 80000),
			profile:  &models.StudentProfile{Stream: models.StreamArts, Percentage: 95},
			expected: models.EligibilityStreamMismatch,
		},
		{
			name: "course without cutoff is always eligible",
			college: models.College{
				Courses: []models.Course{{
					Eligibility: models.CourseEligibility{Streams: []string{models.StreamScience}},
				}},
			},
			profile:  scienceProfile(10, 0, 0),
			expected: models.EligibilityEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handler.checkEligibility(tt.college, tt.profile)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHandler_Execute_EligibilityDoesNotZeroScore(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	// below cutoff but otherwise a strong college: still ranked, still scored
	output, err := handler.Execute(context.Background(), &Input{
		Profile:  scienceProfile(60, 50000, 100000),
		Colleges: []models.College{scienceCollege("Stretch", "Government", 5, 100, 80000)},
	})
	require.NoError(t, err)

	require.Len(t, output.Colleges, 1)
	assert.Equal(t, models.EligibilityBelowCutoff, output.Colleges[0].EligibilityStatus)
	assert.Equal(t, 100, output.Colleges[0].MatchScore)
}

func TestHandler_Execute_SortsByMatchScore(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{
		Profile: scienceProfile(90, 50000, 100000),
		Colleges: []models.College{
			scienceCollege("Low", "Private", 3, 50, 150000),
			scienceCollege("High", "Government", 5, 100, 80000),
		},
	})
	require.NoError(t, err)

	require.Len(t, output.Colleges, 2)
	assert.Equal(t, "High", output.Colleges[0].College.Name)
	assert.Equal(t, "Low", output.Colleges[1].College.Name)
	assert.Equal(t, 2, output.TotalEvaluated)
}

// ==========================
// Course Match Tests
// ==========================

func TestHandler_CourseMatchScore(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	course := models.Course{
		Name: "B.Tech Computer Science",
		Eligibility: models.CourseEligibility{
			RequiredSubjects: []string{"Physics", "Mathematics"},
			MinimumMarks:     75,
		},
		Skills: models.CourseSkills{
			Technical: []string{"Programming"},
			Soft:      []string{"Communication"},
		},
	}

	subjects := []SubjectMark{
		{Name: "Physics", Marks: 85},
		{Name: "Mathematics", Marks: 90},
		{Name: "Chemistry", Marks: 70},
	}

	t.Run("full marks on all factors", func(t *testing.T) {
		profile := scienceProfile(85, 0, 0)
		profile.Scores.Scores[models.CategoryTechnical] = 80
		profile.Scores.Scores[models.CategoryCommunication] = 80

		// 40 subjects + 30 academic + 50*0.3 skills
		got := handler.courseMatchScore(course, profile, subjects)
		assert.Equal(t, 85, got)
	})

	t.Run("below minimum marks earns proportional credit", func(t *testing.T) {
		profile := scienceProfile(60, 0, 0)

		// 40 + (60/75)*30 = 64
		got := handler.courseMatchScore(course, profile, subjects)
		assert.Equal(t, 64, got)
	})

	t.Run("missing required subject drops the subjects budget", func(t *testing.T) {
		profile := scienceProfile(85, 0, 0)

		got := handler.courseMatchScore(course, profile, []SubjectMark{{Name: "Biology", Marks: 90}})
		assert.Equal(t, 30, got)
	})
}

func TestHandler_Execute_CourseThreshold(t *testing.T) {
	handler := createTestHandler(t, nil, nil, nil)

	strong := models.Course{
		Name: "Strong",
		Eligibility: models.CourseEligibility{
			RequiredSubjects: []string{"Physics"},
			MinimumMarks:     70,
		},
	}
	weak := models.Course{
		Name:        "Weak",
		Eligibility: models.CourseEligibility{MinimumMarks: 95},
	}

	output, err := handler.Execute(context.Background(), &Input{
		Profile:  scienceProfile(85, 0, 0),
		Colleges: []models.College{},
		Courses:  []models.Course{strong, weak},
		Subjects: []SubjectMark{{Name: "Physics", Marks: 88}},
	})
	require.NoError(t, err)

	require.Len(t, output.Courses, 1)
	assert.Equal(t, "Strong", output.Courses[0].Course.Name)
	assert.Equal(t, 70, output.Courses[0].MatchScore)
}
