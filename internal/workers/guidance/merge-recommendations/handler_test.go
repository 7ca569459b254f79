// internal/workers/guidance/merge-recommendations/handler_test.go
package mergerecommendations

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
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

func createTestHandler(t *testing.T, db *sql.DB, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	return NewHandler(config, db, logger.NewTestLogger(t))
}

func catalogMatch(title string, percentage int) models.CareerMatch {
	return models.CareerMatch{
		Career:          models.Career{ID: "c-" + title, Title: title, Category: "Technology"},
		MatchPercentage: percentage,
	}
}

func external(title string, percentage int) models.ExternalCandidate {
	return models.ExternalCandidate{Title: title, MatchPercentage: percentage}
}

// ==========================
// Merge Tests
// ==========================

func TestHandler_Execute_MergeOrderAndCap(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{
		CatalogMatches: []models.CareerMatch{
			catalogMatch("Software Engineer", 92),
			catalogMatch("Data Scientist", 85),
			catalogMatch("DevOps Engineer", 78),
			catalogMatch("Fourth Career", 70), // beyond top-3, dropped
		},
		ExternalCandidates: []models.ExternalCandidate{
			external("Product Manager", 80),
			external("UX Designer", 72),
			external("Cloud Architect", 70), // cap of 5 reached before this
		},
	})
	require.NoError(t, err)

	require.Len(t, output.Recommendations, 5)
	titles := make([]string, len(output.Recommendations))
	for i, rec := range output.Recommendations {
		titles[i] = rec.Title
	}
	assert.Equal(t, []string{
		"Software Engineer", "Data Scientist", "DevOps Engineer",
		"Product Manager", "UX Designer",
	}, titles)
}

func TestHandler_Execute_SortsUnsortedCatalogMatches(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{
		CatalogMatches: []models.CareerMatch{
			catalogMatch("Low", 61),
			catalogMatch("Mid", 70),
			catalogMatch("Top", 95),
			catalogMatch("Second", 90),
		},
	})
	require.NoError(t, err)

	require.Len(t, output.Recommendations, 3)
	titles := make([]string, len(output.Recommendations))
	for i, rec := range output.Recommendations {
		titles[i] = rec.Title
	}
	assert.Equal(t, []string{"Top", "Second", "Mid"}, titles)
}

func TestHandler_Execute_DeduplicatesByExactTitle(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{
		CatalogMatches: []models.CareerMatch{catalogMatch("Software Engineer", 92)},
		ExternalCandidates: []models.ExternalCandidate{
			external("Software Engineer", 90), // exact duplicate, skipped
			external("software engineer", 88), // different case, kept
		},
	})
	require.NoError(t, err)

	require.Len(t, output.Recommendations, 2)
	assert.Equal(t, "Software Engineer", output.Recommendations[0].Title)
	assert.Equal(t, "software engineer", output.Recommendations[1].Title)
}

func TestHandler_Execute_ExternalDefaults(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{
		ExternalCandidates: []models.ExternalCandidate{
			{Title: "AI Researcher"}, // no matchPercentage supplied
		},
	})
	require.NoError(t, err)

	require.Len(t, output.Recommendations, 1)
	assert.Equal(t, 75, output.Recommendations[0].MatchPercentage)
	assert.Equal(t, "career", output.Recommendations[0].ItemType)
}

func TestHandler_Execute_SkipsUntitledExternalCandidates(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	output, err := handler.Execute(context.Background(), &Input{
		ExternalCandidates: []models.ExternalCandidate{
			{MatchPercentage: 90},
			{Title: "Named", MatchPercentage: 70},
		},
	})
	require.NoError(t, err)

	require.Len(t, output.Recommendations, 1)
	assert.Equal(t, "Named", output.Recommendations[0].Title)
}

// ==========================
// Rule Table Tests
// ==========================

func TestHandler_ProsConsActionSteps(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	career := models.Career{
		Title: "Software Engineer",
		EducationPath: []models.EducationPath{
			{Level: "Bachelor", Fields: []string{"Computer Science", "Information Technology"}},
		},
		RequiredSkills: []models.RequiredSkill{
			{Skill: "Programming", Importance: 5},
			{Skill: "Databases", Importance: 4},
			{Skill: "Whiteboarding", Importance: 2},
		},
		SalaryRange: models.SalaryRange{Entry: models.SalaryBand{Min: 400000, Max: 1200000}},
		Growth:      models.CareerGrowth{Demand: "High", AutomationRisk: "Low"},
	}

	pros := handler.pros(career)
	assert.Equal(t, []string{
		"High demand in job market",
		"Excellent starting salary potential",
		"Low risk of automation",
	}, pros)

	assert.Empty(t, handler.cons(career))

	declining := models.Career{Growth: models.CareerGrowth{Demand: "Low", AutomationRisk: "High"}}
	assert.Equal(t, []string{
		"Limited job opportunities",
		"High automation risk",
	}, handler.cons(declining))

	steps := handler.actionSteps(career)
	require.Len(t, steps, 4)
	assert.Equal(t, "Pursue Bachelor in Computer Science or Information Technology", steps[0])
	assert.Equal(t, "Prepare for relevant entrance exams", steps[1])
	assert.Equal(t, "Develop skills: Programming, Databases", steps[2])
	assert.Equal(t, "Gain practical experience through internships", steps[3])
}

func TestHandler_Reasoning(t *testing.T) {
	handler := createTestHandler(t, nil, nil)

	profile := &models.StudentProfile{
		Stream: models.StreamScience,
		Scores: models.NewScoreVector(),
	}
	profile.Scores.Scores[models.CategoryTechnical] = 85

	match := models.CareerMatch{
		Career: models.Career{
			Title:    "Robotics Engineer",
			Category: "Engineering",
			AptitudeMapping: map[models.Category]float64{
				models.CategoryTechnical: 80,
			},
		},
		MatchPercentage: 88,
	}

	reasons := handler.reasoning(match, profile)
	assert.Equal(t, []string{
		"Excellent match (88%) based on your aptitude profile",
		"Strong technical skills align well with this career",
		"Your Science background is ideal for this field",
	}, reasons)

	weak := handler.reasoning(catalogMatch("Clerk", 62), &models.StudentProfile{Scores: models.NewScoreVector()})
	assert.Equal(t, []string{"Good match based on your profile"}, weak)
}

// ==========================
// Enrichment & Persistence Tests
// ==========================

func TestHandler_Execute_CollegeEnrichment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"name", "type", "rating", "placement", "package"}).
		AddRow("City Tech Institute", "Government", 4.5, 92.0, 800000)
	mock.ExpectQuery("SELECT name, type").
		WillReturnRows(rows)

	handler := createTestHandler(t, db, nil)

	match := catalogMatch("Software Engineer", 92)
	match.Career.EducationPath = []models.EducationPath{
		{Level: "Bachelor", Fields: []string{"Computer Science"}},
	}

	output, err := handler.Execute(context.Background(), &Input{
		Profile: &models.StudentProfile{
			Location: models.Location{City: "Pune"},
			Scores:   models.NewScoreVector(),
		},
		CatalogMatches: []models.CareerMatch{match},
	})
	require.NoError(t, err)

	require.Len(t, output.Recommendations, 1)
	require.Len(t, output.Recommendations[0].CollegesInCity, 1)
	college := output.Recommendations[0].CollegesInCity[0]
	assert.Equal(t, "City Tech Institute", college.Name)
	assert.InDelta(t, 92.0, college.PlacementPercentage, 0.001)
}

func TestHandler_Execute_EnrichmentKeepsFieldTextLiteral(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, type").
		WithArgs("Mumbai", pq.Array([]string{"%R&D (Robotics|AI)%", "%100% Online%"}), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "rating", "placement", "package"}))

	handler := createTestHandler(t, db, nil)

	match := catalogMatch("Robotics Engineer", 90)
	match.Career.EducationPath = []models.EducationPath{
		{Level: "Bachelor", Fields: []string{"R&D (Robotics|AI)", "100% Online"}},
	}

	_, err = handler.Execute(context.Background(), &Input{
		Profile: &models.StudentProfile{
			Location: models.Location{City: "Mumbai"},
			Scores:   models.NewScoreVector(),
		},
		CatalogMatches: []models.CareerMatch{match},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EnrichmentFailurePropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT name, type").WillReturnError(sql.ErrConnDone)

	handler := createTestHandler(t, db, nil)

	match := catalogMatch("Software Engineer", 92)
	match.Career.EducationPath = []models.EducationPath{
		{Level: "Bachelor", Fields: []string{"Computer Science"}},
	}

	_, err = handler.Execute(context.Background(), &Input{
		Profile: &models.StudentProfile{
			Location: models.Location{City: "Pune"},
			Scores:   models.NewScoreVector(),
		},
		CatalogMatches: []models.CareerMatch{match},
	})
	assert.Error(t, err)
}

func TestHandler_Execute_PersistsRecommendation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO recommendations").
		WithArgs(sqlmock.AnyArg(), "u-1", "after12th", "career", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := createTestHandler(t, db, nil)

	output, err := handler.Execute(context.Background(), &Input{
		UserID:         "u-1",
		Stage:          "after12th",
		Persist:        true,
		CatalogMatches: []models.CareerMatch{catalogMatch("Software Engineer", 92)},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, output.RecommendationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
