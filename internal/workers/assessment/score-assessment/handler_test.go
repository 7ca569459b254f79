// internal/workers/assessment/score-assessment/handler_test.go
package scoreassessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		CacheTTL: time.Minute,
		Timeout:  10 * time.Second,
	}
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	testLog := logger.NewTestLogger(t)
	return NewHandler(config, db, redisClient, testLog)
}

func ratingQuestion(id string, category models.Category) models.Question {
	return models.Question{ID: id, Type: models.QuestionRating, Category: category}
}

func choiceQuestion(id string, category models.Category, options ...models.Option) models.Question {
	return models.Question{ID: id, Type: models.QuestionMultipleChoice, Category: category, Options: options}
}

func response(answer interface{}, weight float64) models.Response {
	return models.Response{Answer: models.NewAnswer(answer), Weight: weight}
}

// ==========================
// Question Scoring Tests
// ==========================

func TestScoreQuestion(t *testing.T) {
	rankingQ := models.Question{
		ID:   "rk1",
		Type: models.QuestionRanking,
		Options: []models.Option{
			{Value: "a", Weight: 10},
			{Value: "b", Weight: 30},
			{Value: "c", Weight: 20},
		},
	}

	tests := []struct {
		name     string
		question models.Question
		answer   interface{}
		expected float64
	}{
		{
			name:     "multiple choice returns option weight",
			question: choiceQuestion("q1", models.CategoryAnalytical, models.Option{Value: "often", Weight: 80}, models.Option{Value: "rarely", Weight: 20}),
			answer:   "often",
			expected: 80,
		},
		{
			name:     "multiple choice unknown value scores zero",
			question: choiceQuestion("q1", models.CategoryAnalytical, models.Option{Value: "often", Weight: 80}),
			answer:   "never",
			expected: 0,
		},
		{
			name:     "rating 5 scores 100",
			question: ratingQuestion("q2", models.CategoryCreative),
			answer:   5,
			expected: 100,
		},
		{
			name:     "rating 1 scores 20",
			question: ratingQuestion("q2", models.CategoryCreative),
			answer:   1,
			expected: 20,
		},
		{
			name:     "rating out of range scores zero",
			question: ratingQuestion("q2", models.CategoryCreative),
			answer:   7,
			expected: 0,
		},
		{
			name:     "rating non-numeric scores zero",
			question: ratingQuestion("q2", models.CategoryCreative),
			answer:   "often",
			expected: 0,
		},
		{
			name:     "ranking ideal order scores 100",
			question: rankingQ,
			answer:   []string{"b", "c", "a"},
			expected: 100,
		},
		{
			name:     "ranking reversed order scores 0",
			question: rankingQ,
			answer:   []string{"a", "c", "b"},
			expected: 0,
		},
		{
			name:     "ranking non-array answer scores zero",
			question: rankingQ,
			answer:   "b",
			expected: 0,
		},
		{
			name:     "ranking with unknown value scores zero",
			question: rankingQ,
			answer:   []string{"b", "z", "a"},
			expected: 0,
		},
		{
			name:     "boolean with correct answer exact match",
			question: models.Question{ID: "b1", Type: models.QuestionBoolean, CorrectAnswer: "true"},
			answer:   true,
			expected: 100,
		},
		{
			name:     "boolean with correct answer mismatch",
			question: models.Question{ID: "b1", Type: models.QuestionBoolean, CorrectAnswer: "true"},
			answer:   false,
			expected: 0,
		},
		{
			name:     "boolean preference probe truthy",
			question: models.Question{ID: "b2", Type: models.QuestionBoolean},
			answer:   true,
			expected: 100,
		},
		{
			name:     "boolean preference probe falsy",
			question: models.Question{ID: "b2", Type: models.QuestionBoolean},
			answer:   false,
			expected: 50,
		},
		{
			name:     "text always neutral",
			question: models.Question{ID: "t1", Type: models.QuestionText},
			answer:   "I enjoy building things",
			expected: 50,
		},
		{
			name:     "unknown question type scores zero",
			question: models.Question{ID: "u1", Type: "matrix"},
			answer:   5,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreQuestion(tt.question, models.NewAnswer(tt.answer))
			assert.InDelta(t, tt.expected, got, 0.001)
		})
	}
}

func TestScoreRanking_Partial(t *testing.T) {
	q := models.Question{
		Type: models.QuestionRanking,
		Options: []models.Option{
			{Value: "first", Weight: 3},
			{Value: "second", Weight: 2},
			{Value: "third", Weight: 1},
		},
	}

	// one swap of adjacent items: penalty 2 of max 3
	got := scoreRanking(q, models.NewAnswer([]string{"second", "first", "third"}))
	assert.InDelta(t, 100*(1-2.0/3.0), got, 0.001)
}

// ==========================
// Aggregation Tests
// ==========================

func TestHandler_Execute_Aggregation(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		validate func(t *testing.T, output *Output)
	}{
		{
			name: "equal weights average within category",
			input: &Input{
				Questions: []models.Question{
					ratingQuestion("q1", models.CategoryAnalytical),
					ratingQuestion("q2", models.CategoryAnalytical),
				},
				Responses: map[string]models.Response{
					"q1": response(5, 1),
					"q2": response(1, 1),
				},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, 60, output.Scores.Get(models.CategoryAnalytical))
				assert.Equal(t, 60, output.Scores.Overall)
				assert.Equal(t, 2, output.QuestionsScored)
			},
		},
		{
			name: "normalization divides by per-category weight only",
			input: &Input{
				Questions: []models.Question{
					ratingQuestion("q1", models.CategoryAnalytical),
					ratingQuestion("q2", models.CategoryCreative),
					ratingQuestion("q3", models.CategoryCreative),
				},
				Responses: map[string]models.Response{
					"q1": response(5, 2),
					"q2": response(4, 1),
					"q3": response(2, 1),
				},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, 100, output.Scores.Get(models.CategoryAnalytical))
				assert.Equal(t, 60, output.Scores.Get(models.CategoryCreative))
				// overall: (100*2 + 80 + 40) / 4 = 80
				assert.Equal(t, 80, output.Scores.Overall)
			},
		},
		{
			name: "unknown question ids skipped without affecting weights",
			input: &Input{
				Questions: []models.Question{
					ratingQuestion("q1", models.CategoryTechnical),
				},
				Responses: map[string]models.Response{
					"q1":    response(5, 1),
					"ghost": response(5, 10),
				},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, 100, output.Scores.Get(models.CategoryTechnical))
				assert.Equal(t, 100, output.Scores.Overall)
				assert.Equal(t, 1, output.QuestionsScored)
				assert.Equal(t, []string{"ghost"}, output.SkippedAnswers)
			},
		},
		{
			name: "empty responses yield all zeros",
			input: &Input{
				Questions: []models.Question{ratingQuestion("q1", models.CategoryIQ)},
				Responses: map[string]models.Response{},
			},
			validate: func(t *testing.T, output *Output) {
				for _, c := range models.Categories {
					assert.Equal(t, 0, output.Scores.Get(c))
				}
				assert.Equal(t, 0, output.Scores.Overall)
			},
		},
		{
			name: "zero weight defaults to one",
			input: &Input{
				Questions: []models.Question{ratingQuestion("q1", models.CategoryAcademic)},
				Responses: map[string]models.Response{
					"q1": response(3, 0),
				},
			},
			validate: func(t *testing.T, output *Output) {
				assert.Equal(t, 60, output.Scores.Get(models.CategoryAcademic))
				assert.Equal(t, 1.0, output.AppliedWeights[models.CategoryAcademic])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, nil, nil, nil)

			output, err := handler.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			tt.validate(t, output)
		})
	}
}

func TestHandler_Execute_ScoresAlwaysInRange(t *testing.T) {
	input := &Input{
		Questions: []models.Question{
			choiceQuestion("q1", models.CategoryAnalytical, models.Option{Value: "a", Weight: 100}),
			ratingQuestion("q2", models.CategoryCreative),
			{ID: "q3", Type: models.QuestionBoolean, Category: models.CategoryPersonality},
		},
		Responses: map[string]models.Response{
			"q1": response("a", 3),
			"q2": response(4, 2),
			"q3": response(false, 1),
		},
	}

	handler := createTestHandler(t, nil, nil, nil)
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	for _, c := range models.Categories {
		score := output.Scores.Get(c)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
	assert.GreaterOrEqual(t, output.Scores.Overall, 0)
	assert.LessOrEqual(t, output.Scores.Overall, 100)
}

// ==========================
// Question Loading Tests
// ==========================

func TestHandler_Execute_LoadsQuestionsFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	questions := []models.Question{ratingQuestion("q1", models.CategoryAnalytical)}
	data, err := json.Marshal(questions)
	require.NoError(t, err)
	require.NoError(t, mr.Set("assessment:questions:a-1", string(data)))

	handler := createTestHandler(t, nil, redisClient, nil)

	output, err := handler.Execute(context.Background(), &Input{
		AssessmentID: "a-1",
		Responses: map[string]models.Response{
			"q1": response(5, 1),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, output.Scores.Get(models.CategoryAnalytical))
}

func TestHandler_Execute_LoadsQuestionsFromDatabase(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	options, _ := json.Marshal([]models.Option{{Value: "yes", Weight: 90}})
	rows := sqlmock.NewRows([]string{"id", "type", "category", "options", "correct_answer", "difficulty"}).
		AddRow("q1", "multiple_choice", "technical", options, nil, "easy")
	mock.ExpectQuery("SELECT q.id, q.type, q.category").
		WithArgs("a-2").
		WillReturnRows(rows)

	handler := createTestHandler(t, db, redisClient, nil)

	output, err := handler.Execute(context.Background(), &Input{
		AssessmentID: "a-2",
		Responses: map[string]models.Response{
			"q1": response("yes", 1),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 90, output.Scores.Get(models.CategoryTechnical))
	assert.NoError(t, mock.ExpectationsWereMet())

	// questions cached for the next submission
	cached, err := mr.Get("assessment:questions:a-2")
	require.NoError(t, err)
	assert.Contains(t, cached, "q1")
}

func TestHandler_Execute_DatabaseFailurePropagates(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer redisClient.Close()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT q.id, q.type, q.category").
		WithArgs("a-3").
		WillReturnError(sql.ErrConnDone)

	handler := createTestHandler(t, db, redisClient, nil)

	_, err = handler.Execute(context.Background(), &Input{
		AssessmentID: "a-3",
		Responses:    map[string]models.Response{"q1": response(5, 1)},
	})
	assert.Error(t, err)
}
