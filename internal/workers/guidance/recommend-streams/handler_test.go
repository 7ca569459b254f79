// internal/workers/guidance/recommend-streams/handler_test.go
package recommendstreams

import (
	"context"
	"testing"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

func strongScienceMarks() []SubjectMark {
	return []SubjectMark{
		{Name: "Mathematics", Marks: 95},
		{Name: "Science", Marks: 92},
		{Name: "English", Marks: 75},
		{Name: "Social Science", Marks: 70},
		{Name: "Hindi", Marks: 68},
	}
}

func strongArtsMarks() []SubjectMark {
	return []SubjectMark{
		{Name: "Mathematics", Marks: 55},
		{Name: "Science", Marks: 52},
		{Name: "English", Marks: 92},
		{Name: "Social Science", Marks: 95},
		{Name: "Hindi", Marks: 90},
	}
}

func TestHandler_Execute_ScienceProfile(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Percentage: 88,
		Subjects:   strongScienceMarks(),
	})
	require.NoError(t, err)

	require.NotEmpty(t, output.Recommendations)
	assert.Equal(t, models.StreamScience, output.Recommendations[0].Stream)
	assert.Equal(t, "Strong Analytical & Technical Aptitude", output.AptitudeProfile)
	assert.Contains(t, output.Recommendations[0].CareerOptions, "Engineering")
	assert.NotEmpty(t, output.Recommendations[0].Reasoning)
}

func TestHandler_Execute_ArtsProfile(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Percentage: 77,
		Subjects:   strongArtsMarks(),
	})
	require.NoError(t, err)

	require.NotEmpty(t, output.Recommendations)
	assert.Equal(t, models.StreamArts, output.Recommendations[0].Stream)
	assert.Equal(t, "Creative & Conceptual Thinker", output.AptitudeProfile)
}

func TestHandler_Execute_AlwaysReturnsAtLeastOneStream(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Percentage: 45,
		Subjects: []SubjectMark{
			{Name: "Mathematics", Marks: 40},
			{Name: "English", Marks: 50},
		},
	})
	require.NoError(t, err)
	assert.Len(t, output.Recommendations, 1)
}

func TestHandler_Execute_ScoresClamped(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Percentage:          100,
		Subjects:            strongScienceMarks(),
		ParentalPreferences: []string{"engineering", "medical", "research"},
	})
	require.NoError(t, err)

	for _, rec := range output.Recommendations {
		assert.GreaterOrEqual(t, rec.Score, 0)
		assert.LessOrEqual(t, rec.Score, 100)
	}
}

func TestHandler_AptitudeAdjustment(t *testing.T) {
	handler := createTestHandler(t)

	high := models.NewScoreVector()
	high.Scores[models.CategoryAnalytical] = 85
	high.Scores[models.CategoryTechnical] = 80

	mid := models.NewScoreVector()
	mid.Scores[models.CategoryAnalytical] = 65
	mid.Scores[models.CategoryTechnical] = 60

	assert.Equal(t, 5.0, handler.aptitudeAdjustment(models.StreamScience, high))
	assert.Equal(t, 2.0, handler.aptitudeAdjustment(models.StreamScience, mid))
	assert.Equal(t, 0.0, handler.aptitudeAdjustment(models.StreamScience, models.NewScoreVector()))
}

func TestHandler_ParentalAdjustment(t *testing.T) {
	handler := createTestHandler(t)

	assert.Equal(t, 5.0, handler.parentalAdjustment(models.StreamScience, []string{"Engineering"}))
	assert.Equal(t, 10.0, handler.parentalAdjustment(models.StreamScience, []string{"Engineering", "Medical", "Research"}))
	assert.Equal(t, 0.0, handler.parentalAdjustment(models.StreamScience, []string{"Banking"}))
	assert.Equal(t, 5.0, handler.parentalAdjustment(models.StreamCommerce, []string{"Banking"}))
}

func TestHandler_Execute_ParentalPreferenceCanReorder(t *testing.T) {
	handler := createTestHandler(t)

	balanced := []SubjectMark{
		{Name: "Mathematics", Marks: 80},
		{Name: "English", Marks: 80},
		{Name: "Social Science", Marks: 80},
	}

	neutral, err := handler.Execute(context.Background(), &Input{
		Percentage: 80,
		Subjects:   balanced,
	})
	require.NoError(t, err)

	nudged, err := handler.Execute(context.Background(), &Input{
		Percentage:          80,
		Subjects:            balanced,
		ParentalPreferences: []string{"law", "journalism"},
	})
	require.NoError(t, err)

	findScore := func(out *Output, stream string) int {
		for _, rec := range out.Recommendations {
			if rec.Stream == stream {
				return rec.Score
			}
		}
		return -1
	}

	if base := findScore(neutral, models.StreamArts); base >= 0 {
		assert.Greater(t, findScore(nudged, models.StreamArts), base)
	}
}
