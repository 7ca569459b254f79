// internal/workers/guidance/recommend-streams/handler.go
package recommendstreams

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "recommend-streams"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "STREAM_UNSUPPORTED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	scores := h.streamScores(input)

	recs := make([]StreamRecommendation, 0, len(scores))
	for stream, score := range scores {
		info := h.config.Streams[stream]
		recs = append(recs, StreamRecommendation{
			Stream:        stream,
			Score:         int(math.Round(score)),
			Subjects:      info.Subjects,
			CareerOptions: info.CareerOptions,
			Reasoning:     h.reasoning(stream, score, input),
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].Stream < recs[j].Stream
	})

	filtered := make([]StreamRecommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.Score >= h.config.MinStreamScore {
			filtered = append(filtered, rec)
		}
	}
	// the student always gets at least their best-fitting stream
	if len(filtered) == 0 && len(recs) > 0 {
		filtered = recs[:1]
	}

	h.logger.Info("streams recommended", map[string]interface{}{
		"userId":   input.UserID,
		"returned": len(filtered),
	})

	return &Output{
		Recommendations: filtered,
		AptitudeProfile: h.aptitudeProfile(input.Subjects),
	}, nil
}

// streamScores blends subject performance, the overall percentage bonus, an
// assessment adjustment and parental preference overlap.
func (h *Handler) streamScores(input *Input) map[string]float64 {
	scores := map[string]float64{
		models.StreamScience:  0,
		models.StreamCommerce: 0,
		models.StreamArts:     0,
	}

	for _, subject := range input.Subjects {
		weights, ok := h.config.SubjectWeights[normalizeSubject(subject.Name)]
		if !ok {
			weights = h.config.DefaultWeights
		}
		scores[models.StreamScience] += subject.Marks * weights.Science / 100
		scores[models.StreamCommerce] += subject.Marks * weights.Commerce / 100
		scores[models.StreamArts] += subject.Marks * weights.Arts / 100
	}

	bonus := math.Min((input.Percentage-60)/4, 10)
	scores[models.StreamScience] += bonus
	scores[models.StreamCommerce] += bonus * 0.8
	scores[models.StreamArts] += bonus * 0.6

	for stream := range scores {
		scores[stream] += h.aptitudeAdjustment(stream, input.Scores)
		scores[stream] += h.parentalAdjustment(stream, input.ParentalPreferences)
		scores[stream] = math.Max(0, math.Min(100, scores[stream]))
	}

	return scores
}

func (h *Handler) aptitudeAdjustment(stream string, scores models.ScoreVector) float64 {
	info, ok := h.config.Streams[stream]
	if !ok || len(info.AptitudeCategories) == 0 || scores.Scores == nil {
		return 0
	}

	var sum float64
	for _, category := range info.AptitudeCategories {
		sum += float64(scores.Get(category))
	}
	avg := sum / float64(len(info.AptitudeCategories))

	switch {
	case avg >= 75:
		return 5
	case avg >= 60:
		return 2
	default:
		return 0
	}
}

func (h *Handler) parentalAdjustment(stream string, preferences []string) float64 {
	info, ok := h.config.Streams[stream]
	if !ok {
		return 0
	}

	var bonus float64
	for _, pref := range preferences {
		prefLower := strings.ToLower(pref)
		for _, keyword := range info.Keywords {
			if strings.Contains(prefLower, keyword) || strings.Contains(keyword, prefLower) {
				bonus += h.config.ParentalBonus
				break
			}
		}
	}
	return math.Min(bonus, h.config.ParentalBonusCap)
}

func (h *Handler) reasoning(stream string, score float64, input *Input) []string {
	var reasons []string

	for _, subject := range input.Subjects {
		weights, ok := h.config.SubjectWeights[normalizeSubject(subject.Name)]
		if !ok {
			continue
		}
		var weight float64
		switch stream {
		case models.StreamScience:
			weight = weights.Science
		case models.StreamCommerce:
			weight = weights.Commerce
		case models.StreamArts:
			weight = weights.Arts
		}
		if weight >= 25 && subject.Marks >= 75 {
			reasons = append(reasons, fmt.Sprintf("Strong performance in %s (%d%%)", subject.Name, int(subject.Marks)))
		}
	}

	if input.Percentage >= 80 {
		reasons = append(reasons, "Your overall percentage supports this stream")
	}
	if h.parentalAdjustment(stream, input.ParentalPreferences) > 0 {
		reasons = append(reasons, "Aligned with your family's preferred fields")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, fmt.Sprintf("Overall suitability score of %d", int(math.Round(score))))
	}
	return reasons
}

// aptitudeProfile is a coarse label derived from math and science marks.
func (h *Handler) aptitudeProfile(subjects []SubjectMark) string {
	var mathMarks, scienceMarks float64
	for _, subject := range subjects {
		nameLower := strings.ToLower(subject.Name)
		if strings.Contains(nameLower, "math") {
			mathMarks = subject.Marks
		}
		if strings.Contains(nameLower, "science") && !strings.Contains(nameLower, "social") {
			scienceMarks = subject.Marks
		}
	}

	switch {
	case mathMarks >= 80 && scienceMarks >= 80:
		return "Strong Analytical & Technical Aptitude"
	case mathMarks >= 70 || scienceMarks >= 70:
		return "Moderate Technical Aptitude"
	default:
		return "Creative & Conceptual Thinker"
	}
}

func normalizeSubject(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
