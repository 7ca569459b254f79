// internal/workers/assessment/analyze-result/handler.go
package analyzeresult

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-result"
)

const fallbackRecommendation = "Complete more assessments to get refined recommendations"

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
		h.failJob(client, job, "INSIGHT_ANALYSIS_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	scores := input.Scores
	if scores.Scores == nil {
		scores = models.NewScoreVector()
	}

	output := &Output{
		Strengths:       []Strength{},
		Weaknesses:      []Weakness{},
		Recommendations: []string{},
		LearningStyle:   h.determineLearningStyle(scores),
		PersonalityType: h.determinePersonalityType(scores),
	}

	for _, category := range models.Categories {
		score := scores.Get(category)
		desc := h.config.Descriptions[category]

		if score > h.config.StrengthThreshold {
			output.Strengths = append(output.Strengths, Strength{
				Category:    capitalizeFirst(string(category)),
				Score:       score,
				Description: orDefault(desc.Strength, "Area of notable ability"),
			})
		}
		if score < h.config.WeaknessThreshold {
			output.Weaknesses = append(output.Weaknesses, Weakness{
				Category:    capitalizeFirst(string(category)),
				Score:       score,
				Description: orDefault(desc.Weakness, "Area requiring attention"),
				Improvement: h.improvementSuggestions(category),
			})
		}
	}

	for _, rule := range h.config.RecommendationRules {
		if rule.Matches(scores) {
			output.Recommendations = append(output.Recommendations, rule.Label)
		}
	}
	if len(output.Recommendations) == 0 {
		output.Recommendations = append(output.Recommendations, fallbackRecommendation)
	}

	h.logger.Info("result analyzed", map[string]interface{}{
		"userId":          input.UserID,
		"strengths":       len(output.Strengths),
		"weaknesses":      len(output.Weaknesses),
		"learningStyle":   output.LearningStyle,
		"personalityType": output.PersonalityType,
	})

	return output, nil
}

// determineLearningStyle picks the strictly highest of the core categories.
// Ties resolve by the configured priority order.
func (h *Handler) determineLearningStyle(scores models.ScoreVector) string {
	best := models.Category("")
	bestScore := 0
	for _, category := range h.config.LearningStylePriority {
		if score := scores.Get(category); score > bestScore {
			best = category
			bestScore = score
		}
	}
	if style, ok := h.config.LearningStyles[best]; ok && bestScore > 0 {
		return style
	}
	return "Balanced Learner"
}

func (h *Handler) determinePersonalityType(scores models.ScoreVector) string {
	for _, rule := range h.config.PersonalityRules {
		if rule.Matches(scores) {
			return rule.Label
		}
	}
	return "Well-Rounded Individual"
}

func (h *Handler) improvementSuggestions(category models.Category) []string {
	if suggestions, ok := h.config.Improvements[category]; ok {
		return suggestions
	}
	return []string{"Focus on regular practice and skill development"}
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
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
