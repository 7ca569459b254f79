// internal/workers/assessment/score-assessment/handler.go
package scoreassessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/common/metrics"
	"guidance-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "score-assessment"

	ratingScaleMax = 5
)

var (
	ErrScoringFailed = errors.New("SCORING_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "SCORING_FAILED").Inc()
		h.failJob(client, job, "SCORING_FAILED", err.Error(), 0)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	questions := input.Questions
	if len(questions) == 0 && input.AssessmentID != "" {
		var err error
		questions, err = h.getQuestions(ctx, input.AssessmentID)
		if err != nil {
			return nil, fmt.Errorf("load questions for assessment %s: %w", input.AssessmentID, err)
		}
	}

	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	scores := models.NewScoreVector()
	categoryScore := make(map[models.Category]float64)
	categoryWeight := make(map[models.Category]float64)
	var totalScore, totalWeight float64
	var scored int
	var skipped []string

	// deterministic iteration for stable skipped/log output
	ids := make([]string, 0, len(input.Responses))
	for id := range input.Responses {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		resp := input.Responses[id]
		question, ok := byID[id]
		if !ok {
			skipped = append(skipped, id)
			continue
		}

		weight := resp.Weight
		if weight <= 0 {
			weight = 1
		}

		questionScore := scoreQuestion(question, resp.Answer)
		categoryScore[question.Category] += questionScore * weight
		categoryWeight[question.Category] += weight
		totalScore += questionScore * weight
		totalWeight += weight
		scored++
	}

	for category, weight := range categoryWeight {
		if weight > 0 {
			scores.Scores[category] = int(math.Round(categoryScore[category] / weight))
		}
	}
	if totalWeight > 0 {
		scores.Overall = int(math.Round(totalScore / totalWeight))
	}

	appliedWeights := make(map[models.Category]float64, len(models.Categories))
	for _, c := range models.Categories {
		appliedWeights[c] = categoryWeight[c]
	}

	h.logger.Info("assessment scored", map[string]interface{}{
		"assessmentId":    input.AssessmentID,
		"questionsScored": scored,
		"skipped":         len(skipped),
		"overall":         scores.Overall,
	})

	metrics.AssessmentsScored.WithLabelValues(assessmentTypeLabel(input.AssessmentType)).Inc()

	return &Output{
		Scores:          scores,
		AppliedWeights:  appliedWeights,
		QuestionsScored: scored,
		SkippedAnswers:  skipped,
	}, nil
}

func assessmentTypeLabel(t string) string {
	if t == "" {
		return "unknown"
	}
	return t
}

// scoreQuestion maps one answer to a 0-100 score. Malformed answers degrade
// to 0 rather than failing the submission.
func scoreQuestion(q models.Question, answer models.Answer) float64 {
	switch q.Type {
	case models.QuestionMultipleChoice:
		return scoreMultipleChoice(q, answer)
	case models.QuestionRating:
		return scoreRating(answer)
	case models.QuestionRanking:
		return scoreRanking(q, answer)
	case models.QuestionBoolean:
		return scoreBoolean(q, answer)
	case models.QuestionText:
		// free text is surfaced to a reviewer, not scored here
		return 50
	default:
		return 0
	}
}

func scoreMultipleChoice(q models.Question, answer models.Answer) float64 {
	selected, kind := answer.Selection()
	if kind != models.AnswerSelection {
		return 0
	}
	for _, opt := range q.Options {
		if opt.Value == selected {
			return opt.Weight
		}
	}
	return 0
}

func scoreRating(answer models.Answer) float64 {
	rating, kind := answer.Scalar()
	if kind != models.AnswerScalar {
		return 0
	}
	if rating < 1 || rating > ratingScaleMax || rating != math.Trunc(rating) {
		return 0
	}
	return (rating / ratingScaleMax) * 100
}

func scoreRanking(q models.Question, answer models.Answer) float64 {
	ranked, kind := answer.Ordering()
	if kind != models.AnswerOrdering || len(ranked) == 0 {
		return 0
	}

	// ideal order: options by descending weight, ties keep catalog order
	ideal := make([]models.Option, len(q.Options))
	copy(ideal, q.Options)
	sort.SliceStable(ideal, func(i, j int) bool {
		return ideal[i].Weight > ideal[j].Weight
	})
	idealIndex := make(map[string]int, len(ideal))
	for i, opt := range ideal {
		idealIndex[opt.Value] = i
	}

	var penalty float64
	for i, value := range ranked {
		idx, ok := idealIndex[value]
		if !ok {
			return 0
		}
		penalty += math.Abs(float64(i - idx))
	}

	n := float64(len(ranked))
	maxPenalty := n * (n - 1) / 2
	if maxPenalty == 0 {
		return 100
	}
	return math.Max(0, 100*(1-penalty/maxPenalty))
}

func scoreBoolean(q models.Question, answer models.Answer) float64 {
	value, kind := answer.Flag()
	if kind != models.AnswerFlag {
		return 0
	}
	if q.CorrectAnswer != "" {
		if fmt.Sprintf("%t", value) == q.CorrectAnswer {
			return 100
		}
		return 0
	}
	// no ground truth: preference probe, falsy means "no signal" not "wrong"
	if value {
		return 100
	}
	return 50
}

func (h *Handler) getQuestions(ctx context.Context, assessmentID string) ([]models.Question, error) {
	cacheKey := "assessment:questions:" + assessmentID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var questions []models.Question
		if err := json.Unmarshal([]byte(val), &questions); err == nil {
			return questions, nil
		}
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT q.id, q.type, q.category, q.options, q.correct_answer, q.difficulty
		FROM questions q
		JOIN assessment_questions aq ON aq.question_id = q.id
		WHERE aq.assessment_id = $1
		ORDER BY aq.position`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var options []byte
		var correctAnswer sql.NullString
		if err := rows.Scan(&q.ID, &q.Type, &q.Category, &options, &correctAnswer, &q.Difficulty); err != nil {
			return nil, err
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &q.Options); err != nil {
				q.Options = nil
			}
		}
		q.CorrectAnswer = correctAnswer.String
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	data, _ := json.Marshal(questions)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return questions, nil
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
