// internal/workers/guidance/match-careers/handler.go
package matchcareers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/common/metrics"
	"guidance-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "match-careers"

	defaultUserScore = 50

	streamWeight        = 30
	interestPerKeyword  = 33.33
	streamPartialCredit = 0.5
)

var (
	ErrMatchFailed = errors.New("MATCH_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
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
		h.failJob(client, job, "MATCH_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile := input.Profile
	if profile == nil && input.UserID != "" {
		var err error
		profile, err = h.getProfile(ctx, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", input.UserID, err)
		}
	}
	if profile == nil {
		profile = &models.StudentProfile{}
	}

	careers := input.Careers
	if len(careers) == 0 {
		var err error
		careers, err = h.getCareers(ctx)
		if err != nil {
			return nil, fmt.Errorf("load careers: %w", err)
		}
	}

	matches := make([]models.CareerMatch, 0, len(careers))
	for _, career := range careers {
		score := h.matchScore(profile, career, input.Matcher)
		if score >= h.config.MinMatchScore {
			matches = append(matches, models.CareerMatch{
				Career:          career,
				MatchPercentage: score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchPercentage > matches[j].MatchPercentage
	})
	if len(matches) > h.config.MaxMatches {
		matches = matches[:h.config.MaxMatches]
	}

	h.logger.Info("careers matched", map[string]interface{}{
		"userId":    input.UserID,
		"evaluated": len(careers),
		"retained":  len(matches),
	})

	metrics.RecommendationCandidates.WithLabelValues("career").Observe(float64(len(matches)))

	return &Output{
		Matches:        matches,
		TotalEvaluated: len(careers),
	}, nil
}

// matchScore blends aptitude similarity, stream compatibility and interest
// alignment. Each signal contributes to an accumulated score and an
// accumulated weight; the blend is the score share of the total weight.
func (h *Handler) matchScore(profile *models.StudentProfile, career models.Career, matcher string) int {
	var score, totalWeight float64

	if len(career.AptitudeMapping) > 0 {
		if matcher == MatcherEuclidean {
			score += h.aptitudeEuclidean(profile.Scores, career.AptitudeMapping)
			totalWeight += 100
		} else {
			for _, category := range models.Categories {
				required, ok := career.AptitudeMapping[category]
				if !ok {
					continue
				}
				userScore := float64(defaultUserScore)
				if s, present := profile.Scores.Scores[category]; present && s > 0 {
					userScore = float64(s)
				}
				diff := math.Abs(required - userScore)
				score += math.Max(0, 100-diff)
				totalWeight += 100
			}
		}
	}

	if profile.Stream != "" {
		score += h.streamCompatibility(profile.Stream, career.EducationPath) * streamWeight
		totalWeight += streamWeight
	}

	if len(profile.Interests) > 0 {
		score += h.interestAlignment(profile.Interests, career.Title, career.Category)
		totalWeight += 100
	}

	if totalWeight == 0 {
		return defaultUserScore
	}
	return int(math.Round(score / totalWeight * 100))
}

// aptitudeEuclidean converts multivariate distance to a 0-100 similarity.
func (h *Handler) aptitudeEuclidean(scores models.ScoreVector, required map[models.Category]float64) float64 {
	if len(required) == 0 {
		return defaultUserScore
	}
	var sumSquared float64
	for _, category := range models.Categories {
		req, ok := required[category]
		if !ok {
			continue
		}
		userScore := float64(defaultUserScore)
		if s, present := scores.Scores[category]; present && s > 0 {
			userScore = float64(s)
		}
		sumSquared += (userScore - req) * (userScore - req)
	}
	distance := math.Sqrt(sumSquared)
	maxDistance := math.Sqrt(float64(len(required)) * 100 * 100)
	return math.Max(0, 100-(distance/maxDistance)*100)
}

// streamCompatibility returns 1 on field overlap and a partial credit
// otherwise; an unmatched stream reflects uncertainty, not disqualification.
func (h *Handler) streamCompatibility(stream string, educationPath []models.EducationPath) float64 {
	compatible := h.config.StreamFields[stream]
	for _, path := range educationPath {
		for _, field := range path.Fields {
			for _, cf := range compatible {
				if strings.Contains(strings.ToLower(field), strings.ToLower(cf)) {
					return 1
				}
			}
		}
	}
	return streamPartialCredit
}

func (h *Handler) interestAlignment(interests []string, title, category string) float64 {
	titleLower := strings.ToLower(title)
	categoryLower := strings.ToLower(category)

	var score float64
	for _, interest := range interests {
		interestLower := strings.ToLower(interest)
		if interestLower == "" {
			continue
		}
		if strings.Contains(titleLower, interestLower) || strings.Contains(categoryLower, interestLower) {
			score += interestPerKeyword
		}
	}
	return math.Min(score, 100)
}

func (h *Handler) getProfile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	cacheKey := "student:profile:" + userID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.StudentProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT stream, percentage, city, state, budget_min, budget_max, interests, assessment_scores
		FROM student_profiles WHERE user_id = $1`, userID)

	profile := models.StudentProfile{UserID: userID}
	var interests, scores []byte
	err := row.Scan(
		&profile.Stream, &profile.Percentage,
		&profile.Location.City, &profile.Location.State,
		&profile.Budget.Min, &profile.Budget.Max,
		&interests, &scores,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(interests, &profile.Interests); err != nil {
		profile.Interests = []string{}
	}
	if err := json.Unmarshal(scores, &profile.Scores); err != nil {
		profile.Scores = models.NewScoreVector()
	}

	data, _ := json.Marshal(profile)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &profile, nil
}

func (h *Handler) getCareers(ctx context.Context) ([]models.Career, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, title, category, description, aptitude_mapping, education_path,
		       required_skills, salary_range, growth
		FROM careers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var careers []models.Career
	for rows.Next() {
		var c models.Career
		var aptitude, education, skills, salary, growth []byte
		if err := rows.Scan(&c.ID, &c.Title, &c.Category, &c.Description,
			&aptitude, &education, &skills, &salary, &growth); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(aptitude, &c.AptitudeMapping)
		_ = json.Unmarshal(education, &c.EducationPath)
		_ = json.Unmarshal(skills, &c.RequiredSkills)
		_ = json.Unmarshal(salary, &c.SalaryRange)
		_ = json.Unmarshal(growth, &c.Growth)
		careers = append(careers, c)
	}
	return careers, rows.Err()
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
