// internal/workers/guidance/match-colleges/handler.go
package matchcolleges

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
	"guidance-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "match-colleges"
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
	if profile == nil {
		profile = &models.StudentProfile{}
	}

	colleges := input.Colleges
	if len(colleges) == 0 && profile.Location.City != "" {
		var err error
		colleges, err = h.getCollegesByCity(ctx, profile.Location.City)
		if err != nil {
			return nil, fmt.Errorf("load colleges for %s: %w", profile.Location.City, err)
		}
	}

	matches := make([]CollegeMatch, 0, len(colleges))
	for _, college := range colleges {
		matches = append(matches, CollegeMatch{
			College:           college,
			MatchScore:        h.collegeMatchScore(college, profile),
			EligibilityStatus: h.checkEligibility(college, profile),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > h.config.MaxColleges {
		matches = matches[:h.config.MaxColleges]
	}

	var courseMatches []CourseMatch
	if len(input.Courses) > 0 {
		courseMatches = h.matchCourses(input.Courses, profile, input.Subjects)
	}

	h.logger.Info("colleges matched", map[string]interface{}{
		"userId":    input.UserID,
		"city":      profile.Location.City,
		"evaluated": len(colleges),
		"courses":   len(courseMatches),
	})

	return &Output{
		Colleges:       matches,
		Courses:        courseMatches,
		TotalEvaluated: len(colleges),
	}, nil
}

// collegeMatchScore sums four point budgets: rating, institution type,
// placement record and fee affordability.
func (h *Handler) collegeMatchScore(college models.College, profile *models.StudentProfile) int {
	var score float64

	score += (college.Ratings.Overall / 5) * h.config.RatingPoints

	if points, ok := h.config.TypePoints[college.Type]; ok {
		score += points
	} else {
		score += h.config.TypeDefaultPoints
	}

	if college.PlacementStats.PlacementPercentage > 0 {
		score += (college.PlacementStats.PlacementPercentage / 100) * h.config.PlacementPoints
	}

	score += h.affordabilityPoints(college, profile)

	return int(math.Round(score))
}

// affordabilityPoints never fully disqualifies on cost: large overruns still
// earn a floor value so expensive colleges surface as stretch options.
func (h *Handler) affordabilityPoints(college models.College, profile *models.StudentProfile) float64 {
	relevant := college.CoursesForStream(profile.Stream)
	if len(relevant) == 0 {
		return 0
	}

	var total float64
	for _, course := range relevant {
		total += float64(course.Fees.Annual)
	}
	avgFee := total / float64(len(relevant))

	if profile.Budget.Max == 0 {
		return h.config.NoBudgetPoints
	}

	switch {
	case avgFee >= float64(profile.Budget.Min) && avgFee <= float64(profile.Budget.Max):
		return h.config.AffordabilityPoints
	case avgFee <= float64(profile.Budget.Max)*h.config.OverrunTolerance:
		return h.config.OverrunHalfPoints
	default:
		return h.config.OverrunFloorPoints
	}
}

// checkEligibility tags the college independently of its match score.
func (h *Handler) checkEligibility(college models.College, profile *models.StudentProfile) models.EligibilityStatus {
	relevant := college.CoursesForStream(profile.Stream)
	if len(relevant) == 0 {
		return models.EligibilityStreamMismatch
	}

	for _, course := range relevant {
		if course.Eligibility.MinimumPercentage == 0 ||
			profile.Percentage >= course.Eligibility.MinimumPercentage {
			return models.EligibilityEligible
		}
	}
	return models.EligibilityBelowCutoff
}

// matchCourses scores standalone catalog courses for post-12th guidance:
// required subjects, academic record and skill alignment.
func (h *Handler) matchCourses(courses []models.Course, profile *models.StudentProfile, subjects []SubjectMark) []CourseMatch {
	matches := make([]CourseMatch, 0, len(courses))
	for _, course := range courses {
		score := h.courseMatchScore(course, profile, subjects)
		if score > h.config.MinCourseScore {
			matches = append(matches, CourseMatch{Course: course, MatchScore: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > h.config.MaxCourses {
		matches = matches[:h.config.MaxCourses]
	}
	return matches
}

func (h *Handler) courseMatchScore(course models.Course, profile *models.StudentProfile, subjects []SubjectMark) int {
	var score float64

	if len(course.Eligibility.RequiredSubjects) > 0 && hasRequiredSubjects(course.Eligibility.RequiredSubjects, subjects) {
		score += 40
	}

	if minMarks := course.Eligibility.MinimumMarks; minMarks > 0 {
		if profile.Percentage >= minMarks {
			score += 30
		} else {
			score += (profile.Percentage / minMarks) * 30
		}
	} else {
		score += 30
	}

	score += h.skillAlignment(profile.Scores, course.Skills) * 0.3

	return int(math.Min(score, 100))
}

func hasRequiredSubjects(required []string, subjects []SubjectMark) bool {
	for _, req := range required {
		found := false
		for _, s := range subjects {
			if strings.Contains(strings.ToLower(s.Name), strings.ToLower(req)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (h *Handler) skillAlignment(scores models.ScoreVector, skills models.CourseSkills) float64 {
	var match float64
	if scores.Get(models.CategoryTechnical) > 70 && len(skills.Technical) > 0 {
		match += 30
	}
	if scores.Get(models.CategoryCommunication) > 70 && containsFold(skills.Soft, "Communication") {
		match += 20
	}
	return math.Min(match, 100)
}

func containsFold(items []string, target string) bool {
	for _, item := range items {
		if strings.EqualFold(item, target) {
			return true
		}
	}
	return false
}

func (h *Handler) getCollegesByCity(ctx context.Context, city string) ([]models.College, error) {
	cacheKey := "colleges:city:" + strings.ToLower(city)
	if h.redis != nil {
		if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
			var colleges []models.College
			if err := json.Unmarshal([]byte(val), &colleges); err == nil {
				return colleges, nil
			}
		}
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, short_name, type, city, state, courses, ratings, placement_stats, website
		FROM colleges
		WHERE LOWER(city) = LOWER($1) AND is_active
		ORDER BY (ratings->>'overall')::float DESC
		LIMIT $2`, city, h.config.MaxColleges)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colleges []models.College
	for rows.Next() {
		var c models.College
		var courses, ratings, placement []byte
		var website sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.ShortName, &c.Type,
			&c.Location.City, &c.Location.State,
			&courses, &ratings, &placement, &website); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(courses, &c.Courses)
		_ = json.Unmarshal(ratings, &c.Ratings)
		_ = json.Unmarshal(placement, &c.PlacementStats)
		c.Website = website.String
		colleges = append(colleges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if h.redis != nil {
		data, _ := json.Marshal(colleges)
		h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)
	}

	return colleges, nil
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
