// internal/workers/guidance/merge-recommendations/handler.go
package mergerecommendations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	TaskType = "merge-recommendations"
)

var (
	ErrRecommendationFailed = errors.New("RECOMMENDATION_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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
		h.failJob(client, job, "RECOMMENDATION_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	profile := input.Profile
	if profile == nil {
		profile = &models.StudentProfile{}
	}

	top := make([]models.CareerMatch, len(input.CatalogMatches))
	copy(top, input.CatalogMatches)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].MatchPercentage > top[j].MatchPercentage
	})
	if len(top) > h.config.TopCatalogMatches {
		top = top[:h.config.TopCatalogMatches]
	}

	colleges, err := h.enrichColleges(ctx, top, profile)
	if err != nil {
		return nil, fmt.Errorf("college enrichment: %w", err)
	}

	merged := make([]models.Recommendation, 0, h.config.MaxMerged)
	seenTitles := make(map[string]bool)

	for i, match := range top {
		if seenTitles[match.Career.Title] {
			continue
		}
		seenTitles[match.Career.Title] = true

		merged = append(merged, models.Recommendation{
			ItemID:          match.Career.ID,
			ItemType:        "career",
			Title:           match.Career.Title,
			Category:        match.Career.Category,
			Description:     match.Career.Description,
			MatchPercentage: match.MatchPercentage,
			Reasoning:       h.reasoning(match, profile),
			EducationPath:   match.Career.EducationPath,
			RequiredSkills:  skillNames(match.Career.RequiredSkills),
			SalaryRange:     match.Career.SalaryRange,
			Growth:          match.Career.Growth,
			CollegesInCity:  colleges[i],
			Pros:            h.pros(match.Career),
			Cons:            h.cons(match.Career),
			ActionSteps:     h.actionSteps(match.Career),
		})
	}

	for _, candidate := range input.ExternalCandidates {
		if len(merged) >= h.config.MaxMerged {
			break
		}
		if candidate.Title == "" || seenTitles[candidate.Title] {
			continue
		}
		seenTitles[candidate.Title] = true

		matchPercentage := candidate.MatchPercentage
		if matchPercentage == 0 {
			matchPercentage = h.config.DefaultExternalMatch
		}

		rec := models.Recommendation{
			ItemType:        "career",
			Title:           candidate.Title,
			Category:        candidate.Category,
			MatchPercentage: matchPercentage,
			EducationPath:   candidate.EducationPath,
			RequiredSkills:  candidate.Skills,
			SalaryRange:     candidate.SalaryRange,
			Growth: models.CareerGrowth{
				Demand:      candidate.Demand,
				FutureScope: candidate.FutureScope,
			},
			ActionSteps: candidate.Roadmap,
		}
		if candidate.Reasoning != "" {
			rec.Reasoning = []string{candidate.Reasoning}
		}
		merged = append(merged, rec)
	}

	output := &Output{Recommendations: merged}

	if input.Persist && h.db != nil && input.UserID != "" {
		id, err := h.persist(ctx, input, merged)
		if err != nil {
			return nil, fmt.Errorf("persist recommendation: %w", err)
		}
		output.RecommendationID = id
	}

	h.logger.Info("recommendations merged", map[string]interface{}{
		"userId":   input.UserID,
		"catalog":  len(top),
		"external": len(input.ExternalCandidates),
		"merged":   len(merged),
	})

	return output, nil
}

// enrichColleges fetches the colleges-in-city enrichment for every catalog
// match concurrently. Lookups are independent; the first failure wins.
func (h *Handler) enrichColleges(ctx context.Context, matches []models.CareerMatch, profile *models.StudentProfile) ([][]models.CollegeSummary, error) {
	results := make([][]models.CollegeSummary, len(matches))
	if h.db == nil || profile.Location.City == "" {
		return results, nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(matches))

	for i, match := range matches {
		wg.Add(1)
		go func(i int, career models.Career) {
			defer wg.Done()
			summaries, err := h.collegesForCareer(ctx, career, profile.Location.City)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = summaries
		}(i, match.Career)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (h *Handler) collegesForCareer(ctx context.Context, career models.Career, city string) ([]models.CollegeSummary, error) {
	var fields []string
	for _, path := range career.EducationPath {
		fields = append(fields, path.Fields...)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	// ILIKE ANY keeps field text literal; a regex-style pattern would let
	// characters like ( ) | % corrupt the match.
	patterns := make([]string, len(fields))
	for i, field := range fields {
		patterns[i] = "%" + field + "%"
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT name, type, (ratings->>'overall')::float,
		       (placement_stats->>'placementPercentage')::float,
		       (placement_stats->>'averagePackage')::int
		FROM colleges
		WHERE LOWER(city) = LOWER($1)
		  AND is_active
		  AND courses::text ILIKE ANY($2)
		ORDER BY (ratings->>'placement')::float DESC NULLS LAST
		LIMIT $3`, city, pq.Array(patterns), h.config.CollegeLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.CollegeSummary
	for rows.Next() {
		var s models.CollegeSummary
		var placement sql.NullFloat64
		var pkg sql.NullInt64
		if err := rows.Scan(&s.Name, &s.Type, &s.Rating, &placement, &pkg); err != nil {
			return nil, err
		}
		s.PlacementPercentage = placement.Float64
		s.AveragePackage = int(pkg.Int64)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (h *Handler) reasoning(match models.CareerMatch, profile *models.StudentProfile) []string {
	var reasons []string

	if match.MatchPercentage >= 80 {
		reasons = append(reasons, fmt.Sprintf("Excellent match (%d%%) based on your aptitude profile", match.MatchPercentage))
	}
	if profile.Scores.Get(models.CategoryTechnical) >= 70 &&
		match.Career.AptitudeMapping[models.CategoryTechnical] >= 70 {
		reasons = append(reasons, "Strong technical skills align well with this career")
	}
	if profile.Stream == models.StreamScience && match.Career.Category == "Engineering" {
		reasons = append(reasons, "Your Science background is ideal for this field")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Good match based on your profile")
	}
	return reasons
}

func (h *Handler) pros(career models.Career) []string {
	pros := []string{}
	if career.Growth.Demand == "High" {
		pros = append(pros, "High demand in job market")
	}
	if career.SalaryRange.Entry.Max >= h.config.HighSalaryEntry {
		pros = append(pros, "Excellent starting salary potential")
	}
	if career.Growth.AutomationRisk == "Low" {
		pros = append(pros, "Low risk of automation")
	}
	return pros
}

func (h *Handler) cons(career models.Career) []string {
	cons := []string{}
	if career.Growth.Demand == "Low" {
		cons = append(cons, "Limited job opportunities")
	}
	if career.Growth.AutomationRisk == "High" {
		cons = append(cons, "High automation risk")
	}
	return cons
}

func (h *Handler) actionSteps(career models.Career) []string {
	var steps []string

	if len(career.EducationPath) > 0 {
		path := career.EducationPath[0]
		steps = append(steps, fmt.Sprintf("Pursue %s in %s", path.Level, strings.Join(path.Fields, " or ")))
	}
	steps = append(steps, "Prepare for relevant entrance exams")

	var topSkills []string
	for _, skill := range career.RequiredSkills {
		if skill.Importance >= h.config.SkillImportanceCutoff {
			topSkills = append(topSkills, skill.Skill)
			if len(topSkills) == h.config.MaxActionSkills {
				break
			}
		}
	}
	if len(topSkills) > 0 {
		steps = append(steps, "Develop skills: "+strings.Join(topSkills, ", "))
	}

	steps = append(steps, "Gain practical experience through internships")
	return steps
}

func (h *Handler) persist(ctx context.Context, input *Input, merged []models.Recommendation) (string, error) {
	payload, err := json.Marshal(merged)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO recommendations (id, user_id, stage, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, input.UserID, input.Stage, "career", payload, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

func skillNames(skills []models.RequiredSkill) []string {
	if len(skills) == 0 {
		return nil
	}
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Skill
	}
	return names
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
