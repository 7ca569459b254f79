// internal/workers/ai-guidance/generate-recommendations/handler.go
package generaterecommendations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/models"
)

const (
	TaskType = "generate-recommendations"
)

var (
	ErrLLMTimeout           = errors.New("LLM_TIMEOUT")
	ErrLLMGenerationFailed  = errors.New("LLM_GENERATION_FAILED")
	ErrLLMResponseMalformed = errors.New("LLM_RESPONSE_MALFORMED")
)

type Handler struct {
	config *Config
	client *http.Client
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		// No client-level timeout; the request context carries the deadline.
		client: &http.Client{},
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
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrLLMTimeout) || errors.Is(err, ErrLLMGenerationFailed) {
			retries = 1
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	prompt := h.buildPrompt(input)
	requestBody := map[string]interface{}{
		"prompt": prompt,
		"context": map[string]interface{}{
			"profile":        input.Profile,
			"catalogMatches": input.CatalogMatches,
			"stage":          input.Stage,
		},
		"max_tokens":  h.config.MaxTokens,
		"temperature": h.config.Temperature,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrLLMTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", h.config.GenAIBaseURL+"/api/ai/generate", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLLMGenerationFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = h.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrLLMTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrLLMTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrLLMGenerationFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrLLMGenerationFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text            string                     `json:"text"`
		Recommendations []models.ExternalCandidate `json:"recommendations"`
		Model           string                     `json:"model"`
		Confidence      float64                    `json:"confidence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrLLMResponseMalformed, err)
	}

	candidates := apiResponse.Recommendations
	if len(candidates) == 0 && apiResponse.Text != "" {
		parsed, err := parseCandidates(apiResponse.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLLMResponseMalformed, err)
		}
		candidates = parsed
	}

	candidates = h.sanitize(candidates)

	if apiResponse.Confidence < 0.0 || apiResponse.Confidence > 1.0 {
		apiResponse.Confidence = 0.5
	}

	h.logger.Info("recommendation generation completed", map[string]interface{}{
		"userId":     input.UserID,
		"candidates": len(candidates),
		"model":      apiResponse.Model,
	})

	return &Output{
		Candidates: candidates,
		Model:      apiResponse.Model,
		Confidence: apiResponse.Confidence,
	}, nil
}

// parseCandidates recovers a candidate list from a free-text model reply.
// Models often wrap JSON in markdown fences; strip those before decoding.
func parseCandidates(text string) ([]models.ExternalCandidate, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var candidates []models.ExternalCandidate
	if err := json.Unmarshal([]byte(cleaned), &candidates); err != nil {
		var wrapper struct {
			Recommendations []models.ExternalCandidate `json:"recommendations"`
		}
		if werr := json.Unmarshal([]byte(cleaned), &wrapper); werr != nil || len(wrapper.Recommendations) == 0 {
			return nil, err
		}
		candidates = wrapper.Recommendations
	}
	return candidates, nil
}

// sanitize drops unusable candidates and fills safe defaults.
func (h *Handler) sanitize(candidates []models.ExternalCandidate) []models.ExternalCandidate {
	cleaned := make([]models.ExternalCandidate, 0, len(candidates))
	for _, c := range candidates {
		if strings.TrimSpace(c.Title) == "" {
			continue
		}
		if c.MatchPercentage <= 0 || c.MatchPercentage > 100 {
			c.MatchPercentage = 75
		}
		cleaned = append(cleaned, c)
		if len(cleaned) == h.config.MaxCandidates {
			break
		}
	}
	return cleaned
}

func (h *Handler) buildPrompt(input *Input) string {
	var parts []string

	parts = append(parts, "You are a career guidance counselor for Indian students. Suggest careers based ONLY on the provided profile and assessment data.")

	if input.Profile != nil {
		profileJSON, _ := json.MarshalIndent(input.Profile, "", "  ")
		parts = append(parts, "\nStudent Profile:")
		parts = append(parts, string(profileJSON))
	}

	if len(input.CatalogMatches) > 0 {
		parts = append(parts, "\nCareers already matched from our catalog (do not repeat these):")
		for _, m := range input.CatalogMatches {
			parts = append(parts, fmt.Sprintf("- %s (%d%%)", m.Career.Title, m.MatchPercentage))
		}
	}

	if len(input.FocusAreas) > 0 {
		parts = append(parts, "\nFocus areas: "+strings.Join(input.FocusAreas, ", "))
	}

	parts = append(parts, "\nInstructions:")
	parts = append(parts, fmt.Sprintf("- Suggest up to %d additional careers as a JSON array", h.config.MaxCandidates))
	parts = append(parts, `- Each entry needs: title, category, matchPercentage, reasoning, educationPath, skills, salaryRange, demand, futureScope, roadmap`)
	parts = append(parts, "- matchPercentage must be an integer between 0 and 100")
	parts = append(parts, "- Return only the JSON array, no prose")

	return strings.Join(parts, "\n")
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrLLMTimeout) {
		errorCode = "LLM_TIMEOUT"
	} else if errors.Is(err, ErrLLMGenerationFailed) {
		errorCode = "LLM_GENERATION_FAILED"
	} else if errors.Is(err, ErrLLMResponseMalformed) {
		errorCode = "LLM_RESPONSE_MALFORMED"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
		"retries":   retries,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
