// internal/models/assessment.go
package models

import (
	"encoding/json"
	"strconv"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionRating         QuestionType = "rating"
	QuestionRanking        QuestionType = "ranking"
	QuestionBoolean        QuestionType = "boolean"
	QuestionText           QuestionType = "text"
)

// Category is one of the fixed aptitude/interest dimensions scored by an
// assessment. Categories is the canonical iteration order; every ScoreVector
// carries all of them.
type Category string

const (
	CategoryAnalytical    Category = "analytical"
	CategoryCreative      Category = "creative"
	CategoryTechnical     Category = "technical"
	CategoryCommunication Category = "communication"
	CategoryLeadership    Category = "leadership"
	CategoryInterest      Category = "interest"
	CategoryPersonality   Category = "personality"
	CategoryAcademic      Category = "academic"
	CategoryIQ            Category = "iq"
)

var Categories = []Category{
	CategoryAnalytical,
	CategoryCreative,
	CategoryTechnical,
	CategoryCommunication,
	CategoryLeadership,
	CategoryInterest,
	CategoryPersonality,
	CategoryAcademic,
	CategoryIQ,
}

// CoreCategories are the five dimensions used for learning-style and
// personality analysis.
var CoreCategories = []Category{
	CategoryAnalytical,
	CategoryCreative,
	CategoryTechnical,
	CategoryCommunication,
	CategoryLeadership,
}

type Option struct {
	Value  string  `json:"value"`
	Weight float64 `json:"weight"`
}

// Question is an immutable catalog record. CorrectAnswer is only meaningful
// for boolean questions; an empty string means the question has no ground
// truth and is treated as a preference probe.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Category      Category     `json:"category"`
	Text          string       `json:"text,omitempty"`
	Options       []Option     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Difficulty    string       `json:"difficulty,omitempty"`
}

// AnswerKind tags the decoded shape of a response payload.
type AnswerKind int

const (
	AnswerInvalid AnswerKind = iota
	AnswerScalar             // numeric rating
	AnswerSelection          // single chosen option value
	AnswerOrdering           // ordered sequence of option values
	AnswerFlag               // boolean
	AnswerText               // free text
)

// Answer is the tagged union for the type-dependent response value. The raw
// JSON is kept and decoded on demand against the question's declared type,
// so a malformed payload degrades to a zero score instead of failing the
// whole submission.
type Answer struct {
	raw json.RawMessage
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	a.raw = append(a.raw[:0], data...)
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.raw == nil {
		return []byte("null"), nil
	}
	return a.raw, nil
}

// NewAnswer builds an Answer from any JSON-marshalable value. Intended for
// tests and in-process callers.
func NewAnswer(v interface{}) Answer {
	raw, _ := json.Marshal(v)
	return Answer{raw: raw}
}

// Scalar decodes the answer as a number. JSON strings containing a number
// are accepted, matching how form submissions arrive.
func (a Answer) Scalar() (float64, AnswerKind) {
	var f float64
	if err := json.Unmarshal(a.raw, &f); err == nil {
		return f, AnswerScalar
	}
	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, AnswerScalar
		}
	}
	return 0, AnswerInvalid
}

// Selection decodes the answer as a single option value.
func (a Answer) Selection() (string, AnswerKind) {
	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		return s, AnswerSelection
	}
	return "", AnswerInvalid
}

// Ordering decodes the answer as an ordered list of option values.
func (a Answer) Ordering() ([]string, AnswerKind) {
	var items []string
	if err := json.Unmarshal(a.raw, &items); err == nil {
		return items, AnswerOrdering
	}
	return nil, AnswerInvalid
}

// Flag decodes the answer as a boolean. "true"/"false" strings are accepted.
func (a Answer) Flag() (bool, AnswerKind) {
	var b bool
	if err := json.Unmarshal(a.raw, &b); err == nil {
		return b, AnswerFlag
	}
	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		if b, err := strconv.ParseBool(s); err == nil {
			return b, AnswerFlag
		}
	}
	return false, AnswerInvalid
}

// Text decodes the answer as free text.
func (a Answer) Text() (string, AnswerKind) {
	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		return s, AnswerText
	}
	return "", AnswerInvalid
}

// Response is one answered question within an assessment attempt. Weight
// defaults to 1 when the assessment's question-weight mapping has no entry.
type Response struct {
	Answer Answer  `json:"answer"`
	Weight float64 `json:"weight,omitempty"`
}

// ScoreVector maps every known category to a 0-100 integer score. All
// category keys are always present; categories with no contributing weight
// stay 0.
type ScoreVector struct {
	Scores  map[Category]int `json:"scores"`
	Overall int              `json:"overall"`
}

// NewScoreVector returns a vector with every category key present at 0.
func NewScoreVector() ScoreVector {
	scores := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		scores[c] = 0
	}
	return ScoreVector{Scores: scores}
}

// Get returns the score for a category, 0 when absent.
func (sv ScoreVector) Get(c Category) int {
	return sv.Scores[c]
}
