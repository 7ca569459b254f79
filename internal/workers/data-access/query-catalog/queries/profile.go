// internal/workers/data-access/query-catalog/queries/profile.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func StudentProfileByUser(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	userID, ok := params["userId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var uid, stage, stream, city, state string
	var percentage float64
	var budgetMin, budgetMax sql.NullInt64
	var interests, assessmentScores []byte

	err := db.QueryRowContext(ctx, `
		SELECT user_id, stage, stream, percentage, city, state,
		       budget_min, budget_max, interests, assessment_scores
		FROM student_profiles
		WHERE user_id = $1`, userID).Scan(
		&uid, &stage, &stream, &percentage, &city, &state,
		&budgetMin, &budgetMax, &interests, &assessmentScores,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"userId":     uid,
		"stage":      stage,
		"stream":     stream,
		"percentage": percentage,
		"location": map[string]interface{}{
			"city":  city,
			"state": state,
		},
		"budget": map[string]interface{}{
			"min": budgetMin.Int64,
			"max": budgetMax.Int64,
		},
		"interests":        decodeJSON(interests),
		"assessmentScores": decodeJSON(assessmentScores),
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
