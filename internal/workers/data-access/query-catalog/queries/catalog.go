// internal/workers/data-access/query-catalog/queries/catalog.go
package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

func QuestionsByAssessment(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	assessmentID, ok := params["assessmentId"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT q.id, q.type, q.category, q.text, q.options, q.difficulty
		FROM questions q
		JOIN assessment_questions aq ON aq.question_id = q.id
		WHERE aq.assessment_id = $1
		ORDER BY aq.position`, assessmentID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, questionType, category, text string
		var options []byte
		var difficulty int
		err := rows.Scan(&id, &questionType, &category, &text, &options, &difficulty)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":         id,
			"type":       questionType,
			"category":   category,
			"text":       text,
			"options":    decodeJSON(options),
			"difficulty": difficulty,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func CareersAll(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, title, category, description, aptitude_mapping,
		       education_path, required_skills, salary_range, growth
		FROM careers
		WHERE is_active
		ORDER BY title`)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, title, category, description string
		var aptitudeMapping, educationPath, requiredSkills, salaryRange, growth []byte
		err := rows.Scan(&id, &title, &category, &description,
			&aptitudeMapping, &educationPath, &requiredSkills, &salaryRange, &growth)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":              id,
			"title":           title,
			"category":        category,
			"description":     description,
			"aptitudeMapping": decodeJSON(aptitudeMapping),
			"educationPath":   decodeJSON(educationPath),
			"requiredSkills":  decodeJSON(requiredSkills),
			"salaryRange":     decodeJSON(salaryRange),
			"growth":          decodeJSON(growth),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func CollegesByCity(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	city, ok := params["city"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, short_name, type, city, state, courses,
		       ratings, placement_stats, website
		FROM colleges
		WHERE LOWER(city) = LOWER($1) AND is_active
		ORDER BY (ratings->>'overall')::float DESC`, city)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results, err := scanColleges(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func CollegesByStream(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	stream, ok := params["stream"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, short_name, type, city, state, courses,
		       ratings, placement_stats, website
		FROM colleges
		WHERE is_active AND courses::text ILIKE '%' || $1 || '%'
		ORDER BY (ratings->>'overall')::float DESC`, stream)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	results, err := scanColleges(rows)
	if err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func CoursesByCategory(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	category, ok := params["category"].(string)
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, category, duration, eligibility, career_prospects
		FROM courses
		WHERE category = $1
		ORDER BY name`, category)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, name, courseCategory, duration string
		var eligibility, careerProspects []byte
		err := rows.Scan(&id, &name, &courseCategory, &duration, &eligibility, &careerProspects)
		if err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"id":              id,
			"name":            name,
			"category":        courseCategory,
			"duration":        duration,
			"eligibility":     decodeJSON(eligibility),
			"careerProspects": decodeJSON(careerProspects),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}

func scanColleges(rows *sql.Rows) ([]map[string]interface{}, error) {
	var results []map[string]interface{}
	for rows.Next() {
		var id, name, collegeType, city, state string
		var shortName, website sql.NullString
		var courses, ratings, placementStats []byte
		err := rows.Scan(&id, &name, &shortName, &collegeType, &city, &state,
			&courses, &ratings, &placementStats, &website)
		if err != nil {
			return nil, err
		}
		results = append(results, map[string]interface{}{
			"id":             id,
			"name":           name,
			"shortName":      shortName.String,
			"type":           collegeType,
			"city":           city,
			"state":          state,
			"courses":        decodeJSON(courses),
			"ratings":        decodeJSON(ratings),
			"placementStats": decodeJSON(placementStats),
			"website":        website.String,
		})
	}
	return results, rows.Err()
}

// decodeJSON turns a JSONB column into a generic value; malformed or empty
// payloads come back as nil rather than failing the whole query.
func decodeJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
