// internal/workers/guidance/match-colleges/models.go
package matchcolleges

import "guidance-workers/internal/models"

type SubjectMark struct {
	Name  string  `json:"name"`
	Marks float64 `json:"marks"`
}

type Input struct {
	UserID   string                 `json:"userId,omitempty"`
	Profile  *models.StudentProfile `json:"profile,omitempty"`
	Colleges []models.College       `json:"colleges,omitempty"`
	Courses  []models.Course        `json:"courses,omitempty"`
	Subjects []SubjectMark          `json:"subjects,omitempty"`
}

type CollegeMatch struct {
	College           models.College           `json:"college"`
	MatchScore        int                      `json:"matchScore"`
	EligibilityStatus models.EligibilityStatus `json:"eligibilityStatus"`
}

type CourseMatch struct {
	Course     models.Course `json:"course"`
	MatchScore int           `json:"matchScore"`
}

type Output struct {
	Colleges       []CollegeMatch `json:"colleges"`
	Courses        []CourseMatch  `json:"courses,omitempty"`
	TotalEvaluated int            `json:"totalEvaluated"`
}
