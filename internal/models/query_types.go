// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeQuestionsByAssessment QueryType = "questions_by_assessment"
	QueryTypeCareersAll            QueryType = "careers_all"
	QueryTypeCollegesByCity        QueryType = "colleges_by_city"
	QueryTypeCollegesByStream      QueryType = "colleges_by_stream"
	QueryTypeCoursesByCategory     QueryType = "courses_by_category"
	QueryTypeStudentProfile        QueryType = "student_profile"
)
