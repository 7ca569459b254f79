// internal/workers/data-access/query-catalog/models.go
package querycatalog

import "guidance-workers/internal/models"

type Input struct {
	QueryType    string                 `json:"queryType"`
	AssessmentID string                 `json:"assessmentId,omitempty"`
	UserID       string                 `json:"userId,omitempty"`
	City         string                 `json:"city,omitempty"`
	Stream       string                 `json:"stream,omitempty"`
	Category     string                 `json:"category,omitempty"`
	Filters      map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

// Export constants for external use
var (
	QueryTypeQuestionsByAssessment = models.QueryTypeQuestionsByAssessment
	QueryTypeCareersAll            = models.QueryTypeCareersAll
	QueryTypeCollegesByCity        = models.QueryTypeCollegesByCity
	QueryTypeCollegesByStream      = models.QueryTypeCollegesByStream
	QueryTypeCoursesByCategory     = models.QueryTypeCoursesByCategory
	QueryTypeStudentProfile        = models.QueryTypeStudentProfile
)
