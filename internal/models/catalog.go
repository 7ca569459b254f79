// internal/models/catalog.go
package models

// Stream names used across the catalog.
const (
	StreamScience  = "Science"
	StreamCommerce = "Commerce"
	StreamArts     = "Arts"
)

// College types, ordered by the stated institutional preference policy.
const (
	CollegeTypeGovernment = "Government"
	CollegeTypeCentral    = "Central"
	CollegeTypeDeemed     = "Deemed"
	CollegeTypePrivate    = "Private"
)

type EducationPath struct {
	Level  string   `json:"level"`
	Fields []string `json:"fields"`
}

type RequiredSkill struct {
	Skill      string `json:"skill"`
	Importance int    `json:"importance"`
}

type SalaryBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type SalaryRange struct {
	Entry SalaryBand `json:"entry"`
	Mid   SalaryBand `json:"mid,omitempty"`
}

type CareerGrowth struct {
	Demand         string `json:"demand"`
	FutureScope    string `json:"futureScope,omitempty"`
	AutomationRisk string `json:"automationRisk,omitempty"`
}

// Career is a catalog entity matched against student profiles.
// AptitudeMapping holds the required 0-100 score per category.
type Career struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Category        string               `json:"category"`
	Description     string               `json:"description,omitempty"`
	AptitudeMapping map[Category]float64 `json:"aptitudeMapping,omitempty"`
	EducationPath   []EducationPath      `json:"educationPath,omitempty"`
	RequiredSkills  []RequiredSkill      `json:"requiredSkills,omitempty"`
	SalaryRange     SalaryRange          `json:"salaryRange,omitempty"`
	Growth          CareerGrowth         `json:"growth,omitempty"`
}

type Location struct {
	City  string `json:"city"`
	State string `json:"state"`
}

type Fees struct {
	Annual int `json:"annual"`
}

type CourseEligibility struct {
	Streams           []string `json:"stream,omitempty"`
	MinimumPercentage float64  `json:"minimumPercentage,omitempty"`
	MinimumMarks      float64  `json:"minimumMarks,omitempty"`
	RequiredSubjects  []string `json:"requiredSubjects,omitempty"`
	EntranceExams     []string `json:"entranceExams,omitempty"`
}

type CourseSkills struct {
	Technical []string `json:"technical,omitempty"`
	Soft      []string `json:"soft,omitempty"`
}

// Course is either a standalone catalog record or an offering embedded in a
// College.
type Course struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name"`
	Category    string            `json:"category,omitempty"`
	Type        string            `json:"type,omitempty"`
	Eligibility CourseEligibility `json:"eligibility"`
	Fees        Fees              `json:"fees,omitempty"`
	Skills      CourseSkills      `json:"skills,omitempty"`
}

type CollegeRatings struct {
	Overall   float64 `json:"overall"`
	Placement float64 `json:"placement,omitempty"`
}

type PlacementStats struct {
	PlacementPercentage float64 `json:"placementPercentage"`
	AveragePackage      int     `json:"averagePackage,omitempty"`
}

type College struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	ShortName      string         `json:"shortName,omitempty"`
	Type           string         `json:"type"`
	Location       Location       `json:"location"`
	Courses        []Course       `json:"courses,omitempty"`
	Ratings        CollegeRatings `json:"ratings"`
	PlacementStats PlacementStats `json:"placementStats,omitempty"`
	Website        string         `json:"website,omitempty"`
}

// CoursesForStream returns the college's courses open to the given stream.
func (c College) CoursesForStream(stream string) []Course {
	var out []Course
	for _, course := range c.Courses {
		for _, s := range course.Eligibility.Streams {
			if s == stream {
				out = append(out, course)
				break
			}
		}
	}
	return out
}
