// internal/workers/assessment/analyze-result/config.go
package analyzeresult

import (
	"time"

	"guidance-workers/internal/models"
)

// Rule is one step of an ordered cascade; the first matching rule wins.
type Rule struct {
	Label   string
	Matches func(models.ScoreVector) bool
}

type categoryDescriptions struct {
	Strength string
	Weakness string
}

// Config carries the insight rule tables. Loaded once at startup and never
// mutated afterwards.
type Config struct {
	Timeout time.Duration

	StrengthThreshold int
	WeaknessThreshold int

	Descriptions map[models.Category]categoryDescriptions
	Improvements map[models.Category][]string

	// LearningStylePriority breaks ties between equally scored categories.
	LearningStylePriority []models.Category
	LearningStyles        map[models.Category]string

	PersonalityRules    []Rule
	RecommendationRules []Rule
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,

		StrengthThreshold: 75,
		WeaknessThreshold: 50,

		Descriptions: map[models.Category]categoryDescriptions{
			models.CategoryAnalytical: {
				Strength: "Excellent problem-solving and logical reasoning abilities",
				Weakness: "May need to develop stronger analytical and critical thinking skills",
			},
			models.CategoryCreative: {
				Strength: "Strong creative thinking and innovative problem-solving skills",
				Weakness: "Could benefit from developing more creative and out-of-the-box thinking",
			},
			models.CategoryTechnical: {
				Strength: "Great aptitude for technical subjects and practical applications",
				Weakness: "May need to strengthen technical and practical skill foundation",
			},
			models.CategoryCommunication: {
				Strength: "Excellent verbal and written communication abilities",
				Weakness: "Could improve communication and interpersonal skills",
			},
			models.CategoryLeadership: {
				Strength: "Natural leadership qualities and team management skills",
				Weakness: "Could develop stronger leadership and team management abilities",
			},
		},

		Improvements: map[models.Category][]string{
			models.CategoryAnalytical: {
				"Practice logical reasoning puzzles daily",
				"Take online courses in critical thinking",
				"Solve mathematical problems regularly",
			},
			models.CategoryCreative: {
				"Engage in creative writing exercises",
				"Try art or design projects",
				"Participate in brainstorming sessions",
			},
			models.CategoryTechnical: {
				"Work on hands-on projects",
				"Learn programming or technical skills",
				"Join technical workshops or labs",
			},
			models.CategoryCommunication: {
				"Practice public speaking",
				"Join debate clubs or discussion groups",
				"Read more books and articles",
			},
			models.CategoryLeadership: {
				"Take initiative in group projects",
				"Volunteer for leadership roles",
				"Study successful leadership examples",
			},
		},

		LearningStylePriority: models.CoreCategories,
		LearningStyles: map[models.Category]string{
			models.CategoryAnalytical:    "Logical Thinker - Prefers structured, step-by-step learning",
			models.CategoryCreative:      "Visual Learner - Benefits from creative and imaginative approaches",
			models.CategoryTechnical:     "Hands-on Learner - Learns best through practical application",
			models.CategoryCommunication: "Social Learner - Thrives in collaborative learning environments",
			models.CategoryLeadership:    "Goal-oriented Learner - Motivated by challenges and leadership roles",
		},

		PersonalityRules: []Rule{
			{Label: "Analytical Problem Solver", Matches: both(models.CategoryAnalytical, models.CategoryTechnical)},
			{Label: "Creative Communicator", Matches: both(models.CategoryCreative, models.CategoryCommunication)},
			{Label: "Natural Leader", Matches: both(models.CategoryLeadership, models.CategoryCommunication)},
			{Label: "Technical Specialist", Matches: single(models.CategoryTechnical)},
			{Label: "Logical Thinker", Matches: single(models.CategoryAnalytical)},
			{Label: "Creative Thinker", Matches: single(models.CategoryCreative)},
		},

		RecommendationRules: []Rule{
			{
				Label:   "Consider engineering or technology-related fields",
				Matches: both(models.CategoryAnalytical, models.CategoryTechnical),
			},
			{
				Label:   "Explore creative fields like design, media, or arts",
				Matches: both(models.CategoryCreative, models.CategoryCommunication),
			},
			{
				Label:   "Business management or entrepreneurship might be suitable",
				Matches: both(models.CategoryLeadership, models.CategoryCommunication),
			},
			{
				Label: "You have versatile abilities - consider interdisciplinary fields",
				Matches: func(sv models.ScoreVector) bool {
					high := 0
					for _, c := range models.Categories {
						if sv.Get(c) > 75 {
							high++
						}
					}
					return high >= 3
				},
			},
		},
	}
}

func single(c models.Category) func(models.ScoreVector) bool {
	return func(sv models.ScoreVector) bool {
		return sv.Get(c) > 75
	}
}

func both(a, b models.Category) func(models.ScoreVector) bool {
	return func(sv models.ScoreVector) bool {
		return sv.Get(a) > 75 && sv.Get(b) > 75
	}
}
