// internal/workers/data-access/search-colleges/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// CollegeQuery defines the structure of a search request.
type CollegeQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	CollegeID  string
	Stream     string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters.
func BuildQuery(eq CollegeQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case "college_search":
		queryBody = buildCollegeSearchQuery(eq)
	case "similar_colleges":
		queryBody = buildSimilarCollegesQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{eq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &eq.Pagination.From,
		Size:   &eq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildCollegeSearchQuery assembles the main college search query from the
// free-form filters the workflow passes through.
func buildCollegeSearchQuery(eq CollegeQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search
	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "short_name^2", "courses.name"},
				"type":   "best_fields",
			},
		})
	}

	// City / state filters
	if city, ok := eq.Filters["city"].(string); ok && city != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"city": strings.ToLower(city)},
		})
	}
	if state, ok := eq.Filters["state"].(string); ok && state != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"state": strings.ToLower(state)},
		})
	}

	// Institution type filter
	if collegeType, ok := eq.Filters["type"].(string); ok && collegeType != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"type": collegeType},
		})
	}

	// Stream filter, either from the filters map or the dedicated field
	stream := eq.Stream
	if s, ok := eq.Filters["stream"].(string); ok && s != "" {
		stream = s
	}
	if stream != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"match": map[string]interface{}{"courses.stream": stream},
		})
	}

	// Annual fee ceiling
	if feeRange, ok := eq.Filters["feeRange"].(map[string]interface{}); ok {
		if maxRaw, exists := feeRange["max"]; exists {
			if maxVal := toFloat(maxRaw); maxVal > 0 {
				filterClauses = append(filterClauses, map[string]interface{}{
					"range": map[string]interface{}{
						"courses.fees.annual": map[string]interface{}{"lte": maxVal},
					},
				})
			}
		}
		if minRaw, exists := feeRange["min"]; exists {
			if minVal := toFloat(minRaw); minVal > 0 {
				filterClauses = append(filterClauses, map[string]interface{}{
					"range": map[string]interface{}{
						"courses.fees.annual": map[string]interface{}{"gte": minVal},
					},
				})
			}
		}
	}

	// Minimum overall rating
	if minRating, ok := eq.Filters["minRating"]; ok {
		if v := toFloat(minRating); v > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{
					"ratings.overall": map[string]interface{}{"gte": v},
				},
			})
		}
	}

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	if sortBy, ok := eq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "rating":
			query["sort"] = []map[string]interface{}{{"ratings.overall": "desc"}}
		case "placement":
			query["sort"] = []map[string]interface{}{{"placement_stats.placementPercentage": "desc"}}
		case "name":
			query["sort"] = []map[string]interface{}{{"name.keyword": "asc"}}
		}
	}

	return query
}

// buildSimilarCollegesQuery builds a "colleges like this one" query.
func buildSimilarCollegesQuery(eq CollegeQuery) map[string]interface{} {
	if eq.CollegeID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "courses.name", "type"},
				"like": []map[string]interface{}{
					{"_index": eq.Index, "_id": eq.CollegeID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}

func toFloat(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
