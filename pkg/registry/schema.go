// pkg/registry/schema.go

// Package registry loads the activity catalog that describes every guidance
// worker: its task type, JSON input/output schemas, error codes and the
// workflows that call it. The worker manager validates job variables against
// these schemas before a handler runs.
package registry

// ActivityRegistry is the root of configs/activity-registry.json.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one worker. InputSchema and OutputSchema are raw JSON
// Schema documents; Timeout is a duration string, kept as written so the
// registry file round-trips unchanged.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}
