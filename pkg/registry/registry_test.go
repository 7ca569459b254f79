// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestRegistry(t *testing.T) *ActivityRegistry {
	t.Helper()
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	return reg
}

func TestLoadRegistry(t *testing.T) {
	reg := loadTestRegistry(t)

	assert.Equal(t, "1.0.0", reg.Version)
	assert.Len(t, reg.Activities, 9)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry("does-not-exist.json")
	assert.Error(t, err)
}

func TestFindByTaskType(t *testing.T) {
	reg := loadTestRegistry(t)

	activity, ok := reg.FindByTaskType("score-assessment")
	require.True(t, ok)
	assert.Equal(t, "score-assessment", activity.ID)
	assert.NotEmpty(t, activity.InputSchema)

	_, ok = reg.FindByTaskType("no-such-task")
	assert.False(t, ok)
}

func TestActivity_ValidateInput(t *testing.T) {
	reg := loadTestRegistry(t)

	tests := []struct {
		name     string
		taskType string
		input    map[string]interface{}
		wantErr  bool
	}{
		{
			name:     "valid score-assessment variables",
			taskType: "score-assessment",
			input: map[string]interface{}{
				"assessmentId": "a-1",
				"responses":    map[string]interface{}{"q1": map[string]interface{}{"answer": "a"}},
			},
			wantErr: false,
		},
		{
			name:     "missing required responses",
			taskType: "score-assessment",
			input:    map[string]interface{}{"assessmentId": "a-1"},
			wantErr:  true,
		},
		{
			name:     "wrong type for queryType",
			taskType: "query-catalog",
			input:    map[string]interface{}{"queryType": 42},
			wantErr:  true,
		},
		{
			name:     "extra workflow variables pass through",
			taskType: "analyze-result",
			input: map[string]interface{}{
				"scores":             map[string]interface{}{"overall": 70},
				"processInstanceKey": 12345,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activity, ok := reg.FindByTaskType(tt.taskType)
			require.True(t, ok)

			err := activity.ValidateInput(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestActivity_ValidateOutput(t *testing.T) {
	reg := loadTestRegistry(t)

	activity, ok := reg.FindByTaskType("merge-recommendations")
	require.True(t, ok)

	err := activity.ValidateOutput(map[string]interface{}{
		"recommendations": []interface{}{},
	})
	assert.NoError(t, err)

	err = activity.ValidateOutput(map[string]interface{}{"recommendationId": "r-1"})
	assert.Error(t, err, "missing required recommendations field")
}

func TestValidate_NilSchemaPasses(t *testing.T) {
	activity := &Activity{}
	assert.NoError(t, activity.ValidateInput(map[string]interface{}{"anything": true}))
	assert.NoError(t, activity.ValidateOutput(nil))
}
