package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *string
	}{
		{"absent", `{}`, nil},
		{"null", `{"assignedUser":null}`, strPtr("")},
		{"empty", `{"assignedUser":""}`, strPtr("")},
		{"value", `{"assignedUser":"abc"}`, strPtr("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateTaskRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.ToInput().AssignedUser)
		})
	}

	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"assignedUser":null}`), &req))
	assert.True(t, req.AssignedUser.Null)
	assert.Error(t, json.Unmarshal([]byte(`{"assignedUser":1}`), &req))
}

func TestWithWarning(t *testing.T) {
	assert.Equal(t, "Create task success", WithWarning("Create task success", ""))
	assert.Equal(t, "Create task success: Warning(x)", WithWarning("Create task success", "x"))
}

func strPtr(s string) *string { return &s }
