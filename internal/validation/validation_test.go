package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-user-api/internal/dto"
	"github.com/yukikurage/task-user-api/internal/services"
)

func decode(t *testing.T, raw string, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(raw), v))
}

func TestCreateTaskRequest(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"valid", `{"name":"T1","deadline":"2030-01-01T00:00:00Z"}`, nil},
		{"valid assignee", `{"name":"T1","deadline":"2030-01-01T00:00:00Z","assignedUser":"507f1f77bcf86cd799439011"}`, nil},
		{"null assignee", `{"name":"T1","deadline":"2030-01-01T00:00:00Z","assignedUser":null}`, nil},
		{"empty assignee", `{"name":"T1","deadline":"2030-01-01T00:00:00Z","assignedUser":""}`, nil},
		{"missing fields", `{}`, []string{"name", "deadline"}},
		{"bad assignee", `{"name":"T1","deadline":"2030-01-01T00:00:00Z","assignedUser":"abc"}`, []string{"assignedUser"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.CreateTaskRequest
			decode(t, tt.body, &req)

			err := v.Struct(&req)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verr *services.ValidationError
			require.ErrorAs(t, err, &verr)
			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestUpdateUserRequest(t *testing.T) {
	v := New()

	var req dto.UpdateUserRequest
	decode(t, `{}`, &req)
	assert.NoError(t, v.Struct(&req))

	decode(t, `{"pendingTasks":[]}`, &req)
	assert.NoError(t, v.Struct(&req))

	req = dto.UpdateUserRequest{}
	decode(t, `{"name":"","email":"nope","pendingTasks":["507f1f77bcf86cd799439011","bad"]}`, &req)
	var verr *services.ValidationError
	require.ErrorAs(t, v.Struct(&req), &verr)

	messages := map[string]string{}
	for _, f := range verr.Fields {
		messages[f.Field] = f.Message
	}
	assert.Equal(t, `"name" is not allowed to be empty`, messages["name"])
	assert.Equal(t, `"email" must be a valid email`, messages["email"])
	assert.Equal(t, `"pendingTasks[1]" must be a valid id`, messages["pendingTasks[1]"])
}

func TestIsObjectID(t *testing.T) {
	assert.True(t, IsObjectID("507f1f77bcf86cd799439011"))
	assert.False(t, IsObjectID("507f1f77bcf86cd79943901"))
	assert.False(t, IsObjectID("zzzzzzzzzzzzzzzzzzzzzzzz"))
}
