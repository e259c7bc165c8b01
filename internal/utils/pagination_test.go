package utils

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-user-api/internal/services"
)

func listContext(params url.Values) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/tasks?"+params.Encode(), nil)
	return c
}

func TestGetListParams(t *testing.T) {
	input, err := GetListParams(listContext(nil))
	require.NoError(t, err)
	assert.Nil(t, input.Limit)
	assert.Zero(t, input.Skip)
	assert.False(t, input.Count)

	input, err = GetListParams(listContext(url.Values{
		"where":  {`{"completed":false}`},
		"sort":   {`{"name":1}`},
		"select": {`{"name":1}`},
		"skip":   {"5"},
		"limit":  {"0"},
		"count":  {"TRUE"},
	}))
	require.NoError(t, err)
	assert.Equal(t, `{"completed":false}`, input.Where)
	assert.Equal(t, `{"name":1}`, input.Sort)
	assert.Equal(t, `{"name":1}`, input.Select)
	assert.Equal(t, 5, input.Skip)
	require.NotNil(t, input.Limit)
	assert.Equal(t, 0, *input.Limit)
	assert.True(t, input.Count)
}

func TestGetListParams_FilterAlias(t *testing.T) {
	input, err := GetListParams(listContext(url.Values{"filter": {`{"email":0}`}}))
	require.NoError(t, err)
	assert.Equal(t, `{"email":0}`, input.Select)

	input, err = GetListParams(listContext(url.Values{
		"select": {`{"name":1}`},
		"filter": {`{"email":0}`},
	}))
	require.NoError(t, err)
	assert.Equal(t, `{"name":1}`, input.Select)
}

func TestGetListParams_Invalid(t *testing.T) {
	for _, q := range []url.Values{
		{"skip": {"-1"}},
		{"limit": {"abc"}},
		{"count": {"maybe"}},
	} {
		_, err := GetListParams(listContext(q))
		assert.ErrorIs(t, err, services.ErrValidation, q.Encode())
	}
}
