package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name:        "valid JSON",
			body:        `{"period": "week"}`,
			expectError: false,
		},
		{
			name:        "invalid JSON",
			body:        `{invalid}`,
			expectError: true,
		},
		{
			name:        "empty body",
			body:        "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/reports/generate", bytes.NewBufferString(tt.body))
			var dest map[string]string

			err := ParseJSON(req, &dest)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "week", dest["period"])
			}
		})
	}
}

func TestParseJSONOrError(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/reports/generate", bytes.NewBufferString(`{invalid}`))
	var dest map[string]string

	ok := ParseJSONOrError(w, req, &dest)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest("GET", "/statistics/user-activity?period=week", nil)

	assert.Equal(t, "week", ParseQueryString(req, "period", ""))
	assert.Equal(t, "day", ParseQueryString(req, "interval", "day"))
}

func TestParseQueryID(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		expectValue *int64
		expectError bool
	}{
		{name: "missing", url: "/x"},
		{name: "empty", url: "/x?userId="},
		{name: "valid", url: "/x?userId=42", expectValue: int64Ptr(42)},
		{name: "not a number", url: "/x?userId=abc", expectError: true},
		{name: "zero", url: "/x?userId=0", expectError: true},
		{name: "negative", url: "/x?userId=-3", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)

			val, err := ParseQueryID(req, "userId")

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectValue, val)
		})
	}
}

func TestParseQueryIDOrError_Invalid(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x?postId=abc", nil)

	val, ok := ParseQueryIDOrError(w, req, "postId")

	assert.False(t, ok)
	assert.Nil(t, val)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid postId")
}

func int64Ptr(v int64) *int64 { return &v }
