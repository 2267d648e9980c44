package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes error response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// ParseQueryString extracts a string query parameter
func ParseQueryString(r *http.Request, key string, defaultVal string) string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// ParseQueryID extracts an optional positive id query parameter.
// A missing parameter yields nil.
func ParseQueryID(r *http.Request, key string) (*int64, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return nil, nil
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil || val <= 0 {
		return nil, fmt.Errorf("invalid %s: %s", key, str)
	}
	return &val, nil
}

// ParseQueryIDOrError extracts an optional id and writes error on failure
func ParseQueryIDOrError(w http.ResponseWriter, r *http.Request, key string) (*int64, bool) {
	val, err := ParseQueryID(r, key)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return nil, false
	}
	return val, true
}
