package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/auth"
	"github.com/platinummonkey/tally/pkg/middleware"
	"github.com/platinummonkey/tally/pkg/reports"
	"github.com/platinummonkey/tally/pkg/storage"
	"github.com/platinummonkey/tally/pkg/storage/memory"
)

const (
	testSecret = "test-secret"
	testIssuer = "community"

	adminID   int64 = 1
	authorID  int64 = 2
	readerID  int64 = 3
	postID    int64 = 42
	missingID int64 = 99
)

var fixedNow = time.Date(2024, 8, 31, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	server      *Server
	handler     http.Handler
	tokens      *auth.TokenManager
	hook        *test.Hook
	artifactDir string
}

func setupTestServer(t *testing.T, limiter middleware.Limiter) *testEnv {
	t.Helper()

	store := memory.NewStore()
	store.AddUser(adminID, auth.RoleAdmin)
	store.AddUser(authorID, auth.RoleRegular)
	store.AddUser(readerID, auth.RoleRegular)
	store.AddPost(postID, authorID, time.Date(2024, 8, 30, 10, 0, 0, 0, time.UTC))
	store.AddLike(readerID, postID, time.Date(2024, 8, 31, 9, 0, 0, 0, time.UTC))
	store.AddLike(adminID, postID, time.Date(2024, 8, 31, 9, 30, 0, 0, time.UTC))
	store.AddComment(readerID, postID, time.Date(2024, 8, 30, 11, 0, 0, 0, time.UTC))

	artifactDir := t.TempDir()
	artifacts, err := storage.NewFileSystemArtifactStore(artifactDir, "http://localhost:8080/artifacts")
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	clock := func() time.Time { return fixedNow }
	service := analytics.NewService(store, analytics.AggregatorConfig{QueryTimeout: time.Second}).WithClock(clock)
	exporter := reports.NewExporter(service, artifacts, store, logger).WithClock(clock)
	tokens := auth.NewTokenManager(testSecret, testIssuer, time.Hour)

	server := NewServer(ServerOptions{
		Statistics:    service,
		Reports:       exporter,
		TokenManager:  tokens,
		Logger:        logger,
		ReportLimiter: limiter,
		ArtifactDir:   artifactDir,
	})

	return &testEnv{
		server:      server,
		handler:     server.Handler(),
		tokens:      tokens,
		hook:        hook,
		artifactDir: artifactDir,
	}
}

// do sends a request as the given user; userID 0 sends no token
func (e *testEnv) do(t *testing.T, method, target string, userID int64, role auth.Role, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if userID != 0 {
		token, err := e.tokens.IssueToken(userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) analytics.ActivityReport {
	t.Helper()
	var report analytics.ActivityReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	return report
}

func TestServer_RoutesRegistered(t *testing.T) {
	env := setupTestServer(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/statistics/user-activity"},
		{"GET", "/statistics/post-activity"},
		{"POST", "/reports/generate"},
		{"GET", "/reports/download"},
		{"GET", "/artifacts/reports/2/x.html"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			var match mux.RouteMatch
			assert.True(t, env.server.Router().Match(req, &match), "Route %s %s should be registered", tt.method, tt.path)
		})
	}
}

func TestServer_ReportRoutesSkippedWithoutExporter(t *testing.T) {
	server := NewServer(ServerOptions{
		Statistics:   analytics.NewService(memory.NewStore(), analytics.AggregatorConfig{}),
		TokenManager: auth.NewTokenManager(testSecret, testIssuer, time.Hour),
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest("GET", "/reports/download", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())
}

func TestServer_RequiresAuthentication(t *testing.T) {
	env := setupTestServer(t, nil)

	for _, path := range []string{
		"/statistics/user-activity?period=week&interval=day",
		"/statistics/post-activity?postId=42&period=week&interval=day",
		"/reports/download",
	} {
		t.Run(path, func(t *testing.T) {
			w := env.do(t, "GET", path, 0, 0, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "missing authorization header")
		})
	}
}

func TestServer_RejectsForeignToken(t *testing.T) {
	env := setupTestServer(t, nil)
	foreign := auth.NewTokenManager("other-secret", testIssuer, time.Hour)
	token, err := foreign.IssueToken(authorID, auth.RoleRegular)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/statistics/user-activity?period=week&interval=day", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_SetsRequestID(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, "GET", "/statistics/user-activity?period=week&interval=day", authorID, auth.RoleRegular, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_ServesArtifacts(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, "POST", "/reports/generate", authorID, auth.RoleRegular, `{"period":"week","interval":"day"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var record storage.ReportRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	path := strings.TrimPrefix(record.URL, "http://localhost:8080")
	require.True(t, strings.HasPrefix(path, fmt.Sprintf("/artifacts/reports/%d/", authorID)), path)

	w = env.do(t, "GET", path, 0, 0, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Activity report for user 2")
}

func TestCallerFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	_, ok := callerFromRequest(req)
	assert.False(t, ok)

	env := setupTestServer(t, nil)
	var got analytics.Caller
	handler := middleware.NewAuthMiddleware(env.tokens, false).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = callerFromRequest(r)
	}))

	token, err := env.tokens.IssueToken(adminID, auth.RoleAdmin)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(context.Background()))

	assert.True(t, ok)
	assert.Equal(t, analytics.Caller{ID: adminID, Role: auth.RoleAdmin}, got)
}
