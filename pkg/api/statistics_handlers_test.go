package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/auth"
)

func TestGetUserActivity_Self(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, "GET", "/statistics/user-activity?period=week&interval=day", authorID, auth.RoleRegular, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	report := decodeReport(t, w)
	assert.Equal(t, analytics.SubjectUser, report.Kind)
	require.NotNil(t, report.SubjectID)
	assert.Equal(t, authorID, *report.SubjectID)
	assert.Equal(t, analytics.PeriodWeek, report.Period)
	assert.Equal(t, analytics.IntervalDay, report.Interval)
	assert.Equal(t, []analytics.Bucket{{Label: "2024-08-30", Count: 1}}, report.Statistics[analytics.ActivityPosts])
	assert.Empty(t, report.Statistics[analytics.ActivityLikes])
	assert.Empty(t, report.Statistics[analytics.ActivityComments])
}

func TestGetUserActivity_TypeFilter(t *testing.T) {
	env := setupTestServer(t, nil)

	for _, param := range []string{"types", "type"} {
		t.Run(param, func(t *testing.T) {
			url := fmt.Sprintf("/statistics/user-activity?userId=%d&period=week&interval=hour&%s=likes,bogus", readerID, param)
			w := env.do(t, "GET", url, readerID, auth.RoleRegular, "")

			require.Equal(t, http.StatusOK, w.Code)
			report := decodeReport(t, w)
			assert.Len(t, report.Statistics, 1)
			assert.Equal(t, []analytics.Bucket{{Label: "2024-08-31T09", Count: 1}}, report.Statistics[analytics.ActivityLikes])
		})
	}
}

func TestGetUserActivity_Errors(t *testing.T) {
	env := setupTestServer(t, nil)

	tests := []struct {
		name     string
		url      string
		callerID int64
		role     auth.Role
		status   int
		message  string
	}{
		{
			name:     "other user as regular",
			url:      fmt.Sprintf("/statistics/user-activity?userId=%d&period=week&interval=day", authorID),
			callerID: readerID,
			role:     auth.RoleRegular,
			status:   http.StatusForbidden,
		},
		{
			name:     "missing user as admin",
			url:      fmt.Sprintf("/statistics/user-activity?userId=%d&period=week&interval=day", missingID),
			callerID: adminID,
			role:     auth.RoleAdmin,
			status:   http.StatusNotFound,
		},
		{
			name:     "unknown period",
			url:      "/statistics/user-activity?period=year&interval=day",
			callerID: authorID,
			role:     auth.RoleRegular,
			status:   http.StatusBadRequest,
		},
		{
			name:     "unknown interval",
			url:      "/statistics/user-activity?period=week&interval=minute",
			callerID: authorID,
			role:     auth.RoleRegular,
			status:   http.StatusBadRequest,
		},
		{
			name:     "malformed user id",
			url:      "/statistics/user-activity?userId=abc&period=week&interval=day",
			callerID: authorID,
			role:     auth.RoleRegular,
			status:   http.StatusBadRequest,
			message:  "invalid userId: abc",
		},
		{
			name:     "no valid types",
			url:      "/statistics/user-activity?period=week&interval=day&types=bogus",
			callerID: authorID,
			role:     auth.RoleRegular,
			status:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "GET", tt.url, tt.callerID, tt.role, "")

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
			if tt.message != "" {
				assert.Contains(t, w.Body.String(), tt.message)
			}
		})
	}

	// Client errors are not logged as failures
	for _, entry := range env.hook.AllEntries() {
		assert.NotEqual(t, logrus.ErrorLevel, entry.Level, entry.Message)
	}
}

func TestGetUserActivity_AdminReadsOtherUser(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, "GET", fmt.Sprintf("/statistics/user-activity?userId=%d&period=month&interval=week", readerID), adminID, auth.RoleAdmin, "")

	require.Equal(t, http.StatusOK, w.Code)
	report := decodeReport(t, w)
	require.NotNil(t, report.SubjectID)
	assert.Equal(t, readerID, *report.SubjectID)
	assert.Equal(t, []analytics.Bucket{{Label: "2024-08-25", Count: 1}}, report.Statistics[analytics.ActivityLikes])
	assert.Equal(t, []analytics.Bucket{{Label: "2024-08-25", Count: 1}}, report.Statistics[analytics.ActivityComments])
}

func TestGetPostActivity_Owner(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, "GET", "/statistics/post-activity?postId=42&period=day&interval=hour", authorID, auth.RoleRegular, "")

	require.Equal(t, http.StatusOK, w.Code)
	report := decodeReport(t, w)
	assert.Equal(t, analytics.SubjectPost, report.Kind)
	require.NotNil(t, report.SubjectID)
	assert.Equal(t, postID, *report.SubjectID)
	assert.Equal(t, []analytics.Bucket{{Label: "2024-08-31T09", Count: 2}}, report.Statistics[analytics.ActivityLikes])
	assert.Empty(t, report.Statistics[analytics.ActivityComments])
	_, hasPosts := report.Statistics[analytics.ActivityPosts]
	assert.False(t, hasPosts)
}

func TestGetPostActivity_NoPostID(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, "GET", "/statistics/post-activity?period=week&interval=day", readerID, auth.RoleRegular, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"post","subjectId":null,"period":"week","interval":"day","statistics":{}}`, w.Body.String())
}

func TestGetPostActivity_Errors(t *testing.T) {
	env := setupTestServer(t, nil)

	tests := []struct {
		name     string
		url      string
		callerID int64
		role     auth.Role
		status   int
	}{
		{"non owner", "/statistics/post-activity?postId=42&period=week&interval=day", readerID, auth.RoleRegular, http.StatusForbidden},
		{"missing post", "/statistics/post-activity?postId=99&period=week&interval=day", adminID, auth.RoleAdmin, http.StatusNotFound},
		{"malformed post id", "/statistics/post-activity?postId=x&period=week&interval=day", authorID, auth.RoleRegular, http.StatusBadRequest},
		{"bad period", "/statistics/post-activity?postId=42&period=&interval=day", authorID, auth.RoleRegular, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, "GET", tt.url, tt.callerID, tt.role, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestGetPostActivity_AdminNotOwner(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, "GET", "/statistics/post-activity?postId=42&period=week&interval=day", adminID, auth.RoleAdmin, "")

	require.Equal(t, http.StatusOK, w.Code)
	report := decodeReport(t, w)
	assert.Equal(t, []analytics.Bucket{{Label: "2024-08-31", Count: 2}}, report.Statistics[analytics.ActivityLikes])
	assert.Equal(t, []analytics.Bucket{{Label: "2024-08-30", Count: 1}}, report.Statistics[analytics.ActivityComments])
}

// stubStatistics returns a fixed error from every call
type stubStatistics struct {
	err error
}

func (s stubStatistics) UserActivity(ctx context.Context, caller analytics.Caller, req analytics.UserActivityRequest) (*analytics.ActivityReport, error) {
	return nil, s.err
}

func (s stubStatistics) PostActivity(ctx context.Context, caller analytics.Caller, req analytics.PostActivityRequest) (*analytics.ActivityReport, error) {
	return nil, s.err
}

func TestStatistics_FailureMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
		logged bool
	}{
		{"timeout", analytics.NewTimeoutError("find likes", context.DeadlineExceeded), http.StatusGatewayTimeout, `{"error":"statistics query timed out"}`, true},
		{"internal", analytics.NewInternalError("find likes", errors.New("connection reset")), http.StatusInternalServerError, `{"error":"internal server error"}`, true},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, `{"error":"internal server error"}`, true},
		{"access denied", analytics.NewAccessDeniedError("not your post"), http.StatusForbidden, `{"error":"access denied: not your post"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			tokens := auth.NewTokenManager(testSecret, testIssuer, time.Hour)
			server := NewServer(ServerOptions{
				Statistics:   stubStatistics{err: tt.err},
				TokenManager: tokens,
				Logger:       logger,
			})

			token, err := tokens.IssueToken(authorID, auth.RoleRegular)
			require.NoError(t, err)
			req := httptest.NewRequest("GET", "/statistics/post-activity?postId=42&period=week&interval=day", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())

			if !tt.logged {
				assert.Empty(t, hook.AllEntries())
				return
			}
			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.ErrorLevel, entry.Level)
			assert.Equal(t, postID, entry.Data["subject_id"])
			assert.Equal(t, analytics.PeriodWeek, entry.Data["period"])
			assert.Equal(t, analytics.IntervalDay, entry.Data["interval"])
		})
	}
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForKind(analytics.KindInvalidArgument))
	assert.Equal(t, http.StatusForbidden, statusForKind(analytics.KindAccessDenied))
	assert.Equal(t, http.StatusNotFound, statusForKind(analytics.KindNotFound))
	assert.Equal(t, http.StatusGatewayTimeout, statusForKind(analytics.KindTimeout))
	assert.Equal(t, http.StatusInternalServerError, statusForKind(analytics.KindInternal))
}
