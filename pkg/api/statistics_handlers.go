package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/httputil"
)

// getUserActivity handles GET /statistics/user-activity
func (s *Server) getUserActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	userID, ok := httputil.ParseQueryIDOrError(w, r, "userId")
	if !ok {
		return
	}

	req := analytics.UserActivityRequest{
		UserID:   userID,
		Period:   analytics.Period(r.URL.Query().Get("period")),
		Interval: analytics.Interval(r.URL.Query().Get("interval")),
		Types:    httputil.ParseQueryString(r, "types", r.URL.Query().Get("type")),
	}

	report, err := s.stats.UserActivity(r.Context(), caller, req)
	if err != nil {
		s.writeServiceError(w, r, err, logrus.Fields{
			"subject_type": analytics.SubjectUser,
			"subject_id":   subjectField(userID, caller.ID),
			"period":       req.Period,
			"interval":     req.Interval,
		})
		return
	}

	httputil.WriteSuccess(w, report)
}

// getPostActivity handles GET /statistics/post-activity
func (s *Server) getPostActivity(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	postID, ok := httputil.ParseQueryIDOrError(w, r, "postId")
	if !ok {
		return
	}

	req := analytics.PostActivityRequest{
		PostID:   postID,
		Period:   analytics.Period(r.URL.Query().Get("period")),
		Interval: analytics.Interval(r.URL.Query().Get("interval")),
	}

	report, err := s.stats.PostActivity(r.Context(), caller, req)
	if err != nil {
		fields := logrus.Fields{
			"subject_type": analytics.SubjectPost,
			"period":       req.Period,
			"interval":     req.Interval,
		}
		if postID != nil {
			fields["subject_id"] = *postID
		}
		s.writeServiceError(w, r, err, fields)
		return
	}

	httputil.WriteSuccess(w, report)
}

// subjectField returns the requested id, or the caller when none was given
func subjectField(requested *int64, callerID int64) int64 {
	if requested != nil {
		return *requested
	}
	return callerID
}
