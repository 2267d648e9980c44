package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/httputil"
	"github.com/platinummonkey/tally/pkg/reports"
)

// GenerateReportRequest contains the request body for report generation
type GenerateReportRequest struct {
	TargetUserID *int64             `json:"targetUserId"`
	Period       analytics.Period   `json:"period"`
	Interval     analytics.Interval `json:"interval"`
}

// generateReport handles POST /reports/generate
func (s *Server) generateReport(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req GenerateReportRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.TargetUserID != nil && *req.TargetUserID <= 0 {
		httputil.WriteBadRequest(w, "invalid targetUserId")
		return
	}

	record, err := s.reports.Generate(r.Context(), caller, reports.GenerateRequest{
		TargetUserID: req.TargetUserID,
		Period:       req.Period,
		Interval:     req.Interval,
	})
	if err != nil {
		s.writeServiceError(w, r, err, logrus.Fields{
			"subject_type": analytics.SubjectUser,
			"subject_id":   subjectField(req.TargetUserID, caller.ID),
			"period":       req.Period,
			"interval":     req.Interval,
		})
		return
	}

	httputil.WriteCreated(w, record)
}

// downloadReport handles GET /reports/download by redirecting to the newest artifact
func (s *Server) downloadReport(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(r)
	if !ok {
		httputil.WriteErrorMessage(w, http.StatusUnauthorized, "authentication required")
		return
	}

	target, ok := httputil.ParseQueryIDOrError(w, r, "targetUserId")
	if !ok {
		return
	}

	record, err := s.reports.Latest(r.Context(), caller, target)
	if err != nil {
		s.writeServiceError(w, r, err, logrus.Fields{
			"subject_type": analytics.SubjectUser,
			"subject_id":   subjectField(target, caller.ID),
		})
		return
	}

	http.Redirect(w, r, record.URL, http.StatusFound)
}
