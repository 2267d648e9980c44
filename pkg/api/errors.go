package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/httputil"
	"github.com/platinummonkey/tally/pkg/observability"
)

// statusForKind maps an engine error kind to its HTTP status
func statusForKind(kind analytics.Kind) int {
	switch kind {
	case analytics.KindInvalidArgument:
		return http.StatusBadRequest
	case analytics.KindAccessDenied:
		return http.StatusForbidden
	case analytics.KindNotFound:
		return http.StatusNotFound
	case analytics.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes the response for an engine error.
// Timeouts and internal failures are logged with the request's correlation
// fields. Client errors are not logged.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fields logrus.Fields) {
	kind := analytics.KindOf(err)

	switch kind {
	case analytics.KindTimeout, analytics.KindInternal:
		fields["kind"] = kind.String()
		observability.FromContext(r.Context(), s.logger).WithFields(fields).WithError(err).Error("statistics request failed")
	}

	switch kind {
	case analytics.KindTimeout:
		httputil.WriteGatewayTimeout(w, "statistics query timed out")
	case analytics.KindInternal:
		httputil.WriteInternalError(w)
	default:
		httputil.WriteErrorMessage(w, statusForKind(kind), err.Error())
	}
}
