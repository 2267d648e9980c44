// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteSuccess(w, report)
//	httputil.WriteCreated(w, record)
//
// Error responses share the body shape {"error": "..."}:
//
//	httputil.WriteBadRequest(w, "unknown period")
//	httputil.WriteForbidden(w, "cannot read statistics of another user")
//	httputil.WriteGatewayTimeout(w, "statistics query timed out")
//	httputil.WriteInternalError(w)
//
// # Request Parsing
//
//	var req GenerateReportRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
//	userID, ok := httputil.ParseQueryIDOrError(w, r, "userId") // nil when absent
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Authentication and rate limiting middleware
package httputil
