// Package api provides the HTTP REST API server for tally activity statistics.
//
// # Overview
//
// The API exposes the statistics engine and the report exporter over HTTP.
// Every endpoint except the artifact file server requires a bearer token
// issued by the community platform; the token carries the caller's user id
// and role id.
//
// # Routes
//
//   - GET  /statistics/user-activity?userId&period&interval[&types]
//   - GET  /statistics/post-activity?postId&period&interval
//   - POST /reports/generate        {"targetUserId", "period", "interval"}
//   - GET  /reports/download?targetUserId
//   - GET  /artifacts/...           (filesystem artifact storage only)
//
// # Usage
//
//	server := api.NewServer(api.ServerOptions{
//		Statistics:   analytics.NewService(store, aggregatorConfig),
//		Reports:      exporter,
//		TokenManager: auth.NewTokenManager(secret, issuer, 0),
//		Logger:       logger,
//	})
//	http.ListenAndServe(":8080", server.Handler())
//
// # Errors
//
// Engine errors map to status codes by kind: invalid arguments 400, access
// denied 403, unknown subjects 404, store timeouts 504 and anything else 500.
// The body is always {"error": "..."}.
package api
