// Package middleware provides HTTP middleware for authentication and rate limiting.
//
// # Middleware Components
//
// AuthMiddleware: JWT bearer authentication
//
//	authMW := middleware.NewAuthMiddleware(tokenManager, false)
//	router.Use(authMW.Handler)
//	// Validates the token and adds an *auth.AuthContext to the request
//
// RateLimitMiddleware: per user throttling, in memory or backed by Redis
//
//	limiter := middleware.NewRateLimiter(middleware.ReportRateLimitConfig())
//	router.Handle("/reports/generate", middleware.NewRateLimitMiddleware(limiter, logger).Handler(h))
//
// Authenticated requests are limited per user id, anonymous ones per client IP.
//
// # Related Packages
//
//   - pkg/auth: Token validation and roles
//   - pkg/contextkeys: Request context keys
package middleware
