// Package auth provides caller identity and bearer token handling for tally.
//
// # Overview
//
// Every statistics request is made on behalf of an authenticated caller. The
// caller is identified by a numeric user id and a role taken from a signed JWT.
// Roles form a closed set; the integer role id carried in tokens is parsed once
// at the boundary and never compared directly elsewhere.
//
// # Roles
//
//	auth.RoleRegular // role id 1
//	auth.RoleAdmin   // role id 2
//
// # Tokens
//
// Tokens are HS256 JWTs with the caller id in "sub" and the role id in "roleId":
//
//	tm := auth.NewTokenManager(secret, "tally", time.Hour)
//	token, err := tm.IssueToken(42, auth.RoleRegular)
//	claims, err := tm.ValidateToken(token)
//	ctx := claims.AuthContext()
//
// # Related Packages
//
//   - pkg/middleware: Bearer token extraction and request context wiring
//   - pkg/analytics: scope decisions based on the caller role
package auth
