// Package auth provides admin authentication and request rate limiting for
// trichat.
//
// Authentication uses a chain of authenticators with three-outcome voting:
// each returns Yes (identity found), No (credentials invalid) or Abstain
// (cannot handle the request). The session cookie authenticator and the
// API key authenticator are chained in front of /api/admin routes. The chat
// route is public and only subject to the optional rate limiter.
package auth
