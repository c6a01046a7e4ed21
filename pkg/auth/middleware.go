package auth

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/debug"
	"github.com/rhuss/trichat/pkg/observability"
)

// Middleware rejects requests the chain does not authenticate with 401
// "Unauthorized". Paths in bypassEndpoints skip authentication.
func Middleware(chain *AuthChain, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Authenticate(r.Context(), r)
			if result.Decision != Yes || result.Identity == nil {
				slog.Warn("admin authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"decision", result.Decision,
					"error", result.Err,
				)
				writeError(w, http.StatusUnauthorized, api.NewUnauthorizedError("Unauthorized"))
				return
			}

			if result.Identity.Subject == "" {
				slog.Error("authenticator returned identity with empty subject")
				writeError(w, http.StatusInternalServerError, api.NewServerError("internal authentication error"))
				return
			}

			debug.Log("auth", "authenticated",
				"subject", result.Identity.Subject,
				"method", result.Identity.Method,
				"path", r.URL.Path,
			)

			next.ServeHTTP(w, r.WithContext(SetIdentity(r.Context(), result.Identity)))
		})
	}
}

// KeyFunc derives the rate limiting key for a request.
type KeyFunc func(r *http.Request) string

// RemoteIP keys requests by the client IP without port.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limiter's budget with 429. The scope
// labels rejections in metrics. A nil limiter disables the check.
func RateLimit(limiter RateLimiter, scope string, key KeyFunc) func(http.Handler) http.Handler {
	if key == nil {
		key = RemoteIP
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if err := limiter.Allow(r.Context(), k); err != nil {
				slog.Warn("rate limit exceeded", "scope", scope, "key", k)
				observability.RateLimitRejectedTotal.WithLabelValues(scope).Inc()
				writeError(w, http.StatusTooManyRequests, api.NewTooManyRequestsError("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, apiErr *api.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}

// DefaultBypassEndpoints lists endpoints that never require authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}
