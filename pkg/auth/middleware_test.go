package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rhuss/trichat/pkg/api"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_BypassEndpoint(t *testing.T) {
	chain := &AuthChain{DefaultDecision: No}
	handler := Middleware(chain, []string{"/healthz"})(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("bypass endpoint: status = %d, want 200", rec.Code)
	}
}

func TestMiddleware_NoAuth_Rejects(t *testing.T) {
	chain := &AuthChain{DefaultDecision: No}
	handler := Middleware(chain, DefaultBypassEndpoints)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/config", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no auth: status = %d, want 401", rec.Code)
	}
	var body api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Error == nil || body.Error.Message != "Unauthorized" || body.Error.Type != api.ErrorTypeUnauthorized {
		t.Errorf("error body = %+v", body.Error)
	}
}

func TestMiddleware_InvalidCredentials_Rejects(t *testing.T) {
	chain := &AuthChain{
		Authenticators:  []Authenticator{&mockAuthn{result: AuthResult{Decision: No, Err: ErrUnauthenticated}}},
		DefaultDecision: Yes,
	}
	rec := httptest.NewRecorder()
	Middleware(chain, nil)(okHandler()).ServeHTTP(rec, httptest.NewRequest("POST", "/api/admin/config", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMiddleware_ValidAuth_Passes(t *testing.T) {
	chain := &AuthChain{
		Authenticators: []Authenticator{
			&mockAuthn{result: AuthResult{Decision: Yes, Identity: &Identity{Subject: "admin", Method: "session"}}},
		},
		DefaultDecision: No,
	}

	var got *Identity
	handler := Middleware(chain, DefaultBypassEndpoints)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/config", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("valid auth: status = %d, want 200", rec.Code)
	}
	if got == nil || got.Subject != "admin" {
		t.Errorf("identity in context = %+v", got)
	}
}

func TestMiddleware_EmptySubject(t *testing.T) {
	chain := &AuthChain{
		Authenticators: []Authenticator{&mockAuthn{result: AuthResult{Decision: Yes, Identity: &Identity{}}}},
	}
	rec := httptest.NewRecorder()
	Middleware(chain, nil)(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/api/admin/config", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRateLimit_Exceeded(t *testing.T) {
	handler := RateLimit(NewInProcessLimiter(2), "chat", nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/api/chat", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.RemoteAddr = "10.0.0.1:6666"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("rate limited request: status = %d, want 429", rec.Code)
	}

	// Another client has its own budget.
	req = httptest.NewRequest("POST", "/api/chat", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	handler := RateLimit(nil, "chat", nil)(okHandler())
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/chat", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestRateLimit_CustomKey(t *testing.T) {
	limiter := &recordingLimiter{}
	key := func(r *http.Request) string { return r.Header.Get("X-Client") }
	handler := RateLimit(limiter, "chat", key)(okHandler())

	req := httptest.NewRequest("POST", "/api/chat", nil)
	req.Header.Set("X-Client", "ui")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if limiter.lastKey != "ui" {
		t.Errorf("limiter key = %q, want %q", limiter.lastKey, "ui")
	}
}

type recordingLimiter struct{ lastKey string }

func (l *recordingLimiter) Allow(_ context.Context, key string) error {
	l.lastKey = key
	return nil
}

func TestRemoteIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "[::1]:8080"
	if got := RemoteIP(r); got != "::1" {
		t.Errorf("RemoteIP = %q", got)
	}
	r.RemoteAddr = "unix-socket"
	if got := RemoteIP(r); got != "unix-socket" {
		t.Errorf("RemoteIP = %q", got)
	}
}
