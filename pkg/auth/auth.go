package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// AuthDecision represents the three possible outcomes of authentication.
type AuthDecision int

const (
	// Yes means credentials are valid. The chain stops and the identity is used.
	Yes AuthDecision = iota

	// No means credentials are present but invalid. The chain stops and the
	// request is rejected.
	No

	// Abstain means this authenticator found no credentials it handles.
	// The chain continues to the next authenticator.
	Abstain
)

// String returns the decision name for logs.
func (d AuthDecision) String() string {
	switch d {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "abstain"
	}
}

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // populated only when Decision == Yes
	Err      error     // populated only when Decision == No
}

// Identity is an authenticated administrator.
type Identity struct {
	// Subject is the admin user name or API key name (required, non-empty).
	Subject string

	// Method names the authenticator that produced the identity
	// ("session" or "apikey").
	Method string

	// ExpiresAt is when the credential stops being valid. Zero for
	// credentials without expiry.
	ExpiresAt time.Time
}

// Authenticator examines request credentials and returns a three-outcome vote.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

// Sentinel errors.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTooManyRequests    = errors.New("rate limit exceeded")
)

// AuthChain evaluates authenticators in order using three-outcome voting.
type AuthChain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator

	// DefaultDecision is used when all authenticators abstain. Yes admits
	// an "anonymous" identity and is meant for local development only.
	DefaultDecision AuthDecision
}

// Authenticate runs the chain. Stops on the first Yes or No.
// If all abstain, returns the default decision.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}

	if c.DefaultDecision == Yes {
		return AuthResult{
			Decision: Yes,
			Identity: &Identity{Subject: "anonymous", Method: "default"},
		}
	}
	return AuthResult{Decision: No, Err: ErrUnauthenticated}
}

// IsAdmin reports whether r carries valid admin credentials.
func (c *AuthChain) IsAdmin(r *http.Request) bool {
	res := c.Authenticate(r.Context(), r)
	return res.Decision == Yes && res.Identity != nil && res.Identity.Subject != ""
}
