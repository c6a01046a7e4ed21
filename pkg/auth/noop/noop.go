// Package noop provides an authenticator that admits every request as an
// anonymous administrator. It is wired only when admin authentication is
// explicitly disabled for local development.
package noop

import (
	"context"
	"net/http"

	"github.com/rhuss/trichat/pkg/auth"
)

// Authenticator always returns Yes.
type Authenticator struct{}

// Ensure Authenticator implements auth.Authenticator at compile time.
var _ auth.Authenticator = (*Authenticator)(nil)

func (a *Authenticator) Authenticate(_ context.Context, _ *http.Request) auth.AuthResult {
	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{Subject: "anonymous", Method: "noop"},
	}
}
