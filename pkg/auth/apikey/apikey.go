// Package apikey authenticates scripted admin access with static bearer
// keys. Keys are kept only as SHA-256 hashes and compared in constant time.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rhuss/trichat/pkg/auth"
)

// Method is reported in identities produced by this authenticator.
const Method = "apikey"

// Key is the configuration form of an admin API key.
type Key struct {
	// Name becomes the identity subject.
	Name string
	Key  string
}

type entry struct {
	hash [32]byte
	name string
}

// Authenticator validates bearer tokens against a static key set.
type Authenticator struct {
	keys []entry
}

// Ensure Authenticator implements auth.Authenticator at compile time.
var _ auth.Authenticator = (*Authenticator)(nil)

// New hashes keys immediately; plaintext keys are not retained. Entries
// with an empty key are ignored, and an unnamed key gets the subject
// "apikey".
func New(keys []Key) *Authenticator {
	a := &Authenticator{}
	for _, k := range keys {
		if k.Key == "" {
			continue
		}
		name := k.Name
		if name == "" {
			name = Method
		}
		a.keys = append(a.keys, entry{hash: sha256.Sum256([]byte(k.Key)), name: name})
	}
	return a
}

// Len returns the number of usable keys.
func (a *Authenticator) Len() int {
	return len(a.keys)
}

// Authenticate abstains without a Bearer Authorization header, and votes
// No for an unknown key.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	if token == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	tokenHash := sha256.Sum256([]byte(token))
	match := -1
	// Compare against every key so timing does not reveal the position.
	for i, e := range a.keys {
		if subtle.ConstantTimeCompare(tokenHash[:], e.hash[:]) == 1 && match < 0 {
			match = i
		}
	}
	if match < 0 {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}
	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{Subject: a.keys[match].name, Method: Method},
	}
}
