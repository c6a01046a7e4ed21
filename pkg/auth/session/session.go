// Package session implements admin login with a signed session cookie.
//
// A successful login issues an HS256 JWT naming the admin user, carried in
// an HttpOnly, SameSite=Lax cookie. Logout clears the cookie and revokes
// the token ID until the token would have expired anyway.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/trichat/pkg/auth"
	"github.com/rhuss/trichat/pkg/debug"
)

const (
	// Method is reported in identities produced by this authenticator.
	Method = "session"

	// DefaultCookieName names the session cookie.
	DefaultCookieName = "trichat_session"

	// DefaultTTL is the session lifetime.
	DefaultTTL = 12 * time.Hour

	issuer = "trichat"
)

// Config holds the admin credentials and cookie settings.
type Config struct {
	Username string
	// Password is the admin password. Empty disables login.
	Password string
	// Secret signs session tokens. Empty generates a random secret, so
	// sessions do not survive a restart.
	Secret string
	// TTL defaults to DefaultTTL.
	TTL time.Duration
	// CookieName defaults to DefaultCookieName.
	CookieName string
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// Manager logs admins in and authenticates their session cookies.
type Manager struct {
	username   [32]byte
	password   [32]byte
	enabled    bool
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // token ID -> expiry
}

// Ensure Manager implements auth.Authenticator at compile time.
var _ auth.Authenticator = (*Manager)(nil)

// New creates a Manager.
func New(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
	}

	return &Manager{
		username:   sha256.Sum256([]byte(cfg.Username)),
		password:   sha256.Sum256([]byte(cfg.Password)),
		enabled:    cfg.Username != "" && cfg.Password != "",
		secret:     secret,
		ttl:        cfg.TTL,
		cookieName: cfg.CookieName,
		secure:     cfg.Secure,
		now:        time.Now,
		revoked:    make(map[string]time.Time),
	}, nil
}

// LoginEnabled reports whether admin credentials are configured.
func (m *Manager) LoginEnabled() bool {
	return m.enabled
}

// CookieName returns the session cookie name.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Login checks the credentials and returns a signed session token and its
// expiry. Both fields are compared even when the first one mismatches.
func (m *Manager) Login(username, password string) (string, time.Time, error) {
	u := sha256.Sum256([]byte(username))
	p := sha256.Sum256([]byte(password))
	userOK := subtle.ConstantTimeCompare(u[:], m.username[:])
	passOK := subtle.ConstantTimeCompare(p[:], m.password[:])
	if !m.enabled || userOK&passOK != 1 {
		return "", time.Time{}, auth.ErrInvalidCredentials
	}
	return m.Issue(username)
}

// Issue signs a session token for subject.
func (m *Manager) Issue(subject string) (string, time.Time, error) {
	id := make([]byte, 16)
	if _, err := rand.Read(id); err != nil {
		return "", time.Time{}, fmt.Errorf("generating token id: %w", err)
	}

	now := m.now()
	expires := now.Add(m.ttl)
	claims := jwtlib.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		ID:        hex.EncodeToString(id),
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(expires),
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return token, expires, nil
}

// Verify parses token and returns its claims if it is validly signed,
// unexpired and not revoked.
func (m *Manager) Verify(token string) (*jwtlib.RegisteredClaims, error) {
	claims := &jwtlib.RegisteredClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims,
		func(t *jwtlib.Token) (any, error) { return m.secret, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("session token has no subject")
	}
	if m.isRevoked(claims.ID) {
		return nil, errors.New("session token revoked")
	}
	return claims, nil
}

// Authenticate abstains without a session cookie and votes No for a cookie
// that does not verify.
func (m *Manager) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return auth.AuthResult{Decision: auth.Abstain}
	}
	claims, err := m.Verify(c.Value)
	if err != nil {
		debug.Log("auth", "rejecting session cookie", "error", err)
		return auth.AuthResult{Decision: auth.No, Err: fmt.Errorf("%w: %v", auth.ErrUnauthenticated, err)}
	}
	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{
			Subject:   claims.Subject,
			Method:    Method,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	}
}

// SetCookie writes the session cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(m.now()).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Logout revokes the session carried by r, if any, and clears the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		if claims, err := m.Verify(c.Value); err == nil {
			m.revoke(claims.ID, claims.ExpiresAt.Time)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) revoke(id string, expires time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, k)
		}
	}
	m.revoked[id] = expires
}

func (m *Manager) isRevoked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok
}
