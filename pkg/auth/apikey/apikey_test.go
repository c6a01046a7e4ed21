package apikey

import (
	"context"
	"net/http"
	"testing"

	"github.com/rhuss/trichat/pkg/auth"
)

func newTestAuth() *Authenticator {
	return New([]Key{
		{Name: "deploy-bot", Key: "sk-test-key-1"},
		{Key: "sk-test-key-2"},
		{Name: "disabled", Key: ""},
	})
}

func authenticate(t *testing.T, a *Authenticator, header string) auth.AuthResult {
	t.Helper()
	r, _ := http.NewRequest("GET", "/api/admin/config", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return a.Authenticate(context.Background(), r)
}

func TestValidKey(t *testing.T) {
	result := authenticate(t, newTestAuth(), "Bearer sk-test-key-1")

	if result.Decision != auth.Yes {
		t.Fatalf("Decision = %v, want Yes", result.Decision)
	}
	if result.Identity.Subject != "deploy-bot" {
		t.Errorf("Subject = %q, want %q", result.Identity.Subject, "deploy-bot")
	}
	if result.Identity.Method != Method {
		t.Errorf("Method = %q", result.Identity.Method)
	}
}

func TestUnnamedKey(t *testing.T) {
	result := authenticate(t, newTestAuth(), "Bearer sk-test-key-2")
	if result.Decision != auth.Yes || result.Identity.Subject != "apikey" {
		t.Errorf("result = %+v", result)
	}
}

func TestInvalidKey(t *testing.T) {
	result := authenticate(t, newTestAuth(), "Bearer sk-wrong-key")
	if result.Decision != auth.No {
		t.Fatalf("Decision = %v, want No", result.Decision)
	}
	if result.Err != auth.ErrUnauthenticated {
		t.Errorf("Err = %v", result.Err)
	}
}

func TestEmptyBearer(t *testing.T) {
	if got := authenticate(t, newTestAuth(), "Bearer ").Decision; got != auth.No {
		t.Errorf("Decision = %v, want No", got)
	}
}

func TestAbstains(t *testing.T) {
	a := newTestAuth()
	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "bearer sk-test-key-1"} {
		if got := authenticate(t, a, header).Decision; got != auth.Abstain {
			t.Errorf("header %q: Decision = %v, want Abstain", header, got)
		}
	}
}

func TestEmptyKeysIgnored(t *testing.T) {
	a := newTestAuth()
	if a.Len() != 2 {
		t.Errorf("Len = %d, want 2", a.Len())
	}
}
