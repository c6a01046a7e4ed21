package integration

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoint(t *testing.T) {
	resp := getURL(t, http.DefaultClient, testEnv.BaseURL()+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "ok") {
		t.Errorf("body = %q, want to contain 'ok'", body)
	}
}

func TestReadyEndpoint(t *testing.T) {
	resp := getURL(t, http.DefaultClient, testEnv.BaseURL()+"/readyz")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with a readable store, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	chat(t, user("warm up"))

	body := readBody(t, getURL(t, http.DefaultClient, testEnv.BaseURL()+"/metrics"))
	for _, name := range []string{
		"trichat_requests_total",
		"trichat_slot_calls_total",
		"trichat_slot_latency_seconds",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
