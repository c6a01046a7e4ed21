package generic

import (
	"net/http"
	"testing"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/provider"
)

func TestMethod(t *testing.T) {
	tests := map[string]string{
		"":       "POST",
		"post":   "POST",
		" put ":  "PUT",
		"Get":    "GET",
		"DELETE": "DELETE",
	}
	for in, want := range tests {
		if got := Method(in); got != want {
			t.Errorf("Method(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTargetURL(t *testing.T) {
	slot := &provider.SlotConfig{BaseURL: "https://base.example"}
	if got := TargetURL(slot); got != "https://base.example" {
		t.Errorf("TargetURL() = %q, want base URL fallback", got)
	}
	slot.Generic.URL = "https://custom.example/infer"
	if got := TargetURL(slot); got != "https://custom.example/infer" {
		t.Errorf("TargetURL() = %q, want generic URL", got)
	}
}

func TestAdapter_BuildRequest(t *testing.T) {
	slot := &provider.SlotConfig{
		ProviderType: provider.GenericJSON,
		BaseURL:      "https://base.example",
		Model:        "llama-3",
		Headers:      map[string]string{"X-Layer": "slot", "X-Slot-Only": "s"},
		Generic: provider.GenericConfig{
			URL:          "https://custom.example/v2/generate",
			Method:       "put",
			Headers:      map[string]string{"x-layer": "generic", "Authorization": "Token abc"},
			BodyTemplate: `{"model":"{{model}}","input":{{ messages_json }},"extra":"{{missing}}"}`,
			ResponsePath: "output[0].text",
		},
	}
	conv := api.Conversation{{Role: api.RoleUser, Content: "hi"}}

	a := New()
	if a.Name() != provider.GenericJSON {
		t.Errorf("Name() = %q", a.Name())
	}

	req, err := a.BuildRequest(slot, conv)
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}

	if req.Method != http.MethodPut {
		t.Errorf("Method = %q, want PUT", req.Method)
	}
	if req.URL != "https://custom.example/v2/generate" {
		t.Errorf("URL = %q", req.URL)
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := req.Header.Get("X-Layer"); got != "generic" {
		t.Errorf("X-Layer = %q, want generic headers to win", got)
	}
	if got := req.Header.Get("X-Slot-Only"); got != "s" {
		t.Errorf("X-Slot-Only = %q", got)
	}
	if got := req.Header.Get("Authorization"); got != "Token abc" {
		t.Errorf("Authorization = %q", got)
	}

	want := `{"model":"llama-3","input":[{"role":"user","content":"hi"}],"extra":""}`
	if string(req.Body) != want {
		t.Errorf("Body = %s\nwant %s", req.Body, want)
	}
	if got := a.ResponsePath(slot); got != "output[0].text" {
		t.Errorf("ResponsePath() = %q", got)
	}
}

func TestAdapter_Defaults(t *testing.T) {
	slot := &provider.SlotConfig{
		ProviderType: provider.GenericJSON,
		BaseURL:      "https://base.example/run",
		APIKey:       "ignored",
	}

	req, err := New().BuildRequest(slot, api.Conversation{{Role: api.RoleUser, Content: "x"}})
	if err != nil {
		t.Fatalf("BuildRequest failed: %v", err)
	}
	if req.Method != http.MethodPost {
		t.Errorf("Method = %q, want POST", req.Method)
	}
	if req.URL != "https://base.example/run" {
		t.Errorf("URL = %q", req.URL)
	}
	if string(req.Body) != `{"messages":[{"role":"user","content":"x"}]}` {
		t.Errorf("Body = %s", req.Body)
	}
	if _, ok := req.Header["Authorization"]; ok {
		t.Error("generic requests must not add an Authorization header")
	}
	if got := New().ResponsePath(slot); got != provider.DefaultResponsePath {
		t.Errorf("ResponsePath() = %q", got)
	}
}

func TestUnknownVariables(t *testing.T) {
	vars := map[string]string{"model": "m", "messages_json": "[]"}

	got := UnknownVariables(`{"model":"{{model}}","x":"{{ temp }}","m":{{messages_json}},"y":"{{temp}}","z":"{{top_p}}"}`, vars)
	if len(got) != 2 || got[0] != "temp" || got[1] != "top_p" {
		t.Errorf("UnknownVariables = %v, want [temp top_p]", got)
	}
	if got := UnknownVariables(`{"messages":{{messages_json}}}`, vars); len(got) != 0 {
		t.Errorf("UnknownVariables = %v, want none", got)
	}
}
