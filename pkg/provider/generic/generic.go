// Package generic provides the adapter for generic_json slots, whose request
// is entirely defined by the slot configuration: target URL, method,
// headers, a body template with {{model}} and {{messages_json}} placeholders
// and the path of the answer in the JSON response.
package generic

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/debug"
	"github.com/rhuss/trichat/pkg/provider"
	"github.com/rhuss/trichat/pkg/template"
)

// Adapter implements provider.Adapter for generic_json slots.
type Adapter struct{}

// Ensure Adapter implements provider.Adapter at compile time.
var _ provider.Adapter = (*Adapter)(nil)

// New returns the generic_json adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name returns the provider type this adapter serves.
func (a *Adapter) Name() provider.ProviderType {
	return provider.GenericJSON
}

// BuildRequest renders the body template and layers headers: the JSON
// content type first, then the slot headers, then the generic headers.
// No Authorization header is added; credentials, if any, come from the
// configured headers or the template.
func (a *Adapter) BuildRequest(slot *provider.SlotConfig, conv api.Conversation) (*provider.Request, error) {
	g := slot.Generic

	messagesJSON, err := conv.JSON()
	if err != nil {
		return nil, fmt.Errorf("serializing conversation: %w", err)
	}

	tmpl := g.BodyTemplate
	if tmpl == "" {
		tmpl = template.DefaultBody
	}
	vars := map[string]string{
		template.VarModel:        slot.Model,
		template.VarMessagesJSON: messagesJSON,
	}
	if unknown := UnknownVariables(tmpl, vars); len(unknown) > 0 {
		debug.Log("providers", "body template has unknown variables, substituting empty strings",
			"slot", slot.Label, "names", unknown)
	}
	body := template.Substitute(tmpl, vars)

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	provider.MergeHeaders(header, slot.Headers, g.Headers)

	return &provider.Request{
		Method: Method(g.Method),
		URL:    TargetURL(slot),
		Header: header,
		Body:   []byte(body),
	}, nil
}

// UnknownVariables lists the placeholders in tmpl that have no value in vars.
func UnknownVariables(tmpl string, vars map[string]string) []string {
	var unknown []string
	for _, name := range template.Names(tmpl) {
		if _, ok := vars[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ResponsePath returns the configured response path, defaulting to the
// chat completions location.
func (a *Adapter) ResponsePath(slot *provider.SlotConfig) string {
	if slot.Generic.ResponsePath == "" {
		return provider.DefaultResponsePath
	}
	return slot.Generic.ResponsePath
}

// Method upper-cases the configured method and defaults to POST.
func Method(m string) string {
	m = strings.ToUpper(strings.TrimSpace(m))
	if m == "" {
		return http.MethodPost
	}
	return m
}

// TargetURL returns generic.url, or the slot base URL when it is unset.
func TargetURL(slot *provider.SlotConfig) string {
	if slot.Generic.URL != "" {
		return slot.Generic.URL
	}
	return slot.BaseURL
}
