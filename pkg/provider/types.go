package provider

// ProviderType selects the protocol a slot speaks.
type ProviderType string

const (
	// OpenRouter is the OpenRouter flavour of the OpenAI chat completions API.
	OpenRouter ProviderType = "openrouter"

	// OpenAICompatible is any backend exposing POST {base}/chat/completions.
	OpenAICompatible ProviderType = "openai_compatible"

	// GenericJSON is a fully caller-defined JSON request built from a body
	// template, with the answer located by a response path.
	GenericJSON ProviderType = "generic_json"
)

// Known reports whether t names a dedicated protocol variant.
func (t ProviderType) Known() bool {
	switch t {
	case OpenRouter, OpenAICompatible, GenericJSON:
		return true
	}
	return false
}

// Configured reports whether any provider type is set.
func (t ProviderType) Configured() bool {
	return t != ""
}

// Resolve returns the variant used for dispatch. Unrecognized values fall
// back to OpenAICompatible; an empty type stays empty (unconfigured).
func (t ProviderType) Resolve() ProviderType {
	if t == "" || t.Known() {
		return t
	}
	return OpenAICompatible
}

// RequiresAPIKey reports whether the resolved variant needs an API key.
// generic_json slots may carry credentials in their own headers or body
// template, so the key is optional there.
func (t ProviderType) RequiresAPIKey() bool {
	return t.Resolve() != GenericJSON
}

// SlotConfig is the complete configuration of one backend slot. Field names
// match the stored providers.json document.
type SlotConfig struct {
	Label        string            `json:"label"`
	ProviderType ProviderType      `json:"providerType"`
	APIKey       string            `json:"apiKey"`
	BaseURL      string            `json:"baseUrl"`
	Model        string            `json:"model"`
	Headers      map[string]string `json:"headers,omitempty"`
	Generic      GenericConfig     `json:"generic"`
}

// GenericConfig holds the request definition used by generic_json slots.
type GenericConfig struct {
	URL          string            `json:"url"`
	Method       string            `json:"method"`
	Headers      map[string]string `json:"headers,omitempty"`
	BodyTemplate string            `json:"bodyTemplate"`
	ResponsePath string            `json:"responsePath"`
}

// Clone returns a deep copy of the slot configuration.
func (c *SlotConfig) Clone() *SlotConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Headers = cloneHeaders(c.Headers)
	out.Generic.Headers = cloneHeaders(c.Generic.Headers)
	return &out
}

// DisplayLabel returns the slot label, or the given fallback when the label
// is empty.
func (c *SlotConfig) DisplayLabel(fallback string) string {
	if c == nil || c.Label == "" {
		return fallback
	}
	return c.Label
}

func cloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
