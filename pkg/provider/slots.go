package provider

import (
	"errors"
	"fmt"

	"github.com/rhuss/trichat/pkg/api"
)

// DefaultResponsePath locates the assistant text in a chat completions
// response.
const DefaultResponsePath = "choices.0.message.content"

// Slots maps slot identities to their configuration. A missing or nil
// entry is an unconfigured slot.
type Slots map[api.SlotKey]*SlotConfig

// Get returns the configuration for key, or nil.
func (s Slots) Get(key api.SlotKey) *SlotConfig {
	if s == nil {
		return nil
	}
	return s[key]
}

// Clone returns a deep copy. The fan-out works on a clone so a concurrent
// configuration replace never changes a request in flight.
func (s Slots) Clone() Slots {
	if s == nil {
		return nil
	}
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

// Validate rejects slot keys outside the fixed identity set.
func (s Slots) Validate() error {
	var errs []error
	for key := range s {
		if !key.Valid() {
			errs = append(errs, fmt.Errorf("unknown slot %q", key))
		}
	}
	return errors.Join(errs...)
}

// DefaultSlots returns the configuration written on first start: one
// OpenRouter slot and two OpenAI-compatible placeholders, none with a key.
func DefaultSlots() Slots {
	generic := func() GenericConfig {
		return GenericConfig{
			Method:       "POST",
			Headers:      map[string]string{},
			BodyTemplate: `{"model":"{{model}}","messages":{{messages_json}}}`,
			ResponsePath: DefaultResponsePath,
		}
	}
	return Slots{
		api.SlotA: {
			Label:        "OpenRouter",
			ProviderType: OpenRouter,
			BaseURL:      "https://openrouter.ai/api/v1",
			Model:        "openrouter/auto",
			Headers:      map[string]string{"HTTP-Referer": "", "X-Title": "Tri LLM Chat"},
			Generic:      generic(),
		},
		api.SlotB: {
			Label:        "Abacus",
			ProviderType: OpenAICompatible,
			BaseURL:      "https://YOUR-ABACUS-ENDPOINT/api/v1",
			Model:        "gpt-4o-mini",
			Headers:      map[string]string{},
			Generic:      generic(),
		},
		api.SlotC: {
			Label:        "Genspark",
			ProviderType: OpenAICompatible,
			BaseURL:      "https://YOUR-GENSPARK-ENDPOINT/api/v1",
			Model:        "gpt-4o-mini",
			Headers:      map[string]string{},
			Generic:      generic(),
		},
	}
}
