package openaicompat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/provider"
)

// Adapter implements provider.Adapter for the Chat Completions protocol.
type Adapter struct {
	name provider.ProviderType
}

// Ensure Adapter implements provider.Adapter at compile time.
var _ provider.Adapter = (*Adapter)(nil)

// New returns an adapter registered under the openai_compatible type.
func New() *Adapter {
	return NewNamed(provider.OpenAICompatible)
}

// NewNamed returns an adapter reporting the given provider type. Adapters
// for protocol flavours use it to reuse the request building.
func NewNamed(name provider.ProviderType) *Adapter {
	return &Adapter{name: name}
}

// Name returns the provider type this adapter serves.
func (a *Adapter) Name() provider.ProviderType {
	return a.name
}

// BuildRequest builds the chat completions call. The slot's extra headers
// are applied after the defaults and may replace them.
func (a *Adapter) BuildRequest(slot *provider.SlotConfig, conv api.Conversation) (*provider.Request, error) {
	if conv == nil {
		conv = api.Conversation{}
	}
	body, err := json.Marshal(ChatCompletionRequest{
		Model:    slot.Model,
		Messages: conv,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	header := make(http.Header)
	header.Set("Authorization", "Bearer "+slot.APIKey)
	header.Set("Content-Type", "application/json")
	provider.MergeHeaders(header, slot.Headers)

	return &provider.Request{
		Method: http.MethodPost,
		URL:    ChatCompletionsURL(slot.BaseURL),
		Header: header,
		Body:   body,
	}, nil
}

// ResponsePath returns the fixed location of the assistant text.
func (a *Adapter) ResponsePath(*provider.SlotConfig) string {
	return provider.DefaultResponsePath
}

// ChatCompletionsURL appends /chat/completions to baseURL after removing a
// single trailing slash.
func ChatCompletionsURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/chat/completions"
}
