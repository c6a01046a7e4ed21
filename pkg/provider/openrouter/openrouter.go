// Package openrouter provides the adapter for openrouter slots. OpenRouter
// speaks the OpenAI Chat Completions protocol, so the adapter delegates all
// request building to openaicompat and only reports its own provider type.
package openrouter

import (
	"github.com/rhuss/trichat/pkg/provider"
	"github.com/rhuss/trichat/pkg/provider/openaicompat"
)

// DefaultBaseURL is the public OpenRouter API endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Adapter implements provider.Adapter for OpenRouter.
type Adapter struct {
	*openaicompat.Adapter
}

// Ensure Adapter implements provider.Adapter at compile time.
var _ provider.Adapter = (*Adapter)(nil)

// New returns the OpenRouter adapter.
func New() *Adapter {
	return &Adapter{Adapter: openaicompat.NewNamed(provider.OpenRouter)}
}
