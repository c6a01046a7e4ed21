package provider

import (
	"net/http"

	"github.com/rhuss/trichat/pkg/api"
)

// Adapter translates a slot configuration and a conversation into one
// backend request. Adapters perform no I/O; the Client sends the request.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Adapter interface {
	// Name returns the provider type this adapter serves.
	Name() ProviderType

	// BuildRequest builds the outbound HTTP request for the slot.
	BuildRequest(slot *SlotConfig, conv api.Conversation) (*Request, error)

	// ResponsePath returns the path of the answer text in the JSON response.
	ResponsePath(slot *SlotConfig) string
}

// Request is a fully prepared backend call.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// MergeHeaders applies each layer on top of h in order, so later layers win.
// Names are canonicalized, which makes overrides case-insensitive. An empty
// value is sent as an empty header.
func MergeHeaders(h http.Header, layers ...map[string]string) {
	for _, layer := range layers {
		for name, value := range layer {
			if name == "" {
				continue
			}
			h.Set(name, value)
		}
	}
}
