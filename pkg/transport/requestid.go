package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/rhuss/trichat/pkg/api"
)

// RequestID returns middleware that ensures the context carries a request
// ID. An ID already set by the HTTP adapter from X-Request-ID is kept.
func RequestID() Middleware {
	return func(next ChatHandler) ChatHandler {
		return ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (api.AggregateResult, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, NewRequestID())
			}
			return next.Chat(ctx, req)
		})
	}
}

// NewRequestID returns a random 128-bit hex identifier.
func NewRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
