package transport

import (
	"context"

	"github.com/rhuss/trichat/pkg/api"
)

// ChatHandler answers one chat request with the aggregate of all slot
// results. Slot failures are part of the result; an error means the
// request could not be served at all.
type ChatHandler interface {
	Chat(ctx context.Context, req *api.ChatRequest) (api.AggregateResult, error)
}

// ChatHandlerFunc is an adapter that allows using an ordinary function as
// a ChatHandler.
type ChatHandlerFunc func(ctx context.Context, req *api.ChatRequest) (api.AggregateResult, error)

// Chat calls f(ctx, req).
func (f ChatHandlerFunc) Chat(ctx context.Context, req *api.ChatRequest) (api.AggregateResult, error) {
	return f(ctx, req)
}
