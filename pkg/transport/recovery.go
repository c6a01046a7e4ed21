package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rhuss/trichat/pkg/api"
)

// Recovery returns middleware that converts a panic in the handler into a
// server error, so the server keeps accepting requests.
func Recovery() Middleware {
	return func(next ChatHandler) ChatHandler {
		return ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (result api.AggregateResult, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("chat handler panicked", "request_id", RequestIDFromContext(ctx), "panic", r)
					result = nil
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.Chat(ctx, req)
		})
	}
}
