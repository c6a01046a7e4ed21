package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhuss/trichat/pkg/api"
)

// Logging returns middleware that logs one entry per chat request with the
// request ID, message count, duration and how many slots failed.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatHandler) ChatHandler {
		return ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (api.AggregateResult, error) {
			start := time.Now()

			result, err := next.Chat(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.Int("messages", len(req.Messages)),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "chat failed", attrs...)
				return result, err
			}

			attrs = append(attrs,
				slog.Int("slots", len(result)),
				slog.Int("slots_failed", result.Failed()),
			)
			logger.LogAttrs(ctx, slog.LevelInfo, "chat completed", attrs...)
			return result, nil
		})
	}
}
