package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/debug"
	"github.com/rhuss/trichat/pkg/observability"
	"github.com/rhuss/trichat/pkg/provider"
	"github.com/rhuss/trichat/pkg/provider/generic"
	"github.com/rhuss/trichat/pkg/provider/openaicompat"
	"github.com/rhuss/trichat/pkg/provider/openrouter"
)

// Error messages reported for slots rejected before any network call.
const (
	MsgNotConfigured = "Provider not configured"
	MsgMissingAPIKey = "Missing API key"
)

// Doer executes a prepared backend request. *provider.Client implements it.
type Doer interface {
	Do(ctx context.Context, req *provider.Request) ([]byte, error)
}

// Caller converts one slot configuration and conversation into exactly one
// SlotResult.
type Caller struct {
	doer     Doer
	adapters map[provider.ProviderType]provider.Adapter
	logger   *slog.Logger
}

// CallerOption configures a Caller.
type CallerOption func(*Caller)

// WithAdapter registers or replaces the adapter for its provider type.
func WithAdapter(a provider.Adapter) CallerOption {
	return func(c *Caller) { c.adapters[a.Name()] = a }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) CallerOption {
	return func(c *Caller) { c.logger = l }
}

// NewCaller creates a Caller with the built-in adapters registered.
func NewCaller(doer Doer, opts ...CallerOption) *Caller {
	c := &Caller{
		doer: doer,
		adapters: map[provider.ProviderType]provider.Adapter{
			provider.OpenRouter:       openrouter.New(),
			provider.OpenAICompatible: openaicompat.New(),
			provider.GenericJSON:      generic.New(),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call performs the backend call for one slot. It never returns an error
// and never panics: every failure is reported in the result.
func (c *Caller) Call(ctx context.Context, key api.SlotKey, slot *provider.SlotConfig, conv api.Conversation) (result api.SlotResult) {
	label := slot.DisplayLabel(string(key))

	if slot == nil || !slot.ProviderType.Configured() {
		observability.SlotCallsTotal.WithLabelValues(string(key), "none", string(api.FailureUnconfigured)).Inc()
		return api.ErrorResult(key, label, "", api.FailureUnconfigured, MsgNotConfigured)
	}

	configured := string(slot.ProviderType)
	resolved := slot.ProviderType.Resolve()

	if slot.APIKey == "" && resolved.RequiresAPIKey() {
		observability.SlotCallsTotal.WithLabelValues(string(key), string(resolved), string(api.FailureMissingCredential)).Inc()
		return api.ErrorResult(key, label, configured, api.FailureMissingCredential, MsgMissingAPIKey)
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("slot call panicked", "slot", key, "provider", resolved, "panic", r)
			result = api.ErrorResult(key, label, configured, api.FailureBackend, fmt.Sprintf("internal error: %v", r))
		}
		outcome := "ok"
		if !result.Succeeded() {
			outcome = string(result.ErrorKind)
		}
		observability.SlotCallsTotal.WithLabelValues(string(key), string(resolved), outcome).Inc()
		observability.SlotLatency.WithLabelValues(string(key), string(resolved)).Observe(time.Since(start).Seconds())
	}()

	adapter, ok := c.adapters[resolved]
	if !ok {
		adapter = c.adapters[provider.OpenAICompatible]
	}

	req, err := adapter.BuildRequest(slot, conv)
	if err != nil {
		f := provider.AsFailure(err)
		return api.ErrorResult(key, label, configured, f.Kind, f.Message)
	}

	debug.Log("relay", "calling slot", "slot", key, "provider", resolved, "url", req.URL)

	body, err := c.doer.Do(ctx, req)
	if err != nil {
		f := provider.AsFailure(err)
		c.logger.Warn("slot call failed",
			"slot", key,
			"provider", resolved,
			"kind", f.Kind,
			"status", f.StatusCode,
			"duration", time.Since(start),
		)
		return api.ErrorResult(key, label, configured, f.Kind, f.Message)
	}

	text := provider.ExtractText(body, adapter.ResponsePath(slot))
	return api.OutputResult(key, label, configured, text)
}

// CallProvider calls one slot with a default client. Prefer a shared Caller
// for repeated calls so connections are reused.
func CallProvider(ctx context.Context, key api.SlotKey, slot *provider.SlotConfig, conv api.Conversation) api.SlotResult {
	return NewCaller(provider.NewClient()).Call(ctx, key, slot, conv)
}
