package relay

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/provider"
)

// SlotCaller performs the call for a single slot. *Caller implements it.
type SlotCaller interface {
	Call(ctx context.Context, key api.SlotKey, slot *provider.SlotConfig, conv api.Conversation) api.SlotResult
}

// Relay fans a conversation out to every slot identity.
type Relay struct {
	caller SlotCaller
	keys   []api.SlotKey
}

// New creates a Relay over the fixed slot identities.
func New(caller SlotCaller) *Relay {
	return &Relay{caller: caller, keys: api.SlotKeys}
}

// CallAll calls every slot concurrently and returns once all calls have
// finished. A slot missing from slots still yields a result. One slot's
// failure or slowness never cancels or alters another's result.
//
// Cancellation of ctx is not propagated into in-flight calls; each call is
// bounded by the client timeout instead.
func (r *Relay) CallAll(ctx context.Context, slots provider.Slots, conv api.Conversation) api.AggregateResult {
	callCtx := context.WithoutCancel(ctx)
	results := make([]api.SlotResult, len(r.keys))

	var g errgroup.Group
	for i, key := range r.keys {
		slot := slots.Get(key)
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					results[i] = api.ErrorResult(key, slot.DisplayLabel(string(key)), "",
						api.FailureBackend, fmt.Sprintf("internal error: %v", p))
				}
			}()
			results[i] = r.caller.Call(callCtx, key, slot, conv)
			return nil
		})
	}
	_ = g.Wait()

	out := make(api.AggregateResult, len(results))
	for i, key := range r.keys {
		out[key] = results[i]
	}
	return out
}
