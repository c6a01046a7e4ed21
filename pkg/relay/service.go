package relay

import (
	"context"
	"fmt"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/storage"
)

// Service answers chat requests by reading the current slot configuration
// from a store and fanning the conversation out with a Relay.
type Service struct {
	store storage.SlotStore
	relay *Relay
}

// NewService creates a Service.
func NewService(store storage.SlotStore, relay *Relay) *Service {
	return &Service{store: store, relay: relay}
}

// Chat relays req to every slot. The only error is a failure to read the
// slot configuration; slot failures are reported inside the result.
func (s *Service) Chat(ctx context.Context, req *api.ChatRequest) (api.AggregateResult, error) {
	slots, err := s.store.Slots(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading slot configuration: %w", err)
	}
	return s.relay.CallAll(ctx, slots.Clone(), req.Messages), nil
}
