// Package memory provides an in-memory SlotStore for tests and
// deployments that configure slots only through the admin API.
// The configuration is lost when the process restarts.
package memory

import (
	"context"
	"sync"

	"github.com/rhuss/trichat/pkg/provider"
	"github.com/rhuss/trichat/pkg/storage"
)

// Name identifies this store in metrics and logs.
const Name = "memory"

// Store is an in-memory SlotStore. Reads and writes copy the configuration
// so callers never share state with the store.
type Store struct {
	mu    sync.RWMutex
	slots provider.Slots
}

// Ensure Store implements storage.SlotStore at compile time.
var _ storage.SlotStore = (*Store)(nil)

// New creates a store holding a copy of initial. A nil initial value starts
// with provider.DefaultSlots.
func New(initial provider.Slots) *Store {
	if initial == nil {
		initial = provider.DefaultSlots()
	}
	return &Store{slots: initial.Clone()}
}

// Slots returns a copy of the current configuration.
func (s *Store) Slots(ctx context.Context) (provider.Slots, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots.Clone(), nil
}

// Replace stores a copy of slots.
func (s *Store) Replace(ctx context.Context, slots provider.Slots) error {
	if err := storage.Validate(slots); err != nil {
		storage.RecordUpdate(Name, err)
		return err
	}
	s.mu.Lock()
	s.slots = slots.Clone()
	s.mu.Unlock()
	storage.RecordUpdate(Name, nil)
	return nil
}

// HealthCheck always succeeds.
func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
