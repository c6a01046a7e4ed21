package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rhuss/trichat/pkg/observability"
	"github.com/rhuss/trichat/pkg/provider"
)

// SlotStore persists the slot configuration. Updates always replace the
// whole configuration.
type SlotStore interface {
	// Slots returns a snapshot of the current configuration. Callers own
	// the returned value.
	Slots(ctx context.Context) (provider.Slots, error)

	// Replace validates and stores slots as the new configuration.
	Replace(ctx context.Context, slots provider.Slots) error

	// HealthCheck reports whether the backing storage is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Document is the persisted form of the slot configuration:
//
//	{"slots": {"slotA": {...}, "slotB": {...}, "slotC": {...}}}
type Document struct {
	Slots provider.Slots `json:"slots"`
}

// DecodeDocument parses and validates a configuration document. A document
// without a slots object is rejected.
func DecodeDocument(data []byte) (provider.Slots, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if doc.Slots == nil {
		return nil, fmt.Errorf("%w: missing slots", ErrInvalidConfig)
	}
	if err := Validate(doc.Slots); err != nil {
		return nil, err
	}
	return doc.Slots, nil
}

// EncodeDocument renders slots as an indented configuration document.
func EncodeDocument(slots provider.Slots) ([]byte, error) {
	if slots == nil {
		slots = provider.Slots{}
	}
	data, err := json.MarshalIndent(Document{Slots: slots}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding slot configuration: %w", err)
	}
	return append(data, '\n'), nil
}

// Validate checks slots before they are stored.
func Validate(slots provider.Slots) error {
	if slots == nil {
		return fmt.Errorf("%w: missing slots", ErrInvalidConfig)
	}
	if err := slots.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RecordUpdate counts a configuration update for the named store type.
func RecordUpdate(store string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.ConfigUpdatesTotal.WithLabelValues(store, result).Inc()
}
