// Package storage defines the SlotStore contract for the persisted slot
// configuration and the helpers shared by its implementations (memory,
// file, postgres): sentinel errors, the JSON document format and update
// accounting.
package storage
