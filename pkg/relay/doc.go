// Package relay sends one conversation to every configured slot and
// collects the answers.
//
// [Caller] is the per-slot boundary: it validates the slot, dispatches to
// the adapter for the slot's provider type, performs exactly one backend
// call and turns every failure, including panics, into a SlotResult error.
// [Relay] runs the Caller for every fixed slot identity concurrently and
// waits for all of them. [Service] ties the relay to a slot configuration
// store for the HTTP layer.
package relay
