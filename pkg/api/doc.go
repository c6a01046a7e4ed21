// Package api defines the wire types shared by the trichat relay.
//
// It covers the conversation a client submits ([Message], [Conversation]),
// the fixed slot identities ([SlotKey]), the per-slot outcome of a fan-out
// ([SlotResult], [AggregateResult]) and the structured HTTP error type
// ([APIError]).
//
// The package performs no I/O. All types serialize to the JSON shapes the
// browser client and the stored slot configuration use.
package api
