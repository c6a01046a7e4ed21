// Package transport defines the chat handler contract and the middleware
// chain that wraps it.
//
// The HTTP adapter in pkg/transport/http decodes requests into pkg/api
// types and hands them to a ChatHandler; the relay service implements the
// handler. Middleware adds panic recovery, request ID assignment and
// structured per-request logging via log/slog without the relay knowing
// about HTTP.
package transport
