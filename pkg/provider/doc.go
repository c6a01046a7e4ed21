// Package provider defines slot configuration and the adapter contract used
// to talk to LLM backends.
//
// A slot is configured with a [ProviderType] that selects the protocol
// shape. Each protocol is implemented by an [Adapter] that turns a
// [SlotConfig] and a conversation into a single HTTP [Request] and names
// the path at which the answer text is found in the JSON response. The
// shared [Client] executes requests with a fixed timeout and classifies
// failures as [Failure] values. Adapters live in sub-packages
// (openaicompat, openrouter, generic).
package provider
