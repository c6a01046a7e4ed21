package api

import "encoding/json"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one entry of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an ordered, append-only sequence of messages. The relay
// only reads it and forwards it verbatim to every backend.
type Conversation []Message

// JSON returns the conversation serialized as a JSON array. A nil
// conversation serializes as "[]".
func (c Conversation) JSON() (string, error) {
	if c == nil {
		return "[]", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SlotKey is the identity of one configured backend destination.
type SlotKey string

const (
	SlotA SlotKey = "slotA"
	SlotB SlotKey = "slotB"
	SlotC SlotKey = "slotC"
)

// SlotKeys lists every slot identity in display order. A fan-out always
// produces exactly one result per entry.
var SlotKeys = []SlotKey{SlotA, SlotB, SlotC}

// Valid reports whether k is one of the fixed slot identities.
func (k SlotKey) Valid() bool {
	for _, known := range SlotKeys {
		if k == known {
			return true
		}
	}
	return false
}

// FailureKind classifies why a slot produced no output.
type FailureKind string

const (
	// FailureUnconfigured means no provider type could be resolved for the slot.
	FailureUnconfigured FailureKind = "unconfigured"

	// FailureMissingCredential means the resolved protocol needs an API key
	// and none was configured.
	FailureMissingCredential FailureKind = "missing_credential"

	// FailureTransport covers network errors, including timeouts.
	FailureTransport FailureKind = "transport_failure"

	// FailureBackend means the backend answered with a non-success status
	// or a body that could not be used.
	FailureBackend FailureKind = "backend_failure"
)

// SlotResult is the outcome of calling one slot. Exactly one of Output and
// Error is set: Output is nil on failure, Error is empty on success.
type SlotResult struct {
	SlotKey      SlotKey     `json:"slotKey"`
	Label        string      `json:"label"`
	ProviderType string      `json:"providerType,omitempty"`
	Output       *string     `json:"output,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorKind    FailureKind `json:"errorKind,omitempty"`
}

// Succeeded reports whether the slot produced output.
func (r SlotResult) Succeeded() bool {
	return r.Output != nil
}

// Text returns the slot output, or an empty string on failure.
func (r SlotResult) Text() string {
	if r.Output == nil {
		return ""
	}
	return *r.Output
}

// OutputResult builds a successful SlotResult.
func OutputResult(key SlotKey, label, providerType, output string) SlotResult {
	return SlotResult{
		SlotKey:      key,
		Label:        label,
		ProviderType: providerType,
		Output:       &output,
	}
}

// ErrorResult builds a failed SlotResult.
func ErrorResult(key SlotKey, label, providerType string, kind FailureKind, message string) SlotResult {
	if message == "" {
		message = "Unknown error"
	}
	return SlotResult{
		SlotKey:      key,
		Label:        label,
		ProviderType: providerType,
		Error:        message,
		ErrorKind:    kind,
	}
}

// AggregateResult maps every slot identity to its outcome. It is built
// fresh for each chat request and never persisted.
type AggregateResult map[SlotKey]SlotResult

// Failed returns the number of slots that produced an error.
func (a AggregateResult) Failed() int {
	n := 0
	for _, r := range a {
		if !r.Succeeded() {
			n++
		}
	}
	return n
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages Conversation `json:"messages"`
}
