package api

import "fmt"

// ValidationConfig holds configurable limits for chat request validation.
type ValidationConfig struct {
	MaxMessages    int
	MaxContentSize int
}

// DefaultValidationConfig returns the limits used by the HTTP adapter.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxMessages:    500,
		MaxContentSize: 512 * 1024,
	}
}

// ValidateChatRequest checks a ChatRequest. It returns an *APIError for the
// first problem found, or nil if the request can be relayed.
func ValidateChatRequest(req *ChatRequest, cfg ValidationConfig) *APIError {
	if len(req.Messages) == 0 {
		return NewInvalidRequestError("messages", "messages must be a non-empty array")
	}

	if cfg.MaxMessages > 0 && len(req.Messages) > cfg.MaxMessages {
		return NewInvalidRequestError("messages",
			fmt.Sprintf("messages exceeds maximum of %d entries", cfg.MaxMessages))
	}

	for i, msg := range req.Messages {
		if !msg.Role.Valid() {
			return NewInvalidRequestError(fmt.Sprintf("messages[%d].role", i),
				fmt.Sprintf("role must be \"user\", \"assistant\" or \"system\", got %q", msg.Role))
		}
		if cfg.MaxContentSize > 0 && len(msg.Content) > cfg.MaxContentSize {
			return NewInvalidRequestError(fmt.Sprintf("messages[%d].content", i),
				fmt.Sprintf("content exceeds maximum of %d bytes", cfg.MaxContentSize))
		}
	}

	return nil
}
