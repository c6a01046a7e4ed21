package openaicompat

import "github.com/rhuss/trichat/pkg/api"

// ChatCompletionRequest is the request body for /chat/completions. Only the
// model and the conversation are sent; sampling parameters are left to the
// backend defaults.
type ChatCompletionRequest struct {
	Model    string           `json:"model"`
	Messages api.Conversation `json:"messages"`
}
