// Package openaicompat builds requests for OpenAI-compatible Chat
// Completions backends: POST {baseUrl}/chat/completions with a bearer key
// and a {model, messages} body. The openai_compatible slot type uses this
// adapter directly, and it is the fallback for unrecognized provider types.
//
// Provider adapters for other flavours of the same protocol (openrouter)
// embed the Adapter from this package.
package openaicompat
