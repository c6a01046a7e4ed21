// Command mock-backend runs a deterministic chat backend for local runs of
// trichat. It answers the OpenAI-compatible chat completions protocol and
// a generic JSON protocol, and offers slow and failing endpoints to
// demonstrate per-slot timeouts and error reporting.
//
// Endpoints:
//
//	POST /v1/chat/completions       - OpenAI-compatible echo
//	POST /slow/v1/chat/completions  - same, after MOCK_SLOW_DELAY
//	POST /fail/v1/chat/completions  - always 500
//	POST /generic                   - returns {"data":{"answer":...}}
//
// Configuration:
//
//	MOCK_PORT        - Listen port (default: 9090)
//	MOCK_NAME        - Name used in replies (default: "mock")
//	MOCK_API_KEY     - When set, requests must carry "Bearer <key>"
//	MOCK_SLOW_DELAY  - Delay for the slow endpoint (default: 90s)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

// backend holds the mock's settings.
type backend struct {
	name      string
	apiKey    string
	slowDelay time.Duration
}

func main() {
	port := envOr("MOCK_PORT", "9090")
	delay, err := time.ParseDuration(envOr("MOCK_SLOW_DELAY", "90s"))
	if err != nil {
		slog.Error("invalid MOCK_SLOW_DELAY", "error", err)
		os.Exit(1)
	}

	b := &backend{
		name:      envOr("MOCK_NAME", "mock"),
		apiKey:    os.Getenv("MOCK_API_KEY"),
		slowDelay: delay,
	}

	srv := &http.Server{Addr: ":" + port, Handler: b.routes()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port, "name", b.name, "slow_delay", b.slowDelay)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func (b *backend) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", b.handleChatCompletions)
	mux.HandleFunc("POST /slow/v1/chat/completions", b.handleSlow)
	mux.HandleFunc("POST /fail/v1/chat/completions", handleFail)
	mux.HandleFunc("POST /generic", b.handleGeneric)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

func (b *backend) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]string{"message": "invalid api key", "type": "authentication_error"},
		})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]string{"message": "invalid JSON: " + err.Error()},
		})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		ID:     fmt.Sprintf("chatcmpl-%d", time.Now().UnixNano()),
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []chatChoice{{
			Message:      chatMessage{Role: "assistant", Content: b.reply(req.Messages)},
			FinishReason: "stop",
		}},
	})
}

func (b *backend) handleSlow(w http.ResponseWriter, r *http.Request) {
	select {
	case <-time.After(b.slowDelay):
		b.handleChatCompletions(w, r)
	case <-r.Context().Done():
	}
}

func handleFail(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error": map[string]string{"message": "upstream exploded"},
	})
}

// handleGeneric accepts any JSON body carrying a messages array, as
// produced by the default generic body template.
func (b *backend) handleGeneric(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]string{"answer": b.reply(req.Messages)},
	})
}

func (b *backend) authorized(r *http.Request) bool {
	if b.apiKey == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+b.apiKey
}

// reply echoes the last user message.
func (b *backend) reply(messages []chatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return fmt.Sprintf("%s heard: %s", b.name, strings.TrimSpace(messages[i].Content))
		}
	}
	return fmt.Sprintf("%s heard nothing", b.name)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
