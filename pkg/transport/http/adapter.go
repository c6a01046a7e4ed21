// Package http serves the trichat API over HTTP: the public chat route,
// admin login and the slot configuration endpoints, plus health and
// metrics endpoints.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/trichat/pkg/api"
	"github.com/rhuss/trichat/pkg/auth"
	"github.com/rhuss/trichat/pkg/auth/session"
	"github.com/rhuss/trichat/pkg/debug"
	"github.com/rhuss/trichat/pkg/observability"
	"github.com/rhuss/trichat/pkg/provider"
	"github.com/rhuss/trichat/pkg/storage"
	"github.com/rhuss/trichat/pkg/transport"
)

// Messages returned to clients, kept identical to the browser UI's
// expectations.
const (
	MsgServerError        = "Server error"
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidConfig      = "Invalid config payload"
	MsgEmptyMessages      = "messages must be a non-empty array"
)

// Config holds configuration for the HTTP adapter.
type Config struct {
	// MaxBodySize bounds request bodies (default 1 MiB).
	MaxBodySize int64

	// Validation bounds chat requests.
	Validation api.ValidationConfig

	// MetricsPath serves Prometheus metrics when non-empty.
	MetricsPath string

	// Sessions handles admin login. Nil disables login.
	Sessions *session.Manager

	// Admin authenticates /api/admin routes and /api/me. When nil, a
	// chain over Sessions is used that rejects everything else.
	Admin *auth.AuthChain

	// ChatLimiter rate-limits /api/chat per client IP. Nil disables it.
	ChatLimiter auth.RateLimiter
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20,
		Validation:  api.DefaultValidationConfig(),
		MetricsPath: "/metrics",
	}
}

// Adapter routes HTTP requests to the chat handler and the slot store.
type Adapter struct {
	chat   transport.ChatHandler
	store  storage.SlotStore
	config Config
	admin  *auth.AuthChain
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewAdapter creates an HTTP adapter. Middleware is applied to the chat
// handler in the given order.
func NewAdapter(chat transport.ChatHandler, store storage.SlotStore, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		chat = transport.Chain(middlewares...)(chat)
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	if cfg.Validation == (api.ValidationConfig{}) {
		cfg.Validation = api.DefaultValidationConfig()
	}

	admin := cfg.Admin
	if admin == nil {
		admin = &auth.AuthChain{DefaultDecision: auth.No}
		if cfg.Sessions != nil {
			admin.Authenticators = []auth.Authenticator{cfg.Sessions}
		}
	}

	a := &Adapter{
		chat:   chat,
		store:  store,
		config: cfg,
		admin:  admin,
		mux:    http.NewServeMux(),
		logger: slog.Default(),
	}

	requireAdmin := auth.Middleware(admin, nil)
	limitChat := auth.RateLimit(cfg.ChatLimiter, "chat", auth.RemoteIP)

	a.mux.Handle("POST /api/chat", limitChat(http.HandlerFunc(a.handleChat)))
	a.mux.HandleFunc("POST /api/login", a.handleLogin)
	a.mux.HandleFunc("POST /api/logout", a.handleLogout)
	a.mux.HandleFunc("GET /api/me", a.handleMe)
	a.mux.Handle("GET /api/admin/config", requireAdmin(http.HandlerFunc(a.handleGetConfig)))
	a.mux.Handle("POST /api/admin/config", requireAdmin(http.HandlerFunc(a.handleReplaceConfig)))
	a.mux.HandleFunc("GET /healthz", a.handleHealthz)
	a.mux.HandleFunc("GET /readyz", a.handleReadyz)
	if cfg.MetricsPath != "" {
		a.mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	return a
}

// Handler returns the http.Handler for this adapter, wrapped with request
// ID propagation and request metrics.
func (a *Adapter) Handler() http.Handler {
	return httpRequestIDMiddleware(observability.MetricsMiddleware(a.mux))
}

// httpRequestIDMiddleware takes the request ID from X-Request-ID or creates
// one, stores it in the context and echoes it in the response header.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = transport.NewRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(transport.ContextWithRequestID(r.Context(), id)))
	})
}

// handleChat handles POST /api/chat.
func (a *Adapter) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if apiErr := api.ValidateChatRequest(&req, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	result, err := a.chat.Chat(r.Context(), &req)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Type != api.ErrorTypeServerError {
			transport.WriteAPIError(w, apiErr)
			return
		}
		a.logger.Error("chat error",
			"request_id", transport.RequestIDFromContext(r.Context()),
			"error", err,
		)
		transport.WriteAPIError(w, api.NewServerError(MsgServerError))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin handles POST /api/login with a JSON or form body.
func (a *Adapter) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds loginRequest
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	if mediaType(r) == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err == nil {
			creds.Username = r.PostForm.Get("username")
			creds.Password = r.PostForm.Get("password")
		}
	} else {
		// A malformed body is treated as empty credentials.
		_ = json.NewDecoder(r.Body).Decode(&creds)
	}

	if a.config.Sessions == nil {
		transport.WriteAPIError(w, api.NewUnauthorizedError(MsgInvalidCredentials))
		return
	}
	token, expires, err := a.config.Sessions.Login(creds.Username, creds.Password)
	if err != nil {
		a.logger.Warn("admin login failed", "username", creds.Username, "remote_addr", r.RemoteAddr)
		transport.WriteAPIError(w, api.NewUnauthorizedError(MsgInvalidCredentials))
		return
	}

	a.config.Sessions.SetCookie(w, token, expires)
	a.logger.Info("admin logged in", "username", creds.Username)
	writeOK(w)
}

// handleLogout handles POST /api/logout. It succeeds without a session.
func (a *Adapter) handleLogout(w http.ResponseWriter, r *http.Request) {
	if a.config.Sessions != nil {
		a.config.Sessions.Logout(w, r)
	}
	writeOK(w)
}

// handleMe handles GET /api/me.
func (a *Adapter) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"isAdmin": a.admin.IsAdmin(r)})
}

// handleGetConfig handles GET /api/admin/config.
func (a *Adapter) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	slots, err := a.store.Slots(r.Context())
	if err != nil {
		a.logger.Error("reading slot configuration", "error", err)
		transport.WriteAPIError(w, api.NewServerError(MsgServerError))
		return
	}
	if slots == nil {
		slots = provider.Slots{}
	}
	writeJSON(w, http.StatusOK, storage.Document{Slots: slots})
}

// handleReplaceConfig handles POST /api/admin/config. The payload replaces
// the whole configuration.
func (a *Adapter) handleReplaceConfig(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		a.writeBodyError(w, err)
		return
	}

	slots, err := storage.DecodeDocument(body)
	if err != nil {
		debug.Log("transport", "rejecting slot configuration", "error", err)
		transport.WriteAPIError(w, api.NewInvalidRequestError("slots", MsgInvalidConfig))
		return
	}

	if err := a.store.Replace(r.Context(), slots); err != nil {
		if errors.Is(err, storage.ErrInvalidConfig) {
			transport.WriteAPIError(w, api.NewInvalidRequestError("slots", MsgInvalidConfig))
			return
		}
		a.logger.Error("storing slot configuration", "error", err)
		transport.WriteAPIError(w, api.NewServerError(MsgServerError))
		return
	}

	subject := ""
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		subject = id.Subject
	}
	a.logger.Info("slot configuration replaced", "by", subject, "slots", len(slots))
	writeOK(w)
}

// handleHealthz reports liveness.
func (a *Adapter) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// handleReadyz reports whether the slot store is reachable.
func (a *Adapter) handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := a.store.HealthCheck(r.Context()); err != nil {
		a.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("store unavailable\n"))
		return
	}
	w.Write([]byte("ok\n"))
}

// decodeJSON decodes a JSON request body into v, writing the error
// response itself when it returns false. An empty body decodes to the
// zero value.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := mediaType(r); ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "messages" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("messages", MsgEmptyMessages))
		return false
	}
	a.writeBodyError(w, err)
	return false
}

func (a *Adapter) writeBodyError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
			http.StatusRequestEntityTooLarge,
		)
		return
	}
	transport.WriteErrorResponse(w,
		api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()),
		http.StatusBadRequest,
	)
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ct
	}
	return mt
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
