// Package debug provides category-gated debug logging for trichat.
//
// Categories select WHAT is logged (TRICHAT_DEBUG=providers,relay) and the
// level selects HOW MUCH (TRICHAT_LOG_LEVEL=DEBUG|TRACE). At TRACE, outbound
// request and response bodies are included, truncated.
//
//	debug.Log("providers", "backend request", "url", url)
//
// Categories: providers, relay, auth, storage, transport, config, all.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// LevelTrace is below slog.LevelDebug and enables body logging.
const LevelTrace = slog.LevelDebug - 4

// Environment variables consulted by Init. They take precedence over
// values from the config file.
const (
	EnvCategories = "TRICHAT_DEBUG"
	EnvLevel      = "TRICHAT_LOG_LEVEL"
	EnvFormat     = "TRICHAT_LOG_FORMAT"
)

// categories is read-only after Init.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv(EnvCategories))
}

// Settings carries the logging values read from configuration.
type Settings struct {
	Categories string
	Level      string
	// Format is "text" (default) or "json".
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Init installs the default slog logger and the enabled debug categories.
func Init(s Settings) {
	cats := envOr(EnvCategories, s.Categories)
	categories = parseCategories(cats)

	out := s.Output
	if out == nil {
		out = os.Stderr
	}
	logger := NewLogger(out, envOr(EnvLevel, s.Level), envOr(EnvFormat, s.Format))
	slog.SetDefault(logger)
}

// NewLogger builds a slog logger writing to w at the given level and format.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Enabled reports whether debug output is active for the category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the category. No-op when disabled.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level message for the category.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether TRACE output would be emitted for the category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

// Raw writes plain text to stderr when the category is traced.
func Raw(category string, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(os.Stderr, text)
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories, sorted.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
