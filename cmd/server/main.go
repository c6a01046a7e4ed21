// Command server runs the trichat relay.
//
// Configuration is read from a YAML file (see pkg/config) with environment
// overrides. A .env file in the working directory is loaded first when
// present. Common variables:
//
//	TRICHAT_PORT             - Listen port (default: 3000)
//	TRICHAT_STORE            - Slot store: "file", "memory" or "postgres" (default: "file")
//	TRICHAT_STORE_PATH       - Slot file for the file store (default: config/providers.json)
//	TRICHAT_ADMIN_PASSWORD   - Admin password; login is disabled when empty
//	TRICHAT_SESSION_SECRET   - Session signing secret (random when empty)
//	TRICHAT_PROVIDER_TIMEOUT - Per-slot timeout, e.g. "60s" or "60000"
//	TRICHAT_DEBUG            - Debug categories, e.g. "providers,relay" or "all"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/rhuss/trichat/pkg/auth"
	"github.com/rhuss/trichat/pkg/auth/apikey"
	"github.com/rhuss/trichat/pkg/auth/noop"
	"github.com/rhuss/trichat/pkg/auth/session"
	"github.com/rhuss/trichat/pkg/config"
	"github.com/rhuss/trichat/pkg/debug"
	"github.com/rhuss/trichat/pkg/provider"
	"github.com/rhuss/trichat/pkg/relay"
	"github.com/rhuss/trichat/pkg/storage"
	"github.com/rhuss/trichat/pkg/storage/file"
	"github.com/rhuss/trichat/pkg/storage/memory"
	"github.com/rhuss/trichat/pkg/storage/postgres"
	transporthttp "github.com/rhuss/trichat/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init(debug.Settings{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
	})
	logger := slog.Default()

	ctx := context.Background()

	store, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client := provider.NewClient(provider.WithTimeout(cfg.Relay.ProviderTimeout))
	defer client.Close()

	caller := relay.NewCaller(client, relay.WithLogger(logger))
	service := relay.NewService(store, relay.New(caller))

	sessions, err := session.New(session.Config{
		Username: cfg.Auth.AdminUsername,
		Password: cfg.Auth.AdminPassword,
		Secret:   cfg.Auth.SessionSecret,
		TTL:      cfg.Auth.SessionTTL,
		Secure:   cfg.Auth.SecureCookie,
	})
	if err != nil {
		return err
	}
	if !sessions.LoginEnabled() {
		logger.Warn("admin login disabled, set TRICHAT_ADMIN_PASSWORD to enable it")
	}
	if cfg.Auth.SessionSecret == "" {
		logger.Warn("no session secret configured, sessions will not survive a restart")
	}

	adapterCfg := transporthttp.DefaultConfig()
	adapterCfg.MaxBodySize = cfg.Server.MaxBodySize
	adapterCfg.Sessions = sessions
	adapterCfg.Admin = buildAdminChain(cfg.Auth, sessions, logger)
	if !cfg.Observability.Metrics.Enabled {
		adapterCfg.MetricsPath = ""
	} else {
		adapterCfg.MetricsPath = cfg.Observability.Metrics.Path
	}
	if cfg.RateLimit.ChatPerMinute > 0 {
		adapterCfg.ChatLimiter = auth.NewInProcessLimiter(cfg.RateLimit.ChatPerMinute)
		logger.Info("chat rate limit enabled", "per_minute", cfg.RateLimit.ChatPerMinute)
	}

	srv := transporthttp.NewServer(service, store,
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithAdapterConfig(adapterCfg),
		transporthttp.WithTimeouts(cfg.Server.ReadHeaderTimeout, cfg.Server.WriteTimeout, 0),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
	)

	logger.Info("trichat configured",
		"store", cfg.Store.Type,
		"provider_timeout", cfg.Relay.ProviderTimeout,
		"debug", debug.Categories(),
	)
	return srv.ListenAndServe()
}

// openStore creates the slot store selected by configuration.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (storage.SlotStore, error) {
	switch cfg.Type {
	case memory.Name:
		logger.Info("slot store", "type", memory.Name)
		return memory.New(nil), nil
	case postgres.Name:
		s, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Postgres.DSN,
			Name:           cfg.Postgres.Name,
			MaxConns:       cfg.Postgres.MaxConns,
			MigrateOnStart: cfg.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		logger.Info("slot store", "type", postgres.Name, "name", cfg.Postgres.Name)
		return s, nil
	default:
		s, err := file.New(cfg.Path, file.WithWatch(cfg.Watch), file.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		logger.Info("slot store", "type", file.Name, "path", s.Path(), "watch", cfg.Watch)
		return s, nil
	}
}

// buildAdminChain assembles the authenticators for admin routes: the
// session cookie first, then bearer API keys. With auth disabled every
// admin request is let through.
func buildAdminChain(cfg config.AuthConfig, sessions *session.Manager, logger *slog.Logger) *auth.AuthChain {
	if cfg.Disabled {
		logger.Warn("admin authentication disabled, every client is treated as admin")
		return &auth.AuthChain{
			Authenticators:  []auth.Authenticator{&noop.Authenticator{}},
			DefaultDecision: auth.No,
		}
	}

	chain := &auth.AuthChain{
		Authenticators:  []auth.Authenticator{sessions},
		DefaultDecision: auth.No,
	}
	if len(cfg.APIKeys) > 0 {
		keys := make([]apikey.Key, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			keys = append(keys, apikey.Key{Name: k.Name, Key: k.Key})
		}
		a := apikey.New(keys)
		chain.Authenticators = append(chain.Authenticators, a)
		logger.Info("admin API keys enabled", "count", a.Len())
	}
	return chain
}
