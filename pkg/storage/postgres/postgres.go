// Package postgres provides a PostgreSQL SlotStore. The configuration is
// kept as one JSONB document per named row in the slot_configs table and
// read on every request, so all replicas see an update immediately.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rhuss/trichat/pkg/debug"
	"github.com/rhuss/trichat/pkg/provider"
	"github.com/rhuss/trichat/pkg/storage"
)

// Name identifies this store in metrics and logs.
const Name = "postgres"

// Store is a PostgreSQL-backed SlotStore.
type Store struct {
	pool *pgxpool.Pool
	name string
}

// Ensure Store implements storage.SlotStore at compile time.
var _ storage.SlotStore = (*Store)(nil)

// New connects to PostgreSQL, applies migrations when configured and seeds
// the configuration row with provider.DefaultSlots if it does not exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool, name: cfg.Name}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}
	if err := s.seed(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Slots reads the stored configuration.
func (s *Store) Slots(ctx context.Context) (provider.Slots, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		"SELECT document FROM slot_configs WHERE name = $1", s.name,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying slot configuration: %w", err)
	}
	return storage.DecodeDocument(doc)
}

// Replace upserts the configuration row.
func (s *Store) Replace(ctx context.Context, slots provider.Slots) error {
	err := s.upsert(ctx, slots, true)
	storage.RecordUpdate(Name, err)
	return err
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) seed(ctx context.Context) error {
	if err := s.upsert(ctx, provider.DefaultSlots(), false); err != nil {
		return fmt.Errorf("seeding slot configuration: %w", err)
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, slots provider.Slots, overwrite bool) error {
	if err := storage.Validate(slots); err != nil {
		return err
	}
	doc, err := storage.EncodeDocument(slots)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO slot_configs (name, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO NOTHING`
	if overwrite {
		query = `
		INSERT INTO slot_configs (name, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`
	}

	tag, err := s.pool.Exec(ctx, query, s.name, doc)
	if err != nil {
		return fmt.Errorf("storing slot configuration: %w", err)
	}
	debug.Log("storage", "slot configuration stored", "name", s.name, "rows", tag.RowsAffected(), "overwrite", overwrite)
	return nil
}
