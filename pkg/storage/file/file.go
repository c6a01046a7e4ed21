// Package file provides a SlotStore backed by a JSON document on disk,
// the providers.json format:
//
//	{
//	  "slots": {
//	    "slotA": {"label": "...", "providerType": "openrouter", ...}
//	  }
//	}
//
// The file is created with provider.DefaultSlots when it does not exist.
// With watching enabled, edits made outside the process are picked up
// without a restart.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rhuss/trichat/pkg/debug"
	"github.com/rhuss/trichat/pkg/provider"
	"github.com/rhuss/trichat/pkg/storage"
)

// Name identifies this store in metrics and logs.
const Name = "file"

// DefaultPath is where the configuration lives unless configured otherwise.
const DefaultPath = "config/providers.json"

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 100 * time.Millisecond

// Store is a file-backed SlotStore. The decoded configuration is cached;
// Replace writes through and the optional watcher refreshes the cache.
type Store struct {
	path   string
	watch  bool
	logger *slog.Logger

	mu    sync.RWMutex
	slots provider.Slots

	// writeMu serializes writers so temp files never collide.
	writeMu sync.Mutex

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Ensure Store implements storage.SlotStore at compile time.
var _ storage.SlotStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithWatch enables reloading the configuration when the file changes.
func WithWatch(enabled bool) Option {
	return func(s *Store) { s.watch = enabled }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New opens the configuration at path, creating it with the default slots
// when missing.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	s := &Store{
		path:   abs,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureExists(); err != nil {
		return nil, err
	}
	slots, err := s.load()
	if err != nil {
		return nil, err
	}
	s.slots = slots

	if s.watch {
		if err := s.startWatcher(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Path returns the absolute path of the configuration file.
func (s *Store) Path() string {
	return s.path
}

// Slots returns a copy of the cached configuration.
func (s *Store) Slots(ctx context.Context) (provider.Slots, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots.Clone(), nil
}

// Replace validates slots, writes them atomically and updates the cache.
func (s *Store) Replace(ctx context.Context, slots provider.Slots) error {
	err := s.replace(slots)
	storage.RecordUpdate(Name, err)
	return err
}

func (s *Store) replace(slots provider.Slots) error {
	if err := storage.Validate(slots); err != nil {
		return err
	}
	data, err := storage.EncodeDocument(slots)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := writeAtomic(s.path, data); err != nil {
		return err
	}
	s.mu.Lock()
	s.slots = slots.Clone()
	s.mu.Unlock()

	debug.Log("storage", "slot configuration written", "path", s.path)
	return nil
}

// HealthCheck verifies the configuration file is still readable.
func (s *Store) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("slot configuration unavailable: %w", err)
	}
	return nil
}

// Close stops the watcher, if any.
func (s *Store) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
		s.wg.Wait()
	})
	return err
}

func (s *Store) ensureExists() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := storage.EncodeDocument(provider.DefaultSlots())
	if err != nil {
		return err
	}
	s.logger.Info("writing default slot configuration", "path", s.path)
	return writeAtomic(s.path, data)
}

func (s *Store) load() (provider.Slots, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	slots, err := storage.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.path, err)
	}
	return slots, nil
}

// startWatcher watches the parent directory so that atomic renames, which
// replace the file's inode, are still observed.
func (s *Store) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(s.path), err)
	}
	s.watcher = w

	s.wg.Add(1)
	go s.watchLoop()
	return nil
}

func (s *Store) watchLoop() {
	defer s.wg.Done()

	var (
		timer   *time.Timer
		timerMu sync.Mutex
	)
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, s.reload)
			timerMu.Unlock()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("slot configuration watcher error", "error", err)
		}
	}
}

// reload refreshes the cache from disk. An unreadable or invalid file keeps
// the previous configuration.
func (s *Store) reload() {
	select {
	case <-s.done:
		return
	default:
	}

	slots, err := s.load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		s.logger.Warn("ignoring invalid slot configuration", "path", s.path, "error", err)
		storage.RecordUpdate(Name, err)
		return
	}

	s.mu.Lock()
	changed := !reflect.DeepEqual(s.slots, slots)
	if changed {
		s.slots = slots
	}
	s.mu.Unlock()

	if changed {
		s.logger.Info("reloaded slot configuration", "path", s.path)
		storage.RecordUpdate(Name, nil)
	}
}

// writeAtomic writes data to a temp file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".providers-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
