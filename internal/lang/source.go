package lang

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Source owns the active registry. It is built eagerly and only changes
// through Reload, which swaps in a freshly built registry.
type Source struct {
	dir       string
	overrides map[string]Override
	logger    *slog.Logger

	current atomic.Pointer[Registry]
	version atomic.Uint64
}

// NewSource loads the registry from dir (falling back to the built-in tables)
// and applies overrides.
func NewSource(dir string, overrides map[string]Override, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Source{dir: dir, overrides: overrides, logger: logger}
	_ = s.Reload()
	return s
}

// Static wraps an already built registry.
func Static(r *Registry) *Source {
	s := &Source{logger: slog.Default()}
	s.current.Store(r)
	s.version.Store(1)
	return s
}

// Current returns the active registry.
func (s *Source) Current() *Registry {
	return s.current.Load()
}

// Version is incremented on every reload.
func (s *Source) Version() uint64 {
	return s.version.Load()
}

// Reload rebuilds the registry. If the directory cannot be loaded the
// built-in tables are used and the load error is returned.
func (s *Source) Reload() error {
	base, err := LoadDir(s.dir)
	if err != nil {
		if s.dir != "" {
			s.logger.Warn("language resources unavailable, using built-in tables", "dir", s.dir, "error", err)
		}
		base = Builtin()
	}
	if len(s.overrides) > 0 {
		base = base.Merge(s.overrides)
	}
	s.current.Store(base)
	v := s.version.Add(1)
	s.logger.Debug("language registry loaded", "version", v, "languages", base.Codes())
	if err != nil && s.dir != "" {
		return fmt.Errorf("load languages: %w", err)
	}
	return nil
}

// Watch reloads the registry whenever a JSON document in the directory
// changes. It blocks until ctx is done.
func (s *Source) Watch(ctx context.Context) error {
	if s.dir == "" {
		return ErrNoResource
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(ev.Name) != ".json" {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				s.logger.Info("language resource changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
				_ = s.Reload()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("language watcher error", "error", err)
		}
	}
}
