package hotreload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// LevelSetter applies a new log level at runtime.
type LevelSetter interface {
	SetLevel(level string) error
}

// LevelLoader reads the desired log level from a config file.
type LevelLoader func(path string) (string, error)

// LevelReloader watches a configuration file and applies its logging level
// to a live logger. No other setting is reloaded.
type LevelReloader struct {
	path     string
	debounce time.Duration
	target   LevelSetter
	load     LevelLoader
	watcher  *Watcher
	logger   *zap.Logger
}

// NewLevelReloader prepares a reloader for configFile. The containing
// directory is watched so that editors which replace the file are seen.
func NewLevelReloader(configFile string, debounce time.Duration, target LevelSetter, load LevelLoader, logger *zap.Logger) (*LevelReloader, error) {
	absPath, err := filepath.Abs(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	watcher, err := NewWatcher(logger)
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Stop()
		return nil, err
	}

	return &LevelReloader{
		path:     absPath,
		debounce: debounce,
		target:   target,
		load:     load,
		watcher:  watcher,
		logger:   logger,
	}, nil
}

// Run processes file events until ctx is cancelled.
func (r *LevelReloader) Run(ctx context.Context) {
	r.watcher.Start()
	defer r.watcher.Stop()

	r.logger.Info("Log level hot reload enabled",
		zap.String("path", r.path),
		zap.Duration("debounce", r.debounce),
	)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending bool
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-r.watcher.Events():
			if !ok {
				return
			}
			if filepath.Clean(event.Path) != r.path {
				continue
			}
			pending = true
			if timer == nil {
				timer = time.NewTimer(r.debounce)
			} else {
				timer.Reset(r.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if pending {
				pending = false
				r.reload()
			}
		}
	}
}

func (r *LevelReloader) reload() {
	level, err := r.load(r.path)
	if err != nil {
		r.logger.Warn("Hot reload skipped, keeping current log level", zap.Error(err))
		return
	}

	if err := r.target.SetLevel(level); err != nil {
		r.logger.Error("Failed to apply log level", zap.String("level", level), zap.Error(err))
		return
	}

	r.logger.Info("Log level reloaded", zap.String("level", level))
}
