package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/tracerender/internal/watcher"
)

// Watch starts watching the config file at path (DefaultPath when empty).
// It calls onChange with the new config when a change is detected.
// It returns a close function to stop watching.
func Watch(ctx context.Context, path string, onChange func(*Config)) (func(), error) {
	if path == "" {
		path = DefaultPath()
	}
	logger := slog.Default().With("component", "config")

	// Debounce to avoid multiple reloads on a single save
	w, err := watcher.Watch(ctx, path, func(changed string) {
		cfg, err := Load(changed)
		if err != nil {
			logger.Error("reloading config", "path", changed, "error", err)
			return
		}
		logger.Info("config reloaded", "path", changed)
		if onChange != nil {
			onChange(cfg)
		}
	}, watcher.WithDebounce(500*time.Millisecond), watcher.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	return w.Stop, nil
}
