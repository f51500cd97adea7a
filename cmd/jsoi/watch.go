package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchFile calls onChange after each write to path until ctx is done.
// It watches the parent directory with fsnotify, falling back to polling
// the modification time when that fails.
func watchFile(ctx context.Context, path string, interval time.Duration, logger *slog.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Debug("file events unavailable, polling", slog.Any("error", err))
		return pollFile(ctx, path, interval, onChange)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing to it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Debug("watch failed, polling", slog.Any("error", err))
		return pollFile(ctx, path, interval, onChange)
	}

	base := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

// pollFile checks the modification time of path every interval.
func pollFile(ctx context.Context, path string, interval time.Duration, onChange func()) error {
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	var last time.Time
	if info, err := os.Stat(path); err == nil {
		last = info.ModTime()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if !info.ModTime().Equal(last) {
				last = info.ModTime()
				onChange()
			}
		}
	}
}
