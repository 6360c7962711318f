package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay coalesces the bursts of events editors produce for one save.
const reloadDelay = 100 * time.Millisecond

// Watch reloads the model table in formats whenever the file at path
// changes, until ctx is done. The parent directory is watched so that
// editors replacing the file by rename are noticed too. A file that fails to
// load leaves the table untouched.
func Watch(ctx context.Context, path string, formats *ToolFormats, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("could not resolve config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create config watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("could not watch %s: %w", filepath.Dir(abs), err)
	}

	go watchLoop(ctx, watcher, abs, formats, logger)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, formats *ToolFormats, logger *zap.Logger) {
	defer watcher.Close()

	timer := time.NewTimer(reloadDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(reloadDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", zap.Error(err))

		case <-timer.C:
			reload(path, formats, logger)
		}
	}
}

func reload(path string, formats *ToolFormats, logger *zap.Logger) {
	cfg, err := Load(path)
	if err != nil {
		logger.Warn("keeping previous model table", zap.String("path", path), zap.Error(err))
		return
	}

	formats.Replace(cfg.ModelFormats(), cfg.Inference.DefaultToolPromptFormat)
	logger.Info("reloaded model table",
		zap.String("path", path),
		zap.Int("models", formats.Len()),
	)
}
