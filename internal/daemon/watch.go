// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/livegrab/internal/log"
)

const changedOps = fsnotify.Create | fsnotify.Write | fsnotify.Rename

// watchFile calls notify once per burst of changes to path. The parent
// directory is watched so editors that replace the file by rename are seen.
// It returns nil when ctx is cancelled.
func watchFile(ctx context.Context, logger zerolog.Logger, path string, debounce time.Duration, notify func(reason string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}
	targetName := filepath.Base(path)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != targetName || event.Op&changedOps == 0 {
				continue
			}
			timer.Reset(debounce)
		case <-timer.C:
			logger.Info().
				Str(log.FieldEvent, "channels.changed").
				Str(log.FieldPath, path).
				Msg("channel list changed, scheduling refresh")
			notify("channels_changed")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("fsnotify watcher error")
		}
	}
}
