package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rubiojr/explore/pkg/log"
)

// Watch reloads the config file at path whenever it changes and passes each
// successfully loaded config to onChange. Invalid files are logged and
// skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	l := log.ForService("config")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			l.Warnf("failed to close config file watcher: %v", err)
		}
	}()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching config file %s: %w", path, err)
	}
	l.Infof("watching config file for changes: %s", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often replace the file instead of writing it in place.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			l.Infof("config file changed: %s (event: %s), reloading", event.Name, event.Op.String())

			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				time.Sleep(200 * time.Millisecond)
				if _, err := os.Stat(path); os.IsNotExist(err) {
					l.Warnf("config file was removed and not replaced, skipping reload")
					continue
				}
				if err := watcher.Add(path); err != nil {
					l.Warnf("failed to re-add config file to watcher: %v", err)
				}
			} else {
				time.Sleep(100 * time.Millisecond)
			}

			cfg, err := LoadConfig(path)
			if err != nil {
				l.Errorf("failed to reload configuration: %v", err)
				continue
			}
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Warnf("config file watcher error: %v", err)
		}
	}
}
