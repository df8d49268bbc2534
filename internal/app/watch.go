package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"trackroute/internal/telemetry"
)

// reloadDebounce folds the burst of events an editor save produces into one
// reload.
const reloadDebounce = 100 * time.Millisecond

type fixtureWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  telemetry.Logger
}

// newFixtureWatcher watches the fixture's directory, since editors often
// replace files instead of writing them in place.
func newFixtureWatcher(path string, logger telemetry.Logger) (*fixtureWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve fixture %s", path)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(abs))
	}
	return &fixtureWatcher{path: abs, watcher: watcher, logger: logger}, nil
}

// run calls reload after the fixture changes, until ctx is done.
func (w *fixtureWatcher) run(ctx context.Context, reload func()) {
	defer w.watcher.Close()

	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)

		case <-timer.C:
			reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("fixture watcher error: %v", err)
		}
	}
}
