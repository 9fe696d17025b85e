// Copyright 2026 Pontoon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package host

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	logpkg "github.com/pontoon-io/pontoon/internal/log"
	"github.com/pontoon-io/pontoon/pkg/errors"
)

// configWatcher notices edits to the configuration file while the daemon
// runs. The adapter set is built once at startup, so a change only logs
// that a restart is required; it never reshapes the live instance map.
type configWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *slog.Logger
	done    chan struct{}
}

// WatchConfig starts watching the given configuration file.
func (c *Container) WatchConfig(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating config watcher")
	}
	// Watch the directory: editors replace the file, which drops a watch
	// on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "watching %s", filepath.Dir(path))
	}

	w := &configWatcher{
		watcher: watcher,
		path:    filepath.Clean(path),
		logger:  c.logger,
		done:    make(chan struct{}),
	}
	go w.run()

	c.mu.Lock()
	c.watcher = w
	c.mu.Unlock()

	c.logger.Info("watching configuration", "path", path)
	return nil
}

func (w *configWatcher) run() {
	defer close(w.done)
	for {
		select {
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
			w.logger.Warn("configuration changed on disk; restart pontoond to apply",
				"path", w.path, "op", event.Op.String())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", logpkg.Error(err))
		}
	}
}

func (w *configWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
