package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadHandler receives a freshly parsed configuration.
type ReloadHandler func(cfg *Config)

// Watcher reloads the configuration file when it changes on disk.
// A file that fails to parse is logged and the previous config stays active.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onReload ReloadHandler
	log      zerolog.Logger
	done     chan struct{}
	once     sync.Once
}

// Watch starts watching path. The directory is watched so that editors
// which replace the file on save are still seen.
func Watch(path string, onReload ReloadHandler, log zerolog.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}

	w := &Watcher{
		watcher:  fsw,
		path:     absPath,
		onReload: onReload,
		log:      log.With().Str("component", "config-watcher").Logger(),
		done:     make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, _ := filepath.Abs(event.Name); abs != w.path {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				w.log.Error().Err(err).Str("path", w.path).Msg("config reload failed")
				continue
			}
			w.log.Info().Str("path", w.path).Msg("config reloaded")
			if w.onReload != nil {
				w.onReload(cfg)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}
