package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"thermarun/internal/logger"
)

// FileWatcher monitors a single file for changes and invokes a callback on
// modification. It watches the containing directory so editors that replace
// the file (rename + create) are still observed.
type FileWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func()

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

// NewFileWatcher creates a watcher that calls onChange when the file changes.
func NewFileWatcher(path string, onChange func()) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		path:     path,
		watcher:  w,
		onChange: onChange,
		stopChan: make(chan struct{}),
	}, nil
}

// Start begins watching for file changes.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	log := logger.WithComponent("file-watcher")
	log.Info().Str("path", fw.path).Msg("Started watching file")

	go fw.watch()
	return nil
}

// Stop stops watching for changes.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopChan)
	return fw.watcher.Close()
}

func (fw *FileWatcher) watch() {
	log := logger.WithComponent("file-watcher")
	filename := filepath.Base(fw.path)

	for {
		select {
		case <-fw.stopChan:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("path", fw.path).Str("op", event.Op.String()).Msg("Config file changed")
			fw.onChange()
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// NewLoggingWatcher watches the config file and re-applies the Logging
// section on change. Only logging is hot-reloadable: the sensor tables and
// thermal intervals are immutable for the process lifetime, so changes to
// them are ignored until restart.
func NewLoggingWatcher(path string, apply func(logger.Config)) (*FileWatcher, error) {
	return NewFileWatcher(path, func() {
		log := logger.WithComponent("config")
		cfg, err := Load(path)
		if err != nil {
			log.Error().Err(err).Msg("Reload failed, keeping previous logging configuration")
			return
		}
		apply(cfg.Logging)
	})
}
