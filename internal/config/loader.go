package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader reads a YAML settings file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Settings
	onChange []func(*Settings)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	s, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = s
	return l, nil
}

// Settings returns the current (latest) settings.
func (l *Loader) Settings() *Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Debug is a Settings-backed predicate suitable for handing to the scheduler;
// it always consults the latest loaded settings.
func (l *Loader) Debug() bool {
	return l.Settings().Debug()
}

// OnChange registers a callback invoked whenever the settings reload.
func (l *Loader) OnChange(fn func(*Settings)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the settings on file
// changes. Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("settings watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					s, err := l.load()
					if err != nil {
						// Keep the old settings.
						continue
					}
					l.mu.Lock()
					l.current = s
					callbacks := make([]func(*Settings), len(l.onChange))
					copy(callbacks, l.onChange)
					l.mu.Unlock()
					for _, fn := range callbacks {
						fn(s)
					}
				}
			case <-w.Errors:
				// Ignore watcher errors.
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

// Reload forces an immediate re-read of the settings file.
func (l *Loader) Reload() (*Settings, error) {
	s, err := l.load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = s
	callbacks := make([]func(*Settings), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(s)
	}
	return s, nil
}

func (l *Loader) load() (*Settings, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", l.path, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", l.path, err)
	}
	// Apply defaults.
	if s.LogLevel == "" {
		s.LogLevel = "INFO"
	}
	if s.FrameChangeMode == "" {
		s.FrameChangeMode = FramePost
	}
	return &s, nil
}
