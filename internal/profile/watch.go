package profile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rook-computer/rendersettings/internal/settings"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

const defaultDebounce = 100 * time.Millisecond

// Watcher re-applies a profile file to a registry whenever it changes.
type Watcher struct {
	Path     string
	Registry *settings.Registry
	Logger   Logger

	// Debounce collapses bursts of events from editors that write in
	// several steps.
	Debounce time.Duration

	// OnApply, if set, is called after every reload attempt.
	OnApply func(p *Profile, err error)
}

func (w *Watcher) Run(ctx context.Context) error {
	if w.Registry == nil {
		return errors.New("no registry configured")
	}
	target, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", w.Path, err)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory: editors often replace the file by rename.
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	w.infof("watching %s", target)

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				reload = time.After(debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.errorf("watch error: %v", err)
		case <-reload:
			reload = nil
			w.reload(target)
		}
	}
}

func (w *Watcher) reload(path string) {
	p, err := Load(path)
	if err == nil {
		err = Apply(w.Registry, p)
	}
	if err != nil {
		w.errorf("reload %s failed: %v", path, err)
	} else {
		w.infof("applied %s", path)
	}
	if w.OnApply != nil {
		w.OnApply(p, err)
	}
}

func (w *Watcher) infof(format string, args ...interface{}) {
	if w.Logger != nil {
		w.Logger.Infof("profile", format, args...)
	}
}

func (w *Watcher) errorf(format string, args ...interface{}) {
	if w.Logger != nil {
		w.Logger.Errorf("profile", format, args...)
	}
}
