// Package watch re-converts a file every time it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mcncl/humlplay/internal/errors"
	"github.com/mcncl/humlplay/internal/models"
	"github.com/mcncl/humlplay/internal/session"
)

// DefaultDebounce is how long the file must stay quiet before it is reloaded
const DefaultDebounce = 200 * time.Millisecond

// Handler receives every conversion outcome
type Handler func(out models.Outcome)

// Watcher feeds a file into a session and converts it after each change
type Watcher struct {
	path     string
	session  *session.Session
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger
}

// Option configures a Watcher
type Option func(*Watcher)

// WithDebounce sets the quiet period after the last change
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger overrides the default slog logger
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a watcher for path. The session's source format should already
// match the file.
func New(path string, s *session.Session, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		path:     path,
		session:  s,
		handler:  handler,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run converts the file once, then again after every change, until ctx is done.
// The directory is watched rather than the file so editors that replace the
// file on save keep being followed.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid path '%s'", w.path), errors.ErrInvalidFilePath)
	}
	// events carry resolved directory names
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewInputError("failed to start file watcher", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return errors.NewInputError(fmt.Sprintf("failed to watch '%s'", filepath.Dir(abs)), err)
	}

	if err := w.reload(abs); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("file changed", "path", abs, "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-fire:
			fire = nil
			if err := w.reload(abs); err != nil {
				// the file may be mid-replace; the next event retries
				w.logger.Warn("reload failed", "path", abs, "error", err)
			}
		}
	}
}

func (w *Watcher) reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewInputError(fmt.Sprintf("file '%s' not found", path), errors.ErrFileNotFound)
		}
		return errors.NewInputError(fmt.Sprintf("failed to read file '%s'", path), err)
	}

	w.session.EditSource(string(data))
	out, err := w.session.Convert()
	if err != nil {
		return err
	}
	w.handler(out)
	return nil
}
