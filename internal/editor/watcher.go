// Package editor adapts a draft file on disk into the editing surface of an
// autosave session: every change to the file is reported as an edit.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/draftkeeper/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// ReadDraft returns the file content, or "" when the file does not exist yet.
func ReadDraft(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read draft: %w", err)
	}
	return string(b), nil
}

// Watcher reports the content of one file each time it changes.
//
// The parent directory is watched rather than the file, so editors that save
// by writing a temp file and renaming it over the original are followed.
type Watcher struct {
	path     string
	onChange func(content string)
	log      logging.Logger

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWatcher(path string, onChange func(content string), log logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve draft path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		path:     abs,
		onChange: onChange,
		log:      log.With("draft", abs),
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

func (w *Watcher) Path() string { return w.path }

// Start begins watching. Events are delivered from a single goroutine, in
// order, until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop is idempotent and waits for the event goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
	w.wg.Wait()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.emit(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn(ctx, "draft watcher error", "error", err)
		}
	}
}

func (w *Watcher) emit(ctx context.Context) {
	b, err := os.ReadFile(w.path)
	if err != nil {
		// the file may be mid-rename; the next event carries the content
		w.log.Debug(ctx, "draft not readable", "error", err)
		return
	}
	w.onChange(string(b))
}
