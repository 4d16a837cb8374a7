package asset

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"scene-renderer/logging"
)

// Watcher reports files that were created or rewritten under a set of
// directories. Paths arrive on Events from a background goroutine; the
// consumer owns whatever it reloads in response.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan string
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	logger *log.Logger
}

// NewWatcher watches each directory and its subdirectories.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fw,
		events: make(chan string, 64),
		done:   make(chan struct{}),
		logger: logging.New("asset"),
	}
	for _, dir := range dirs {
		if err := w.addRecursive(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Events yields cleaned file paths. The channel is closed by Close.
func (w *Watcher) Events() <-chan string { return w.events }

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fs.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if st, err := os.Stat(e.Name); err == nil && st.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := w.addRecursive(e.Name); err != nil {
						w.logger.Warn("watch new directory", "dir", e.Name, "err", err)
					}
				}
				continue
			}
			select {
			case w.events <- filepath.Clean(e.Name):
			case <-w.done:
				return
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("asset watcher", "err", err)

		case <-w.done:
			return
		}
	}
}
