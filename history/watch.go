package history

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// Watcher reports bundles as they are allocated under a history root,
// by this or any other process.  Bundles that already exist when the
// watcher starts are not reported.
type Watcher struct {
	Root    string
	Bundles chan *Bundle
	Errors  chan error

	watcher *fsnotify.Watcher
	seen    map[string]bool
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching root, creating it if necessary.
func NewWatcher(root string) (w *Watcher, err error) {
	w = &Watcher{
		Root:    filepath.Clean(root),
		Bundles: make(chan *Bundle, 16),
		Errors:  make(chan error, 1),
		seen:    make(map[string]bool),
		done:    make(chan struct{}),
	}
	defer func() {
		if err != nil && w.watcher != nil {
			w.watcher.Close()
		}
	}()
	defer Return(&err)

	err = os.MkdirAll(root, 0755)
	Ck(err)
	w.watcher, err = fsnotify.NewWatcher()
	Ck(err)
	err = w.watcher.Add(root)
	Ck(err)

	entries, err := os.ReadDir(root)
	Ck(err)
	for _, entry := range entries {
		if !entry.IsDir() || !IsMonth(entry.Name()) {
			continue
		}
		bucket := filepath.Join(root, entry.Name())
		err = w.watcher.Add(bucket)
		Ck(err)
		existing, err := scanBucket(bucket)
		Ck(err)
		for _, b := range existing {
			w.seen[b.Path] = true
		}
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher and closes Bundles.
func (w *Watcher) Close() (err error) {
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return
}

func (w *Watcher) loop() {
	defer close(w.Bundles)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == 0 {
				continue
			}
			w.created(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Debugf("watch error: %v", err)
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.done:
			return
		}
	}
}

// created handles a new entry in the root or in a bucket.
func (w *Watcher) created(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	name := filepath.Base(path)
	parent := filepath.Dir(path)

	if parent == w.Root {
		if !IsMonth(name) {
			return
		}
		err = w.watcher.Add(path)
		if err != nil {
			log.Debugf("cannot watch %s: %v", path, err)
			return
		}
		// bundles may have landed in the bucket before the watch did
		found, err := scanBucket(path)
		if err != nil {
			log.Debugf("cannot scan %s: %v", path, err)
			return
		}
		for _, b := range found {
			w.emit(b)
		}
		return
	}

	b, err := ParseBundle(name)
	if err != nil || b.Month() != filepath.Base(parent) {
		return
	}
	b.Path = path
	w.emit(b)
}

func (w *Watcher) emit(b *Bundle) {
	if w.seen[b.Path] {
		return
	}
	w.seen[b.Path] = true
	select {
	case w.Bundles <- b:
	case <-w.done:
	}
}
