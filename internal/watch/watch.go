// Package watch re-runs translation when legacy sources change. It is a
// debounced fsnotify wrapper filtered to the legacy source extensions; the
// pipeline itself stays synchronous per file.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"tsmigrate/internal/observability"
)

// watched are the file extensions that trigger a re-run.
var watched = map[string]bool{
	".cpp": true,
	".xml": true,
}

type Watcher struct {
	log          *zap.Logger
	fsWatcher    *fsnotify.Watcher
	debounce     time.Duration
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	onChange     func([]string)

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
	done      chan struct{}
	closeOnce sync.Once
}

func New(log *zap.Logger, debounce time.Duration, excludeDirs, excludeFiles []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	if log == nil {
		log = zap.NewNop()
	}

	compile := func(patterns []string) ([]glob.Glob, error) {
		out := make([]glob.Glob, 0, len(patterns))
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, nil
	}
	dirs, err := compile(excludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compile(excludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		log:          log,
		fsWatcher:    fsw,
		debounce:     debounce,
		excludeDirs:  dirs,
		excludeFiles: files,
		onChange:     onChange,
		pending:      make(map[string]time.Time),
		done:         make(chan struct{}),
	}, nil
}

// Watch registers every non-excluded directory under the given roots and
// starts the event loop.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if w.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		})
		if err != nil {
			return err
		}
	}
	go w.loop()
	return nil
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.excludedDir(filepath.Base(event.Name)) {
						_ = w.fsWatcher.Add(event.Name)
					}
					continue
				}
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.enqueue(event.Name)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	name := filepath.Base(path)
	if !watched[strings.ToLower(filepath.Ext(name))] {
		return false
	}
	for _, g := range w.excludeFiles {
		if g.Match(name) {
			return false
		}
	}
	return true
}

func (w *Watcher) enqueue(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	select {
	case <-w.done:
		return
	default:
	}
	w.onChange(paths)
}

func (w *Watcher) excludedDir(name string) bool {
	for _, g := range w.excludeDirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
