package settings

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a Settings file whenever it changes on disk, debouncing
// rapid write events the way a text editor's save-then-rewrite sequence
// produces them.
type Watcher struct {
	path string
	log  zerolog.Logger

	watcher *fsnotify.Watcher
	stop    chan struct{}
	stopped sync.Once
	done    chan struct{}

	mu      sync.RWMutex
	current Settings

	debounceMu sync.Mutex
	timer      *time.Timer

	onReload func(Settings)
}

// NewWatcher builds a Watcher over path, seeded with an already-loaded
// initial value. onReload, if non-nil, is called after every successful
// reload.
func NewWatcher(path string, initial Settings, log zerolog.Logger, onReload func(Settings)) *Watcher {
	return &Watcher{
		path:     path,
		log:      log,
		current:  initial,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		onReload: onReload,
	}
}

// Start begins watching the settings file's parent directory. fsnotify
// watches directories, not bare files, so renames-into-place (as Save
// performs) are observed reliably.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fw

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the underlying fsnotify watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.stopped.Do(func() { close(w.stop) })
	<-w.done
}

// Current returns the most recently loaded settings snapshot.
func (w *Watcher) Current() Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer w.watcher.Close()

	target, _ := filepath.Abs(w.path)
	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("settings: fsnotify error")
		}
	}
}

// scheduleReload debounces reload by 200ms so a rename-into-place (temp
// file write, then rename) only triggers one reload.
func (w *Watcher) scheduleReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.timer != nil {
		w.timer.Reset(200 * time.Millisecond)
		return
	}
	w.timer = time.AfterFunc(200*time.Millisecond, func() {
		w.debounceMu.Lock()
		w.timer = nil
		w.debounceMu.Unlock()
		w.reload()
	})
}

func (w *Watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("settings: reload failed, keeping previous value")
		return
	}
	w.mu.Lock()
	w.current = s
	w.mu.Unlock()
	w.log.Info().Str("path", w.path).Msg("settings: reloaded")
	if w.onReload != nil {
		w.onReload(s)
	}
}
