package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tourassist/backend/internal/domain/events"
	"github.com/tourassist/backend/internal/infrastructure/log"
)

// InboxConfig configures the inbox watcher
type InboxConfig struct {
	// Dir holds one subdirectory per tenant; empty disables the watcher
	Dir string
	// DebounceDelay is how long a file must stay quiet before it is reported
	DebounceDelay time.Duration
	// Extensions accepted, lowercase with the leading dot
	Extensions []string
}

// InboxWatcher reports files that settle in {Dir}/{tenant_id}/ as
// InboxFileReady events
type InboxWatcher struct {
	config   InboxConfig
	eventBus events.EventBus
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewInboxWatcher creates a watcher; call Start to begin watching
func NewInboxWatcher(config InboxConfig, eventBus events.EventBus) (*InboxWatcher, error) {
	w := &InboxWatcher{
		config:         config,
		eventBus:       eventBus,
		logger:         log.NewModuleLogger("watcher", "inbox"),
		debounceTimers: make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
	}
	if !w.Enabled() {
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.watcher = fsw
	return w, nil
}

// Enabled reports whether an inbox directory is configured
func (w *InboxWatcher) Enabled() bool {
	return w.config.Dir != ""
}

// Start creates the inbox if needed, reports files already present and
// begins watching
func (w *InboxWatcher) Start() error {
	if !w.Enabled() {
		return nil
	}
	w.logger.Info("Starting inbox watcher", "dir", w.config.Dir)

	if err := os.MkdirAll(w.config.Dir, 0o755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.config.Dir); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.config.Dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addTenantDir(filepath.Join(w.config.Dir, entry.Name()))
		}
	}

	w.wg.Add(1)
	go w.watchLoop()
	return nil
}

// Stop stops watching and cancels pending debounce timers
func (w *InboxWatcher) Stop() {
	if !w.Enabled() {
		return
	}
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping inbox watcher")
		close(w.stopCh)
		w.watcher.Close()
		w.wg.Wait()

		w.debounceMu.Lock()
		for _, timer := range w.debounceTimers {
			timer.Stop()
		}
		w.debounceTimers = make(map[string]*time.Timer)
		w.debounceMu.Unlock()
	})
}

// addTenantDir watches a tenant directory and reports the files it already holds
func (w *InboxWatcher) addTenantDir(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("Failed to watch tenant inbox", "path", dir, "error", err)
		return
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("Failed to read tenant inbox", "path", dir, "error", err)
		return
	}
	for _, f := range files {
		if !f.IsDir() && w.accepts(f.Name()) {
			w.schedule(filepath.Join(dir, f.Name()), events.InboxFileReady)
		}
	}
}

func (w *InboxWatcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *InboxWatcher) handleFsEvent(event fsnotify.Event) {
	parent := filepath.Dir(event.Name)

	// a new tenant directory directly under the inbox
	if filepath.Clean(parent) == filepath.Clean(w.config.Dir) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				w.addTenantDir(event.Name)
			}
		}
		return
	}

	if _, ok := w.tenantOf(event.Name); !ok || !w.accepts(event.Name) {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.schedule(event.Name, events.InboxFileReady)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.schedule(event.Name, events.InboxFileRemoved)
	}
}

// schedule (re)starts the debounce timer for path
func (w *InboxWatcher) schedule(path string, eventType events.EventType) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}
	w.debounceTimers[path] = time.AfterFunc(w.config.DebounceDelay, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		w.emit(path, eventType)
	})
}

func (w *InboxWatcher) emit(path string, eventType events.EventType) {
	select {
	case <-w.stopCh:
		return
	default:
	}

	tenantID, _ := w.tenantOf(path)
	var size int64
	if eventType == events.InboxFileReady {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			// gone before it settled
			return
		}
		size = info.Size()
	}

	w.eventBus.Publish(&events.InboxFileEvent{
		EventType: eventType,
		TenantID:  tenantID,
		FilePath:  path,
		FileSize:  size,
		EventTime: time.Now(),
	})

	w.logger.Debug("Inbox file event emitted",
		"type", eventType,
		"tenant_id", tenantID,
		"path", path,
	)
}

// tenantOf parses {Dir}/{tenant_id}/{file}
func (w *InboxWatcher) tenantOf(path string) (string, bool) {
	rel, err := filepath.Rel(w.config.Dir, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == ".." || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

func (w *InboxWatcher) accepts(name string) bool {
	base := filepath.Base(name)
	// editor swap files and partial downloads
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range w.config.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
