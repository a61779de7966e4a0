package prompt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"tradepulse/internal/logger"
)

// Manager serves the fallback prompt template from a local file, reloading it
// when the file changes on disk. The stored settings template takes priority;
// the manager only covers the case where the settings document carries none.
type Manager struct {
	path string

	mu   sync.RWMutex
	text string
}

func NewManager(path string) *Manager {
	m := &Manager{path: strings.TrimSpace(path)}
	m.reload()
	return m
}

// Template returns the current fallback template, or "" when no file exists.
func (m *Manager) Template() string {
	if m == nil {
		return ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text
}

func (m *Manager) reload() {
	if m.path == "" {
		return
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("prompt: reading template file failed: %v", err)
		}
		return
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return
	}
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	logger.Infof("prompt: template loaded from %s (%d bytes)", m.path, len(text))
}

// Watch reloads the template whenever the file is rewritten. It blocks until
// ctx is cancelled; callers run it in its own goroutine. Editors replace
// files rather than writing in place, so the watch covers the directory.
func (m *Manager) Watch(ctx context.Context) error {
	if m == nil || m.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(m.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(m.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				m.reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("prompt: watcher error: %v", err)
		}
	}
}
