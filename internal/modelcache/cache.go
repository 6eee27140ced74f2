// Package modelcache maintains a persistent mapping of engine/model
// pairs to context-window sizes, with explicit lifecycle: loaded at
// startup, updated through Set/Remove, reloaded when the backing file
// changes on disk, and invalidation broadcast to registered callbacks.
package modelcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/k-lindqvist/ctxwatch/internal/logger"
	"github.com/k-lindqvist/ctxwatch/internal/models"
)

// cacheFile is the JSON structure of the backing file.
type cacheFile struct {
	Windows map[string]int64 `json:"windows"`
	Version int              `json:"version,omitempty"`
}

const debounceDelay = 200 * time.Millisecond

// Cache is a model→context-window lookup backed by a JSON file.
// Implements usage.WindowCache.
type Cache struct {
	mu            sync.RWMutex
	windows       map[string]int64
	filePath      string
	watcher       *fsnotify.Watcher
	onChange      []func()
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New loads the cache from filePath, creating an empty file when none
// exists, and starts watching for external edits.
func New(filePath string) (*Cache, error) {
	c := &Cache{
		windows:  make(map[string]int64),
		filePath: filePath,
		stopChan: make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := c.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load model cache: %w", err)
		}
		if err := c.save(); err != nil {
			return nil, fmt.Errorf("failed to create model cache: %w", err)
		}
	}

	if err := c.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to watch model cache: %w", err)
	}

	return c, nil
}

func key(engine models.Engine, model string) string {
	return string(engine) + "/" + model
}

// Window returns the cached context window for the model, if any.
func (c *Cache) Window(engine models.Engine, model string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w, ok := c.windows[key(engine, model)]
	return w, ok
}

// Set records a context window for the model and persists the cache.
func (c *Cache) Set(engine models.Engine, model string, window int64) error {
	if window <= 0 {
		return fmt.Errorf("invalid context window %d for %s/%s", window, engine, model)
	}

	c.mu.Lock()
	if c.windows[key(engine, model)] == window {
		c.mu.Unlock()
		return nil
	}
	c.windows[key(engine, model)] = window
	c.mu.Unlock()

	if err := c.save(); err != nil {
		return err
	}
	c.notify()
	return nil
}

// Remove deletes a model entry and persists the cache.
func (c *Cache) Remove(engine models.Engine, model string) error {
	c.mu.Lock()
	k := key(engine, model)
	if _, ok := c.windows[k]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.windows, k)
	c.mu.Unlock()

	if err := c.save(); err != nil {
		return err
	}
	c.notify()
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.windows)
}

// OnChange registers a callback invoked after any cache mutation or
// external reload. Callbacks run on the mutating goroutine and must not
// call back into the cache's write methods.
func (c *Cache) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// Close stops the file watcher.
func (c *Cache) Close() error {
	close(c.stopChan)
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

func (c *Cache) notify() {
	c.mu.RLock()
	callbacks := make([]func(), len(c.onChange))
	copy(callbacks, c.onChange)
	c.mu.RUnlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		return err
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse model cache: %w", err)
	}

	c.mu.Lock()
	c.windows = file.Windows
	if c.windows == nil {
		c.windows = make(map[string]int64)
	}
	c.mu.Unlock()
	return nil
}

func (c *Cache) save() error {
	c.mu.RLock()
	file := cacheFile{Windows: c.windows, Version: 1}
	data, err := json.MarshalIndent(file, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal model cache: %w", err)
	}

	// Write-then-rename so a concurrent reader never sees a torn file.
	tmp := c.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write model cache: %w", err)
	}
	return os.Rename(tmp, c.filePath)
}

// startWatcher watches the cache file's directory for external edits.
// Editors replace files rather than writing in place, so watching the
// directory survives the inode change.
func (c *Cache) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = watcher

	if err := watcher.Add(filepath.Dir(c.filePath)); err != nil {
		_ = watcher.Close()
		return err
	}

	go c.watchLoop()
	return nil
}

func (c *Cache) watchLoop() {
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Name != c.filePath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			c.scheduleReload()

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("model cache watcher error", "error", err)

		case <-c.stopChan:
			return
		}
	}
}

// scheduleReload debounces bursts of file events into one reload.
func (c *Cache) scheduleReload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.debounceTimer != nil {
		c.debounceTimer.Stop()
	}
	c.debounceTimer = time.AfterFunc(debounceDelay, func() {
		if err := c.load(); err != nil {
			logger.Warn("model cache reload failed", "error", err)
			return
		}
		logger.Debug("model cache reloaded", "path", c.filePath)
		c.notify()
	})
}
