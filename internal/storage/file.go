// ABOUTME: File-backed Store keeping all keys in a single JSON document
// ABOUTME: Writes atomically via temp file + rename so a crash never truncates state

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists key/value pairs to state.json in the config directory
type FileStore struct {
	configDir string
	logger    *slog.Logger

	mu     sync.Mutex
	values map[string]string
}

type stateData struct {
	Values map[string]string `json:"values"`
}

// NewFileStore creates a store rooted at configDir. Nothing is read until first use.
func NewFileStore(configDir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		configDir: configDir,
		logger:    logger,
	}
}

// Path returns the path to the backing JSON file
func (fs *FileStore) Path() string {
	return filepath.Join(fs.configDir, "state.json")
}

// Get returns the value for key and whether the key is present
func (fs *FileStore) Get(key string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.loadLocked()
	v, ok := fs.values[key]
	return v, ok
}

// Set stores value under key and flushes to disk
func (fs *FileStore) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.loadLocked()
	prev, had := fs.values[key]
	fs.values[key] = value
	if err := fs.saveLocked(); err != nil {
		if had {
			fs.values[key] = prev
		} else {
			delete(fs.values, key)
		}
		return err
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.loadLocked()
	prev, had := fs.values[key]
	if !had {
		return nil
	}
	delete(fs.values, key)
	if err := fs.saveLocked(); err != nil {
		fs.values[key] = prev
		return err
	}
	return nil
}

// loadLocked reads the state file once. A missing or corrupt file yields an empty store.
func (fs *FileStore) loadLocked() {
	if fs.values != nil {
		return
	}
	fs.values = make(map[string]string)

	data, err := os.ReadFile(fs.Path())
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		fs.logger.Warn("Failed to read state file", "path", fs.Path(), "error", err)
		return
	}

	var state stateData
	if err := json.Unmarshal(data, &state); err != nil {
		// Invalid JSON, start fresh
		fs.logger.Warn("Ignoring corrupt state file", "path", fs.Path(), "error", err)
		return
	}
	for k, v := range state.Values {
		fs.values[k] = v
	}
}

func (fs *FileStore) saveLocked() error {
	if err := os.MkdirAll(fs.configDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(stateData{Values: fs.values}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(fs.configDir, "state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmpName, fs.Path()); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
