package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"placement_studio/src/logger"

	"github.com/bytedance/sonic"
)

var errMalformed = errors.New("malformed key-value file")

// FileKV keeps every item in a single JSON document on disk
type FileKV struct {
	path       string
	quotaBytes int
	mu         sync.Mutex
}

// NewFileKV creates a file-backed store at path. A quota of 0 means unlimited.
func NewFileKV(path string, quotaBytes int) *FileKV {
	return &FileKV{
		path:       path,
		quotaBytes: quotaBytes,
	}
}

// GetItem returns the value stored under key
func (f *FileKV) GetItem(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return "", false, err
	}
	value, exists := items[key]
	return value, exists, nil
}

// SetItem stores value under key and rewrites the document
func (f *FileKV) SetItem(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if errors.Is(err, errMalformed) {
		logger.Warn().Err(err).Str("path", f.path).Msg("Replacing unreadable key-value file")
		items = make(map[string]string)
	} else if err != nil {
		return err
	}

	items[key] = value
	if f.quotaBytes > 0 && usage(items) > f.quotaBytes {
		return ErrQuotaExceeded
	}

	return f.save(items)
}

// RemoveItem deletes key and rewrites the document
func (f *FileKV) RemoveItem(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	if _, exists := items[key]; !exists {
		return nil
	}
	delete(items, key)
	return f.save(items)
}

func (f *FileKV) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key-value file: %w", err)
	}

	items := make(map[string]string)
	if len(data) == 0 {
		return items, nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	return items, nil
}

// save writes to a temp file and renames it so readers never see a partial document
func (f *FileKV) save(items map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create key-value directory: %w", err)
	}

	data, err := sonic.ConfigStd.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal key-value data: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write key-value file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace key-value file: %w", err)
	}
	return nil
}
