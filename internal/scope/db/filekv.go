package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 20 * time.Millisecond

// FileKV stores each key as a JSON file in a data directory. A lock file
// serializes access across processes sharing the directory.
type FileKV struct {
	dataDir string
	lock    *flock.Flock
}

// NewFileKV creates a file-backed KV rooted at dataDir
func NewFileKV(dataDir string) (*FileKV, error) {
	if dataDir == "" {
		return nil, errors.New("data directory is required")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileKV{
		dataDir: dataDir,
		lock:    flock.New(filepath.Join(dataDir, ".taskpop.lock")),
	}, nil
}

// Get reads the file stored for key
func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	ok, err := f.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock data directory: %w", err)
	}
	if !ok {
		return nil, errors.New("data directory is locked")
	}
	defer func() { _ = f.lock.Unlock() }()

	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the file for key through a temp file and rename
func (f *FileKV) Put(ctx context.Context, key string, value []byte) error {
	ok, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock data directory: %w", err)
	}
	if !ok {
		return errors.New("data directory is locked")
	}
	defer func() { _ = f.lock.Unlock() }()

	tmp, err := os.CreateTemp(f.dataDir, sanitizeKey(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", key, err)
	}

	if err := os.Rename(tmpPath, f.path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Close releases the lock file handle
func (f *FileKV) Close() error {
	return f.lock.Close()
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dataDir, sanitizeKey(key)+".json")
}

// sanitizeKey maps a key to a safe file name
func sanitizeKey(key string) string {
	if key == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
