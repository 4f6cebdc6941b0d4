// Package db provides the key-value persistence channel the task queue state is
// written to.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// KV is a process-wide key-value store.
// FileKV, SQLiteKV, PostgresKV and MemKV implement this interface.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the underlying resources
	Close() error
}

// Ensure all backends implement KV
var (
	_ KV = (*FileKV)(nil)
	_ KV = (*SQLiteKV)(nil)
	_ KV = (*PostgresKV)(nil)
	_ KV = (*MemKV)(nil)
)

// Backend names accepted by Open
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures a KV backend
type Options struct {
	Backend     string
	DataDir     string
	DatabaseURL string
}

// Open creates the configured backend
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewFileKV(opts.DataDir)
	case BackendSQLite:
		return NewSQLiteKV(ctx, opts.DataDir)
	case BackendPostgres:
		return NewPostgresKV(ctx, opts.DatabaseURL)
	case BackendMemory:
		return NewMemKV(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
