// Package kv is the durable key-value layer under the record store. Each key
// holds one opaque value that is replaced whole on every Put.
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid key")
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

var Backends = []string{BackendFile, BackendSQLite, BackendBadger, BackendMemory}

// Store is a durable map from key to value.
type Store interface {
	// Get returns ErrNotFound when key was never written.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value of key. The write is durable once Put returns.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidKey rejects keys that could escape a directory or are empty.
func ValidKey(key string) error {
	if !keyPattern.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open opens the named backend rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return OpenFile(filepath.Join(dataDir, "kv"))
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dataDir, "vistoria.db"))
	case BackendBadger:
		return OpenBadger(filepath.Join(dataDir, "badger"))
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}
