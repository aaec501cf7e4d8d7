package kvstore

import (
	"context"
	"fmt"
)

// Store persists serialized snapshots under fixed string keys. Save always
// overwrites the whole value for a key; there is no incremental update.
type Store interface {
	// Load returns the stored value for key, or ok=false when the key has
	// never been written.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Save overwrites the value stored under key.
	Save(ctx context.Context, key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// Open creates the snapshot store selected by backend.
// "file" keeps one JSON file per key under dataDir; "sqlite" keeps all keys
// in a single database at sqlitePath.
func Open(backend, dataDir, sqlitePath string) (Store, error) {
	switch backend {
	case "file":
		return NewFileStore(dataDir)
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %q", backend)
	}
}
