// Package storage is the durable key-value store that survives restarts of the
// client: the persisted access token, the serialized user record and the
// pending post-login redirect all live here.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Keys written by the session manager and the gateway.
const (
	KeyAccessToken  = "accessToken"
	KeyUser         = "user"
	KeyRedirectPath = "redirectPath"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage is a string key-value store. Get reports ok=false for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Watcher is implemented by backends that can observe writes made by other
// processes sharing the same store. The channel yields changed keys and is
// closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}

type Options struct {
	Backend   string // memory, file, redis, sql
	Path      string // file backend
	RedisAddr string
	SQL       DatabaseConfig
}

// Open builds the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "memory":
		return NewMemory(), nil
	case "", "file":
		path := opts.Path
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("find home directory: %w", err)
			}
			path = filepath.Join(home, ".learnsnap", "storage.json")
		}
		return NewFile(path), nil
	case "redis":
		return NewRedis(ctx, opts.RedisAddr)
	case "sql":
		db, err := OpenDatabase(&opts.SQL)
		if err != nil {
			return nil, err
		}
		return NewSQL(db)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
