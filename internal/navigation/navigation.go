// Package navigation holds the view paths the client core knows about and the
// single remembered post-login destination.
package navigation

import (
	"context"
	"fmt"
	"sync"

	"learnsnap/pkg/storage"
)

const (
	HomePath         = "/"
	LoginPath        = "/login"
	SignupPath       = "/signup"
	UnauthorizedPath = "/unauthorized"
)

// Navigator is implemented by the rendering surface.
type Navigator interface {
	CurrentPath() string
	Navigate(path string)
}

func IsAuthPage(path string) bool {
	return path == LoginPath || path == SignupPath
}

// Remember stores path as the pending redirect, replacing any previous value.
func Remember(ctx context.Context, st storage.Storage, path string) error {
	if err := st.Set(ctx, storage.KeyRedirectPath, path); err != nil {
		return fmt.Errorf("remember redirect: %w", err)
	}
	return nil
}

// Consume returns the pending redirect and deletes it. fallback is returned
// when nothing was remembered.
func Consume(ctx context.Context, st storage.Storage, fallback string) (string, error) {
	path, ok, err := st.Get(ctx, storage.KeyRedirectPath)
	if err != nil {
		return fallback, fmt.Errorf("read redirect: %w", err)
	}
	if !ok || path == "" {
		return fallback, nil
	}
	if err := st.Delete(ctx, storage.KeyRedirectPath); err != nil {
		return path, fmt.Errorf("clear redirect: %w", err)
	}
	return path, nil
}

// Recorder is an in-memory Navigator that keeps its history.
type Recorder struct {
	mu      sync.Mutex
	current string
	history []string
}

func NewRecorder(start string) *Recorder {
	if start == "" {
		start = HomePath
	}
	return &Recorder{current: start}
}

func (r *Recorder) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, path)
	r.current = path
}

// History returns every path passed to Navigate, oldest first.
func (r *Recorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
