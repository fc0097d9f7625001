// Package auth owns "who is logged in": the session store, the route guard
// that protects views, and the login/signup calls that fill the store.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"learnsnap/internal/logger"
	"learnsnap/internal/models"
	"learnsnap/pkg/storage"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// State is a read-only snapshot of the session.
// IsAuthenticated == (User != nil && Token != "") holds for every snapshot.
type State struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

const subscriberBuffer = 16

// Store is the session manager. Only its own methods write the session or the
// persisted token/user pair; everything else reads snapshots or subscribes.
type Store struct {
	mu      sync.RWMutex
	state   State
	storage storage.Storage
	log     *logger.Logger
	subs    map[chan State]struct{}
}

func NewStore(st storage.Storage, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		state:   State{IsLoading: true},
		storage: st,
		log:     log.With("component", "session"),
		subs:    make(map[chan State]struct{}),
	}
}

// Storage exposes the backing store for collaborators that share it.
func (s *Store) Storage() storage.Storage { return s.storage }

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Subscribe returns a channel receiving a snapshot after every change, plus a
// function that unsubscribes and closes the channel. A subscriber that falls
// behind by more than its buffer misses intermediate snapshots.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, subscriberBuffer)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// setLocked replaces the state and fans the snapshot out. Callers hold mu.
func (s *Store) setLocked(next State) {
	s.state = next
	snap := s.snapshotLocked()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
			s.log.Warn("session subscriber is full; dropping snapshot")
		}
	}
}

// Login persists the user and token and marks the session authenticated.
// Calling it again with another user overwrites the first.
func (s *Store) Login(ctx context.Context, user models.User, token string) error {
	if token == "" {
		return errors.New("login: empty token")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, storage.KeyAccessToken, token); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, storage.KeyUser, string(data)); err != nil {
		return err
	}
	s.setLocked(State{User: &user, Token: token, IsAuthenticated: true})
	s.log.Info("logged in", "user_id", user.ID, "role", user.Role)
	return nil
}

// Logout erases the persisted credentials and resets the session. It never
// fails; a storage error is logged and the in-memory session is still reset.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(ctx)
	s.log.Info("logged out")
}

// Clear is the silent logout used by the gateway after a 401.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(ctx)
	s.log.Info("session cleared by server rejection")
}

func (s *Store) resetLocked(ctx context.Context) {
	if err := s.storage.Delete(ctx, storage.KeyAccessToken, storage.KeyUser); err != nil {
		s.log.Error("failed to erase persisted session", "error", err)
	}
	s.setLocked(State{})
}

// CheckAuth restores the session from storage. A token without a parsable
// user record, or any read failure, counts as corrupted state: storage is
// erased and the session ends up logged out. It never returns an error and
// always leaves IsLoading false.
func (s *Store) CheckAuth(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, hasToken, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		s.log.Warn("failed to read persisted token", "error", err)
		s.resetLocked(ctx)
		return
	}
	raw, hasUser, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		s.log.Warn("failed to read persisted user", "error", err)
		s.resetLocked(ctx)
		return
	}
	if !hasToken || token == "" || !hasUser || raw == "" {
		s.setLocked(State{})
		return
	}

	var user *models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user == nil {
		s.log.Warn("failed to parse persisted user", "error", err)
		s.resetLocked(ctx)
		return
	}

	if info, err := InspectToken(token); err == nil && info.Expired(time.Now()) {
		s.log.Warn("restored token is past its expiry; the server will decide", "expires_at", info.ExpiresAt)
	}
	s.setLocked(State{User: user, Token: token, IsAuthenticated: true})
	s.log.Debug("session restored", "user_id", user.ID)
}

// UpdateUser replaces the user record after a profile edit. The token and the
// authenticated flag are left alone.
func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated {
		return ErrNotAuthenticated
	}
	if err := s.storage.Set(ctx, storage.KeyUser, string(data)); err != nil {
		return err
	}
	next := s.state
	next.User = &user
	s.setLocked(next)
	return nil
}

// Token returns the persisted bearer token. The gateway reads it on every
// request.
func (s *Store) Token(ctx context.Context) string {
	tok, _, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		s.log.Warn("failed to read token", "error", err)
		return ""
	}
	return tok
}

// Watch re-runs CheckAuth whenever another process changes the persisted
// token or user. It blocks until ctx is done; backends that cannot observe
// changes make it return immediately.
func (s *Store) Watch(ctx context.Context) error {
	w, ok := s.storage.(storage.Watcher)
	if !ok {
		return nil
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for key := range changes {
		if key != storage.KeyAccessToken && key != storage.KeyUser {
			continue
		}
		s.log.Debug("persisted session changed elsewhere; re-syncing", "key", key)
		s.CheckAuth(ctx)
	}
	return ctx.Err()
}
