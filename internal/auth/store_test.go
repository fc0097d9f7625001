package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnsnap/internal/models"
	"learnsnap/pkg/storage"
)

// spyStorage counts mutations and can be told to fail.
type spyStorage struct {
	*storage.Memory
	sets, deletes int
	failGet       bool
	failDelete    bool
}

func newSpy() *spyStorage { return &spyStorage{Memory: storage.NewMemory()} }

func (s *spyStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if s.failGet {
		return "", false, errors.New("disk on fire")
	}
	return s.Memory.Get(ctx, key)
}

func (s *spyStorage) Set(ctx context.Context, key, value string) error {
	s.sets++
	return s.Memory.Set(ctx, key, value)
}

func (s *spyStorage) Delete(ctx context.Context, keys ...string) error {
	s.deletes++
	if s.failDelete {
		return errors.New("read-only")
	}
	return s.Memory.Delete(ctx, keys...)
}

func assertConsistent(t *testing.T, st State) {
	t.Helper()
	want := st.User != nil && st.Token != ""
	if st.IsAuthenticated != want {
		t.Fatalf("IsAuthenticated = %v with user=%v token=%q", st.IsAuthenticated, st.User, st.Token)
	}
}

var alice = models.User{ID: 1, Email: "alice@example.com", Username: "alice", Role: models.RoleLearner}

func TestNewStoreStartsLoading(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	st := s.State()
	if !st.IsLoading || st.IsAuthenticated {
		t.Fatalf("initial state = %+v", st)
	}
	assertConsistent(t, st)
}

func TestSessionStateAcrossOperations(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory(), nil)
	bob := models.User{ID: 2, Email: "bob@example.com", Username: "bob", Role: models.RoleInstructor}

	steps := []struct {
		name string
		do   func()
		auth bool
	}{
		{"checkAuth on empty", func() { s.CheckAuth(ctx) }, false},
		{"login alice", func() { mustLogin(t, s, alice, "t1") }, true},
		{"login bob overwrites", func() { mustLogin(t, s, bob, "t2") }, true},
		{"checkAuth keeps bob", func() { s.CheckAuth(ctx) }, true},
		{"logout", func() { s.Logout(ctx) }, false},
		{"logout again", func() { s.Logout(ctx) }, false},
		{"checkAuth after logout", func() { s.CheckAuth(ctx) }, false},
	}
	for _, step := range steps {
		step.do()
		st := s.State()
		assertConsistent(t, st)
		if st.IsAuthenticated != step.auth {
			t.Fatalf("%s: IsAuthenticated = %v, want %v", step.name, st.IsAuthenticated, step.auth)
		}
		if st.IsLoading {
			t.Fatalf("%s: still loading", step.name)
		}
	}
	if got := s.State().User; got != nil {
		t.Fatalf("user after logout = %+v", got)
	}
}

func mustLogin(t *testing.T, s *Store, u models.User, token string) {
	t.Helper()
	if err := s.Login(context.Background(), u, token); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestCheckAuthRestoresAcrossReload(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/storage.json"

	mustLogin(t, NewStore(storage.NewFile(path), nil), alice, "tok-1")

	s := NewStore(storage.NewFile(path), nil)
	s.CheckAuth(ctx)

	st := s.State()
	if !st.IsAuthenticated || st.Token != "tok-1" || *st.User != alice {
		t.Fatalf("restored %+v (user %+v)", st, st.User)
	}
}

func TestCheckAuthCorruptedStorage(t *testing.T) {
	for _, raw := range []string{"{not json", "null", "42"} {
		t.Run(raw, func(t *testing.T) {
			ctx := context.Background()
			mem := storage.NewMemory()
			mem.Set(ctx, storage.KeyAccessToken, "tok")
			mem.Set(ctx, storage.KeyUser, raw)

			s := NewStore(mem, nil)
			s.CheckAuth(ctx)

			st := s.State()
			assertConsistent(t, st)
			if st.IsAuthenticated || st.IsLoading {
				t.Fatalf("state = %+v", st)
			}
			if mem.Len() != 0 {
				t.Fatalf("storage not cleared: %d keys left", mem.Len())
			}
		})
	}
}

func TestCheckAuthWithoutTokenDoesNotTouchStorage(t *testing.T) {
	ctx := context.Background()
	spy := newSpy()
	spy.Memory.Set(ctx, storage.KeyUser, `{"id":1}`)

	s := NewStore(spy, nil)
	s.CheckAuth(ctx)

	st := s.State()
	if st.IsAuthenticated || st.IsLoading {
		t.Fatalf("state = %+v", st)
	}
	if spy.sets != 0 || spy.deletes != 0 {
		t.Fatalf("storage mutated: sets=%d deletes=%d", spy.sets, spy.deletes)
	}
}

func TestCheckAuthReadFailureFailsClosed(t *testing.T) {
	spy := newSpy()
	spy.failGet = true
	s := NewStore(spy, nil)
	s.CheckAuth(context.Background())

	st := s.State()
	if st.IsAuthenticated || st.IsLoading {
		t.Fatalf("state = %+v", st)
	}
	if spy.deletes != 1 {
		t.Fatalf("deletes = %d, want 1", spy.deletes)
	}
}

func TestLogoutSurvivesStorageFailure(t *testing.T) {
	spy := newSpy()
	s := NewStore(spy, nil)
	mustLogin(t, s, alice, "tok")
	spy.failDelete = true

	s.Logout(context.Background())
	if s.State().IsAuthenticated {
		t.Fatal("still authenticated after logout")
	}
}

func TestUpdateUserKeepsToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem, nil)

	if err := s.UpdateUser(ctx, alice); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("UpdateUser logged out: %v", err)
	}

	mustLogin(t, s, alice, "tok")
	edited := alice
	edited.Bio = "hello"
	if err := s.UpdateUser(ctx, edited); err != nil {
		t.Fatal(err)
	}

	st := s.State()
	if st.Token != "tok" || !st.IsAuthenticated || st.User.Bio != "hello" {
		t.Fatalf("state = %+v", st)
	}

	reloaded := NewStore(mem, nil)
	reloaded.CheckAuth(ctx)
	if reloaded.State().User.Bio != "hello" {
		t.Fatal("updated user not persisted")
	}
}

func TestStateIsACopy(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	mustLogin(t, s, alice, "tok")
	st := s.State()
	st.User.Username = "mallory"
	if s.State().User.Username != "alice" {
		t.Fatal("snapshot aliases store state")
	}
}

func TestTokenReadsStorage(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem, nil)
	mem.Set(ctx, storage.KeyAccessToken, "from-disk")
	if got := s.Token(ctx); got != "from-disk" {
		t.Fatalf("Token = %q", got)
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory(), nil)
	ch, cancel := s.Subscribe()

	mustLogin(t, s, alice, "tok")
	s.Clear(ctx)

	for _, want := range []bool{true, false} {
		select {
		case st := <-ch:
			if st.IsAuthenticated != want {
				t.Fatalf("snapshot IsAuthenticated = %v, want %v", st.IsAuthenticated, want)
			}
		case <-time.After(time.Second):
			t.Fatal("no snapshot")
		}
	}

	cancel()
	cancel()
	if _, open := <-ch; open {
		t.Fatal("channel open after unsubscribe")
	}
	mustLogin(t, s, alice, "tok")
}

func TestWatchWithoutWatcherReturns(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	if err := s.Watch(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	if err := s.Login(context.Background(), alice, ""); err == nil {
		t.Fatal("expected error")
	}
	assertConsistent(t, s.State())
}

// watchedStorage is a memory backend whose change feed the test drives.
type watchedStorage struct {
	*storage.Memory
	feed chan string
}

func (w *watchedStorage) Watch(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case key := <-w.feed:
				select {
				case out <- key:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func nextState(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case st := <-ch:
		return st
	case <-time.After(time.Second):
		t.Fatal("no snapshot")
		return State{}
	}
}

func TestWatchFollowsOtherProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared := &watchedStorage{Memory: storage.NewMemory(), feed: make(chan string)}
	s := NewStore(shared, nil)
	s.CheckAuth(ctx)
	states, unsubscribe := s.Subscribe()
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	other := NewStore(shared, nil)
	mustLogin(t, other, alice, "tok")
	shared.feed <- storage.KeyAccessToken

	st := nextState(t, states)
	if !st.IsAuthenticated || st.User == nil || st.User.ID != alice.ID {
		t.Fatalf("after login elsewhere = %+v", st)
	}
	assertConsistent(t, st)

	other.Logout(ctx)
	shared.feed <- storage.KeyUser

	st = nextState(t, states)
	if st.IsAuthenticated || st.IsLoading {
		t.Fatalf("after logout elsewhere = %+v", st)
	}
	if s.State().IsAuthenticated {
		t.Fatal("store still authenticated")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Watch = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
