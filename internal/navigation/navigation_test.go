package navigation

import (
	"context"
	"testing"

	"learnsnap/pkg/storage"
)

func TestRememberConsume_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()

	if err := Remember(ctx, st, "/videos/1"); err != nil {
		t.Fatal(err)
	}
	if err := Remember(ctx, st, "/profile"); err != nil {
		t.Fatal(err)
	}

	got, err := Consume(ctx, st, HomePath)
	if err != nil || got != "/profile" {
		t.Fatalf("Consume = %q, %v; want /profile", got, err)
	}
	got, err = Consume(ctx, st, HomePath)
	if err != nil || got != HomePath {
		t.Fatalf("second Consume = %q, %v; want fallback", got, err)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder("")
	if r.CurrentPath() != HomePath {
		t.Fatalf("start = %q", r.CurrentPath())
	}
	r.Navigate(LoginPath)
	r.Navigate("/videos")
	if r.CurrentPath() != "/videos" {
		t.Errorf("current = %q", r.CurrentPath())
	}
	if h := r.History(); len(h) != 2 || h[0] != LoginPath {
		t.Errorf("history = %v", h)
	}
	if !IsAuthPage(SignupPath) || IsAuthPage("/videos") {
		t.Error("IsAuthPage mismatch")
	}
}
