package auth

import (
	"context"
	"errors"
	"testing"

	"learnsnap/internal/models"
	"learnsnap/internal/navigation"
	"learnsnap/pkg/storage"
)

func TestGuardRequire(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	s := NewStore(mem, nil)
	nav := navigation.NewRecorder("/videos/7/quiz")
	g := NewGuard(s, nav, nil)

	if got := g.Require(ctx, "/videos/7/quiz"); got != AccessLoading {
		t.Fatalf("before checkAuth = %v", got)
	}

	s.CheckAuth(ctx)
	if got := g.Require(ctx, "/videos/7/quiz"); got != AccessDenied {
		t.Fatalf("logged out = %v", got)
	}
	if nav.CurrentPath() != navigation.LoginPath {
		t.Fatalf("navigated to %q", nav.CurrentPath())
	}
	if p, _, _ := mem.Get(ctx, storage.KeyRedirectPath); p != "/videos/7/quiz" {
		t.Fatalf("redirect = %q", p)
	}

	mustLogin(t, s, alice, "tok")
	if got := g.Require(ctx, "/videos/7/quiz"); got != AccessGranted {
		t.Fatalf("logged in = %v", got)
	}
}

func TestGuardRequireRole(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemory(), nil)
	nav := navigation.NewRecorder("/instructor")
	g := NewGuard(s, nav, nil)
	mustLogin(t, s, alice, "tok")

	if got := g.RequireRole(ctx, "/instructor", models.RoleInstructor, models.RoleAdmin); got != AccessForbidden {
		t.Fatalf("learner = %v", got)
	}
	if nav.CurrentPath() != navigation.UnauthorizedPath {
		t.Fatalf("navigated to %q", nav.CurrentPath())
	}
	if err := g.Authorize(models.RoleInstructor); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Authorize = %v", err)
	}

	instructor := alice
	instructor.Role = models.RoleInstructor
	if err := s.UpdateUser(ctx, instructor); err != nil {
		t.Fatal(err)
	}
	if got := g.RequireRole(ctx, "/instructor", models.RoleInstructor, models.RoleAdmin); got != AccessGranted {
		t.Fatalf("instructor = %v", got)
	}
	if err := g.Authorize(); err != nil {
		t.Fatalf("Authorize() = %v", err)
	}

	s.Logout(ctx)
	if err := g.Authorize(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Authorize logged out = %v", err)
	}
}
