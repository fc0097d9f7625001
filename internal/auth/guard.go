package auth

import (
	"context"
	"errors"

	"learnsnap/internal/logger"
	"learnsnap/internal/models"
	"learnsnap/internal/navigation"
)

var ErrForbidden = errors.New("your role does not allow this action")

// Access is the guard's verdict for one protected view.
type Access int

const (
	AccessLoading Access = iota
	AccessGranted
	AccessDenied
	AccessForbidden
)

func (a Access) String() string {
	switch a {
	case AccessLoading:
		return "loading"
	case AccessGranted:
		return "granted"
	case AccessDenied:
		return "denied"
	case AccessForbidden:
		return "forbidden"
	}
	return "unknown"
}

// Guard decides whether a protected view may render.
type Guard struct {
	store *Store
	nav   navigation.Navigator
	log   *logger.Logger
}

func NewGuard(store *Store, nav navigation.Navigator, log *logger.Logger) *Guard {
	if log == nil {
		log = logger.Nop()
	}
	return &Guard{store: store, nav: nav, log: log}
}

// Require lets authenticated users through. Anyone else has path remembered
// as the pending redirect and is sent to the login view.
func (g *Guard) Require(ctx context.Context, path string) Access {
	st := g.store.State()
	if st.IsLoading {
		return AccessLoading
	}
	if !st.IsAuthenticated {
		if err := navigation.Remember(ctx, g.store.Storage(), path); err != nil {
			g.log.Error("failed to remember redirect", "path", path, "error", err)
		}
		g.nav.Navigate(navigation.LoginPath)
		return AccessDenied
	}
	return AccessGranted
}

// RequireRole is Require plus a role check; a wrong role lands on the
// unauthorized view.
func (g *Guard) RequireRole(ctx context.Context, path string, roles ...models.Role) Access {
	access := g.Require(ctx, path)
	if access != AccessGranted {
		return access
	}
	role := g.store.State().User.Role
	for _, r := range roles {
		if r == role {
			return AccessGranted
		}
	}
	g.log.Info("role not allowed", "path", path, "role", role)
	g.nav.Navigate(navigation.UnauthorizedPath)
	return AccessForbidden
}

// Authorize is the non-navigating form of RequireRole for command-style
// callers. An empty roles list only requires a session.
func (g *Guard) Authorize(roles ...models.Role) error {
	st := g.store.State()
	if !st.IsAuthenticated {
		return ErrNotAuthenticated
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if r == st.User.Role {
			return nil
		}
	}
	return ErrForbidden
}
