// internal/auth/service.go
package auth

import (
	"context"
	"strings"

	"learnsnap/internal/gateway"
	"learnsnap/internal/logger"
	"learnsnap/internal/models"
	"learnsnap/internal/navigation"
	"learnsnap/internal/validate"
)

const (
	usernameMin = 2
	usernameMax = 50
	passwordMin = 8
)

type Service struct {
	gw    *gateway.Gateway
	store *Store
	nav   navigation.Navigator
	log   *logger.Logger
}

func NewService(gw *gateway.Gateway, store *Store, nav navigation.Navigator, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gw: gw, store: store, nav: nav, log: log}
}

// LoginResult is the logged-in user and where the user was sent afterwards.
type LoginResult struct {
	User        models.User
	Destination string
}

func ValidateSignup(req models.SignupRequest) error {
	var c validate.Checker
	c.Required("email", req.Email).Email("email", req.Email)
	c.Required("username", req.Username).Length("username", req.Username, usernameMin, usernameMax)
	c.Required("password", req.Password).MinLen("password", req.Password, passwordMin)
	return c.Err()
}

func ValidateLogin(req models.LoginRequest) error {
	var c validate.Checker
	c.Required("email", req.Email).Email("email", req.Email)
	c.Required("password", req.Password)
	return c.Err()
}

// Signup creates an account. It does not log the new user in.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := ValidateSignup(req); err != nil {
		return nil, err
	}

	var resp models.SignupResponse
	if err := s.gw.Post(ctx, "/auth/signup", req, &resp); err != nil {
		s.log.Warn("signup failed", "username", req.Username, "error", err)
		return nil, err
	}
	s.log.Info("account created", "user_id", resp.ID, "username", resp.Username)
	return &resp, nil
}

// Login authenticates, stores the session, then navigates to the pending
// redirect (consuming it) or the home view.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateLogin(req); err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := s.gw.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if err := s.store.Login(ctx, resp.User, resp.AccessToken); err != nil {
		return nil, err
	}

	dest, err := navigation.Consume(ctx, s.store.Storage(), navigation.HomePath)
	if err != nil {
		s.log.Warn("failed to consume redirect", "error", err)
	}
	if s.nav != nil {
		s.nav.Navigate(dest)
	}
	return &LoginResult{User: resp.User, Destination: dest}, nil
}

// Logout ends the session locally and shows the login view.
func (s *Service) Logout(ctx context.Context) {
	s.store.Logout(ctx)
	if s.nav != nil {
		s.nav.Navigate(navigation.LoginPath)
	}
}
