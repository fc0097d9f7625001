// Package user reads and edits the current user's profile.
package user

import (
	"context"
	"strings"

	"learnsnap/internal/gateway"
	"learnsnap/internal/logger"
	"learnsnap/internal/models"
	"learnsnap/internal/validate"
)

const (
	usernameMin = 2
	usernameMax = 50
	bioMax      = 500
	imageMax    = 500
)

// SessionUpdater is the part of the session store a profile edit touches.
type SessionUpdater interface {
	UpdateUser(ctx context.Context, u models.User) error
}

type Service struct {
	gw      *gateway.Gateway
	session SessionUpdater
	log     *logger.Logger
}

func NewService(gw *gateway.Gateway, session SessionUpdater, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gw: gw, session: session, log: log}
}

func (s *Service) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.gw.Get(ctx, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func ValidateProfile(req models.UpdateProfileRequest) error {
	var c validate.Checker
	c.Length("username", req.Username, usernameMin, usernameMax)
	c.MaxLen("bio", req.Bio, bioMax)
	c.MaxLen("profileImage", req.ProfileImage, imageMax)
	return c.Err()
}

// UpdateProfile saves the edit and, on success, refreshes the session's
// user record so every view sees the new profile.
func (s *Service) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Bio = strings.TrimSpace(req.Bio)
	req.ProfileImage = strings.TrimSpace(req.ProfileImage)
	if err := ValidateProfile(req); err != nil {
		return nil, err
	}

	var u models.User
	if err := s.gw.Put(ctx, "/users/me", req, &u); err != nil {
		return nil, err
	}
	if s.session != nil {
		if err := s.session.UpdateUser(ctx, u); err != nil {
			s.log.Warn("profile saved but session not refreshed", "user_id", u.ID, "error", err)
		}
	}
	s.log.Info("profile updated", "user_id", u.ID)
	return &u, nil
}
