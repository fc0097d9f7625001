// Package category is the client for the category endpoints.
package category

import (
	"context"
	"strings"

	"learnsnap/internal/gateway"
	"learnsnap/internal/logger"
	"learnsnap/internal/models"
	"learnsnap/internal/validate"
)

const (
	nameMax        = 100
	descriptionMax = 500
	iconMax        = 100
)

type Service struct {
	gw  *gateway.Gateway
	log *logger.Logger
}

func NewService(gw *gateway.Gateway, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gw: gw, log: log}
}

func (s *Service) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.gw.Get(ctx, "/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	if err := s.gw.Get(ctx, gateway.PathID("/categories", id), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func ValidateInput(in models.CategoryInput) error {
	var c validate.Checker
	c.Required("name", in.Name).MaxLen("name", in.Name, nameMax)
	c.Required("slug", in.Slug).MaxLen("slug", in.Slug, nameMax)
	c.MaxLen("description", in.Description, descriptionMax)
	c.MaxLen("icon", in.Icon, iconMax)
	return c.Err()
}

func trim(in models.CategoryInput) models.CategoryInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
	in.Icon = strings.TrimSpace(in.Icon)
	return in
}

func (s *Service) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	in = trim(in)
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	var c models.Category
	if err := s.gw.Post(ctx, "/categories", in, &c); err != nil {
		return nil, err
	}
	s.log.Info("category created", "category_id", c.ID, "slug", c.Slug)
	return &c, nil
}

func (s *Service) Update(ctx context.Context, id int64, in models.CategoryInput) (*models.Category, error) {
	in = trim(in)
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	var c models.Category
	if err := s.gw.Put(ctx, gateway.PathID("/categories", id), in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.gw.Delete(ctx, gateway.PathID("/categories", id), nil)
}
