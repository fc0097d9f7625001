package category

import (
	"context"
	"errors"
	"testing"

	"learnsnap/internal/apitest"
	"learnsnap/internal/gateway"
	"learnsnap/internal/models"
	"learnsnap/internal/validate"
	"learnsnap/pkg/storage"
)

func newService(t *testing.T, api *apitest.Server, role models.Role) *Service {
	t.Helper()
	u := api.AddUser(t, string(role)+"@example.com", string(role), "password1", role)
	mem := storage.NewMemory()
	mem.Set(context.Background(), storage.KeyAccessToken, api.Token(t, u))
	return NewService(gateway.New(api.URL(), gateway.StorageCredentials{Storage: mem}, mem), nil)
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	api := apitest.New(t)
	svc := newService(t, api, models.RoleAdmin)

	c, err := svc.Create(ctx, models.CategoryInput{Name: " Go ", Slug: "go", Icon: "🐹"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Go" {
		t.Fatalf("name = %q", c.Name)
	}

	if _, err := svc.Create(ctx, models.CategoryInput{Name: "Golang", Slug: "go"}); gateway.KindOf(err) != gateway.KindClient {
		t.Fatalf("duplicate slug: %v", err)
	}

	if _, err := svc.Update(ctx, c.ID, models.CategoryInput{Name: "Go", Slug: "go", Description: "Gophers"}); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Get(ctx, c.ID)
	if err != nil || got.Description != "Gophers" {
		t.Fatalf("get = %+v, %v", got, err)
	}

	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %+v, %v", list, err)
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, c.ID); !gateway.IsNotFound(err) {
		t.Fatalf("after delete: %v", err)
	}
}

func TestCreateNeedsAdmin(t *testing.T) {
	api := apitest.New(t)
	svc := newService(t, api, models.RoleInstructor)
	_, err := svc.Create(context.Background(), models.CategoryInput{Name: "Go", Slug: "go"})
	if !errors.Is(err, gateway.ErrForbidden) {
		t.Fatalf("err = %v", err)
	}
}

func TestValidateInput(t *testing.T) {
	err := ValidateInput(models.CategoryInput{})
	var errs validate.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("err = %v", err)
	}
	for _, f := range []string{"name", "slug"} {
		if _, ok := errs.Field(f); !ok {
			t.Errorf("missing %s error", f)
		}
	}
}
