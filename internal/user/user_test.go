package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"learnsnap/internal/apitest"
	"learnsnap/internal/auth"
	"learnsnap/internal/gateway"
	"learnsnap/internal/models"
	"learnsnap/internal/validate"
	"learnsnap/pkg/storage"
)

func TestUpdateProfileRefreshesSession(t *testing.T) {
	ctx := context.Background()
	api := apitest.New(t)
	u := api.AddUser(t, "me@example.com", "me", "password1", models.RoleLearner)

	mem := storage.NewMemory()
	store := auth.NewStore(mem, nil)
	if err := store.Login(ctx, u, api.Token(t, u)); err != nil {
		t.Fatal(err)
	}
	svc := NewService(gateway.New(api.URL(), store, mem), store, nil)

	me, err := svc.Me(ctx)
	if err != nil || me.Username != "me" {
		t.Fatalf("me = %+v, %v", me, err)
	}

	updated, err := svc.UpdateProfile(ctx, models.UpdateProfileRequest{Username: "renamed", Bio: " hi "})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Username != "renamed" || updated.Bio != "hi" {
		t.Fatalf("updated = %+v", updated)
	}

	st := store.State()
	if st.User.Username != "renamed" || st.User.Bio != "hi" || !st.IsAuthenticated {
		t.Fatalf("session = %+v", st)
	}
}

func TestUpdateProfileConflictLeavesSession(t *testing.T) {
	ctx := context.Background()
	api := apitest.New(t)
	u := api.AddUser(t, "me@example.com", "me", "password1", models.RoleLearner)
	api.AddUser(t, "you@example.com", "taken", "password1", models.RoleLearner)

	mem := storage.NewMemory()
	store := auth.NewStore(mem, nil)
	store.Login(ctx, u, api.Token(t, u))
	svc := NewService(gateway.New(api.URL(), store, mem), store, nil)

	_, err := svc.UpdateProfile(ctx, models.UpdateProfileRequest{Username: "taken"})
	if gateway.KindOf(err) != gateway.KindClient || gateway.Message(err) != "Username is already taken" {
		t.Fatalf("err = %v", err)
	}
	if store.State().User.Username != "me" {
		t.Fatal("session changed on failed update")
	}
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		name  string
		req   models.UpdateProfileRequest
		field string
	}{
		{"short username", models.UpdateProfileRequest{Username: "x"}, "username"},
		{"long bio", models.UpdateProfileRequest{Bio: strings.Repeat("b", 501)}, "bio"},
		{"long image", models.UpdateProfileRequest{ProfileImage: strings.Repeat("i", 501)}, "profileImage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve *validate.Error
			if err := ValidateProfile(tt.req); !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("err = %v", err)
			}
		})
	}
	if err := ValidateProfile(models.UpdateProfileRequest{}); err != nil {
		t.Fatalf("empty edit: %v", err)
	}
}
