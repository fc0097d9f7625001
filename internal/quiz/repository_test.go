package quiz

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

func setup(t *testing.T, role models.Role) (*apitest.Server, *Repository, models.Video) {
	t.Helper()
	api := apitest.New(t)
	u := api.AddUser(t, "u@example.com", "u", "password1", role)
	v := api.AddVideo(models.Video{Title: "Go basics", VideoURL: "https://example.com/v.mp4", Duration: 60})

	mem := storage.NewMemory()
	mem.Set(context.Background(), storage.KeyAccessToken, api.Token(t, u))
	gw := gateway.New(api.URL(), gateway.StorageCredentials{Storage: mem}, mem)
	return api, NewRepository(gw, nil), v
}

func TestSessionOverHTTP(t *testing.T) {
	ctx := context.Background()
	api, repo, v := setup(t, models.RoleLearner)
	api.EncodeOptionsAsString()
	q1 := api.AddQuiz(v.ID, "Which keyword starts a goroutine?", []string{"go", "func", "chan"}, "go", "")
	q2 := api.AddQuiz(v.ID, "Zero value of a map?", []string{"nil", "{}", "0"}, "nil", "Maps start nil.")

	s := NewSession(repo, nil)
	if err := s.Load(ctx, v.ID); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Total() != 2 || len(snap.Quizzes[0].Options) != 3 || snap.Quizzes[0].CorrectAnswer != "" {
		t.Fatalf("loaded %+v", snap.Quizzes)
	}

	if _, err := s.Submit(ctx, q1.ID, "go"); err != nil {
		t.Fatal(err)
	}
	s.Next()
	res, err := s.Submit(ctx, q2.ID, "{}")
	if err != nil {
		t.Fatal(err)
	}
	if res.IsCorrect || res.CorrectAnswer != "nil" || res.Explanation != "Maps start nil." {
		t.Fatalf("result = %+v", res)
	}
	if got := s.Snapshot().Percentage(); got != 50 {
		t.Fatalf("percentage = %d", got)
	}
	if api.Submissions(q1.ID) != 1 || api.Submissions(q2.ID) != 1 {
		t.Fatal("unexpected submission count")
	}
}

func TestLoadFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	api, repo, v := setup(t, models.RoleLearner)
	api.AddQuiz(v.ID, "q", []string{"a", "b"}, "a", "")
	path := gateway.PathID("/api/videos", v.ID, "quizzes")
	api.Fail("GET", path, 500, "")

	s := NewSession(repo, nil)
	err := s.Load(ctx, v.ID)
	if !errors.Is(err, gateway.ErrServer) {
		t.Fatalf("err = %v", err)
	}
	if s.Snapshot().Status != StatusError {
		t.Fatal("expected error state")
	}

	api.Restore("GET", path)
	if err := s.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Status != StatusAnswering {
		t.Fatal("expected answering")
	}
}

func TestAuthoring(t *testing.T) {
	ctx := context.Background()
	_, repo, v := setup(t, models.RoleInstructor)
	svc := NewService(repo, nil)

	q, err := svc.CreateQuiz(ctx, v.ID, models.QuizInput{
		Question:      " What does defer do? ",
		Options:       []string{"Runs later", "Runs now"},
		CorrectAnswer: "Runs later",
	})
	if err != nil {
		t.Fatal(err)
	}
	if q.Question != "What does defer do?" {
		t.Fatalf("question = %q", q.Question)
	}

	updated, err := svc.UpdateQuiz(ctx, q.ID, models.QuizInput{
		Question:      "What does defer do?",
		Options:       []string{"Runs at function exit", "Runs now"},
		CorrectAnswer: "Runs at function exit",
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.CorrectAnswer != "Runs at function exit" {
		t.Fatalf("updated = %+v", updated)
	}

	list, err := svc.QuizzesForVideo(ctx, v.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
	got, err := svc.GetQuiz(ctx, q.ID)
	if err != nil || len(got.Options) != 2 {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if err := svc.DeleteQuiz(ctx, q.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetQuiz(ctx, q.ID); !gateway.IsNotFound(err) {
		t.Fatalf("after delete: %v", err)
	}
}

func TestAuthoringForbiddenForLearner(t *testing.T) {
	_, repo, v := setup(t, models.RoleLearner)
	_, err := NewService(repo, nil).CreateQuiz(context.Background(), v.ID, models.QuizInput{
		Question: "q", Options: []string{"a", "b"}, CorrectAnswer: "a",
	})
	if !errors.Is(err, gateway.ErrForbidden) {
		t.Fatalf("err = %v", err)
	}
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name  string
		in    models.QuizInput
		field string
	}{
		{"no question", models.QuizInput{Options: []string{"a", "b"}, CorrectAnswer: "a"}, "question"},
		{"one option", models.QuizInput{Question: "q", Options: []string{"a"}, CorrectAnswer: "a"}, "options"},
		{"duplicate", models.QuizInput{Question: "q", Options: []string{"a", "a"}, CorrectAnswer: "a"}, "options"},
		{"answer not an option", models.QuizInput{Question: "q", Options: []string{"a", "b"}, CorrectAnswer: "c"}, "correctAnswer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInput(tt.in)
			if !validate.IsValidation(err) {
				t.Fatalf("err = %v", err)
			}
			var ve *validate.Error
			if errors.As(err, &ve) && ve.Field != tt.field {
				t.Fatalf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}
