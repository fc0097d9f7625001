package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"

	"learnsnap/internal/models"
)

// fakeSource grades against a fixed answer key. A non-nil gate blocks Submit
// until it is closed.
type fakeSource struct {
	mu      sync.Mutex
	quizzes []models.Quiz
	key     map[int64]string
	listErr error
	gate    chan struct{}
	entered chan struct{}
	calls   int
}

func (f *fakeSource) ListByVideo(ctx context.Context, videoID int64) ([]models.Quiz, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Quiz(nil), f.quizzes...), nil
}

func (f *fakeSource) Submit(ctx context.Context, quizID int64, answer string) (*models.SubmitResult, error) {
	f.mu.Lock()
	f.calls++
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	correct := f.key[quizID]
	return &models.SubmitResult{IsCorrect: answer == correct, CorrectAnswer: correct}, nil
}

func twoQuestions() *fakeSource {
	return &fakeSource{
		quizzes: []models.Quiz{
			{ID: 1, Question: "q1", Options: models.Options{"A", "B", "C"}},
			{ID: 2, Question: "q2", Options: models.Options{"A", "B", "C"}},
		},
		key: map[int64]string{1: "B", 2: "A"},
	}
}

func loaded(t *testing.T, src Source) *Session {
	t.Helper()
	s := NewSession(src, nil)
	if err := s.Load(context.Background(), 10); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestExampleScenario(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, twoQuestions())

	res, err := s.Submit(ctx, 1, "B")
	if err != nil || !res.IsCorrect {
		t.Fatalf("q1: %+v, %v", res, err)
	}
	if snap := s.Snapshot(); snap.Score != 1 || snap.Status != StatusSubmitted {
		t.Fatalf("after q1: score %d status %v", snap.Score, snap.Status)
	}

	if !s.Next() {
		t.Fatal("Next did not move")
	}
	res, err = s.Submit(ctx, 2, "C")
	if err != nil || res.IsCorrect || res.CorrectAnswer != "A" {
		t.Fatalf("q2: %+v, %v", res, err)
	}

	snap := s.Snapshot()
	if !snap.AllSubmitted || snap.Status != StatusFinished {
		t.Fatalf("status %v allSubmitted %v", snap.Status, snap.AllSubmitted)
	}
	if snap.Score != 1 || snap.Percentage() != 50 || snap.Flawless() {
		t.Fatalf("score %d pct %d flawless %v", snap.Score, snap.Percentage(), snap.Flawless())
	}
}

func TestScoreMatchesResults(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{key: map[int64]string{}}
	for i := int64(1); i <= 7; i++ {
		src.quizzes = append(src.quizzes, models.Quiz{ID: i * 10})
		src.key[i*10] = "yes"
	}
	s := loaded(t, src)

	for i, q := range src.quizzes {
		answer := "no"
		if i%2 == 0 {
			answer = "yes"
		}
		if _, err := s.Submit(ctx, q.ID, answer); err != nil {
			t.Fatalf("submit %d: %v", q.ID, err)
		}
		s.Next()
	}

	snap := s.Snapshot()
	correct := 0
	for _, r := range snap.Results {
		if r.IsCorrect {
			correct++
		}
	}
	if !snap.AllSubmitted || snap.Score != correct || correct != 4 {
		t.Fatalf("allSubmitted %v score %d correct %d", snap.AllSubmitted, snap.Score, correct)
	}
	if len(snap.Answers) != len(snap.Results) {
		t.Fatalf("answers %d results %d", len(snap.Answers), len(snap.Results))
	}
	if snap.Percentage() != 57 {
		t.Fatalf("percentage = %d", snap.Percentage())
	}
}

func TestDuplicateSubmitIsRejected(t *testing.T) {
	ctx := context.Background()
	src := twoQuestions()
	s := loaded(t, src)

	if _, err := s.Submit(ctx, 1, "B"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Submit(ctx, 1, "B"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submit: %v", err)
	}
	snap := s.Snapshot()
	if snap.Score != 1 || len(snap.Answers) != 1 || src.calls != 1 {
		t.Fatalf("score %d answers %d calls %d", snap.Score, len(snap.Answers), src.calls)
	}
}

func TestSubmitOnlyCurrentQuestion(t *testing.T) {
	s := loaded(t, twoQuestions())
	if _, err := s.Submit(context.Background(), 2, "A"); !errors.Is(err, ErrNotCurrent) {
		t.Fatalf("err = %v", err)
	}
	if len(s.Snapshot().Answers) != 0 {
		t.Fatal("state changed")
	}
}

func TestNavigationClamps(t *testing.T) {
	ctx := context.Background()
	s := loaded(t, twoQuestions())

	if s.Prev() || s.Snapshot().CurrentIndex != 0 {
		t.Fatal("Prev moved below 0")
	}
	s.Next()
	if s.Next() || s.Snapshot().CurrentIndex != 1 {
		t.Fatal("Next moved past the end")
	}

	// Navigation never touches answers.
	s.Prev()
	s.Submit(ctx, 1, "A")
	s.Next()
	s.Prev()
	if snap := s.Snapshot(); len(snap.Answers) != 1 || snap.Answers[1] != "A" {
		t.Fatalf("answers = %v", snap.Answers)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	src := twoQuestions()
	s := loaded(t, src)

	if err := s.Retry(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("early retry: %v", err)
	}

	s.Submit(ctx, 1, "B")
	s.Next()
	s.Submit(ctx, 2, "A")
	if !s.Snapshot().Flawless() {
		t.Fatal("expected flawless")
	}

	if err := s.Retry(); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Score != 0 || len(snap.Answers) != 0 || len(snap.Results) != 0 || snap.CurrentIndex != 0 || snap.AllSubmitted {
		t.Fatalf("after retry: %+v", snap)
	}
	if len(snap.Quizzes) != 2 || snap.Quizzes[0].ID != 1 || snap.Quizzes[1].ID != 2 {
		t.Fatalf("quiz set changed: %+v", snap.Quizzes)
	}
	if snap.Status != StatusAnswering {
		t.Fatalf("status = %v", snap.Status)
	}
	if _, err := s.Submit(ctx, 1, "B"); err != nil {
		t.Fatalf("resubmit after retry: %v", err)
	}
}

func TestEmptyAndErrorStates(t *testing.T) {
	ctx := context.Background()

	empty := loaded(t, &fakeSource{})
	if st := empty.Snapshot().Status; st != StatusEmpty {
		t.Fatalf("status = %v", st)
	}
	if _, err := empty.Submit(ctx, 1, "A"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("submit on empty: %v", err)
	}
	if empty.Next() || empty.Prev() {
		t.Fatal("navigation on empty set")
	}
	if empty.Snapshot().Percentage() != 0 {
		t.Fatal("percentage of empty set")
	}

	src := twoQuestions()
	src.listErr = errors.New("connection refused")
	s := NewSession(src, nil)
	if err := s.Load(ctx, 10); err == nil {
		t.Fatal("expected load error")
	}
	snap := s.Snapshot()
	if snap.Status != StatusError || snap.Err == nil {
		t.Fatalf("snapshot = %+v", snap)
	}

	src.listErr = nil
	if err := s.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Status != StatusAnswering {
		t.Fatal("reload did not recover")
	}
}

func TestSubmitInFlight(t *testing.T) {
	ctx := context.Background()
	src := twoQuestions()
	src.gate = make(chan struct{})
	src.entered = make(chan struct{}, 1)
	s := loaded(t, src)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(ctx, 1, "B")
		done <- err
	}()
	<-src.entered

	if !s.Snapshot().Submitting {
		t.Fatal("not marked submitting")
	}
	if _, err := s.Submit(ctx, 1, "B"); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("concurrent submit: %v", err)
	}
	// Navigation stays available while the request is outstanding.
	s.Next()

	close(src.gate)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Score != 1 || snap.CurrentIndex != 1 || snap.Submitting {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestReloadDropsInFlightResult(t *testing.T) {
	ctx := context.Background()
	src := twoQuestions()
	src.gate = make(chan struct{})
	src.entered = make(chan struct{}, 1)
	s := loaded(t, src)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(ctx, 1, "B")
		done <- err
	}()
	<-src.entered

	if err := s.Load(ctx, 10); err != nil {
		t.Fatal(err)
	}
	close(src.gate)
	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("err = %v", err)
	}
	if snap := s.Snapshot(); snap.Score != 0 || len(snap.Answers) != 0 {
		t.Fatalf("stale result applied: %+v", snap)
	}
}

func TestInitialStatusIsLoading(t *testing.T) {
	s := NewSession(&fakeSource{}, nil)
	if st := s.Snapshot().Status; st != StatusLoading {
		t.Fatalf("status = %v", st)
	}
}
