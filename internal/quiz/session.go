package quiz

import (
	"context"
	"errors"
	"math"
	"sync"

	"learnsnap/internal/logger"
	"learnsnap/internal/models"
)

var (
	ErrNotReady         = errors.New("quiz set is not loaded")
	ErrNotCurrent       = errors.New("quiz is not the current question")
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	ErrSubmitInFlight   = errors.New("another answer is being submitted")
	ErrNotFinished      = errors.New("quiz is not finished")
	ErrStale            = errors.New("quiz session was reloaded")
)

// Source is what a Session needs from the API.
type Source interface {
	ListByVideo(ctx context.Context, videoID int64) ([]models.Quiz, error)
	Submit(ctx context.Context, quizID int64, answer string) (*models.SubmitResult, error)
}

type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusEmpty
	StatusAnswering
	StatusSubmitted
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	case StatusAnswering:
		return "answering"
	case StatusSubmitted:
		return "submitted"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

type Result struct {
	IsCorrect     bool
	CorrectAnswer string
	Explanation   string
}

// Snapshot is a copy of the session for rendering.
type Snapshot struct {
	VideoID      int64
	Status       Status
	Quizzes      []models.Quiz
	CurrentIndex int
	Answers      map[int64]string
	Results      map[int64]Result
	Score        int
	AllSubmitted bool
	Submitting   bool
	Err          error
}

func (s Snapshot) Total() int { return len(s.Quizzes) }

func (s Snapshot) Current() (models.Quiz, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Quizzes) {
		return models.Quiz{}, false
	}
	return s.Quizzes[s.CurrentIndex], true
}

// Percentage is the rounded share of correct answers.
func (s Snapshot) Percentage() int {
	if len(s.Quizzes) == 0 {
		return 0
	}
	return int(math.Round(float64(s.Score) / float64(len(s.Quizzes)) * 100))
}

func (s Snapshot) Flawless() bool {
	return len(s.Quizzes) > 0 && s.Score == len(s.Quizzes)
}

// Session is the quiz-taking state machine for one video. Answers are graded
// by the server; the session only records outcomes.
type Session struct {
	mu  sync.Mutex
	src Source
	log *logger.Logger

	videoID int64
	gen     uint64 // bumped by Load and Retry; in-flight results from older generations are dropped
	loading bool
	err     error
	quizzes []models.Quiz

	index    int
	answers  map[int64]string
	results  map[int64]Result
	score    int
	inFlight bool
}

func NewSession(src Source, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		src:     src,
		log:     log.With("component", "quiz_session"),
		loading: true,
		answers: make(map[int64]string),
		results: make(map[int64]Result),
	}
}

// Load fetches the quiz set of videoID and starts a fresh attempt. A
// transport failure leaves the session in StatusError with the error kept
// for display; calling Load again is the retry affordance.
func (s *Session) Load(ctx context.Context, videoID int64) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.videoID = videoID
	s.loading = true
	s.err = nil
	s.quizzes = nil
	s.resetLocked()
	s.mu.Unlock()

	quizzes, err := s.src.ListByVideo(ctx, videoID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrStale
	}
	s.loading = false
	if err != nil {
		s.err = err
		s.log.Warn("failed to load quizzes", "video_id", videoID, "error", err)
		return err
	}
	s.quizzes = quizzes
	s.log.Debug("quiz set loaded", "video_id", videoID, "count", len(quizzes))
	return nil
}

// Reload repeats the last Load.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	id := s.videoID
	s.mu.Unlock()
	return s.Load(ctx, id)
}

func (s *Session) resetLocked() {
	s.index = 0
	s.answers = make(map[int64]string)
	s.results = make(map[int64]Result)
	s.score = 0
	s.inFlight = false
}

func (s *Session) readyLocked() bool {
	return !s.loading && s.err == nil && len(s.quizzes) > 0
}

func (s *Session) statusLocked() Status {
	switch {
	case s.loading:
		return StatusLoading
	case s.err != nil:
		return StatusError
	case len(s.quizzes) == 0:
		return StatusEmpty
	case len(s.answers) == len(s.quizzes):
		return StatusFinished
	}
	if _, done := s.answers[s.quizzes[s.index].ID]; done {
		return StatusSubmitted
	}
	return StatusAnswering
}

// Submit sends answer for the current question. Only one submission may be
// outstanding; the result is applied to the state as it is when the server
// answers.
func (s *Session) Submit(ctx context.Context, quizID int64, answer string) (Result, error) {
	s.mu.Lock()
	if !s.readyLocked() {
		s.mu.Unlock()
		return Result{}, ErrNotReady
	}
	if s.inFlight {
		s.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	}
	if s.quizzes[s.index].ID != quizID {
		s.mu.Unlock()
		return Result{}, ErrNotCurrent
	}
	if _, done := s.answers[quizID]; done {
		s.mu.Unlock()
		return Result{}, ErrAlreadySubmitted
	}
	s.inFlight = true
	gen := s.gen
	s.mu.Unlock()

	graded, err := s.src.Submit(ctx, quizID, answer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return Result{}, ErrStale
	}
	s.inFlight = false
	if err != nil {
		s.log.Warn("failed to submit answer", "quiz_id", quizID, "error", err)
		return Result{}, err
	}
	if _, done := s.answers[quizID]; done {
		return Result{}, ErrAlreadySubmitted
	}

	res := Result{IsCorrect: graded.IsCorrect, CorrectAnswer: graded.CorrectAnswer, Explanation: graded.Explanation}
	s.answers[quizID] = answer
	s.results[quizID] = res
	if res.IsCorrect {
		s.score++
	}
	s.log.Debug("answer graded", "quiz_id", quizID, "correct", res.IsCorrect, "score", s.score)
	return res, nil
}

// Next moves forward one question and reports whether it moved.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.readyLocked() || s.index >= len(s.quizzes)-1 {
		return false
	}
	s.index++
	return true
}

func (s *Session) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.readyLocked() || s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Retry starts a new attempt over the same questions once every question
// has been answered.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.readyLocked() || len(s.answers) != len(s.quizzes) {
		return ErrNotFinished
	}
	s.gen++
	s.resetLocked()
	s.log.Debug("quiz attempt restarted", "video_id", s.videoID)
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		VideoID:      s.videoID,
		Status:       s.statusLocked(),
		Quizzes:      append([]models.Quiz(nil), s.quizzes...),
		CurrentIndex: s.index,
		Answers:      make(map[int64]string, len(s.answers)),
		Results:      make(map[int64]Result, len(s.results)),
		Score:        s.score,
		AllSubmitted: len(s.quizzes) > 0 && len(s.answers) == len(s.quizzes),
		Submitting:   s.inFlight,
		Err:          s.err,
	}
	for k, v := range s.answers {
		snap.Answers[k] = v
	}
	for k, v := range s.results {
		snap.Results[k] = v
	}
	return snap
}
