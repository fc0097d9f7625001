// internal/quiz/service.go
package quiz

import (
	"context"
	"fmt"
	"strings"

	"learnsnap/internal/logger"
	"learnsnap/internal/models"
	"learnsnap/internal/validate"
)

const (
	questionMax    = 500
	explanationMax = 1000
	minOptions     = 2
)

// Service is quiz authoring for instructors.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

func NewService(repo *Repository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log}
}

// ValidateInput checks a quiz before it is sent: a question, at least two
// distinct non-empty options, and a correct answer that is one of them.
func ValidateInput(in models.QuizInput) error {
	var c validate.Checker
	c.Required("question", in.Question).MaxLen("question", in.Question, questionMax)
	c.Check(len(in.Options) >= minOptions, "options", fmt.Sprintf("needs at least %d options", minOptions))

	seen := make(map[string]bool, len(in.Options))
	for _, o := range in.Options {
		o = strings.TrimSpace(o)
		c.Check(o != "", "options", "must not contain empty options")
		c.Check(!seen[o], "options", "must not contain duplicates")
		seen[o] = true
	}
	c.Required("correctAnswer", in.CorrectAnswer)
	if in.CorrectAnswer != "" {
		c.Check(seen[strings.TrimSpace(in.CorrectAnswer)], "correctAnswer", "must be one of the options")
	}
	c.MaxLen("explanation", in.Explanation, explanationMax)
	return c.Err()
}

func normalize(in models.QuizInput) models.QuizInput {
	in.Question = strings.TrimSpace(in.Question)
	in.CorrectAnswer = strings.TrimSpace(in.CorrectAnswer)
	in.Explanation = strings.TrimSpace(in.Explanation)
	opts := make([]string, len(in.Options))
	for i, o := range in.Options {
		opts[i] = strings.TrimSpace(o)
	}
	in.Options = opts
	return in
}

func (s *Service) CreateQuiz(ctx context.Context, videoID int64, in models.QuizInput) (*models.Quiz, error) {
	in = normalize(in)
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, videoID, in)
}

func (s *Service) UpdateQuiz(ctx context.Context, quizID int64, in models.QuizInput) (*models.Quiz, error) {
	in = normalize(in)
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, quizID, in)
}

func (s *Service) DeleteQuiz(ctx context.Context, quizID int64) error {
	return s.repo.Delete(ctx, quizID)
}

func (s *Service) QuizzesForVideo(ctx context.Context, videoID int64) ([]models.Quiz, error) {
	return s.repo.ListByVideo(ctx, videoID)
}

func (s *Service) GetQuiz(ctx context.Context, quizID int64) (*models.Quiz, error) {
	return s.repo.Get(ctx, quizID)
}
