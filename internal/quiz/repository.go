// internal/quiz/repository.go
package quiz

import (
	"context"

	"learnsnap/internal/gateway"
	"learnsnap/internal/logger"
	"learnsnap/internal/models"
)

// Repository talks to the quiz endpoints of the API.
type Repository struct {
	gw  *gateway.Gateway
	log *logger.Logger
}

func NewRepository(gw *gateway.Gateway, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.Nop()
	}
	return &Repository{gw: gw, log: log}
}

// ListByVideo fetches the ordered quiz set of a video.
func (r *Repository) ListByVideo(ctx context.Context, videoID int64) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.gw.Get(ctx, gateway.PathID("/videos", videoID, "quizzes"), nil, &quizzes); err != nil {
		return nil, err
	}
	r.log.Debug("fetched quizzes", "video_id", videoID, "count", len(quizzes))
	return quizzes, nil
}

func (r *Repository) Get(ctx context.Context, quizID int64) (*models.Quiz, error) {
	var q models.Quiz
	if err := r.gw.Get(ctx, gateway.PathID("/quizzes", quizID), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Submit sends one answer for grading.
func (r *Repository) Submit(ctx context.Context, quizID int64, answer string) (*models.SubmitResult, error) {
	var res models.SubmitResult
	if err := r.gw.Post(ctx, gateway.PathID("/quizzes", quizID, "submit"), models.SubmitRequest{Answer: answer}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *Repository) Create(ctx context.Context, videoID int64, in models.QuizInput) (*models.Quiz, error) {
	var q models.Quiz
	if err := r.gw.Post(ctx, gateway.PathID("/videos", videoID, "quizzes"), in, &q); err != nil {
		return nil, err
	}
	r.log.Info("created quiz", "quiz_id", q.ID, "video_id", videoID)
	return &q, nil
}

func (r *Repository) Update(ctx context.Context, quizID int64, in models.QuizInput) (*models.Quiz, error) {
	var q models.Quiz
	if err := r.gw.Put(ctx, gateway.PathID("/quizzes", quizID), in, &q); err != nil {
		return nil, err
	}
	r.log.Info("updated quiz", "quiz_id", quizID)
	return &q, nil
}

func (r *Repository) Delete(ctx context.Context, quizID int64) error {
	if err := r.gw.Delete(ctx, gateway.PathID("/quizzes", quizID), nil); err != nil {
		return err
	}
	r.log.Info("deleted quiz", "quiz_id", quizID)
	return nil
}
