// Package progress is the client for the user-progress endpoints. The list
// and stats reads treat 404 as "nothing recorded yet".
package progress

import (
	"context"

	"learnsnap/internal/gateway"
	"learnsnap/internal/logger"
	"learnsnap/internal/models"
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

func (s *Service) All(ctx context.Context) ([]models.VideoProgress, error) {
	var out []models.VideoProgress
	if err := s.gw.Get(ctx, "/user-progress", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForVideo returns the user's progress on one video. A 404 comes back as
// gateway.ErrNotFound so callers can tell "never watched" apart.
func (s *Service) ForVideo(ctx context.Context, videoID int64) (*models.VideoProgress, error) {
	var p models.VideoProgress
	if err := s.gw.Get(ctx, gateway.PathID("/user-progress/video", videoID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkCompleted records the video as finished. quizScore is the quiz
// percentage, or nil when no quiz was taken.
func (s *Service) MarkCompleted(ctx context.Context, videoID int64, quizScore *int) (*models.VideoProgress, error) {
	var p models.VideoProgress
	if err := s.gw.Post(ctx, gateway.PathID("/user-progress/video", videoID, "complete"), models.CompleteRequest{QuizScore: quizScore}, &p); err != nil {
		return nil, err
	}
	s.log.Info("video completed", "video_id", videoID)
	return &p, nil
}

// UpdateWatch records how many seconds of the video were watched.
func (s *Service) UpdateWatch(ctx context.Context, videoID int64, watchedSeconds int) (*models.VideoProgress, error) {
	var p models.VideoProgress
	if err := s.gw.Put(ctx, gateway.PathID("/user-progress/video", videoID, "progress"), models.WatchProgressRequest{WatchedDuration: watchedSeconds}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) list(ctx context.Context, path string) ([]models.VideoProgress, error) {
	out := []models.VideoProgress{}
	if err := s.gw.Get(ctx, path, nil, &out); err != nil {
		if gateway.IsNotFound(err) {
			s.log.Debug("progress endpoint missing; using empty list", "path", path)
			return []models.VideoProgress{}, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *Service) Completed(ctx context.Context) ([]models.VideoProgress, error) {
	return s.list(ctx, "/user-progress/completed")
}

func (s *Service) InProgress(ctx context.Context) ([]models.VideoProgress, error) {
	return s.list(ctx, "/user-progress/in-progress")
}

func (s *Service) Stats(ctx context.Context) (models.LearningStats, error) {
	var st models.LearningStats
	if err := s.gw.Get(ctx, "/user-progress/stats", nil, &st); err != nil {
		if gateway.IsNotFound(err) {
			return models.LearningStats{}, nil
		}
		return models.LearningStats{}, err
	}
	return st, nil
}
