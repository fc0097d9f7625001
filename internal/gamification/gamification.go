// Package gamification is the client for streaks, points, badges and the
// leaderboard.
//
// Every read maps a 404 to an empty default. The backend ships these
// endpoints incrementally, so until it has them all a missing one reads as
// "no data yet" instead of an error.
package gamification

import (
	"context"
	"fmt"
	"net/url"
	"reflect"

	"golang.org/x/sync/errgroup"

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

// getOr decodes path into out, leaving def in place on a 404. A JSON null
// list also reads as def, so callers never see a nil slice.
func getOr[T any](ctx context.Context, s *Service, path string, query url.Values, def T) (T, error) {
	out := def
	if err := s.gw.Get(ctx, path, query, &out); err != nil {
		if gateway.IsNotFound(err) {
			s.log.Debug("gamification endpoint missing; using default", "path", path)
			return def, nil
		}
		return def, err
	}
	if v := reflect.ValueOf(out); v.Kind() == reflect.Slice && v.IsNil() {
		return def, nil
	}
	return out, nil
}

func (s *Service) Streak(ctx context.Context) (models.Streak, error) {
	return getOr(ctx, s, "/gamification/streak", nil, models.Streak{})
}

func (s *Service) Points(ctx context.Context) (models.Points, error) {
	return getOr(ctx, s, "/gamification/points", nil, models.Points{Level: 1})
}

func (s *Service) Badges(ctx context.Context) ([]models.Badge, error) {
	return getOr(ctx, s, "/gamification/badges", nil, []models.Badge{})
}

func (s *Service) UserBadges(ctx context.Context) ([]models.UserBadge, error) {
	return getOr(ctx, s, "/gamification/user-badges", nil, []models.UserBadge{})
}

// Leaderboard ranks users for period; an empty period means weekly.
func (s *Service) Leaderboard(ctx context.Context, period models.LeaderboardPeriod) ([]models.LeaderboardEntry, error) {
	if period == "" {
		period = models.PeriodWeekly
	}
	switch period {
	case models.PeriodWeekly, models.PeriodMonthly, models.PeriodAllTime:
	default:
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}
	return getOr(ctx, s, "/gamification/leaderboard", url.Values{"period": {string(period)}}, []models.LeaderboardEntry{})
}

// AddPoints credits the current user. Unlike the reads, a 404 here is an
// error.
func (s *Service) AddPoints(ctx context.Context, points int, reason string) (models.Points, error) {
	if points <= 0 {
		return models.Points{}, fmt.Errorf("points must be positive, got %d", points)
	}
	var out models.Points
	if err := s.gw.Post(ctx, "/gamification/points/add", models.AddPointsRequest{Points: points, Reason: reason}, &out); err != nil {
		return models.Points{}, err
	}
	s.log.Info("points added", "points", points, "reason", reason)
	return out, nil
}

// Summary is what the dashboard header shows.
type Summary struct {
	Streak models.Streak
	Points models.Points
	Badges []models.UserBadge
}

// Summary fetches streak, points and earned badges concurrently.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.Streak(gctx)
		sum.Streak = st
		return err
	})
	g.Go(func() error {
		p, err := s.Points(gctx)
		sum.Points = p
		return err
	})
	g.Go(func() error {
		b, err := s.UserBadges(gctx)
		sum.Badges = b
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// Rank finds userID on the board; ok is false when the user is not ranked.
func Rank(board []models.LeaderboardEntry, userID int64) (models.LeaderboardEntry, bool) {
	for _, e := range board {
		if e.Is(userID) {
			return e, true
		}
	}
	return models.LeaderboardEntry{}, false
}
