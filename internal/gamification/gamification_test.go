package gamification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"learnsnap/internal/apitest"
	"learnsnap/internal/gateway"
	"learnsnap/internal/models"
	"learnsnap/pkg/storage"
)

func setup(t *testing.T) (*apitest.Server, *Service, models.User) {
	t.Helper()
	api := apitest.New(t)
	u := api.AddUser(t, "g@example.com", "gopher", "password1", models.RoleLearner)
	mem := storage.NewMemory()
	mem.Set(context.Background(), storage.KeyAccessToken, api.Token(t, u))
	return api, NewService(gateway.New(api.URL(), gateway.StorageCredentials{Storage: mem}, mem), nil), u
}

func TestMissingEndpointsReturnDefaults(t *testing.T) {
	ctx := context.Background()
	api, svc, _ := setup(t)
	api.DisableGamification()

	st, err := svc.Streak(ctx)
	if err != nil || st != (models.Streak{}) {
		t.Fatalf("streak = %+v, %v", st, err)
	}
	p, err := svc.Points(ctx)
	if err != nil || p.TotalPoints != 0 || p.Level != 1 {
		t.Fatalf("points = %+v, %v", p, err)
	}
	badges, err := svc.Badges(ctx)
	if err != nil || badges == nil || len(badges) != 0 {
		t.Fatalf("badges = %v, %v", badges, err)
	}
	ub, err := svc.UserBadges(ctx)
	if err != nil || len(ub) != 0 {
		t.Fatalf("user badges = %v, %v", ub, err)
	}
	board, err := svc.Leaderboard(ctx, "")
	if err != nil || len(board) != 0 {
		t.Fatalf("leaderboard = %v, %v", board, err)
	}

	if _, err := svc.AddPoints(ctx, 5, "quiz"); !gateway.IsNotFound(err) {
		t.Fatalf("add points on missing endpoint: %v", err)
	}
}

func TestNullListsReadAsEmpty(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("null"))
	}))
	t.Cleanup(srv.Close)
	mem := storage.NewMemory()
	mem.Set(ctx, storage.KeyAccessToken, "tok")
	svc := NewService(gateway.New(srv.URL, gateway.StorageCredentials{Storage: mem}, mem), nil)

	badges, err := svc.Badges(ctx)
	if err != nil || badges == nil {
		t.Fatalf("badges = %#v, %v", badges, err)
	}
	ub, err := svc.UserBadges(ctx)
	if err != nil || ub == nil {
		t.Fatalf("user badges = %#v, %v", ub, err)
	}
	board, err := svc.Leaderboard(ctx, "")
	if err != nil || board == nil {
		t.Fatalf("leaderboard = %#v, %v", board, err)
	}
	st, err := svc.Streak(ctx)
	if err != nil || st != (models.Streak{}) {
		t.Fatalf("streak = %+v, %v", st, err)
	}
}

func TestServerErrorsStillPropagate(t *testing.T) {
	api, svc, _ := setup(t)
	api.Fail("GET", "/api/gamification/streak", 500, "")
	if _, err := svc.Streak(context.Background()); gateway.KindOf(err) != gateway.KindServer {
		t.Fatalf("err = %v", err)
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	api, svc, u := setup(t)
	today := time.Now().Format("2006-01-02")
	api.SetStreak(u.ID, models.Streak{CurrentStreak: 3, LongestStreak: 5, LastActivityDate: today})
	api.AwardPoints(u.ID, 250)
	api.AddBadge("First Steps", "Watched a video", u.ID)
	api.AddBadge("Marathon", "Watched 50 videos")

	sum, err := svc.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Streak.CurrentStreak != 3 || !sum.Streak.Active(time.Now()) {
		t.Fatalf("streak = %+v", sum.Streak)
	}
	if sum.Points.TotalPoints != 250 || sum.Points.Level != 3 || sum.Points.LevelProgress() != 50 {
		t.Fatalf("points = %+v", sum.Points)
	}
	if len(sum.Badges) != 1 || sum.Badges[0].Badge.Name != "First Steps" || sum.Badges[0].EarnedBadgeID() == 0 {
		t.Fatalf("badges = %+v", sum.Badges)
	}

	all, err := svc.Badges(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("all badges = %v, %v", all, err)
	}
}

func TestSummaryFailsWhenOneReadFails(t *testing.T) {
	api, svc, _ := setup(t)
	api.Fail("GET", "/api/gamification/points", 503, "")
	if _, err := svc.Summary(context.Background()); gateway.KindOf(err) != gateway.KindServer {
		t.Fatalf("err = %v", err)
	}
}

func TestLeaderboardAndAddPoints(t *testing.T) {
	ctx := context.Background()
	api, svc, me := setup(t)
	other := api.AddUser(t, "o@example.com", "other", "password1", models.RoleLearner)
	api.AwardPoints(other.ID, 40)

	p, err := svc.AddPoints(ctx, 60, "quiz completed")
	if err != nil || p.TotalPoints != 60 {
		t.Fatalf("add = %+v, %v", p, err)
	}
	if _, err := svc.AddPoints(ctx, 0, "nothing"); err == nil {
		t.Fatal("zero points accepted")
	}

	board, err := svc.Leaderboard(ctx, models.PeriodMonthly)
	if err != nil || len(board) != 2 {
		t.Fatalf("board = %+v, %v", board, err)
	}
	entry, ok := Rank(board, me.ID)
	if !ok || entry.Rank != 1 || entry.Username() != "gopher" {
		t.Fatalf("rank = %+v, %v", entry, ok)
	}
	if _, ok := Rank(board, 12345); ok {
		t.Fatal("unknown user ranked")
	}

	if _, err := svc.Leaderboard(ctx, "DAILY"); err == nil {
		t.Fatal("bad period accepted")
	}
	if api.Requests("GET", "/api/gamification/leaderboard") != 1 {
		t.Fatal("bad period reached the network")
	}
}
