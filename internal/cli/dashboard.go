package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"learnsnap/internal/gamification"
	"learnsnap/internal/models"
)

func printProgress(w io.Writer, items []models.VideoProgress) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing here yet. Find something to watch with `learnsnap videos list`.")
		return
	}
	fmt.Fprintf(w, "%-6s  %-40s  %8s  %-10s  %s\n", "VIDEO", "TITLE", "WATCHED", "STATUS", "QUIZ")
	fmt.Fprintf(w, "%-6s  %-40s  %8s  %-10s  %s\n", "-----", "-----", "-------", "------", "----")
	for _, p := range items {
		id, title := p.VideoID, "-"
		if p.Video != nil {
			id, title = p.Video.ID, p.Video.Title
		}
		status := "watching"
		if p.Completed {
			status = "completed"
		}
		score := "-"
		if p.QuizScore != nil {
			score = fmt.Sprintf("%d%%", *p.QuizScore)
		}
		fmt.Fprintf(w, "%-6d  %-40s  %7d%%  %-10s  %s\n", id, truncate(title, 40), p.Percent(), status, score)
	}
}

func newProgressCmd(a *app) *cobra.Command {
	var completed, inProgress bool
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "List your watched videos",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathProgress); err != nil {
				return fail("progress", err)
			}
			var (
				items []models.VideoProgress
				err   error
			)
			switch {
			case completed:
				items, err = a.progress.Completed(ctx)
			case inProgress:
				items, err = a.progress.InProgress(ctx)
			default:
				items, err = a.progress.All(ctx)
			}
			if err != nil {
				return fail("progress", err)
			}
			printProgress(cmd.OutOrStdout(), items)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed videos")
	cmd.Flags().BoolVar(&inProgress, "in-progress", false, "Only videos still being watched")
	cmd.MarkFlagsMutuallyExclusive("completed", "in-progress")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		Aliases: []string{"dashboard"},
		Short:   "Show your learning dashboard",
		Args:    cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathDashboard); err != nil {
				return fail("dashboard", err)
			}
			stats, err := a.progress.Stats(ctx)
			if err != nil {
				return fail("dashboard", err)
			}
			sum, err := a.game.Summary(ctx)
			if err != nil {
				return fail("dashboard", err)
			}
			watching, err := a.progress.InProgress(ctx)
			if err != nil {
				return fail("dashboard", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Hi %s!\n\n", a.currentUser().Username)
			printSummary(out, sum, time.Now())
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%-18s %d\n", "Completed videos:", stats.CompletedVideos)
			fmt.Fprintf(out, "%-18s %d\n", "In progress:", stats.InProgressVideos)
			fmt.Fprintf(out, "%-18s %s\n", "Watch time:", formatWatchTime(stats.TotalWatchTime))
			if stats.AverageQuizScore != nil {
				fmt.Fprintf(out, "%-18s %.0f%%\n", "Average quiz:", *stats.AverageQuizScore)
			}
			if len(watching) > 0 {
				fmt.Fprintln(out, "\nContinue watching:")
				printProgress(out, watching)
			}
			return nil
		}),
	}
}

func printSummary(w io.Writer, sum gamification.Summary, now time.Time) {
	streak := fmt.Sprintf("%d day(s), best %d", sum.Streak.CurrentStreak, sum.Streak.LongestStreak)
	if sum.Streak.CurrentStreak > 0 && !sum.Streak.Active(now) {
		streak += " (watch something today to keep it)"
	}
	fmt.Fprintf(w, "%-18s %s\n", "Streak:", streak)
	fmt.Fprintf(w, "%-18s %d (level %d %s, %d%% to next)\n", "Points:",
		sum.Points.TotalPoints, sum.Points.Level, sum.Points.LevelTitle(), sum.Points.LevelProgress())
	fmt.Fprintf(w, "%-18s %d\n", "Badges earned:", len(sum.Badges))
}

func formatWatchTime(seconds int) string {
	d := time.Duration(seconds) * time.Second
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func newBadgesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "badges",
		Short: "List badges and the ones you earned",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathDashboard); err != nil {
				return fail("badges", err)
			}
			all, err := a.game.Badges(ctx)
			if err != nil {
				return fail("badges", err)
			}
			mine, err := a.game.UserBadges(ctx)
			if err != nil {
				return fail("badges", err)
			}

			out := cmd.OutOrStdout()
			if len(all) == 0 {
				fmt.Fprintln(out, "No badges available yet.")
				return nil
			}
			earned := make(map[int64]string, len(mine))
			for _, ub := range mine {
				earned[ub.EarnedBadgeID()] = ub.EarnedAt
			}
			for _, b := range all {
				mark := " "
				if _, ok := earned[b.ID]; ok {
					mark = "★"
				}
				fmt.Fprintf(out, "%s %-24s %s\n", mark, b.Name, b.Description)
			}
			fmt.Fprintf(out, "\n%d of %d earned\n", len(earned), len(all))
			return nil
		}),
	}
}

func newLeaderboardCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the points leaderboard",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.require(ctx, pathLeaderboard); err != nil {
				return fail("leaderboard", err)
			}
			p := models.LeaderboardPeriod(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(period), "-", "_")))
			board, err := a.game.Leaderboard(ctx, p)
			if err != nil {
				return fail("leaderboard", err)
			}

			out := cmd.OutOrStdout()
			if len(board) == 0 {
				fmt.Fprintln(out, "No leaderboard entries yet.")
				return nil
			}
			me := a.currentUser()
			fmt.Fprintf(out, "%-4s  %-24s  %8s  %5s\n", "RANK", "USER", "POINTS", "LEVEL")
			fmt.Fprintf(out, "%-4s  %-24s  %8s  %5s\n", "----", "----", "------", "-----")
			for _, e := range board {
				name := e.Username()
				if name == "" {
					name = fmt.Sprintf("user %d", e.UserID)
				}
				if e.Is(me.ID) {
					name += " (you)"
				}
				fmt.Fprintf(out, "%-4d  %-24s  %8d  %5d\n", e.Rank, truncate(name, 24), e.Points, e.Level)
			}
			if _, ok := gamification.Rank(board, me.ID); !ok {
				fmt.Fprintln(out, "\nYou are not ranked yet. Complete a video to earn points.")
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&period, "period", "weekly", "weekly, monthly or all-time")
	return cmd
}
