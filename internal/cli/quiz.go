package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"learnsnap/internal/gateway"
	"learnsnap/internal/models"
	"learnsnap/internal/quiz"
	"learnsnap/internal/ui"
)

var errQuizAbandoned = errors.New("quiz abandoned before every question was answered")

func newQuizCmd(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "quiz <video-id>",
		Short: "Take the quiz for a video",
		Long: "Take the quiz for a video. Answers are graded by the server one question at a time.\n" +
			"The interactive view is used on a terminal; --plain reads answers line by line.",
		Args: cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			videoID, err := parseID(args[0], "video")
			if err != nil {
				return err
			}
			if err := a.require(ctx, quizPath(videoID)); err != nil {
				return fail("quiz", err)
			}

			title := fmt.Sprintf("Video %d quiz", videoID)
			if v, err := a.videos.Get(ctx, videoID); err == nil {
				title = v.Title
			} else if gateway.IsNotFound(err) || errors.Is(err, gateway.ErrUnauthorized) {
				return fail("quiz", err)
			}

			session := quiz.NewSession(a.quizzes, a.log)
			if plain || !isTerminal(cmd.InOrStdin()) {
				err = a.playPlain(ctx, cmd.OutOrStdout(), session, videoID, title)
			} else {
				err = a.playInteractive(ctx, cmd, session, videoID, title)
			}
			if err != nil {
				return err
			}

			snap := session.Snapshot()
			if snap.AllSubmitted {
				a.reportCompletion(ctx, cmd.OutOrStdout(), snap)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Read answers from standard input instead of the interactive view")
	return cmd
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) playInteractive(ctx context.Context, cmd *cobra.Command, session *quiz.Session, videoID int64, title string) error {
	model := ui.NewQuizModel(ctx, session, videoID, title)
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithAltScreen(),
	)

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	a.followSession(watchCtx, program.Send)

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("quiz view: %w", err)
	}
	if m, ok := final.(ui.QuizModel); ok && m.Expired() {
		return fail("quiz", &gateway.Error{
			Kind:    gateway.KindUnauthorized,
			Status:  401,
			Message: "Authentication failed. Please log in again.",
		})
	}
	snap := session.Snapshot()
	if snap.Status == quiz.StatusFinished {
		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderResult(snap))
	}
	return nil
}

// followSession ends the interactive quiz when the stored login goes away,
// such as a logout from another terminal sharing the same storage.
func (a *app) followSession(ctx context.Context, send func(tea.Msg)) {
	states, unsubscribe := a.session.Subscribe()
	go func() {
		if err := a.session.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("session watch stopped", "error", err)
		}
	}()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case st := <-states:
				if !st.IsAuthenticated && !st.IsLoading {
					send(ui.SessionEndedMsg{})
					return
				}
			}
		}
	}()
}

// playPlain runs the quiz over line-oriented input. Each answer is either
// the option number or the option text.
func (a *app) playPlain(ctx context.Context, out io.Writer, session *quiz.Session, videoID int64, title string) error {
	if err := session.Load(ctx, videoID); err != nil {
		return fail("load quiz", err)
	}
	fmt.Fprintf(out, "%s\n", title)

	for {
		snap := session.Snapshot()
		switch snap.Status {
		case quiz.StatusEmpty:
			fmt.Fprintln(out, "No quizzes for this video yet.")
			return nil
		case quiz.StatusFinished:
			if snap.Flawless() {
				fmt.Fprintln(out, "\nFlawless! Every answer correct.")
			} else {
				fmt.Fprintln(out, "\nQuiz complete.")
			}
			fmt.Fprintf(out, "Score: %d/%d (%d%%)\n", snap.Score, snap.Total(), snap.Percentage())
			return nil
		case quiz.StatusSubmitted:
			if !session.Next() {
				return fmt.Errorf("quiz: question %d is answered but has no successor", snap.CurrentIndex+1)
			}
			continue
		}

		q, _ := snap.Current()
		fmt.Fprintf(out, "\nQuestion %d/%d: %s\n", snap.CurrentIndex+1, snap.Total(), q.Question)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
		}

		line, err := a.ask(out, "Your answer: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errQuizAbandoned
			}
			return err
		}
		answer, ok := pickOption(q.Options, line)
		if !ok {
			fmt.Fprintf(out, "Pick a number between 1 and %d.\n", len(q.Options))
			continue
		}

		res, err := session.Submit(ctx, q.ID, answer)
		if err != nil {
			return fail("submit answer", err)
		}
		if res.IsCorrect {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Not quite. The answer is %s.\n", res.CorrectAnswer)
		}
		if res.Explanation != "" {
			fmt.Fprintln(out, res.Explanation)
		}
	}
}

func pickOption(options models.Options, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(options) {
			return "", false
		}
		return options[n-1], true
	}
	for _, opt := range options {
		if strings.EqualFold(opt, input) {
			return opt, true
		}
	}
	return "", false
}

// reportCompletion records the finished attempt's percentage as the video's
// quiz score. The attempt itself is already graded, so a failure here is
// only reported.
func (a *app) reportCompletion(ctx context.Context, out io.Writer, snap quiz.Snapshot) {
	score := snap.Percentage()
	if _, err := a.progress.MarkCompleted(ctx, snap.VideoID, &score); err != nil {
		a.log.Warn("failed to record quiz score", "video_id", snap.VideoID, "error", err)
		fmt.Fprintf(out, "Could not save your score: %s\n", gateway.Message(err))
		return
	}
	fmt.Fprintln(out, "Progress saved.")
}
