// Package ui is the terminal rendering surface: it turns session snapshots
// into screens and key presses into session intents.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"learnsnap/internal/gateway"
	"learnsnap/internal/quiz"
)

// quizPort is the part of *quiz.Session the view drives.
type quizPort interface {
	Load(ctx context.Context, videoID int64) error
	Reload(ctx context.Context) error
	Submit(ctx context.Context, quizID int64, answer string) (quiz.Result, error)
	Next() bool
	Prev() bool
	Retry() error
	Snapshot() quiz.Snapshot
}

type loadedMsg struct{ err error }

type submittedMsg struct {
	quizID int64
	err    error
}

// SessionEndedMsg tells the view the login it runs under is gone, for
// instance because another process logged out.
type SessionEndedMsg struct{}

// QuizModel is the interactive quiz screen for one video.
type QuizModel struct {
	ctx     context.Context
	session quizPort
	videoID int64
	title   string

	cursor  int
	status  string
	expired bool
	pending bool
	width   int
}

func NewQuizModel(ctx context.Context, session quizPort, videoID int64, title string) QuizModel {
	return QuizModel{ctx: ctx, session: session, videoID: videoID, title: title}
}

// Expired reports whether the program ended because the server rejected
// the session.
func (m QuizModel) Expired() bool { return m.expired }

func (m QuizModel) Init() tea.Cmd {
	return m.loadCmd(false)
}

func (m QuizModel) loadCmd(reload bool) tea.Cmd {
	ctx, s, id := m.ctx, m.session, m.videoID
	return func() tea.Msg {
		if reload {
			return loadedMsg{err: s.Reload(ctx)}
		}
		return loadedMsg{err: s.Load(ctx, id)}
	}
}

func (m QuizModel) submitCmd(quizID int64, answer string) tea.Cmd {
	ctx, s := m.ctx, m.session
	return func() tea.Msg {
		_, err := s.Submit(ctx, quizID, answer)
		return submittedMsg{quizID: quizID, err: err}
	}
}

func (m QuizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case loadedMsg:
		m.cursor = 0
		m.status = ""
		if msg.err != nil {
			return m.failed(msg.err)
		}

	case submittedMsg:
		m.pending = false
		if msg.err != nil {
			if ignorable(msg.err) {
				return m, nil
			}
			return m.failed(msg.err)
		}
		m.status = ""

	case SessionEndedMsg:
		m.expired = true
		m.status = "Your session has ended. Please log in again."
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// ignorable errors mean another submission already settled or is settling
// the question, so there is nothing to show.
func ignorable(err error) bool {
	return errors.Is(err, quiz.ErrStale) ||
		errors.Is(err, quiz.ErrAlreadySubmitted) ||
		errors.Is(err, quiz.ErrSubmitInFlight)
}

func (m QuizModel) failed(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		m.expired = true
		m.status = gateway.Message(err)
		return m, tea.Quit
	}
	m.status = gateway.Message(err)
	return m, nil
}

func (m QuizModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.session.Snapshot()
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if q, ok := snap.Current(); ok && m.cursor < len(q.Options)-1 {
			m.cursor++
		}
	case "right", "l", "n":
		if m.session.Next() {
			m.cursor = 0
			m.status = ""
		}
	case "left", "h", "p":
		if m.session.Prev() {
			m.cursor = 0
			m.status = ""
		}
	case "enter", " ":
		q, ok := snap.Current()
		if !ok || snap.Status != quiz.StatusAnswering || len(q.Options) == 0 {
			return m, nil
		}
		if m.pending || snap.Submitting {
			m.status = "Grading your previous answer..."
			return m, nil
		}
		m.pending = true
		m.status = "Grading..."
		return m, m.submitCmd(q.ID, q.Options[m.cursor])
	case "r":
		switch snap.Status {
		case quiz.StatusFinished:
			if err := m.session.Retry(); err == nil {
				m.cursor = 0
				m.status = ""
			}
		case quiz.StatusError:
			m.status = "Retrying..."
			return m, m.loadCmd(true)
		}
	}
	return m, nil
}

func (m QuizModel) View() string {
	snap := m.session.Snapshot()
	var b strings.Builder

	b.WriteString(Title.Render(m.title))
	b.WriteString("\n\n")

	switch snap.Status {
	case quiz.StatusLoading:
		b.WriteString(Muted.Render("Loading quizzes..."))
	case quiz.StatusError:
		b.WriteString(Wrong.Render("Could not load quizzes."))
		b.WriteString("\n")
		b.WriteString(Muted.Render("r retry · q quit"))
	case quiz.StatusEmpty:
		b.WriteString(Muted.Render("No quizzes for this video yet."))
	case quiz.StatusFinished:
		b.WriteString(RenderResult(snap))
		b.WriteString("\n\n")
		b.WriteString(Muted.Render("←/→ review · r retry · q quit"))
	default:
		b.WriteString(m.renderQuestion(snap))
	}

	if m.status != "" {
		b.WriteString("\n\n")
		b.WriteString(Hot.Render(m.status))
	}

	style := Pane
	if m.width > 4 {
		style = style.Width(min(m.width-4, 100))
	}
	return style.Render(b.String()) + "\n"
}

func (m QuizModel) renderQuestion(snap quiz.Snapshot) string {
	q, _ := snap.Current()
	res, answered := snap.Results[q.ID]
	given := snap.Answers[q.ID]

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n",
		Muted.Render(fmt.Sprintf("Question %d/%d", snap.CurrentIndex+1, snap.Total())),
		Muted.Render(fmt.Sprintf("score %d", snap.Score)))
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(q.Question))
	b.WriteString("\n\n")

	for i, opt := range q.Options {
		line := fmt.Sprintf("  %d. %s", i+1, opt)
		switch {
		case answered && opt == res.CorrectAnswer:
			line = Correct.Render("✓ " + line[2:])
		case answered && opt == given:
			line = Wrong.Render("✗ " + line[2:])
		case !answered && i == m.cursor:
			line = Selected.Render("› " + line[2:])
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if answered {
		b.WriteString("\n")
		if res.IsCorrect {
			b.WriteString(Correct.Render("Correct!"))
		} else {
			b.WriteString(Wrong.Render("Not quite. The answer is " + res.CorrectAnswer + "."))
		}
		if res.Explanation != "" {
			b.WriteString("\n")
			b.WriteString(Muted.Render(res.Explanation))
		}
		b.WriteString("\n\n")
		b.WriteString(Muted.Render("→ next · ← back · q quit"))
	} else {
		b.WriteString("\n")
		b.WriteString(Muted.Render("↑/↓ choose · enter submit · ←/→ move · q quit"))
	}
	return b.String()
}

// RenderResult is the completion screen text.
func RenderResult(snap quiz.Snapshot) string {
	var b strings.Builder
	if snap.Flawless() {
		b.WriteString(Gold.Render("Flawless! Every answer correct."))
	} else {
		b.WriteString(Title.Render("Quiz complete"))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Score: %d/%d (%d%%)", snap.Score, snap.Total(), snap.Percentage())
	return b.String()
}
