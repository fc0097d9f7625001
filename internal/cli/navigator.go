package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"learnsnap/internal/navigation"
)

// View paths of the terminal front end. They are what the route guard and
// the gateway remember as the post-login destination.
const (
	pathDashboard   = "/dashboard"
	pathProfile     = "/profile"
	pathLeaderboard = "/leaderboard"
	pathProgress    = "/progress"
	pathInstructor  = "/instructor"
	pathAdmin       = "/admin"
)

func quizPath(videoID int64) string {
	return fmt.Sprintf("/videos/%d/quiz", videoID)
}

func videoPath(videoID int64) string {
	return fmt.Sprintf("/videos/%d", videoID)
}

// terminalNavigator is the CLI's Navigator. A terminal cannot switch screens
// on its own, so navigation prints the command that opens the target view.
type terminalNavigator struct {
	mu      sync.Mutex
	current string
	out     io.Writer
}

func newTerminalNavigator(out io.Writer) *terminalNavigator {
	return &terminalNavigator{current: navigation.HomePath, out: out}
}

func (n *terminalNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Enter records the view a command is about to render without announcing it.
func (n *terminalNavigator) Enter(path string) {
	n.mu.Lock()
	n.current = path
	n.mu.Unlock()
}

func (n *terminalNavigator) Navigate(path string) {
	n.mu.Lock()
	prev := n.current
	n.current = path
	n.mu.Unlock()

	switch path {
	case navigation.LoginPath:
		if !navigation.IsAuthPage(prev) {
			fmt.Fprintln(n.out, "Log in with `learnsnap login` to continue.")
		}
	case navigation.UnauthorizedPath:
		fmt.Fprintln(n.out, "You do not have permission to view this page.")
	case navigation.HomePath:
	default:
		if !navigation.IsAuthPage(prev) {
			return
		}
		if command := commandFor(path); command != "" {
			fmt.Fprintf(n.out, "Pick up where you left off: learnsnap %s\n", command)
		}
	}
}

// commandFor maps a view path back to the command that renders it.
func commandFor(path string) string {
	switch path {
	case pathDashboard:
		return "stats"
	case pathProfile:
		return "profile"
	case pathLeaderboard:
		return "leaderboard"
	case pathProgress:
		return "progress"
	case pathInstructor:
		return "instructor dashboard"
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "videos" {
		if len(parts) == 3 && parts[2] == "quiz" {
			return "quiz " + parts[1]
		}
		if len(parts) == 2 {
			return "videos show " + parts[1]
		}
	}
	return ""
}
