package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"learnsnap/internal/auth"
	"learnsnap/internal/category"
	"learnsnap/internal/config"
	"learnsnap/internal/gamification"
	"learnsnap/internal/gateway"
	"learnsnap/internal/logger"
	"learnsnap/internal/models"
	"learnsnap/internal/progress"
	"learnsnap/internal/quiz"
	"learnsnap/internal/user"
	"learnsnap/internal/validate"
	"learnsnap/internal/video"
	"learnsnap/pkg/storage"
)

var (
	flagAPIURL  string
	flagStorage string
	flagDebug   bool
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg     config.Config
	log     *logger.Logger
	storage storage.Storage
	session *auth.Store
	nav     *terminalNavigator
	guard   *auth.Guard
	gw      *gateway.Gateway
	in      *bufio.Reader

	auth       *auth.Service
	quizzes    *quiz.Repository
	authoring  *quiz.Service
	videos     *video.Service
	categories *category.Service
	progress   *progress.Service
	game       *gamification.Service
	users      *user.Service

	shutdown func(context.Context) error
}

// NewRootCmd creates the root cobra command for the learnsnap CLI.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "learnsnap",
		Short: "LearnSnap: short lessons with quizzes",
		Long:  "LearnSnap browses short learning videos, runs their quizzes and tracks your progress.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagAPIURL, "api", "", "LearnSnap API base URL (or LEARNSNAP_API_URL env)")
	root.PersistentFlags().StringVar(&flagStorage, "storage", "", "Session storage backend: file, memory, redis, sql (or LEARNSNAP_STORAGE env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newVideosCmd(a),
		newCategoriesCmd(a),
		newQuizCmd(a),
		newProgressCmd(a),
		newStatsCmd(a),
		newBadgesCmd(a),
		newLeaderboardCmd(a),
		newProfileCmd(a),
		newInstructorCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, warnings, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagStorage != "" {
		cfg.Storage.Backend = flagStorage
	}
	if flagDebug {
		cfg.Log.Level = "debug"
	}

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	for _, w := range warnings {
		log.Debug("config warning", "warning", w)
	}

	ctx := cmd.Context()
	a.cfg = cfg
	a.log = log
	a.shutdown = initTracing(ctx, cfg, cmd.ErrOrStderr(), log)

	st, err := storage.Open(ctx, storage.Options{
		Backend:   cfg.Storage.Backend,
		Path:      cfg.Storage.Path,
		RedisAddr: cfg.Storage.RedisAddr,
		SQL: storage.DatabaseConfig{
			Driver: cfg.Storage.SQLDriver,
			DSN:    cfg.Storage.SQLDSN,
		},
	})
	if err != nil {
		a.close(ctx)
		return fmt.Errorf("open storage: %w", err)
	}
	a.storage = st
	a.in = bufio.NewReader(cmd.InOrStdin())

	a.nav = newTerminalNavigator(cmd.ErrOrStderr())
	a.session = auth.NewStore(st, log)
	a.session.CheckAuth(ctx)
	a.guard = auth.NewGuard(a.session, a.nav, log)
	a.gw = gateway.New(cfg.APIURL, a.session, st,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithNavigator(a.nav),
		gateway.WithLogger(log),
	)

	a.auth = auth.NewService(a.gw, a.session, a.nav, log)
	a.quizzes = quiz.NewRepository(a.gw, log)
	a.authoring = quiz.NewService(a.quizzes, log)
	a.videos = video.NewService(a.gw, log)
	a.categories = category.NewService(a.gw, log)
	a.progress = progress.NewService(a.gw, log)
	a.game = gamification.NewService(a.gw, log)
	a.users = user.NewService(a.gw, a.session, log)

	log.Debug("cli ready", "api", cfg.APIURL, "storage", cfg.Storage.Backend, "authenticated", a.session.State().IsAuthenticated)
	return nil
}

// run wraps a command body so the tracer and storage are released however
// the command ends.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.close(cmd.Context())
		return fn(cmd, args)
	}
}

func (a *app) close(ctx context.Context) {
	if a.shutdown != nil {
		if err := a.shutdown(context.WithoutCancel(ctx)); err != nil {
			a.log.Warn("tracer shutdown failed", "error", err)
		}
		a.shutdown = nil
	}
	if c, ok := a.storage.(storage.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("storage close failed", "error", err)
		}
	}
	if a.log != nil {
		a.log.Sync()
	}
}

// require enters the view at path and runs the route guard for it.
func (a *app) require(ctx context.Context, path string, roles ...models.Role) error {
	a.nav.Enter(path)
	var access auth.Access
	if len(roles) == 0 {
		access = a.guard.Require(ctx, path)
	} else {
		access = a.guard.RequireRole(ctx, path, roles...)
	}
	switch access {
	case auth.AccessGranted:
		return nil
	case auth.AccessForbidden:
		return auth.ErrForbidden
	case auth.AccessDenied:
		return auth.ErrNotAuthenticated
	default:
		return errors.New("session is still loading")
	}
}

// currentUser is only meaningful after require succeeded.
func (a *app) currentUser() models.User {
	if u := a.session.State().User; u != nil {
		return *u
	}
	return models.User{}
}

// ask prints prompt and reads one line from the command's input.
func (a *app) ask(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(strings.TrimSpace(prompt)), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// commandError prints as the user-facing message while keeping the cause
// reachable through errors.Is.
type commandError struct {
	action string
	err    error
}

func (e *commandError) Error() string {
	var gwErr *gateway.Error
	if errors.As(e.err, &gwErr) || validate.IsValidation(e.err) {
		return e.action + ": " + gateway.Message(e.err)
	}
	return e.action + ": " + e.err.Error()
}

func (e *commandError) Unwrap() error { return e.err }

func fail(action string, err error) error {
	return &commandError{action: action, err: err}
}
