package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cuida-app/cuida/internal/agenda"
	"github.com/cuida-app/cuida/internal/config"
	"github.com/cuida-app/cuida/internal/db"
	"github.com/cuida-app/cuida/internal/debuglog"
	"github.com/cuida-app/cuida/internal/item"
	"github.com/cuida-app/cuida/internal/remote"
	"github.com/cuida-app/cuida/internal/session"
	"github.com/cuida-app/cuida/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// Deps holds dependencies that are already open. Nil fields are opened from
// the config on first use.
type Deps struct {
	Repo    item.Repository
	Store   session.Store
	Session *session.Session
	Backend remote.Backend
}

// App holds the CLI application state.
type App struct {
	config  *config.Config
	repo    item.Repository
	store   session.Store
	session *session.Session
	backend remote.Backend
	root    *cobra.Command
	debug   bool // Enable debug logging
	closers []io.Closer
}

// NewApp creates a new CLI application with the given dependencies and config.
func NewApp(cfg *config.Config, deps Deps) *App {
	a := &App{
		config:  cfg,
		repo:    deps.Repo,
		store:   deps.Store,
		session: deps.Session,
		backend: deps.Backend,
	}

	a.root = &cobra.Command{
		Use:   "cuida",
		Short: "A weekly agenda for caregivers",
		Long: `Cuida keeps the week of someone you care for in one place.

Appointments and medication reminders are shown seven days at a time,
stored locally or synced with the caregiving service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := debuglog.Init(a.config.Log.DebugPath, a.debug); err != nil {
				return err
			}
			debuglog.Log("COMMAND", map[string]any{"name": cmd.CommandPath()})
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBoard(cmd.Context())
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (JSON lines in the debug log path)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.loginCmd())
	a.root.AddCommand(a.registerCmd())
	a.root.AddCommand(a.logoutCmd())
	a.root.AddCommand(a.whoamiCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.elderlyCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cuida %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.ExecuteContext(context.Background())
}

// Close releases everything the app opened itself.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	debuglog.Close()
	return errors.Join(errs...)
}

// ensureRepo opens the local database unless a repository was injected.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}

	path := a.config.Storage.DBPath
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	repo, err := db.New(path)
	if err != nil {
		return err
	}
	a.repo = repo
	a.closers = append(a.closers, repo)
	return nil
}

// ensureSession loads the persisted session. The local database doubles as
// the session store unless one was injected.
func (a *App) ensureSession(ctx context.Context) error {
	if a.session != nil {
		return nil
	}
	if a.store == nil {
		if err := a.ensureRepo(); err != nil {
			return err
		}
		store, ok := a.repo.(session.Store)
		if !ok {
			return errors.New("repository cannot hold the session")
		}
		a.store = store
	}

	sess, err := session.Open(ctx, a.store)
	if err != nil {
		return err
	}
	a.session = sess
	return nil
}

// ensureBackend builds the remote backend on top of the session.
func (a *App) ensureBackend(ctx context.Context) error {
	if err := a.ensureSession(ctx); err != nil {
		return err
	}
	if a.backend != nil {
		return nil
	}

	if a.config.Remote.Mock {
		a.backend = remote.NewMock(remote.DefaultLatency, a.session)
		return nil
	}

	timeout, err := a.config.RemoteTimeout()
	if err != nil {
		return err
	}
	a.backend = remote.NewClient(remote.Options{
		BaseURL: a.config.Remote.BaseURL,
		Timeout: timeout,
	}, a.session)
	return nil
}

// source resolves "local" or "remote" (empty means the configured source).
func (a *App) source(ctx context.Context, name string) (agenda.Source, bool, error) {
	if name == "" {
		name = a.config.Agenda.Source
	}

	switch name {
	case config.SourceLocal:
		if err := a.ensureRepo(); err != nil {
			return nil, false, err
		}
		return a.repo, false, nil
	case config.SourceRemote:
		if err := a.ensureBackend(ctx); err != nil {
			return nil, false, err
		}
		return remote.NewFeed(a.backend), true, nil
	default:
		return nil, false, fmt.Errorf("source must be %q or %q, got %q", config.SourceLocal, config.SourceRemote, name)
	}
}

// policy resolves a --policy flag, falling back to the configured one.
func (a *App) policy(flag string) (agenda.Policy, error) {
	if flag == "" {
		return a.config.Policy(), nil
	}
	return agenda.ParsePolicy(flag)
}

func (a *App) runBoard(ctx context.Context) error {
	src, isRemote, err := a.source(ctx, "")
	if err != nil {
		return err
	}
	if err := a.ensureRepo(); err != nil {
		return err
	}
	if err := a.ensureSession(ctx); err != nil {
		return err
	}

	return tui.Run(ctx, tui.Options{
		Source:  src,
		Repo:    a.repo,
		Session: a.session,
		Remote:  isRemote,
		Policy:  a.config.Policy(),
		Locale:  a.config.Agenda.Locale,
		Theme:   a.config.UI.Theme,
	})
}

// explain turns remote and session errors into actionable messages.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, remote.ErrNoSession):
		return session.ErrNotSignedIn
	case errors.Is(err, remote.ErrUnauthorized):
		return fmt.Errorf("%w: run 'cuida login' again", err)
	}
	return err
}
