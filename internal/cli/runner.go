// Package cli is the notehub command line: the TUI as the default command
// plus scriptable ls/add/rm and token management.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/notehub/internal/app"
	"github.com/idilsaglam/notehub/internal/auth"
	"github.com/idilsaglam/notehub/internal/config"
	"github.com/idilsaglam/notehub/internal/model"
	"github.com/idilsaglam/notehub/internal/notehub"
	"github.com/idilsaglam/notehub/internal/tui"
	"github.com/idilsaglam/notehub/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Streams are the process standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns os.Stdin, os.Stdout and os.Stderr.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// usageError marks bad invocations; they exit with ExitUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// env is the state shared by every command of one invocation.
type env struct {
	streams Streams

	configPath string
	verbose    bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	store  *auth.Store
}

// Run executes args (without the program name) and returns an exit code.
func Run(ctx context.Context, args []string, streams Streams) int {
	e := &env{streams: streams}
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	msg := err.Error()
	if errors.Is(err, notehub.ErrUnauthorized) {
		msg += "\nSet " + auth.EnvToken + " or run `notehub auth login`."
	}
	ui.Fail(streams.Err, msg)

	var uerr usageError
	var verr *model.ValidationError
	if errors.As(err, &uerr) || errors.As(err, &verr) {
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "notehub",
		Short:         "Browse and manage NoteHub notes",
		Long:          "notehub is a terminal client for the NoteHub notes service. Run it without a subcommand to open the interactive browser.",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runBrowser(cmd.Context())
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", "", "path to config file (default $NOTEHUB_CONFIG or ~/.config/notehub/config.yaml)")
	pf.BoolVarP(&e.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&e.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newListCmd(e), newAddCmd(e), newRemoveCmd(e), newAuthCmd(e))
	return root
}

// setup loads config and installs the CLI logger and theme.
func (e *env) setup() error {
	path := e.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	e.cfg = cfg

	level := cfg.LogLevel
	if e.verbose {
		level = slog.LevelDebug
	}
	e.logger = slog.New(slog.NewTextHandler(e.streams.Err, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(e.logger)

	ui.SetTheme(cfg.UI.Theme)
	ui.SetColorForcing(false, e.noColor)

	e.store, err = auth.NewStore()
	return err
}

// service resolves the token and builds the note service.
func (e *env) service(ctx context.Context, logger *slog.Logger) (*app.NoteService, error) {
	ti, err := e.store.Resolve(e.cfg.API.Token)
	if err != nil {
		return nil, err
	}
	auth.WarnIfMissing(logger, ti)

	opts := []notehub.Option{
		notehub.WithLogger(logger),
		notehub.WithTimeout(e.cfg.API.Timeout),
		notehub.WithUserAgent("notehub-cli"),
	}
	if ti != nil {
		opts = append(opts, notehub.WithToken(ti.Token))
	}
	client, err := notehub.NewClient(e.cfg.API.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	return app.NewNoteService(client,
		app.WithPageSize(e.cfg.UI.PageSize),
		app.WithLogger(logger),
		app.WithContext(ctx),
	), nil
}

// runBrowser starts the TUI. It owns the terminal, so logs go to
// notehub.log when verbose and nowhere otherwise.
func (e *env) runBrowser(ctx context.Context) error {
	logger := slog.New(slog.DiscardHandler)
	if e.verbose {
		f, err := tea.LogToFile("notehub.log", "notehub")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	svc, err := e.service(ctx, logger)
	if err != nil {
		return err
	}
	return tui.Run(svc, tui.Config{
		SearchDebounce: e.cfg.UI.SearchDebounce,
		ToastDuration:  e.cfg.UI.ToastDuration,
		MarkdownStyle:  e.cfg.UI.MarkdownStyle,
		Logger:         logger,
		Context:        ctx,
	})
}
