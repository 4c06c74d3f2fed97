package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lazytodo/internal/format"
	"lazytodo/internal/session"
	"lazytodo/internal/store"
	"lazytodo/internal/tui"

	"github.com/spf13/cobra"
)

const (
	defaultFile = "todo.md"
	logFileName = "lazytodo.log"
)

type App struct {
	File   string
	Logs   bool
	Pretty bool
	Format string

	log     *slog.Logger
	logFile *os.File
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "lazytodo [path]",
		Short:        "Keyboard-driven checklist editor for a Markdown todo file",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Edit ./todo.md (created on the first save)
  lazytodo

  # Edit an existing file
  lazytodo ~/notes/week.md

  # Scriptable commands
  lazytodo list --format edn
  lazytodo add "Write release notes"
  lazytodo toggle 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, args)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.openLogger(cmd.ErrOrStderr())
		app.log.Debug("command", "path", cmd.CommandPath(), "args", args)
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.closeLogger()
	}

	cmd.PersistentFlags().StringVar(&app.File, "file", envOr("LAZYTODO_FILE", defaultFile), "Todo file to operate on")
	cmd.PersistentFlags().BoolVar(&app.Logs, "logs", envBool("LAZYTODO_LOGS"), "Write debug logs to "+logFileName)
	cmd.PersistentFlags().BoolVar(&app.Pretty, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("LAZYTODO_FORMAT", "json"), "Output format (json|edn|md)")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App, args []string) error {
	path, err := resolvePath(cmd, app, args, true)
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}

	st := store.File{Path: path}
	sess, err := session.New(st, session.Options{Logger: app.log})
	if err != nil {
		return fmt.Errorf("failed to load file: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	changes, err := st.Watch(ctx)
	if err != nil {
		app.log.Warn("file watch unavailable, polling only", "err", err)
		changes = nil
	}

	return tui.Run(ctx, tui.Options{
		Path:    path,
		Session: sess,
		Changes: changes,
		Config:  cfg,
		Logger:  app.log,
	})
}

// resolvePath picks the document path: a positional argument, then --file /
// LAZYTODO_FILE, then todo.md. Explicit paths must exist when mustExist is set;
// the implicit default may be missing and is created on the first save.
func resolvePath(cmd *cobra.Command, app *App, args []string, mustExist bool) (string, error) {
	path := app.File
	explicit := cmd.Flags().Changed("file") || os.Getenv("LAZYTODO_FILE") != ""
	if len(args) > 0 {
		path, explicit = args[0], true
	}
	if path == "" {
		path, explicit = defaultFile, false
	}
	if !explicit || !mustExist {
		return path, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", missingFileError{path: path}
	} else if err != nil {
		return "", err
	}
	return path, nil
}

func openSession(cmd *cobra.Command, app *App, mustExist bool) (*session.Session, string, error) {
	path, err := resolvePath(cmd, app, nil, mustExist)
	if err != nil {
		return nil, "", err
	}
	sess, err := session.New(store.File{Path: path}, session.Options{Logger: app.log})
	if err != nil {
		return nil, "", err
	}
	return sess, path, nil
}

func (app *App) openLogger(stderr io.Writer) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if !app.Logs {
		app.log = discard
		return
	}
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(stderr, "warning: failed to open log file:", err)
		app.log = discard
		return
	}
	app.logFile = f
	app.log = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	app.log.Info("logger initialized")
}

func (app *App) closeLogger() error {
	if app.logFile == nil {
		return nil
	}
	err := app.logFile.Close()
	app.logFile = nil
	return err
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
	return err == nil && b
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}
