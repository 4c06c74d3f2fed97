package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"lazytodo/internal/session"
	"lazytodo/internal/store"
)

type Options struct {
	// Path is the todo file, used for the header.
	Path    string
	Session *session.Session
	// Changes carries file-change notifications; nil disables them and leaves polling.
	Changes <-chan struct{}
	Config  *store.Config
	Logger  *slog.Logger
}

// Run drives the session in the alternate screen until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	theme := ""
	if opts.Config != nil {
		theme = opts.Config.Theme
	}
	applyColorProfilePreference()
	applyThemePreference(theme)

	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
