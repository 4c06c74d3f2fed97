package tui

import (
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lazytodo/internal/session"
	"lazytodo/internal/store"
	"lazytodo/internal/viewport"
)

type reloadTickMsg struct{}

type fileChangedMsg struct{}

type appModel struct {
	sess *session.Session
	path string
	log  *slog.Logger

	editor       string
	pollInterval time.Duration
	wrapMargin   int
	changes      <-chan struct{}

	width  int
	height int

	scroller viewport.Scroller
	keys     keyMap
}

func newAppModel(opts Options) appModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = &store.Config{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := appModel{
		sess:         opts.Session,
		path:         opts.Path,
		log:          logger,
		editor:       cfg.Editor,
		pollInterval: cfg.PollInterval(),
		wrapMargin:   cfg.Margin(),
		changes:      opts.Changes,
		keys:         newKeyMap(cfg.Editor),
	}
	m.syncScroll()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(tickReload(m.pollInterval), waitForChange(m.changes))
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case reloadTickMsg:
		m.sess.CheckFile()
		cmd = tickReload(m.pollInterval)

	case fileChangedMsg:
		m.sess.CheckFile()
		cmd = waitForChange(m.changes)

	case externalEditorDoneMsg:
		m.sess.ApplyExternalEdit(readEditorResult(msg))

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	m.syncScroll()
	return m, cmd
}

func (m appModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	for _, k := range keysFromMsg(msg) {
		switch m.sess.HandleKey(k) {
		case session.CmdQuit:
			return tea.Quit
		case session.CmdEditExternally:
			text, ok := m.sess.RequestExternalEdit()
			if !ok {
				continue
			}
			cmd, err := m.openExternalEditor(text)
			if err != nil {
				m.sess.ApplyExternalEdit(session.EditorResult{Err: &session.EditorError{Err: err}})
				continue
			}
			return cmd
		}
	}
	return nil
}

// syncScroll keeps the cursor row inside the window. It runs after every
// update because View cannot mutate the model.
func (m *appModel) syncScroll() {
	m.sess.EnsureCursorVisible()
	l := m.layout()
	m.scroller.Ensure(l.total, l.available, l.cursorPos)
}

func tickReload(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = store.DefaultPollInterval
	}
	return tea.Tick(interval, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

// waitForChange delivers one fileChangedMsg per notification on ch.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}
