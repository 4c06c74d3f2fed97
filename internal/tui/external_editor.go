package tui

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"lazytodo/internal/session"
)

const defaultEditor = "vim"

type externalEditorDoneMsg struct {
	path string
	err  error
}

// editorCommand picks the editor: $VISUAL, $EDITOR, the configured editor, then vim.
func editorCommand(configured string) string {
	for _, v := range []string{os.Getenv("VISUAL"), os.Getenv("EDITOR"), configured} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return defaultEditor
}

// editorLabel is the short editor name shown in the footer hints.
func editorLabel(configured string) string {
	args, err := splitShellWords(editorCommand(configured))
	if err != nil || len(args) == 0 {
		return defaultEditor
	}
	return filepath.Base(args[0])
}

// openExternalEditor writes text to a temp file and suspends the program while
// the editor runs on it.
func (m appModel) openExternalEditor(text string) (tea.Cmd, error) {
	args, err := splitShellWords(editorCommand(m.editor))
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	f, err := os.CreateTemp("", "lazytodo-edit-*.txt")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	m.log.Debug("launching editor", "argv", args, "path", path)
	cmd := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return externalEditorDoneMsg{path: path, err: err}
	}), nil
}

// readEditorResult collects the edited text and removes the temp file.
func readEditorResult(msg externalEditorDoneMsg) session.EditorResult {
	defer func() { _ = os.Remove(msg.path) }()

	if msg.err != nil {
		return session.EditorResult{Err: &session.EditorError{Err: msg.err}}
	}
	b, err := os.ReadFile(msg.path)
	if err != nil {
		return session.EditorResult{Err: &session.EditorError{Err: err}}
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return session.EditorResult{Empty: true}
	}
	return session.EditorResult{Text: text}
}
