package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"lazytodo/internal/session"
)

// keysFromMsg translates a bubbletea key event into session keys. Pasted or
// batched runes become one key per rune. Alt-modified keys are not bound.
func keysFromMsg(msg tea.KeyMsg) []session.Key {
	if msg.Alt {
		return []session.Key{session.KeyOf(session.KeyUnknown)}
	}
	switch msg.Type {
	case tea.KeyRunes:
		keys := make([]session.Key, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			keys = append(keys, session.Char(r))
		}
		return keys
	case tea.KeySpace:
		return []session.Key{session.Char(' ')}
	case tea.KeyEnter:
		return []session.Key{session.KeyOf(session.KeyEnter)}
	case tea.KeyEsc:
		return []session.Key{session.KeyOf(session.KeyEsc)}
	case tea.KeyUp:
		return []session.Key{session.KeyOf(session.KeyUp)}
	case tea.KeyDown:
		return []session.Key{session.KeyOf(session.KeyDown)}
	case tea.KeyLeft:
		return []session.Key{session.KeyOf(session.KeyLeft)}
	case tea.KeyRight:
		return []session.Key{session.KeyOf(session.KeyRight)}
	case tea.KeyBackspace, tea.KeyCtrlH:
		return []session.Key{session.KeyOf(session.KeyBackspace)}
	case tea.KeyDelete:
		return []session.Key{session.KeyOf(session.KeyDelete)}
	case tea.KeyTab:
		return []session.Key{session.KeyOf(session.KeyTab)}
	case tea.KeyShiftTab:
		return []session.Key{session.KeyOf(session.KeyBackTab)}
	case tea.KeyHome:
		return []session.Key{session.KeyOf(session.KeyHome)}
	case tea.KeyEnd:
		return []session.Key{session.KeyOf(session.KeyEnd)}
	}
	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		return []session.Key{session.Ctrl(rune('a' + int(msg.Type-tea.KeyCtrlA)))}
	}
	return []session.Key{session.KeyOf(session.KeyUnknown)}
}

// keyMap holds the bindings advertised in the footer. Key dispatch itself
// happens in the session.
type keyMap struct {
	Move     key.Binding
	Toggle   key.Binding
	Delete   key.Binding
	Undo     key.Binding
	Redo     key.Binding
	Search   key.Binding
	External key.Binding
	Inline   key.Binding
	New      key.Binding
	Section  key.Binding
	Quit     key.Binding

	CancelSelection key.Binding
	ClearSearch     key.Binding

	Indent      key.Binding
	SaveExit    key.Binding
	SaveSection key.Binding
	NewBelow    key.Binding
}

func newKeyMap(editor string) keyMap {
	return keyMap{
		Move:     key.NewBinding(key.WithKeys("j", "k", "down", "up"), key.WithHelp("j/k", "move")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("dd", "del")),
		Undo:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^r", "redo")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		External: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", editorLabel(editor))),
		Inline:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inline")),
		New:      key.NewBinding(key.WithKeys("o", "O"), key.WithHelp("o/O", "new")),
		Section:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "section")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		CancelSelection: key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "cancel selection")),
		ClearSearch:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "clear search")),

		Indent:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("Tab/S-Tab", "indent")),
		SaveExit:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "save & exit")),
		SaveSection: key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "save")),
		NewBelow:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "new below")),
	}
}

// hints returns the footer bindings for the current state.
func (k keyMap) hints(s *session.Session) []key.Binding {
	if s.Mode() == session.ModeEdit {
		if s.Target() == session.TargetSection {
			return []key.Binding{k.SaveExit, k.SaveSection}
		}
		return []key.Binding{k.Indent, k.SaveExit, k.NewBelow}
	}

	k.CancelSelection.SetEnabled(s.SelectionActive())
	k.ClearSearch.SetEnabled(s.SearchActive())
	all := []key.Binding{
		k.Move, k.Toggle, k.Delete, k.Undo, k.Redo, k.Search,
		k.External, k.Inline, k.New, k.Section, k.Quit,
		k.CancelSelection, k.ClearSearch,
	}
	out := all[:0]
	for _, b := range all {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

func hintText(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
