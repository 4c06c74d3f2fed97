package session

import "unicode/utf8"

type KeyKind int

const (
	KeyUnknown KeyKind = iota
	KeyChar
	KeyEnter
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrl
	KeyBackspace
	KeyDelete
	KeyTab
	KeyBackTab
	KeyHome
	KeyEnd
)

// Key is a terminal-independent key press. Rune is set for KeyChar and KeyCtrl.
type Key struct {
	Kind KeyKind
	Rune rune
}

// KeyOf returns a key without a rune, such as KeyEnter or KeyEsc.
func KeyOf(kind KeyKind) Key { return Key{Kind: kind} }

func Char(r rune) Key { return Key{Kind: KeyChar, Rune: r} }

func Ctrl(r rune) Key { return Key{Kind: KeyCtrl, Rune: r} }

func (k Key) is(r rune) bool { return k.Kind == KeyChar && k.Rune == r }

// Command tells the caller about work the session cannot do itself.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	// CmdEditExternally asks the caller to run an external editor on the text
	// returned by RequestExternalEdit and report back via ApplyExternalEdit.
	CmdEditExternally
)

// HandleKey applies one key press in the current mode.
func (s *Session) HandleKey(k Key) Command {
	s.log.Debug("key", "mode", s.mode.String(), "kind", int(k.Kind), "rune", string(k.Rune))

	if k.Kind == KeyCtrl && k.Rune == 'c' {
		s.quit = true
		return CmdQuit
	}
	switch s.mode {
	case ModeEdit:
		s.handleEditKey(k)
	case ModeSearch:
		s.handleSearchKey(k)
	default:
		return s.handleNormalKey(k)
	}
	return CmdNone
}

func (s *Session) handleNormalKey(k Key) Command {
	if s.pendingD {
		s.pendingD = false
		if k.is('d') {
			s.DeleteCurrentLine()
			return CmdNone
		}
	}

	switch {
	case k.is('/'):
		s.clearSelection()
		s.mode = ModeSearch
		if s.SearchActive() {
			s.searchInput.Insert('/')
		} else {
			s.searchInput.Reset()
		}
		s.EnsureCursorVisible()
	case k.Kind == KeyEsc:
		cleared := false
		if s.SearchActive() {
			s.searchInput.Reset()
			cleared = true
		}
		if s.selectionActive {
			s.selectionActive = false
			s.status = "Selection canceled"
		}
		if cleared {
			s.status = "Search cleared"
		}
	case k.is('q'):
		s.quit = true
		return CmdQuit
	case k.is('j'), k.Kind == KeyDown:
		s.moveCursorVisible(1)
	case k.is('k'), k.Kind == KeyUp:
		s.moveCursorVisible(-1)
	case k.is('g'):
		s.moveCursorToVisibleFirst()
	case k.is('G'):
		s.moveCursorToVisibleLast()
	case k.is('d'):
		s.pendingD = true
		s.status = "d-"
	case k.is('u'):
		s.Undo()
	case k.Kind == KeyCtrl && k.Rune == 'r':
		s.Redo()
	case k.Kind == KeyEnter, k.is(' '):
		s.ToggleTasks()
	case k.is('v'), k.is('V'):
		s.toggleSelection()
	case k.is('e'):
		if _, ok := s.doc.Task(s.cursor); ok {
			return CmdEditExternally
		}
	case k.is('i'):
		s.StartEditCurrent()
	case k.is('o'):
		s.StartInsertTaskAt(s.cursor + 1)
	case k.is('O'):
		s.StartInsertTaskAt(s.cursor)
	case k.is('S'):
		s.StartInsertSectionAt(s.cursor + 1)
	case k.is('r'):
		s.Reload()
	}
	return CmdNone
}

func (s *Session) handleEditKey(k Key) {
	switch k.Kind {
	case KeyEsc:
		s.Commit(s.input.Value())
	case KeyEnter:
		s.commitAndContinue()
	case KeyTab:
		s.ChangeIndent(1)
	case KeyBackTab:
		s.ChangeIndent(-1)
	case KeyChar:
		s.input.Insert(k.Rune)
	case KeyBackspace:
		s.input.Backspace()
	case KeyDelete:
		s.input.Delete()
	case KeyLeft:
		s.input.MoveLeft()
	case KeyRight:
		s.input.MoveRight()
	case KeyHome:
		s.input.MoveHome()
	case KeyEnd:
		s.input.MoveEnd()
	}
}

func (s *Session) handleSearchKey(k Key) {
	switch k.Kind {
	case KeyEsc:
		s.searchInput.Reset()
		s.mode = ModeNormal
		s.status = "Search cleared"
		s.clearSelection()
	case KeyEnter:
		s.mode = ModeNormal
		s.ToggleTasks()
	case KeyChar:
		s.searchInput.Insert(k.Rune)
		s.EnsureCursorVisible()
	case KeyBackspace:
		if utf8.RuneCountInString(s.searchInput.Value()) <= 1 {
			s.searchInput.Reset()
			s.mode = ModeNormal
			s.status = "Search cleared"
			return
		}
		s.searchInput.Backspace()
		s.EnsureCursorVisible()
	case KeyDelete:
		s.searchInput.Delete()
		s.EnsureCursorVisible()
	case KeyLeft:
		s.searchInput.MoveLeft()
	case KeyRight:
		s.searchInput.MoveRight()
	case KeyHome:
		s.searchInput.MoveHome()
	case KeyEnd:
		s.searchInput.MoveEnd()
	case KeyUp:
		s.moveCursorVisible(-1)
	case KeyDown:
		s.moveCursorVisible(1)
	}
}
