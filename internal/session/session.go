// Package session holds the in-memory editing state of one todo file: the
// document, the cursor, the edit/search state machine, selection and undo history.
//
// A Session is driven one event at a time (HandleKey, CheckFile, ApplyExternalEdit)
// and is not safe for concurrent use.
package session

import (
	"io"
	"log/slog"
	"time"

	"lazytodo/internal/model"
	"lazytodo/internal/search"
	"lazytodo/internal/textfield"
	"lazytodo/internal/undo"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeEdit
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeSearch:
		return "search"
	default:
		return "normal"
	}
}

type Intent int

const (
	IntentNone Intent = iota
	IntentUpdate
	IntentInsert
)

type Target int

const (
	TargetTask Target = iota
	TargetSection
)

const (
	taskPlaceholder    = "Describe the task"
	sectionPlaceholder = "Section title"
)

// Store persists a document. store.File satisfies it.
type Store interface {
	Load() (model.Document, time.Time, error)
	Save(doc model.Document) (time.Time, error)
	ModTime() (time.Time, bool, error)
}

type Options struct {
	Logger *slog.Logger
	// UndoLimit bounds the undo and redo stacks; zero uses undo.DefaultLimit.
	UndoLimit int
}

type Session struct {
	store Store
	log   *slog.Logger

	doc          model.Document
	cursor       int
	lastModified time.Time

	mode        Mode
	intent      Intent
	target      Target
	editIndex   int
	insertIndex int
	template    model.Task
	placeholder string

	input       textfield.Field
	searchInput textfield.Field

	selectionActive bool
	selectionAnchor int

	history       *undo.Manager
	pendingD      bool
	pendingReload bool
	externalIdx   int
	quit          bool

	status string
	err    error
}

// New loads the document from st. A load failure is returned as-is; the
// caller decides whether it is fatal.
func New(st Store, opts Options) (*Session, error) {
	doc, modTime, err := st.Load()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{
		store:        st,
		log:          logger,
		doc:          doc,
		lastModified: modTime,
		editIndex:    -1,
		insertIndex:  -1,
		externalIdx:  -1,
		template:     model.DefaultTemplate(doc),
		placeholder:  taskPlaceholder,
		history:      undo.New(opts.UndoLimit),
	}
	logger.Debug("session loaded", "items", len(doc), "modified", modTime)
	return s, nil
}

func (s *Session) Doc() model.Document { return s.doc }
func (s *Session) Cursor() int          { return s.cursor }
func (s *Session) Mode() Mode           { return s.mode }
func (s *Session) Intent() Intent       { return s.intent }
func (s *Session) Target() Target       { return s.target }
func (s *Session) Template() model.Task { return s.template }
func (s *Session) Placeholder() string  { return s.placeholder }
func (s *Session) Status() string       { return s.status }
func (s *Session) Err() error           { return s.err }
func (s *Session) PendingReload() bool  { return s.pendingReload }
func (s *Session) ShouldQuit() bool     { return s.quit }

// Input is the inline editor buffer used in Edit mode.
func (s *Session) Input() *textfield.Field { return &s.input }

// SearchInput is the query buffer.
func (s *Session) SearchInput() *textfield.Field { return &s.searchInput }

// EditIndex reports the index being edited or inserted at.
func (s *Session) EditIndex() (int, bool) { return s.editIndex, s.editIndex >= 0 }

func (s *Session) InsertIndex() (int, bool) { return s.insertIndex, s.insertIndex >= 0 }

// InsertingTask reports whether a task insertion is in progress.
func (s *Session) InsertingTask() bool {
	return s.mode == ModeEdit && s.intent == IntentInsert && s.target == TargetTask
}

// SetCursor moves the cursor, clamped to the document.
func (s *Session) SetCursor(i int) {
	s.cursor = model.ClampCursor(i, len(s.doc))
}

func (s *Session) SearchQuery() string { return s.searchInput.Value() }

func (s *Session) SearchActive() bool { return s.searchInput.Value() != "" }

// VisibleIndices returns the indices shown under the active search. Everything
// is visible while editing.
func (s *Session) VisibleIndices() []int {
	if s.mode == ModeEdit || !s.SearchActive() {
		return search.AllIndices(len(s.doc))
	}
	return search.VisibleIndices(s.doc, s.SearchQuery())
}

// EnsureCursorVisible moves the cursor into the filtered set while a search is active.
func (s *Session) EnsureCursorVisible() {
	if s.mode == ModeEdit || !s.SearchActive() {
		return
	}
	s.cursor = search.EnsureCursorVisible(s.doc, s.VisibleIndices(), s.cursor)
}

func (s *Session) moveCursorVisible(delta int) {
	indices := s.VisibleIndices()
	if len(indices) == 0 {
		return
	}
	s.cursor = search.EnsureCursorVisible(s.doc, indices, s.cursor)
	pos := search.Position(indices, s.cursor)
	if pos < 0 {
		return
	}
	pos = min(max(pos+delta, 0), len(indices)-1)
	s.cursor = indices[pos]
}

func (s *Session) moveCursorToVisibleFirst() {
	if indices := s.VisibleIndices(); len(indices) > 0 {
		s.cursor = indices[0]
	}
}

func (s *Session) moveCursorToVisibleLast() {
	if indices := s.VisibleIndices(); len(indices) > 0 {
		s.cursor = indices[len(indices)-1]
	}
}

// SelectionRange returns the inclusive selected range, normalized so start <= end.
func (s *Session) SelectionRange() (start, end int, ok bool) {
	if !s.selectionActive || len(s.doc) == 0 {
		return 0, 0, false
	}
	anchor := model.ClampCursor(s.selectionAnchor, len(s.doc))
	cursor := model.ClampCursor(s.cursor, len(s.doc))
	if anchor <= cursor {
		return anchor, cursor, true
	}
	return cursor, anchor, true
}

func (s *Session) IsSelected(i int) bool {
	start, end, ok := s.SelectionRange()
	return ok && i >= start && i <= end
}

func (s *Session) SelectionActive() bool { return s.selectionActive }

func (s *Session) clearSelection() { s.selectionActive = false }

func (s *Session) normalizeSelection() {
	if !s.selectionActive {
		return
	}
	if len(s.doc) == 0 {
		s.selectionActive = false
		return
	}
	if s.selectionAnchor >= len(s.doc) {
		s.selectionAnchor = len(s.doc) - 1
	}
}

func (s *Session) toggleSelection() {
	if s.SearchActive() {
		s.status = "Selection disabled while searching"
		return
	}
	if len(s.doc) == 0 {
		return
	}
	if s.selectionActive {
		s.selectionActive = false
		s.status = "Selection cleared"
		return
	}
	s.selectionActive = true
	s.selectionAnchor = s.cursor
	s.status = "Visual line selection"
}
