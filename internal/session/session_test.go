package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lazytodo/internal/model"
	"lazytodo/internal/store"
)

type memStore struct {
	doc     model.Document
	modTime time.Time
	saves   int
	saveErr error
}

func (m *memStore) Load() (model.Document, time.Time, error) {
	return m.doc.Clone(), m.modTime, nil
}

func (m *memStore) Save(doc model.Document) (time.Time, error) {
	if m.saveErr != nil {
		return time.Time{}, m.saveErr
	}
	m.saves++
	m.doc = doc.Clone()
	m.modTime = m.modTime.Add(time.Second)
	return m.modTime, nil
}

func (m *memStore) ModTime() (time.Time, bool, error) {
	return m.modTime, true, nil
}

func newSession(t *testing.T, doc model.Document) (*Session, *memStore) {
	t.Helper()
	st := &memStore{doc: doc, modTime: time.Unix(1_700_000_000, 0)}
	s, err := New(st, Options{})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, st
}

func task(text string) model.Task { return model.Task{Bullet: "-", Text: text} }

func typeText(s *Session, text string) {
	for _, r := range text {
		s.HandleKey(Char(r))
	}
}

func workDoc() model.Document {
	return model.Document{model.Section{Title: "Work"}, task("Write spec")}
}

func TestToggle_EndToEndOnDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "todo.md")
	if err := os.WriteFile(path, []byte("## Work\n- [ ] Write spec\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := New(store.File{Path: path}, Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	s.HandleKey(Char('j'))
	s.HandleKey(KeyOf(KeyEnter))

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "## Work\n- [x] Write spec\n" {
		t.Fatalf("unexpected file contents %q", b)
	}
	if s.Cursor() != 1 {
		t.Fatalf("expected cursor 1, got %d", s.Cursor())
	}
	if s.Status() != "Marked Completed" {
		t.Fatalf("unexpected status %q", s.Status())
	}
}

func TestInsertBelow_WithText(t *testing.T) {
	t.Parallel()

	s, st := newSession(t, workDoc())
	s.SetCursor(1)
	s.StartInsertTaskAt(s.Cursor() + 1)
	if s.Cursor() != 2 {
		t.Fatalf("insert should move cursor to 2, got %d", s.Cursor())
	}
	if !s.Commit("Test") {
		t.Fatalf("expected commit to apply")
	}

	want := model.Document{model.Section{Title: "Work"}, task("Write spec"), task("Test")}
	if !s.Doc().Equal(want) {
		t.Fatalf("unexpected document %#v", s.Doc())
	}
	if s.Cursor() != 2 {
		t.Fatalf("expected cursor 2, got %d", s.Cursor())
	}
	if !st.doc.Equal(want) {
		t.Fatalf("insert was not saved")
	}
	if s.Mode() != ModeNormal || s.Intent() != IntentNone {
		t.Fatalf("expected normal mode after commit, got %v/%v", s.Mode(), s.Intent())
	}
}

func TestInsertTask_ViaKeys(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, workDoc())
	s.HandleKey(Char('j'))
	s.HandleKey(Char('o'))
	if s.Status() != "New task" || s.Mode() != ModeEdit {
		t.Fatalf("expected insert mode, got %q %v", s.Status(), s.Mode())
	}
	typeText(s, "Test")
	s.HandleKey(KeyOf(KeyEsc))

	if got, ok := s.Doc().Task(2); !ok || got.Text != "Test" {
		t.Fatalf("expected new task at 2, got %#v", s.Doc())
	}
	if s.Status() != "Saved" {
		t.Fatalf("unexpected status %q", s.Status())
	}
}

func TestEnter_ChainsTaskInserts(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, workDoc())
	s.HandleKey(Char('j'))
	s.HandleKey(Char('o'))
	typeText(s, "one")
	s.HandleKey(KeyOf(KeyEnter))

	if s.Mode() != ModeEdit || s.Intent() != IntentInsert {
		t.Fatalf("expected chained insert, got %v/%v", s.Mode(), s.Intent())
	}
	if idx, ok := s.InsertIndex(); !ok || idx != 3 || s.Cursor() != 3 {
		t.Fatalf("expected insert at 3, got %d (%v) cursor %d", idx, ok, s.Cursor())
	}
	if s.Input().Value() != "" {
		t.Fatalf("input should reset between chained inserts")
	}

	typeText(s, "two")
	s.HandleKey(KeyOf(KeyEnter))
	s.HandleKey(KeyOf(KeyEnter))

	if s.Mode() != ModeNormal {
		t.Fatalf("blank Enter should leave edit mode")
	}
	want := model.Document{model.Section{Title: "Work"}, task("Write spec"), task("one"), task("two")}
	if !s.Doc().Equal(want) {
		t.Fatalf("unexpected document %#v", s.Doc())
	}
	if s.Cursor() != 3 {
		t.Fatalf("cursor should clamp onto last item, got %d", s.Cursor())
	}
}

func TestEnter_SectionInsertExits(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, workDoc())
	s.HandleKey(Char('j'))
	s.HandleKey(Char('S'))
	typeText(s, "Home")
	s.HandleKey(KeyOf(KeyEnter))

	if s.Mode() != ModeNormal {
		t.Fatalf("section insert should leave edit mode")
	}
	if sec, ok := s.Doc().Section(2); !ok || sec.Title != "Home" {
		t.Fatalf("expected section at 2, got %#v", s.Doc())
	}
}

// Task edits and task inserts are not recorded in undo history; section
// operations and deletions are.
func TestUndo_Asymmetry(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, workDoc())

	s.SetCursor(1)
	s.StartEditTask()
	s.Commit("Write the spec")
	s.StartInsertTaskAt(2)
	s.Commit("Review")
	if u, _ := s.UndoDepth(); u != 0 {
		t.Fatalf("task edits should not snapshot, undo depth %d", u)
	}
	s.HandleKey(Char('u'))
	if s.Status() != "Nothing to undo" {
		t.Fatalf("unexpected status %q", s.Status())
	}

	s.SetCursor(0)
	s.StartEditSection()
	s.Commit("Office")
	s.StartInsertSectionAt(3)
	s.Commit("Home")
	if u, _ := s.UndoDepth(); u != 2 {
		t.Fatalf("section edits should snapshot, undo depth %d", u)
	}

	s.SetCursor(2)
	s.HandleKey(Char('d'))
	s.HandleKey(Char('d'))
	if u, _ := s.UndoDepth(); u != 3 {
		t.Fatalf("delete should snapshot, undo depth %d", u)
	}

	s.HandleKey(Char('u'))
	s.HandleKey(Char('u'))
	s.HandleKey(Char('u'))
	want := model.Document{model.Section{Title: "Work"}, task("Write the spec"), task("Review")}
	if !s.Doc().Equal(want) {
		t.Fatalf("undo should keep task edits, got %#v", s.Doc())
	}
}

func TestUndoRedo_DeleteIsExactInverse(t *testing.T) {
	t.Parallel()

	s, st := newSession(t, model.Document{model.Section{Title: "Work"}, task("a"), task("b")})
	before := s.Doc().Clone()

	s.SetCursor(1)
	s.HandleKey(Char('d'))
	if s.Status() != "d-" {
		t.Fatalf("expected pending delete status, got %q", s.Status())
	}
	s.HandleKey(Char('d'))
	after := s.Doc().Clone()
	if s.Status() != "Deleted task" || len(after) != 2 {
		t.Fatalf("unexpected delete result %q %#v", s.Status(), after)
	}

	s.HandleKey(Char('u'))
	if !s.Doc().Equal(before) || s.Status() != "Undo" {
		t.Fatalf("undo did not restore: %#v", s.Doc())
	}
	if !st.doc.Equal(before) {
		t.Fatalf("undo should be saved")
	}

	s.HandleKey(Ctrl('r'))
	if !s.Doc().Equal(after) || s.Status() != "Redo" {
		t.Fatalf("redo did not restore: %#v", s.Doc())
	}
	s.HandleKey(Ctrl('r'))
	if s.Status() != "Nothing to redo" {
		t.Fatalf("unexpected status %q", s.Status())
	}
}

func TestPendingDelete_CanceledByOtherKey(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, workDoc())
	s.HandleKey(Char('d'))
	s.HandleKey(Char('j'))
	s.HandleKey(Char('d'))
	if len(s.Doc()) != 2 {
		t.Fatalf("d j d should not delete")
	}
}

func TestDeleteSection_MovesToPrevious(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, model.Document{task("a"), model.Section{Title: "S"}, task("b")})
	s.SetCursor(1)
	s.DeleteCurrentLine()
	if s.Status() != "Deleted section" || s.Cursor() != 0 {
		t.Fatalf("unexpected state %q cursor %d", s.Status(), s.Cursor())
	}

	empty, _ := newSession(t, nil)
	empty.DeleteCurrentLine()
	if empty.Status() != "Nothing to delete" {
		t.Fatalf("unexpected status %q", empty.Status())
	}
}

func TestSelection_TogglesEachTask(t *testing.T) {
	t.Parallel()

	doc := model.Document{
		task("a"),
		model.Section{Title: "S"},
		model.Task{Bullet: "-", Text: "b", Completed: true},
		task("c"),
	}
	s, _ := newSession(t, doc)
	s.HandleKey(Char('v'))
	s.HandleKey(Char('G'))
	if start, end, ok := s.SelectionRange(); !ok || start != 0 || end != 3 {
		t.Fatalf("unexpected selection %d-%d %v", start, end, ok)
	}
	s.HandleKey(KeyOf(KeyEnter))

	if s.Status() != "Toggled 3 tasks" {
		t.Fatalf("unexpected status %q", s.Status())
	}
	if s.SelectionActive() {
		t.Fatalf("selection should clear after toggle")
	}
	for i, wantDone := range map[int]bool{0: true, 2: false, 3: true} {
		if got, _ := s.Doc().Task(i); got.Completed != wantDone {
			t.Fatalf("task %d completed=%v, want %v", i, got.Completed, wantDone)
		}
	}
}

func TestSelection_ClampedAfterDelete(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, model.Document{task("a"), task("b"), task("c")})
	s.SetCursor(2)
	s.HandleKey(Char('v'))
	s.HandleKey(Char('d'))
	s.HandleKey(Char('d'))
	if s.SelectionActive() {
		t.Fatalf("delete clears the selection")
	}
	s.HandleKey(Char('u'))
	s.HandleKey(Char('V'))
	if start, end, ok := s.SelectionRange(); !ok || start != end || end >= len(s.Doc()) {
		t.Fatalf("selection out of bounds %d-%d", start, end)
	}
}

func TestSearch_FilterAndBackspaceExit(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, model.Document{model.Section{Title: "Work"}, task("Write spec"), task("Buy milk")})
	s.SetCursor(2)
	s.HandleKey(Char('/'))
	if s.Mode() != ModeSearch {
		t.Fatalf("expected search mode")
	}
	typeText(s, "spec")

	if got := s.VisibleIndices(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("unexpected visible indices %v", got)
	}
	if s.Cursor() != 1 {
		t.Fatalf("cursor should move to first visible task, got %d", s.Cursor())
	}

	for range 3 {
		s.HandleKey(KeyOf(KeyBackspace))
	}
	if s.SearchQuery() != "s" || s.Mode() != ModeSearch {
		t.Fatalf("unexpected query %q mode %v", s.SearchQuery(), s.Mode())
	}
	s.HandleKey(KeyOf(KeyBackspace))
	if s.SearchQuery() != "" || s.Mode() != ModeNormal || s.Status() != "Search cleared" {
		t.Fatalf("backspace on last rune should leave search: %q %v %q", s.SearchQuery(), s.Mode(), s.Status())
	}
}

func TestSearch_EnterTogglesAndKeepsQuery(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, model.Document{task("Write spec"), task("Buy milk")})
	s.HandleKey(Char('/'))
	typeText(s, "milk")
	s.HandleKey(KeyOf(KeyEnter))

	if s.Mode() != ModeNormal || s.SearchQuery() != "milk" {
		t.Fatalf("enter should return to normal keeping the filter")
	}
	if got, _ := s.Doc().Task(1); !got.Completed {
		t.Fatalf("expected matched task toggled")
	}

	s.HandleKey(Char('v'))
	if s.Status() != "Selection disabled while searching" {
		t.Fatalf("unexpected status %q", s.Status())
	}

	s.HandleKey(Char('/'))
	if s.SearchQuery() != "milk/" {
		t.Fatalf("re-entering search appends '/', got %q", s.SearchQuery())
	}
	s.HandleKey(KeyOf(KeyEsc))
	if s.SearchActive() || s.Mode() != ModeNormal {
		t.Fatalf("esc should clear the search")
	}
}

func TestSearch_NoMatches(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, model.Document{task("Write spec")})
	s.HandleKey(Char('/'))
	typeText(s, "zzz")
	if s.Cursor() != 0 || len(s.VisibleIndices()) != 0 {
		t.Fatalf("expected empty visible set")
	}
	s.HandleKey(KeyOf(KeyEnter))
	if s.Status() != "No matches" {
		t.Fatalf("unexpected status %q", s.Status())
	}
}

func TestChangeIndent(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, workDoc())
	s.SetCursor(1)
	s.HandleKey(Char('i'))
	for range 5 {
		s.HandleKey(KeyOf(KeyTab))
	}
	if got, _ := s.Doc().Task(1); got.Indent != "            " {
		t.Fatalf("indent should clamp at the deepest level, got %q", got.Indent)
	}
	s.HandleKey(KeyOf(KeyBackTab))
	s.HandleKey(KeyOf(KeyEsc))
	if got, _ := s.Doc().Task(1); got.Indent != "        " {
		t.Fatalf("unexpected indent %q", got.Indent)
	}

	s.HandleKey(Char('o'))
	s.HandleKey(KeyOf(KeyBackTab))
	typeText(s, "child")
	s.HandleKey(KeyOf(KeyEsc))
	if got, _ := s.Doc().Task(2); got.Indent != "    " {
		t.Fatalf("insert template indent not applied, got %q", got.Indent)
	}

	s.SetCursor(0)
	s.HandleKey(Char('i'))
	s.HandleKey(KeyOf(KeyTab))
	s.HandleKey(KeyOf(KeyEsc))
	if _, ok := s.Doc().Section(0); !ok {
		t.Fatalf("tab on a section should be ignored")
	}
}

func TestEscWithBlankInput_Discards(t *testing.T) {
	t.Parallel()

	s, st := newSession(t, workDoc())
	s.HandleKey(Char('o'))
	typeText(s, "   ")
	s.HandleKey(KeyOf(KeyEsc))
	if len(s.Doc()) != 2 || st.saves != 0 {
		t.Fatalf("blank insert should be discarded")
	}
}

func TestCheckModified_DefersWhileEditing(t *testing.T) {
	t.Parallel()

	s, st := newSession(t, workDoc())
	s.SetCursor(1)
	s.HandleKey(Char('i'))

	st.doc = model.Document{model.Task{Indent: "    ", Bullet: "*", Text: "external"}}
	st.modTime = st.modTime.Add(time.Minute)
	s.CheckFile()
	if !s.PendingReload() {
		t.Fatalf("expected reload to be deferred")
	}
	if len(s.Doc()) != 2 {
		t.Fatalf("document must not change while editing")
	}

	s.HandleKey(KeyOf(KeyEsc))
	if s.PendingReload() {
		t.Fatalf("pending flag should clear on exit")
	}
	if s.Status() != "Reloaded from disk" {
		t.Fatalf("unexpected status %q", s.Status())
	}
	if len(s.Doc()) != 1 || st.saves != 0 {
		t.Fatalf("unchanged edit must not overwrite the file, doc %#v saves %d", s.Doc(), st.saves)
	}
}

func TestCommit_KeepsOutsideChanges(t *testing.T) {
	t.Parallel()

	outside := append(workDoc(), task("added elsewhere"))
	tests := []struct {
		name   string
		start  func(s *Session)
		text   string
		want   model.Document
		status string
	}{
		{
			name:   "unchanged update",
			start:  func(s *Session) { s.SetCursor(1); s.HandleKey(Char('i')) },
			want:   outside,
			status: "Reloaded from disk",
		},
		{
			name:   "changed update",
			start:  func(s *Session) { s.SetCursor(1); s.HandleKey(Char('i')) },
			text:   "!",
			want:   model.Document{model.Section{Title: "Work"}, task("Write spec!"), task("added elsewhere")},
			status: "Reloaded from disk, edit applied",
		},
		{
			name:   "insert",
			start:  func(s *Session) { s.SetCursor(1); s.HandleKey(Char('o')) },
			text:   "mine",
			want:   model.Document{model.Section{Title: "Work"}, task("Write spec"), task("mine"), task("added elsewhere")},
			status: "Reloaded from disk, edit applied",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, st := newSession(t, workDoc())
			tt.start(s)
			typeText(s, tt.text)

			st.doc = outside.Clone()
			st.modTime = st.modTime.Add(time.Minute)
			s.CheckFile()
			s.HandleKey(KeyOf(KeyEsc))

			if s.Status() != tt.status {
				t.Fatalf("status = %q, want %q", s.Status(), tt.status)
			}
			if !s.Doc().Equal(tt.want) || !st.doc.Equal(tt.want) {
				t.Fatalf("doc %#v disk %#v, want %#v", s.Doc(), st.doc, tt.want)
			}
		})
	}
}

func TestCommit_DiscardsEditWhenRowChangedKind(t *testing.T) {
	t.Parallel()

	s, st := newSession(t, workDoc())
	s.SetCursor(1)
	s.HandleKey(Char('i'))
	typeText(s, "!")

	st.doc = model.Document{model.Section{Title: "Work"}, model.Section{Title: "Later"}}
	st.modTime = st.modTime.Add(time.Minute)
	s.CheckFile()
	s.HandleKey(KeyOf(KeyEnter))

	if s.Mode() != ModeNormal {
		t.Fatalf("expected Normal mode after commit, got %v", s.Mode())
	}
	if s.Status() != "Reloaded from disk, edit discarded" {
		t.Fatalf("unexpected status %q", s.Status())
	}
	if st.saves != 0 || !s.Doc().Equal(st.doc) {
		t.Fatalf("discarded edit must not be saved, doc %#v", s.Doc())
	}
}

func TestCheckModified_ReloadsImmediately(t *testing.T) {
	t.Parallel()

	s, st := newSession(t, workDoc())
	s.SetCursor(1)

	s.CheckModified(st.modTime)
	if s.Status() != "" {
		t.Fatalf("an unchanged timestamp must not reload")
	}

	st.doc = model.Document{model.Task{Indent: "    ", Bullet: "*", Text: "external"}}
	st.modTime = st.modTime.Add(time.Minute)
	s.CheckFile()
	if s.Status() != "Reloaded from disk" {
		t.Fatalf("unexpected status %q", s.Status())
	}
	if s.Cursor() != 0 || len(s.Doc()) != 1 {
		t.Fatalf("cursor should clamp to reloaded doc, got %d", s.Cursor())
	}
	if tmpl := s.Template(); tmpl.Indent != "    " || tmpl.Bullet != "*" {
		t.Fatalf("template should follow reloaded doc, got %#v", tmpl)
	}
}

func TestExternalEdit(t *testing.T) {
	t.Parallel()

	s, st := newSession(t, workDoc())
	if cmd := s.HandleKey(Char('e')); cmd != CmdNone {
		t.Fatalf("external edit on a section should be ignored")
	}

	s.SetCursor(1)
	if cmd := s.HandleKey(Char('e')); cmd != CmdEditExternally {
		t.Fatalf("expected external edit command, got %v", cmd)
	}
	text, ok := s.RequestExternalEdit()
	if !ok || text != "Write spec" {
		t.Fatalf("unexpected request %q %v", text, ok)
	}
	s.ApplyExternalEdit(EditorResult{Text: "Write the spec"})
	if got, _ := st.doc.Task(1); got.Text != "Write the spec" || s.Status() != "Saved" {
		t.Fatalf("external edit not saved: %#v %q", got, s.Status())
	}

	s.RequestExternalEdit()
	s.ApplyExternalEdit(EditorResult{Empty: true})
	if s.Status() != "Cannot save empty task" {
		t.Fatalf("unexpected status %q", s.Status())
	}

	s.RequestExternalEdit()
	editorErr := &EditorError{Err: errors.New("exit status 1")}
	s.ApplyExternalEdit(EditorResult{Err: editorErr})
	var target *EditorError
	if s.Status() != "Editor error" || !errors.As(s.Err(), &target) {
		t.Fatalf("unexpected editor failure state %q %v", s.Status(), s.Err())
	}
}

func TestSaveFailure_KeepsSessionAlive(t *testing.T) {
	t.Parallel()

	s, st := newSession(t, workDoc())
	st.saveErr = errors.New("disk full")
	s.SetCursor(1)
	s.ToggleTasks()
	if s.Err() == nil {
		t.Fatalf("expected save error to surface")
	}
	if got, _ := s.Doc().Task(1); !got.Completed {
		t.Fatalf("in-memory toggle should survive a failed save")
	}

	st.saveErr = nil
	s.ToggleTasks()
	if s.Err() != nil || s.Status() != "Marked Incomplete" {
		t.Fatalf("successful save should clear the error: %v %q", s.Err(), s.Status())
	}
}

func TestQuit(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, nil)
	if cmd := s.HandleKey(Char('q')); cmd != CmdQuit || !s.ShouldQuit() {
		t.Fatalf("q should quit")
	}

	s, _ = newSession(t, nil)
	s.HandleKey(Char('o'))
	if cmd := s.HandleKey(Ctrl('c')); cmd != CmdQuit {
		t.Fatalf("ctrl+c should quit from edit mode")
	}
}

func TestEmptyDocument_Invariants(t *testing.T) {
	t.Parallel()

	s, _ := newSession(t, nil)
	for _, k := range []Key{Char('j'), Char('k'), Char('G'), Char('g'), KeyOf(KeyEnter), Char('v'), Char('i')} {
		s.HandleKey(k)
		if s.Cursor() != 0 {
			t.Fatalf("cursor must stay 0 on an empty document")
		}
	}
	if s.Mode() != ModeNormal {
		t.Fatalf("nothing to edit on an empty document")
	}
}
