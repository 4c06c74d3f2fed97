package session

import (
	"fmt"
	"strings"

	"lazytodo/internal/model"
)

// StartEditCurrent opens the inline editor on the item under the cursor.
func (s *Session) StartEditCurrent() {
	switch {
	case s.doc.IsSection(s.cursor):
		s.StartEditSection()
	case s.doc.IsTask(s.cursor):
		s.StartEditTask()
	}
}

func (s *Session) StartEditTask() {
	task, ok := s.doc.Task(s.cursor)
	if !ok {
		return
	}
	s.clearSelection()
	s.mode = ModeEdit
	s.intent = IntentUpdate
	s.target = TargetTask
	s.placeholder = taskPlaceholder
	s.input.SetValue(task.Text)
	s.editIndex = s.cursor
	s.status = "Editing current task"
}

func (s *Session) StartEditSection() {
	sec, ok := s.doc.Section(s.cursor)
	if !ok {
		return
	}
	s.clearSelection()
	s.mode = ModeEdit
	s.intent = IntentUpdate
	s.target = TargetSection
	s.placeholder = sectionPlaceholder
	s.input.SetValue(sec.Title)
	s.editIndex = s.cursor
	s.status = "Editing section"
}

// StartInsertTaskAt begins inserting a task at index. The new task takes the
// indent and bullet of the task under the cursor, if any.
func (s *Session) StartInsertTaskAt(index int) {
	tmpl := s.template
	if cur, ok := s.doc.Task(s.cursor); ok {
		tmpl.Indent = cur.Indent
		tmpl.Bullet = cur.Bullet
	}

	s.clearSelection()
	s.mode = ModeEdit
	s.intent = IntentInsert
	s.target = TargetTask
	s.insertIndex = model.ClampIndex(index, len(s.doc))
	s.editIndex = s.insertIndex
	s.cursor = s.insertIndex
	s.input.Reset()
	s.placeholder = taskPlaceholder
	s.status = "New task"
	s.template = tmpl
}

func (s *Session) StartInsertSectionAt(index int) {
	s.clearSelection()
	s.mode = ModeEdit
	s.intent = IntentInsert
	s.target = TargetSection
	s.insertIndex = model.ClampIndex(index, len(s.doc))
	s.editIndex = s.insertIndex
	s.cursor = s.insertIndex
	s.input.Reset()
	s.placeholder = sectionPlaceholder
	s.status = "New section"
}

// ApplyEdit writes value into the document according to the current intent and
// target. It does not save.
//
// Section edits and inserts push an undo snapshot; task edits and inserts do not.
func (s *Session) ApplyEdit(value string) {
	switch s.target {
	case TargetSection:
		switch s.intent {
		case IntentUpdate:
			if !s.doc.IsSection(s.editIndex) {
				return
			}
			s.history.Push(s.doc, s.cursor)
			s.doc[s.editIndex] = model.Section{Title: value}
		case IntentInsert:
			idx := model.ClampIndex(max(s.insertIndex, 0), len(s.doc))
			s.history.Push(s.doc, s.cursor)
			s.doc = s.doc.Insert(idx, model.Section{Title: value})
			s.cursor = idx
		}
	case TargetTask:
		switch s.intent {
		case IntentUpdate:
			task, ok := s.doc.Task(s.editIndex)
			if !ok {
				return
			}
			task.Text = value
			s.doc[s.editIndex] = task
		case IntentInsert:
			idx := model.ClampIndex(max(s.insertIndex, 0), len(s.doc))
			s.doc = s.doc.Insert(idx, model.Task{
				Indent: s.template.Indent,
				Bullet: s.template.Bullet,
				Text:   value,
			})
			s.cursor = idx
		}
	}
}

// Commit applies value if it is not blank, saves, and leaves Edit mode.
// It reports whether anything was applied.
func (s *Session) Commit(value string) bool {
	if s.pendingReload {
		applied := s.commitAfterReload(value)
		s.ExitEditMode()
		return applied
	}
	applied := false
	if strings.TrimSpace(value) != "" {
		s.ApplyEdit(value)
		s.saveAndSetStatus("Saved")
		applied = true
	}
	s.ExitEditMode()
	return applied
}

// commitAfterReload runs a deferred reload before value is applied, so changes
// made to the file while editing are kept. An update is re-applied only when the
// edited row still holds the same kind of item; an unchanged update is dropped.
func (s *Session) commitAfterReload(value string) bool {
	s.pendingReload = false
	original, editing := s.editedText()
	if err := s.reload("Reloaded from disk"); err != nil {
		return false
	}
	if strings.TrimSpace(value) == "" {
		return false
	}
	if s.intent == IntentUpdate {
		if editing && value == original {
			return false
		}
		if (s.target == TargetTask && !s.doc.IsTask(s.editIndex)) ||
			(s.target == TargetSection && !s.doc.IsSection(s.editIndex)) {
			s.status = "Reloaded from disk, edit discarded"
			s.log.Warn("edited row changed on disk", "index", s.editIndex)
			return false
		}
	}
	s.ApplyEdit(value)
	s.saveAndSetStatus("Reloaded from disk, edit applied")
	return true
}

// editedText returns the text of the item being updated, as it was before editing.
func (s *Session) editedText() (string, bool) {
	if s.intent != IntentUpdate {
		return "", false
	}
	if task, ok := s.doc.Task(s.editIndex); ok && s.target == TargetTask {
		return task.Text, true
	}
	if sec, ok := s.doc.Section(s.editIndex); ok && s.target == TargetSection {
		return sec.Title, true
	}
	return "", false
}

// commitAndContinue handles Enter while editing. A committed task re-arms an
// insert directly below it; sections, blank input and a pending reload leave
// Edit mode.
func (s *Session) commitAndContinue() {
	raw := s.input.Value()
	if strings.TrimSpace(raw) == "" || s.pendingReload {
		s.Commit(raw)
		return
	}
	s.ApplyEdit(raw)
	s.saveAndSetStatus("")

	if s.target == TargetTask {
		s.insertIndex = s.cursor + 1
		s.editIndex = s.insertIndex
		s.intent = IntentInsert
		s.cursor = s.editIndex
		s.input.Reset()
		return
	}
	s.ExitEditMode()
}

// ExitEditMode returns to Normal mode and performs any reload deferred while editing.
func (s *Session) ExitEditMode() {
	s.mode = ModeNormal
	s.intent = IntentNone
	s.target = TargetTask
	s.editIndex = -1
	s.insertIndex = -1
	s.cursor = model.ClampCursor(s.cursor, len(s.doc))
	s.input.Reset()
	s.normalizeSelection()

	if s.pendingReload {
		s.pendingReload = false
		_ = s.reload("Reloaded from disk")
	}
}

// ChangeIndent shifts the indent of the task being edited, or of the insert
// template, by delta levels.
func (s *Session) ChangeIndent(delta int) {
	if s.target != TargetTask {
		return
	}
	switch s.intent {
	case IntentUpdate:
		task, ok := s.doc.Task(s.editIndex)
		if !ok {
			return
		}
		task.Indent = model.ShiftIndent(task.Indent, delta)
		s.doc[s.editIndex] = task
	case IntentInsert:
		s.template.Indent = model.ShiftIndent(s.template.Indent, delta)
	}
}

// ToggleTasks flips completion of the cursor task, or of every task in the
// active selection, then saves.
func (s *Session) ToggleTasks() {
	if len(s.doc) == 0 {
		return
	}
	if s.SearchActive() && s.mode != ModeEdit {
		indices := s.VisibleIndices()
		if len(indices) == 0 {
			s.status = "No matches"
			return
		}
		s.EnsureCursorVisible()
	}

	count := 0
	last := false
	flip := func(i int) {
		task, ok := s.doc.Task(i)
		if !ok {
			return
		}
		task.Completed = !task.Completed
		s.doc[i] = task
		count++
		last = task.Completed
	}

	if start, end, ok := s.SelectionRange(); ok {
		for i := start; i <= end; i++ {
			flip(i)
		}
		s.selectionActive = false
	} else {
		flip(s.cursor)
	}

	switch {
	case count == 0:
		return
	case count == 1 && last:
		s.saveAndSetStatus("Marked Completed")
	case count == 1:
		s.saveAndSetStatus("Marked Incomplete")
	default:
		s.saveAndSetStatus(fmt.Sprintf("Toggled %d tasks", count))
	}
}

// DeleteCurrentLine removes the item under the cursor after snapshotting.
// Deleting a section moves the cursor to the item before it.
func (s *Session) DeleteCurrentLine() {
	if len(s.doc) == 0 {
		s.status = "Nothing to delete"
		return
	}
	s.cursor = model.ClampCursor(s.cursor, len(s.doc))
	section := s.doc.IsSection(s.cursor)

	s.history.Push(s.doc, s.cursor)
	s.clearSelection()
	s.doc = s.doc.Remove(s.cursor)
	if section {
		s.cursor = model.ClampCursor(s.cursor-1, len(s.doc))
		s.saveAndSetStatus("Deleted section")
		return
	}
	s.cursor = model.ClampCursor(s.cursor, len(s.doc))
	s.saveAndSetStatus("Deleted task")
}

// Undo restores the previous snapshot and saves it.
func (s *Session) Undo() {
	prev, ok := s.history.Undo(s.snapshot())
	if !ok {
		s.status = "Nothing to undo"
		return
	}
	s.restore(prev)
	s.saveAndSetStatus("Undo")
}

func (s *Session) Redo() {
	next, ok := s.history.Redo(s.snapshot())
	if !ok {
		s.status = "Nothing to redo"
		return
	}
	s.restore(next)
	s.saveAndSetStatus("Redo")
}

// UndoDepth reports the sizes of the undo and redo stacks.
func (s *Session) UndoDepth() (undoLen, redoLen int) {
	return s.history.UndoLen(), s.history.RedoLen()
}
