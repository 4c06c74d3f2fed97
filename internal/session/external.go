package session

import "fmt"

// EditorError is a failed external editor run: a launch failure or non-zero exit.
type EditorError struct {
	Err error
}

func (e *EditorError) Error() string { return fmt.Sprintf("editor: %v", e.Err) }

func (e *EditorError) Unwrap() error { return e.Err }

// EditorResult is the outcome of editing text in an external editor. Empty
// means the editor produced only whitespace and nothing should change.
type EditorResult struct {
	Text  string
	Empty bool
	Err   error
}

// RequestExternalEdit marks the cursor task as being edited externally and
// returns its text. ok is false when the cursor is not on a task.
func (s *Session) RequestExternalEdit() (text string, ok bool) {
	task, ok := s.doc.Task(s.cursor)
	if !ok {
		return "", false
	}
	s.clearSelection()
	s.externalIdx = s.cursor
	return task.Text, true
}

// ApplyExternalEdit stores res into the task captured by RequestExternalEdit.
func (s *Session) ApplyExternalEdit(res EditorResult) {
	idx := s.externalIdx
	s.externalIdx = -1
	if idx < 0 {
		return
	}

	switch {
	case res.Err != nil:
		s.log.Warn("external editor failed", "err", res.Err)
		s.err = res.Err
		s.status = "Editor error"
	case res.Empty:
		s.status = "Cannot save empty task"
	default:
		task, ok := s.doc.Task(idx)
		if !ok {
			return
		}
		task.Text = res.Text
		s.doc[idx] = task
		s.saveAndSetStatus("Saved")
	}
}
