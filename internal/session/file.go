package session

import (
	"time"

	"lazytodo/internal/model"
	"lazytodo/internal/undo"
)

func (s *Session) snapshot() undo.State {
	return undo.State{Doc: s.doc, Cursor: s.cursor}
}

func (s *Session) restore(st undo.State) {
	s.doc = st.Doc
	s.cursor = model.ClampCursor(st.Cursor, len(s.doc))
	s.normalizeSelection()
}

// saveAndSetStatus writes the document. On success the status becomes msg and
// any previous error is cleared; on failure only the error is set.
func (s *Session) saveAndSetStatus(msg string) {
	modTime, err := s.store.Save(s.doc)
	if err != nil {
		s.log.Error("save failed", "err", err)
		s.err = err
		return
	}
	s.lastModified = modTime
	s.status = msg
	s.err = nil
}

// Reload replaces the document with the file contents.
func (s *Session) Reload() {
	_ = s.reload("Reloaded")
}

func (s *Session) reload(msg string) error {
	doc, modTime, err := s.store.Load()
	if err != nil {
		s.log.Error("reload failed", "err", err)
		s.err = err
		return err
	}
	s.doc = doc
	s.cursor = model.ClampCursor(s.cursor, len(s.doc))
	s.normalizeSelection()
	s.lastModified = modTime
	s.template = model.DefaultTemplate(s.doc)
	s.status = msg
	s.err = nil
	s.log.Info("document reloaded", "items", len(doc))
	return nil
}

// CheckFile stats the backing file and hands a newer modification time to
// CheckModified. A missing file is ignored.
func (s *Session) CheckFile() {
	modTime, ok, err := s.store.ModTime()
	if err != nil {
		s.err = err
		return
	}
	if !ok {
		return
	}
	s.CheckModified(modTime)
}

// CheckModified reloads when modTime is newer than the last load or save. While
// editing, the reload is deferred until ExitEditMode.
func (s *Session) CheckModified(modTime time.Time) {
	if !modTime.After(s.lastModified) {
		return
	}
	if s.mode == ModeEdit {
		if !s.pendingReload {
			s.log.Debug("reload deferred while editing")
		}
		s.pendingReload = true
		return
	}
	_ = s.reload("Reloaded from disk")
}
