package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"lazytodo/internal/markup"
	"lazytodo/internal/model"
	"lazytodo/internal/search"
	"lazytodo/internal/session"
)

const (
	defaultWindowWidth = 80

	selectOn   = "\x1b[48;5;226m\x1b[30m"
	selectOff  = "\x1b[0m"
	clearToEOL = "\x1b[K"
)

// frameLayout is the row accounting shared by View and the scroll update.
type frameLayout struct {
	header    string
	emptyLine string
	footer    string

	visible []int
	// editorPos is the row position of an in-progress insert, or -1.
	editorPos int
	total     int
	cursorPos int
	available int
}

func (m appModel) layout() frameLayout {
	s := m.sess
	l := frameLayout{
		header:    renderHeader(m.path),
		visible:   s.VisibleIndices(),
		editorPos: -1,
	}

	filterActive := s.SearchActive() && s.Mode() != session.ModeEdit
	showEmpty := s.Doc().CountTasks() == 0 && !s.InsertingTask()
	switch {
	case showEmpty:
		l.emptyLine = "No tasks found. Press 'o' to create one.\n"
	case filterActive && len(l.visible) == 0:
		l.emptyLine = "No matches. Press Esc to clear search.\n"
	}
	l.footer = m.renderFooter()

	if s.Mode() == session.ModeEdit && s.Intent() == session.IntentInsert {
		insertIdx, ok := s.EditIndex()
		if !ok {
			insertIdx = len(l.visible)
		}
		l.editorPos = len(l.visible)
		for pos, idx := range l.visible {
			if idx >= insertIdx {
				l.editorPos = pos
				break
			}
		}
	}

	l.total = len(l.visible)
	if l.editorPos >= 0 {
		l.total++
	}
	switch {
	case l.total == 0:
		l.cursorPos = 0
	case l.editorPos >= 0:
		l.cursorPos = l.editorPos
	default:
		l.cursorPos = max(search.Position(l.visible, s.Cursor()), 0)
	}

	if m.height <= 0 {
		l.available = l.total
	} else {
		used := countLines(l.header) + countLines(l.footer)
		if l.emptyLine != "" {
			used++
		}
		l.available = max(m.height-used, 0)
	}
	return l
}

func (m appModel) View() string {
	l := m.layout()
	s := m.sess

	var b strings.Builder
	b.WriteString(styleHeader().Render(strings.TrimSuffix(l.header, "\n\n")))
	b.WriteString("\n\n")
	b.WriteString(l.emptyLine)

	start, end := m.scroller.Window(l.total, l.available)
	for pos := start; pos < end; pos++ {
		if pos == l.editorPos {
			if s.Target() == session.TargetSection {
				b.WriteString(m.renderSectionEditorLine())
			} else {
				b.WriteString(m.renderEditorLine(s.Template(), pos))
			}
			continue
		}

		vi := pos
		if l.editorPos >= 0 && pos > l.editorPos {
			vi--
		}
		idx := l.visible[vi]

		editIdx, editing := s.EditIndex()
		editing = editing && s.Mode() == session.ModeEdit && editIdx == idx
		if editing && s.Intent() == session.IntentUpdate {
			if s.Target() == session.TargetSection {
				b.WriteString(m.renderSectionEditorLine())
			} else if task, ok := s.Doc().Task(idx); ok {
				b.WriteString(m.renderEditorLine(task, idx))
			}
			continue
		}
		suppressCursor := editing && s.Intent() == session.IntentInsert

		switch item := s.Doc()[idx].(type) {
		case model.Section:
			b.WriteString(m.renderSectionLine(item.Title, idx, suppressCursor))
		case model.Task:
			b.WriteString(m.renderTaskLine(item, idx, suppressCursor))
		}
	}

	b.WriteString(l.footer)
	return padToHeight(b.String(), m.height)
}

func renderHeader(path string) string {
	name := filepath.Base(path)
	if path == "" || name == "." || name == string(filepath.Separator) {
		name = "todo.md"
	}
	return fmt.Sprintf("Managing %s\n\n", name)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func expandTabs(indent string) string {
	return strings.ReplaceAll(indent, "\t", "    ")
}

func (m appModel) windowWidth() int {
	if m.width <= 0 {
		return defaultWindowWidth
	}
	return m.width
}

// wrapWidth is the markup wrap width: the window minus the row chrome margin.
func (m appModel) wrapWidth() int {
	return max(m.windowWidth()-m.wrapMargin, 0)
}

func (m appModel) editorWidth() int {
	return max(m.windowWidth()-10, 20)
}

func (m appModel) renderTaskLine(task model.Task, idx int, suppressCursor bool) string {
	s := m.sess
	body := markup.Render(task.Text, m.wrapWidth())
	if s.SearchActive() && s.Mode() != session.ModeEdit {
		body = search.Highlight(body, s.SearchQuery())
	}
	indent := expandTabs(task.Indent)
	box := checkbox(task.Completed)

	prefix := indent + box + " "
	contPrefix := indent + strings.Repeat(" ", len(box)+1)
	var b strings.Builder
	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			b.WriteString("\n")
			b.WriteString(contPrefix)
		} else {
			b.WriteString(prefix)
		}
		b.WriteString(line)
	}
	return m.formatLine(idx, false, suppressCursor, b.String())
}

func (m appModel) renderEditorLine(task model.Task, idx int) string {
	prefix := expandTabs(task.Indent) + checkbox(task.Completed) + " "
	view := m.sess.Input().View(m.sess.Placeholder(), m.editorWidth())
	return m.formatLine(idx, true, false, prefix+view)
}

func (m appModel) renderSectionLine(title string, idx int, suppressCursor bool) string {
	marker := " "
	if !suppressCursor && idx == m.sess.Cursor() {
		marker = ">"
	}
	body := "\x1b[1m" + title + "\x1b[0m"
	if m.sess.IsSelected(idx) {
		return selectOn + marker + "  " + xansi.Strip(body) + clearToEOL + selectOff + "\n"
	}
	return marker + "  " + body + "\n"
}

func (m appModel) renderSectionEditorLine() string {
	return "  >" + m.sess.Input().View(m.sess.Placeholder(), m.editorWidth()) + "\n"
}

// formatLine prefixes each line of body with the cursor column and applies the
// selection highlight, which drops inline styles so the background is uniform.
func (m appModel) formatLine(idx int, editing, suppressCursor bool, body string) string {
	marker := " "
	if editing || (!suppressCursor && idx == m.sess.Cursor()) {
		marker = ">"
	}
	selected := !editing && m.sess.IsSelected(idx)

	var b strings.Builder
	for i, line := range strings.Split(body, "\n") {
		prefix := "   "
		if i == 0 {
			prefix = marker + "  "
		}
		if selected {
			b.WriteString(selectOn + prefix + xansi.Strip(line) + clearToEOL + selectOff + "\n")
			continue
		}
		b.WriteString(prefix + line + "\n")
	}
	return b.String()
}

func (m appModel) renderFooter() string {
	s := m.sess

	hints := m.keys.hints(s)
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, hintText(h))
	}
	open, completed := s.Doc().Counts()

	var b strings.Builder
	b.WriteString("\n")
	switch {
	case s.Mode() == session.ModeSearch:
		b.WriteString("/" + s.SearchInput().View("search", m.editorWidth()) + "\n")
	case s.SearchActive() && s.Mode() != session.ModeEdit:
		b.WriteString("/" + s.SearchQuery() + "\n")
	}
	b.WriteString(styleMuted().Render(strings.Join(parts, " · ")))
	fmt.Fprintf(&b, "\n%d open · %d completed", open, completed)
	if st := s.Status(); st != "" {
		b.WriteString(" · " + st)
	}
	if s.PendingReload() {
		b.WriteString("\nFile changed on disk; finish editing to reload.")
	}
	if err := s.Err(); err != nil {
		b.WriteString("\n" + styleError().Render("Error: "+err.Error()))
	}
	b.WriteString("\n")
	return b.String()
}

func countLines(s string) int {
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func padToHeight(view string, height int) string {
	if height <= 0 {
		return view
	}
	lines := countLines(view)
	if lines >= height {
		return view
	}
	return view + strings.Repeat("\n", height-lines)
}
