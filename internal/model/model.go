package model

import (
	"fmt"
	"slices"
	"strings"
)

// LineItem is one row of a document: either a Task or a Section.
// The set of implementations is closed; consumers type-switch on the two cases.
type LineItem interface {
	// Line returns the persisted form of the item (without trailing newline).
	Line() string
	lineItem()
}

type Task struct {
	// Indent and Bullet are preserved verbatim so files round-trip.
	Indent    string
	Bullet    string
	Completed bool
	Text      string
}

func (Task) lineItem() {}

func (t Task) Line() string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("%s%s [%s] %s", t.Indent, t.Bullet, mark, t.Text)
}

type Section struct {
	Title string
}

func (Section) lineItem() {}

func (s Section) Line() string { return "## " + s.Title }

// Document is the ordered item sequence. Position is the only identity.
type Document []LineItem

// Clone returns an independent copy. Items are values, so a shallow copy suffices.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return slices.Clone(d)
}

func (d Document) Task(i int) (Task, bool) {
	if i < 0 || i >= len(d) {
		return Task{}, false
	}
	t, ok := d[i].(Task)
	return t, ok
}

func (d Document) Section(i int) (Section, bool) {
	if i < 0 || i >= len(d) {
		return Section{}, false
	}
	s, ok := d[i].(Section)
	return s, ok
}

func (d Document) IsTask(i int) bool {
	_, ok := d.Task(i)
	return ok
}

func (d Document) IsSection(i int) bool {
	_, ok := d.Section(i)
	return ok
}

// Insert returns d with item placed at ClampIndex(i, len(d)).
func (d Document) Insert(i int, item LineItem) Document {
	return slices.Insert(d, ClampIndex(i, len(d)), item)
}

// Remove returns d without the item at i. Out-of-range indices are ignored.
func (d Document) Remove(i int) Document {
	if i < 0 || i >= len(d) {
		return d
	}
	return slices.Delete(d, i, i+1)
}

func (d Document) CountTasks() int {
	n := 0
	for _, it := range d {
		if _, ok := it.(Task); ok {
			n++
		}
	}
	return n
}

// Counts returns the number of open and completed tasks.
func (d Document) Counts() (open, completed int) {
	for _, it := range d {
		t, ok := it.(Task)
		if !ok {
			continue
		}
		if t.Completed {
			completed++
		} else {
			open++
		}
	}
	return open, completed
}

// Equal reports whether two documents hold the same items in the same order.
func (d Document) Equal(o Document) bool {
	return slices.Equal(d, o)
}

// ClampCursor keeps a row cursor inside [0, length-1], or 0 for an empty document.
func ClampCursor(cursor, length int) int {
	if length <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}

// ClampIndex keeps an insertion index inside [0, length].
func ClampIndex(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}

// IndentLevels are the indents a task can cycle through while editing.
var IndentLevels = []string{"", "    ", "        ", "            "}

// IndentLevel maps a stored indent onto IndentLevels. Tabs count as four spaces.
func IndentLevel(indent string) int {
	spaces := len(strings.ReplaceAll(indent, "\t", "    "))
	level := spaces / 4
	if level >= len(IndentLevels) {
		level = len(IndentLevels) - 1
	}
	return level
}

// ShiftIndent moves indent by delta levels, clamped at both ends.
func ShiftIndent(indent string, delta int) string {
	level := IndentLevel(indent) + delta
	if level < 0 {
		level = 0
	}
	if level >= len(IndentLevels) {
		level = len(IndentLevels) - 1
	}
	return IndentLevels[level]
}

// DefaultTemplate seeds the indent/bullet of new tasks from the first task in d.
func DefaultTemplate(d Document) Task {
	for _, it := range d {
		if t, ok := it.(Task); ok {
			return Task{Indent: t.Indent, Bullet: t.Bullet}
		}
	}
	return Task{Bullet: "-"}
}
