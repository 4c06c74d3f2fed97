// Package textfield is a single-line editable text buffer with a byte-offset cursor.
//
// The cursor always sits on a boundary between UTF-8 encoded scalar values; every
// motion and edit steps by whole runes. Rendering is measured in terminal display
// columns, so double-width characters are accounted for.
package textfield

import (
	"strings"
	"unicode/utf8"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const (
	reverseOn  = "\x1b[7m"
	reverseOff = "\x1b[0m"
)

type Field struct {
	value  string
	cursor int
}

func (f *Field) Value() string { return f.value }

// Cursor returns the cursor as a byte offset into Value.
func (f *Field) Cursor() int { return f.cursor }

// Len returns the number of runes in the value.
func (f *Field) Len() int { return utf8.RuneCountInString(f.value) }

// SetValue replaces the value and moves the cursor to the end.
func (f *Field) SetValue(s string) {
	f.value = strings.ToValidUTF8(s, string(utf8.RuneError))
	f.cursor = len(f.value)
}

func (f *Field) Reset() {
	f.value = ""
	f.cursor = 0
}

func (f *Field) Insert(r rune) {
	if !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	s := string(r)
	f.value = f.value[:f.cursor] + s + f.value[f.cursor:]
	f.cursor += len(s)
}

func (f *Field) Backspace() {
	if f.cursor == 0 {
		return
	}
	prev := f.prevBoundary()
	f.value = f.value[:prev] + f.value[f.cursor:]
	f.cursor = prev
}

func (f *Field) Delete() {
	if f.cursor >= len(f.value) {
		return
	}
	next := f.nextBoundary()
	f.value = f.value[:f.cursor] + f.value[next:]
}

func (f *Field) MoveLeft() {
	if f.cursor == 0 {
		return
	}
	f.cursor = f.prevBoundary()
}

func (f *Field) MoveRight() {
	if f.cursor >= len(f.value) {
		return
	}
	f.cursor = f.nextBoundary()
}

func (f *Field) MoveHome() { f.cursor = 0 }

func (f *Field) MoveEnd() { f.cursor = len(f.value) }

func (f *Field) prevBoundary() int {
	_, size := utf8.DecodeLastRuneInString(f.value[:f.cursor])
	return f.cursor - size
}

func (f *Field) nextBoundary() int {
	_, size := utf8.DecodeRuneInString(f.value[f.cursor:])
	return f.cursor + size
}

// View renders the value (or placeholder when empty) with a reverse-video block
// cursor, windowed to width display columns so the cursor is always visible.
// A width of zero disables windowing.
func (f *Field) View(placeholder string, width int) string {
	content := f.value
	cursor := f.cursor
	if content == "" {
		content = placeholder
		cursor = 0
	}
	if width <= 0 {
		return content
	}

	runes := []rune(content)
	widths := make([]int, len(runes))
	total := 0
	for i, r := range runes {
		widths[i] = runewidth.RuneWidth(r)
		total += widths[i]
	}
	ci := utf8.RuneCountInString(content[:cursor])
	atEnd := ci >= len(runes)

	cursorW := 1
	if !atEnd && widths[ci] > 0 {
		cursorW = widths[ci]
	}
	need := total
	if atEnd {
		need++
	}

	start := 0
	if need > width {
		// Slide the window right until the cursor cell fits at its right edge.
		before := 0
		for i := 0; i < ci; i++ {
			before += widths[i]
		}
		for start < ci && before+cursorW > width {
			before -= widths[start]
			start++
		}
	}

	var b strings.Builder
	used := 0
	for i := start; i < len(runes); i++ {
		if used+widths[i] > width {
			break
		}
		if i == ci {
			b.WriteString(reverseOn)
			b.WriteRune(runes[i])
			b.WriteString(reverseOff)
		} else {
			b.WriteRune(runes[i])
		}
		used += widths[i]
	}
	if atEnd && used < width {
		b.WriteString(reverseOn + " " + reverseOff)
	}

	out := b.String()
	if xansi.StringWidth(out) > width {
		out = xansi.Truncate(out, width, "")
	}
	return out
}
