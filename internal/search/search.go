// Package search filters a document by a task-text query and highlights matches
// inside already-styled render output.
package search

import (
	"strings"
	"unicode/utf8"

	"lazytodo/internal/model"
)

const (
	MatchOn  = "\x1b[48;5;24m\x1b[38;5;15m"
	MatchOff = "\x1b[49m\x1b[39m"
)

// VisibleIndices returns the document indices shown under query, in order.
// A task matches when its text contains query (case-sensitive). A section is
// shown once, just before its first matching task. An empty query shows everything.
func VisibleIndices(doc model.Document, query string) []int {
	if query == "" {
		return AllIndices(len(doc))
	}
	var (
		out             []int
		pending         = -1
		sectionIncluded bool
	)
	for i, item := range doc {
		switch it := item.(type) {
		case model.Section:
			pending = i
			sectionIncluded = false
		case model.Task:
			if !strings.Contains(it.Text, query) {
				continue
			}
			if pending >= 0 && !sectionIncluded {
				out = append(out, pending)
				sectionIncluded = true
			}
			out = append(out, i)
		}
	}
	return out
}

func AllIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// EnsureCursorVisible moves cursor into visible when it falls outside. It
// prefers the first visible task, then the first visible index, then 0.
func EnsureCursorVisible(doc model.Document, visible []int, cursor int) int {
	if len(visible) == 0 {
		return 0
	}
	for _, idx := range visible {
		if idx == cursor {
			return cursor
		}
	}
	for _, idx := range visible {
		if doc.IsTask(idx) {
			return idx
		}
	}
	return visible[0]
}

// Position returns the position of idx within visible, or -1.
func Position(visible []int, idx int) int {
	for pos, v := range visible {
		if v == idx {
			return pos
		}
	}
	return -1
}

// Highlight wraps each occurrence of query in rendered with MatchOn/MatchOff.
// Matching runs against the escape-stripped text; the original escapes are kept.
func Highlight(rendered, query string) string {
	if query == "" {
		return rendered
	}
	plain := stripEscapes(rendered)
	ranges := matchRanges(plain, query)
	if len(ranges) == 0 {
		return rendered
	}

	var (
		b           strings.Builder
		plainIdx    int
		ri          int
		active      bool
		lastStyle   string
		styledInHit bool
	)
	b.Grow(len(rendered) + len(ranges)*(len(MatchOn)+len(MatchOff)))

	for i := 0; i < len(rendered); {
		if n := escapeLen(rendered, i); n > 0 {
			seq := rendered[i : i+n]
			b.WriteString(seq)
			if isReset(seq) {
				lastStyle = ""
			} else {
				lastStyle = seq
			}
			if active {
				styledInHit = true
				b.WriteString(MatchOn)
			}
			i += n
			continue
		}

		if !active && ri < len(ranges) && plainIdx == ranges[ri][0] {
			b.WriteString(MatchOn)
			active = true
			styledInHit = false
		}

		_, size := utf8.DecodeRuneInString(rendered[i:])
		b.WriteString(rendered[i : i+size])
		i += size
		plainIdx += size

		if active && plainIdx >= ranges[ri][1] {
			b.WriteString(MatchOff)
			if styledInHit && lastStyle != "" {
				b.WriteString(lastStyle)
			}
			active = false
			ri++
		}
	}
	if active {
		b.WriteString(MatchOff)
	}
	return b.String()
}

func matchRanges(plain, query string) [][2]int {
	var out [][2]int
	for start := 0; start <= len(plain); {
		idx := strings.Index(plain[start:], query)
		if idx < 0 {
			break
		}
		from := start + idx
		out = append(out, [2]int{from, from + len(query)})
		start = from + len(query)
	}
	return out
}

// escapeLen reports the byte length of the CSI sequence starting at s[i], or 0.
func escapeLen(s string, i int) int {
	if s[i] != 0x1b || i+1 >= len(s) || s[i+1] != '[' {
		return 0
	}
	for j := i + 2; j < len(s); j++ {
		if c := s[j]; c >= 0x40 && c <= 0x7e {
			return j - i + 1
		}
	}
	return len(s) - i
}

func stripEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if n := escapeLen(s, i); n > 0 {
			i += n
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isReset(seq string) bool {
	return seq == "\x1b[0m" || seq == "\x1b[m"
}
