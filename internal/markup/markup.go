// Package markup renders the inline markdown subset used in task text
// (emphasis, strong, code spans, line breaks) as ANSI-styled, word-wrapped text.
package markup

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Style flags are inherited from every enclosing span.
type Style struct {
	Bold   bool
	Italic bool
	Code   bool
}

// SGR returns the ANSI parameter list for the style, e.g. "1;3".
func (s Style) SGR() string {
	var codes []string
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Italic {
		codes = append(codes, "3")
	}
	if s.Code {
		codes = append(codes, "7")
	}
	return strings.Join(codes, ";")
}

// Apply wraps text in the style's escape codes. Unstyled text is returned as-is.
func (s Style) Apply(text string) string {
	codes := s.SGR()
	if codes == "" {
		return text
	}
	return "\x1b[" + codes + "m" + text + "\x1b[0m"
}

type Segment struct {
	Text  string
	Style Style
}

var inlineParser = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough),
).Parser()

// Parse splits raw into styled segments. Soft line breaks become a single space,
// hard breaks a newline; block structure and raw HTML are ignored.
func Parse(raw string) []Segment {
	src := []byte(raw)
	root := inlineParser.Parse(text.NewReader(src))

	var segs []Segment
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			style := inheritedStyle(node)
			value := node.Segment.Value(src)
			if !style.Code && !node.IsRaw() {
				value = decode(value)
			}
			segs = append(segs, Segment{Text: string(value), Style: style})
			if node.HardLineBreak() {
				segs = append(segs, Segment{Text: "\n", Style: style})
			} else if node.SoftLineBreak() {
				segs = append(segs, Segment{Text: " ", Style: style})
			}
		case *ast.String:
			value := node.Value
			if !node.IsCode() && !node.IsRaw() {
				value = decode(value)
			}
			segs = append(segs, Segment{Text: string(value), Style: inheritedStyle(node)})
		case *ast.AutoLink:
			segs = append(segs, Segment{Text: string(node.Label(src)), Style: inheritedStyle(node)})
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return segs
}

// decode resolves backslash escapes and character references outside code spans.
func decode(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}

func inheritedStyle(n ast.Node) Style {
	var st Style
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch node := p.(type) {
		case *ast.Emphasis:
			if node.Level >= 2 {
				st.Bold = true
			} else {
				st.Italic = true
			}
		case *ast.CodeSpan:
			st.Code = true
		}
	}
	return st
}

// Render parses raw and wraps it to width display columns. The result has no
// leading or trailing whitespace; wrapped lines are separated by "\n".
func Render(raw string, width int) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return strings.Trim(Wrap(Parse(raw), width), " \n\t")
}

// Wrap greedily fills lines up to width display columns. Style boundaries may fall
// inside a word. A word wider than width is emitted whole on its own line rather
// than split. Spaces at line starts and before a wrap are dropped. A width of zero
// disables wrapping.
func Wrap(segs []Segment, width int) string {
	if width <= 0 {
		var b strings.Builder
		for _, s := range segs {
			b.WriteString(s.Style.Apply(s.Text))
		}
		return b.String()
	}

	var (
		lines    []string
		current  strings.Builder
		curWidth int
		pending  strings.Builder
		pendingW int
	)
	flush := func() {
		lines = append(lines, current.String())
		current.Reset()
		curWidth = 0
		pending.Reset()
		pendingW = 0
	}

	for _, seg := range segs {
		for _, tok := range tokenize(seg.Text) {
			switch tok {
			case "\n":
				flush()
				continue
			case " ":
				if curWidth == 0 {
					continue
				}
				pending.WriteString(seg.Style.Apply(tok))
				pendingW++
				continue
			}

			w := runewidth.StringWidth(tok)
			if curWidth > 0 && curWidth+pendingW+w > width {
				flush()
			}
			current.WriteString(pending.String())
			curWidth += pendingW
			pending.Reset()
			pendingW = 0
			current.WriteString(seg.Style.Apply(tok))
			curWidth += w
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return strings.Join(lines, "\n")
}

// tokenize splits text into words plus single-space and newline tokens. Every
// whitespace rune other than newline becomes its own " " token.
func tokenize(s string) []string {
	var (
		tokens []string
		word   strings.Builder
	)
	emitWord := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '\n':
			emitWord()
			tokens = append(tokens, "\n")
		case unicode.IsSpace(r):
			emitWord()
			tokens = append(tokens, " ")
		default:
			word.WriteRune(r)
		}
	}
	emitWord()
	return tokens
}
