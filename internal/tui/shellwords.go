package tui

import (
	"errors"
	"unicode"
)

var errUnterminatedQuote = errors.New("unterminated quote in editor command")

// splitShellWords splits an editor command line into argv. Single quotes, double
// quotes and backslash escapes (outside single quotes) are honored.
func splitShellWords(s string) ([]string, error) {
	var (
		out      []string
		cur      []rune
		inWord   bool
		inSingle bool
		inDouble bool
		escaped  bool
	)
	flush := func() {
		if inWord {
			out = append(out, string(cur))
		}
		cur = cur[:0]
		inWord = false
	}

	for _, r := range s {
		switch {
		case escaped:
			cur = append(cur, r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
			inWord = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			inWord = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			inWord = true
		case unicode.IsSpace(r) && !inSingle && !inDouble:
			flush()
		default:
			cur = append(cur, r)
			inWord = true
		}
	}
	if inSingle || inDouble {
		return nil, errUnterminatedQuote
	}
	flush()
	return out, nil
}
