// Package viewport tracks the scroll offset of a row list with a fixed row budget.
//
// Rows are items, not display lines: a task that wraps onto several terminal
// lines still counts as one row.
package viewport

type Scroller struct {
	Offset int
}

// Ensure adjusts Offset so that cursorPos falls within [Offset, Offset+available)
// and clamps it to [0, total-1]. An available budget below 1 is treated as 1.
func (s *Scroller) Ensure(total, available, cursorPos int) {
	if total <= 0 {
		s.Offset = 0
		return
	}
	visible := max(available, 1)
	if cursorPos < s.Offset {
		s.Offset = cursorPos
	} else if cursorPos >= s.Offset+visible {
		s.Offset = cursorPos + 1 - visible
	}
	s.Offset = min(max(s.Offset, 0), total-1)
}

// Window returns the half-open range of row positions to draw. A budget of
// zero rows draws nothing.
func (s *Scroller) Window(total, available int) (start, end int) {
	start = min(max(s.Offset, 0), max(total, 0))
	end = min(start+max(available, 0), total)
	return start, max(end, start)
}
