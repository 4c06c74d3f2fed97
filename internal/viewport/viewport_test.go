package viewport

import "testing"

func TestEnsure(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		offset    int
		total     int
		available int
		cursor    int
		want      int
	}{
		{name: "empty resets", offset: 5, total: 0, available: 10, cursor: 0, want: 0},
		{name: "cursor inside window", offset: 2, total: 20, available: 5, cursor: 4, want: 2},
		{name: "cursor above window", offset: 6, total: 20, available: 5, cursor: 3, want: 3},
		{name: "cursor below window", offset: 0, total: 20, available: 5, cursor: 9, want: 5},
		{name: "cursor at last visible row", offset: 0, total: 20, available: 5, cursor: 4, want: 0},
		{name: "zero budget acts as one row", offset: 0, total: 20, available: 0, cursor: 7, want: 7},
		{name: "negative budget acts as one row", offset: 9, total: 20, available: -3, cursor: 7, want: 7},
		{name: "offset clamped after shrink", offset: 15, total: 4, available: 5, cursor: 3, want: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Scroller{Offset: tc.offset}
			s.Ensure(tc.total, tc.available, tc.cursor)
			if s.Offset != tc.want {
				t.Fatalf("Offset = %d, want %d", s.Offset, tc.want)
			}
		})
	}
}

func TestEnsure_CursorAlwaysInWindow(t *testing.T) {
	t.Parallel()

	var s Scroller
	const total, available = 30, 7
	for _, cursor := range []int{0, 10, 29, 3, 15, 0, 29} {
		s.Ensure(total, available, cursor)
		if cursor < s.Offset || cursor >= s.Offset+available {
			t.Fatalf("cursor %d outside [%d,%d)", cursor, s.Offset, s.Offset+available)
		}
		start, end := s.Window(total, available)
		if cursor < start || cursor >= end {
			t.Fatalf("cursor %d outside window [%d,%d)", cursor, start, end)
		}
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	s := Scroller{Offset: 3}
	if start, end := s.Window(10, 4); start != 3 || end != 7 {
		t.Fatalf("Window = [%d,%d), want [3,7)", start, end)
	}
	if start, end := s.Window(5, 4); start != 3 || end != 5 {
		t.Fatalf("Window = [%d,%d), want [3,5)", start, end)
	}
	if start, end := s.Window(10, 0); start != end {
		t.Fatalf("zero budget should draw nothing, got [%d,%d)", start, end)
	}
	if start, end := s.Window(0, 4); start != 0 || end != 0 {
		t.Fatalf("empty list should draw nothing, got [%d,%d)", start, end)
	}
}
