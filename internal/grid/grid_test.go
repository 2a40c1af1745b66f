package grid

import (
	"testing"

	"github.com/JohnDeved/recipe-explorer/internal/remote"
)

func TestMoveFromFirstCard(t *testing.T) {
	s := New(8, 4)
	if s.Index() != 0 {
		t.Fatalf("new selection should start at 0, got %d", s.Index())
	}

	s = s.Move(remote.ActionDown)
	if s.Index() != 4 {
		t.Fatalf("down from 0 = %d, want 4", s.Index())
	}
	s = s.Move(remote.ActionRight).Move(remote.ActionRight).Move(remote.ActionRight)
	if s.Index() != 7 {
		t.Fatalf("right x3 from 4 = %d, want 7", s.Index())
	}
	if s.Row() != 1 || s.Col() != 3 {
		t.Fatalf("row/col = %d/%d, want 1/3", s.Row(), s.Col())
	}
}

func TestMoveClamps(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		columns int
		start   []remote.Action
		action  remote.Action
		want    int
	}{
		{"left at first card", 8, 4, nil, remote.ActionLeft, 0},
		{"up on first row", 8, 4, []remote.Action{remote.ActionRight}, remote.ActionUp, 0},
		{"right at last card", 3, 4, []remote.Action{remote.ActionRight, remote.ActionRight}, remote.ActionRight, 2},
		{"down past partial row", 6, 4, []remote.Action{remote.ActionRight, remote.ActionRight, remote.ActionRight}, remote.ActionDown, 5},
		{"down on last row", 8, 4, []remote.Action{remote.ActionDown}, remote.ActionDown, 7},
		{"right continues onto next row", 8, 4, []remote.Action{remote.ActionRight, remote.ActionRight, remote.ActionRight}, remote.ActionRight, 4},
		{"single column", 3, 1, nil, remote.ActionDown, 1},
		{"confirm does not move", 8, 4, []remote.Action{remote.ActionDown}, remote.ActionConfirm, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.count, tt.columns)
			for _, a := range tt.start {
				s = s.Move(a)
			}
			s = s.Move(tt.action)
			if s.Index() != tt.want {
				t.Fatalf("index = %d, want %d", s.Index(), tt.want)
			}
		})
	}
}

func TestEmptyGrid(t *testing.T) {
	s := New(0, 4)
	for _, a := range []remote.Action{remote.ActionRight, remote.ActionDown, remote.ActionLeft, remote.ActionUp} {
		s = s.Move(a)
		if s.Index() != 0 {
			t.Fatalf("empty grid moved to %d on %v", s.Index(), a)
		}
	}
	if s.Rows() != 0 {
		t.Fatalf("empty grid rows = %d", s.Rows())
	}
}

func TestColumnsBelowOneAreClamped(t *testing.T) {
	for _, cols := range []int{0, -3} {
		s := New(4, cols)
		if s.Columns() != 1 {
			t.Fatalf("New(4, %d).Columns() = %d, want 1", cols, s.Columns())
		}
		if got := s.Move(remote.ActionDown).Index(); got != 1 {
			t.Fatalf("down with one column = %d, want 1", got)
		}
	}
}

func TestResizeAndReset(t *testing.T) {
	s := New(8, 4).Move(remote.ActionDown).Move(remote.ActionRight)
	if s.Index() != 5 {
		t.Fatalf("setup index = %d", s.Index())
	}

	s = s.Resize(2, 4)
	if s.Index() != 1 {
		t.Fatalf("resize to 2 cards clamped to %d, want 1", s.Index())
	}
	s = s.Resize(0, 4)
	if s.Index() != 0 {
		t.Fatalf("resize to empty = %d, want 0", s.Index())
	}
	s = New(8, 4).Move(remote.ActionDown).Reset()
	if s.Index() != 0 {
		t.Fatalf("Reset() = %d, want 0", s.Index())
	}
}

func TestVisible(t *testing.T) {
	// 20 cards, 4 columns -> 5 rows.
	s := New(20, 4)
	if got := s.Visible(0, 2); got != 0 {
		t.Fatalf("offset at top = %d", got)
	}
	for i := 0; i < 3; i++ {
		s = s.Move(remote.ActionDown)
	}
	if got := s.Visible(0, 2); got != 2 {
		t.Fatalf("offset for row 3 in a 2-row window = %d, want 2", got)
	}
	s = s.Move(remote.ActionUp).Move(remote.ActionUp).Move(remote.ActionUp)
	if got := s.Visible(2, 2); got != 0 {
		t.Fatalf("offset after scrolling back = %d, want 0", got)
	}
	if got := New(4, 4).Visible(3, 5); got != 0 {
		t.Fatalf("offset larger than content should clamp, got %d", got)
	}
}

func TestColumnsForWidth(t *testing.T) {
	tests := []struct {
		width, min, want int
	}{
		{120, 28, 4},
		{80, 28, 2},
		{20, 28, 1},
		{0, 28, 1},
		{100, 0, 1},
	}
	for _, tt := range tests {
		if got := ColumnsForWidth(tt.width, tt.min); got != tt.want {
			t.Fatalf("ColumnsForWidth(%d, %d) = %d, want %d", tt.width, tt.min, got, tt.want)
		}
	}
}

func TestIndexStaysInBoundsForEveryMoveSequence(t *testing.T) {
	actions := []remote.Action{
		remote.ActionLeft, remote.ActionRight, remote.ActionUp,
		remote.ActionDown, remote.ActionConfirm, remote.ActionBack,
	}

	var walk func(t *testing.T, s Selection, count, depth int, path []remote.Action)
	walk = func(t *testing.T, s Selection, count, depth int, path []remote.Action) {
		if depth == 0 {
			return
		}
		for _, a := range actions {
			next := s.Move(a)
			steps := append(path[:len(path):len(path)], a)
			i := next.Index()
			if (count == 0 && i != 0) || (count > 0 && (i < 0 || i >= count)) {
				t.Fatalf("count=%d columns=%d moves=%v: index %d out of range", count, s.Columns(), steps, i)
			}
			walk(t, next, count, depth-1, steps)
		}
	}

	for count := 0; count <= 9; count++ {
		for columns := 1; columns <= 5; columns++ {
			walk(t, New(count, columns), count, 4, nil)
		}
	}
}
