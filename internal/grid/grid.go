// Package grid tracks the focused card in a row-major grid of cards.
package grid

import "github.com/JohnDeved/recipe-explorer/internal/remote"

// DefaultColumns is the column count used when none is configured.
const DefaultColumns = 4

// Selection is a focus position over count cards laid out columns wide.
// Index is always in [0, count-1], or 0 when the grid is empty.
type Selection struct {
	index   int
	count   int
	columns int
}

// New creates a selection at the first card. Columns below 1 are treated as 1.
func New(count, columns int) Selection {
	if count < 0 {
		count = 0
	}
	if columns < 1 {
		columns = 1
	}
	return Selection{count: count, columns: columns}
}

// Index returns the focused card.
func (s Selection) Index() int { return s.index }

// Count returns the number of cards.
func (s Selection) Count() int { return s.count }

// Columns returns the layout width.
func (s Selection) Columns() int { return s.columns }

// Row returns the row of the focused card.
func (s Selection) Row() int { return s.index / s.columns }

// Col returns the column of the focused card.
func (s Selection) Col() int { return s.index % s.columns }

// Rows returns the number of rows needed to lay out every card.
func (s Selection) Rows() int {
	if s.count == 0 {
		return 0
	}
	return (s.count + s.columns - 1) / s.columns
}

// Move applies a directional action. Movement clamps at the edges and never
// wraps. Non-directional actions return s unchanged.
func (s Selection) Move(a remote.Action) Selection {
	if s.count == 0 {
		return s
	}
	last := s.count - 1
	switch a {
	case remote.ActionRight:
		s.index = min(last, s.index+1)
	case remote.ActionLeft:
		s.index = max(0, s.index-1)
	case remote.ActionDown:
		s.index = min(last, s.index+s.columns)
	case remote.ActionUp:
		s.index = max(0, s.index-s.columns)
	}
	return s
}

// Resize returns a selection over count cards, clamping the index into range.
func (s Selection) Resize(count, columns int) Selection {
	next := New(count, columns)
	if next.count > 0 {
		next.index = min(s.index, next.count-1)
	}
	return next
}

// Reset moves focus back to the first card.
func (s Selection) Reset() Selection {
	s.index = 0
	return s
}

// Visible returns the first row of a height-row window that keeps the focused
// row in view, scrolling as little as possible from offset.
func (s Selection) Visible(offset, height int) int {
	rows := s.Rows()
	if height < 1 || rows == 0 {
		return 0
	}
	row := s.Row()
	if row < offset {
		offset = row
	}
	if row >= offset+height {
		offset = row - height + 1
	}
	maxOffset := max(0, rows-height)
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// ColumnsForWidth returns how many cards of at least minCard cells fit in
// width, never less than one.
func ColumnsForWidth(width, minCard int) int {
	if minCard < 1 || width < minCard {
		return 1
	}
	return width / minCard
}
