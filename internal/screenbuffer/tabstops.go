package screenbuffer

import "pkt.systems/konsol/internal/console"

// TabStops is the sorted set of tab columns owned by one buffer.
// Columns are strictly increasing; duplicates are rejected on insert.
type TabStops struct {
	cols []int
}

// Add inserts a stop at col in sorted position. An existing stop at
// the same column leaves the set unchanged.
func (t *TabStops) Add(col int) {
	i := 0
	for i < len(t.cols) && t.cols[i] < col {
		i++
	}
	if i < len(t.cols) && t.cols[i] == col {
		return
	}
	t.cols = append(t.cols, 0)
	copy(t.cols[i+1:], t.cols[i:])
	t.cols[i] = col
}

// Clear removes every stop.
func (t *TabStops) Clear() {
	t.cols = nil
}

// ClearAt removes the stop at col. A column with no stop is a no-op.
func (t *TabStops) ClearAt(col int) {
	out := t.cols[:0]
	for _, c := range t.cols {
		if c != col {
			out = append(out, c)
		}
	}
	t.cols = out
}

// Any reports whether any stop is set.
func (t *TabStops) Any() bool { return len(t.cols) > 0 }

// Columns returns a copy of the stop columns in order.
func (t *TabStops) Columns() []int {
	out := make([]int, len(t.cols))
	copy(out, t.cols)
	return out
}

// ForwardTab returns the cursor position after a forward tab on a grid
// cols wide. At the right edge the cursor moves to column zero of the
// next row; otherwise to the next stop past the cursor, or the right
// edge when no stop remains.
func (t *TabStops) ForwardTab(pos console.Coord, cols int) console.Coord {
	if pos.X == cols-1 {
		return console.Coord{X: 0, Y: pos.Y + 1}
	}
	for _, c := range t.cols {
		if c > pos.X {
			if c <= cols-1 {
				return console.Coord{X: c, Y: pos.Y}
			}
			break
		}
	}
	return console.Coord{X: cols - 1, Y: pos.Y}
}

// ReverseTab returns the cursor position after a backward tab. Column
// zero is the destination when the cursor is already there, when no
// stops exist, or when the first stop is at or past the cursor. The
// scan otherwise lands on the last stop whose successor is still at or
// past the cursor, which is the historical behavior callers depend on.
func (t *TabStops) ReverseTab(pos console.Coord) console.Coord {
	res := console.Coord{X: 0, Y: pos.Y}
	if pos.X == 0 || len(t.cols) == 0 || t.cols[0] >= pos.X {
		return res
	}
	i := 0
	for i+1 < len(t.cols) && pos.X > t.cols[i+1] {
		i++
	}
	res.X = t.cols[i]
	return res
}

// TrimToWidth drops stops that no longer fit a grid cols wide.
func (t *TabStops) TrimToWidth(cols int) {
	out := t.cols[:0]
	for _, c := range t.cols {
		if c < cols {
			out = append(out, c)
		}
	}
	t.cols = out
}

// SetDefault replaces the set with stops every interval columns.
func (t *TabStops) SetDefault(cols, interval int) {
	if interval <= 0 {
		interval = 8
	}
	t.cols = t.cols[:0]
	for c := interval; c < cols; c += interval {
		t.cols = append(t.cols, c)
	}
}
