package textbuffer

import "pkt.systems/konsol/internal/console"

// Row is one line of the backing grid. Cells and Flags are parallel
// slices; Left and Right track the measured extent of printable
// characters (Right is one past the last, Left equals the width when
// the row is empty).
type Row struct {
	Cells            []console.Cell
	Flags            []uint8
	Left             int
	Right            int
	WrapForced       bool
	DoubleBytePadded bool
	ID               int
}

func newRow(cols, id int, fill console.Cell) Row {
	r := Row{
		Cells: make([]console.Cell, cols),
		Flags: make([]uint8, cols),
		Left:  cols,
		Right: 0,
		ID:    id,
	}
	blank := fill
	blank.Rune = ' '
	for i := range r.Cells {
		r.Cells[i] = blank
	}
	return r
}

// Reset returns the row to the canonical empty state.
func (r *Row) Reset(fill console.Cell) {
	blank := fill
	blank.Rune = ' '
	for i := range r.Cells {
		r.Cells[i] = blank
		r.Flags[i] = 0
	}
	r.Left = len(r.Cells)
	r.Right = 0
	r.WrapForced = false
	r.DoubleBytePadded = false
}

// Put writes a cell and its double-width flag at column x and updates
// the measured extent. Spaces without a flag do not extend the
// measurement.
func (r *Row) Put(x int, c console.Cell, flag uint8) {
	r.Cells[x] = c
	r.Flags[x] = flag
	if c.Rune != ' ' || flag != 0 {
		if x < r.Left {
			r.Left = x
		}
		if x+1 > r.Right {
			r.Right = x + 1
		}
	}
}
