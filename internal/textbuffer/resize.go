package textbuffer

import (
	"fmt"

	"pkt.systems/konsol/internal/console"
)

// ResizeTraditional reshapes the grid without rewrapping text. Content
// of the min-overlap rectangle is preserved; when the new height no
// longer reaches the cursor row, the window of rows ending at the
// cursor is kept instead of the top. The rotation is straightened
// whenever the height changes, so the first row index ends up zero.
func (b *Buffer) ResizeTraditional(newCols, newRows int) error {
	if newCols >= 0x7fff || newRows >= 0x7fff {
		return fmt.Errorf("screen buffer size (%d, %d): %w", newCols, newRows, console.ErrInvalidParameter)
	}
	if err := console.ValidateDims(newCols, newRows); err != nil {
		return err
	}

	limitX := min(newCols, b.cols)
	limitY := min(newRows, b.rows)
	topRow := 0
	if newRows <= b.cursor.Pos.Y {
		topRow = b.cursor.Pos.Y - newRows + 1
	}
	topRowIndex := (b.first + topRow) % b.rows

	rows := b.row
	if newRows != b.rows {
		rows = make([]Row, newRows)
		n := min(b.rows-topRowIndex, newRows)
		copy(rows, b.row[topRowIndex:topRowIndex+n])
		if topRowIndex != 0 && n != newRows {
			n2 := min(topRowIndex, newRows-n)
			copy(rows[n:], b.row[:n2])
		}
		b.first = 0
	}

	for i := 0; i < limitY; i++ {
		r := &rows[i]
		cells := make([]console.Cell, newCols)
		flags := make([]uint8, newCols)
		copy(cells, r.Cells[:limitX])
		copy(flags, r.Flags[:limitX])
		if newCols > b.cols {
			// Horizontal growth extends the final attribute run
			// across the added columns.
			last := r.Cells[b.cols-1]
			blank := console.Cell{Rune: ' ', Mode: last.Mode, FG: last.FG, BG: last.BG}
			for j := b.cols; j < newCols; j++ {
				cells[j] = blank
			}
		}
		if r.Right > newCols {
			r.Right = newCols
		}
		if r.Left > newCols {
			r.Left = newCols
		}
		r.Cells = cells
		r.Flags = flags
		r.ID = i
	}
	for i := limitY; i < newRows; i++ {
		rows[i] = newRow(newCols, i, b.fill)
	}

	b.row = rows
	b.cols = newCols
	b.rows = newRows

	b.cursor.Pos.Y -= topRow
	if b.cursor.Pos.Y < 0 {
		b.cursor.Pos.Y = 0
	}
	if b.cursor.Pos.Y > newRows-1 {
		b.cursor.Pos.Y = newRows - 1
	}
	if b.cursor.Pos.X > newCols-1 {
		b.cursor.Pos.X = newCols - 1
	}
	return nil
}
