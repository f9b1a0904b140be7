// Package textbuffer implements the character storage backing a screen
// buffer: a fixed array of rows rotated by a first-row index, the
// cursor that writes into it, and the two resize algorithms.
package textbuffer

import (
	"fmt"

	"pkt.systems/konsol/internal/console"
)

// DefaultCursorSize is the cursor height in percent of the cell.
const DefaultCursorSize = 25

// Cursor tracks the write position and presentation of the caret.
type Cursor struct {
	Pos     console.Coord
	Size    int
	Visible bool
	Double  bool
}

// Buffer is the character grid. Rows are stored in a fixed array and
// rotated by first: logical row y lives at physical index
// (first + y) mod rows.
type Buffer struct {
	cols   int
	rows   int
	row    []Row
	first  int
	cursor Cursor
	fill   console.Cell
	nextID int
}

// New allocates a grid of the given size. The fill cell supplies the
// attributes of cleared cells.
func New(cols, rows int, fill console.Cell) (*Buffer, error) {
	if err := console.ValidateDims(cols, rows); err != nil {
		return nil, err
	}
	if fill.Rune == 0 {
		fill.Rune = ' '
	}
	b := &Buffer{
		cols:   cols,
		rows:   rows,
		fill:   fill,
		cursor: Cursor{Size: DefaultCursorSize, Visible: true},
		nextID: rows,
	}
	b.row = make([]Row, rows)
	for i := range b.row {
		b.row[i] = newRow(cols, i, fill)
	}
	return b, nil
}

// Cols returns the grid width.
func (b *Buffer) Cols() int { return b.cols }

// Rows returns the grid height.
func (b *Buffer) Rows() int { return b.rows }

// Size returns the grid dimensions.
func (b *Buffer) Size() console.Coord { return console.Coord{X: b.cols, Y: b.rows} }

// FirstRowIndex returns the physical index of logical row 0.
func (b *Buffer) FirstRowIndex() int { return b.first }

// SetFirstRowIndex sets the rotation offset.
func (b *Buffer) SetFirstRowIndex(i int) { b.first = ((i % b.rows) + b.rows) % b.rows }

// Row returns the row at logical offset y.
func (b *Buffer) Row(y int) *Row {
	return &b.row[(b.first+y)%b.rows]
}

// Cursor returns the buffer cursor.
func (b *Buffer) Cursor() *Cursor { return &b.cursor }

// Fill returns the attributes used for cleared cells.
func (b *Buffer) Fill() console.Cell { return b.fill }

// SetFill replaces the clear-cell attributes.
func (b *Buffer) SetFill(c console.Cell) {
	if c.Rune == 0 {
		c.Rune = ' '
	}
	b.fill = c
}

// CellAt returns the cell at (x, y) in logical coordinates.
func (b *Buffer) CellAt(x, y int) (console.Cell, error) {
	if x < 0 || y < 0 || x >= b.cols || y >= b.rows {
		return console.Cell{}, fmt.Errorf("cell (%d, %d) out of range: %w", x, y, console.ErrInvalidParameter)
	}
	return b.Row(y).Cells[x], nil
}

// FlagAt returns the double-width flag at (x, y).
func (b *Buffer) FlagAt(x, y int) uint8 {
	return b.Row(y).Flags[x]
}

// IncrementCircularBuffer rotates the grid up one row: the top row is
// recycled as a fresh bottom row.
func (b *Buffer) IncrementCircularBuffer() {
	r := &b.row[b.first]
	r.Reset(b.fill)
	r.ID = b.nextID
	b.nextID++
	b.first = (b.first + 1) % b.rows
}

// NewlineCursor moves the cursor to column zero of the next row,
// scrolling the grid when the cursor is already on the bottom row.
func (b *Buffer) NewlineCursor() error {
	b.cursor.Pos.X = 0
	if b.cursor.Pos.Y == b.rows-1 {
		b.IncrementCircularBuffer()
	} else {
		b.cursor.Pos.Y++
	}
	return nil
}

// IncrementCursor advances the cursor one column, wrapping onto the
// next row (and marking the current row soft-wrapped) at the right
// edge.
func (b *Buffer) IncrementCursor() error {
	b.cursor.Pos.X++
	if b.cursor.Pos.X >= b.cols {
		b.Row(b.cursor.Pos.Y).WrapForced = true
		return b.NewlineCursor()
	}
	return nil
}

// InsertCharacter writes a character with its double-width flag and
// attributes at the cursor and advances. A leading half that lands on
// the last column pads the row and wraps first so the pair is never
// split.
func (b *Buffer) InsertCharacter(r rune, flag uint8, attr console.Cell) error {
	if flag&console.CellLeading != 0 && b.cursor.Pos.X == b.cols-1 {
		row := b.Row(b.cursor.Pos.Y)
		pad := attr
		pad.Rune = ' '
		row.Put(b.cursor.Pos.X, pad, 0)
		row.DoubleBytePadded = true
		row.WrapForced = true
		if err := b.NewlineCursor(); err != nil {
			return err
		}
	}
	row := b.Row(b.cursor.Pos.Y)
	cell := attr
	cell.Rune = r
	row.Put(b.cursor.Pos.X, cell, flag)
	if b.cursor.Pos.X == b.cols-1 {
		row.WrapForced = true
		return b.NewlineCursor()
	}
	b.cursor.Pos.X++
	return nil
}

// LastNonSpaceCharacter returns the coordinate of the bottom-most,
// right-most printable character, or (0, 0) when the grid is empty.
func (b *Buffer) LastNonSpaceCharacter() console.Coord {
	for y := b.rows - 1; y >= 0; y-- {
		r := b.Row(y)
		if r.Right > 0 {
			return console.Coord{X: r.Right - 1, Y: y}
		}
	}
	return console.Coord{}
}

// CopyProperties carries cursor presentation and fill attributes over
// from another buffer. The cursor position is not copied.
func (b *Buffer) CopyProperties(other *Buffer) {
	b.cursor.Size = other.cursor.Size
	b.cursor.Visible = other.cursor.Visible
	b.cursor.Double = other.cursor.Double
	b.fill = other.fill
}
