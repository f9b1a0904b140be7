package textbuffer

import (
	"fmt"

	"pkt.systems/konsol/internal/console"
)

// ResizeWithReflow builds a replacement grid at the new size with the
// old content rewrapped to the new width. Hard line breaks (rows that
// were not soft-wrapped) stay mandatory breaks; soft-wrap positions
// move freely. The returned buffer carries the homed cursor; the old
// buffer is left untouched so a failed resize has no visible effect.
func (b *Buffer) ResizeWithReflow(newCols, newRows int) (*Buffer, error) {
	if newCols >= 0x7fff || newRows >= 0x7fff {
		return nil, fmt.Errorf("screen buffer size (%d, %d): %w", newCols, newRows, console.ErrInvalidParameter)
	}
	nb, err := New(newCols, newRows, b.fill)
	if err != nil {
		return nil, err
	}

	oldCursor := b.cursor.Pos
	oldLast := b.LastNonSpaceCharacter()
	oldRowsTotal := oldLast.Y + 1
	oldCols := b.cols

	var newCursor console.Coord
	found := false
	for y := 0; y < oldRowsTotal; y++ {
		row := b.Row(y)
		right := row.Right
		if row.WrapForced {
			// A soft-wrapped row is full to the edge even when the
			// measurement stopped at trailing spaces; a double-byte
			// pad cell at the edge is an artifact, not content.
			right = oldCols
			if row.DoubleBytePadded {
				right--
			}
		}
		for x := 0; x < right; x++ {
			if x == oldCursor.X && y == oldCursor.Y {
				newCursor = nb.cursor.Pos
				found = true
			}
			cell := row.Cells[x]
			if err := nb.InsertCharacter(cell.Rune, row.Flags[x], cell); err != nil {
				return nil, fmt.Errorf("reflow insert: %w", err)
			}
		}
		if right < oldCols && !row.WrapForced {
			if right == oldCursor.X && y == oldCursor.Y {
				newCursor = nb.cursor.Pos
				found = true
			}
			if y < oldRowsTotal-1 {
				if err := nb.NewlineCursor(); err != nil {
					return nil, fmt.Errorf("reflow newline: %w", err)
				}
			}
		}
	}

	nb.CopyProperties(b)

	if found {
		nb.cursor.Pos = newCursor
	} else {
		// The cursor sat past the last character. Replay the offset
		// from the end of text, minus one newline when either side's
		// last row already advanced the cursor with a soft wrap.
		iNewlines := oldCursor.Y - oldLast.Y
		iIncrements := oldCursor.X - oldLast.X
		newLast := nb.LastNonSpaceCharacter()
		if nb.Row(newLast.Y).WrapForced {
			iNewlines = max(iNewlines-1, 0)
		} else if b.Row(oldLast.Y).WrapForced {
			iNewlines = max(iNewlines-1, 0)
		}
		for i := 0; i < iNewlines; i++ {
			if err := nb.NewlineCursor(); err != nil {
				return nil, err
			}
		}
		for i := 0; i < iIncrements-1; i++ {
			if err := nb.IncrementCursor(); err != nil {
				return nil, err
			}
		}
	}
	return nb, nil
}
