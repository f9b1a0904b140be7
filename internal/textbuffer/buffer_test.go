package textbuffer

import (
	"errors"
	"testing"

	"pkt.systems/konsol/internal/console"
)

func mustNew(t *testing.T, cols, rows int) *Buffer {
	t.Helper()
	b, err := New(cols, rows, console.Cell{Rune: ' '})
	if err != nil {
		t.Fatalf("New(%d, %d): %v", cols, rows, err)
	}
	return b
}

func typeString(t *testing.T, b *Buffer, s string) {
	t.Helper()
	for _, r := range s {
		if err := b.InsertCharacter(r, 0, b.Fill()); err != nil {
			t.Fatalf("InsertCharacter(%q): %v", r, err)
		}
	}
}

func rowString(b *Buffer, y int) string {
	row := b.Row(y)
	out := make([]rune, 0, len(row.Cells))
	for _, c := range row.Cells {
		out = append(out, c.Rune)
	}
	for len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return string(out)
}

func TestNewRejectsBadDims(t *testing.T) {
	if _, err := New(0, 10, console.Cell{}); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for zero cols, got %v", err)
	}
	if _, err := New(10, console.MaxBufferDim+1, console.Cell{}); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter for oversized rows, got %v", err)
	}
}

func TestPutTracksExtent(t *testing.T) {
	b := mustNew(t, 10, 2)
	row := b.Row(0)
	row.Put(3, console.Cell{Rune: 'x'}, 0)
	row.Put(6, console.Cell{Rune: 'y'}, 0)
	if row.Left != 3 || row.Right != 7 {
		t.Fatalf("expected extent [3, 7), got [%d, %d)", row.Left, row.Right)
	}
	row.Put(1, console.Cell{Rune: ' '}, 0)
	if row.Left != 3 {
		t.Fatalf("plain space must not extend measurement, left = %d", row.Left)
	}
	row.Put(8, console.Cell{Rune: ' '}, console.CellTrailing)
	if row.Right != 9 {
		t.Fatalf("flagged cell must extend measurement, right = %d", row.Right)
	}
}

func TestIncrementCircularBufferRotates(t *testing.T) {
	b := mustNew(t, 4, 3)
	b.Row(0).Put(0, console.Cell{Rune: 'a'}, 0)
	b.Row(1).Put(0, console.Cell{Rune: 'b'}, 0)
	b.Row(2).Put(0, console.Cell{Rune: 'c'}, 0)

	b.IncrementCircularBuffer()

	if got := rowString(b, 0); got != "b" {
		t.Fatalf("expected old row 1 on top, got %q", got)
	}
	if got := rowString(b, 2); got != "" {
		t.Fatalf("expected recycled bottom row empty, got %q", got)
	}
	if b.FirstRowIndex() != 1 {
		t.Fatalf("expected first row index 1, got %d", b.FirstRowIndex())
	}
	if b.Row(2).ID != 3 {
		t.Fatalf("expected recycled row ID 3, got %d", b.Row(2).ID)
	}
}

func TestNewlineCursorScrollsAtBottom(t *testing.T) {
	b := mustNew(t, 4, 2)
	b.Cursor().Pos = console.Coord{X: 2, Y: 1}
	b.Row(0).Put(0, console.Cell{Rune: 'a'}, 0)

	if err := b.NewlineCursor(); err != nil {
		t.Fatalf("NewlineCursor: %v", err)
	}
	if b.Cursor().Pos != (console.Coord{X: 0, Y: 1}) {
		t.Fatalf("expected cursor at (0, 1), got %+v", b.Cursor().Pos)
	}
	if got := rowString(b, 0); got != "" {
		t.Fatalf("expected top row scrolled out, got %q", got)
	}
}

func TestInsertCharacterWrapsAndMarksRow(t *testing.T) {
	b := mustNew(t, 4, 3)
	typeString(t, b, "abcde")

	if got := rowString(b, 0); got != "abcd" {
		t.Fatalf("expected full first row, got %q", got)
	}
	if !b.Row(0).WrapForced {
		t.Fatalf("expected first row soft-wrapped")
	}
	if got := rowString(b, 1); got != "e" {
		t.Fatalf("expected overflow on second row, got %q", got)
	}
	if b.Cursor().Pos != (console.Coord{X: 1, Y: 1}) {
		t.Fatalf("cursor = %+v", b.Cursor().Pos)
	}
}

func TestInsertCharacterWidePairNeverSplit(t *testing.T) {
	b := mustNew(t, 4, 3)
	typeString(t, b, "abc")
	if err := b.InsertCharacter('界', console.CellLeading, b.Fill()); err != nil {
		t.Fatalf("leading half: %v", err)
	}
	if err := b.InsertCharacter(' ', console.CellTrailing, b.Fill()); err != nil {
		t.Fatalf("trailing half: %v", err)
	}

	row0 := b.Row(0)
	if !row0.DoubleBytePadded || !row0.WrapForced {
		t.Fatalf("expected padded soft-wrapped first row, padded=%v wrapped=%v",
			row0.DoubleBytePadded, row0.WrapForced)
	}
	if row0.Cells[3].Rune != ' ' {
		t.Fatalf("expected pad cell at column 3, got %q", row0.Cells[3].Rune)
	}
	row1 := b.Row(1)
	if row1.Cells[0].Rune != '界' || row1.Flags[0] != console.CellLeading {
		t.Fatalf("expected leading half at (0, 1), got %q flag %d", row1.Cells[0].Rune, row1.Flags[0])
	}
	if row1.Flags[1] != console.CellTrailing {
		t.Fatalf("expected trailing half at (1, 1), flag %d", row1.Flags[1])
	}
}

func TestLastNonSpaceCharacter(t *testing.T) {
	b := mustNew(t, 8, 4)
	if got := b.LastNonSpaceCharacter(); got != (console.Coord{}) {
		t.Fatalf("empty grid: got %+v", got)
	}
	b.Row(1).Put(5, console.Cell{Rune: 'q'}, 0)
	if got := b.LastNonSpaceCharacter(); got != (console.Coord{X: 5, Y: 1}) {
		t.Fatalf("got %+v", got)
	}
}

func TestResizeTraditionalShrinkKeepsCursorWindow(t *testing.T) {
	b := mustNew(t, 4, 4)
	for y, r := range []rune{'a', 'b', 'c', 'd'} {
		b.Row(y).Put(0, console.Cell{Rune: r}, 0)
	}
	b.Cursor().Pos = console.Coord{X: 1, Y: 3}

	if err := b.ResizeTraditional(4, 2); err != nil {
		t.Fatalf("ResizeTraditional: %v", err)
	}
	if got := rowString(b, 0); got != "c" {
		t.Fatalf("expected window ending at the cursor, top row %q", got)
	}
	if got := rowString(b, 1); got != "d" {
		t.Fatalf("bottom row %q", got)
	}
	if b.Cursor().Pos != (console.Coord{X: 1, Y: 1}) {
		t.Fatalf("cursor = %+v", b.Cursor().Pos)
	}
	if b.FirstRowIndex() != 0 {
		t.Fatalf("expected rotation straightened, first = %d", b.FirstRowIndex())
	}
}

func TestResizeTraditionalGrowExtendsLastAttribute(t *testing.T) {
	b := mustNew(t, 3, 2)
	colored := console.Cell{Rune: 'z', BG: console.ColorIndexed | 2}
	b.Row(0).Put(2, colored, 0)

	if err := b.ResizeTraditional(6, 2); err != nil {
		t.Fatalf("ResizeTraditional: %v", err)
	}
	cell, err := b.CellAt(4, 0)
	if err != nil {
		t.Fatalf("CellAt: %v", err)
	}
	if cell.BG != colored.BG || cell.Rune != ' ' {
		t.Fatalf("expected final attribute run extended, got %+v", cell)
	}
}

func TestResizeTraditionalClampsCursorColumn(t *testing.T) {
	b := mustNew(t, 8, 2)
	b.Cursor().Pos = console.Coord{X: 7, Y: 0}
	if err := b.ResizeTraditional(4, 2); err != nil {
		t.Fatalf("ResizeTraditional: %v", err)
	}
	if b.Cursor().Pos.X != 3 {
		t.Fatalf("expected cursor clamped to column 3, got %d", b.Cursor().Pos.X)
	}
}

func TestResizeWithReflowRewrapsSoftWrap(t *testing.T) {
	b := mustNew(t, 6, 4)
	typeString(t, b, "abcdefgh")

	nb, err := b.ResizeWithReflow(4, 4)
	if err != nil {
		t.Fatalf("ResizeWithReflow: %v", err)
	}
	if got := rowString(nb, 0); got != "abcd" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := rowString(nb, 1); got != "efgh" {
		t.Fatalf("row 1 = %q", got)
	}
	if !nb.Row(0).WrapForced || !nb.Row(1).WrapForced {
		t.Fatalf("expected soft wraps on both full rows")
	}
	if nb.Cursor().Pos != (console.Coord{X: 0, Y: 2}) {
		t.Fatalf("cursor = %+v", nb.Cursor().Pos)
	}
}

func TestResizeWithReflowKeepsHardBreaks(t *testing.T) {
	b := mustNew(t, 6, 4)
	typeString(t, b, "ab")
	if err := b.NewlineCursor(); err != nil {
		t.Fatalf("NewlineCursor: %v", err)
	}
	typeString(t, b, "cd")

	nb, err := b.ResizeWithReflow(10, 4)
	if err != nil {
		t.Fatalf("ResizeWithReflow: %v", err)
	}
	if got := rowString(nb, 0); got != "ab" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := rowString(nb, 1); got != "cd" {
		t.Fatalf("hard break must survive widening, row 1 = %q", got)
	}
	if nb.Cursor().Pos != (console.Coord{X: 2, Y: 1}) {
		t.Fatalf("cursor = %+v", nb.Cursor().Pos)
	}
}

func TestResizeWithReflowJoinsSoftWrapOnWiden(t *testing.T) {
	b := mustNew(t, 4, 4)
	typeString(t, b, "abcdef")

	nb, err := b.ResizeWithReflow(8, 4)
	if err != nil {
		t.Fatalf("ResizeWithReflow: %v", err)
	}
	if got := rowString(nb, 0); got != "abcdef" {
		t.Fatalf("expected soft wrap joined, row 0 = %q", got)
	}
	if nb.Cursor().Pos != (console.Coord{X: 6, Y: 0}) {
		t.Fatalf("cursor = %+v", nb.Cursor().Pos)
	}
}

func TestResizeWithReflowCursorPastEnd(t *testing.T) {
	b := mustNew(t, 6, 4)
	typeString(t, b, "abcdef")
	// Typing the sixth character wrapped the cursor past the text.
	if b.Cursor().Pos != (console.Coord{X: 0, Y: 1}) {
		t.Fatalf("setup cursor = %+v", b.Cursor().Pos)
	}

	nb, err := b.ResizeWithReflow(3, 4)
	if err != nil {
		t.Fatalf("ResizeWithReflow: %v", err)
	}
	if got := rowString(nb, 0); got != "abc" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := rowString(nb, 1); got != "def" {
		t.Fatalf("row 1 = %q", got)
	}
	if nb.Cursor().Pos != (console.Coord{X: 0, Y: 2}) {
		t.Fatalf("cursor = %+v", nb.Cursor().Pos)
	}
}

func TestResizeWithReflowLeavesOriginalUntouched(t *testing.T) {
	b := mustNew(t, 6, 3)
	typeString(t, b, "hello")

	if _, err := b.ResizeWithReflow(3, 3); err != nil {
		t.Fatalf("ResizeWithReflow: %v", err)
	}
	if got := rowString(b, 0); got != "hello" {
		t.Fatalf("original mutated: row 0 = %q", got)
	}
	if b.Cols() != 6 || b.Rows() != 3 {
		t.Fatalf("original dimensions changed: %dx%d", b.Cols(), b.Rows())
	}
}

func TestResizeWithReflowWidePairMovesTogether(t *testing.T) {
	b := mustNew(t, 4, 4)
	typeString(t, b, "abc")
	if err := b.InsertCharacter('界', console.CellLeading, b.Fill()); err != nil {
		t.Fatalf("leading half: %v", err)
	}
	if err := b.InsertCharacter(' ', console.CellTrailing, b.Fill()); err != nil {
		t.Fatalf("trailing half: %v", err)
	}

	nb, err := b.ResizeWithReflow(8, 4)
	if err != nil {
		t.Fatalf("ResizeWithReflow: %v", err)
	}
	row := nb.Row(0)
	if row.Cells[3].Rune != '界' || row.Flags[3] != console.CellLeading {
		t.Fatalf("expected leading half at column 3, got %q flag %d", row.Cells[3].Rune, row.Flags[3])
	}
	if row.Flags[4] != console.CellTrailing {
		t.Fatalf("expected trailing half at column 4, flag %d", row.Flags[4])
	}
	if row.DoubleBytePadded {
		t.Fatalf("pad artifact must not survive rewrap")
	}
}
