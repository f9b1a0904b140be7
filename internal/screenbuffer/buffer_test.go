package screenbuffer

import (
	"errors"
	"testing"

	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/geometry"
)

func newTestBuffer(t *testing.T, opts Options) *Buffer {
	t.Helper()
	b, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNewDefaultsWindowToBuffer(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 40, Rows: 20})
	if b.Viewport() != (console.Rect{Left: 0, Top: 0, Right: 39, Bottom: 19}) {
		t.Fatalf("viewport = %+v", b.Viewport())
	}
	if !b.IsMaximizedBoth() {
		t.Fatalf("expected maximized viewport")
	}
}

func TestNewClampsOversizedWindow(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 40, Rows: 20, WindowCols: 100, WindowRows: 50})
	if b.Viewport().Width() != 40 || b.Viewport().Height() != 20 {
		t.Fatalf("viewport = %+v", b.Viewport())
	}
}

func TestNewVTLevelSetsOutputMode(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 10, Rows: 10, VTLevel: 1})
	want := ModeProcessedOutput | ModeWrapAtEOL | ModeVirtualTerminal
	if b.OutputMode() != want {
		t.Fatalf("output mode = %#x, want %#x", b.OutputMode(), want)
	}
	b2 := newTestBuffer(t, Options{Cols: 10, Rows: 10})
	if b2.OutputMode()&ModeVirtualTerminal != 0 {
		t.Fatalf("VT mode set without a VT level")
	}
}

func TestScrollMarginsValidation(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 20, Rows: 10})

	if err := b.SetScrollMargins(2, 7); err != nil {
		t.Fatalf("SetScrollMargins: %v", err)
	}
	m, set := b.ScrollMargins()
	if !set || m.Top != 2 || m.Bottom != 7 || m.Left != 0 || m.Right != 19 {
		t.Fatalf("margins = %+v set=%v", m, set)
	}

	if err := b.SetScrollMargins(5, 5); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected rejection for top == bottom, got %v", err)
	}
	if err := b.SetScrollMargins(0, 10); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected rejection for bottom past grid, got %v", err)
	}

	b.ClearScrollMargins()
	if _, set := b.ScrollMargins(); set {
		t.Fatalf("expected margins cleared")
	}
}

func TestSetCursorInformationValidation(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 10, Rows: 10})
	if err := b.SetCursorInformation(50, false); err != nil {
		t.Fatalf("SetCursorInformation: %v", err)
	}
	cur := b.Cursor()
	if cur.Size != 50 || cur.Visible {
		t.Fatalf("cursor = %+v", cur)
	}
	if err := b.SetCursorInformation(0, true); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected rejection for size 0, got %v", err)
	}
	if err := b.SetCursorInformation(101, true); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected rejection for size 101, got %v", err)
	}
}

func TestSetCursorPositionScrollsViewport(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 80, Rows: 100, WindowCols: 80, WindowRows: 24})

	if err := b.SetCursorPosition(console.Coord{X: 0, Y: 50}, true); err != nil {
		t.Fatalf("SetCursorPosition: %v", err)
	}
	vp := b.Viewport()
	if vp.Bottom != 50 || vp.Top != 27 {
		t.Fatalf("viewport = %+v, want rows 27..50", vp)
	}

	if err := b.SetCursorPosition(console.Coord{X: 0, Y: 200}, true); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected rejection past grid, got %v", err)
	}
}

func TestSetCursorPositionWithoutTurnOnKeepsViewport(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 80, Rows: 100, WindowCols: 80, WindowRows: 24})
	before := b.Viewport()
	if err := b.SetCursorPosition(console.Coord{X: 0, Y: 50}, false); err != nil {
		t.Fatalf("SetCursorPosition: %v", err)
	}
	if b.Viewport() != before {
		t.Fatalf("viewport moved: %+v", b.Viewport())
	}
}

func TestMakeCursorVisibleMinimalShift(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 80, Rows: 100, WindowCols: 80, WindowRows: 24})
	_ = b.SetViewportOrigin(false, console.Coord{X: 0, Y: 40})

	b.MakeCursorVisible(console.Coord{X: 0, Y: 30})
	if b.Viewport().Top != 30 {
		t.Fatalf("expected viewport pulled up to row 30, got %+v", b.Viewport())
	}

	b.MakeCursorVisible(console.Coord{X: 0, Y: 31})
	if b.Viewport().Top != 30 {
		t.Fatalf("in-view position must not move the viewport, got %+v", b.Viewport())
	}
}

func TestSetViewportOriginRejectsOutside(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 80, Rows: 100, WindowCols: 80, WindowRows: 24})
	if err := b.SetViewportOrigin(false, console.Coord{X: 0, Y: 80}); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected rejection past grid, got %v", err)
	}
	if err := b.SetViewportOrigin(true, console.Coord{Y: -1}); !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected rejection above grid, got %v", err)
	}
	if err := b.SetViewportOrigin(true, console.Coord{}); err != nil {
		t.Fatalf("zero relative move must be a no-op, got %v", err)
	}
}

func TestSetViewportRectShiftsNegativeOrigin(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 80, Rows: 100})
	b.SetViewportRect(console.Rect{Left: -2, Top: -3, Right: 5, Bottom: 4})
	vp := b.Viewport()
	if vp != (console.Rect{Left: 0, Top: 0, Right: 7, Bottom: 7}) {
		t.Fatalf("viewport = %+v", vp)
	}
}

func TestSelectionClipsToBuffer(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 10, Rows: 10})
	b.SetSelection(console.Rect{Left: -5, Top: 2, Right: 50, Bottom: 3})
	sel, set := b.Selection()
	if !set || sel != (console.Rect{Left: 0, Top: 2, Right: 9, Bottom: 3}) {
		t.Fatalf("selection = %+v set=%v", sel, set)
	}
	b.ClearSelection()
	if _, set := b.Selection(); set {
		t.Fatalf("expected selection cleared")
	}
}

func TestSetAttributesPropagatesToFill(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 10, Rows: 10})
	attrs := console.Cell{Rune: ' ', BG: console.ColorIndexed | 4}
	b.SetAttributes(attrs)
	if b.Text().Fill().BG != attrs.BG {
		t.Fatalf("fill = %+v", b.Text().Fill())
	}
}

func TestSnapshotCopiesGridInLogicalOrder(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 4, Rows: 3, WindowCols: 4, WindowRows: 2})
	b.SetTitle("demo")
	b.Text().Row(0).Put(0, console.Cell{Rune: 'a'}, 0)
	b.Text().Row(2).Put(1, console.Cell{Rune: 'z'}, 0)
	b.Text().IncrementCircularBuffer()

	snap := b.Snapshot()
	if snap.Cols != 4 || snap.Rows != 3 {
		t.Fatalf("snapshot dims %dx%d", snap.Cols, snap.Rows)
	}
	if snap.Title != "demo" {
		t.Fatalf("title = %q", snap.Title)
	}
	// After rotation the old row 2 is logical row 1.
	cell, err := snap.CellAt(1, 1)
	if err != nil {
		t.Fatalf("CellAt: %v", err)
	}
	if cell.Rune != 'z' {
		t.Fatalf("expected rotated content at (1, 1), got %q", cell.Rune)
	}
	cell, err = snap.CellAt(0, 2)
	if err != nil {
		t.Fatalf("CellAt: %v", err)
	}
	if cell.Rune != ' ' {
		t.Fatalf("expected recycled bottom row blank, got %q", cell.Rune)
	}
}

func TestUpdateScrollBarsSkipsAlt(t *testing.T) {
	reg := NewRegistry(false, nil)
	main := newTestBuffer(t, Options{
		Cols: 80, Rows: 100, WindowCols: 80, WindowRows: 24,
		Font: geometry.FontSize{X: 8, Y: 16}, HBarPx: 16, VBarPx: 16,
	})
	reg.Insert(main)

	main.UpdateScrollBars(console.Coord{X: 640, Y: 384})
	if !main.ScrollBars().Vertical {
		t.Fatalf("expected vertical scroll bar for 100-row buffer in a 24-row window")
	}

	alt, err := main.UseAlternateScreenBuffer()
	if err != nil {
		t.Fatalf("UseAlternateScreenBuffer: %v", err)
	}
	alt.UpdateScrollBars(console.Coord{X: 640, Y: 384})
	sb := alt.ScrollBars()
	if sb.Vertical || sb.Horizontal {
		t.Fatalf("alternate buffer must not show scroll bars: %+v", sb)
	}
}
