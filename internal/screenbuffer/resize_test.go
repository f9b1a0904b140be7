package screenbuffer

import (
	"errors"
	"testing"

	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/geometry"
)

func typeRunes(t *testing.T, b *Buffer, s string) {
	t.Helper()
	for _, r := range s {
		if err := b.Text().InsertCharacter(r, 0, b.Text().Fill()); err != nil {
			t.Fatalf("InsertCharacter(%q): %v", r, err)
		}
	}
}

func bufferRow(b *Buffer, y int) string {
	row := b.Text().Row(y)
	out := make([]rune, 0, len(row.Cells))
	for _, c := range row.Cells {
		out = append(out, c.Rune)
	}
	for len(out) > 0 && out[len(out)-1] == ' ' {
		out = out[:len(out)-1]
	}
	return string(out)
}

func TestResizeScreenBufferTraditionalHousekeeping(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 10, Rows: 10, WindowCols: 10, WindowRows: 10})
	b.Tabs().Add(4)
	b.Tabs().Add(8)
	if err := b.SetScrollMargins(2, 9); err != nil {
		t.Fatalf("SetScrollMargins: %v", err)
	}
	b.SetSelection(console.Rect{Left: 0, Top: 0, Right: 3, Bottom: 3})

	if err := b.ResizeScreenBuffer(console.Coord{X: 6, Y: 8}, false); err != nil {
		t.Fatalf("ResizeScreenBuffer: %v", err)
	}

	if b.Size() != (console.Coord{X: 6, Y: 8}) {
		t.Fatalf("size = %+v", b.Size())
	}
	if got := b.Tabs().Columns(); len(got) != 1 || got[0] != 4 {
		t.Fatalf("tabs = %v, want only the stop inside the new width", got)
	}
	if _, set := b.ScrollMargins(); set {
		t.Fatalf("margins past the new height must be cleared")
	}
	if _, set := b.Selection(); set {
		t.Fatalf("selection must be invalidated")
	}
	vp := b.Viewport()
	if vp.Right > 5 || vp.Bottom > 7 {
		t.Fatalf("viewport outside buffer: %+v", vp)
	}
}

func TestResizeScreenBufferKeepsMarginsInsideNewHeight(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 10, Rows: 10})
	if err := b.SetScrollMargins(1, 4); err != nil {
		t.Fatalf("SetScrollMargins: %v", err)
	}
	if err := b.ResizeScreenBuffer(console.Coord{X: 10, Y: 8}, false); err != nil {
		t.Fatalf("ResizeScreenBuffer: %v", err)
	}
	if _, set := b.ScrollMargins(); !set {
		t.Fatalf("margins inside the new height must survive")
	}
}

func TestResizeScreenBufferReflowTracksCursorRow(t *testing.T) {
	reg := NewRegistry(true, nil)
	b := newTestBuffer(t, Options{Cols: 6, Rows: 10, WindowCols: 6, WindowRows: 5})
	reg.Insert(b)
	typeRunes(t, b, "abcdefgh")

	if err := b.ResizeScreenBuffer(console.Coord{X: 4, Y: 10}, false); err != nil {
		t.Fatalf("ResizeScreenBuffer: %v", err)
	}
	if got := bufferRow(b, 0); got != "abcd" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := bufferRow(b, 1); got != "efgh" {
		t.Fatalf("row 1 = %q", got)
	}
	// The cursor moved down a row during rewrap; the viewport follows
	// so the cursor row keeps its height on screen.
	if b.Viewport().Top != 1 {
		t.Fatalf("viewport top = %d, want 1", b.Viewport().Top)
	}
}

func TestResizeScreenBufferReflowFailureLeavesStateIntact(t *testing.T) {
	reg := NewRegistry(true, nil)
	b := newTestBuffer(t, Options{Cols: 6, Rows: 4})
	reg.Insert(b)
	typeRunes(t, b, "hello")

	err := b.ResizeScreenBuffer(console.Coord{X: 0, Y: 4}, false)
	if !errors.Is(err, console.ErrInvalidParameter) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
	if b.Size() != (console.Coord{X: 6, Y: 4}) {
		t.Fatalf("size changed on failed resize: %+v", b.Size())
	}
	if got := bufferRow(b, 0); got != "hello" {
		t.Fatalf("content changed on failed resize: %q", got)
	}
}

func TestResizeScreenBufferFiresSizeChange(t *testing.T) {
	reg := NewRegistry(false, nil)
	b := newTestBuffer(t, Options{Cols: 10, Rows: 10})
	reg.Insert(b)

	var gotSize console.Coord
	fired := 0
	reg.OnSizeChange = func(_ *Buffer, size console.Coord) {
		gotSize = size
		fired++
	}
	if err := b.ResizeScreenBuffer(console.Coord{X: 8, Y: 8}, false); err != nil {
		t.Fatalf("ResizeScreenBuffer: %v", err)
	}
	if fired != 1 || gotSize != (console.Coord{X: 8, Y: 8}) {
		t.Fatalf("size change fired %d times with %+v", fired, gotSize)
	}
}

func TestProcessResizeWindowRequiresFont(t *testing.T) {
	b := newTestBuffer(t, Options{Cols: 10, Rows: 10})
	b.font = geometry.FontSize{}
	err := b.ProcessResizeWindow(geometry.PixelRect{}, geometry.PixelRect{Right: 100, Bottom: 100})
	if !errors.Is(err, console.ErrInvalidState) {
		t.Fatalf("expected invalid state without font metrics, got %v", err)
	}
}

func TestProcessResizeWindowAltTracksWindow(t *testing.T) {
	reg := NewRegistry(false, nil)
	main := newTestBuffer(t, Options{
		Cols: 80, Rows: 100, WindowCols: 80, WindowRows: 24,
		Font: geometry.FontSize{X: 8, Y: 16}, HBarPx: 16, VBarPx: 16,
	})
	reg.Insert(main)
	alt, err := main.UseAlternateScreenBuffer()
	if err != nil {
		t.Fatalf("UseAlternateScreenBuffer: %v", err)
	}

	clientOld := geometry.PixelRect{Right: 640, Bottom: 384}
	clientNew := geometry.PixelRect{Right: 320, Bottom: 192}
	if err := alt.ProcessResizeWindow(clientOld, clientNew); err != nil {
		t.Fatalf("ProcessResizeWindow: %v", err)
	}

	// Scroll bars size off the main's buffer, so the smaller window
	// still loses room to both bars before the characters are counted.
	if alt.Size() != (console.Coord{X: 38, Y: 11}) {
		t.Fatalf("alternate size = %+v", alt.Size())
	}
	if !alt.IsMaximizedBoth() {
		t.Fatalf("alternate viewport must track its buffer: %+v", alt.Viewport())
	}
	if main.Size() != (console.Coord{X: 80, Y: 100}) {
		t.Fatalf("main resized while off screen: %+v", main.Size())
	}
	if main.saved == nil {
		t.Fatalf("resize must be stashed for the main to replay")
	}
}

func TestUseMainScreenBufferReplaysStashedResize(t *testing.T) {
	reg := NewRegistry(false, nil)
	main := newTestBuffer(t, Options{
		Cols: 80, Rows: 100, WindowCols: 80, WindowRows: 24,
		Font: geometry.FontSize{X: 8, Y: 16}, HBarPx: 16, VBarPx: 16,
	})
	reg.Insert(main)
	alt, err := main.UseAlternateScreenBuffer()
	if err != nil {
		t.Fatalf("UseAlternateScreenBuffer: %v", err)
	}

	clientOld := geometry.PixelRect{Right: 640, Bottom: 384}
	clientNew := geometry.PixelRect{Right: 320, Bottom: 192}
	if err := alt.ProcessResizeWindow(clientOld, clientNew); err != nil {
		t.Fatalf("ProcessResizeWindow: %v", err)
	}
	if err := alt.UseMainScreenBuffer(); err != nil {
		t.Fatalf("UseMainScreenBuffer: %v", err)
	}

	if main.saved != nil {
		t.Fatalf("stashed resize must be consumed")
	}
	// Outside wrap-text mode a main buffer never shrinks on a window
	// resize; only the
	// viewport follows the smaller window.
	if main.Size() != (console.Coord{X: 80, Y: 100}) {
		t.Fatalf("main size = %+v", main.Size())
	}
	if main.Viewport().Width() != 38 || main.Viewport().Height() != 11 {
		t.Fatalf("main viewport = %+v, want 38x11", main.Viewport())
	}
}

func TestProcessResizeWindowGrowsMainBuffer(t *testing.T) {
	reg := NewRegistry(false, nil)
	b := newTestBuffer(t, Options{
		Cols: 80, Rows: 24, WindowCols: 80, WindowRows: 24,
		Font: geometry.FontSize{X: 8, Y: 16}, HBarPx: 16, VBarPx: 16,
	})
	reg.Insert(b)

	clientOld := geometry.PixelRect{Right: 640, Bottom: 384}
	clientNew := geometry.PixelRect{Right: 800, Bottom: 480}
	if err := b.ProcessResizeWindow(clientOld, clientNew); err != nil {
		t.Fatalf("ProcessResizeWindow: %v", err)
	}
	if b.Size() != (console.Coord{X: 100, Y: 30}) {
		t.Fatalf("size = %+v, want buffer grown to the window", b.Size())
	}
	if b.Viewport().Width() != 100 || b.Viewport().Height() != 30 {
		t.Fatalf("viewport = %+v", b.Viewport())
	}
}
