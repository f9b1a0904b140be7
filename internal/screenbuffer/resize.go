package screenbuffer

import (
	"fmt"

	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/geometry"
)

// ResizeScreenBuffer reshapes the backing buffer to newSize,
// reflowing when wrap-text is on and using the traditional algorithm
// otherwise. Selections are invalidated, tab stops past the new width
// are dropped, and the viewport is pulled back inside the buffer.
func (b *Buffer) ResizeScreenBuffer(newSize console.Coord, doScrollBarUpdate bool) error {
	b.ClearSelection()

	wrap := b.reg != nil && b.reg.WrapText()
	if wrap {
		heightBefore := b.text.Cursor().Pos.Y - b.viewport.Top
		nb, err := b.text.ResizeWithReflow(newSize.X, newSize.Y)
		if err != nil {
			return err
		}
		b.text = nb
		heightAfter := nb.Cursor().Pos.Y - b.viewport.Top
		_ = b.SetViewportOrigin(true, console.Coord{Y: heightAfter - heightBefore})
	} else {
		if err := b.text.ResizeTraditional(newSize.X, newSize.Y); err != nil {
			return err
		}
	}

	b.tabs.TrimToWidth(newSize.X)
	if b.marginsSet && (b.margins.Bottom >= newSize.Y || b.margins.Top >= b.margins.Bottom) {
		b.ClearScrollMargins()
	}
	b.clampViewportToBuffer()

	if b.reg != nil && b.reg.OnCompositionResize != nil {
		if err := b.reg.OnCompositionResize(b, newSize); err != nil {
			return fmt.Errorf("composition resize: %w", console.ErrInvalidHandle)
		}
	}

	if b.IsActive() && doScrollBarUpdate {
		b.UpdateScrollBars(b.clientPx)
	}
	b.logger.Debug("screen buffer resized", "cols", newSize.X, "rows", newSize.Y, "reflow", wrap)
	if b.reg != nil && b.reg.OnSizeChange != nil {
		b.reg.OnSizeChange(b, newSize)
	}
	return nil
}

func (b *Buffer) clampViewportToBuffer() {
	size := b.text.Size()
	vp := b.viewport
	vp.Right = min(vp.Right, size.X-1)
	vp.Bottom = min(vp.Bottom, size.Y-1)
	if vp.Left > vp.Right {
		vp.Left = vp.Right
	}
	if vp.Top > vp.Bottom {
		vp.Top = vp.Bottom
	}
	if vp.Left < 0 {
		vp.Left = 0
	}
	if vp.Top < 0 {
		vp.Top = 0
	}
	b.viewport = vp
}

// ProcessResizeWindow reacts to the window client area changing size.
// The backing buffer reshapes first (some modes tie buffer and window
// width together), then the viewport, then the scroll bars. On an
// alternate buffer the client rectangles are also stashed on the main
// so the main replays the resize when it returns to the screen.
func (b *Buffer) ProcessResizeWindow(clientOld, clientNew geometry.PixelRect) error {
	if b.IsAlt() {
		b.main.saved = &savedResize{old: clientOld, new: clientNew}
	}

	if err := b.adjustScreenBuffer(clientNew); err != nil {
		return err
	}

	size := b.calculateViewportSize(clientNew)
	fromLeft := clientNew.Left != clientOld.Left && clientNew.Right == clientOld.Right
	fromTop := clientNew.Top != clientOld.Top && clientNew.Bottom == clientOld.Bottom
	b.resizingDepth++
	b.resizeViewport(size, fromTop, fromLeft)
	b.resizingDepth--

	b.clientPx = console.Coord{X: clientNew.Width(), Y: clientNew.Height()}
	b.UpdateScrollBars(b.clientPx)
	return nil
}

// adjustScreenBuffer recomputes the backing buffer size for a new
// client area. Wrap-text mode pins the buffer width to the window
// width; an alternate buffer tracks the window in both dimensions;
// otherwise the buffer only ever grows.
func (b *Buffer) adjustScreenBuffer(clientNew geometry.PixelRect) error {
	if b.font.Zero() {
		return fmt.Errorf("font metrics unavailable: %w", console.ErrInvalidState)
	}

	// Scroll bar visibility follows the main's size so the bars don't
	// flicker while an alternate buffer is up.
	oldSize := b.text.Size()
	if b.IsAlt() {
		oldSize = b.main.text.Size()
	}
	newSize := oldSize

	clientPx := console.Coord{X: clientNew.Width(), Y: clientNew.Height()}
	chars := b.charsInClient(oldSize, clientPx)

	wrap := b.reg != nil && b.reg.WrapText()
	if wrap {
		newSize.X = chars.X
	}
	// Reanalyze with the new width in case fixing the edges together
	// changed which scroll bars are needed.
	chars = b.charsInClient(newSize, clientPx)

	if b.IsAlt() {
		// The alternate buffer is exactly the window, never more or
		// less, so it can never grow scroll bars.
		newSize = chars
	} else {
		if chars.X > newSize.X {
			newSize.X = chars.X
		}
		if chars.Y > newSize.Y {
			newSize.Y = chars.Y
		}
	}
	if newSize.X < 1 {
		newSize.X = 1
	}
	if newSize.Y < 1 {
		newSize.Y = 1
	}

	cur := b.text.Size()
	if newSize != cur {
		cursor := b.text.Cursor()
		visible := cursor.Visible
		cursor.Visible = false
		err := b.ResizeScreenBuffer(newSize, false)
		cursor = b.text.Cursor()
		cursor.Visible = visible
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Buffer) charsInClient(bufSize, clientPx console.Coord) console.Coord {
	bars := geometry.ScrollBarVisibility(bufSize, clientPx, b.font, b.hBarPx, b.vBarPx)
	return geometry.WindowSizeFromClientPixels(bars.ClientPx, b.font)
}

// calculateViewportSize converts the client area to the viewport size
// that consumes it, leaving room for scroll bars.
func (b *Buffer) calculateViewportSize(client geometry.PixelRect) console.Coord {
	clientPx := console.Coord{X: client.Width(), Y: client.Height()}
	size := b.charsInClient(b.text.Size(), clientPx)
	if size.X < 1 {
		size.X = 1
	}
	if size.Y < 1 {
		size.Y = 1
	}
	return size
}
