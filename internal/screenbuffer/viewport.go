package screenbuffer

import (
	"fmt"

	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/geometry"
)

// SetViewportOrigin moves the viewport without changing its size.
// With relative true the origin is a delta from the current position.
// A move that would push any edge outside the buffer is rejected.
func (b *Buffer) SetViewportOrigin(relative bool, origin console.Coord) error {
	if relative {
		if origin.X == 0 && origin.Y == 0 {
			return nil
		}
	} else if origin.X == b.viewport.Left && origin.Y == b.viewport.Top {
		return nil
	}

	nw := b.viewport
	if relative {
		nw.Left += origin.X
		nw.Right += origin.X
		nw.Top += origin.Y
		nw.Bottom += origin.Y
	} else {
		w, h := b.viewport.Width(), b.viewport.Height()
		nw = console.Rect{Left: origin.X, Top: origin.Y, Right: origin.X + w - 1, Bottom: origin.Y + h - 1}
	}

	size := b.text.Size()
	if nw.Left < 0 || nw.Top < 0 || nw.Right >= size.X || nw.Bottom >= size.Y {
		return fmt.Errorf("viewport origin (%d, %d): %w", origin.X, origin.Y, console.ErrInvalidParameter)
	}

	b.viewport = nw
	b.logger.Debug("viewport origin", "left", nw.Left, "top", nw.Top)
	return nil
}

// SetViewportRect replaces the viewport rectangle, clamping it into
// the buffer. Negative left/top shift the rectangle instead of
// truncating it.
func (b *Buffer) SetViewportRect(r console.Rect) {
	if r == b.viewport {
		return
	}
	if r.Left < 0 {
		r.Right -= r.Left
		r.Left = 0
	}
	if r.Top < 0 {
		r.Bottom -= r.Top
		r.Top = 0
	}
	size := b.text.Size()
	r.Right = min(r.Right, size.X-1)
	r.Bottom = min(r.Bottom, size.Y-1)
	b.viewport = r
	b.logger.Debug("viewport rect",
		"left", r.Left, "top", r.Top, "right", r.Right, "bottom", r.Bottom)
}

// resizeViewport adjusts the viewport to the requested character size.
// fromLeft and fromTop select which edges absorb the change; growing
// from the bottom stops at the end of valid text before it starts
// scrolling content off the top.
func (b *Buffer) resizeViewport(size console.Coord, fromTop, fromLeft bool) {
	deltaX := size.X - b.viewport.Width()
	deltaY := size.Y - b.viewport.Height()
	buf := b.text.Size()
	vp := b.viewport

	if fromLeft {
		leftProposed := vp.Left - deltaX
		if leftProposed >= 0 {
			vp.Left -= deltaX
		} else {
			vp.Left = 0
			vp.Right += -leftProposed
		}
	} else {
		rightProposed := vp.Right + deltaX
		if rightProposed <= buf.X-1 {
			vp.Right += deltaX
		} else {
			vp.Right = buf.X - 1
			vp.Left -= rightProposed - (buf.X - 1)
		}
	}

	if fromTop {
		topProposed := vp.Top - deltaY
		if topProposed >= 0 {
			if vp.Top > 0 {
				vp.Top -= deltaY
			} else {
				// Stuck to the top of the buffer: trim the bottom so
				// the first rows stay in view.
				vp.Bottom += deltaY
			}
		} else {
			vp.Top = 0
			vp.Bottom += -topProposed
		}
	} else {
		bottomProposed := vp.Bottom + deltaY
		if bottomProposed <= buf.Y-1 {
			validEnd := b.text.LastNonSpaceCharacter()
			if vp.Bottom+deltaY < validEnd.Y {
				vp.Top -= deltaY
				if vp.Top < 0 {
					remainder := -vp.Top
					vp.Top = 0
					vp.Bottom += remainder
				}
			} else {
				vp.Bottom += deltaY
			}
		} else {
			vp.Bottom = buf.Y - 1
			vp.Top -= bottomProposed - (buf.Y - 1)
		}
	}

	if vp.Left < 0 {
		vp.Right -= vp.Left
		vp.Left = 0
	}
	if vp.Top < 0 {
		vp.Bottom -= vp.Top
		vp.Top = 0
	}
	vp.Right = min(vp.Right, buf.X-1)
	vp.Bottom = min(vp.Bottom, buf.Y-1)

	b.viewport = vp
	b.logger.Debug("viewport resized",
		"left", vp.Left, "top", vp.Top, "right", vp.Right, "bottom", vp.Bottom)
}

// SetViewportSize resizes the viewport anchored at the top-left.
func (b *Buffer) SetViewportSize(size console.Coord) error {
	buf := b.text.Size()
	if size.X < 1 || size.Y < 1 || size.X > buf.X || size.Y > buf.Y {
		return fmt.Errorf("viewport size (%d, %d): %w", size.X, size.Y, console.ErrInvalidParameter)
	}
	b.resizeViewport(size, false, false)
	return nil
}

// MakeCursorVisible shifts the viewport origin the minimal distance
// needed to bring the position into view.
func (b *Buffer) MakeCursorVisible(pos console.Coord) {
	origin := console.Coord{X: b.viewport.Left, Y: b.viewport.Top}
	if pos.X > b.viewport.Right {
		origin.X = pos.X - b.viewport.Width() + 1
	} else if pos.X < b.viewport.Left {
		origin.X = pos.X
	}
	if pos.Y > b.viewport.Bottom {
		origin.Y = pos.Y - b.viewport.Height() + 1
	} else if pos.Y < b.viewport.Top {
		origin.Y = pos.Y
	}
	_ = b.SetViewportOrigin(false, origin)
}

// IsMaximizedX reports whether the viewport spans the buffer width.
func (b *Buffer) IsMaximizedX() bool {
	return b.viewport.Left == 0 && b.viewport.Right == b.text.Cols()-1
}

// IsMaximizedY reports whether the viewport spans the buffer height.
func (b *Buffer) IsMaximizedY() bool {
	return b.viewport.Top == 0 && b.viewport.Bottom == b.text.Rows()-1
}

// IsMaximizedBoth reports whether the viewport covers the whole
// buffer.
func (b *Buffer) IsMaximizedBoth() bool { return b.IsMaximizedX() && b.IsMaximizedY() }

// UpdateScrollBars recomputes scroll-bar visibility for the current
// buffer and window. Re-entered viewport mutation suppresses the
// recomputation; alternate buffers never show scroll bars.
func (b *Buffer) UpdateScrollBars(clientPx console.Coord) {
	if b.resizingDepth > 0 {
		return
	}
	if b.IsAlt() {
		b.bars = geometry.ScrollBars{ClientPx: clientPx}
		return
	}
	b.bars = geometry.ScrollBarVisibility(b.text.Size(), clientPx, b.font, b.hBarPx, b.vBarPx)
}

// ScrollBars returns the last computed scroll-bar state.
func (b *Buffer) ScrollBars() geometry.ScrollBars { return b.bars }
