package screenbuffer

import (
	"fmt"

	"pkt.systems/konsol/internal/console"
)

// MainBuffer resolves to the main side of a main/alt pair.
func (b *Buffer) MainBuffer() *Buffer {
	if b.main != nil {
		return b.main
	}
	return b
}

// AltBuffer returns the paired alternate buffer, or nil.
func (b *Buffer) AltBuffer() *Buffer { return b.alt }

// ActiveBuffer resolves to the buffer currently on screen for this
// pair: the alternate when one exists, the buffer itself otherwise.
func (b *Buffer) ActiveBuffer() *Buffer {
	if b.alt != nil {
		return b.alt
	}
	return b
}

// UseAlternateScreenBuffer flips the pair to a fresh alternate buffer
// sized to the current viewport. The main's output pipeline is handed
// to the new alternate; a previous alternate is torn down after the
// new link is in place so custody never dangles. The new alternate
// becomes the registry's active buffer.
func (b *Buffer) UseAlternateScreenBuffer() (*Buffer, error) {
	if b.reg == nil {
		return nil, fmt.Errorf("buffer not registered: %w", console.ErrInvalidState)
	}
	// b may be the old alternate, whose registry link is cleared when it
	// is removed below.
	reg := b.reg
	main := b.MainBuffer()

	// A window resize that happened while a previous alternate was up
	// has not reached the main yet; replay it before sizing the new
	// alternate off the viewport.
	if main.saved != nil {
		saved := *main.saved
		main.saved = nil
		if err := main.ProcessResizeWindow(saved.old, saved.new); err != nil {
			return nil, err
		}
	}

	vp := b.ActiveBuffer().viewport
	alt, err := New(Options{
		Cols:       vp.Width(),
		Rows:       vp.Height(),
		WindowCols: vp.Width(),
		WindowRows: vp.Height(),
		Attributes: main.attributes,
		Font:       main.font,
		CursorSize: textCursorSmallSize,
		HBarPx:     main.hBarPx,
		VBarPx:     main.vBarPx,
		Logger:     main.logger,
	})
	if err != nil {
		return nil, err
	}
	alt.outputMode = main.outputMode
	alt.clientPx = main.clientPx

	reg.Insert(alt)

	oldAlt := main.alt
	alt.main = main
	main.alt = alt

	// Tearing down the old alternate re-points custody at the main;
	// it must happen after the new link exists and before the
	// pipeline is redirected at the new alternate.
	if oldAlt != nil {
		reg.Remove(oldAlt)
	}

	alt.pipeline = main.pipeline
	if alt.pipeline != nil {
		alt.pipeline.Attach(alt)
	}

	reg.SetActive(alt)
	main.logger.Debug("switched to alternate screen buffer",
		"cols", alt.text.Cols(), "rows", alt.text.Rows())
	if reg.OnSizeChange != nil {
		reg.OnSizeChange(alt, alt.text.Size())
	}
	return alt, nil
}

// UseMainScreenBuffer flips the pair back to the main buffer and
// destroys the alternate. Custody of the output pipeline returns to
// the main during teardown. Calling this on a main without an
// alternate is a no-op.
func (b *Buffer) UseMainScreenBuffer() error {
	if b.reg == nil {
		return fmt.Errorf("buffer not registered: %w", console.ErrInvalidState)
	}
	if !b.IsAlt() {
		return nil
	}
	main := b.main

	if main.saved != nil {
		saved := *main.saved
		main.saved = nil
		if err := main.ProcessResizeWindow(saved.old, saved.new); err != nil {
			return err
		}
	}

	b.reg.SetActive(main)
	// The alternate kept the scroll bars disabled; the main needs
	// them recomputed.
	main.UpdateScrollBars(main.clientPx)

	main.alt = nil
	b.reg.Remove(b)

	main.logger.Debug("switched to main screen buffer")
	if main.reg != nil && main.reg.OnSizeChange != nil {
		main.reg.OnSizeChange(main, main.text.Size())
	}
	return nil
}

// textCursorSmallSize is the cursor height given to fresh alternate
// buffers.
const textCursorSmallSize = 25
