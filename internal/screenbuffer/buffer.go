// Package screenbuffer implements the windowed screen buffer: the
// aggregate of a text grid, a viewport onto it, tab stops, scroll
// margins, default attributes, and the main/alternate pairing with its
// shared output pipeline. Buffers live in a Registry which tracks the
// active one.
package screenbuffer

import (
	"fmt"

	"pkt.systems/pslog"

	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/geometry"
	"pkt.systems/konsol/internal/textbuffer"
)

// Output mode flags.
const (
	ModeProcessedOutput uint32 = 1 << 0
	ModeWrapAtEOL       uint32 = 1 << 1
	ModeVirtualTerminal uint32 = 1 << 2
)

// Pipeline is the output machinery a main/alt pair shares custody of.
// Attach re-points it at a different buffer; all subsequent writes
// land there.
type Pipeline interface {
	Attach(b *Buffer)
}

type savedResize struct {
	old geometry.PixelRect
	new geometry.PixelRect
}

// Options configures a new screen buffer.
type Options struct {
	Cols       int
	Rows       int
	WindowCols int
	WindowRows int
	Attributes console.Cell
	Font       geometry.FontSize
	CursorSize int
	VTLevel    int
	HBarPx     int
	VBarPx     int
	Logger     pslog.Logger
}

// Buffer is one screen buffer: the backing grid plus everything that
// positions and paints it.
type Buffer struct {
	text            *textbuffer.Buffer
	viewport        console.Rect
	attributes      console.Cell
	popupAttributes console.Cell
	outputMode      uint32
	margins         console.Rect
	marginsSet      bool
	tabs            TabStops
	font            geometry.FontSize
	hBarPx          int
	vBarPx          int
	title           string

	pipeline Pipeline
	main     *Buffer
	alt      *Buffer
	saved    *savedResize

	resizingDepth int
	bars          geometry.ScrollBars
	clientPx      console.Coord

	selection    console.Rect
	selectionSet bool

	reg    *Registry
	logger pslog.Logger
}

// New allocates a screen buffer. The window defaults to the full
// buffer when no window size is given.
func New(opts Options) (*Buffer, error) {
	if err := console.ValidateDims(opts.Cols, opts.Rows); err != nil {
		return nil, err
	}
	attrs := opts.Attributes
	if attrs.Rune == 0 {
		attrs.Rune = ' '
	}
	text, err := textbuffer.New(opts.Cols, opts.Rows, attrs)
	if err != nil {
		return nil, err
	}
	if opts.CursorSize > 0 {
		text.Cursor().Size = opts.CursorSize
	}
	wc, wr := opts.WindowCols, opts.WindowRows
	if wc <= 0 || wc > opts.Cols {
		wc = opts.Cols
	}
	if wr <= 0 || wr > opts.Rows {
		wr = opts.Rows
	}
	mode := ModeProcessedOutput | ModeWrapAtEOL
	if opts.VTLevel != 0 {
		mode |= ModeVirtualTerminal
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	b := &Buffer{
		text:            text,
		viewport:        console.Rect{Left: 0, Top: 0, Right: wc - 1, Bottom: wr - 1},
		attributes:      attrs,
		popupAttributes: attrs,
		outputMode:      mode,
		font:            geometry.Sanitize(opts.Font),
		hBarPx:          opts.HBarPx,
		vBarPx:          opts.VBarPx,
		logger:          logger,
	}
	return b, nil
}

// Text returns the backing grid.
func (b *Buffer) Text() *textbuffer.Buffer { return b.text }

// Size returns the backing buffer dimensions.
func (b *Buffer) Size() console.Coord { return b.text.Size() }

// Viewport returns the visible rectangle.
func (b *Buffer) Viewport() console.Rect { return b.viewport }

// OutputMode returns the output mode bit set.
func (b *Buffer) OutputMode() uint32 { return b.outputMode }

// SetOutputMode replaces the output mode bit set.
func (b *Buffer) SetOutputMode(mode uint32) { b.outputMode = mode }

// Attributes returns the default fill attributes.
func (b *Buffer) Attributes() console.Cell { return b.attributes }

// SetAttributes replaces the default fill attributes and propagates
// them to the text buffer so cleared cells pick them up.
func (b *Buffer) SetAttributes(attrs console.Cell) {
	if attrs.Rune == 0 {
		attrs.Rune = ' '
	}
	b.attributes = attrs
	b.text.SetFill(attrs)
}

// PopupAttributes returns the popup fill attributes.
func (b *Buffer) PopupAttributes() console.Cell { return b.popupAttributes }

// SetPopupAttributes replaces the popup fill attributes.
func (b *Buffer) SetPopupAttributes(attrs console.Cell) {
	if attrs.Rune == 0 {
		attrs.Rune = ' '
	}
	b.popupAttributes = attrs
}

// Title returns the buffer title.
func (b *Buffer) Title() string { return b.title }

// SetTitle replaces the buffer title.
func (b *Buffer) SetTitle(title string) { b.title = title }

// Font returns the character cell pixel size.
func (b *Buffer) Font() geometry.FontSize { return b.font }

// SetFont replaces the character cell pixel size.
func (b *Buffer) SetFont(f geometry.FontSize) { b.font = geometry.Sanitize(f) }

// Pipeline returns the output pipeline this buffer currently holds.
func (b *Buffer) Pipeline() Pipeline { return b.pipeline }

// SetPipeline hands the buffer its output pipeline and points the
// pipeline at it.
func (b *Buffer) SetPipeline(p Pipeline) {
	b.pipeline = p
	if p != nil {
		p.Attach(b)
	}
}

// IsAlt reports whether this is an alternate buffer.
func (b *Buffer) IsAlt() bool { return b.main != nil }

// Tabs returns the buffer's tab stop set.
func (b *Buffer) Tabs() *TabStops { return &b.tabs }

// IsActive reports whether this buffer is the registry's active one.
func (b *Buffer) IsActive() bool { return b.reg != nil && b.reg.Active() == b }

// ScrollMargins returns the scroll region and whether one is set.
func (b *Buffer) ScrollMargins() (console.Rect, bool) { return b.margins, b.marginsSet }

// SetScrollMargins sets the scroll region. Top must be above bottom
// and both rows must exist.
func (b *Buffer) SetScrollMargins(top, bottom int) error {
	size := b.text.Size()
	if top < 0 || bottom >= size.Y || top >= bottom {
		return fmt.Errorf("scroll margins (%d, %d): %w", top, bottom, console.ErrInvalidParameter)
	}
	b.margins = console.Rect{Top: top, Bottom: bottom, Left: 0, Right: size.X - 1}
	b.marginsSet = true
	return nil
}

// ClearScrollMargins removes the scroll region.
func (b *Buffer) ClearScrollMargins() {
	b.margins = console.Rect{}
	b.marginsSet = false
}

// SetCursorInformation sets cursor height (percent of the cell) and
// visibility.
func (b *Buffer) SetCursorInformation(size int, visible bool) error {
	if size < 1 || size > 100 {
		return fmt.Errorf("cursor size %d: %w", size, console.ErrInvalidParameter)
	}
	cur := b.text.Cursor()
	cur.Size = size
	cur.Visible = visible
	return nil
}

// SetCursorDBMode marks the cursor as spanning a double-width cell.
func (b *Buffer) SetCursorDBMode(double bool) {
	b.text.Cursor().Double = double
}

// SetCursorPosition moves the cursor, optionally scrolling the
// viewport so it stays visible.
func (b *Buffer) SetCursorPosition(pos console.Coord, turnOn bool) error {
	size := b.text.Size()
	if pos.X < 0 || pos.Y < 0 || pos.X >= size.X || pos.Y >= size.Y {
		return fmt.Errorf("cursor position (%d, %d): %w", pos.X, pos.Y, console.ErrInvalidParameter)
	}
	b.text.Cursor().Pos = pos
	if turnOn {
		b.MakeCursorVisible(pos)
	}
	return nil
}

// Cursor returns the buffer cursor.
func (b *Buffer) Cursor() *textbuffer.Cursor { return b.text.Cursor() }

// SetSelection marks a selected region. The rectangle is clipped to
// the buffer.
func (b *Buffer) SetSelection(r console.Rect) {
	b.selection = b.ClipToScreenBuffer(r)
	b.selectionSet = true
}

// Selection returns the selected region and whether one is active.
func (b *Buffer) Selection() (console.Rect, bool) { return b.selection, b.selectionSet }

// ClearSelection drops any active selection.
func (b *Buffer) ClearSelection() {
	b.selection = console.Rect{}
	b.selectionSet = false
}

// ScreenEdges returns the outer bounds of the backing buffer as an
// inclusive rectangle.
func (b *Buffer) ScreenEdges() console.Rect {
	size := b.text.Size()
	return console.Rect{Left: 0, Top: 0, Right: size.X - 1, Bottom: size.Y - 1}
}

// ClipToScreenBuffer clamps a rectangle to the buffer edges.
func (b *Buffer) ClipToScreenBuffer(r console.Rect) console.Rect {
	edges := b.ScreenEdges()
	if r.Left < edges.Left {
		r.Left = edges.Left
	}
	if r.Top < edges.Top {
		r.Top = edges.Top
	}
	if r.Right > edges.Right {
		r.Right = edges.Right
	}
	if r.Bottom > edges.Bottom {
		r.Bottom = edges.Bottom
	}
	return r
}

// ClipCoordToScreenBuffer clamps a coordinate to the buffer edges.
func (b *Buffer) ClipCoordToScreenBuffer(c console.Coord) console.Coord {
	edges := b.ScreenEdges()
	if c.X < edges.Left {
		c.X = edges.Left
	}
	if c.Y < edges.Top {
		c.Y = edges.Top
	}
	if c.X > edges.Right {
		c.X = edges.Right
	}
	if c.Y > edges.Bottom {
		c.Y = edges.Bottom
	}
	return c
}

// Information is the aggregate state reported to callers.
type Information struct {
	BufferSize      console.Coord
	CursorPosition  console.Coord
	Viewport        console.Rect
	Attributes      console.Cell
	PopupAttributes console.Cell
	MaxWindowSize   console.Coord
}

// ScreenBufferInformation reports the aggregate state.
func (b *Buffer) ScreenBufferInformation() Information {
	return Information{
		BufferSize:      b.text.Size(),
		CursorPosition:  b.text.Cursor().Pos,
		Viewport:        b.viewport,
		Attributes:      b.attributes,
		PopupAttributes: b.popupAttributes,
		MaxWindowSize:   geometry.MaxWindowSizeInCharacters(b.text.Size(), console.Coord{}),
	}
}

// Snapshot captures the full buffer state for rendering.
func (b *Buffer) Snapshot() console.Snapshot {
	size := b.text.Size()
	cur := b.text.Cursor()
	snap := console.Snapshot{
		Cols:          size.X,
		Rows:          size.Y,
		Cursor:        console.Cursor{X: cur.Pos.X, Y: cur.Pos.Y},
		CursorVisible: cur.Visible,
		Viewport:      b.viewport,
		Title:         b.title,
		Cells:         make([]console.Cell, size.X*size.Y),
	}
	for y := 0; y < size.Y; y++ {
		row := b.text.Row(y)
		copy(snap.Cells[y*size.X:(y+1)*size.X], row.Cells)
	}
	return snap
}
