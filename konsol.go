// Package konsol is a console screen-buffer engine: a VT output
// pipeline feeding windowed screen buffers with scrollback, reflow
// and traditional resize, main/alternate pairing, and ANSI snapshot
// rendering.
package konsol

import (
	"io"
	"sync"

	"pkt.systems/pslog"

	"pkt.systems/konsol/internal/config"
	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/geometry"
	"pkt.systems/konsol/internal/pipeline"
	"pkt.systems/konsol/internal/render"
	"pkt.systems/konsol/internal/screenbuffer"
)

// Options configures a Console.
type Options struct {
	Cols       int
	Rows       int
	WindowCols int
	WindowRows int
	WrapText   bool
	CursorSize int
	FontWidth  int
	FontHeight int
	HBarPx     int
	VBarPx     int
	Logger     pslog.Logger
}

// Console is the serialized front door to a screen buffer registry
// and its output pipeline. All methods hold the console lock; the
// packages underneath take none.
type Console struct {
	mu     sync.Mutex
	reg    *screenbuffer.Registry
	pipe   *pipeline.Pipeline
	logger pslog.Logger
}

// NewConsole builds a console with one main screen buffer attached to
// a fresh output pipeline.
func NewConsole(opts Options) (*Console, error) {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	if opts.Cols <= 0 {
		opts.Cols = config.DefaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = config.DefaultRows
	}
	if opts.WindowCols <= 0 {
		opts.WindowCols = config.DefaultWindowCols
	}
	if opts.WindowRows <= 0 {
		opts.WindowRows = config.DefaultWindowRows
	}
	if opts.FontWidth <= 0 {
		opts.FontWidth = config.DefaultFontWidth
	}
	if opts.FontHeight <= 0 {
		opts.FontHeight = config.DefaultFontHeight
	}
	if opts.CursorSize <= 0 {
		opts.CursorSize = config.DefaultCursorSize
	}

	reg := screenbuffer.NewRegistry(opts.WrapText, logger)
	buf, err := screenbuffer.New(screenbuffer.Options{
		Cols:       opts.Cols,
		Rows:       opts.Rows,
		WindowCols: opts.WindowCols,
		WindowRows: opts.WindowRows,
		Font:       geometry.FontSize{X: opts.FontWidth, Y: opts.FontHeight},
		CursorSize: opts.CursorSize,
		VTLevel:    1,
		HBarPx:     opts.HBarPx,
		VBarPx:     opts.VBarPx,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	reg.Insert(buf)
	pipe := pipeline.New(buf, logger)

	return &Console{reg: reg, pipe: pipe, logger: logger}, nil
}

// Write feeds VT output into the console.
func (c *Console) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.pipe.Write(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Snapshot captures the active buffer for rendering.
func (c *Console) Snapshot() console.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.Active().Snapshot()
}

// Render paints the active buffer's viewport to w.
func (c *Console) Render(w io.Writer) error {
	snap := c.Snapshot()
	return render.Snapshot(w, &snap)
}

// RenderFull paints the whole active buffer, scrollback included.
func (c *Console) RenderFull(w io.Writer) error {
	snap := c.Snapshot()
	return render.SnapshotFull(w, &snap)
}

// ResizeWindow reports a new window size in characters. The pixel
// rectangles handed down are derived from the font metrics.
func (c *Console) ResizeWindow(cols, rows int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.reg.Active()
	font := b.Font()
	oldPx := geometry.PixelRect{
		Right:  b.Viewport().Width() * font.X,
		Bottom: b.Viewport().Height() * font.Y,
	}
	newPx := geometry.PixelRect{
		Right:  cols * font.X,
		Bottom: rows * font.Y,
	}
	return b.ProcessResizeWindow(oldPx, newPx)
}

// ResizeBuffer reshapes the active screen buffer.
func (c *Console) ResizeBuffer(cols, rows int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.Active().ResizeScreenBuffer(console.Coord{X: cols, Y: rows}, true)
}

// Information reports the active buffer's aggregate state.
func (c *Console) Information() Information {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.Active().ScreenBufferInformation()
}

// Title returns the active buffer title.
func (c *Console) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.Active().Title()
}

// SetWrapText switches between reflowing and traditional resize.
func (c *Console) SetWrapText(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reg.SetWrapText(on)
}

// Registry exposes the underlying screen buffer registry. Callers
// must serialize their own access to it.
func (c *Console) Registry() *screenbuffer.Registry { return c.reg }
