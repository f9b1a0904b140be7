// Package pipeline implements the output pipeline of a console: a
// byte-wise VT decoder and a dispatcher that applies the decoded
// operations to a screen buffer. A main/alt buffer pair shares one
// pipeline; Attach re-points it when the pair flips.
package pipeline

import (
	"github.com/mattn/go-runewidth"
	"pkt.systems/pslog"

	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/screenbuffer"
)

// DefaultTabInterval is the column spacing of the initial tab stops.
const DefaultTabInterval = 8

type savedCursor struct {
	pos  console.Coord
	attr console.Cell
	set  bool
}

// Pipeline drives the attached screen buffer with the tokens its
// decoder produces. It holds the rendition state (current attributes,
// charsets, modes) that survives a main/alt flip; the grid state
// lives in the buffer itself.
type Pipeline struct {
	target *screenbuffer.Buffer
	dec    decoder

	attr  console.Cell
	saved savedCursor

	insertMode  bool
	newLineMode bool
	originMode  bool

	g0LineDrawing bool
	g1LineDrawing bool
	useG1         bool

	logger pslog.Logger
}

// New constructs a pipeline attached to target and takes custody of
// its output.
func New(target *screenbuffer.Buffer, logger pslog.Logger) *Pipeline {
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	p := &Pipeline{logger: logger}
	p.dec.sink = p
	p.resetAttributes()
	if target != nil {
		target.Tabs().SetDefault(target.Size().X, DefaultTabInterval)
		target.SetPipeline(p)
	}
	return p
}

// Attach re-points the pipeline at b. All subsequent writes land
// there. The rendition state carries over unchanged.
func (p *Pipeline) Attach(b *screenbuffer.Buffer) { p.target = b }

// Target returns the buffer the pipeline currently writes into.
func (p *Pipeline) Target() *screenbuffer.Buffer { return p.target }

// Write feeds console output into the pipeline.
func (p *Pipeline) Write(data []byte) error {
	if p.target == nil {
		return console.ErrInvalidState
	}
	for _, b := range data {
		p.dec.feed(b)
	}
	return nil
}

// control applies a C0 control byte.
func (p *Pipeline) control(b byte) {
	switch b {
	case 0x07: // BEL
	case 0x08: // BS
		p.cursorBackward(1)
	case 0x09: // TAB
		p.forwardTab(1)
	case 0x0a, 0x0b, 0x0c: // LF, VT, FF
		p.lineFeed(p.newLineMode)
	case 0x0d: // CR
		p.target.Cursor().Pos.X = 0
	case 0x0e: // SO
		p.useG1 = true
	case 0x0f: // SI
		p.useG1 = false
	default:
	}
}

// escapeFinal applies a bare two-byte escape. Unknown finals are
// dropped.
func (p *Pipeline) escapeFinal(b byte) {
	switch b {
	case '7':
		p.saveCursor()
	case '8':
		p.restoreCursor()
	case 'D':
		p.lineFeed(false)
	case 'M':
		p.reverseIndex()
	case 'E':
		p.lineFeed(true)
	case 'c':
		p.fullReset()
	case 'H':
		p.setTabStop()
	}
}

func (p *Pipeline) operatingSystemCommand(code int, payload string) {
	if code == 0 || code == 2 {
		p.target.SetTitle(payload)
	}
}

func (p *Pipeline) designateCharset(target int, lineDrawing bool) {
	switch target {
	case 0:
		p.g0LineDrawing = lineDrawing
	case 1:
		p.g1LineDrawing = lineDrawing
	}
}

func (p *Pipeline) printRune(r rune) {
	r = p.translateRune(r)
	b := p.target
	text := b.Text()
	cols := text.Cols()
	wrap := b.OutputMode()&screenbuffer.ModeWrapAtEOL != 0

	width := runewidth.RuneWidth(r)
	if width <= 0 {
		width = 1
	}
	if width > cols {
		width = 1
	}

	cur := text.Cursor()
	if width == 2 && cur.Pos.X == cols-1 {
		if !wrap {
			return
		}
		// The trailing half must not be split across rows: pad the
		// last column and wrap the pair onto the next row.
		row := text.Row(cur.Pos.Y)
		row.Put(cur.Pos.X, p.blankCell(), 0)
		row.DoubleBytePadded = true
		row.WrapForced = true
		p.lineFeed(true)
	}

	if p.insertMode {
		p.insertChars(width)
	}

	row := text.Row(cur.Pos.Y)
	cell := p.attr
	cell.Rune = r
	if width == 2 {
		row.Put(cur.Pos.X, cell, console.CellLeading)
		row.Put(cur.Pos.X+1, p.blankCell(), console.CellTrailing)
	} else {
		row.Put(cur.Pos.X, cell, 0)
	}

	cur.Pos.X += width
	if cur.Pos.X >= cols {
		if wrap {
			row.WrapForced = true
			p.lineFeed(true)
		} else {
			cur.Pos.X = cols - 1
		}
	}
	b.MakeCursorVisible(cur.Pos)
}

func (p *Pipeline) translateRune(r rune) rune {
	if r < 0x20 || r > 0x7e {
		return r
	}
	lineDrawing := p.g0LineDrawing
	if p.useG1 {
		lineDrawing = p.g1LineDrawing
	}
	if !lineDrawing {
		return r
	}
	return mapLineDrawing(r)
}

func (p *Pipeline) blankCell() console.Cell {
	c := p.attr
	c.Rune = ' '
	return c
}

func (p *Pipeline) resetAttributes() {
	p.attr = console.Cell{
		Rune: ' ',
		FG:   console.ColorDefault,
		BG:   console.ColorDefault,
	}
}

func (p *Pipeline) fullReset() {
	b := p.target
	p.resetAttributes()
	p.insertMode = false
	p.newLineMode = false
	p.originMode = false
	p.useG1 = false
	p.g0LineDrawing = false
	p.g1LineDrawing = false
	p.saved = savedCursor{}
	if b.IsAlt() {
		if err := b.UseMainScreenBuffer(); err == nil {
			b = p.target
		}
	}
	b.SetOutputMode(b.OutputMode() | screenbuffer.ModeWrapAtEOL)
	b.ClearScrollMargins()
	text := b.Text()
	for y := 0; y < text.Rows(); y++ {
		text.Row(y).Reset(p.blankCell())
	}
	cur := text.Cursor()
	cur.Pos = console.Coord{}
	cur.Visible = true
	b.Tabs().SetDefault(text.Cols(), DefaultTabInterval)
	b.SetTitle("")
	p.logger.Debug("pipeline reset")
}

func mapLineDrawing(r rune) rune {
	switch r {
	case '`':
		return '◆'
	case 'a':
		return '▒'
	case 'f':
		return '°'
	case 'g':
		return '±'
	case 'j':
		return '┘'
	case 'k':
		return '┐'
	case 'l':
		return '┌'
	case 'm':
		return '└'
	case 'n':
		return '┼'
	case 'q':
		return '─'
	case 't':
		return '├'
	case 'u':
		return '┤'
	case 'v':
		return '┴'
	case 'w':
		return '┬'
	case 'x':
		return '│'
	case '~':
		return '·'
	default:
		return r
	}
}
