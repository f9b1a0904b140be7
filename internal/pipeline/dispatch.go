package pipeline

import (
	"pkt.systems/konsol/internal/console"
	"pkt.systems/konsol/internal/screenbuffer"
)

// controlSequence dispatches a completed CSI sequence.
func (p *Pipeline) controlSequence(final byte, params []int, private bool) {
	switch final {
	case 'A':
		p.cursorUp(param(params, 0, 1))
	case 'B':
		p.cursorDown(param(params, 0, 1))
	case 'C':
		p.cursorForward(param(params, 0, 1))
	case 'D':
		p.cursorBackward(param(params, 0, 1))
	case 'E':
		p.cursorDown(param(params, 0, 1))
		p.target.Cursor().Pos.X = 0
	case 'F':
		p.cursorUp(param(params, 0, 1))
		p.target.Cursor().Pos.X = 0
	case 'G':
		p.cursorHorizontal(param(params, 0, 1))
	case 'H', 'f':
		row := param(params, 0, 1)
		col := param(params, 1, 1)
		p.cursorPosition(row, col)
	case 'I':
		p.forwardTab(param(params, 0, 1))
	case 'Z':
		p.backwardTab(param(params, 0, 1))
	case 'J':
		p.eraseDisplay(param(params, 0, 0))
	case 'K':
		p.eraseLine(param(params, 0, 0))
	case 'L':
		p.insertLines(param(params, 0, 1))
	case 'M':
		p.deleteLines(param(params, 0, 1))
	case '@':
		p.insertChars(param(params, 0, 1))
	case 'P':
		p.deleteChars(param(params, 0, 1))
	case 'X':
		p.eraseChars(param(params, 0, 1))
	case 'S':
		p.scrollRegionUp(param(params, 0, 1))
	case 'T':
		p.scrollRegionDown(param(params, 0, 1))
	case 'm':
		p.selectGraphicRendition(params)
	case 'r':
		p.setScrollRegion(params)
	case 's':
		p.saveCursor()
	case 'u':
		p.restoreCursor()
	case 'g':
		p.clearTabStops(param(params, 0, 0))
	case 'h':
		p.setMode(params, private, true)
	case 'l':
		p.setMode(params, private, false)
	case 'd':
		p.cursorPosition(param(params, 0, 1), p.target.Cursor().Pos.X+1)
	case 'e':
		p.cursorDown(param(params, 0, 1))
	}
}

// region returns the rows scrolling operates over: the scroll margins
// when set, the whole grid otherwise.
func (p *Pipeline) region() (int, int) {
	if margins, set := p.target.ScrollMargins(); set {
		return margins.Top, margins.Bottom
	}
	return 0, p.target.Text().Rows() - 1
}

func (p *Pipeline) cursorPosition(row, col int) {
	if row < 1 {
		row = 1
	}
	if col < 1 {
		col = 1
	}
	text := p.target.Text()
	top, bottom := p.region()
	y := row - 1
	if p.originMode {
		y += top
		if y > bottom {
			y = bottom
		}
	}
	pos := console.Coord{
		X: clamp(col-1, 0, text.Cols()-1),
		Y: clamp(y, 0, text.Rows()-1),
	}
	_ = p.target.SetCursorPosition(pos, true)
}

func (p *Pipeline) cursorHorizontal(col int) {
	if col < 1 {
		col = 1
	}
	text := p.target.Text()
	text.Cursor().Pos.X = clamp(col-1, 0, text.Cols()-1)
}

func (p *Pipeline) cursorUp(n int) {
	if n < 1 {
		n = 1
	}
	cur := p.target.Cursor()
	minY := 0
	if top, _ := p.region(); p.originMode {
		minY = top
	}
	cur.Pos.Y = clamp(cur.Pos.Y-n, minY, p.target.Text().Rows()-1)
	p.target.MakeCursorVisible(cur.Pos)
}

func (p *Pipeline) cursorDown(n int) {
	if n < 1 {
		n = 1
	}
	cur := p.target.Cursor()
	maxY := p.target.Text().Rows() - 1
	if _, bottom := p.region(); p.originMode {
		maxY = bottom
	}
	cur.Pos.Y = clamp(cur.Pos.Y+n, 0, maxY)
	p.target.MakeCursorVisible(cur.Pos)
}

func (p *Pipeline) cursorForward(n int) {
	if n < 1 {
		n = 1
	}
	cur := p.target.Cursor()
	cur.Pos.X = clamp(cur.Pos.X+n, 0, p.target.Text().Cols()-1)
}

func (p *Pipeline) cursorBackward(n int) {
	if n < 1 {
		n = 1
	}
	cur := p.target.Cursor()
	cur.Pos.X = clamp(cur.Pos.X-n, 0, p.target.Text().Cols()-1)
}

func (p *Pipeline) forwardTab(n int) {
	b := p.target
	cur := b.Cursor()
	for ; n > 0; n-- {
		cur.Pos = b.Tabs().ForwardTab(cur.Pos, b.Text().Cols())
	}
	if cur.Pos.Y >= b.Text().Rows() {
		cur.Pos.Y = b.Text().Rows() - 1
	}
}

func (p *Pipeline) backwardTab(n int) {
	b := p.target
	cur := b.Cursor()
	for ; n > 0; n-- {
		cur.Pos = b.Tabs().ReverseTab(cur.Pos)
	}
}

func (p *Pipeline) setTabStop() {
	p.target.Tabs().Add(p.target.Cursor().Pos.X)
}

func (p *Pipeline) clearTabStops(mode int) {
	switch mode {
	case 0:
		p.target.Tabs().ClearAt(p.target.Cursor().Pos.X)
	case 3:
		p.target.Tabs().Clear()
	}
}

func (p *Pipeline) saveCursor() {
	p.saved = savedCursor{
		pos:  p.target.MainBuffer().Cursor().Pos,
		attr: p.attr,
		set:  true,
	}
}

func (p *Pipeline) restoreCursor() {
	if !p.saved.set {
		return
	}
	p.attr = p.saved.attr
	main := p.target.MainBuffer()
	text := main.Text()
	main.Cursor().Pos = console.Coord{
		X: clamp(p.saved.pos.X, 0, text.Cols()-1),
		Y: clamp(p.saved.pos.Y, 0, text.Rows()-1),
	}
}

func (p *Pipeline) setScrollRegion(params []int) {
	b := p.target
	rows := b.Text().Rows()
	top := param(params, 0, 1) - 1
	bottom := param(params, 1, rows) - 1
	if top < 0 {
		top = 0
	}
	if bottom >= rows {
		bottom = rows - 1
	}
	if top >= bottom || (top == 0 && bottom == rows-1) {
		b.ClearScrollMargins()
	} else if err := b.SetScrollMargins(top, bottom); err != nil {
		p.logger.Warn("scroll region rejected", "top", top, "bottom", bottom, "error", err)
		return
	}
	p.cursorPosition(1, 1)
}

func (p *Pipeline) setMode(params []int, private, enable bool) {
	if private {
		for _, m := range params {
			switch m {
			case 7:
				mode := p.target.OutputMode()
				if enable {
					mode |= screenbuffer.ModeWrapAtEOL
				} else {
					mode &^= screenbuffer.ModeWrapAtEOL
				}
				p.target.SetOutputMode(mode)
			case 25:
				p.target.Cursor().Visible = enable
			case 6:
				p.originMode = enable
				p.cursorPosition(1, 1)
			case 47, 1047, 1049:
				p.setAltScreen(enable, m == 1049)
			}
		}
		return
	}
	for _, m := range params {
		switch m {
		case 4:
			p.insertMode = enable
		case 20:
			p.newLineMode = enable
		}
	}
}

func (p *Pipeline) setAltScreen(enable, withCursor bool) {
	if enable {
		if withCursor {
			p.saveCursor()
		}
		if _, err := p.target.UseAlternateScreenBuffer(); err != nil {
			p.logger.Error("alternate screen buffer switch failed", "error", err)
		}
		return
	}
	if !p.target.IsAlt() {
		return
	}
	if err := p.target.UseMainScreenBuffer(); err != nil {
		p.logger.Error("main screen buffer switch failed", "error", err)
		return
	}
	if withCursor {
		p.restoreCursor()
	}
}

func (p *Pipeline) selectGraphicRendition(params []int) {
	if len(params) == 0 {
		params = []int{0}
	} else {
		for i := range params {
			if params[i] == -1 {
				params[i] = 0
			}
		}
	}
	for i := 0; i < len(params); i++ {
		switch params[i] {
		case 0:
			p.resetAttributes()
		case 1:
			p.attr.Mode |= console.ModeBold
		case 2:
			p.attr.Mode |= console.ModeFaint
		case 3:
			p.attr.Mode |= console.ModeItalic
		case 4:
			p.attr.Mode |= console.ModeUnderline
		case 5:
			p.attr.Mode |= console.ModeBlink
		case 7:
			p.attr.Mode |= console.ModeInverse
		case 8:
			p.attr.Mode |= console.ModeHidden
		case 22:
			p.attr.Mode &^= (console.ModeBold | console.ModeFaint)
		case 23:
			p.attr.Mode &^= console.ModeItalic
		case 24:
			p.attr.Mode &^= console.ModeUnderline
		case 25:
			p.attr.Mode &^= console.ModeBlink
		case 27:
			p.attr.Mode &^= console.ModeInverse
		case 28:
			p.attr.Mode &^= console.ModeHidden
		case 39:
			p.attr.FG = console.ColorDefault
		case 49:
			p.attr.BG = console.ColorDefault
		default:
			if params[i] >= 30 && params[i] <= 37 {
				p.attr.FG = console.ColorIndexed | uint32(params[i]-30)
			} else if params[i] >= 40 && params[i] <= 47 {
				p.attr.BG = console.ColorIndexed | uint32(params[i]-40)
			} else if params[i] >= 90 && params[i] <= 97 {
				p.attr.FG = console.ColorIndexed | uint32(params[i]-90+8)
			} else if params[i] >= 100 && params[i] <= 107 {
				p.attr.BG = console.ColorIndexed | uint32(params[i]-100+8)
			} else if params[i] == 38 || params[i] == 48 {
				isFg := params[i] == 38
				if i+1 < len(params) && params[i+1] == 5 && i+2 < len(params) {
					if isFg {
						p.attr.FG = console.ColorIndexed | uint32(params[i+2])
					} else {
						p.attr.BG = console.ColorIndexed | uint32(params[i+2])
					}
					i += 2
				} else if i+1 < len(params) && params[i+1] == 2 && i+4 < len(params) {
					color := uint32(params[i+2])<<16 | uint32(params[i+3])<<8 | uint32(params[i+4])
					if isFg {
						p.attr.FG = console.ColorTrue | color
					} else {
						p.attr.BG = console.ColorTrue | color
					}
					i += 4
				}
			}
		}
	}
}

func param(params []int, idx, def int) int {
	if idx >= len(params) {
		return def
	}
	if params[idx] <= 0 {
		return def
	}
	return params[idx]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
