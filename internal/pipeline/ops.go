package pipeline

import (
	"pkt.systems/konsol/internal/textbuffer"
)

// lineFeed moves the cursor down one row. At the bottom of the scroll
// region the region scrolls instead; at the bottom of an unmargined
// grid the circular buffer rotates so scrollback is preserved.
func (p *Pipeline) lineFeed(withCR bool) {
	b := p.target
	text := b.Text()
	cur := text.Cursor()
	if withCR {
		cur.Pos.X = 0
	}
	_, bottom := p.region()
	_, set := b.ScrollMargins()
	switch {
	case set && cur.Pos.Y == bottom:
		p.scrollRegionUp(1)
	case !set && cur.Pos.Y == text.Rows()-1:
		text.IncrementCircularBuffer()
	case cur.Pos.Y < text.Rows()-1:
		cur.Pos.Y++
	}
	b.MakeCursorVisible(cur.Pos)
}

func (p *Pipeline) reverseIndex() {
	cur := p.target.Cursor()
	top, _ := p.region()
	if cur.Pos.Y == top {
		p.scrollRegionDown(1)
		return
	}
	if cur.Pos.Y > 0 {
		cur.Pos.Y--
	}
}

// scrollRegionUp shifts the scroll region up n rows, clearing the
// vacated bottom rows with the current rendition.
func (p *Pipeline) scrollRegionUp(n int) {
	if n < 1 {
		n = 1
	}
	text := p.target.Text()
	top, bottom := p.region()
	height := bottom - top + 1
	if n > height {
		n = height
	}
	for y := top; y <= bottom-n; y++ {
		copyRowContent(text.Row(y), text.Row(y+n))
	}
	for y := bottom - n + 1; y <= bottom; y++ {
		text.Row(y).Reset(p.blankCell())
	}
}

// scrollRegionDown shifts the scroll region down n rows, clearing the
// vacated top rows.
func (p *Pipeline) scrollRegionDown(n int) {
	if n < 1 {
		n = 1
	}
	text := p.target.Text()
	top, bottom := p.region()
	height := bottom - top + 1
	if n > height {
		n = height
	}
	for y := bottom; y >= top+n; y-- {
		copyRowContent(text.Row(y), text.Row(y-n))
	}
	for y := top; y < top+n; y++ {
		text.Row(y).Reset(p.blankCell())
	}
}

func (p *Pipeline) eraseDisplay(mode int) {
	text := p.target.Text()
	cur := text.Cursor()
	switch mode {
	case 0:
		p.eraseLine(0)
		for y := cur.Pos.Y + 1; y < text.Rows(); y++ {
			text.Row(y).Reset(p.blankCell())
		}
	case 1:
		for y := 0; y < cur.Pos.Y; y++ {
			text.Row(y).Reset(p.blankCell())
		}
		p.eraseLine(1)
	case 2:
		for y := 0; y < text.Rows(); y++ {
			text.Row(y).Reset(p.blankCell())
		}
	}
}

func (p *Pipeline) eraseLine(mode int) {
	text := p.target.Text()
	cur := text.Cursor()
	switch mode {
	case 0:
		p.clearCells(cur.Pos.Y, cur.Pos.X, text.Cols()-1)
	case 1:
		p.clearCells(cur.Pos.Y, 0, cur.Pos.X)
	case 2:
		p.clearCells(cur.Pos.Y, 0, text.Cols()-1)
	}
}

func (p *Pipeline) eraseChars(n int) {
	if n < 1 {
		n = 1
	}
	cur := p.target.Cursor()
	p.clearCells(cur.Pos.Y, cur.Pos.X, cur.Pos.X+n-1)
}

func (p *Pipeline) insertLines(n int) {
	if n < 1 {
		n = 1
	}
	text := p.target.Text()
	cur := text.Cursor()
	top, bottom := p.region()
	if cur.Pos.Y < top || cur.Pos.Y > bottom {
		return
	}
	if n > bottom-cur.Pos.Y+1 {
		n = bottom - cur.Pos.Y + 1
	}
	for y := bottom; y >= cur.Pos.Y+n; y-- {
		copyRowContent(text.Row(y), text.Row(y-n))
	}
	for y := cur.Pos.Y; y < cur.Pos.Y+n; y++ {
		text.Row(y).Reset(p.blankCell())
	}
	cur.Pos.X = 0
}

func (p *Pipeline) deleteLines(n int) {
	if n < 1 {
		n = 1
	}
	text := p.target.Text()
	cur := text.Cursor()
	top, bottom := p.region()
	if cur.Pos.Y < top || cur.Pos.Y > bottom {
		return
	}
	if n > bottom-cur.Pos.Y+1 {
		n = bottom - cur.Pos.Y + 1
	}
	for y := cur.Pos.Y; y <= bottom-n; y++ {
		copyRowContent(text.Row(y), text.Row(y+n))
	}
	for y := bottom - n + 1; y <= bottom; y++ {
		text.Row(y).Reset(p.blankCell())
	}
	cur.Pos.X = 0
}

func (p *Pipeline) insertChars(n int) {
	if n < 1 {
		n = 1
	}
	text := p.target.Text()
	cur := text.Cursor()
	row := text.Row(cur.Pos.Y)
	cols := text.Cols()
	if n > cols-cur.Pos.X {
		n = cols - cur.Pos.X
	}
	copy(row.Cells[cur.Pos.X+n:], row.Cells[cur.Pos.X:cols-n])
	copy(row.Flags[cur.Pos.X+n:], row.Flags[cur.Pos.X:cols-n])
	blank := p.blankCell()
	for x := cur.Pos.X; x < cur.Pos.X+n; x++ {
		row.Cells[x] = blank
		row.Flags[x] = 0
	}
	recomputeExtent(row)
}

func (p *Pipeline) deleteChars(n int) {
	if n < 1 {
		n = 1
	}
	text := p.target.Text()
	cur := text.Cursor()
	row := text.Row(cur.Pos.Y)
	cols := text.Cols()
	if n > cols-cur.Pos.X {
		n = cols - cur.Pos.X
	}
	copy(row.Cells[cur.Pos.X:], row.Cells[cur.Pos.X+n:])
	copy(row.Flags[cur.Pos.X:], row.Flags[cur.Pos.X+n:])
	blank := p.blankCell()
	for x := cols - n; x < cols; x++ {
		row.Cells[x] = blank
		row.Flags[x] = 0
	}
	recomputeExtent(row)
}

func (p *Pipeline) clearCells(y, x0, x1 int) {
	text := p.target.Text()
	row := text.Row(y)
	cols := text.Cols()
	x0 = clamp(x0, 0, cols-1)
	x1 = clamp(x1, 0, cols-1)
	blank := p.blankCell()
	for x := x0; x <= x1; x++ {
		row.Cells[x] = blank
		row.Flags[x] = 0
	}
	if x1 == cols-1 {
		row.WrapForced = false
		row.DoubleBytePadded = false
	}
	recomputeExtent(row)
}

func copyRowContent(dst, src *textbuffer.Row) {
	copy(dst.Cells, src.Cells)
	copy(dst.Flags, src.Flags)
	dst.Left = src.Left
	dst.Right = src.Right
	dst.WrapForced = src.WrapForced
	dst.DoubleBytePadded = src.DoubleBytePadded
}

func recomputeExtent(row *textbuffer.Row) {
	row.Left = len(row.Cells)
	row.Right = 0
	for x, c := range row.Cells {
		if c.Rune != ' ' || row.Flags[x] != 0 {
			if x < row.Left {
				row.Left = x
			}
			row.Right = x + 1
		}
	}
}
