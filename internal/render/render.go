// Package render paints console snapshots onto an ANSI terminal.
// Output is a full repaint: clear, home, cells with minimal SGR
// churn, then the cursor.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"pkt.systems/konsol/internal/console"
)

const (
	ansiClearScreen = "\x1b[2J"
	ansiHome        = "\x1b[H"
	ansiHideCursor  = "\x1b[?25l"
	ansiShowCursor  = "\x1b[?25h"
	ansiReset       = "\x1b[0m"
)

// Snapshot renders the snapshot's viewport to the writer.
func Snapshot(w io.Writer, snap *console.Snapshot) error {
	if snap == nil {
		return nil
	}
	return SnapshotRect(w, snap, snap.Viewport)
}

// SnapshotFull renders the whole backing buffer, scrollback included.
func SnapshotFull(w io.Writer, snap *console.Snapshot) error {
	if snap == nil {
		return nil
	}
	full := console.Rect{Left: 0, Top: 0, Right: snap.Cols - 1, Bottom: snap.Rows - 1}
	return SnapshotRect(w, snap, full)
}

// SnapshotRect renders the given rectangle of the snapshot. The
// cursor is positioned relative to the rectangle and hidden when it
// falls outside.
func SnapshotRect(w io.Writer, snap *console.Snapshot, view console.Rect) error {
	if snap == nil {
		return nil
	}
	if _, err := io.WriteString(w, ansiClearScreen+ansiHome); err != nil {
		return err
	}
	show := ansiHideCursor
	if snap.CursorVisible {
		show = ansiShowCursor
	}
	if _, err := io.WriteString(w, show+ansiReset); err != nil {
		return err
	}

	current := renderAttr{mode: -1, fg: ^uint32(0), bg: ^uint32(0)}
	for y := view.Top; y <= view.Bottom; y++ {
		if _, err := fmt.Fprintf(w, "\x1b[%d;1H", y-view.Top+1); err != nil {
			return err
		}
		var row strings.Builder
		for x := view.Left; x <= view.Right; x++ {
			cell := cellAt(snap, x, y)
			r := cell.Rune
			if r == 0 {
				r = ' '
			}
			if cell.Mode&console.ModeHidden != 0 {
				r = ' '
			}
			attr := renderAttr{mode: cell.Mode, fg: cell.FG, bg: cell.BG}
			if attr != current {
				row.WriteString(sgr(attr))
				current = attr
			}
			row.WriteRune(r)
			if runewidth.RuneWidth(r) == 2 {
				// The trailing half is storage only; the glyph already
				// covers both columns.
				x++
			}
		}
		if _, err := io.WriteString(w, row.String()); err != nil {
			return err
		}
	}

	cx, cy := snap.Cursor.X, snap.Cursor.Y
	if view.Contains(console.Coord{X: cx, Y: cy}) {
		if _, err := fmt.Fprintf(w, "\x1b[%d;%dH", cy-view.Top+1, cx-view.Left+1); err != nil {
			return err
		}
	} else if snap.CursorVisible {
		if _, err := io.WriteString(w, ansiHideCursor); err != nil {
			return err
		}
	}

	if snap.Title != "" {
		if _, err := fmt.Fprintf(w, "\x1b]0;%s\x07", sanitizeTitle(snap.Title)); err != nil {
			return err
		}
	}
	return nil
}

func cellAt(snap *console.Snapshot, x, y int) console.Cell {
	if x < 0 || y < 0 || x >= snap.Cols || y >= snap.Rows {
		return console.Cell{Rune: ' '}
	}
	idx := y*snap.Cols + x
	if idx >= len(snap.Cells) {
		return console.Cell{Rune: ' '}
	}
	return snap.Cells[idx]
}

type renderAttr struct {
	mode int16
	fg   uint32
	bg   uint32
}

func sgr(attr renderAttr) string {
	fg := attr.fg
	bg := attr.bg
	if attr.mode&console.ModeInverse != 0 {
		fg, bg = bg, fg
	}

	codes := []string{"0"}
	if attr.mode&console.ModeBold != 0 {
		codes = append(codes, "1")
	}
	if attr.mode&console.ModeFaint != 0 {
		codes = append(codes, "2")
	}
	if attr.mode&console.ModeItalic != 0 {
		codes = append(codes, "3")
	}
	if attr.mode&console.ModeUnderline != 0 {
		codes = append(codes, "4")
	}
	if attr.mode&console.ModeBlink != 0 {
		codes = append(codes, "5")
	}
	if attr.mode&console.ModeInverse != 0 {
		codes = append(codes, "7")
	}
	if attr.mode&console.ModeHidden != 0 {
		codes = append(codes, "8")
	}

	codes = append(codes, colorCode(true, fg)...)
	codes = append(codes, colorCode(false, bg)...)

	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorCode(fg bool, val uint32) []string {
	if val == console.ColorDefault {
		if fg {
			return []string{"39"}
		}
		return []string{"49"}
	}
	flag := val & console.ColorFlagMask
	raw := val & console.ColorValueMask
	if flag == console.ColorIndexed {
		if fg {
			return []string{"38", "5", strconv.FormatUint(uint64(raw), 10)}
		}
		return []string{"48", "5", strconv.FormatUint(uint64(raw), 10)}
	}
	if flag == console.ColorTrue {
		r := (raw >> 16) & 0xff
		g := (raw >> 8) & 0xff
		b := raw & 0xff
		if fg {
			return []string{"38", "2", strconv.FormatUint(uint64(r), 10), strconv.FormatUint(uint64(g), 10), strconv.FormatUint(uint64(b), 10)}
		}
		return []string{"48", "2", strconv.FormatUint(uint64(r), 10), strconv.FormatUint(uint64(g), 10), strconv.FormatUint(uint64(b), 10)}
	}
	if fg {
		return []string{"39"}
	}
	return []string{"49"}
}

func sanitizeTitle(title string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\x1b', '\x07':
			return -1
		default:
			return r
		}
	}, title)
}
