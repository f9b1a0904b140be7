package screenbuffer

import (
	"pkt.systems/pslog"

	"pkt.systems/konsol/internal/console"
)

// Registry tracks the live screen buffers and which one is active.
// Removing a buffer fixes up the active pointer and, for an alternate
// buffer, hands pipeline custody back to its main. Callers serialize
// access; the registry itself takes no locks.
type Registry struct {
	buffers  []*Buffer
	active   *Buffer
	wrapText bool
	logger   pslog.Logger

	// OnSizeChange fires after a buffer's backing size changed.
	OnSizeChange func(b *Buffer, size console.Coord)
	// OnActiveChanged fires when a different buffer becomes active.
	OnActiveChanged func(b *Buffer)
	// OnCompositionResize lets an input-composition overlay resize
	// with the buffer; an error from it aborts the resize report.
	OnCompositionResize func(b *Buffer, size console.Coord) error
}

// NewRegistry returns an empty registry. wrapText selects the
// reflowing resize for main buffers.
func NewRegistry(wrapText bool, logger pslog.Logger) *Registry {
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	return &Registry{wrapText: wrapText, logger: logger}
}

// WrapText reports whether resizes reflow text.
func (g *Registry) WrapText() bool { return g.wrapText }

// SetWrapText switches between reflowing and traditional resize.
func (g *Registry) SetWrapText(on bool) { g.wrapText = on }

// Buffers returns the live buffers in insertion order.
func (g *Registry) Buffers() []*Buffer {
	out := make([]*Buffer, len(g.buffers))
	copy(out, g.buffers)
	return out
}

// Active returns the active buffer, or nil when the registry is empty.
func (g *Registry) Active() *Buffer { return g.active }

// SetActive makes b the active buffer.
func (g *Registry) SetActive(b *Buffer) {
	if g.active == b {
		return
	}
	g.active = b
	g.logger.Debug("active screen buffer changed")
	if g.OnActiveChanged != nil {
		g.OnActiveChanged(b)
	}
}

// Insert registers b. The first registered buffer becomes active.
func (g *Registry) Insert(b *Buffer) {
	b.reg = g
	g.buffers = append(g.buffers, b)
	if g.active == nil {
		g.SetActive(b)
	}
}

// Remove unregisters b. An alternate buffer hands pipeline custody
// back to its main; a main still holding an alternate takes the
// alternate down first. If b was active, another registered buffer
// takes over.
func (g *Registry) Remove(b *Buffer) {
	if b.main != nil {
		if b.pipeline != nil {
			b.main.pipeline = b.pipeline
			b.pipeline.Attach(b.main)
			b.pipeline = nil
		}
		if b.main.alt == b {
			b.main.alt = nil
		}
	} else if b.alt != nil {
		g.Remove(b.alt)
	}

	for i, cur := range g.buffers {
		if cur == b {
			g.buffers = append(g.buffers[:i], g.buffers[i+1:]...)
			break
		}
	}
	if g.active == b {
		if len(g.buffers) > 0 {
			g.SetActive(g.buffers[0])
		} else {
			g.active = nil
		}
	}
	b.reg = nil
}
