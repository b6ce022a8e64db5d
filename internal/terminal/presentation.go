package terminal

// LayoutMode describes how connected sessions are arranged on screen. Pure
// presentation state, independent of transport state.
type LayoutMode string

const (
	LayoutSingle LayoutMode = "single"
	LayoutSplitH LayoutMode = "split-h"
	LayoutSplitV LayoutMode = "split-v"
)

// Presentation is the UI-facing view state for the terminal area.
type Presentation struct {
	Layout     LayoutMode
	Fullscreen bool
}

// SetLayout accepts only the three defined layout modes; anything else is
// ignored.
func (p *Presentation) SetLayout(mode LayoutMode) {
	switch mode {
	case LayoutSingle, LayoutSplitH, LayoutSplitV:
		p.Layout = mode
	}
}
