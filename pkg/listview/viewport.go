package listview

// DefaultBreakpoint is the width, in the viewport's own unit, at and above
// which the table view is preferred.
const DefaultBreakpoint = 1024

// Viewport reports the width currently available to the list. The
// controller reads it once at mount; later changes arrive through
// Controller.Resize.
type Viewport interface {
	Width() int
}

// FixedViewport is a Viewport of constant width.
type FixedViewport int

// Width implements Viewport.
func (v FixedViewport) Width() int { return int(v) }

// ViewportPolicy decides between grid and table from the viewport width.
type ViewportPolicy struct {
	// Breakpoint is the smallest width that gets the table. Zero means
	// DefaultBreakpoint.
	Breakpoint int
	// ResizeOverridesExplicit makes every resize re-apply the breakpoint,
	// even after the user picked a mode by hand. When false a manual choice
	// survives resizes.
	ResizeOverridesExplicit bool
}

func (p ViewportPolicy) breakpoint() int {
	if p.Breakpoint <= 0 {
		return DefaultBreakpoint
	}
	return p.Breakpoint
}

// InitialMode returns the mode for a freshly mounted view. A width of zero
// or less means the width is unknown and yields the table.
func (p ViewportPolicy) InitialMode(width int) ViewMode {
	if width <= 0 || width >= p.breakpoint() {
		return ModeTable
	}
	return ModeGrid
}

// OnResize returns the mode to use after the viewport changed to width.
func (p ViewportPolicy) OnResize(width int, s ViewState) ViewMode {
	if s.ViewModeExplicit && !p.ResizeOverridesExplicit {
		return s.ViewMode
	}
	return p.InitialMode(width)
}
