// Package layout computes viewport-aware tooltip placement. It is pure
// arithmetic: callers feed it the anchor rectangle and the measured tooltip
// size for every single show, nothing is cached between calls.
package layout

type Point struct {
	X float64
	Y float64
}

type Size struct {
	W float64
	H float64
}

type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

func (r Rect) Right() float64 {
	return r.Left + r.Width
}

func (r Rect) MidY() float64 {
	return r.Top + r.Height/2
}

func (r Rect) MidX() float64 {
	return r.Left + r.Width/2
}

// Policy carries the placement thresholds. WideMin is the viewport width at
// and above which the tooltip always sits to the right of its anchor; Margin
// is the minimum gap kept from every viewport edge and from the anchor.
type Policy struct {
	WideMin  float64
	Margin   float64
	Fallback Size
}

// Normalize substitutes the fallback dimensions for a measurement that came
// back zero or negative on either axis.
func (p Policy) Normalize(tip Size) Size {
	if tip.W <= 0 || tip.H <= 0 {
		return p.Fallback
	}
	return tip
}

// Place computes the fixed-position top-left corner for a tooltip of size
// tip next to anchor within viewport vp.
//
// Horizontal: on wide viewports the tooltip goes right of the anchor, with
// its right edge clamped inside the margin. Below the breakpoint it goes to
// the side opposite the anchor's half of the screen so it never crowds the
// edge the anchor is already near.
//
// Vertical: centered on the anchor's midpoint, top edge clamped to
// [margin, vp.H - tip.H - margin]. The lower bound wins when the viewport is
// shorter than the tooltip.
func (p Policy) Place(vp Size, anchor Rect, tip Size) Point {
	tip = p.Normalize(tip)

	var x float64
	switch {
	case vp.W >= p.WideMin:
		x = clamp(anchor.Right()+p.Margin, p.Margin, vp.W-tip.W-p.Margin)
	case anchor.MidX() < vp.W/2:
		x = clamp(anchor.Right()+p.Margin, p.Margin, vp.W-tip.W-p.Margin)
	default:
		x = clamp(anchor.Left-tip.W-p.Margin, p.Margin, vp.W-tip.W-p.Margin)
	}

	y := clamp(anchor.MidY()-tip.H/2, p.Margin, vp.H-tip.H-p.Margin)

	return Point{X: x, Y: y}
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
