// Computes the bounding region of the drawable content
// of a subtree, either with a cheap heuristic over the numeric
// literals of path data, or from the compiled path segments.
package svgbounds

import (
	"math"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/benoitkugler/bodysvg/svgpath"
)

// Box is an axis aligned region. The zero value is
// a degenerate box at the origin; use Empty to start folding.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty returns a box containing nothing, ready to be extended.
func Empty() Box {
	return Box{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
}

// IsEmpty returns true if at least one axis has
// not received any coordinate.
func (b Box) IsEmpty() bool {
	return !(b.MinX <= b.MaxX) || !(b.MinY <= b.MaxY)
}

func (b *Box) addX(x float64) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	b.MinX = math.Min(b.MinX, x)
	b.MaxX = math.Max(b.MaxX, x)
}

func (b *Box) addY(y float64) {
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return
	}
	b.MinY = math.Min(b.MinY, y)
	b.MaxY = math.Max(b.MaxY, y)
}

// Add extends the box to include (x, y). Non finite
// coordinates are ignored, independently on each axis.
func (b *Box) Add(x, y float64) {
	b.addX(x)
	b.addY(y)
}

// Union returns the smallest box containing b and other.
// Empty axes are neutral.
func (b Box) Union(other Box) Box {
	return Box{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Contains returns true if (x, y) is inside the (closed) box.
func (b Box) Contains(x, y float64) bool {
	return b.MinX <= x && x <= b.MaxX && b.MinY <= y && y <= b.MaxY
}

// Pad returns the viewport of the box enlarged by `padding` on every side.
func (b Box) Pad(padding float64) svgdoc.ViewBox {
	return svgdoc.ViewBox{
		X: b.MinX - padding,
		Y: b.MinY - padding,
		W: (b.MaxX - b.MinX) + 2*padding,
		H: (b.MaxY - b.MinY) + 2*padding,
	}
}

// AddPairs folds the numeric literals of the path data `d`
// into the box: values at even positions are x coordinates,
// values at odd positions are y coordinates.
// This ignores the command grammar: single operand commands (H, V)
// and arc parameters shift the pairing, so the result is only
// an approximation of the real extent.
func (b *Box) AddPairs(d string) {
	for i, v := range svgpath.Numbers(d) {
		if i%2 == 0 {
			b.addX(v)
		} else {
			b.addY(v)
		}
	}
}
