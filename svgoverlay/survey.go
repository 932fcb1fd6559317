package svgoverlay

import (
	"sort"

	"github.com/benoitkugler/bodysvg/svgdoc"
)

// Census counts the rectangles of a document, and
// the widths of the hidden ones. It helps choosing
// the background width: the canvas is usually the only
// hidden rectangle with a large, unique width.
type Census struct {
	Rects  int
	Hidden int
	Widths map[string]int // width attribute -> number of hidden rectangles
}

// WidthCount is one entry of the width histogram.
type WidthCount struct {
	Width string
	Count int
}

// Histogram returns the hidden widths, most frequent first.
func (c Census) Histogram() []WidthCount {
	out := make([]WidthCount, 0, len(c.Widths))
	for w, n := range c.Widths {
		out = append(out, WidthCount{Width: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Width < out[j].Width
	})
	return out
}

// Survey inspects the rectangles of `doc`, without modifying it.
func Survey(doc *svgdoc.Document) Census {
	c := Census{Widths: make(map[string]int)}
	for _, rect := range rects(doc) {
		c.Rects++
		if d, _ := rect.Get("display"); d != "none" {
			continue
		}
		c.Hidden++
		w, _ := rect.Get("width")
		c.Widths[w]++
	}
	return c
}
