package svgdraw

import (
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/benoitkugler/bodysvg/svgpath"
	"github.com/rs/zerolog/log"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// elements which are never painted, and whose content is skipped
var skipped = map[string]bool{
	"defs":           true,
	"title":          true,
	"desc":           true,
	"metadata":       true,
	"style":          true,
	"script":         true,
	"clipPath":       true,
	"mask":           true,
	"symbol":         true,
	"pattern":        true,
	"linearGradient": true,
	"radialGradient": true,
}

// Canvas binds a document to the target area of a driver.
type Canvas struct {
	doc       *svgdoc.Document
	ViewBox   svgdoc.ViewBox
	Transform rasterx.Matrix2D // from user units to the driver space
}

// NewCanvas returns a canvas drawing `doc` in its own user units.
func NewCanvas(doc *svgdoc.Document) *Canvas {
	return &Canvas{doc: doc, ViewBox: doc.ViewBox(), Transform: rasterx.Identity}
}

// SetTarget sets the Transform matrix to draw within the bounds of the rectangle arguments
func (c *Canvas) SetTarget(x, y, w, h float64) {
	scaleW := w / c.ViewBox.W
	scaleH := h / c.ViewBox.H
	c.Transform = rasterx.Identity.Translate(x, y).Scale(scaleW, scaleH).Translate(-c.ViewBox.X, -c.ViewBox.Y)
}

// Draw paints the visible shapes of the document into the driver `d`,
// and returns the number of painted shapes.
func (c *Canvas) Draw(d Driver, opacity float64) int {
	if c.doc.Root == nil {
		return 0
	}
	space := c.doc.Namespace()
	count := 0
	var walk func(el *svgdoc.Element, parent pathStyle)
	walk = func(el *svgdoc.Element, parent pathStyle) {
		// foreign elements (editor metadata) are not drawn
		if el.Name.Space != "" && el.Name.Space != space {
			return
		}
		if skipped[el.Name.Local] {
			return
		}
		style := parent.inherit(el)
		if style.hidden {
			return
		}
		if path := shapePath(el); len(path) != 0 {
			if c.drawPath(d, path, style, opacity) {
				count++
			}
		}
		for _, child := range el.Elements() {
			walk(child, style)
		}
	}
	walk(c.doc.Root, defaultStyle)
	return count
}

// matrixAdder applies the transform to the points
// before sending them to the drawer.
type matrixAdder struct {
	Drawer
	M rasterx.Matrix2D
}

func (m matrixAdder) tr(p fixed.Point26_6) fixed.Point26_6 {
	x, y := float64(p.X)/64, float64(p.Y)/64
	return fixed.Point26_6{
		X: fixed64(m.M.A*x + m.M.C*y + m.M.E),
		Y: fixed64(m.M.B*x + m.M.D*y + m.M.F),
	}
}

func (m matrixAdder) Start(a fixed.Point26_6) { m.Drawer.Start(m.tr(a)) }
func (m matrixAdder) Line(b fixed.Point26_6)  { m.Drawer.Line(m.tr(b)) }
func (m matrixAdder) QuadBezier(b, c fixed.Point26_6) {
	m.Drawer.QuadBezier(m.tr(b), m.tr(c))
}
func (m matrixAdder) CubeBezier(b, c, d fixed.Point26_6) {
	m.Drawer.CubeBezier(m.tr(b), m.tr(c), m.tr(d))
}

// drawPath sends the path to the drawers returned by `d`.
// It returns false if there was nothing to paint.
func (c *Canvas) drawPath(d Driver, path svgpath.Path, style pathStyle, opacity float64) bool {
	m := c.Transform.Mult(style.transform)
	// stroke width and dashes scale with the transform
	scale := math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))

	willFill := style.fill != nil
	willStroke := style.stroke != nil && style.lineWidth > 0
	if !willFill && !willStroke {
		return false
	}
	filler, stroker := d.SetupDrawers(willFill, willStroke)
	if filler != nil {
		filler.Clear()
		filler.SetWinding(style.useNonZeroWinding)
		path.AddTo(matrixAdder{Drawer: filler, M: m})
		filler.SetColor(*style.fill, style.fillOpacity*opacity)
		filler.Draw()
		filler.SetWinding(true) // default is true
	}
	if stroker != nil {
		stroker.Clear()
		dash := DashOptions{DashOffset: style.dash.DashOffset * scale}
		for _, v := range style.dash.Dash {
			dash.Dash = append(dash.Dash, v*scale)
		}
		stroker.SetStrokeOptions(StrokeOptions{
			LineWidth: fixed64(style.lineWidth * scale),
			Join:      style.join,
			Dash:      dash,
		})
		path.AddTo(matrixAdder{Drawer: stroker, M: m})
		stroker.SetColor(*style.stroke, style.lineOpacity*opacity)
		stroker.Draw()
	}
	return true
}

// readLength reads a numeric attribute, with an optional px suffix.
// Missing or invalid values read as 0.
func readLength(el *svgdoc.Element, name string) float64 {
	v, ok := el.Get(name)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		log.Debug().Str("element", el.Name.Local).Str("attr", name).Str("value", v).Msg("invalid length; using 0")
		return 0
	}
	return f
}

// shapePath returns the outline of a basic shape,
// or nil if `el` is not a shape or has nothing to draw.
func shapePath(el *svgdoc.Element) svgpath.Path {
	var p svgpath.Path
	switch el.Name.Local {
	case "path":
		d, _ := el.Get("d")
		path, err := svgpath.Compile(d)
		if err != nil {
			id, _ := el.Get("id")
			log.Debug().Err(err).Str("id", id).Msg("invalid path data; skipped")
			return nil
		}
		return path
	case "rect":
		x, y := readLength(el, "x"), readLength(el, "y")
		w, h := readLength(el, "width"), readLength(el, "height")
		if w <= 0 || h <= 0 {
			return nil
		}
		rx, ry := readLength(el, "rx"), readLength(el, "ry")
		if !el.Has("rx") {
			rx = ry
		}
		if !el.Has("ry") {
			ry = rx
		}
		p.AddRoundRect(x, y, x+w, y+h, rx, ry)
	case "circle":
		r := readLength(el, "r")
		if r <= 0 {
			return nil
		}
		p.AddEllipse(readLength(el, "cx"), readLength(el, "cy"), r, r)
	case "ellipse":
		rx, ry := readLength(el, "rx"), readLength(el, "ry")
		if rx <= 0 || ry <= 0 {
			return nil
		}
		p.AddEllipse(readLength(el, "cx"), readLength(el, "cy"), rx, ry)
	case "line":
		p.AddPolyline([]float64{
			readLength(el, "x1"), readLength(el, "y1"),
			readLength(el, "x2"), readLength(el, "y2"),
		}, false)
	case "polyline", "polygon":
		points, _ := el.Get("points")
		p.AddPolyline(svgpath.Numbers(points), el.Name.Local == "polygon")
	}
	return p
}
