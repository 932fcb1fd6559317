package svgdraw

import (
	"image/color"
	"strings"
	"testing"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"golang.org/x/image/math/fixed"
)

// recorder logs the operations it receives
type recorder struct {
	kind    string
	points  []fixed.Point26_6
	color   color.NRGBA
	opacity float64
	winding bool
	options StrokeOptions
	draws   int
}

func (r *recorder) Clear()                                 { r.points = r.points[:0] }
func (r *recorder) Start(a fixed.Point26_6)                { r.points = append(r.points, a) }
func (r *recorder) Line(b fixed.Point26_6)                 { r.points = append(r.points, b) }
func (r *recorder) QuadBezier(b, c fixed.Point26_6)        { r.points = append(r.points, b, c) }
func (r *recorder) CubeBezier(b, c, d fixed.Point26_6)     { r.points = append(r.points, b, c, d) }
func (r *recorder) Stop(bool)                              {}
func (r *recorder) SetColor(c color.NRGBA, op float64)     { r.color, r.opacity = c, op }
func (r *recorder) Draw()                                  { r.draws++ }
func (r *recorder) SetWinding(useNonZeroWinding bool)      { r.winding = useNonZeroWinding }
func (r *recorder) SetStrokeOptions(options StrokeOptions) { r.options = options }

// recordDriver keeps one call per painted shape
type recordDriver struct {
	fills, strokes []*recorder
}

func (d *recordDriver) SetupDrawers(willFill, willStroke bool) (Filler, Stroker) {
	var (
		f Filler
		s Stroker
	)
	if willFill {
		d.fills = append(d.fills, &recorder{kind: "fill"})
		f = d.fills[len(d.fills)-1]
	}
	if willStroke {
		d.strokes = append(d.strokes, &recorder{kind: "stroke"})
		s = d.strokes[len(d.strokes)-1]
	}
	return f, s
}

func parse(t *testing.T, s string) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func pt(x, y float64) fixed.Point26_6 { return fixed.Point26_6{X: fixed64(x), Y: fixed64(y)} }

func TestDrawCascade(t *testing.T) {
	doc := parse(t, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:sodipodi="http://sodipodi.sourceforge.net/DTD/sodipodi-0.dtd" viewBox="0 0 100 100">
		<sodipodi:namedview id="view"/>
		<defs><rect id="hidden-def" width="10" height="10"/></defs>
		<title>body</title>
		<g fill="#ff0000" opacity="0.5">
			<rect x="0" y="0" width="10" height="10"/>
			<rect x="0" y="0" width="10" height="10" style="fill: #00f; stroke: white; stroke-width: 2"/>
			<path d="M 0 0 L 10 10 Z" fill="none" stroke="rgb(0, 128, 0)"/>
		</g>
		<g display="none"><rect width="10" height="10"/></g>
		<rect width="10" height="10" style="display:none"/>
		<rect width="0" height="10"/>
	</svg>`)

	var d recordDriver
	if n := NewCanvas(doc).Draw(&d, 1); n != 3 {
		t.Fatalf("expected 3 painted shapes, got %d", n)
	}
	if len(d.fills) != 2 || len(d.strokes) != 2 {
		t.Fatalf("expected 2 fills and 2 strokes, got %d and %d", len(d.fills), len(d.strokes))
	}
	if d.fills[0].color != (color.NRGBA{R: 0xff, A: 0xff}) || d.fills[0].opacity != 0.5 {
		t.Fatalf("inherited fill expected, got %v %v", d.fills[0].color, d.fills[0].opacity)
	}
	if d.fills[1].color != (color.NRGBA{B: 0xff, A: 0xff}) {
		t.Fatalf("style attribute should override, got %v", d.fills[1].color)
	}
	if d.strokes[0].options.LineWidth != fixed64(2) || d.strokes[0].color != (color.NRGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Fatalf("unexpected stroke %+v", d.strokes[0])
	}
	if d.strokes[1].color != (color.NRGBA{G: 128, A: 0xff}) || d.strokes[1].options.LineWidth != fixed64(1) {
		t.Fatalf("unexpected stroke %+v", d.strokes[1])
	}
	for _, f := range d.fills {
		if f.draws != 1 || !f.winding {
			t.Fatalf("unexpected fill state %+v", f)
		}
	}
}

func TestDrawTransform(t *testing.T) {
	doc := parse(t, `<svg viewBox="-10 -10 20 20">
		<g transform="translate(5, 5) scale(2)"><path d="M 1 1 L 2 1"/></g>
	</svg>`)
	c := NewCanvas(doc)
	c.SetTarget(0, 0, 200, 200)

	var d recordDriver
	c.Draw(&d, 1)
	if len(d.fills) != 1 {
		t.Fatalf("expected one fill, got %d", len(d.fills))
	}
	// user (1,1) -> (7,7) in the viewport -> (170,170) on the target
	got := d.fills[0].points
	if len(got) < 2 || got[0] != pt(170, 170) || got[1] != pt(190, 170) {
		t.Fatalf("unexpected transformed points %v", got)
	}
}

func TestDrawStrokeScales(t *testing.T) {
	doc := parse(t, `<svg viewBox="0 0 10 10"><path d="M 0 0 L 10 0" fill="none" stroke="black" stroke-dasharray="1,2"/></svg>`)
	c := NewCanvas(doc)
	c.SetTarget(0, 0, 100, 100)
	var d recordDriver
	c.Draw(&d, 1)
	if len(d.strokes) != 1 {
		t.Fatalf("expected one stroke, got %d", len(d.strokes))
	}
	opts := d.strokes[0].options
	if opts.LineWidth != fixed64(10) || len(opts.Dash.Dash) != 2 || opts.Dash.Dash[1] != 20 {
		t.Fatalf("unexpected scaled options %+v", opts)
	}
}

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		v    string
		want *color.NRGBA
		err  bool
	}{
		{"#fff", &color.NRGBA{0xff, 0xff, 0xff, 0xff}, false},
		{"#EDEDED", &color.NRGBA{0xed, 0xed, 0xed, 0xff}, false},
		{"rgb(100%, 0%, 50)", &color.NRGBA{0xff, 0, 50, 0xff}, false},
		{"Red", &color.NRGBA{0xff, 0, 0, 0xff}, false},
		{"none", nil, false},
		{"url(#grad)", nil, true},
		{"#12", nil, true},
	} {
		got, err := parseSVGColor(test.v)
		if (err != nil) != test.err {
			t.Fatalf("%q: unexpected error %v", test.v, err)
		}
		if (got == nil) != (test.want == nil) || (got != nil && *got != *test.want) {
			t.Fatalf("%q: expected %v, got %v", test.v, test.want, got)
		}
	}
}

func TestParseTransform(t *testing.T) {
	m, err := parseTransform(defaultStyle.transform, "translate(10) rotate(90)")
	if err != nil {
		t.Fatal(err)
	}
	// (1, 0) rotated to (0, 1) then moved to (10, 1)
	x, y := m.A*1+m.E, m.B*1+m.F
	if abs(x-10) > 1e-9 || abs(y-1) > 1e-9 {
		t.Fatalf("unexpected transform %v", m)
	}
	for _, v := range []string{"translate(1,2,3)", "spin(4)", "scale()"} {
		if _, err := parseTransform(defaultStyle.transform, v); err == nil {
			t.Errorf("%q: expected error", v)
		}
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func TestShapes(t *testing.T) {
	doc := parse(t, `<svg>
		<circle cx="5" cy="5" r="2"/>
		<ellipse cx="5" cy="5" rx="2" ry="1"/>
		<line x1="0" y1="0" x2="3" y2="4" stroke="black"/>
		<polygon points="0,0 1,0 1,1"/>
		<polyline points="0,0 1,0 1,1" fill="none" stroke="black"/>
		<rect width="4" height="4" rx="1"/>
		<path d="M 0 0 Q"/>
	</svg>`)
	var d recordDriver
	if n := NewCanvas(doc).Draw(&d, 1); n != 6 {
		t.Fatalf("expected 6 painted shapes, got %d", n)
	}
}
