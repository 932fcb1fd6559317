// Implements a PDF backend to render SVG images,
// by wrapping github.com/jung-kurt/gofpdf.
package svgpdf

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/benoitkugler/bodysvg/svgdraw"
	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/math/fixed"
)

// assert interface conformance
var (
	_ svgdraw.Driver  = Renderer{}
	_ svgdraw.Filler  = (*filler)(nil)
	_ svgdraw.Stroker = (*stroker)(nil)
)

var errEmptySheet = errors.New("svgpdf: no document added to the sheet")

type Renderer struct {
	pdf *gofpdf.Fpdf
}

// NewRenderer return a renderer which will
// write to the current page of `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) Renderer {
	return Renderer{pdf: pdf}
}

func (r Renderer) SetupDrawers(willFill, willStroke bool) (f svgdraw.Filler, s svgdraw.Stroker) {
	if willFill {
		f = &filler{pather: pather{pdf: r.pdf}, useNonZeroWinding: true}
	}
	if willStroke {
		s = &stroker{pather: pather{pdf: r.pdf}}
	}
	return f, s
}

// implements the common path commands,
// shared by the filler and the stroker.
// Operations are buffered, since the color and the
// graphic state must be set before the path is written.
type pather struct {
	pdf     *gofpdf.Fpdf
	ops     []func()
	color   color.NRGBA
	opacity float64
}

// implements the filling operation
type filler struct {
	pather
	useNonZeroWinding bool
}

// implements the stroking operation
type stroker struct {
	pather
	options svgdraw.StrokeOptions
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

func (p *pather) Clear() { p.ops = p.ops[:0] }

func (p *pather) Start(a fixed.Point26_6) {
	x, y := fixedTof(a)
	p.ops = append(p.ops, func() { p.pdf.MoveTo(x, y) })
}

func (p *pather) Line(b fixed.Point26_6) {
	x, y := fixedTof(b)
	p.ops = append(p.ops, func() { p.pdf.LineTo(x, y) })
}

func (p *pather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.ops = append(p.ops, func() { p.pdf.CurveTo(cx, cy, x, y) })
}

func (p *pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.ops = append(p.ops, func() { p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y) })
}

func (p *pather) Stop(closeLoop bool) {
	if closeLoop {
		p.ops = append(p.ops, p.pdf.ClosePath)
	}
}

func (p *pather) SetColor(c color.NRGBA, opacity float64) {
	p.color = c
	p.opacity = opacity * float64(c.A) / 255
}

// flush writes the buffered path
func (p *pather) flush() {
	for _, op := range p.ops {
		op()
	}
}

func (f *filler) SetWinding(useNonZeroWinding bool) {
	f.useNonZeroWinding = useNonZeroWinding
}

func (f *filler) Draw() {
	f.pdf.SetFillColor(int(f.color.R), int(f.color.G), int(f.color.B))
	f.pdf.SetAlpha(f.opacity, "Normal")
	f.flush()
	styleStr := "f*"
	if f.useNonZeroWinding {
		styleStr = "f"
	}
	f.pdf.DrawPath(styleStr)
}

var (
	capStyles  = [...]string{svgdraw.ButtCap: "butt", svgdraw.SquareCap: "square", svgdraw.RoundCap: "round"}
	joinStyles = [...]string{svgdraw.Round: "round", svgdraw.Bevel: "bevel", svgdraw.Miter: "miter"}
)

// SetStrokeOptions stores the options, applied when drawing.
// gofpdf has no setter for the miter limit, which is ignored.
func (s *stroker) SetStrokeOptions(options svgdraw.StrokeOptions) {
	s.options = options
}

func (s *stroker) Draw() {
	s.pdf.SetDrawColor(int(s.color.R), int(s.color.G), int(s.color.B))
	s.pdf.SetAlpha(s.opacity, "Normal")
	s.pdf.SetLineWidth(float64(s.options.LineWidth) / 64)
	s.pdf.SetLineCapStyle(capStyles[s.options.Join.LineCap])
	s.pdf.SetLineJoinStyle(joinStyles[s.options.Join.LineJoin])
	s.pdf.SetDashPattern(s.options.Dash.Dash, s.options.Dash.DashOffset)
	s.flush()
	s.pdf.DrawPath("D")
}

const (
	margin    = 28.0 // page margin, in points
	titleSize = 12.0 // font size of the page title
)

// ProofSheet collects SVG documents in a PDF file,
// one page per document, to review the output of a run.
type ProofSheet struct {
	pdf   *gofpdf.Fpdf
	pages int
}

// NewProofSheet returns an empty A4 sheet, measured in points.
func NewProofSheet() *ProofSheet {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", titleSize)
	return &ProofSheet{pdf: pdf}
}

// fit returns the largest rectangle with the aspect ratio of `vb`,
// centered in the area (x, y, w, h).
func fit(vb svgdoc.ViewBox, x, y, w, h float64) (float64, float64, float64, float64) {
	scale := math.Min(w/vb.W, h/vb.H)
	fw, fh := vb.W*scale, vb.H*scale
	return x + (w-fw)/2, y + (h-fh)/2, fw, fh
}

// AddDocument adds a page with the given title, where `doc` is
// drawn as large as possible.
func (ps *ProofSheet) AddDocument(title string, doc *svgdoc.Document) {
	ps.pdf.AddPage()
	ps.pages++

	ps.pdf.SetAlpha(1, "Normal")
	ps.pdf.SetTextColor(0, 0, 0)
	ps.pdf.Text(margin, margin+titleSize, title)

	vb := doc.ViewBox()
	if vb.W <= 0 || vb.H <= 0 {
		log.Warn().Str("title", title).Msg("empty viewBox; page left blank")
		return
	}
	pageW, pageH := ps.pdf.GetPageSize()
	top := margin + 2*titleSize
	x, y, w, h := fit(vb, margin, top, pageW-2*margin, pageH-top-margin)

	canvas := svgdraw.NewCanvas(doc)
	canvas.SetTarget(x, y, w, h)
	n := canvas.Draw(NewRenderer(ps.pdf), 1)
	log.Debug().Str("title", title).Int("shapes", n).Msg("page added to the proof sheet")
}

// AddFile reads the SVG file at `path` and adds it,
// using its name as title.
func (ps *ProofSheet) AddFile(path string) error {
	doc, err := svgdoc.ReadFile(path)
	if err != nil {
		return err
	}
	ps.AddDocument(filepath.Base(path), doc)
	return nil
}

// Pages returns the number of documents added.
func (ps *ProofSheet) Pages() int { return ps.pages }

// WriteFile closes the sheet and writes it to `path`.
func (ps *ProofSheet) WriteFile(path string) error {
	if ps.pages == 0 {
		return errEmptySheet
	}
	if err := ps.pdf.Error(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return ps.pdf.OutputFileAndClose(path)
}
