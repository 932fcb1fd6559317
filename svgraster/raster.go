// Implements a raster backend to render SVG images,
// by wrapping rasterx.
package svgraster

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/benoitkugler/bodysvg/svgdraw"
	"github.com/srwiley/rasterx"
)

var _ svgdraw.Driver = (*Renderer)(nil) // assert interface conformance

var errEmptyViewBox = errors.New("svgraster: empty viewBox")

type Renderer struct {
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance
}

// NewRenderer returns a renderer with default values.
// In addition to rasterizing lines like a Scanner,
// it can also rasterize quadratic and cubic bezier curves.
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	return &Renderer{dasher: rasterx.NewDasher(width, height, scanner), filler: rasterx.NewFiller(width, height, scanner)}
}

type filler struct{ *rasterx.Filler }

func (f filler) SetColor(c color.NRGBA, opacity float64) {
	f.Filler.SetColor(rasterx.ApplyOpacity(c, opacity))
}

type stroker struct{ *rasterx.Dasher }

func (s stroker) SetColor(c color.NRGBA, opacity float64) {
	s.Dasher.SetColor(rasterx.ApplyOpacity(c, opacity))
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgdraw.Round: rasterx.Round,
		svgdraw.Bevel: rasterx.Bevel,
		svgdraw.Miter: rasterx.Miter,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgdraw.ButtCap:   rasterx.ButtCap,
		svgdraw.SquareCap: rasterx.SquareCap,
		svgdraw.RoundCap:  rasterx.RoundCap,
	}
)

func (s stroker) SetStrokeOptions(options svgdraw.StrokeOptions) {
	lineCap := capToFunc[options.Join.LineCap]
	s.Dasher.SetStroke(
		options.LineWidth, options.Join.MiterLimit, lineCap, lineCap,
		rasterx.FlatGap, joinToJoin[options.Join.LineJoin],
		options.Dash.Dash, options.Dash.DashOffset,
	)
}

// SetupDrawers implements svgdraw.Driver. Both drawers
// share the scanner, and each one sets its color before drawing.
func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (f svgdraw.Filler, s svgdraw.Stroker) {
	if willFill {
		f = filler{rd.filler}
	}
	if willStroke {
		s = stroker{rd.dasher}
	}
	return f, s
}

// Raster draws the document into a new image `width` pixels wide,
// keeping the aspect ratio of its viewBox.
// If width is not positive, one pixel per user unit is used.
func Raster(doc *svgdoc.Document, width int) (*image.RGBA, error) {
	vb := doc.ViewBox()
	if vb.W <= 0 || vb.H <= 0 {
		return nil, errEmptyViewBox
	}
	if width <= 0 {
		width = int(math.Ceil(vb.W))
	}
	height := int(math.Ceil(float64(width) * vb.H / vb.W))
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	renderer := NewRenderer(width, height, scanner)
	canvas := svgdraw.NewCanvas(doc)
	canvas.SetTarget(0, 0, float64(width), float64(height))
	canvas.Draw(renderer, 1.0)
	return img, nil
}

// RasterFile reads and draws the SVG file at `path`.
func RasterFile(path string, width int) (*image.RGBA, error) {
	doc, err := svgdoc.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Raster(doc, width)
}

// WritePNG encodes the image into `path`, creating the parent
// directories if needed.
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
