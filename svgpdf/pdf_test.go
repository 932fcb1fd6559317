package svgpdf

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/math/fixed"
)

const body = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 400">
	<rect width="200" height="400" fill="#ededed"/>
	<path d="M 10 10 C 50 0 150 0 190 10 Q 100 50 10 10 Z" fill="red" stroke="black" stroke-width="2" stroke-dasharray="4 2"/>
	<circle cx="100" cy="200" r="40" fill="none" stroke="blue" stroke-linecap="round" stroke-linejoin="bevel"/>
</svg>`

func parse(t *testing.T, s string) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestProofSheet(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "arm.svg")
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	sheet := NewProofSheet()
	sheet.AddDocument("body", parse(t, body))
	if err := sheet.AddFile(src); err != nil {
		t.Fatal(err)
	}
	if err := sheet.AddFile(filepath.Join(dir, "missing.svg")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if sheet.Pages() != 2 {
		t.Fatalf("expected 2 pages, got %d", sheet.Pages())
	}

	out := filepath.Join(dir, "proof", "sheet.pdf")
	if err := sheet.WriteFile(out); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("expected a PDF header, got %q", b[:10])
	}
}

func TestEmptySheet(t *testing.T) {
	if err := NewProofSheet().WriteFile(filepath.Join(t.TempDir(), "empty.pdf")); err != errEmptySheet {
		t.Fatalf("expected %v, got %v", errEmptySheet, err)
	}
}

func TestFit(t *testing.T) {
	vb := svgdoc.ViewBox{W: 100, H: 200}
	x, y, w, h := fit(vb, 10, 10, 400, 200)
	if w != 100 || h != 200 || x != 160 || y != 10 {
		t.Fatalf("unexpected fit (%v, %v, %v, %v)", x, y, w, h)
	}
	x, y, w, h = fit(vb, 0, 0, 50, 400)
	if w != 50 || h != 100 || x != 0 || y != 150 {
		t.Fatalf("unexpected fit (%v, %v, %v, %v)", x, y, w, h)
	}
}

func TestBufferedPath(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	f, s := NewRenderer(pdf).SetupDrawers(true, false)
	if s != nil {
		t.Fatal("expected no stroker")
	}
	f.Start(fixed.Point26_6{X: 64, Y: 64})
	f.Line(fixed.Point26_6{X: 640, Y: 64})
	f.QuadBezier(fixed.Point26_6{X: 640, Y: 640}, fixed.Point26_6{X: 64, Y: 640})
	f.Stop(true)
	if n := len(f.(*filler).ops); n != 4 {
		t.Fatalf("expected 4 buffered operations, got %d", n)
	}
	f.SetColor(color.NRGBA{R: 0xff, A: 0x80}, 0.5)
	if op := f.(*filler).opacity; op < 0.25 || op > 0.26 {
		t.Fatalf("expected opacity near 0.25, got %v", op)
	}
	f.Draw()
	f.Clear()
	if n := len(f.(*filler).ops); n != 0 {
		t.Fatalf("expected cleared path, got %d operations", n)
	}
	if err := pdf.Error(); err != nil {
		t.Fatal(err)
	}
}
