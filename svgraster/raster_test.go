package svgraster

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/bodysvg/svgdoc"
)

func parse(t *testing.T, s string) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestRaster(t *testing.T) {
	doc := parse(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="10 10 10 20">
		<rect x="10" y="10" width="5" height="20" fill="#ff0000"/>
		<rect x="15" y="20" width="5" height="10" fill="blue" fill-opacity="0"/>
	</svg>`)
	img, err := Raster(doc, 20)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 40 {
		t.Fatalf("expected 20x40 image, got %v", b)
	}

	r, g, b, a := img.At(5, 20).RGBA()
	if r>>8 != 0xff || g != 0 || b != 0 || a>>8 != 0xff {
		t.Fatalf("expected opaque red, got %d %d %d %d", r, g, b, a)
	}
	// right half is empty or transparent
	for _, p := range [][2]int{{15, 10}, {15, 30}} {
		if _, _, _, a := img.At(p[0], p[1]).RGBA(); a != 0 {
			t.Fatalf("expected transparent pixel at %v, got alpha %d", p, a)
		}
	}
}

func TestRasterStroke(t *testing.T) {
	doc := parse(t, `<svg viewBox="0 0 10 10"><path d="M 0 5 L 10 5" fill="none" stroke="black" stroke-width="2"/></svg>`)
	img, err := Raster(doc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
		t.Fatalf("expected 10x10 image, got %v", b)
	}
	if _, _, _, a := img.At(5, 5).RGBA(); a>>8 != 0xff {
		t.Fatalf("expected stroked pixel, got alpha %d", a)
	}
	if _, _, _, a := img.At(5, 1).RGBA(); a != 0 {
		t.Fatalf("expected empty pixel, got alpha %d", a)
	}
}

func TestRasterEmptyViewBox(t *testing.T) {
	doc := parse(t, `<svg viewBox="0 0 0 10"/>`)
	if _, err := Raster(doc, 10); err != errEmptyViewBox {
		t.Fatalf("expected %v, got %v", errEmptyViewBox, err)
	}
}

func TestWritePNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "head.svg")
	if err := os.WriteFile(src, []byte(`<svg viewBox="0 0 4 4"><circle cx="2" cy="2" r="2"/></svg>`), 0o644); err != nil {
		t.Fatal(err)
	}
	img, err := RasterFile(src, 8)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "preview", "head.png")
	if err := WritePNG(out, img); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
	}

	if _, err := RasterFile(filepath.Join(dir, "missing.svg"), 8); err == nil {
		t.Fatal("expected error for missing file")
	}
}
