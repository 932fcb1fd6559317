package svgextract

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/bodysvg/svgbounds"
	"github.com/benoitkugler/bodysvg/svgdoc"
)

const source = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" viewBox="0 0 1000 2000">
  <g id="man_1" inkscape:label="Front"><path d="M 0 0 L 100 50"/></g>
  <g id="man_2"><g id="inner"><path d="M 500 500 L 600 700"/></g><rect width="10" height="10"/></g>
  <g id="woman_1"><rect width="10" height="10"/></g>
  <g id="man_1"><path d="M 900 900 L 950 950"/></g>
</svg>`

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.svg")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected output %s: %s", path, err)
	}
	return string(b)
}

func TestExtractScenario(t *testing.T) {
	src := writeSource(t)
	out := t.TempDir()
	targets := []Target{
		{Group: "man_1", Dir: filepath.Join(out, "male"), File: "front_muscles.svg"},
		{Group: "woman_2", Dir: filepath.Join(out, "female"), File: "back_muscles.svg"},
	}
	results, err := Extract(src, targets, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	front := readOutput(t, targets[0].Path())
	if !strings.HasPrefix(front, svgdoc.Header) {
		t.Fatalf("missing declaration: %s", front)
	}
	if !strings.Contains(front, `version="1.1"`) || !strings.Contains(front, `viewBox="-10.00 -10.00 120.00 70.00"`) {
		t.Fatalf("unexpected root: %s", front)
	}
	if !strings.Contains(front, `xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"`) ||
		!strings.Contains(front, `inkscape:label="Front"`) {
		t.Fatalf("inkscape namespace not preserved: %s", front)
	}
	if strings.Contains(front, "900") {
		t.Fatalf("duplicate group should be ignored: %s", front)
	}
	if results[0].Err != nil || results[0].Fallback {
		t.Fatalf("unexpected result %+v", results[0])
	}

	// missing key: still written, with the source viewport
	back := readOutput(t, targets[1].Path())
	if !strings.Contains(back, `viewBox="0.00 0.00 1000.00 2000.00"`) {
		t.Fatalf("expected fallback viewport: %s", back)
	}
	if !errors.Is(results[1].Err, ErrGroupNotMatched) || !results[1].Fallback {
		t.Fatalf("expected ErrGroupNotMatched, got %+v", results[1])
	}

	// the source is never written back
	if readOutput(t, src) != source {
		t.Fatal("source modified")
	}
}

func TestExtractMissingSource(t *testing.T) {
	out := t.TempDir()
	_, err := Extract(filepath.Join(out, "nope.svg"), []Target{{Group: "man_1", Dir: out, File: "a.svg"}}, DefaultOptions())
	if !errors.Is(err, ErrSourceNotFound) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "a.svg")); err == nil {
		t.Fatal("no output expected")
	}
}

func TestExtractParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.svg")
	if err := os.WriteFile(path, []byte("<svg><g></svg>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Extract(path, nil, DefaultOptions()); !errors.Is(err, svgdoc.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

// collect keeps the serialized outputs, at emission time
type collect map[string]string

func (c collect) emit(t Target, out *svgdoc.Document) error {
	c[t.Group] = string(out.Bytes())
	return nil
}

func parseSource(t *testing.T) *svgdoc.Document {
	doc, err := svgdoc.Parse(strings.NewReader(source))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestNoDrawableFallback(t *testing.T) {
	doc := parseSource(t)
	outputs := collect{}
	results := ExtractDocument(doc, []Target{{Group: "woman_1"}}, DefaultOptions(), outputs.emit)
	if results[0].Err != nil || !results[0].Fallback {
		t.Fatalf("expected silent fallback, got %+v", results[0])
	}
	if results[0].ViewBox != (svgdoc.ViewBox{W: 1000, H: 2000}) {
		t.Fatalf("expected source viewport, got %v", results[0].ViewBox)
	}
	if !strings.Contains(outputs["woman_1"], `<rect width="10" height="10"/>`) {
		t.Fatalf("content expected in output: %s", outputs["woman_1"])
	}
}

func TestOwnershipTransfer(t *testing.T) {
	doc := parseSource(t)
	outputs := collect{}
	ExtractDocument(doc, []Target{{Group: "man_2"}, {Group: "inner"}}, DefaultOptions(), outputs.emit)

	// man_2 was written with its nested group, before inner moved out
	if !strings.Contains(outputs["man_2"], `id="inner"`) {
		t.Fatalf("nested group expected in first output: %s", outputs["man_2"])
	}
	if !strings.Contains(outputs["inner"], `viewBox="490.00 490.00 120.00 220.00"`) {
		t.Fatalf("unexpected nested output: %s", outputs["inner"])
	}
	// moved groups are gone from the source
	for _, el := range doc.Root.Elements() {
		if id, _ := el.Get("id"); id == "man_2" {
			t.Fatal("man_2 still in source")
		}
	}
}

func TestExactBounds(t *testing.T) {
	doc, err := svgdoc.Parse(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg">
		<g id="curve"><path d="M 0 0 C 0 100 100 100 100 0"/></g></svg>`))
	if err != nil {
		t.Fatal(err)
	}
	outputs := collect{}
	results := ExtractDocument(doc, []Target{{Group: "curve"}}, Options{Padding: 0, Bounds: svgbounds.Exact}, outputs.emit)
	if vb := results[0].ViewBox; vb.W != 100 || vb.H < 74.9 || vb.H > 75.1 {
		t.Fatalf("unexpected exact viewport %v", vb)
	}
}

func TestEmitErrorIsLocal(t *testing.T) {
	doc := parseSource(t)
	fail := errors.New("disk full")
	calls := 0
	results := ExtractDocument(doc, []Target{{Group: "man_1"}, {Group: "man_2"}}, DefaultOptions(),
		func(Target, *svgdoc.Document) error {
			calls++
			return fail
		})
	if calls != 2 {
		t.Fatalf("expected every target to be emitted, got %d", calls)
	}
	for _, res := range results {
		if !errors.Is(res.Err, fail) {
			t.Fatalf("expected write error, got %v", res.Err)
		}
	}
}
