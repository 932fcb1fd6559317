package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const source = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000 2000">
  <rect width="3542.31" height="10" display="none"/>
  <g id="man_1">
    <path d="M 0 0 L 100 50"/>
    <rect x="10" y="10" width="20" height="20" display="none"/>
  </g>
</svg>`

// writeProject writes the source drawing and a configuration
// extracting man_1 and the missing woman_2 into `dir`.
func writeProject(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	src := filepath.Join(dir, "source.svg")
	if err := os.WriteFile(src, []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	cfg := `source: ` + src + `
outputBase: ` + dir + `
targets:
  - {group: man_1, dir: male, file: front_muscles.svg}
  - {group: woman_2, dir: female, file: back_muscles.svg}
preview:
  width: 64
  pdf: previews/proof.pdf
`
	cfgPath = filepath.Join(dir, "bodysvg.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir, cfgPath
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected file %s: %v", path, err)
	}
	return string(b)
}

func TestRunPipeline(t *testing.T) {
	dir, cfgPath := writeProject(t)
	var out bytes.Buffer
	if code := run([]string{"-config", cfgPath, "run"}, &out); code != exitOK {
		t.Fatalf("expected exit code %d, got %d", exitOK, code)
	}

	front := readFile(t, filepath.Join(dir, "male", "front_muscles.svg"))
	if !strings.Contains(front, `viewBox="-10.00 -10.00 120.00 70.00"`) {
		t.Fatalf("unexpected viewBox in %s", front)
	}
	if strings.Contains(front, `display="none"`) || !strings.Contains(front, `stroke="#fff"`) {
		t.Fatalf("expected normalized overlay rectangle in %s", front)
	}
	// the missing group degrades to the source viewport
	back := readFile(t, filepath.Join(dir, "female", "back_muscles.svg"))
	if !strings.Contains(back, `viewBox="0.00 0.00 1000.00 2000.00"`) {
		t.Fatalf("expected source viewport in %s", back)
	}
	if !strings.Contains(out.String(), "woman_2") || !strings.Contains(out.String(), "warning") {
		t.Fatalf("expected a warning line for woman_2, got %q", out.String())
	}

	// normalizing again is a no-op
	before := front
	if code := run([]string{"-config", cfgPath, "normalize"}, &out); code != exitOK {
		t.Fatalf("expected exit code %d, got %d", exitOK, code)
	}
	if after := readFile(t, filepath.Join(dir, "male", "front_muscles.svg")); after != before {
		t.Fatalf("expected unchanged file, got %s", after)
	}

	out.Reset()
	if code := run([]string{"-config", cfgPath, "preview"}, &out); code != exitOK {
		t.Fatalf("expected exit code %d, got %d", exitOK, code)
	}
	for _, name := range []string{"male_front_muscles.png", "female_back_muscles.png", "proof.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, "previews", name)); err != nil {
			t.Fatalf("expected preview %s: %v", name, err)
		}
	}
}

func TestRunFlagsOverride(t *testing.T) {
	dir, cfgPath := writeProject(t)
	var out bytes.Buffer
	code := run([]string{"-config", cfgPath, "-padding", "0", "-out", filepath.Join(dir, "other"), "extract"}, &out)
	if code != exitOK {
		t.Fatalf("expected exit code %d, got %d", exitOK, code)
	}
	front := readFile(t, filepath.Join(dir, "other", "male", "front_muscles.svg"))
	if !strings.Contains(front, `viewBox="0.00 0.00 100.00 50.00"`) {
		t.Fatalf("expected unpadded viewBox in %s", front)
	}
	// extract does not normalize
	if !strings.Contains(front, `display="none"`) {
		t.Fatalf("expected hidden rectangle kept in %s", front)
	}
}

func TestRunExitCodes(t *testing.T) {
	dir, cfgPath := writeProject(t)
	var out bytes.Buffer
	for _, test := range []struct {
		args []string
		want int
	}{
		{[]string{"-config", cfgPath}, exitUsage},
		{[]string{"-config", cfgPath, "transmogrify"}, exitUsage},
		{[]string{"-config", cfgPath, "survey"}, exitUsage},
		{[]string{"-config", cfgPath, "extract", "extra"}, exitUsage},
		{[]string{"-unknown-flag"}, exitUsage},
		{[]string{"-config", cfgPath, "-bounds", "hull", "extract"}, exitFailure},
		{[]string{"-config", filepath.Join(dir, "missing.yaml"), "extract"}, exitFailure},
		{[]string{"-config", cfgPath, "-source", filepath.Join(dir, "missing.svg"), "extract"}, exitFailure},
		{[]string{"-config", cfgPath, "survey", filepath.Join(dir, "missing.svg")}, exitFailure},
		// missing files to normalize are skipped
		{[]string{"-config", cfgPath, "normalize", filepath.Join(dir, "missing.svg")}, exitOK},
	} {
		if code := run(test.args, &out); code != test.want {
			t.Errorf("%v: expected exit code %d, got %d", test.args, test.want, code)
		}
	}
}

func TestSurvey(t *testing.T) {
	dir, cfgPath := writeProject(t)
	var out bytes.Buffer
	if code := run([]string{"-config", cfgPath, "survey", filepath.Join(dir, "source.svg")}, &out); code != exitOK {
		t.Fatalf("expected exit code %d, got %d", exitOK, code)
	}
	got := out.String()
	for _, want := range []string{"rects: 2\n", "hidden: 2\n", `width="3542.31" count=1`, `width="20" count=1`} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
}

func TestPNGName(t *testing.T) {
	for path, want := range map[string]string{
		filepath.Join("assets", "male", "front.svg"): "male_front.png",
		"front.svg": "front.png",
	} {
		if got := pngName(path); got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	}
}
