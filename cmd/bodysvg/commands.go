package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/benoitkugler/bodysvg/internal/config"
	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/benoitkugler/bodysvg/svgextract"
	"github.com/benoitkugler/bodysvg/svgoverlay"
	"github.com/benoitkugler/bodysvg/svgpdf"
	"github.com/benoitkugler/bodysvg/svgraster"
)

// command runs the subcommands with a validated configuration.
// Summaries go to `out`, diagnostics to the logger.
type command struct {
	cfg config.Config
	out io.Writer
}

func (c command) dispatch(name string, args []string) error {
	switch name {
	case "extract":
		if len(args) != 0 {
			return fmt.Errorf("%w: extract takes no argument", errUsage)
		}
		_, err := c.extract()
		return err
	case "normalize":
		c.normalize(c.normalizeTargets(args))
		return nil
	case "run":
		if len(args) != 0 {
			return fmt.Errorf("%w: run takes no argument", errUsage)
		}
		if _, err := c.extract(); err != nil {
			return err
		}
		c.normalize(c.cfg.NormalizeTargets())
		return nil
	case "preview":
		return c.preview(args)
	case "survey":
		if len(args) != 1 {
			return fmt.Errorf("%w: survey takes exactly one file", errUsage)
		}
		return c.survey(args[0])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
}

// extract fails only when the source can't be read:
// the other failures are reported per target.
func (c command) extract() ([]svgextract.Result, error) {
	results, err := svgextract.Extract(c.cfg.Source, c.cfg.ExtractTargets(), c.cfg.ExtractOptions())
	if err != nil {
		return nil, err
	}
	for _, res := range results {
		status := "ok"
		switch {
		case res.Err != nil:
			status = "warning: " + res.Err.Error()
		case res.Fallback:
			status = "warning: no drawable content"
		}
		fmt.Fprintf(c.out, "%-10s %-40s %s  %s\n", res.Target.Group, res.Target.Path(), res.ViewBox, status)
	}
	return results, nil
}

// normalizeTargets returns the files given on the command line,
// with unhiding enabled, or the configured ones.
func (c command) normalizeTargets(args []string) []config.NormalizeTarget {
	if len(args) == 0 {
		return c.cfg.NormalizeTargets()
	}
	out := make([]config.NormalizeTarget, len(args))
	for i, path := range args {
		out[i] = config.NormalizeTarget{Path: path, Unhide: true}
	}
	return out
}

// normalize never fails: a missing or invalid file is skipped.
func (c command) normalize(targets []config.NormalizeTarget) {
	for _, t := range targets {
		report, err := svgoverlay.NormalizeFile(t.Path, c.cfg.OverlayOptions(t.Unhide))
		if err != nil {
			log.Warn().Err(err).Str("path", t.Path).Msg("normalize failed; skipping")
			continue
		}
		fmt.Fprintf(c.out, "%-40s unhidden=%d stroked=%d background=%d hidden=%d\n", t.Path,
			report.Unhidden, report.Stroked,
			report.States[svgoverlay.Background], report.States[svgoverlay.Hidden])
	}
}

// pngName avoids collisions between files of the same name
// in different directories, such as male/front.svg and female/front.svg.
func pngName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if dir := filepath.Base(filepath.Dir(path)); dir != "." && dir != string(filepath.Separator) {
		base = dir + "_" + base
	}
	return base + ".png"
}

func (c command) preview(files []string) error {
	if len(files) == 0 {
		for _, t := range c.cfg.ExtractTargets() {
			files = append(files, t.Path())
		}
	}
	pngDir, pdfPath := c.cfg.PreviewPaths()
	sheet := svgpdf.NewProofSheet()
	for _, file := range files {
		logger := log.With().Str("path", file).Logger()
		doc, err := svgdoc.ReadFile(file)
		if err != nil {
			logger.Warn().Err(err).Msg("reading failed; skipping")
			continue
		}
		img, err := svgraster.Raster(doc, c.cfg.Preview.Width)
		if err != nil {
			logger.Warn().Err(err).Msg("rendering failed; skipping")
			continue
		}
		out := filepath.Join(pngDir, pngName(file))
		if err := svgraster.WritePNG(out, img); err != nil {
			logger.Warn().Err(err).Msg("writing preview failed; continuing")
		} else {
			fmt.Fprintf(c.out, "%-40s %s\n", file, out)
		}
		sheet.AddDocument(file, doc)
	}
	if pdfPath == "" || sheet.Pages() == 0 {
		return nil
	}
	if err := sheet.WriteFile(pdfPath); err != nil {
		log.Warn().Err(err).Str("path", pdfPath).Msg("writing proof sheet failed")
		return nil
	}
	fmt.Fprintf(c.out, "proof sheet: %s (%d pages)\n", pdfPath, sheet.Pages())
	return nil
}

func (c command) survey(path string) error {
	doc, err := svgdoc.ReadFile(path)
	if err != nil {
		return err
	}
	census := svgoverlay.Survey(doc)
	fmt.Fprintf(c.out, "rects: %d\nhidden: %d\n", census.Rects, census.Hidden)
	for _, wc := range census.Histogram() {
		fmt.Fprintf(c.out, "  width=%q count=%d\n", wc.Width, wc.Count)
	}
	return nil
}
