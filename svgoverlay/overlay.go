// Normalizes the styling of the overlay rectangles of a body diagram,
// so that selectable regions render without gaps.
//
// Each rectangle is classified into a State; the rewrite only moves
// rectangles forward (Hidden to Visible to Stroked), so applying it twice
// is the same as applying it once.
package svgoverlay

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/rs/zerolog/log"
)

// ErrTargetNotFound is returned by NormalizeFile when the file does not exist.
var ErrTargetNotFound = errors.New("svgoverlay: target file not found")

// State is the styling state of one rectangle.
type State uint8

const (
	// Hidden rectangles carry display="none".
	Hidden State = iota
	// Visible rectangles are displayed, without stroke.
	Visible
	// Stroked rectangles are displayed and stroked.
	Stroked
	// Background is the canvas rectangle, identified by its width.
	// It is never modified.
	Background
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	case Stroked:
		return "stroked"
	case Background:
		return "background"
	default:
		return fmt.Sprintf("<unknown State %d>", s)
	}
}

// Options configures the rewrite. Values are attribute values,
// compared and written verbatim.
type Options struct {
	BackgroundWidth string // width of the background rectangle
	DefaultFill     string // fill of unhidden rectangles
	PlaceholderFill string // fill replaced by DefaultFill when unhiding
	StrokeColor     string
	StrokeWidth     string
	Unhide          bool // if false, hidden rectangles stay hidden
}

// DefaultOptions returns the settings used for the body model assets.
func DefaultOptions() Options {
	return Options{
		BackgroundWidth: "3542.31",
		DefaultFill:     "#fff",
		PlaceholderFill: "#ededed",
		StrokeColor:     "#fff",
		StrokeWidth:     "1",
		Unhide:          true,
	}
}

// Classify returns the current state of the rectangle.
func (opts Options) Classify(rect *svgdoc.Element) State {
	if w, ok := rect.Get("width"); ok && w == opts.BackgroundWidth {
		return Background
	}
	if d, _ := rect.Get("display"); d == "none" {
		return Hidden
	}
	if rect.Has("stroke") {
		return Stroked
	}
	return Visible
}

// unhide moves a Hidden rectangle to Visible.
func (opts Options) unhide(rect *svgdoc.Element) {
	rect.Remove("display")
	if fill, ok := rect.Get("fill"); !ok {
		rect.Prepend("fill", opts.DefaultFill)
	} else if fill == opts.PlaceholderFill {
		rect.Set("fill", opts.DefaultFill)
	}
}

// stroke moves a Visible rectangle to Stroked.
func (opts Options) stroke(rect *svgdoc.Element) {
	rect.Prepend("stroke-width", opts.StrokeWidth)
	rect.Prepend("stroke", opts.StrokeColor)
}

// Report summarizes a normalization.
type Report struct {
	States   map[State]int // final state of the rectangles
	Unhidden int
	Stroked  int
}

// Changed returns true if at least one rectangle was modified.
func (r Report) Changed() bool { return r.Unhidden > 0 || r.Stroked > 0 }

func rects(doc *svgdoc.Document) []*svgdoc.Element {
	return doc.Root.FindAll(func(el *svgdoc.Element) bool { return el.Name.Local == "rect" })
}

// Normalize rewrites the rectangles of `doc` in place, with two passes
// over the whole document: hidden rectangles are unhidden first (if enabled),
// then every visible rectangle without stroke is stroked.
func Normalize(doc *svgdoc.Document, opts Options) Report {
	report := Report{States: make(map[State]int)}
	all := rects(doc)

	if opts.Unhide {
		for _, rect := range all {
			if opts.Classify(rect) == Hidden {
				opts.unhide(rect)
				report.Unhidden++
			}
		}
	}

	for _, rect := range all {
		if opts.Classify(rect) == Visible {
			opts.stroke(rect)
			report.Stroked++
		}
	}

	for _, rect := range all {
		report.States[opts.Classify(rect)]++
	}
	return report
}

// NormalizeFile normalizes the document at `path`, and writes it back
// only if it was modified.
func NormalizeFile(path string, opts Options) (Report, error) {
	doc, err := svgdoc.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Report{}, fmt.Errorf("%w: %s", ErrTargetNotFound, path)
		}
		return Report{}, err
	}
	report := Normalize(doc, opts)
	logger := log.With().Str("path", path).Int("unhidden", report.Unhidden).Int("stroked", report.Stroked).Logger()
	if !report.Changed() {
		logger.Debug().Msg("already normalized")
		return report, nil
	}
	if err := doc.WriteFile(path); err != nil {
		return report, fmt.Errorf("svgoverlay: writing %s: %w", path, err)
	}
	logger.Info().Msg("normalized")
	return report, nil
}
