// Splits a combined drawing into standalone documents:
// each named group is moved into a new document whose viewport
// is fitted to the group content.
package svgextract

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/benoitkugler/bodysvg/svgbounds"
	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSourceNotFound is returned when the combined document can't be opened.
	// The underlying fs error is also wrapped.
	ErrSourceNotFound = errors.New("svgextract: source document not found")
	// ErrGroupNotMatched is reported in a Result when no group carries
	// the requested id. The output is still written, with the source viewport.
	ErrGroupNotMatched = errors.New("svgextract: group not found in source")
)

type sourceError struct{ err error }

func (e sourceError) Error() string        { return ErrSourceNotFound.Error() + ": " + e.err.Error() }
func (e sourceError) Unwrap() error        { return e.err }
func (e sourceError) Is(target error) bool { return target == ErrSourceNotFound }

// Target maps a group id to its output file.
type Target struct {
	Group string // id of the group in the source document
	Dir   string
	File  string
}

// Path returns the location of the output file.
func (t Target) Path() string { return filepath.Join(t.Dir, t.File) }

// Options tunes the viewport computation.
type Options struct {
	Padding float64 // added on every side of the content region
	Bounds  svgbounds.Method
}

// DefaultOptions returns a padding of 10 user units,
// with the pairs bounds method.
func DefaultOptions() Options { return Options{Padding: 10, Bounds: svgbounds.Pairs} }

// Result describes the outcome for one target.
type Result struct {
	Target  Target
	ViewBox svgdoc.ViewBox
	// Fallback is true when the viewport was copied from the source,
	// because the group is missing or has no drawable content.
	Fallback bool
	// Err is ErrGroupNotMatched (wrapped) or a write error.
	Err error
}

// Emitter receives each output document, in target order.
// It is called before the next group is moved.
type Emitter func(t Target, out *svgdoc.Document) error

// WriteFiles is the Emitter writing each document to its target path.
func WriteFiles(t Target, out *svgdoc.Document) error {
	return out.WriteFile(t.Path())
}

// Extract reads the document at `sourcePath` and writes one file per target.
// A missing source is reported as ErrSourceNotFound, and nothing is written.
// Other failures are local to a target and reported in its Result.
func Extract(sourcePath string, targets []Target, opts Options) ([]Result, error) {
	doc, err := svgdoc.ReadFile(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, sourceError{err: err}
		}
		return nil, err
	}
	return ExtractDocument(doc, targets, opts, WriteFiles), nil
}

// locateGroups returns the first `g` element carrying each wanted id.
func locateGroups(doc *svgdoc.Document, targets []Target) map[string]*svgdoc.Element {
	wanted := make(map[string]bool, len(targets))
	for _, t := range targets {
		wanted[t.Group] = true
	}
	groups := make(map[string]*svgdoc.Element)
	doc.Root.Walk(func(el *svgdoc.Element) bool {
		if el.Name.Local != "g" {
			return true
		}
		id, ok := el.Get("id")
		if !ok || !wanted[id] {
			return true
		}
		if _, seen := groups[id]; seen {
			log.Warn().Str("group", id).Msg("duplicate group id; keeping the first one")
			return true
		}
		groups[id] = el
		return true
	})
	return groups
}

// newDocument returns an empty document in the namespace of `src`.
func newDocument(src *svgdoc.Document, vb svgdoc.ViewBox) *svgdoc.Document {
	space := src.Namespace()
	root := svgdoc.NewElement(space, "svg")
	root.Set("xmlns", space)
	root.Set("version", "1.1")
	root.Set("viewBox", vb.String())
	return svgdoc.NewDocument(root)
}

// ExtractDocument moves the groups named by `targets` out of `doc`.
// Groups are all located first, then handled in target order: each one
// is measured, moved into a new document and passed to `emit`.
// A group nested in a previously emitted one is thus moved out of
// that output.
func ExtractDocument(doc *svgdoc.Document, targets []Target, opts Options, emit Emitter) []Result {
	groups := locateGroups(doc, targets)
	sourceVB := doc.ViewBox()

	results := make([]Result, len(targets))
	for i, t := range targets {
		res := Result{Target: t, ViewBox: sourceVB}
		logger := log.With().Str("group", t.Group).Str("path", t.Path()).Logger()

		group := groups[t.Group]
		if group == nil {
			logger.Warn().Msg("group not found; using the source viewport")
			res.Err = fmt.Errorf("%w: %q", ErrGroupNotMatched, t.Group)
			res.Fallback = true
		} else if box, ok := svgbounds.Of(group, opts.Bounds); ok {
			res.ViewBox = box.Pad(opts.Padding)
		} else {
			logger.Warn().Msg("no drawable content; using the source viewport")
			res.Fallback = true
		}

		out := newDocument(doc, res.ViewBox)
		if group != nil {
			for _, space := range group.Namespaces() {
				if space == out.Namespace() {
					continue
				}
				if prefix, ok := doc.Prefix(space); ok {
					out.Declare(prefix, space)
				}
			}
			out.Root.AppendChild(group)
		}

		if err := emit(t, out); err != nil {
			logger.Error().Err(err).Msg("writing output failed; continuing")
			res.Err = err
		} else {
			logger.Info().Str("viewBox", res.ViewBox.String()).Bool("fallback", res.Fallback).Msg("extracted")
		}
		results[i] = res
	}
	return results
}
