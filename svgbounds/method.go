package svgbounds

import (
	"fmt"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/benoitkugler/bodysvg/svgpath"
	"github.com/rs/zerolog/log"
)

// Method selects how the path data of drawable elements is measured.
type Method uint8

const (
	// Pairs reads the numeric literals of the path data as
	// alternating x and y coordinates.
	Pairs Method = iota
	// Exact compiles the path data and uses the extrema of each segment.
	// Elements whose path data can't be compiled fall back to Pairs.
	Exact
)

func (m Method) String() string {
	switch m {
	case Pairs:
		return "pairs"
	case Exact:
		return "path"
	default:
		return fmt.Sprintf("<unknown Method %d>", m)
	}
}

// ParseMethod returns the method named `s`, as used in configuration files.
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "pairs":
		return Pairs, nil
	case "path":
		return Exact, nil
	default:
		return 0, fmt.Errorf("svgbounds: unknown bounds method %q", s)
	}
}

// Of returns the bounding region of every element of the subtree
// rooted at `el` (el included) carrying a `d` attribute.
// The boolean is false when no such element contributes to both axes.
func Of(el *svgdoc.Element, method Method) (Box, bool) {
	box := Empty()
	el.Walk(func(e *svgdoc.Element) bool {
		d, ok := e.Get("d")
		if !ok {
			return true
		}
		if method == Exact {
			path, err := svgpath.Compile(d)
			if err == nil {
				box.AddPath(path)
				return true
			}
			id, _ := e.Get("id")
			log.Debug().Err(err).Str("id", id).Msg("path data not compiled; using pairs")
		}
		box.AddPairs(d)
		return true
	})
	return box, !box.IsEmpty()
}
