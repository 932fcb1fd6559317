package svgdoc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errParamMismatch = errors.New("svgdoc: viewBox needs four numbers")

// ViewBox is the viewport of a document, in user units.
type ViewBox struct{ X, Y, W, H float64 }

// DefaultViewBox is used when a root declares neither
// a viewBox nor a usable width and height.
var DefaultViewBox = ViewBox{0, 0, 100, 100}

// String formats the viewport as expected by the viewBox attribute,
// with two decimals.
func (vb ViewBox) String() string {
	return fmt.Sprintf("%.2f %.2f %.2f %.2f", vb.X, vb.Y, vb.W, vb.H)
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
}

// ParseViewBox parses the value of a viewBox attribute.
func ParseViewBox(s string) (ViewBox, error) {
	fields := splitOnCommaOrSpace(s)
	if len(fields) != 4 {
		return ViewBox{}, errParamMismatch
	}
	var points [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return ViewBox{}, fmt.Errorf("svgdoc: invalid viewBox %q: %w", s, err)
		}
		points[i] = v
	}
	return ViewBox{points[0], points[1], points[2], points[3]}, nil
}

// parseLength reads a width or height attribute, ignoring
// an absolute unit suffix.
func parseLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, unit := range [...]string{"px", "pt", "mm", "cm", "in"} {
		if strings.HasSuffix(s, unit) {
			s = strings.TrimSuffix(s, unit)
			break
		}
	}
	return strconv.ParseFloat(s, 64)
}

// ViewBox returns the viewport declared by the root element: its
// viewBox attribute, or else its width and height, or else DefaultViewBox.
func (doc *Document) ViewBox() ViewBox {
	if v, ok := doc.Root.Get("viewBox"); ok {
		if vb, err := ParseViewBox(v); err == nil {
			return vb
		}
	}
	var vb ViewBox
	if v, ok := doc.Root.Get("width"); ok {
		vb.W, _ = parseLength(v)
	}
	if v, ok := doc.Root.Get("height"); ok {
		vb.H, _ = parseLength(v)
	}
	if vb.W <= 0 || vb.H <= 0 {
		return DefaultViewBox
	}
	return vb
}
