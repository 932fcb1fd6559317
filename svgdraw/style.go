package svgdraw

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/bodysvg/svgdoc"
	"github.com/benoitkugler/bodysvg/svgpath"
	"github.com/rs/zerolog/log"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var (
	errParamMismatch = errors.New("svgdraw: param mismatch")
	errColor         = errors.New("svgdraw: unsupported color")
)

// pathStyle holds the state of the SVG style, inherited
// from the ancestors of the element.
type pathStyle struct {
	fill, stroke             *color.NRGBA // nil means none
	fillOpacity, lineOpacity float64
	lineWidth                float64
	useNonZeroWinding        bool
	join                     JoinOptions
	dash                     DashOptions
	transform                rasterx.Matrix2D // current transform
	hidden                   bool             // display: none
}

var black = color.NRGBA{A: 0xff}

// defaultStyle fills black, with the non-zero winding rule,
// full opacity, no stroke, butt caps and miter joins.
var defaultStyle = pathStyle{
	fill:              &black,
	fillOpacity:       1,
	lineOpacity:       1,
	lineWidth:         1,
	useNonZeroWinding: true,
	join:              JoinOptions{MiterLimit: fixed64(4), LineJoin: Miter, LineCap: ButtCap},
	transform:         rasterx.Identity,
}

var namedColors = map[string]color.NRGBA{
	"black":       black,
	"white":       {0xff, 0xff, 0xff, 0xff},
	"red":         {0xff, 0, 0, 0xff},
	"green":       {0, 0x80, 0, 0xff},
	"lime":        {0, 0xff, 0, 0xff},
	"blue":        {0, 0, 0xff, 0xff},
	"yellow":      {0xff, 0xff, 0, 0xff},
	"orange":      {0xff, 0xa5, 0, 0xff},
	"purple":      {0x80, 0, 0x80, 0xff},
	"gray":        {0x80, 0x80, 0x80, 0xff},
	"grey":        {0x80, 0x80, 0x80, 0xff},
	"silver":      {0xc0, 0xc0, 0xc0, 0xff},
	"maroon":      {0x80, 0, 0, 0xff},
	"navy":        {0, 0, 0x80, 0xff},
	"teal":        {0, 0x80, 0x80, 0xff},
	"transparent": {},
}

func parseHex(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 16, 8)
	return uint8(v), err
}

func parseColorComponent(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return uint8(math.Round(clamp(f, 0, 100) * 255 / 100)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(clamp(f, 0, 255))), nil
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// parseSVGColor parses a paint value. A nil color, without
// error, is returned for "none".
func parseSVGColor(v string) (*color.NRGBA, error) {
	v = strings.TrimSpace(v)
	if v == "none" {
		return nil, nil
	}
	if c, ok := namedColors[strings.ToLower(v)]; ok {
		return &c, nil
	}
	switch {
	case strings.HasPrefix(v, "#"):
		hex := v[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return nil, fmt.Errorf("%w: %q", errColor, v)
		}
		var out [3]uint8
		for i := range out {
			c, err := parseHex(hex[2*i : 2*i+2])
			if err != nil {
				return nil, fmt.Errorf("%w: %q", errColor, v)
			}
			out[i] = c
		}
		return &color.NRGBA{R: out[0], G: out[1], B: out[2], A: 0xff}, nil
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		fields := strings.Split(v[4:len(v)-1], ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: %q", errColor, v)
		}
		var out [3]uint8
		for i, f := range fields {
			c, err := parseColorComponent(f)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", errColor, v)
			}
			out[i] = c
		}
		return &color.NRGBA{R: out[0], G: out[1], B: out[2], A: 0xff}, nil
	}
	return nil, fmt.Errorf("%w: %q", errColor, v)
}

func fixed64(f float64) fixed.Int26_6 { return fixed.Int26_6(f * 64) }

func parseFloat(v string) (float64, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, "px")
	return strconv.ParseFloat(v, 64)
}

func readTransformAttr(m1 rasterx.Matrix2D, k string, points []float64) (rasterx.Matrix2D, error) {
	ln := len(points)
	switch k {
	case "rotate":
		if ln == 1 {
			m1 = m1.Rotate(points[0] * math.Pi / 180)
		} else if ln == 3 {
			m1 = m1.Translate(points[1], points[2]).
				Rotate(points[0]*math.Pi/180).
				Translate(-points[1], -points[2])
		} else {
			return m1, errParamMismatch
		}
	case "translate":
		if ln == 1 {
			m1 = m1.Translate(points[0], 0)
		} else if ln == 2 {
			m1 = m1.Translate(points[0], points[1])
		} else {
			return m1, errParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m1 = m1.SkewX(points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m1 = m1.SkewY(points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "scale":
		if ln == 1 {
			m1 = m1.Scale(points[0], points[0])
		} else if ln == 2 {
			m1 = m1.Scale(points[0], points[1])
		} else {
			return m1, errParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m1 = m1.Mult(rasterx.Matrix2D{
				A: points[0],
				B: points[1],
				C: points[2],
				D: points[3],
				E: points[4],
				F: points[5]})
		} else {
			return m1, errParamMismatch
		}
	default:
		return m1, errParamMismatch
	}
	return m1, nil
}

// parseTransform applies the transform list `v` after `m1`.
func parseTransform(m1 rasterx.Matrix2D, v string) (rasterx.Matrix2D, error) {
	ts := strings.Split(v, ")")
	for _, t := range ts {
		t = strings.TrimSpace(t)
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m1, errParamMismatch // badly formed transformation
		}
		var err error
		m1, err = readTransformAttr(m1, strings.ToLower(strings.TrimSpace(d[0])), svgpath.Numbers(d[1]))
		if err != nil {
			return m1, err
		}
	}
	return m1, nil
}

func (curStyle *pathStyle) readStyleAttr(k, v string) error {
	switch k {
	case "fill":
		col, err := parseSVGColor(v)
		if err != nil {
			col = &black
		}
		curStyle.fill = col
		return err
	case "stroke":
		col, err := parseSVGColor(v)
		curStyle.stroke = col // nil on error: no stroke
		return err
	case "fill-rule":
		curStyle.useNonZeroWinding = v != "evenodd"
	case "display":
		if v == "none" {
			curStyle.hidden = true
		}
	case "stroke-linecap":
		switch v {
		case "butt":
			curStyle.join.LineCap = ButtCap
		case "round":
			curStyle.join.LineCap = RoundCap
		case "square":
			curStyle.join.LineCap = SquareCap
		}
	case "stroke-linejoin":
		switch v {
		case "miter":
			curStyle.join.LineJoin = Miter
		case "round":
			curStyle.join.LineJoin = Round
		case "bevel":
			curStyle.join.LineJoin = Bevel
		}
	case "stroke-miterlimit":
		mLimit, err := parseFloat(v)
		if err != nil {
			return err
		}
		curStyle.join.MiterLimit = fixed64(mLimit)
	case "stroke-width":
		width, err := parseFloat(v)
		if err != nil {
			return err
		}
		curStyle.lineWidth = width
	case "stroke-dashoffset":
		dashOffset, err := parseFloat(v)
		if err != nil {
			return err
		}
		curStyle.dash.DashOffset = dashOffset
	case "stroke-dasharray":
		if v == "none" {
			curStyle.dash.Dash = nil
			break
		}
		curStyle.dash.Dash = svgpath.Numbers(v)
	case "opacity", "stroke-opacity", "fill-opacity":
		op, err := parseFloat(v)
		if err != nil {
			return err
		}
		if k != "stroke-opacity" {
			curStyle.fillOpacity *= op
		}
		if k != "fill-opacity" {
			curStyle.lineOpacity *= op
		}
	case "transform":
		m, err := parseTransform(curStyle.transform, v)
		if err != nil {
			return err
		}
		curStyle.transform = m
	}
	return nil
}

// inherit returns the style of `el`, given the style of its parent.
// Presentation attributes are read first, then the declarations
// of the style attribute, which take precedence.
// Invalid values are ignored.
func (parent pathStyle) inherit(el *svgdoc.Element) pathStyle {
	var pairs [][2]string
	for _, attr := range el.Attr {
		if attr.Name.Space != "" {
			continue
		}
		if attr.Name.Local == "style" {
			continue
		}
		pairs = append(pairs, [2]string{attr.Name.Local, attr.Value})
	}
	if st, ok := el.Get("style"); ok {
		for _, decl := range strings.Split(st, ";") {
			kv := strings.SplitN(decl, ":", 2)
			if len(kv) == 2 {
				pairs = append(pairs, [2]string{kv[0], kv[1]})
			}
		}
	}

	curStyle := parent // copy of the parent style
	curStyle.dash.Dash = append([]float64(nil), parent.dash.Dash...)
	for _, kv := range pairs {
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.TrimSpace(kv[1])
		if err := curStyle.readStyleAttr(k, v); err != nil {
			log.Debug().Err(err).Str("element", el.Name.Local).Str("attr", k).Msg("invalid style value; ignored")
		}
	}
	return curStyle
}
