package svgpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	errParamMismatch  = errors.New("svgpath: param mismatch")
	errCommandUnknown = errors.New("svgpath: unknown command")
	errNoMoveTo       = errors.New("svgpath: path data must start with a moveto")
)

// number of parameters of each (lower case) command
var paramCount = map[byte]int{
	'm': 2, 'l': 2, 't': 2,
	'h': 1, 'v': 1,
	'c': 6,
	's': 4, 'q': 4,
	'a': 7,
	'z': 0,
}

// pathCursor is used to compile the `d` attribute
// of a path element.
type pathCursor struct {
	path             Path
	placeX, placeY   float64 // current point
	startX, startY   float64 // start of the current sub path
	cntlPtX, cntlPtY float64 // last control point, for the S and T commands
	lastKey          byte
	points           []float64
}

// Compile converts the path data `d` into
// a sequence of absolute operations.
// Arcs are approximated by cubic bezier curves.
func Compile(d string) (Path, error) {
	var c pathCursor
	if err := c.compile(d); err != nil {
		return nil, err
	}
	return c.path, nil
}

func isSeparator(b byte) bool {
	return b == ',' || b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

// scanNumber returns the length of the number starting `s`,
// or 0 if `s` does not start with a number.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func (c *pathCursor) compile(d string) error {
	var cmd byte
	for i := 0; i < len(d); {
		b := d[i]
		switch {
		case isSeparator(b):
			i++
		case b == '+' || b == '-' || b == '.' || isDigit(b):
			if cmd == 0 {
				return errNoMoveTo
			}
			// arc flags may be written without separator
			if k := len(c.points) % 7; (cmd == 'a' || cmd == 'A') && (k == 3 || k == 4) {
				if b != '0' && b != '1' {
					return fmt.Errorf("%w: invalid arc flag %q", errParamMismatch, b)
				}
				c.points = append(c.points, float64(b-'0'))
				i++
				continue
			}
			n := scanNumber(d[i:])
			if n == 0 {
				return fmt.Errorf("%w: invalid number at %d", errParamMismatch, i)
			}
			v, err := strconv.ParseFloat(d[i:i+n], 64)
			if err != nil {
				return fmt.Errorf("svgpath: invalid number %q: %w", d[i:i+n], err)
			}
			c.points = append(c.points, v)
			i += n
		default:
			if _, ok := paramCount[b|0x20]; !ok {
				return fmt.Errorf("%w: %q", errCommandUnknown, b)
			}
			if cmd == 0 && b|0x20 != 'm' {
				return errNoMoveTo
			}
			if cmd != 0 {
				if err := c.addSeg(cmd); err != nil {
					return err
				}
			}
			cmd = b
			c.points = c.points[:0]
			i++
		}
	}
	if cmd == 0 {
		return nil
	}
	return c.addSeg(cmd)
}

// addSeg applies the command `cmd` with the accumulated points,
// repeating it as needed.
func (c *pathCursor) addSeg(cmd byte) error {
	rel := cmd >= 'a'
	k := cmd | 0x20
	n := paramCount[k]
	l := len(c.points)
	if k == 'z' {
		if l != 0 {
			return errParamMismatch
		}
		c.path.Stop(true)
		c.placeX, c.placeY = c.startX, c.startY
		c.lastKey = k
		return nil
	}
	if l == 0 || l%n != 0 {
		return fmt.Errorf("%w: %d values for command %c", errParamMismatch, l, cmd)
	}
	for j := 0; j < l; j += n {
		p := c.points[j : j+n]
		var ox, oy float64
		if rel {
			ox, oy = c.placeX, c.placeY
		}
		switch k {
		case 'm':
			if j == 0 {
				c.moveTo(p[0]+ox, p[1]+oy)
			} else { // following pairs are implicit lineto
				c.lineTo(p[0]+ox, p[1]+oy)
			}
		case 'l':
			c.lineTo(p[0]+ox, p[1]+oy)
		case 'h':
			c.lineTo(p[0]+ox, c.placeY)
		case 'v':
			c.lineTo(c.placeX, p[0]+oy)
		case 'c':
			c.cubicTo(p[0]+ox, p[1]+oy, p[2]+ox, p[3]+oy, p[4]+ox, p[5]+oy)
		case 's':
			x1, y1 := c.reflectControl('c', 's')
			c.cubicTo(x1, y1, p[0]+ox, p[1]+oy, p[2]+ox, p[3]+oy)
		case 'q':
			c.quadTo(p[0]+ox, p[1]+oy, p[2]+ox, p[3]+oy)
		case 't':
			x1, y1 := c.reflectControl('q', 't')
			c.quadTo(x1, y1, p[0]+ox, p[1]+oy)
		case 'a':
			c.arcTo(p[0], p[1], p[2], p[3], p[4], p[5]+ox, p[6]+oy)
		}
		c.lastKey = k
	}
	return nil
}

// reflectControl returns the reflection of the last control point
// around the current point, if the previous command was one of `keys`,
// or the current point otherwise.
func (c *pathCursor) reflectControl(keys ...byte) (x, y float64) {
	for _, k := range keys {
		if c.lastKey == k {
			return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
		}
	}
	return c.placeX, c.placeY
}

func (c *pathCursor) moveTo(x, y float64) {
	c.path.Start(toFixedP(x, y))
	c.placeX, c.placeY = x, y
	c.startX, c.startY = x, y
}

func (c *pathCursor) lineTo(x, y float64) {
	c.path.Line(toFixedP(x, y))
	c.placeX, c.placeY = x, y
}

func (c *pathCursor) quadTo(x1, y1, x, y float64) {
	c.path.QuadBezier(toFixedP(x1, y1), toFixedP(x, y))
	c.cntlPtX, c.cntlPtY = x1, y1
	c.placeX, c.placeY = x, y
}

func (c *pathCursor) cubicTo(x1, y1, x2, y2, x, y float64) {
	c.path.CubeBezier(toFixedP(x1, y1), toFixedP(x2, y2), toFixedP(x, y))
	c.cntlPtX, c.cntlPtY = x2, y2
	c.placeX, c.placeY = x, y
}

func (c *pathCursor) arcTo(rx, ry, rot, large, sweep, x, y float64) {
	if x == c.placeX && y == c.placeY {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		c.lineTo(x, y)
		return
	}
	cx, cy := findEllipseCenter(&rx, &ry, rot*math.Pi/180, c.placeX, c.placeY, x, y, sweep == 0, large == 0)
	c.placeX, c.placeY = c.path.addArc([]float64{rx, ry, rot, large, sweep, x, y}, cx, cy, c.placeX, c.placeY)
}
