package svgpath

import (
	"math"
	"regexp"
	"strconv"
)

// numberRe matches the numeric literals of path data and point lists:
// an optional sign, digits with an optional fraction, and an optional
// exponent. Command letters and separators are skipped.
var numberRe = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?`)

// Numbers returns every numeric literal of `d`, in order.
// A literal which can't be converted (out of range) is kept as NaN,
// so that the positions of the following values are preserved.
func Numbers(d string) []float64 {
	matches := numberRe.FindAllString(d, -1)
	out := make([]float64, len(matches))
	for i, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil || math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
