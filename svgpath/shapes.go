package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an off-axis ellipse.
const maxDx float64 = math.Pi / 8

// kappa is the control distance, relative to the radius,
// of a cubic curve approximating a quarter of circle.
const kappa = 0.5522847498

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = fixed.Int26_6(x * 64)
	p.Y = fixed.Int26_6(y * 64)
	return
}

// AddRect adds a closed rectangle.
func (p *Path) AddRect(minX, minY, maxX, maxY float64) {
	p.Start(toFixedP(minX, minY))
	p.Line(toFixedP(maxX, minY))
	p.Line(toFixedP(maxX, maxY))
	p.Line(toFixedP(minX, maxY))
	p.Stop(true)
}

// AddRoundRect adds a rectangle with rounded corners of radius
// rx in the x axis and ry in the y axis. Radii are clamped
// to half the size of the rectangle.
func (p *Path) AddRoundRect(minX, minY, maxX, maxY, rx, ry float64) {
	if rx <= 0 || ry <= 0 {
		p.AddRect(minX, minY, maxX, maxY)
		return
	}
	if w := maxX - minX; w < rx*2 {
		rx = w / 2
	}
	if h := maxY - minY; h < ry*2 {
		ry = h / 2
	}
	kx, ky := rx*kappa, ry*kappa

	p.Start(toFixedP(minX+rx, minY))
	p.Line(toFixedP(maxX-rx, minY))
	p.CubeBezier(toFixedP(maxX-rx+kx, minY), toFixedP(maxX, minY+ry-ky), toFixedP(maxX, minY+ry))
	p.Line(toFixedP(maxX, maxY-ry))
	p.CubeBezier(toFixedP(maxX, maxY-ry+ky), toFixedP(maxX-rx+kx, maxY), toFixedP(maxX-rx, maxY))
	p.Line(toFixedP(minX+rx, maxY))
	p.CubeBezier(toFixedP(minX+rx-kx, maxY), toFixedP(minX, maxY-ry+ky), toFixedP(minX, maxY-ry))
	p.Line(toFixedP(minX, minY+ry))
	p.CubeBezier(toFixedP(minX, minY+ry-ky), toFixedP(minX+rx-kx, minY), toFixedP(minX+rx, minY))
	p.Stop(true)
}

// AddEllipse adds a closed, axis aligned ellipse, using four cubic curves.
func (p *Path) AddEllipse(cx, cy, rx, ry float64) {
	kx, ky := rx*kappa, ry*kappa
	p.Start(toFixedP(cx+rx, cy))
	p.CubeBezier(toFixedP(cx+rx, cy+ky), toFixedP(cx+kx, cy+ry), toFixedP(cx, cy+ry))
	p.CubeBezier(toFixedP(cx-kx, cy+ry), toFixedP(cx-rx, cy+ky), toFixedP(cx-rx, cy))
	p.CubeBezier(toFixedP(cx-rx, cy-ky), toFixedP(cx-kx, cy-ry), toFixedP(cx, cy-ry))
	p.CubeBezier(toFixedP(cx+kx, cy-ry), toFixedP(cx+rx, cy-ky), toFixedP(cx+rx, cy))
	p.Stop(true)
}

// AddPolyline adds the segments joining the (x, y) pairs of `points`,
// closing the loop if `closeLoop` is true. A trailing odd value is ignored.
func (p *Path) AddPolyline(points []float64, closeLoop bool) {
	if len(points) < 2 {
		return
	}
	p.Start(toFixedP(points[0], points[1]))
	for i := 2; i+1 < len(points); i += 2 {
		p.Line(toFixedP(points[i], points[i+1]))
	}
	p.Stop(closeLoop)
}

// addArc adds an arc to the adder p
func (p *Path) addArc(points []float64, cx, cy, px, py float64) (lx, ly float64) {
	rotX := points[2] * math.Pi / 180 // Convert degress to radians
	largeArc := points[3] != 0
	sweep := points[4] != 0
	startAngle := math.Atan2(py-cy, px-cx) - rotX
	endAngle := math.Atan2(points[6]-cy, points[5]-cx) - rotX
	deltaTheta := endAngle - startAngle
	arcBig := math.Abs(deltaTheta) > math.Pi

	// Approximate ellipse using cubic bezeir splines
	etaStart := math.Atan2(math.Sin(startAngle)/points[1], math.Cos(startAngle)/points[0])
	etaEnd := math.Atan2(math.Sin(endAngle)/points[1], math.Cos(endAngle)/points[0])
	deltaEta := etaEnd - etaStart
	if arcBig != largeArc {
		if deltaEta < 0 {
			deltaEta += math.Pi * 2
		} else {
			deltaEta -= math.Pi * 2
		}
	}
	// This check might be needed if the center point of the elipse is
	// at the midpoint of the start and end lines.
	if deltaEta < 0 && sweep {
		deltaEta += math.Pi * 2
	} else if deltaEta >= 0 && !sweep {
		deltaEta -= math.Pi * 2
	}

	// Round up to determine number of cubic splines to approximate bezier curve
	segs := int(math.Abs(deltaEta)/maxDx) + 1
	dEta := deltaEta / float64(segs) // span of each segment
	// Approximate the ellipse using a set of cubic bezier curves by the method of
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3
	lx, ly = px, py
	sinTheta, cosTheta := math.Sin(rotX), math.Cos(rotX)
	ldx, ldy := ellipsePrime(points[0], points[1], sinTheta, cosTheta, etaStart)
	for i := 1; i <= segs; i++ {
		eta := etaStart + dEta*float64(i)
		var px, py float64
		if i == segs {
			px, py = points[5], points[6] // Just makes the end point exact; no roundoff error
		} else {
			px, py = ellipsePointAt(points[0], points[1], sinTheta, cosTheta, eta, cx, cy)
		}
		dx, dy := ellipsePrime(points[0], points[1], sinTheta, cosTheta, eta)
		p.CubeBezier(toFixedP(lx+alpha*ldx, ly+alpha*ldy),
			toFixedP(px-alpha*dx, py-alpha*dy), toFixedP(px, py))
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	return lx, ly
}

// ellipsePrime gives tangent vectors for parameterized elipse; a, b, radii, eta parameter
func ellipsePrime(a, b, sinTheta, cosTheta, eta float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}

// findEllipseCenter locates the center of the Ellipse if it exists. If it does not exist,
// the radius values will be increased minimally for a solution to be possible
// while preserving the ra to rb ratio.  ra and rb arguments are pointers that can be
// checked after the call to see if the values changed. This method uses coordinate transformations
// to reduce the problem to finding the center of a circle that includes the origin
// and an arbitrary point. The center of the circle is then transformed
// back to the original coordinates and returned.
func findEllipseCenter(ra, rb *float64, rotX, startX, startY, endX, endY float64, sweep, smallArc bool) (cx, cy float64) {
	cos, sin := math.Cos(rotX), math.Sin(rotX)

	// Move origin to start point
	nx, ny := endX-startX, endY-startY

	// Rotate ellipse x-axis to coordinate x-axis
	nx, ny = nx*cos+ny*sin, -nx*sin+ny*cos
	// Scale X dimension so that ra = rb
	nx *= *rb / *ra // Now the ellipse is a circle radius rb; therefore foci and center coincide

	midX, midY := nx/2, ny/2
	midlenSq := midX*midX + midY*midY

	var hr float64
	if *rb**rb < midlenSq {
		// Requested ellipse does not exist; scale ra, rb to fit. Length of
		// span is greater than max width of ellipse, must scale *ra, *rb
		nrb := math.Sqrt(midlenSq)
		if *ra == *rb {
			*ra = nrb // prevents roundoff
		} else {
			*ra = *ra * nrb / *rb
		}
		*rb = nrb
	} else {
		hr = math.Sqrt(*rb**rb-midlenSq) / math.Sqrt(midlenSq)
	}
	// Notice that if hr is zero, both answers are the same.
	if (sweep && smallArc) || (!sweep && !smallArc) {
		cx = midX + midY*hr
		cy = midY - midX*hr
	} else {
		cx = midX - midY*hr
		cy = midY + midX*hr
	}

	// reverse scale
	cx *= *ra / *rb
	//Reverse rotate and translate back to original coordinates
	return cx*cos - cy*sin + startX, cx*sin + cy*cos + startY
}
