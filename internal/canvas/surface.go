// Package canvas defines the 2D drawing capability the renderer paints on,
// with a software rasterizer and a recording implementation.
package canvas

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Paint is a fill or stroke style.
type Paint interface {
	isPaint()
}

// Solid paints a single color.
type Solid struct {
	Color Color
}

// LinearGradient interpolates stops along the segment From→To.
type LinearGradient struct {
	From, To r2.Vec
	Stops    []Stop
}

// RadialGradient interpolates stops between two circles, following the
// two-circle definition used by HTML canvas. An offset inner circle gives a
// lit-from-the-side sphere.
type RadialGradient struct {
	C0    r2.Vec
	R0    float64
	C1    r2.Vec
	R1    float64
	Stops []Stop
}

func (Solid) isPaint()          {}
func (LinearGradient) isPaint() {}
func (RadialGradient) isPaint() {}

// Surface is a 2D drawing surface with a save/restore transform stack.
// All coordinates are in user space, transformed by the current matrix.
type Surface interface {
	Size() (width, height int)

	// Clear fills the whole surface, ignoring the transform, and starts a new frame.
	Clear(p Paint)
	FillRect(x, y, w, h float64, p Paint)
	FillEllipse(center r2.Vec, rx, ry, rotation float64, p Paint)
	// StrokeEllipse strokes the arc between the start and end parameter angles.
	StrokeEllipse(center r2.Vec, rx, ry, rotation, start, end, width float64, p Paint)
	StrokePath(points []r2.Vec, width float64, p Paint)
	FillText(text string, at r2.Vec, c Color)

	Save()
	Restore()
	Translate(d r2.Vec)
	Rotate(theta float64)

	// SetGlow enables a soft halo of the given size around subsequent fills.
	// A blur of zero disables it.
	SetGlow(blur float64, c Color)
}

// Grouper is implemented by surfaces that can mark logical layers.
type Grouper interface {
	BeginGroup(name string)
	EndGroup()
}

// Resizer is implemented by surfaces whose size can change.
type Resizer interface {
	Resize(width, height int)
}

// FillCircle fills a circle.
func FillCircle(s Surface, center r2.Vec, r float64, p Paint) {
	s.FillEllipse(center, r, r, 0, p)
}

// StrokeFullEllipse strokes a closed ellipse outline.
func StrokeFullEllipse(s Surface, center r2.Vec, rx, ry, rotation, width float64, p Paint) {
	s.StrokeEllipse(center, rx, ry, rotation, 0, 2*math.Pi, width, p)
}

// Label is a piece of text placed on a surface, in device coordinates.
type Label struct {
	Text  string
	At    r2.Vec
	Color Color
}

// affine is a 2D affine matrix [a b c d e f]:
//
//	x' = a·x + c·y + e
//	y' = b·x + d·y + f
type affine [6]float64

func identity() affine {
	return affine{1, 0, 0, 1, 0, 0}
}

func (m affine) apply(p r2.Vec) r2.Vec {
	return r2.Vec{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

func (m affine) translate(d r2.Vec) affine {
	m[4] += m[0]*d.X + m[2]*d.Y
	m[5] += m[1]*d.X + m[3]*d.Y
	return m
}

func (m affine) rotate(theta float64) affine {
	sin, cos := math.Sincos(theta)
	a, b, c, d := m[0], m[1], m[2], m[3]
	m[0] = a*cos + c*sin
	m[1] = b*cos + d*sin
	m[2] = -a*sin + c*cos
	m[3] = -b*sin + d*cos
	return m
}

func (m affine) scale() float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

func (m affine) angle() float64 {
	return math.Atan2(m[1], m[0])
}

// devicePaint maps a paint's geometry into device space.
func (m affine) devicePaint(p Paint) Paint {
	switch g := p.(type) {
	case LinearGradient:
		return LinearGradient{From: m.apply(g.From), To: m.apply(g.To), Stops: g.Stops}
	case RadialGradient:
		s := m.scale()
		return RadialGradient{C0: m.apply(g.C0), R0: g.R0 * s, C1: m.apply(g.C1), R1: g.R1 * s, Stops: g.Stops}
	}
	return p
}

// ellipsePoints samples an elliptical arc in user space.
func ellipsePoints(center r2.Vec, rx, ry, rotation, start, end float64, segments int) []r2.Vec {
	pts := make([]r2.Vec, 0, segments+1)
	sinR, cosR := math.Sincos(rotation)
	for i := 0; i <= segments; i++ {
		t := start + (end-start)*float64(i)/float64(segments)
		sin, cos := math.Sincos(t)
		x, y := rx*cos, ry*sin
		pts = append(pts, r2.Vec{
			X: center.X + x*cosR - y*sinR,
			Y: center.Y + x*sinR + y*cosR,
		})
	}
	return pts
}

// segmentsFor picks a polygon resolution for an arc of the given device radius.
func segmentsFor(radius, sweep float64) int {
	n := int(math.Ceil(radius * math.Abs(sweep) / 2))
	switch {
	case n < 12:
		return 12
	case n > 512:
		return 512
	}
	return n
}
