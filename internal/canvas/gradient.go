package canvas

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// paintImage adapts a device-space Paint to image.Image so it can be used as a
// draw source under a coverage mask.
type paintImage struct {
	paint Paint
}

func newPaintImage(p Paint) image.Image {
	if s, ok := p.(Solid); ok {
		return image.NewUniform(s.Color.NRGBA())
	}
	return paintImage{paint: p}
}

func (paintImage) ColorModel() color.Model { return color.NRGBAModel }

func (paintImage) Bounds() image.Rectangle {
	return image.Rect(-1e9, -1e9, 1e9, 1e9)
}

func (pi paintImage) At(x, y int) color.Color {
	p := r2.Vec{X: float64(x) + 0.5, Y: float64(y) + 0.5}
	return sample(pi.paint, p).NRGBA()
}

// sample evaluates a paint at a device-space point.
func sample(p Paint, at r2.Vec) Color {
	switch g := p.(type) {
	case Solid:
		return g.Color
	case LinearGradient:
		t, ok := linearT(g, at)
		if !ok {
			return ColorAt(g.Stops, 1)
		}
		return ColorAt(g.Stops, t)
	case RadialGradient:
		t, ok := radialT(g, at)
		if !ok {
			return Transparent
		}
		return ColorAt(g.Stops, t)
	}
	return Transparent
}

func linearT(g LinearGradient, at r2.Vec) (float64, bool) {
	axis := r2.Sub(g.To, g.From)
	lenSq := r2.Dot(axis, axis)
	if lenSq == 0 {
		return 0, false
	}
	return r2.Dot(r2.Sub(at, g.From), axis) / lenSq, true
}

// radialT solves |p − c(t)| = r(t) with c(t) = c0 + t·(c1−c0) and
// r(t) = r0 + t·(r1−r0), taking the largest root with r(t) ≥ 0.
func radialT(g RadialGradient, at r2.Vec) (float64, bool) {
	cd := r2.Sub(g.C1, g.C0)
	pd := r2.Sub(at, g.C0)
	dr := g.R1 - g.R0

	a := r2.Dot(cd, cd) - dr*dr
	b := r2.Dot(pd, cd) + g.R0*dr
	c := r2.Dot(pd, pd) - g.R0*g.R0

	if math.Abs(a) < 1e-12 {
		if b == 0 {
			return 0, false
		}
		t := c / (2 * b)
		return t, g.R0+t*dr >= 0
	}

	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t1 := (b + sq) / a
	t2 := (b - sq) / a
	if t1 < t2 {
		t1, t2 = t2, t1
	}
	if g.R0+t1*dr >= 0 {
		return t1, true
	}
	if g.R0+t2*dr >= 0 {
		return t2, true
	}
	return 0, false
}
