// Package orbit maps orbital parameters and phase angles to screen positions.
//
// Orbits are stylized: a body moves along an ellipse parameterized by its phase
// angle, flattened vertically by a global tilt factor to fake an oblique view.
// In focus mode the ellipse is shifted so the sun sits at one focus.
package orbit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// FullTurn is one revolution in radians.
const FullTurn = 2 * math.Pi

// DefaultTilt flattens every orbit uniformly to simulate a viewing angle.
const DefaultTilt = 0.92

var (
	ErrNonPositiveAxis   = errors.New("semi-axis must be positive")
	ErrEccentricity      = errors.New("eccentricity must be in [0, 1)")
	ErrNonPositivePeriod = errors.New("orbital period must be positive")
)

// Elements are the derived shape parameters of one orbit.
type Elements struct {
	A     float64 // semi-major axis
	B     float64 // semi-minor axis
	C     float64 // focal offset (a·e), zero in centered mode
	E     float64 // eccentricity
	Focus bool    // sun at a focus rather than the ellipse center
}

// NewElements derives focus-accurate elements from a semi-major axis and eccentricity.
// The semi-minor axis and focal offset are computed once here, not per frame.
func NewElements(a, e float64) (Elements, error) {
	if !(a > 0) || math.IsInf(a, 0) {
		return Elements{}, fmt.Errorf("a=%v: %w", a, ErrNonPositiveAxis)
	}
	if !(e >= 0 && e < 1) {
		return Elements{}, fmt.Errorf("e=%v: %w", e, ErrEccentricity)
	}
	b := a
	c := 0.0
	if e > 0 {
		b = a * math.Sqrt(1-e*e)
		c = a * e
	}
	return Elements{A: a, B: b, C: c, E: e, Focus: true}, nil
}

// NewCenteredElements builds the simplified mode: an ellipse centered on the
// origin with independent semi-axes.
func NewCenteredElements(a, b float64) (Elements, error) {
	if !(a > 0) || math.IsInf(a, 0) {
		return Elements{}, fmt.Errorf("a=%v: %w", a, ErrNonPositiveAxis)
	}
	if !(b > 0) || math.IsInf(b, 0) {
		return Elements{}, fmt.Errorf("b=%v: %w", b, ErrNonPositiveAxis)
	}
	return Elements{A: a, B: b}, nil
}

// Circular returns elements for a circle of radius r.
func Circular(r float64) Elements {
	return Elements{A: r, B: r}
}

// Viewport is the orbital reference frame on the drawing surface.
type Viewport struct {
	Center r2.Vec
	Scale  float64 // world units to pixels
	Tilt   float64 // vertical flattening, 1 = face-on
}

// NewViewport centers a viewport on a surface of the given size.
func NewViewport(width, height int, scale, tilt float64) Viewport {
	return Viewport{
		Center: r2.Vec{X: float64(width) / 2, Y: float64(height) / 2},
		Scale:  scale,
		Tilt:   tilt,
	}
}

// Position returns the screen position of a body at phase theta:
//
//	x = cx + s·(a·cos θ − c)
//	y = cy + s·b·sin θ·tilt
func Position(el Elements, theta float64, vp Viewport) r2.Vec {
	local := r2.Vec{
		X: el.A*math.Cos(theta) - el.C,
		Y: el.B * math.Sin(theta) * vp.Tilt,
	}
	return r2.Add(vp.Center, r2.Scale(vp.Scale, local))
}

// Offset places a satellite at distance dist from an already-solved parent
// position, using the same flattened parameterization.
func Offset(parent r2.Vec, dist, theta float64, vp Viewport) r2.Vec {
	return Position(Circular(dist), theta, Viewport{Center: parent, Scale: vp.Scale, Tilt: vp.Tilt})
}

// Perihelion is the point of closest approach to the focus (θ = 0).
func Perihelion(el Elements, vp Viewport) r2.Vec {
	return Position(el, 0, vp)
}

// EllipseCenter is the screen position of the ellipse's geometric center.
func EllipseCenter(el Elements, vp Viewport) r2.Vec {
	return r2.Add(vp.Center, r2.Vec{X: -el.C * vp.Scale})
}

// AngularSpeed converts an orbital period in ticks to radians per tick.
func AngularSpeed(period float64) (float64, error) {
	if !(period > 0) || math.IsInf(period, 0) {
		return 0, fmt.Errorf("period=%v: %w", period, ErrNonPositivePeriod)
	}
	return FullTurn / period, nil
}

// Advance moves a phase angle forward by one tick.
func Advance(theta, omega, timeScale float64) float64 {
	return theta + omega*timeScale
}

// KeplerSpeed scales a reference body's angular speed to another distance
// following Kepler's third law (ω ∝ r^-3/2), so inner bodies move faster.
func KeplerSpeed(refDist, refSpeed, dist float64) float64 {
	if dist <= 0 || refDist <= 0 {
		return refSpeed
	}
	return refSpeed * math.Pow(refDist/dist, 1.5)
}

// Normalize folds an angle into [0, 2π).
func Normalize(theta float64) float64 {
	t := math.Mod(theta, FullTurn)
	if t < 0 {
		t += FullTurn
	}
	return t
}

// Valid reports whether a solved position is drawable.
func Valid(p r2.Vec) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
