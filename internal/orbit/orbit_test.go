package orbit

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const tolerance = 1e-9

func TestNewElements_CircularDegenerate(t *testing.T) {
	for _, a := range []float64{1, 70, 140, 380} {
		el, err := NewElements(a, 0)
		if err != nil {
			t.Fatalf("NewElements(%v, 0) error: %v", a, err)
		}
		if el.B != el.A {
			t.Errorf("a=%v: B = %v, want %v", a, el.B, el.A)
		}
		if el.C != 0 {
			t.Errorf("a=%v: C = %v, want 0", a, el.C)
		}
	}
}

func TestNewElements_Eccentric(t *testing.T) {
	el, err := NewElements(100, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(el.B-80) > tolerance {
		t.Errorf("B = %v, want 80", el.B)
	}
	if math.Abs(el.C-60) > tolerance {
		t.Errorf("C = %v, want 60", el.C)
	}
}

func TestNewElements_Invalid(t *testing.T) {
	tests := []struct {
		name string
		a, e float64
		want error
	}{
		{"zero axis", 0, 0, ErrNonPositiveAxis},
		{"negative axis", -5, 0, ErrNonPositiveAxis},
		{"NaN axis", math.NaN(), 0, ErrNonPositiveAxis},
		{"parabolic", 100, 1, ErrEccentricity},
		{"hyperbolic", 100, 1.5, ErrEccentricity},
		{"negative e", 100, -0.1, ErrEccentricity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewElements(tt.a, tt.e)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewElements(%v, %v) error = %v, want %v", tt.a, tt.e, err, tt.want)
			}
		})
	}
}

func TestNewCenteredElements_Invalid(t *testing.T) {
	if _, err := NewCenteredElements(100, 0); !errors.Is(err, ErrNonPositiveAxis) {
		t.Errorf("b=0 error = %v, want ErrNonPositiveAxis", err)
	}
	if _, err := NewCenteredElements(-1, 10); !errors.Is(err, ErrNonPositiveAxis) {
		t.Errorf("a<0 error = %v, want ErrNonPositiveAxis", err)
	}
}

func TestPosition_FocusOffset(t *testing.T) {
	el, _ := NewElements(100, 0.5)
	vp := Viewport{Center: r2.Vec{X: 400, Y: 300}, Scale: 1, Tilt: 1}

	// θ = 0 is perihelion: a - c from the focus.
	p := Position(el, 0, vp)
	if math.Abs(p.X-(400+50)) > tolerance || math.Abs(p.Y-300) > tolerance {
		t.Errorf("Position(θ=0) = %v, want (450, 300)", p)
	}

	// θ = π is aphelion: a + c from the focus.
	p = Position(el, math.Pi, vp)
	if math.Abs(p.X-(400-150)) > tolerance {
		t.Errorf("Position(θ=π).X = %v, want 250", p.X)
	}
}

func TestPosition_TiltAndScale(t *testing.T) {
	el := Circular(100)
	vp := Viewport{Center: r2.Vec{X: 0, Y: 0}, Scale: 0.5, Tilt: DefaultTilt}

	p := Position(el, math.Pi/2, vp)
	want := 100 * 0.5 * DefaultTilt
	if math.Abs(p.Y-want) > tolerance {
		t.Errorf("Position(θ=π/2).Y = %v, want %v", p.Y, want)
	}
	if math.Abs(p.X) > tolerance {
		t.Errorf("Position(θ=π/2).X = %v, want 0", p.X)
	}
}

func TestPosition_CenteredMode(t *testing.T) {
	el, _ := NewCenteredElements(70, 68)
	vp := Viewport{Center: r2.Vec{X: 10, Y: 20}, Scale: 1, Tilt: 1}
	p := Position(el, math.Pi, vp)
	if math.Abs(p.X-(10-70)) > tolerance || math.Abs(p.Y-20) > tolerance {
		t.Errorf("Position = %v, want (-60, 20)", p)
	}
}

func TestOffset_RelativeToParent(t *testing.T) {
	vp := Viewport{Center: r2.Vec{X: 400, Y: 300}, Scale: 2, Tilt: 1}
	parent := r2.Vec{X: 10, Y: 10}
	p := Offset(parent, 20, 0, vp)
	if math.Abs(p.X-50) > tolerance || math.Abs(p.Y-10) > tolerance {
		t.Errorf("Offset = %v, want (50, 10)", p)
	}
}

func TestFullPeriodReturnsToStart(t *testing.T) {
	el, err := NewElements(140, 0)
	if err != nil {
		t.Fatal(err)
	}
	const period = 1.0
	omega, err := AngularSpeed(period)
	if err != nil {
		t.Fatal(err)
	}
	vp := NewViewport(800, 600, 1, DefaultTilt)

	start := 0.3
	theta := start
	for i := 0; i < int(period); i++ {
		theta = Advance(theta, omega, 1)
	}

	if d := math.Abs(Normalize(theta) - Normalize(start)); d > tolerance && math.Abs(d-FullTurn) > tolerance {
		t.Errorf("phase after one period = %v, want %v (mod 2π)", Normalize(theta), start)
	}

	p0 := Position(el, start, vp)
	p1 := Position(el, theta, vp)
	if r2.Norm(r2.Sub(p0, p1)) > 1e-9 {
		t.Errorf("position after one period = %v, want %v", p1, p0)
	}
}

func TestFullPeriod_ManyTicks(t *testing.T) {
	el, _ := NewElements(140, 0.2)
	omega, _ := AngularSpeed(360)
	vp := NewViewport(800, 600, 1, DefaultTilt)

	theta := 1.0
	for i := 0; i < 360; i++ {
		theta = Advance(theta, omega, 1)
	}
	p0 := Position(el, 1.0, vp)
	p1 := Position(el, theta, vp)
	if r2.Norm(r2.Sub(p0, p1)) > 1e-6 {
		t.Errorf("position after 360 ticks = %v, want %v", p1, p0)
	}
}

func TestAngularSpeed_Invalid(t *testing.T) {
	for _, p := range []float64{0, -1, math.Inf(1)} {
		if _, err := AngularSpeed(p); !errors.Is(err, ErrNonPositivePeriod) {
			t.Errorf("AngularSpeed(%v) error = %v, want ErrNonPositivePeriod", p, err)
		}
	}
}

func TestKeplerSpeed_Monotonic(t *testing.T) {
	prev := math.Inf(1)
	for d := 200.0; d <= 300; d += 2.5 {
		s := KeplerSpeed(230, 0.013, d)
		if s > prev {
			t.Fatalf("KeplerSpeed(%v) = %v increased from %v", d, s, prev)
		}
		prev = s
	}
	if got := KeplerSpeed(230, 0.013, 230); math.Abs(got-0.013) > tolerance {
		t.Errorf("KeplerSpeed at reference = %v, want 0.013", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{FullTurn, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); math.Abs(got-tt.want) > tolerance {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid(r2.Vec{X: 1, Y: 2}) {
		t.Error("Valid(finite) = false")
	}
	if Valid(r2.Vec{X: math.NaN(), Y: 0}) {
		t.Error("Valid(NaN) = true")
	}
	if Valid(r2.Vec{X: 0, Y: math.Inf(-1)}) {
		t.Error("Valid(Inf) = true")
	}
}
