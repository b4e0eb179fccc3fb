// Package system holds the body model: compiled body descriptors, the
// per-session motion state built from them, and per-frame layouts.
package system

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/litescript/ls-orrery/internal/canvas"
	"github.com/litescript/ls-orrery/internal/orbit"
)

var (
	ErrNoColors     = errors.New("color ramp is empty")
	ErrStopOrder    = errors.New("color stops must be ordered within [0, 1]")
	ErrRadius       = errors.New("radius must be positive")
	ErrRange        = errors.New("invalid range")
	ErrSpeed        = errors.New("speed must be finite")
	ErrNegativeSize = errors.New("count must not be negative")
	ErrOrbitMode    = errors.New("semi-minor axis and eccentricity are mutually exclusive")
)

// Atmosphere is a resolved AtmosphereSpec.
type Atmosphere struct {
	Color canvas.Color
	Width float64
}

// Clouds is a resolved CloudSpec.
type Clouds struct {
	Count int
	Color canvas.Color
}

// Bands is a resolved BandSpec.
type Bands struct {
	Count int
	Color canvas.Color
}

// Spot is a resolved SpotSpec.
type Spot struct {
	Color        canvas.Color
	X, Y, RX, RY float64
}

// Rings is a resolved RingSpec.
type Rings struct {
	Count        int
	Color        canvas.Color
	Inner, Outer float64
	Flatten      float64
	Angle        float64
	Width        float64
}

// Decor is the resolved feature set of a planet.
type Decor struct {
	Atmosphere *Atmosphere
	Clouds     *Clouds
	Bands      *Bands
	Spot       *Spot
	Rings      *Rings
}

// Moon is a planet's satellite. It exists only as long as its planet.
type Moon struct {
	Radius   float64
	Distance float64
	Phase    float64
	Speed    float64
	Ramp     []canvas.Stop
}

// Planet is a planet's motion state plus its resolved descriptor.
type Planet struct {
	Name     string
	Radius   float64
	Elements orbit.Elements
	Omega    float64 // orbital radians per tick
	Phase    float64
	Spin     float64
	SpinRate float64
	Ramp     []canvas.Stop
	Label    canvas.Color
	Decor    Decor
	Moon     *Moon
}

// Asteroid is one belt member. It keeps no history beyond its phase.
type Asteroid struct {
	Radius     float64
	Distance   float64
	Phase      float64
	Speed      float64
	Brightness float64
}

// Star is a fixed screen-space point whose opacity oscillates.
type Star struct {
	X, Y    float64
	Radius  float64
	Opacity float64
	Blink   float64 // signed opacity change per tick
}

// Sun is the central body.
type Sun struct {
	Radius       float64
	Ramp         []canvas.Stop
	GlowScale    float64
	Glow         canvas.Color
	TextureBlobs int
	Texture      canvas.Color
}

// planetTemplate is a validated PlanetSpec ready to spawn.
type planetTemplate struct {
	Planet
	startAngle *float64
	moon       *Moon
}

// Blueprint is a validated, color-resolved body set. Spawning from it never
// fails, which keeps reinitialization idempotent.
type Blueprint struct {
	sun      Sun
	planets  []planetTemplate
	belt     BeltSpec
	beltTint canvas.Color
	stars    StarfieldSpec
}

// Compile validates cfg and resolves its colors. Invalid planets are left out
// of the returned Blueprint and reported in the joined error; a non-nil error
// with a nil Blueprint means the sun, belt or starfield is unusable.
func Compile(cfg Config) (*Blueprint, error) {
	var errs []error

	sun, err := compileSun(cfg.Sun)
	if err != nil {
		return nil, fmt.Errorf("sun: %w", err)
	}
	if err := validateBelt(cfg.Asteroids); err != nil {
		return nil, fmt.Errorf("asteroids: %w", err)
	}
	beltTint := canvas.MustHex("#aaaaaa")
	if cfg.Asteroids.Color != "" {
		if beltTint, err = canvas.Hex(cfg.Asteroids.Color); err != nil {
			return nil, fmt.Errorf("asteroids: %w", err)
		}
	}
	if err := validateStars(cfg.Stars); err != nil {
		return nil, fmt.Errorf("stars: %w", err)
	}

	bp := &Blueprint{sun: sun, belt: cfg.Asteroids, beltTint: beltTint, stars: cfg.Stars}
	for i, ps := range cfg.Planets {
		tpl, err := compilePlanet(ps)
		if err != nil {
			name := ps.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			errs = append(errs, fmt.Errorf("planet %s: %w", name, err))
			continue
		}
		bp.planets = append(bp.planets, tpl)
	}
	return bp, errors.Join(errs...)
}

// Validate reports every configuration error in cfg.
func Validate(cfg Config) error {
	_, err := Compile(cfg)
	return err
}

// PlanetCount returns the number of valid planets.
func (bp *Blueprint) PlanetCount() int { return len(bp.planets) }

func compileRamp(cs []ColorStop) ([]canvas.Stop, error) {
	if len(cs) == 0 {
		return nil, ErrNoColors
	}
	out := make([]canvas.Stop, len(cs))
	prev := 0.0
	for i, s := range cs {
		if s.Offset < prev || s.Offset > 1 {
			return nil, fmt.Errorf("stop %d offset %v: %w", i, s.Offset, ErrStopOrder)
		}
		prev = s.Offset
		c, err := canvas.Hex(s.Color)
		if err != nil {
			return nil, fmt.Errorf("stop %d: %w", i, err)
		}
		out[i] = canvas.Stop{Offset: s.Offset, Color: c}
	}
	return out, nil
}

func tint(hex string, alpha float64) (canvas.Color, error) {
	c, err := canvas.Hex(hex)
	if err != nil {
		return canvas.Color{}, err
	}
	if alpha > 0 {
		c = c.WithAlpha(alpha)
	}
	return c, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func compileSun(s SunSpec) (Sun, error) {
	if !positive(s.Radius) {
		return Sun{}, fmt.Errorf("radius %v: %w", s.Radius, ErrRadius)
	}
	ramp, err := compileRamp(s.Colors)
	if err != nil {
		return Sun{}, err
	}
	sun := Sun{Radius: s.Radius, Ramp: ramp, GlowScale: s.GlowScale, TextureBlobs: s.TextureBlobs}
	if s.GlowScale != 0 && s.GlowScale < 1 {
		return Sun{}, fmt.Errorf("glow scale %v: %w", s.GlowScale, ErrRange)
	}
	if s.GlowColor != "" {
		if sun.Glow, err = tint(s.GlowColor, s.GlowAlpha); err != nil {
			return Sun{}, err
		}
	}
	if s.TextureBlobs < 0 {
		return Sun{}, fmt.Errorf("texture blobs: %w", ErrNegativeSize)
	}
	sun.Texture = ramp[len(ramp)-1].Color
	if s.TextureColor != "" {
		if sun.Texture, err = canvas.Hex(s.TextureColor); err != nil {
			return Sun{}, err
		}
	}
	return sun, nil
}

func compilePlanet(ps PlanetSpec) (planetTemplate, error) {
	if !positive(ps.Radius) {
		return planetTemplate{}, fmt.Errorf("radius %v: %w", ps.Radius, ErrRadius)
	}

	var (
		el  orbit.Elements
		err error
	)
	switch {
	case ps.SemiMinorAxis != 0 && ps.Eccentricity != 0:
		return planetTemplate{}, fmt.Errorf("b=%v, e=%v: %w", ps.SemiMinorAxis, ps.Eccentricity, ErrOrbitMode)
	case ps.SemiMinorAxis != 0:
		el, err = orbit.NewCenteredElements(ps.SemiMajorAxis, ps.SemiMinorAxis)
	default:
		el, err = orbit.NewElements(ps.SemiMajorAxis, ps.Eccentricity)
	}
	if err != nil {
		return planetTemplate{}, err
	}

	// Period sets the magnitude; a negative Speed keeps the orbit retrograde.
	omega := ps.Speed
	if ps.Period != 0 {
		if omega, err = orbit.AngularSpeed(ps.Period); err != nil {
			return planetTemplate{}, err
		}
		if ps.Speed < 0 {
			omega = -omega
		}
	}
	if math.IsNaN(omega) || math.IsInf(omega, 0) {
		return planetTemplate{}, ErrSpeed
	}
	if math.IsNaN(ps.SpinRate) || math.IsInf(ps.SpinRate, 0) {
		return planetTemplate{}, fmt.Errorf("spin rate: %w", ErrSpeed)
	}
	if ps.StartAngle != nil && (math.IsNaN(*ps.StartAngle) || math.IsInf(*ps.StartAngle, 0)) {
		return planetTemplate{}, fmt.Errorf("start angle: %w", ErrRange)
	}

	ramp, err := compileRamp(ps.Colors)
	if err != nil {
		return planetTemplate{}, err
	}

	label := canvas.MustHex("#c8c8c8")
	if ps.LabelColor != "" {
		if label, err = canvas.Hex(ps.LabelColor); err != nil {
			return planetTemplate{}, err
		}
	}

	decor, err := compileDecor(ps.Features)
	if err != nil {
		return planetTemplate{}, err
	}

	tpl := planetTemplate{
		Planet: Planet{
			Name:     ps.Name,
			Radius:   ps.Radius,
			Elements: el,
			Omega:    omega,
			SpinRate: ps.SpinRate,
			Ramp:     ramp,
			Label:    label,
			Decor:    decor,
		},
		startAngle: ps.StartAngle,
	}

	if ms := ps.Moon; ms != nil {
		if !positive(ms.Radius) {
			return planetTemplate{}, fmt.Errorf("moon radius %v: %w", ms.Radius, ErrRadius)
		}
		if !positive(ms.Distance) {
			return planetTemplate{}, fmt.Errorf("moon distance %v: %w", ms.Distance, orbit.ErrNonPositiveAxis)
		}
		if math.IsNaN(ms.Speed) || math.IsInf(ms.Speed, 0) {
			return planetTemplate{}, fmt.Errorf("moon: %w", ErrSpeed)
		}
		moonRamp := []canvas.Stop{{Offset: 0, Color: canvas.MustHex("#dddddd")}, {Offset: 1, Color: canvas.MustHex("#888888")}}
		if len(ms.Colors) > 0 {
			if moonRamp, err = compileRamp(ms.Colors); err != nil {
				return planetTemplate{}, fmt.Errorf("moon: %w", err)
			}
		}
		tpl.moon = &Moon{Radius: ms.Radius, Distance: ms.Distance, Speed: ms.Speed, Ramp: moonRamp}
	}
	return tpl, nil
}

func compileDecor(f Features) (Decor, error) {
	var d Decor
	if a := f.Atmosphere; a != nil {
		c, err := tint(a.Color, a.Alpha)
		if err != nil {
			return d, fmt.Errorf("atmosphere: %w", err)
		}
		w := a.Width
		if w <= 0 {
			w = 3
		}
		d.Atmosphere = &Atmosphere{Color: c, Width: w}
	}
	if cl := f.Clouds; cl != nil {
		if cl.Count < 0 {
			return d, fmt.Errorf("clouds: %w", ErrNegativeSize)
		}
		c, err := tint(cl.Color, cl.Alpha)
		if err != nil {
			return d, fmt.Errorf("clouds: %w", err)
		}
		d.Clouds = &Clouds{Count: cl.Count, Color: c}
	}
	if b := f.Bands; b != nil {
		if b.Count < 0 {
			return d, fmt.Errorf("bands: %w", ErrNegativeSize)
		}
		c, err := tint(b.Color, b.Alpha)
		if err != nil {
			return d, fmt.Errorf("bands: %w", err)
		}
		d.Bands = &Bands{Count: b.Count, Color: c}
	}
	if s := f.Spot; s != nil {
		c, err := tint(s.Color, s.Alpha)
		if err != nil {
			return d, fmt.Errorf("spot: %w", err)
		}
		if !positive(s.RX) || !positive(s.RY) {
			return d, fmt.Errorf("spot: %w", ErrRadius)
		}
		d.Spot = &Spot{Color: c, X: s.X, Y: s.Y, RX: s.RX, RY: s.RY}
	}
	if r := f.Rings; r != nil {
		if r.Count < 1 || !positive(r.Inner) || r.Outer < r.Inner || !(r.Flatten > 0 && r.Flatten <= 1) {
			return d, fmt.Errorf("rings: %w", ErrRange)
		}
		c, err := tint(r.Color, r.Alpha)
		if err != nil {
			return d, fmt.Errorf("rings: %w", err)
		}
		w := r.Width
		if w <= 0 {
			w = 2
		}
		d.Rings = &Rings{Count: r.Count, Color: c, Inner: r.Inner, Outer: r.Outer, Flatten: r.Flatten, Angle: r.Angle, Width: w}
	}
	return d, nil
}

func validateBelt(b BeltSpec) error {
	switch {
	case b.Count < 0:
		return ErrNegativeSize
	case b.Count == 0:
		return nil
	case !positive(b.MinDistance) || b.MaxDistance < b.MinDistance:
		return fmt.Errorf("distance %v..%v: %w", b.MinDistance, b.MaxDistance, ErrRange)
	case !positive(b.MinRadius) || b.MaxRadius < b.MinRadius:
		return fmt.Errorf("radius %v..%v: %w", b.MinRadius, b.MaxRadius, ErrRange)
	case !positive(b.ReferenceDistance):
		return fmt.Errorf("reference distance %v: %w", b.ReferenceDistance, ErrRange)
	case math.IsNaN(b.ReferenceSpeed) || math.IsInf(b.ReferenceSpeed, 0):
		return fmt.Errorf("reference speed: %w", ErrSpeed)
	case b.MinBrightness < 0 || b.MinBrightness > 1:
		return fmt.Errorf("brightness %v: %w", b.MinBrightness, ErrRange)
	}
	return nil
}

func validateStars(s StarfieldSpec) error {
	switch {
	case s.Count < 0:
		return ErrNegativeSize
	case s.MaxRadius < 0:
		return fmt.Errorf("max radius %v: %w", s.MaxRadius, ErrRange)
	case s.MinBlink < 0 || s.MaxBlink < s.MinBlink:
		return fmt.Errorf("blink %v..%v: %w", s.MinBlink, s.MaxBlink, ErrRange)
	case s.OpacityFloor < 0 || s.OpacityFloor >= 1:
		return fmt.Errorf("opacity floor %v: %w", s.OpacityFloor, ErrRange)
	case s.MaxBlink >= 1-s.OpacityFloor:
		return fmt.Errorf("blink %v exceeds opacity band: %w", s.MaxBlink, ErrRange)
	}
	return nil
}

// System is one session's motion state: every body, built fresh by Spawn.
type System struct {
	Sun          Sun
	Planets      []Planet
	Asteroids    []Asteroid
	Stars        []Star
	AsteroidTint canvas.Color
	OpacityFloor float64
}

// Spawn builds a fresh System for a width×height surface. Phases, belt
// distances and star positions are drawn from rng.
func (bp *Blueprint) Spawn(width, height int, rng *rand.Rand) *System {
	s := &System{
		Sun:          bp.sun,
		Planets:      make([]Planet, len(bp.planets)),
		AsteroidTint: bp.beltTint,
		OpacityFloor: bp.stars.OpacityFloor,
	}

	for i, tpl := range bp.planets {
		p := tpl.Planet
		if tpl.startAngle != nil {
			p.Phase = *tpl.startAngle
		} else {
			p.Phase = rng.Float64() * orbit.FullTurn
		}
		p.Spin = 0
		if tpl.moon != nil {
			m := *tpl.moon
			m.Phase = rng.Float64() * orbit.FullTurn
			p.Moon = &m
		}
		s.Planets[i] = p
	}

	belt := bp.belt
	s.Asteroids = make([]Asteroid, belt.Count)
	for i := range s.Asteroids {
		dist := belt.MinDistance + rng.Float64()*(belt.MaxDistance-belt.MinDistance)
		s.Asteroids[i] = Asteroid{
			Distance:   dist,
			Phase:      rng.Float64() * orbit.FullTurn,
			Radius:     belt.MinRadius + rng.Float64()*(belt.MaxRadius-belt.MinRadius),
			Speed:      orbit.KeplerSpeed(belt.ReferenceDistance, belt.ReferenceSpeed, dist),
			Brightness: belt.MinBrightness + rng.Float64()*(1-belt.MinBrightness),
		}
	}

	st := bp.stars
	s.Stars = make([]Star, st.Count)
	for i := range s.Stars {
		floor := st.OpacityFloor
		s.Stars[i] = Star{
			X:       rng.Float64() * float64(width),
			Y:       rng.Float64() * float64(height),
			Radius:  0.3 + rng.Float64()*math.Max(st.MaxRadius-0.3, 0),
			Blink:   st.MinBlink + rng.Float64()*(st.MaxBlink-st.MinBlink),
			Opacity: floor + rng.Float64()*(1-floor),
		}
	}
	return s
}

// Advance moves every body forward one tick.
func (s *System) Advance(timeScale float64) {
	for i := range s.Planets {
		p := &s.Planets[i]
		p.Phase = orbit.Advance(p.Phase, p.Omega, timeScale)
		p.Spin = orbit.Advance(p.Spin, p.SpinRate, timeScale)
		if p.Moon != nil {
			p.Moon.Phase = orbit.Advance(p.Moon.Phase, p.Moon.Speed, timeScale)
		}
	}
	for i := range s.Asteroids {
		a := &s.Asteroids[i]
		a.Phase = orbit.Advance(a.Phase, a.Speed, timeScale)
	}
	for i := range s.Stars {
		s.Stars[i].Twinkle(s.OpacityFloor)
	}
}

// Twinkle steps the star's opacity. A step that would leave [floor, 1]
// reverses the blink direction and is taken the other way instead.
func (st *Star) Twinkle(floor float64) {
	next := st.Opacity + st.Blink
	if next > 1 || next < floor {
		st.Blink = -st.Blink
		next = st.Opacity + st.Blink
	}
	st.Opacity = math.Min(math.Max(next, floor), 1)
}

// Extent returns the half-width and half-height, in world units before tilt,
// that the orbits occupy around the sun.
func (s *System) Extent() (halfW, halfH float64) {
	halfW, halfH = s.Sun.Radius*math.Max(s.Sun.GlowScale, 1), s.Sun.Radius*math.Max(s.Sun.GlowScale, 1)
	for _, p := range s.Planets {
		reach := p.Radius
		if p.Moon != nil {
			reach = math.Max(reach, p.Moon.Distance+p.Moon.Radius)
		}
		if r := p.Decor.Rings; r != nil {
			reach = math.Max(reach, p.Radius*r.Outer)
		}
		halfW = math.Max(halfW, p.Elements.A+p.Elements.C+reach)
		halfH = math.Max(halfH, p.Elements.B+reach)
	}
	for _, a := range s.Asteroids {
		halfW = math.Max(halfW, a.Distance+a.Radius)
		halfH = math.Max(halfH, a.Distance+a.Radius)
	}
	return halfW, halfH
}

// Layout is one frame's solved positions, parallel to the System's slices.
type Layout struct {
	Planets   []r2.Vec
	Moons     []r2.Vec // zero where the planet has no moon
	Asteroids []r2.Vec
}

// Solve fills l with positions for the current phases. Slices are reused.
func (s *System) Solve(vp orbit.Viewport, l *Layout) {
	l.Planets = resize(l.Planets, len(s.Planets))
	l.Moons = resize(l.Moons, len(s.Planets))
	for i, p := range s.Planets {
		pos := orbit.Position(p.Elements, p.Phase, vp)
		l.Planets[i] = pos
		l.Moons[i] = r2.Vec{}
		if p.Moon != nil {
			l.Moons[i] = orbit.Offset(pos, p.Moon.Distance, p.Moon.Phase, vp)
		}
	}
	l.Asteroids = resize(l.Asteroids, len(s.Asteroids))
	for i, a := range s.Asteroids {
		l.Asteroids[i] = orbit.Position(orbit.Circular(a.Distance), a.Phase, vp)
	}
}

func resize(v []r2.Vec, n int) []r2.Vec {
	if cap(v) < n {
		return make([]r2.Vec, n)
	}
	return v[:n]
}
