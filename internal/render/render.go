// Package render paints one frame of the system onto a canvas.Surface.
//
// Layers are painted back to front in a fixed order: background, starfield,
// orbit guides, trails, sun, planets in depth order (each with its rings, body,
// atmosphere and moon), labels, asteroids. The renderer never mutates the
// system it draws.
package render

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/litescript/ls-orrery/internal/canvas"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/trail"
)

// Layer names passed to a canvas.Grouper.
const (
	LayerBackground = "background"
	LayerStars      = "stars"
	LayerOrbits     = "orbits"
	LayerSun        = "sun"
	LayerLabels     = "labels"
	LayerAsteroids  = "asteroids"

	// Per-planet layers are suffixed with ":<name>".
	LayerTrail      = "trail"
	LayerRingsBack  = "rings-back"
	LayerBody       = "body"
	LayerAtmosphere = "atmosphere"
	LayerRingsFront = "rings-front"
	LayerMoon       = "moon"
)

// minRadius keeps bodies visible when the viewport scale shrinks them
// below a pixel.
const minRadius = 0.6

var (
	backgroundColor = canvas.MustHex("#000000")
	vignetteColor   = canvas.MustHex("#141a33").WithAlpha(0.55)
	starColor       = canvas.MustHex("#ffffff")
	guideColor      = canvas.MustHex("#ffffff").WithAlpha(0.12)
	markerColor     = canvas.MustHex("#ffffff").WithAlpha(0.45)
)

// Options are the display toggles.
type Options struct {
	ShowOrbits bool `yaml:"show_orbits" mapstructure:"show_orbits"`
	ShowTrails bool `yaml:"show_trails" mapstructure:"show_trails"`
	ShowLabels bool `yaml:"show_labels" mapstructure:"show_labels"`
	ShowGlow   bool `yaml:"show_glow" mapstructure:"show_glow"`
}

// DefaultOptions enables every layer.
func DefaultOptions() Options {
	return Options{ShowOrbits: true, ShowTrails: true, ShowLabels: true, ShowGlow: true}
}

// Frame is everything one draw needs. Order lists planet indices back to front.
type Frame struct {
	System   *system.System
	Layout   *system.Layout
	Viewport orbit.Viewport
	Trails   *trail.Set
	Order    []int
	Clock    float64 // wall-clock seconds, drives the sun texture
}

// Stats reports what a draw did.
type Stats struct {
	Planets int // planets drawn
	Skipped int // bodies skipped for invalid positions
}

// Renderer paints frames. Cosmetic randomness (cloud placement) comes from rng.
type Renderer struct {
	opts Options
	rng  *rand.Rand
}

// New creates a renderer.
func New(opts Options, rng *rand.Rand) *Renderer {
	return &Renderer{opts: opts, rng: rng}
}

// Options returns the current toggles.
func (r *Renderer) Options() Options { return r.opts }

// SetOptions replaces the toggles; they apply from the next frame.
func (r *Renderer) SetOptions(o Options) { r.opts = o }

func group(s canvas.Surface, name string) func() {
	g, ok := s.(canvas.Grouper)
	if !ok {
		return func() {}
	}
	g.BeginGroup(name)
	return g.EndGroup
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func size(v float64, vp orbit.Viewport) float64 {
	return math.Max(v*vp.Scale, minRadius)
}

// Draw paints f onto s.
func (r *Renderer) Draw(s canvas.Surface, f Frame) Stats {
	var st Stats
	sys := f.System
	vp := f.Viewport

	r.drawBackground(s)
	r.drawStars(s, sys.Stars)
	if r.opts.ShowOrbits {
		r.drawGuides(s, sys.Planets, vp)
	}
	if r.opts.ShowTrails && f.Trails != nil {
		for _, i := range f.Order {
			if i < 0 || i >= len(sys.Planets) {
				continue
			}
			if b := f.Trails.Get(i); b != nil {
				r.drawTrail(s, &sys.Planets[i], b.Points(), vp)
			}
		}
	}
	r.drawSun(s, sys.Sun, vp, f.Clock)

	for _, i := range f.Order {
		if i < 0 || i >= len(sys.Planets) || i >= len(f.Layout.Planets) {
			continue
		}
		pos := f.Layout.Planets[i]
		if !orbit.Valid(pos) {
			st.Skipped++
			continue
		}
		st.Planets++
		p := &sys.Planets[i]
		r.drawRings(s, p, pos, vp, LayerRingsBack, math.Pi, 2*math.Pi)
		r.drawBody(s, p, pos, vp)
		r.drawAtmosphere(s, p, pos, vp)
		r.drawRings(s, p, pos, vp, LayerRingsFront, 0, math.Pi)
		if p.Moon != nil {
			if i >= len(f.Layout.Moons) || !orbit.Valid(f.Layout.Moons[i]) {
				st.Skipped++
			} else {
				r.drawMoon(s, p, f.Layout.Moons[i], vp)
			}
		}
	}

	if r.opts.ShowLabels {
		r.drawLabels(s, sys.Planets, f.Layout.Planets, vp)
	}
	st.Skipped += r.drawAsteroids(s, sys, f.Layout.Asteroids, vp)
	return st
}

func (r *Renderer) drawBackground(s canvas.Surface) {
	defer group(s, LayerBackground)()
	s.Clear(canvas.Solid{Color: backgroundColor})
	w, h := s.Size()
	c := r2.Vec{X: float64(w) / 2, Y: float64(h) / 2}
	s.FillRect(0, 0, float64(w), float64(h), canvas.RadialGradient{
		C0: c, R0: 0,
		C1: c, R1: math.Hypot(c.X, c.Y),
		Stops: []canvas.Stop{
			{Offset: 0, Color: vignetteColor},
			{Offset: 1, Color: canvas.Transparent},
		},
	})
}

func (r *Renderer) drawStars(s canvas.Surface, stars []system.Star) {
	defer group(s, LayerStars)()
	for _, st := range stars {
		if st.Radius <= 0 || st.Opacity <= 0 {
			continue
		}
		canvas.FillCircle(s, r2.Vec{X: st.X, Y: st.Y}, st.Radius, canvas.Solid{Color: starColor.WithAlpha(st.Opacity)})
	}
}

func (r *Renderer) drawGuides(s canvas.Surface, planets []system.Planet, vp orbit.Viewport) {
	defer group(s, LayerOrbits)()
	for _, p := range planets {
		el := p.Elements
		rx, ry := el.A*vp.Scale, el.B*vp.Scale*vp.Tilt
		if c := orbit.EllipseCenter(el, vp); orbit.Valid(c) && finite(rx) && finite(ry) {
			canvas.StrokeFullEllipse(s, c, rx, ry, 0, 1, canvas.Solid{Color: guideColor})
		}
		if el.Focus && el.C > 0 {
			if m := orbit.Perihelion(el, vp); orbit.Valid(m) {
				canvas.FillCircle(s, m, 1.5, canvas.Solid{Color: markerColor})
			}
		}
	}
}

func (r *Renderer) drawSun(s canvas.Surface, sun system.Sun, vp orbit.Viewport, clock float64) {
	defer group(s, LayerSun)()
	c := vp.Center
	rad := size(sun.Radius, vp)

	if r.opts.ShowGlow && sun.GlowScale > 1 {
		canvas.FillCircle(s, c, rad*sun.GlowScale, canvas.RadialGradient{
			C0: c, R0: rad * 0.8,
			C1: c, R1: rad * sun.GlowScale,
			Stops: []canvas.Stop{
				{Offset: 0, Color: sun.Glow},
				{Offset: 1, Color: sun.Glow.WithAlpha(0)},
			},
		})
		s.SetGlow(rad*0.25, sun.Glow)
	}
	canvas.FillCircle(s, c, rad, canvas.RadialGradient{C0: c, R0: rad * 0.2, C1: c, R1: rad, Stops: sun.Ramp})
	s.SetGlow(0, canvas.Transparent)

	n := sun.TextureBlobs
	for i := 0; i < n; i++ {
		a := clock*0.3 + float64(i)*orbit.FullTurn/float64(n)
		d := rad * (0.35 + 0.2*math.Sin(clock*0.7+float64(i)))
		at := r2.Add(c, r2.Vec{X: d * math.Cos(a), Y: d * math.Sin(a)})
		canvas.FillCircle(s, at, rad*0.18, canvas.Solid{Color: sun.Texture.WithAlpha(0.25)})
	}
}

func (r *Renderer) drawTrail(s canvas.Surface, p *system.Planet, pts []r2.Vec, vp orbit.Viewport) {
	if len(pts) < 2 {
		return
	}
	defer group(s, LayerTrail+":"+p.Name)()
	tip := p.Ramp[len(p.Ramp)-1].Color
	s.StrokePath(pts, math.Max(size(p.Radius, vp)*0.3, 1), canvas.LinearGradient{
		From: pts[0],
		To:   pts[len(pts)-1],
		Stops: []canvas.Stop{
			{Offset: 0, Color: tip.WithAlpha(0)},
			{Offset: 1, Color: tip.Fade(0.6)},
		},
	})
}

// drawRings strokes the given parametric half of every ring. The half with
// negative sine lies above the planet on screen, which is farther away.
func (r *Renderer) drawRings(s canvas.Surface, p *system.Planet, pos r2.Vec, vp orbit.Viewport, layer string, start, end float64) {
	rg := p.Decor.Rings
	if rg == nil {
		return
	}
	defer group(s, layer+":"+p.Name)()
	rad := size(p.Radius, vp)
	for k := 0; k < rg.Count; k++ {
		f := rg.Inner
		if rg.Count > 1 {
			f += (rg.Outer - rg.Inner) * float64(k) / float64(rg.Count-1)
		}
		fade := 1 - 0.6*float64(k)/float64(rg.Count)
		s.StrokeEllipse(pos, rad*f, rad*f*rg.Flatten, rg.Angle, start, end,
			math.Max(rg.Width*vp.Scale, 1), canvas.Solid{Color: rg.Color.Fade(fade)})
	}
}

// drawBody paints the planet disc lit from the sun, then the surface-fixed
// decorations inside the spin transform.
func (r *Renderer) drawBody(s canvas.Surface, p *system.Planet, pos r2.Vec, vp orbit.Viewport) {
	defer group(s, LayerBody+":"+p.Name)()
	rad := size(p.Radius, vp)

	light := r2.Sub(vp.Center, pos)
	if n := r2.Norm(light); n > 0 {
		light = r2.Scale(rad/3/n, light)
	}

	s.Save()
	defer s.Restore()
	s.Translate(pos)
	canvas.FillCircle(s, r2.Vec{}, rad, canvas.RadialGradient{C0: light, R0: rad / 5, C1: r2.Vec{}, R1: rad, Stops: p.Ramp})

	s.Rotate(p.Spin)
	d := p.Decor
	if b := d.Bands; b != nil {
		for k := 1; k <= b.Count; k++ {
			y := -rad + 2*rad*float64(k)/float64(b.Count+1)
			hw := math.Sqrt(rad*rad - y*y)
			s.FillEllipse(r2.Vec{Y: y}, hw, math.Max(rad*0.08, 0.5), 0, canvas.Solid{Color: b.Color})
		}
	}
	if sp := d.Spot; sp != nil {
		s.FillEllipse(r2.Vec{X: sp.X * rad, Y: sp.Y * rad}, sp.RX*rad, sp.RY*rad, 0, canvas.Solid{Color: sp.Color})
	}
	if cl := d.Clouds; cl != nil {
		for k := 0; k < cl.Count; k++ {
			cr := rad * (0.1 + r.rng.Float64()*0.4)
			a := r.rng.Float64() * orbit.FullTurn
			canvas.FillCircle(s, r2.Vec{X: math.Cos(a) * rad * 0.5, Y: math.Sin(a) * rad * 0.5}, cr, canvas.Solid{Color: cl.Color})
		}
	}
}

func (r *Renderer) drawAtmosphere(s canvas.Surface, p *system.Planet, pos r2.Vec, vp orbit.Viewport) {
	atm := p.Decor.Atmosphere
	if atm == nil {
		return
	}
	defer group(s, LayerAtmosphere+":"+p.Name)()
	rad := size(p.Radius, vp) + math.Max(atm.Width*vp.Scale, 0.5)
	if r.opts.ShowGlow {
		s.SetGlow(rad*0.3, atm.Color)
		defer s.SetGlow(0, canvas.Transparent)
	}
	canvas.FillCircle(s, pos, rad, canvas.Solid{Color: atm.Color})
}

func (r *Renderer) drawMoon(s canvas.Surface, p *system.Planet, pos r2.Vec, vp orbit.Viewport) {
	defer group(s, LayerMoon+":"+p.Name)()
	m := p.Moon
	rad := size(m.Radius, vp)
	hi := r2.Sub(pos, r2.Vec{X: rad / 3, Y: rad / 3})
	canvas.FillCircle(s, pos, rad, canvas.RadialGradient{C0: hi, R0: rad / 4, C1: pos, R1: rad, Stops: m.Ramp})
}

func (r *Renderer) drawLabels(s canvas.Surface, planets []system.Planet, positions []r2.Vec, vp orbit.Viewport) {
	defer group(s, LayerLabels)()
	for i, p := range planets {
		if i >= len(positions) || !orbit.Valid(positions[i]) {
			continue
		}
		rad := size(p.Radius, vp)
		s.FillText(p.Name, r2.Add(positions[i], r2.Vec{X: rad + 2, Y: -rad - 2}), p.Label)
	}
}

func (r *Renderer) drawAsteroids(s canvas.Surface, sys *system.System, positions []r2.Vec, vp orbit.Viewport) int {
	defer group(s, LayerAsteroids)()
	skipped := 0
	for i, a := range sys.Asteroids {
		if i >= len(positions) || !orbit.Valid(positions[i]) {
			skipped++
			continue
		}
		canvas.FillCircle(s, positions[i], size(a.Radius, vp), canvas.Solid{Color: sys.AsteroidTint.Fade(a.Brightness)})
	}
	return skipped
}
