package render

import (
	"math"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/litescript/ls-orrery/internal/canvas"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/trail"
)

func testConfig() system.Config {
	white := []system.ColorStop{{Offset: 0, Color: "#ffffff"}, {Offset: 1, Color: "#808080"}}
	return system.Config{
		Sun: system.SunSpec{Radius: 20, Colors: white, GlowScale: 1.5, GlowColor: "#ffb300", GlowAlpha: 0.3, TextureBlobs: 2},
		Planets: []system.PlanetSpec{
			{Name: "inner", Radius: 5, SemiMajorAxis: 60, Eccentricity: 0.1, Speed: 0.02, Colors: white},
			{
				Name: "ringed", Radius: 10, SemiMajorAxis: 120, Speed: 0.01, Colors: white,
				Features: system.Features{
					Atmosphere: &system.AtmosphereSpec{Color: "#87ceeb", Alpha: 0.3, Width: 3},
					Clouds:     &system.CloudSpec{Count: 2, Color: "#ffffff", Alpha: 0.3},
					Spot:       &system.SpotSpec{Color: "#c1440e", Alpha: 0.8, X: 0.5, Y: 0, RX: 0.3, RY: 0.2},
					Rings:      &system.RingSpec{Count: 2, Color: "#c8b478", Alpha: 0.6, Inner: 1.4, Outer: 1.8, Flatten: 0.3, Angle: 0.4, Width: 2},
				},
				Moon: &system.MoonSpec{Radius: 2, Distance: 18, Speed: 0.05},
			},
		},
		Asteroids: system.BeltSpec{
			Count: 3, MinDistance: 80, MaxDistance: 90, MinRadius: 1, MaxRadius: 2,
			ReferenceDistance: 85, ReferenceSpeed: 0.01, MinBrightness: 0.5,
		},
		Stars: system.StarfieldSpec{Count: 5, MaxRadius: 1.5, MinBlink: 0.01, MaxBlink: 0.02, OpacityFloor: 0.2},
	}
}

type fixture struct {
	sys    *system.System
	layout system.Layout
	vp     orbit.Viewport
	trails *trail.Set
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bp, err := system.Compile(testConfig())
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	f := &fixture{
		sys:    bp.Spawn(400, 300, rand.New(rand.NewSource(1))),
		vp:     orbit.NewViewport(400, 300, 1, orbit.DefaultTilt),
		trails: trail.NewSet(2, 10),
	}
	for tick := 0; tick < 3; tick++ {
		f.sys.Advance(1)
		f.sys.Solve(f.vp, &f.layout)
		for i, p := range f.layout.Planets {
			f.trails.Record(i, p)
		}
	}
	return f
}

func (f *fixture) frame(order ...int) Frame {
	return Frame{System: f.sys, Layout: &f.layout, Viewport: f.vp, Trails: f.trails, Order: order}
}

func TestDraw_LayerOrder(t *testing.T) {
	f := newFixture(t)
	rec := canvas.NewRecorder(400, 300)
	r := New(DefaultOptions(), rand.New(rand.NewSource(1)))

	st := r.Draw(rec, f.frame(0, 1))

	want := []string{
		LayerBackground, LayerStars, LayerOrbits,
		"trail:inner", "trail:ringed",
		LayerSun,
		"body:inner",
		"rings-back:ringed", "body:ringed", "atmosphere:ringed", "rings-front:ringed", "moon:ringed",
		LayerLabels, LayerAsteroids,
	}
	if got := rec.Groups(); !slices.Equal(got, want) {
		t.Errorf("Groups() = %v, want %v", got, want)
	}
	if st.Planets != 2 || st.Skipped != 0 {
		t.Errorf("Stats = %+v, want 2 planets, 0 skipped", st)
	}
	if rec.Depth() != 0 {
		t.Errorf("Depth() = %d after Draw, want 0", rec.Depth())
	}
}

func TestDraw_DepthOrderFollowsOrder(t *testing.T) {
	f := newFixture(t)
	rec := canvas.NewRecorder(400, 300)
	New(DefaultOptions(), rand.New(rand.NewSource(1))).Draw(rec, f.frame(1, 0))

	groups := rec.Groups()
	if slices.Index(groups, "body:ringed") > slices.Index(groups, "body:inner") {
		t.Errorf("ringed drawn after inner with order [1 0]: %v", groups)
	}
}

func TestDraw_Toggles(t *testing.T) {
	f := newFixture(t)
	rec := canvas.NewRecorder(400, 300)
	r := New(Options{}, rand.New(rand.NewSource(1)))
	r.Draw(rec, f.frame(0, 1))

	for _, g := range rec.Groups() {
		switch g {
		case LayerOrbits, LayerLabels, "trail:inner", "trail:ringed":
			t.Errorf("group %q drawn with every option off", g)
		}
	}
	if rec.Count(canvas.OpText, "") != 0 {
		t.Errorf("text ops = %d, want 0", rec.Count(canvas.OpText, ""))
	}
	for _, op := range rec.Ops {
		if op.Glow {
			t.Fatalf("op %v in %q drawn with glow while ShowGlow is off", op.Kind, op.Group)
		}
	}

	r.SetOptions(DefaultOptions())
	rec.Reset()
	r.Draw(rec, f.frame(0, 1))
	if n := rec.Count(canvas.OpText, LayerLabels); n != 2 {
		t.Errorf("labels = %d, want 2", n)
	}
}

func TestDraw_TrailNeedsTwoPoints(t *testing.T) {
	f := newFixture(t)
	f.trails.Reset()
	f.trails.Record(0, r2.Vec{X: 1, Y: 1})
	rec := canvas.NewRecorder(400, 300)
	New(DefaultOptions(), rand.New(rand.NewSource(1))).Draw(rec, f.frame(0, 1))

	if n := rec.Count(canvas.OpStrokePath, ""); n != 0 {
		t.Errorf("stroke paths = %d, want 0", n)
	}
}

func TestDraw_SkipsInvalidPositions(t *testing.T) {
	f := newFixture(t)
	f.layout.Planets[0] = r2.Vec{X: math.NaN(), Y: 0}
	f.layout.Asteroids[1] = r2.Vec{X: 0, Y: math.Inf(1)}

	rec := canvas.NewRecorder(400, 300)
	st := New(DefaultOptions(), rand.New(rand.NewSource(1))).Draw(rec, f.frame(0, 1))

	if st.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", st.Skipped)
	}
	if st.Planets != 1 {
		t.Errorf("Planets = %d, want 1", st.Planets)
	}
	if slices.Contains(rec.Groups(), "body:inner") {
		t.Error("invalid planet was drawn")
	}
	if n := rec.Count(canvas.OpFillEllipse, LayerAsteroids); n != 2 {
		t.Errorf("asteroids drawn = %d, want 2", n)
	}
	if n := rec.Count(canvas.OpText, LayerLabels); n != 1 {
		t.Errorf("labels = %d, want 1", n)
	}
}

func TestDraw_SurfaceDecorationsSpinMoonsDoNot(t *testing.T) {
	f := newFixture(t)
	p := &f.sys.Planets[1]
	pos := f.layout.Planets[1]
	moon := f.layout.Moons[1]

	find := func(rec *canvas.Recorder, group string, rx float64) (canvas.Op, bool) {
		for _, op := range rec.Ops {
			if op.Group == group && op.Kind == canvas.OpFillEllipse && math.Abs(op.RX-rx) < 1e-9 {
				return op, true
			}
		}
		return canvas.Op{}, false
	}

	for _, spin := range []float64{0, math.Pi / 2} {
		p.Spin = spin
		rec := canvas.NewRecorder(400, 300)
		New(DefaultOptions(), rand.New(rand.NewSource(1))).Draw(rec, f.frame(0, 1))

		spot, ok := find(rec, "body:ringed", 3)
		if !ok {
			t.Fatalf("spin %v: spot not drawn", spin)
		}
		want := r2.Add(pos, r2.Vec{X: 5 * math.Cos(spin), Y: 5 * math.Sin(spin)})
		if r2.Norm(r2.Sub(spot.At, want)) > 1e-9 {
			t.Errorf("spin %v: spot at %v, want %v", spin, spot.At, want)
		}

		m, ok := find(rec, "moon:ringed", 2)
		if !ok {
			t.Fatalf("spin %v: moon not drawn", spin)
		}
		if m.At != moon {
			t.Errorf("spin %v: moon at %v, want %v", spin, m.At, moon)
		}

		for _, op := range rec.Ops {
			if op.Kind == canvas.OpStrokeEllipse && op.Group == "rings-front:ringed" && op.At != pos {
				t.Errorf("spin %v: ring centered at %v, want %v", spin, op.At, pos)
			}
		}
	}
}

func TestDraw_RingsStraddleBody(t *testing.T) {
	f := newFixture(t)
	rec := canvas.NewRecorder(400, 300)
	New(DefaultOptions(), rand.New(rand.NewSource(1))).Draw(rec, f.frame(0, 1))

	if n := rec.Count(canvas.OpStrokeEllipse, "rings-back:ringed"); n != 2 {
		t.Errorf("back ring arcs = %d, want 2", n)
	}
	if n := rec.Count(canvas.OpStrokeEllipse, "rings-front:ringed"); n != 2 {
		t.Errorf("front ring arcs = %d, want 2", n)
	}
}

func TestDraw_RendererDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	before := f.sys.Planets[0].Phase
	stars := slices.Clone(f.sys.Stars)
	New(DefaultOptions(), rand.New(rand.NewSource(1))).Draw(canvas.NewRecorder(400, 300), f.frame(0, 1))

	if f.sys.Planets[0].Phase != before {
		t.Error("Draw changed a planet phase")
	}
	if !slices.Equal(stars, f.sys.Stars) {
		t.Error("Draw changed the starfield")
	}
}

func TestDraw_Raster(t *testing.T) {
	bp, err := system.Compile(system.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	sys := bp.Spawn(200, 150, rand.New(rand.NewSource(4)))
	vp := orbit.NewViewport(200, 150, 0.15, orbit.DefaultTilt)
	var l system.Layout
	sys.Solve(vp, &l)

	ras := canvas.NewRaster(200, 150)
	order := make([]int, len(sys.Planets))
	for i := range order {
		order[i] = i
	}
	frame := Frame{System: sys, Layout: &l, Viewport: vp, Order: order}

	opts := DefaultOptions()
	opts.ShowLabels = false
	r := New(opts, rand.New(rand.NewSource(4)))
	r.Draw(ras, frame)

	c := ras.Image().RGBAAt(100, 75)
	if c.R < 200 || c.B >= c.R {
		t.Errorf("sun center pixel = %v, want a bright warm color", c)
	}
	if n := len(ras.Labels()); n != 0 {
		t.Errorf("Labels() = %d with labels off, want 0", n)
	}

	r.SetOptions(DefaultOptions())
	r.Draw(ras, frame)
	if n := len(ras.Labels()); n != len(sys.Planets) {
		t.Errorf("Labels() = %d, want %d", n, len(sys.Planets))
	}
}

func TestDraw_TrailsBeforeSunAndBodies(t *testing.T) {
	f := newFixture(t)
	rec := canvas.NewRecorder(400, 300)
	New(DefaultOptions(), rand.New(rand.NewSource(1))).Draw(rec, f.frame(1, 0))

	groups := rec.Groups()
	sun := slices.Index(groups, LayerSun)
	for _, name := range []string{"inner", "ringed"} {
		trail := slices.Index(groups, "trail:"+name)
		if trail < 0 || trail > sun {
			t.Errorf("trail:%s at %d, want before sun at %d: %v", name, trail, sun, groups)
		}
	}
	if slices.Index(groups, "trail:inner") < slices.Index(groups, "trail:ringed") {
		t.Errorf("trails not in depth order [1 0]: %v", groups)
	}
	first := slices.Index(groups, "body:ringed")
	for i, g := range groups[first:] {
		if strings.HasPrefix(g, LayerTrail+":") {
			t.Errorf("%s drawn at %d after a planet body", g, first+i)
		}
	}
}

func TestDraw_GuidesSkipNonFiniteGeometry(t *testing.T) {
	cfg := testConfig()
	start := 0.0
	cfg.Planets = append(cfg.Planets, system.PlanetSpec{
		Name: "far", Radius: 1, SemiMajorAxis: 1e308, Eccentricity: 0.5, Speed: 0.01, StartAngle: &start,
		Colors: cfg.Planets[0].Colors,
	})
	bp, err := system.Compile(cfg)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	sys := bp.Spawn(400, 300, rand.New(rand.NewSource(1)))
	vp := orbit.NewViewport(400, 300, 10, orbit.DefaultTilt)
	var l system.Layout
	sys.Solve(vp, &l)

	rec := canvas.NewRecorder(400, 300)
	st := New(DefaultOptions(), rand.New(rand.NewSource(1))).Draw(rec, Frame{System: sys, Layout: &l, Viewport: vp, Order: []int{0, 1, 2}})

	markers := 0
	for _, op := range rec.Ops {
		if op.Group != LayerOrbits {
			continue
		}
		if !orbit.Valid(op.At) || math.IsInf(op.RX, 0) || math.IsInf(op.RY, 0) {
			t.Errorf("orbit guide op %v with non-finite geometry: at %v, r (%v, %v)", op.Kind, op.At, op.RX, op.RY)
		}
		if op.Kind == canvas.OpFillEllipse {
			markers++
		}
	}
	if markers != 1 {
		t.Errorf("perihelion markers = %d, want 1", markers)
	}
	if st.Skipped == 0 {
		t.Error("far planet with non-finite position was not skipped")
	}
}
