// Package anim drives the simulation: it owns the body state, viewport,
// trails and run state, and turns each tick into a rendered frame.
package anim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/litescript/ls-orrery/internal/canvas"
	"github.com/litescript/ls-orrery/internal/depth"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/orbit"
	"github.com/litescript/ls-orrery/internal/render"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/trail"
)

var (
	ErrInvalidSize    = errors.New("surface size must be positive")
	ErrNotRunning     = errors.New("driver is not running")
	ErrNotInitialized = errors.New("driver has not been initialized")
	ErrTimeScale      = errors.New("time scale must be positive and finite")
)

// Time scale limits for interactive speed changes.
const (
	MinTimeScale = 1.0 / 16
	MaxTimeScale = 16.0
)

// State is the driver's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds animation settings.
type Config struct {
	FPS         int     `yaml:"fps" mapstructure:"fps"`
	TimeScale   float64 `yaml:"time_scale" mapstructure:"time_scale"`
	TrailLength int     `yaml:"trail_length" mapstructure:"trail_length"`
	Tilt        float64 `yaml:"tilt" mapstructure:"tilt"`
	MaxScale    float64 `yaml:"max_scale" mapstructure:"max_scale"`
	Margin      float64 `yaml:"margin" mapstructure:"margin"` // pixels kept clear around the outermost orbit
	Seed        int64   `yaml:"seed" mapstructure:"seed"`     // 0 picks a time-based seed
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		FPS:         30,
		TimeScale:   1,
		TrailLength: trail.DefaultCapacity,
		Tilt:        orbit.DefaultTilt,
		MaxScale:    1,
		Margin:      4,
	}
}

// FrameStats describes one tick.
type FrameStats struct {
	Tick     uint64
	Planets  int
	Skipped  int
	Duration time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithMetrics records frames to m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithClock replaces the wall clock that drives time-based cosmetics.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// WithRenderOptions sets the initial display toggles.
func WithRenderOptions(o render.Options) Option {
	return func(d *Driver) { d.renderOpts = o }
}

// Driver advances and renders the system. It is safe to call Stop and
// IsRunning from another goroutine while a loop ticks it.
type Driver struct {
	mu sync.Mutex

	cfg        Config
	bp         *system.Blueprint
	surface    canvas.Surface
	renderer   *render.Renderer
	renderOpts render.Options
	rng        *rand.Rand
	seed       int64
	log        *logging.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
	epoch      time.Time

	state     State
	paused    bool
	timeScale float64
	width     int
	height    int
	tick      uint64

	sys    *system.System
	layout system.Layout
	vp     orbit.Viewport
	trails *trail.Set
	seq    depth.Sequencer
	keys   []float64
}

// New creates an idle driver that paints onto surface.
func New(bp *system.Blueprint, surface canvas.Surface, cfg Config, opts ...Option) *Driver {
	def := DefaultConfig()
	if cfg.TrailLength <= 0 {
		cfg.TrailLength = def.TrailLength
	}
	if !(cfg.Tilt > 0 && cfg.Tilt <= 1) {
		cfg.Tilt = def.Tilt
	}
	if !(cfg.MaxScale > 0) {
		cfg.MaxScale = def.MaxScale
	}
	if !(cfg.TimeScale > 0) || math.IsInf(cfg.TimeScale, 0) {
		cfg.TimeScale = def.TimeScale
	}
	if cfg.FPS <= 0 {
		cfg.FPS = def.FPS
	}

	d := &Driver{
		cfg:        cfg,
		bp:         bp,
		surface:    surface,
		renderOpts: render.DefaultOptions(),
		log:        logging.Discard(),
		now:        time.Now,
		timeScale:  cfg.TimeScale,
		trails:     trail.NewSet(0, cfg.TrailLength),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.seed = cfg.Seed
	if d.seed == 0 {
		d.seed = d.now().UnixNano()
	}
	d.rng = rand.New(rand.NewSource(d.seed))
	d.renderer = render.New(d.renderOpts, d.rng)
	d.epoch = d.now()
	d.metrics.SetTimeScale(d.timeScale)
	return d
}

// Seed returns the seed of the driver's random source.
func (d *Driver) Seed() int64 { return d.seed }

// Config returns the effective configuration.
func (d *Driver) Config() Config { return d.cfg }

// Start initializes the system for a width×height surface and begins
// running. Starting a running driver is a no-op.
func (d *Driver) Start(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateRunning {
		return nil
	}
	if err := d.initialize(width, height, "start"); err != nil {
		return err
	}
	d.state = StateRunning
	d.log.Info("Started %dx%d (seed %d)", width, height, d.seed)
	return nil
}

// Stop halts the driver. No further frames are produced until Start.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == StateRunning {
		d.log.Info("Stopped after %d ticks", d.tick)
	}
	d.state = StateStopped
}

// IsRunning reports whether the driver is producing frames.
func (d *Driver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateRunning
}

// State returns the lifecycle state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Initialize rebuilds every body, the viewport and the trails for a
// width×height surface. Calling it twice with the same size is harmless.
func (d *Driver) Initialize(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialize(width, height, "reset")
}

// Resize reinitializes for a new surface size.
func (d *Driver) Resize(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialize(width, height, "resize")
}

func (d *Driver) initialize(width, height int, reason string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%dx%d: %w", width, height, ErrInvalidSize)
	}
	if r, ok := d.surface.(canvas.Resizer); ok {
		r.Resize(width, height)
	}

	d.width, d.height = width, height
	d.sys = d.bp.Spawn(width, height, d.rng)
	d.vp = d.fit(width, height)
	d.trails.Resize(len(d.sys.Planets))
	d.sys.Solve(d.vp, &d.layout)

	d.metrics.Reinitialized(reason)
	d.log.Debug("Initialized %dx%d (%s): %d planets, scale %.3f", width, height, reason, len(d.sys.Planets), d.vp.Scale)
	return nil
}

// fit picks the largest scale, up to MaxScale, at which the outermost
// orbit stays on the surface.
func (d *Driver) fit(width, height int) orbit.Viewport {
	halfW, halfH := d.sys.Extent()
	availW := float64(width)/2 - d.cfg.Margin
	availH := float64(height)/2 - d.cfg.Margin

	scale := d.cfg.MaxScale
	if halfW > 0 {
		scale = math.Min(scale, availW/halfW)
	}
	if halfH > 0 {
		scale = math.Min(scale, availH/(halfH*d.cfg.Tilt))
	}
	if !(scale > 0) {
		scale = 0.01
	}
	return orbit.NewViewport(width, height, scale, d.cfg.Tilt)
}

// Tick advances one step and renders it. It fails unless the driver is running.
func (d *Driver) Tick() (FrameStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateRunning {
		return FrameStats{}, ErrNotRunning
	}
	return d.step(!d.paused), nil
}

// Step advances and renders n ticks regardless of run state or pause.
func (d *Driver) Step(n int) (FrameStats, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sys == nil {
		return FrameStats{}, ErrNotInitialized
	}
	var fs FrameStats
	for i := 0; i < n; i++ {
		fs = d.step(true)
	}
	return fs, nil
}

func (d *Driver) step(advance bool) FrameStats {
	began := time.Now()

	if advance {
		d.sys.Advance(d.timeScale)
		d.tick++
	}
	d.sys.Solve(d.vp, &d.layout)
	if advance {
		for i, p := range d.layout.Planets {
			if orbit.Valid(p) {
				d.trails.Record(i, p)
			}
		}
	}

	d.keys = d.keys[:0]
	for _, p := range d.layout.Planets {
		d.keys = append(d.keys, p.Y)
	}

	st := d.renderer.Draw(d.surface, render.Frame{
		System:   d.sys,
		Layout:   &d.layout,
		Viewport: d.vp,
		Trails:   d.trails,
		Order:    d.seq.Order(d.keys),
		Clock:    d.now().Sub(d.epoch).Seconds(),
	})

	fs := FrameStats{Tick: d.tick, Planets: st.Planets, Skipped: st.Skipped, Duration: time.Since(began)}
	d.metrics.ObserveFrame(fs.Duration, fs.Planets, fs.Skipped)
	if st.Skipped > 0 {
		d.log.Debug("Tick %d: skipped %d bodies with invalid positions", d.tick, st.Skipped)
	}
	return fs
}

// SetPaused freezes or resumes motion. A paused driver still renders.
func (d *Driver) SetPaused(p bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = p
}

// Paused reports whether motion is frozen.
func (d *Driver) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

// TimeScale returns the multiplier applied to every angular speed.
func (d *Driver) TimeScale() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timeScale
}

// SetTimeScale changes the simulation speed from the next tick.
func (d *Driver) SetTimeScale(v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%v: %w", v, ErrTimeScale)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeScale = v
	d.metrics.SetTimeScale(v)
	return nil
}

// Options returns the display toggles.
func (d *Driver) Options() render.Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renderer.Options()
}

// SetOptions replaces the display toggles.
func (d *Driver) SetOptions(o render.Options) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.renderer.SetOptions(o)
}

// Snapshot is a read-only view of the driver for status displays.
type Snapshot struct {
	State     State
	Paused    bool
	Tick      uint64
	TimeScale float64
	Width     int
	Height    int
	Viewport  orbit.Viewport
	Planets   int
	Seed      int64
}

// Snapshot returns the current status.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := Snapshot{
		State:     d.state,
		Paused:    d.paused,
		Tick:      d.tick,
		TimeScale: d.timeScale,
		Width:     d.width,
		Height:    d.height,
		Viewport:  d.vp,
		Seed:      d.seed,
	}
	if d.sys != nil {
		s.Planets = len(d.sys.Planets)
	}
	return s
}

// TrailLen returns the number of recorded points for planet i.
func (d *Driver) TrailLen(i int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b := d.trails.Get(i); b != nil {
		return b.Len()
	}
	return 0
}

// Phase returns planet i's orbital phase.
func (d *Driver) Phase(i int) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sys == nil || i < 0 || i >= len(d.sys.Planets) {
		return 0, false
	}
	return d.sys.Planets[i].Phase, true
}
