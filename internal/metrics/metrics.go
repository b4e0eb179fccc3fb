// Package metrics exposes frame-loop counters over Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// frameBuckets cover 0.5ms to ~0.5s, around a 60 fps frame budget.
var frameBuckets = prometheus.ExponentialBuckets(0.0005, 2, 11)

// Recorder holds the orrery's collectors on its own registry. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	frames        prometheus.Counter
	skipped       prometheus.Counter
	reinits       *prometheus.CounterVec
	frameDuration prometheus.Histogram
	planets       prometheus.Gauge
	timeScale     prometheus.Gauge
}

// New creates a Recorder with process and Go runtime collectors attached.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_frames_total",
			Help: "Total number of rendered frames.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_skipped_bodies_total",
			Help: "Bodies left out of a frame because their position was not finite.",
		}),
		reinits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orrery_reinitializations_total",
			Help: "Simulation reinitializations by cause.",
		}, []string{"reason"}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orrery_frame_duration_seconds",
			Help:    "Time spent advancing and rendering one frame.",
			Buckets: frameBuckets,
		}),
		planets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_planets_drawn",
			Help: "Planets drawn in the last frame.",
		}),
		timeScale: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_time_scale",
			Help: "Current simulation time scale.",
		}),
	}
	r.reg.MustRegister(
		r.frames, r.skipped, r.reinits, r.frameDuration, r.planets, r.timeScale,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveFrame records one rendered frame.
func (r *Recorder) ObserveFrame(d time.Duration, planets, skipped int) {
	if r == nil {
		return
	}
	r.frames.Inc()
	r.frameDuration.Observe(d.Seconds())
	r.planets.Set(float64(planets))
	if skipped > 0 {
		r.skipped.Add(float64(skipped))
	}
}

// Reinitialized counts a rebuild of the simulation.
func (r *Recorder) Reinitialized(reason string) {
	if r == nil {
		return
	}
	r.reinits.WithLabelValues(reason).Inc()
}

// SetTimeScale records the current time scale.
func (r *Recorder) SetTimeScale(v float64) {
	if r == nil {
		return
	}
	r.timeScale.Set(v)
}

// Handler returns the Prometheus metrics HTTP handler for this registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
