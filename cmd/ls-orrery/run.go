package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/anim"
	"github.com/litescript/ls-orrery/internal/canvas"
	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/system"
	"github.com/litescript/ls-orrery/internal/ui"
)

// Surface size used for snapshots and for headless output that is not a terminal.
const (
	defaultWidth  = 800
	defaultHeight = 600
)

func run(ctx context.Context, cfg config.Config, opts options) error {
	interactive := opts.snapshot == "" && !opts.headless

	logger, err := newLogger(cfg, interactive)
	if err != nil {
		return err
	}
	defer logger.Close()

	bp, err := compile(cfg.Bodies, opts.skipInvalid, logger.Named("system"))
	if err != nil {
		return err
	}

	var rec *metrics.Recorder
	bgErrs := make(chan error, 1)
	if cfg.Metrics.Addr != "" {
		rec = metrics.New()
		mlog := logger.Named("metrics")
		go func() {
			mlog.Info("Serving metrics on %s", cfg.Metrics.Addr)
			if err := rec.Serve(ctx, cfg.Metrics.Addr); err != nil {
				mlog.Error("Metrics server stopped: %v", err)
				bgErrs <- fmt.Errorf("metrics: %w", err)
			}
		}()
	}

	raster := canvas.NewRaster(1, 1, canvas.WithGlyphText(opts.snapshot != ""))
	driver := anim.New(bp, raster, cfg.Animation,
		anim.WithLogger(logger.Named("anim")),
		anim.WithMetrics(rec),
		anim.WithRenderOptions(cfg.Display),
	)
	logger.Info("Starting %s with seed %d", appName, driver.Seed())

	switch {
	case opts.snapshot != "":
		return runSnapshot(driver, raster, opts)
	case opts.headless:
		return runHeadless(ctx, driver, raster, opts, os.Stdout)
	default:
		return runTUI(ctx, driver, raster, bgErrs, logger.Named("ui"))
	}
}

// newLogger sends logs to the configured file. Without one, the TUI
// discards them since it owns the screen.
func newLogger(cfg config.Config, interactive bool) (*logging.Logger, error) {
	if cfg.Log.File != "" {
		return logging.OpenFile(cfg.Log.File, cfg.LogLevel())
	}
	if interactive {
		return logging.Discard(), nil
	}
	return logging.New(cfg.LogLevel()), nil
}

// compile builds the blueprint. Invalid planets abort the run unless
// skipInvalid is set; an invalid sun, belt or starfield always does.
func compile(cfg system.Config, skipInvalid bool, log *logging.Logger) (*system.Blueprint, error) {
	bp, err := system.Compile(cfg)
	if err == nil {
		return bp, nil
	}
	if bp == nil || !skipInvalid {
		return nil, fmt.Errorf("invalid bodies: %w", err)
	}
	log.Warn("Skipping invalid bodies: %v", err)
	log.Info("Continuing with %d planets", bp.PlanetCount())
	return bp, nil
}

func runSnapshot(d *anim.Driver, r *canvas.Raster, opts options) error {
	w, h := opts.width, opts.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	frames := opts.frames
	if frames <= 0 {
		frames = 1
	}

	if err := d.Initialize(w, h); err != nil {
		return err
	}
	if _, err := d.Step(frames); err != nil {
		return err
	}

	f, err := os.Create(opts.snapshot)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := r.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return f.Close()
}

// runHeadless prints frames until ctx is cancelled or the frame budget
// is spent. On a terminal each frame redraws in place.
func runHeadless(ctx context.Context, d *anim.Driver, r *canvas.Raster, opts options, out io.Writer) error {
	isTTY := false
	cols, rows := opts.width, opts.height/2
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		isTTY = true
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if cols <= 0 {
				cols = tw
			}
			if rows <= 0 {
				rows = th - 1
			}
		}
	}
	if cols <= 0 {
		cols = defaultWidth / 8
	}
	if rows <= 0 {
		rows = defaultHeight / 16
	}

	if err := d.Start(cols, rows*2); err != nil {
		return err
	}
	defer d.Stop()

	bw := bufio.NewWriter(out)
	defer bw.Flush()

	sched := anim.NewTickerScheduler(d.Config().FPS)
	frame := 0
	err := d.Run(ctx, sched, func(anim.FrameStats) bool {
		if isTTY {
			bw.WriteString("\x1b[H")
		} else if frame > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(ui.Frame(r))
		bw.WriteString("\n")
		if err := bw.Flush(); err != nil {
			return false
		}
		frame++
		return opts.frames <= 0 || frame < opts.frames
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runTUI runs the interactive program. Errors from background services are
// shown in the status line.
func runTUI(ctx context.Context, d *anim.Driver, r *canvas.Raster, errs <-chan error, log *logging.Logger) error {
	model := ui.New(d, r, log)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		select {
		case err := <-errs:
			p.Send(ui.ErrorMsg{Error: err})
		case <-ctx.Done():
		}
	}()
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
