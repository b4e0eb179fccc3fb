package anim

import (
	"context"
	"errors"
	"time"
)

// Scheduler paces frames: each value on Frames asks for the next repaint.
type Scheduler interface {
	Frames() <-chan time.Time
	Stop()
}

// TickerScheduler paces frames with a time.Ticker.
type TickerScheduler struct {
	ticker *time.Ticker
}

// NewTickerScheduler creates a scheduler firing fps times per second.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = DefaultConfig().FPS
	}
	return &TickerScheduler{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (s *TickerScheduler) Frames() <-chan time.Time { return s.ticker.C }

func (s *TickerScheduler) Stop() { s.ticker.Stop() }

// Run ticks the driver on every frame from s until ctx is cancelled or the
// driver is stopped. onFrame, if set, is called after each rendered frame;
// returning false ends the loop.
func (d *Driver) Run(ctx context.Context, s Scheduler, onFrame func(FrameStats) bool) error {
	defer s.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.Frames():
			fs, err := d.Tick()
			if errors.Is(err, ErrNotRunning) {
				d.log.Debug("Run loop exiting: driver stopped")
				return nil
			}
			if err != nil {
				return err
			}
			if onFrame != nil && !onFrame(fs) {
				return nil
			}
		}
	}
}
