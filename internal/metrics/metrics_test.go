package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFrame(t *testing.T) {
	r := New()
	r.ObserveFrame(4*time.Millisecond, 8, 0)
	r.ObserveFrame(6*time.Millisecond, 7, 2)

	if got := testutil.ToFloat64(r.frames); got != 2 {
		t.Errorf("frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.skipped); got != 2 {
		t.Errorf("skipped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.planets); got != 7 {
		t.Errorf("planets = %v, want 7", got)
	}
}

func TestReinitialized(t *testing.T) {
	r := New()
	r.Reinitialized("resize")
	r.Reinitialized("resize")
	r.Reinitialized("start")

	if got := testutil.ToFloat64(r.reinits.WithLabelValues("resize")); got != 2 {
		t.Errorf("resize reinits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.reinits.WithLabelValues("start")); got != 1 {
		t.Errorf("start reinits = %v, want 1", got)
	}
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.ObserveFrame(time.Millisecond, 1, 1)
	r.Reinitialized("start")
	r.SetTimeScale(2)
}

func TestHandler(t *testing.T) {
	r := New()
	r.SetTimeScale(1.5)
	r.ObserveFrame(time.Millisecond, 3, 0)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{"orrery_frames_total 1", "orrery_time_scale 1.5", "orrery_frame_duration_seconds_bucket"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
