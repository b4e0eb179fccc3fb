package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/litescript/ls-orrery/internal/logging"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Animation != def.Animation {
		t.Errorf("Animation = %+v, want %+v", cfg.Animation, def.Animation)
	}
	if cfg.Display != def.Display {
		t.Errorf("Display = %+v, want %+v", cfg.Display, def.Display)
	}
	if len(cfg.Bodies.Planets) != 8 {
		t.Errorf("planets = %d, want 8", len(cfg.Bodies.Planets))
	}
	if cfg.LogLevel() != logging.LevelInfo {
		t.Errorf("LogLevel() = %v, want info", cfg.LogLevel())
	}
}

func TestLoad_FileReplacesPlanets(t *testing.T) {
	path := writeFile(t, `
animation:
  fps: 24
display:
  show_trails: false
bodies:
  sun:
    radius: 30
  planets:
    - name: Solo
      radius: 6
      a: 90
      e: 0.1
      period: 400
      colors:
        - {offset: 0, color: "#ffffff"}
        - {offset: 1, color: "#333333"}
      features:
        rings: {count: 2, color: "#c8b478", alpha: 0.5, inner: 1.3, outer: 1.6, flatten: 0.3}
`)
	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Animation.FPS != 24 {
		t.Errorf("FPS = %d, want 24", cfg.Animation.FPS)
	}
	if cfg.Display.ShowTrails || !cfg.Display.ShowOrbits {
		t.Errorf("Display = %+v, want trails off and orbits on", cfg.Display)
	}
	if len(cfg.Bodies.Planets) != 1 {
		t.Fatalf("planets = %d, want 1", len(cfg.Bodies.Planets))
	}
	p := cfg.Bodies.Planets[0]
	if p.Name != "Solo" || p.SemiMajorAxis != 90 || p.Period != 400 {
		t.Errorf("planet = %+v", p)
	}
	if p.Features.Rings == nil || p.Features.Rings.Count != 2 {
		t.Errorf("rings = %+v, want 2 rings", p.Features.Rings)
	}
	if p.Features.Atmosphere != nil || p.Moon != nil {
		t.Error("planet inherited features from the defaults")
	}
	if cfg.Bodies.Sun.Radius != 30 {
		t.Errorf("sun radius = %v, want 30", cfg.Bodies.Sun.Radius)
	}
	if len(cfg.Bodies.Sun.Colors) != 5 {
		t.Errorf("sun colors = %d, want the 5 defaults", len(cfg.Bodies.Sun.Colors))
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ORRERY_ANIMATION_FPS", "60")
	t.Setenv("ORRERY_DISPLAY_SHOW_LABELS", "false")
	t.Setenv("ORRERY_LOG_LEVEL", "debug")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Animation.FPS != 60 {
		t.Errorf("FPS = %d, want 60", cfg.Animation.FPS)
	}
	if cfg.Display.ShowLabels {
		t.Error("ShowLabels = true, want false from env")
	}
	if cfg.LogLevel() != logging.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing explicit path) error = nil")
	}

	path := writeFile(t, "animation:\n  fps: 0\n  time_scale: -1\nlog:\n  level: loud\n")
	_, err := Load(New(), path)
	for _, want := range []error{ErrFPS, ErrTimeScale, ErrLogLevel} {
		if !errors.Is(err, want) {
			t.Errorf("Load error = %v, want it to wrap %v", err, want)
		}
	}
}

func TestWrite_LoadsBack(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, DefaultConfig()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"animation:", "show_orbits: true", "name: Saturn", "rings:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Write output missing %q", want)
		}
	}

	cfg, err := Load(New(), writeFile(t, out))
	if err != nil {
		t.Fatalf("Load(written config) error: %v", err)
	}
	if len(cfg.Bodies.Planets) != 8 || cfg.Bodies.Planets[5].Features.Rings == nil {
		t.Error("written config did not load back the default bodies")
	}
}
