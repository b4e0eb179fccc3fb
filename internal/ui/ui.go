// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-orrery/internal/anim"
	"github.com/litescript/ls-orrery/internal/canvas"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/version"
)

// hudLines is the number of terminal rows below the frame.
const hudLines = 2

// Msg types for Bubble Tea
type (
	// FrameMsg requests the next animation frame.
	FrameMsg time.Time

	// ErrorMsg reports a failure to show in the status line.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	driver *anim.Driver
	raster *canvas.Raster
	log    *logging.Logger

	// UI state
	width     int
	height    int
	ready     bool
	interval  time.Duration
	lastFrame time.Time
	fps       float64
	stats     anim.FrameStats
	statusMsg string
	err       error
}

// New creates the root model. The driver must paint onto raster.
func New(driver *anim.Driver, raster *canvas.Raster, log *logging.Logger) Model {
	fps := driver.Config().FPS
	if fps <= 0 {
		fps = anim.DefaultConfig().FPS
	}
	if log == nil {
		log = logging.Discard()
	}
	return Model{
		driver:   driver,
		raster:   raster,
		log:      log,
		interval: time.Second / time.Duration(fps),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frameCmd(m.interval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.surfaceSize()
		var err error
		if m.driver.State() == anim.StateRunning {
			err = m.driver.Resize(w, h)
		} else {
			err = m.driver.Start(w, h)
		}
		if err != nil {
			m.err = err
			m.log.Warn("Resize to %dx%d failed: %v", w, h, err)
			return m, nil
		}
		m.err = nil
		m.ready = true

	case FrameMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
				if m.fps == 0 {
					m.fps = 1 / dt
				} else {
					m.fps = 0.9*m.fps + 0.1/dt
				}
			}
		}
		m.lastFrame = now

		if m.ready && m.driver.IsRunning() {
			stats, err := m.driver.Tick()
			if err != nil && !errors.Is(err, anim.ErrNotRunning) {
				m.err = err
			}
			m.stats = stats
		}
		return m, frameCmd(m.interval)

	case ErrorMsg:
		m.err = msg.Error
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := m.driver.Options()
	switch msg.String() {
	case "q", "ctrl+c":
		m.driver.Stop()
		return m, tea.Quit

	case "o":
		opts.ShowOrbits = !opts.ShowOrbits
	case "t":
		opts.ShowTrails = !opts.ShowTrails
	case "l":
		opts.ShowLabels = !opts.ShowLabels
	case "g":
		opts.ShowGlow = !opts.ShowGlow

	case " ":
		paused := !m.driver.Paused()
		m.driver.SetPaused(paused)
		if paused {
			m.statusMsg = "Paused"
		} else {
			m.statusMsg = ""
		}
		return m, nil

	case "+", "=":
		m.setSpeed(m.driver.TimeScale() * 2)
		return m, nil
	case "-", "_":
		m.setSpeed(m.driver.TimeScale() / 2)
		return m, nil

	case "r":
		if m.ready {
			w, h := m.surfaceSize()
			if err := m.driver.Initialize(w, h); err != nil {
				m.err = err
			} else {
				m.statusMsg = "Reinitialized"
			}
		}
		return m, nil

	default:
		return m, nil
	}
	m.driver.SetOptions(opts)
	return m, nil
}

func (m *Model) setSpeed(v float64) {
	v = min(max(v, anim.MinTimeScale), anim.MaxTimeScale)
	if err := m.driver.SetTimeScale(v); err != nil {
		m.err = err
		return
	}
	m.statusMsg = fmt.Sprintf("Speed %gx", v)
}

// surfaceSize maps the terminal to pixels: one column per pixel and two
// pixel rows per terminal row.
func (m Model) surfaceSize() (int, int) {
	rows := max(m.height-hudLines, 1)
	return max(m.width, 1), rows * 2
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		if m.err != nil {
			return "Error: " + m.err.Error()
		}
		return "Initializing..."
	}
	return present(m.raster.Image(), m.raster.Labels()) + "\n" + m.renderHUD()
}

func (m Model) renderHUD() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	onStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	snap := m.driver.Snapshot()
	opts := m.driver.Options()

	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(renderTitle(fmt.Sprintf("ls-orrery v%s", version.Version)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("tick "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", snap.Tick)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("speed "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%gx", snap.TimeScale)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("fps "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.1f", m.fps)))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("planets "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.stats.Planets)))
	if m.stats.Skipped > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf(" (%d skipped)", m.stats.Skipped)))
	}
	switch {
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render("ERROR: "+m.err.Error()))
	case m.statusMsg != "":
		b.WriteString("  " + onStyle.Render(m.statusMsg))
	}
	b.WriteString("\n ")

	toggle := func(key, name string, on bool) string {
		style := dimStyle
		mark := "○"
		if on {
			style = onStyle
			mark = "●"
		}
		return style.Render(fmt.Sprintf("%s %s", mark, name)) + dimStyle.Render("["+key+"]")
	}
	b.WriteString(strings.Join([]string{
		toggle("o", "orbits", opts.ShowOrbits),
		toggle("t", "trails", opts.ShowTrails),
		toggle("l", "labels", opts.ShowLabels),
		toggle("g", "glow", opts.ShowGlow),
	}, " "))
	b.WriteString(dimStyle.Render("  |  space: pause | +/-: speed | r: reset | q: quit"))
	return b.String()
}

// renderTitle draws text with a horizontal gradient from blue to pink.
func renderTitle(text string) string {
	from, _ := colorful.Hex("#3B82F6")
	to, _ := colorful.Hex("#EC4899")
	runes := []rune(text)

	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := from.BlendHcl(to, t).Clamped()
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}
