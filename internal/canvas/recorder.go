package canvas

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// OpKind identifies a recorded draw call.
type OpKind string

const (
	OpClear         OpKind = "clear"
	OpFillRect      OpKind = "fill_rect"
	OpFillEllipse   OpKind = "fill_ellipse"
	OpStrokeEllipse OpKind = "stroke_ellipse"
	OpStrokePath    OpKind = "stroke_path"
	OpText          OpKind = "text"
)

// Op is one recorded draw call. Positions are in device space.
type Op struct {
	Kind   OpKind
	Group  string
	At     r2.Vec
	RX, RY float64
	Points int
	Paint  Paint
	Text   string
	Glow   bool
}

// Recorder is a Surface that records draw calls instead of painting. It
// tracks the transform stack so recorded positions match what a raster would
// draw.
type Recorder struct {
	width, height int
	Ops           []Op

	st     rasterState
	stack  []rasterState
	groups []string
}

// NewRecorder creates a recorder reporting the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height, st: rasterState{m: identity()}}
}

// Reset drops recorded ops.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
	r.stack = r.stack[:0]
	r.groups = r.groups[:0]
	r.st = rasterState{m: identity()}
}

// Groups returns the distinct group names in first-seen order.
func (r *Recorder) Groups() []string {
	var out []string
	seen := make(map[string]bool)
	for _, op := range r.Ops {
		if op.Group == "" || seen[op.Group] {
			continue
		}
		seen[op.Group] = true
		out = append(out, op.Group)
	}
	return out
}

// Count returns the number of ops of a kind in a group ("" matches any group).
func (r *Recorder) Count(kind OpKind, group string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind && (group == "" || op.Group == group) {
			n++
		}
	}
	return n
}

func (r *Recorder) group() string {
	if len(r.groups) == 0 {
		return ""
	}
	return r.groups[len(r.groups)-1]
}

func (r *Recorder) add(op Op) {
	op.Group = r.group()
	op.Glow = r.st.glowBlur > 0
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) BeginGroup(name string) { r.groups = append(r.groups, name) }

func (r *Recorder) EndGroup() {
	if len(r.groups) > 0 {
		r.groups = r.groups[:len(r.groups)-1]
	}
}

func (r *Recorder) Size() (int, int) { return r.width, r.height }

// Resize changes the reported size.
func (r *Recorder) Resize(width, height int) { r.width, r.height = width, height }

func (r *Recorder) Clear(p Paint) {
	r.Ops = r.Ops[:0]
	r.add(Op{Kind: OpClear, Paint: p})
}

func (r *Recorder) FillRect(x, y, w, h float64, p Paint) {
	r.add(Op{Kind: OpFillRect, At: r.st.m.apply(r2.Vec{X: x, Y: y}), RX: w, RY: h, Paint: p})
}

func (r *Recorder) FillEllipse(center r2.Vec, rx, ry, rotation float64, p Paint) {
	s := r.st.m.scale()
	r.add(Op{Kind: OpFillEllipse, At: r.st.m.apply(center), RX: rx * s, RY: ry * s, Paint: p})
}

func (r *Recorder) StrokeEllipse(center r2.Vec, rx, ry, rotation, start, end, width float64, p Paint) {
	s := r.st.m.scale()
	r.add(Op{Kind: OpStrokeEllipse, At: r.st.m.apply(center), RX: rx * s, RY: ry * s, Paint: p})
}

func (r *Recorder) StrokePath(points []r2.Vec, width float64, p Paint) {
	op := Op{Kind: OpStrokePath, Points: len(points), Paint: p}
	if len(points) > 0 {
		op.At = r.st.m.apply(points[len(points)-1])
	}
	r.add(op)
}

func (r *Recorder) FillText(text string, at r2.Vec, c Color) {
	r.add(Op{Kind: OpText, At: r.st.m.apply(at), Text: text, Paint: Solid{Color: c}})
}

func (r *Recorder) Save() { r.stack = append(r.stack, r.st) }

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.st = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Recorder) Translate(d r2.Vec) { r.st.m = r.st.m.translate(d) }

func (r *Recorder) Rotate(theta float64) { r.st.m = r.st.m.rotate(theta) }

func (r *Recorder) SetGlow(blur float64, c Color) {
	r.st.glowBlur = blur
	r.st.glow = c
}

// Depth returns the current save/restore nesting.
func (r *Recorder) Depth() int { return len(r.stack) }
