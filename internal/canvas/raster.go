package canvas

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r2"
)

type rasterState struct {
	m        affine
	glowBlur float64
	glow     Color
}

// Raster is a software Surface backed by an RGBA image. Shapes are flattened
// to polygons and filled with anti-aliased coverage.
type Raster struct {
	img   *image.RGBA
	z     *vector.Rasterizer
	st    rasterState
	stack []rasterState

	face      font.Face
	glyphText bool
	labels    []Label
}

// RasterOption configures a Raster.
type RasterOption func(*Raster)

// WithGlyphText controls whether FillText draws glyphs into the image. Hosts
// that overlay text themselves (a terminal) disable it and read Labels instead.
func WithGlyphText(enabled bool) RasterOption {
	return func(r *Raster) { r.glyphText = enabled }
}

// NewRaster creates a width×height surface.
func NewRaster(width, height int, opts ...RasterOption) *Raster {
	r := &Raster{
		z:         &vector.Rasterizer{},
		st:        rasterState{m: identity()},
		face:      basicfont.Face7x13,
		glyphText: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Resize(width, height)
	return r
}

// Resize reallocates the backing image and resets all drawing state.
func (r *Raster) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))
	r.st = rasterState{m: identity()}
	r.stack = r.stack[:0]
	r.labels = r.labels[:0]
}

// Image returns the backing image. It is reused across frames.
func (r *Raster) Image() *image.RGBA { return r.img }

// Labels returns the text placed since the last Clear.
func (r *Raster) Labels() []Label { return r.labels }

// WritePNG encodes the current frame.
func (r *Raster) WritePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

func (r *Raster) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *Raster) Clear(p Paint) {
	r.labels = r.labels[:0]
	w, h := r.Size()
	if s, ok := p.(Solid); ok {
		draw.Draw(r.img, r.img.Bounds(), image.NewUniform(s.Color.NRGBA()), image.Point{}, draw.Src)
		return
	}
	saved := r.st.m
	r.st.m = identity()
	r.fillPolygon([]r2.Vec{{X: 0, Y: 0}, {X: float64(w), Y: 0}, {X: float64(w), Y: float64(h)}, {X: 0, Y: float64(h)}}, p, draw.Src)
	r.st.m = saved
}

func (r *Raster) FillRect(x, y, w, h float64, p Paint) {
	r.fillPolygon([]r2.Vec{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, p, draw.Over)
}

func (r *Raster) FillEllipse(center r2.Vec, rx, ry, rotation float64, p Paint) {
	if !(rx > 0) || !(ry > 0) {
		return
	}
	if r.st.glowBlur > 0 {
		r.drawGlow(center, rx, ry, rotation)
	}
	segs := segmentsFor(math.Max(rx, ry)*r.st.m.scale(), 2*math.Pi)
	pts := ellipsePoints(center, rx, ry, rotation, 0, 2*math.Pi, segs)
	r.fillPolygon(pts[:len(pts)-1], p, draw.Over)
}

func (r *Raster) drawGlow(center r2.Vec, rx, ry, rotation float64) {
	blur := r.st.glowBlur
	outer := math.Max(rx, ry) + blur
	inner := math.Max(rx, ry) / outer
	halo := RadialGradient{
		C0: center, R0: 0,
		C1: center, R1: outer,
		Stops: []Stop{
			{Offset: 0, Color: r.st.glow},
			{Offset: inner, Color: r.st.glow},
			{Offset: 1, Color: r.st.glow.WithAlpha(0)},
		},
	}
	segs := segmentsFor((math.Max(rx, ry)+blur)*r.st.m.scale(), 2*math.Pi)
	pts := ellipsePoints(center, rx+blur, ry+blur, rotation, 0, 2*math.Pi, segs)
	r.fillPolygon(pts[:len(pts)-1], halo, draw.Over)
}

func (r *Raster) StrokeEllipse(center r2.Vec, rx, ry, rotation, start, end, width float64, p Paint) {
	if !(rx > 0) || !(ry > 0) || width <= 0 {
		return
	}
	segs := segmentsFor(math.Max(rx, ry)*r.st.m.scale(), end-start)
	r.StrokePath(ellipsePoints(center, rx, ry, rotation, start, end, segs), width, p)
}

// StrokePath strokes a polyline with butt-ended segments.
func (r *Raster) StrokePath(points []r2.Vec, width float64, p Paint) {
	if len(points) < 2 || width <= 0 {
		return
	}
	half := width * r.st.m.scale() / 2

	dev := make([]r2.Vec, len(points))
	for i, pt := range points {
		dev[i] = r.st.m.apply(pt)
	}

	var quads [][]r2.Vec
	for i := 1; i < len(dev); i++ {
		a, b := dev[i-1], dev[i]
		d := r2.Sub(b, a)
		n := r2.Norm(d)
		if n == 0 {
			continue
		}
		off := r2.Scale(half/n, r2.Vec{X: -d.Y, Y: d.X})
		quads = append(quads, []r2.Vec{r2.Add(a, off), r2.Add(b, off), r2.Sub(b, off), r2.Sub(a, off)})
	}
	r.rasterize(quads, r.st.m.devicePaint(p), draw.Over)
}

func (r *Raster) FillText(text string, at r2.Vec, c Color) {
	dev := r.st.m.apply(at)
	r.labels = append(r.labels, Label{Text: text, At: dev, Color: c})
	if !r.glyphText {
		return
	}
	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c.NRGBA()),
		Face: r.face,
		Dot:  fixed.P(int(math.Round(dev.X)), int(math.Round(dev.Y))),
	}
	d.DrawString(text)
}

func (r *Raster) Save() {
	r.stack = append(r.stack, r.st)
}

func (r *Raster) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.st = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Raster) Translate(d r2.Vec) { r.st.m = r.st.m.translate(d) }

func (r *Raster) Rotate(theta float64) { r.st.m = r.st.m.rotate(theta) }

func (r *Raster) SetGlow(blur float64, c Color) {
	r.st.glowBlur = math.Max(blur, 0)
	r.st.glow = c
}

// fillPolygon fills one user-space polygon.
func (r *Raster) fillPolygon(pts []r2.Vec, p Paint, op draw.Op) {
	if len(pts) < 3 {
		return
	}
	dev := make([]r2.Vec, len(pts))
	for i, pt := range pts {
		dev[i] = r.st.m.apply(pt)
	}
	r.rasterize([][]r2.Vec{dev}, r.st.m.devicePaint(p), op)
}

// rasterize fills device-space subpaths with a device-space paint. Coverage is
// computed only over the clipped bounding box of the geometry.
func (r *Raster) rasterize(paths [][]r2.Vec, p Paint, op draw.Op) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, path := range paths {
		for _, pt := range path {
			if math.IsNaN(pt.X) || math.IsNaN(pt.Y) {
				return
			}
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
	}

	bounds := r.img.Bounds()
	box := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(bounds)
	if box.Empty() {
		return
	}

	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	w, h := float64(box.Dx()), float64(box.Dy())
	clampPt := func(pt r2.Vec) (float32, float32) {
		x := math.Min(math.Max(pt.X-ox, 0), w)
		y := math.Min(math.Max(pt.Y-oy, 0), h)
		return float32(x), float32(y)
	}

	r.z.Reset(box.Dx(), box.Dy())
	r.z.DrawOp = op
	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		r.z.MoveTo(clampPt(path[0]))
		for _, pt := range path[1:] {
			r.z.LineTo(clampPt(pt))
		}
		r.z.ClosePath()
	}
	r.z.Draw(r.img, box, newPaintImage(p), box.Min)
}
