// Package trail keeps bounded histories of recent body positions.
package trail

import "gonum.org/v1/gonum/spatial/r2"

// DefaultCapacity is the number of samples kept per body.
const DefaultCapacity = 70

// Buffer is a fixed-capacity FIFO of positions. Once full, each Record
// overwrites the oldest sample.
type Buffer struct {
	points  []r2.Vec
	cap     int
	writeAt int
}

// New creates an empty buffer. Capacities below 1 fall back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		points: make([]r2.Vec, 0, capacity),
		cap:    capacity,
	}
}

// Record appends p, evicting the oldest sample when the buffer is full.
func (b *Buffer) Record(p r2.Vec) {
	if len(b.points) < b.cap {
		b.points = append(b.points, p)
		return
	}
	b.points[b.writeAt] = p
	b.writeAt = (b.writeAt + 1) % b.cap
}

// Points returns the samples oldest first. The slice is a copy.
func (b *Buffer) Points() []r2.Vec {
	if len(b.points) == 0 {
		return nil
	}

	// Not wrapped yet, already in insertion order
	if len(b.points) < b.cap {
		out := make([]r2.Vec, len(b.points))
		copy(out, b.points)
		return out
	}

	out := make([]r2.Vec, b.cap)
	for i := 0; i < b.cap; i++ {
		out[i] = b.points[(b.writeAt+i)%b.cap]
	}
	return out
}

// Len returns the number of stored samples.
func (b *Buffer) Len() int { return len(b.points) }

// Cap returns the configured capacity.
func (b *Buffer) Cap() int { return b.cap }

// Reset drops every sample.
func (b *Buffer) Reset() {
	b.points = b.points[:0]
	b.writeAt = 0
}

// Set holds one buffer per body, indexed like the body slice it shadows.
type Set struct {
	buffers  []*Buffer
	capacity int
}

// NewSet creates n empty buffers of the given capacity.
func NewSet(n, capacity int) *Set {
	s := &Set{capacity: capacity}
	s.Resize(n)
	return s
}

// Resize replaces all buffers with n empty ones.
func (s *Set) Resize(n int) {
	s.buffers = make([]*Buffer, n)
	for i := range s.buffers {
		s.buffers[i] = New(s.capacity)
	}
}

// Record appends p to buffer i. Out-of-range indices are ignored.
func (s *Set) Record(i int, p r2.Vec) {
	if i < 0 || i >= len(s.buffers) {
		return
	}
	s.buffers[i].Record(p)
}

// Get returns buffer i, or nil.
func (s *Set) Get(i int) *Buffer {
	if i < 0 || i >= len(s.buffers) {
		return nil
	}
	return s.buffers[i]
}

// Len returns the number of buffers.
func (s *Set) Len() int { return len(s.buffers) }

// Reset empties every buffer.
func (s *Set) Reset() {
	for _, b := range s.buffers {
		b.Reset()
	}
}
