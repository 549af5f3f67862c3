package cubism

import "github.com/phanxgames/cubism/gfx"

// frameSlot holds the CPU-side vertex data handed to the device while the
// slot is current.
type frameSlot struct {
	positions [][]float32
	uvs       [][]float32
}

// FrameRing cycles through bufferSetNum slots of per-drawable staging
// buffers. A slot is written only after the fence reports the GPU is done
// with it.
type FrameRing struct {
	slots   []frameSlot
	current int
	fence   gfx.Fence
	waited  bool
}

// NewFrameRing returns a ring of n slots (at least one) for drawables
// drawables. A nil fence is treated as gfx.NopFence.
func NewFrameRing(n, drawables int, fence gfx.Fence) *FrameRing {
	if fence == nil {
		fence = gfx.NopFence{}
	}
	r := &FrameRing{slots: make([]frameSlot, max(n, 1)), fence: fence}
	for i := range r.slots {
		r.slots[i] = frameSlot{
			positions: make([][]float32, drawables),
			uvs:       make([][]float32, drawables),
		}
	}
	return r
}

// Len returns the number of slots.
func (r *FrameRing) Len() int { return len(r.slots) }

// Current returns the slot being written this frame.
func (r *FrameRing) Current() int { return r.current }

// Acquire waits until the current slot may be written. Later calls in the
// same frame return immediately.
func (r *FrameRing) Acquire() {
	if r.waited {
		return
	}
	r.fence.Wait(r.current)
	r.waited = true
}

// Stage copies the positions and UVs of drawable i into the current slot
// and returns the copies.
func (r *FrameRing) Stage(i int, positions, uvs []float32) ([]float32, []float32) {
	s := &r.slots[r.current]
	if i < 0 || i >= len(s.positions) {
		return positions, uvs
	}
	r.Acquire()
	s.positions[i] = append(s.positions[i][:0], positions...)
	s.uvs[i] = append(s.uvs[i][:0], uvs...)
	return s.positions[i], s.uvs[i]
}

// Advance signals the current slot and moves to the next one.
func (r *FrameRing) Advance() {
	r.fence.Signal(r.current)
	r.waited = false
	r.current++
	if len(r.slots) <= r.current {
		r.current = 0
	}
}
