// Package headless is a software implementation of gfx.Device. It keeps a
// log of every device call and rasterizes draws on the CPU with the same
// shader semantics as the GPU backends, so renderer behavior can be checked
// pixel by pixel without a window or a GPU.
package headless

import (
	"errors"
	"fmt"

	"github.com/phanxgames/cubism/gfx"
)

// ErrSurfaceSize is returned by NewSurface for non-positive dimensions.
var ErrSurfaceSize = errors.New("headless: surface size must be positive")

// EventKind identifies a recorded device call.
type EventKind uint8

const (
	EventNewSurface EventKind = iota
	EventDisposeSurface
	EventBind
	EventViewport
	EventClear
	EventBarrier
	EventCopy
	EventCompile
	EventDraw
)

var eventNames = [...]string{
	"new-surface", "dispose-surface", "bind", "viewport", "clear",
	"barrier", "copy", "compile", "draw",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", k)
}

// Event is one recorded device call. Target is the surface bound when the
// call was made (or the surface created, disposed or bound).
type Event struct {
	Kind     EventKind
	Target   *Image
	Source   *Image
	Color    gfx.Color
	Viewport gfx.Viewport
	Pipeline gfx.PipelineDesc
	Call     gfx.DrawCall
}

// Device is a recording software device. The zero value is not usable;
// create one with New.
type Device struct {
	// Barrier makes TextureBarrier report true.
	BarrierSupported bool
	// SkipRaster records draws without rasterizing them.
	SkipRaster bool
	// FailCompile, when set, is consulted before compiling a pipeline.
	FailCompile func(gfx.PipelineDesc) error
	// FailSurfaces makes NewSurface return an error.
	FailSurfaces bool

	root     *Image
	bound    *Image
	viewport gfx.Viewport
	nextID   int
	events   []Event
	aniso    map[gfx.Texture]float32
}

// New returns a device whose default target is a transparent w×h image.
func New(w, h int) *Device {
	d := &Device{nextID: 1}
	d.root = NewImage(w, h)
	d.root.id = d.nextID
	d.nextID++
	d.bound = d.root
	d.viewport = gfx.Viewport{Width: w, Height: h}
	return d
}

// Root returns the default target.
func (d *Device) Root() *Image { return d.root }

// Events returns the recorded calls in order.
func (d *Device) Events() []Event { return d.events }

// ResetEvents clears the log.
func (d *Device) ResetEvents() { d.events = d.events[:0] }

// Draws returns the recorded draw events.
func (d *Device) Draws() []Event {
	var out []Event
	for _, e := range d.events {
		if e.Kind == EventDraw {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of recorded events of kind k.
func (d *Device) Count(k EventKind) int {
	n := 0
	for _, e := range d.events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Anisotropy returns the level last set for t.
func (d *Device) Anisotropy(t gfx.Texture) float32 { return d.aniso[t] }

func (d *Device) record(e Event) {
	d.events = append(d.events, e)
}

// NewSurface allocates a transparent surface.
func (d *Device) NewSurface(w, h int) (gfx.Surface, error) {
	if d.FailSurfaces {
		return nil, fmt.Errorf("headless: allocate %dx%d: %w", w, h, errors.ErrUnsupported)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("headless: allocate %dx%d: %w", w, h, ErrSurfaceSize)
	}
	img := NewImage(w, h)
	img.id = d.nextID
	d.nextID++
	d.record(Event{Kind: EventNewSurface, Target: img})
	return img, nil
}

// DisposeSurface marks s released. Disposing the root is ignored.
func (d *Device) DisposeSurface(s gfx.Surface) {
	img, ok := s.(*Image)
	if !ok || img == nil || img == d.root {
		return
	}
	img.disposed = true
	d.record(Event{Kind: EventDisposeSurface, Target: img})
}

// Bind makes s the draw target; nil binds the root.
func (d *Device) Bind(s gfx.Surface) {
	img, ok := s.(*Image)
	if !ok || img == nil {
		img = d.root
	}
	d.bound = img
	d.record(Event{Kind: EventBind, Target: img})
}

// Bound returns the current draw target.
func (d *Device) Bound() gfx.Surface { return d.bound }

// Viewport returns the current viewport.
func (d *Device) Viewport() gfx.Viewport { return d.viewport }

// SetViewport sets the NDC-to-pixel mapping for subsequent draws.
func (d *Device) SetViewport(v gfx.Viewport) {
	d.viewport = v
	d.record(Event{Kind: EventViewport, Target: d.bound, Viewport: v})
}

// Clear fills the bound surface.
func (d *Device) Clear(c gfx.Color) {
	d.bound.Fill(c)
	d.record(Event{Kind: EventClear, Target: d.bound, Color: c})
}

// TextureBarrier reports BarrierSupported.
func (d *Device) TextureBarrier() bool { return d.BarrierSupported }

// Barrier records a texture barrier.
func (d *Device) Barrier() {
	d.record(Event{Kind: EventBarrier, Target: d.bound})
}

// CopySurface copies the overlapping region of src into dst.
func (d *Device) CopySurface(dst, src gfx.Surface) {
	di, ok1 := dst.(*Image)
	si, ok2 := src.(*Image)
	if !ok1 || !ok2 || di == nil || si == nil {
		return
	}
	w, h := min(di.w, si.w), min(di.h, si.h)
	for y := 0; y < h; y++ {
		copy(di.pix[4*y*di.w:4*(y*di.w+w)], si.pix[4*y*si.w:4*(y*si.w+w)])
	}
	d.record(Event{Kind: EventCopy, Target: di, Source: si})
}

type pipeline struct {
	desc gfx.PipelineDesc
}

func (p *pipeline) Desc() gfx.PipelineDesc { return p.desc }

// CompilePipeline returns a pipeline for desc.
func (d *Device) CompilePipeline(desc gfx.PipelineDesc) (gfx.Pipeline, error) {
	if d.FailCompile != nil {
		if err := d.FailCompile(desc); err != nil {
			return nil, fmt.Errorf("headless: compile %s: %w", desc.Name, err)
		}
	}
	d.record(Event{Kind: EventCompile, Pipeline: desc})
	return &pipeline{desc: desc}, nil
}

// SetAnisotropy records the filtering level for t.
func (d *Device) SetAnisotropy(t gfx.Texture, level float32) {
	if d.aniso == nil {
		d.aniso = make(map[gfx.Texture]float32)
	}
	d.aniso[t] = level
}

// Draw records call and rasterizes it into the bound surface.
func (d *Device) Draw(call *gfx.DrawCall) {
	e := Event{Kind: EventDraw, Target: d.bound, Call: *call}
	if call.Pipeline != nil {
		e.Pipeline = call.Pipeline.Desc()
	}
	d.record(e)
	if d.SkipRaster || call.Pipeline == nil {
		return
	}
	d.raster(call)
}
