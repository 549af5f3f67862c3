package cubism

import (
	"fmt"

	"github.com/phanxgames/cubism/gfx"
)

// RenderTarget is one device surface that can be drawn into and later
// sampled. BeginDraw remembers what was bound so EndDraw can restore it.
type RenderTarget struct {
	dev     gfx.Device
	surface gfx.Surface
	w, h    int
	restore gfx.Surface
	drawing bool
}

// NewRenderTarget allocates a w×h surface on dev.
func NewRenderTarget(dev gfx.Device, w, h int) (*RenderTarget, error) {
	rt := &RenderTarget{dev: dev}
	if err := rt.Recreate(w, h); err != nil {
		return nil, err
	}
	return rt, nil
}

// Recreate replaces the surface with a new w×h one.
func (rt *RenderTarget) Recreate(w, h int) error {
	rt.Release()
	s, err := rt.dev.NewSurface(w, h)
	if err != nil {
		return fmt.Errorf("cubism: render target %dx%d: %w", w, h, err)
	}
	rt.surface, rt.w, rt.h = s, w, h
	return nil
}

// BeginDraw binds the target. restore is bound again by EndDraw; nil means
// whatever is bound now.
func (rt *RenderTarget) BeginDraw(restore gfx.Surface) {
	if rt.surface == nil {
		return
	}
	if restore == nil {
		restore = rt.dev.Bound()
	}
	rt.restore = restore
	rt.dev.Bind(rt.surface)
	rt.drawing = true
}

// EndDraw binds the surface saved by BeginDraw.
func (rt *RenderTarget) EndDraw() {
	if !rt.drawing {
		return
	}
	rt.drawing = false
	rt.dev.Bind(rt.restore)
}

// Clear fills the bound surface. Call it between BeginDraw and EndDraw.
func (rt *RenderTarget) Clear(r, g, b, a float32) {
	rt.dev.Clear(gfx.Color{R: r, G: g, B: b, A: a})
}

// Surface returns the device surface, nil after Release.
func (rt *RenderTarget) Surface() gfx.Surface { return rt.surface }

// RestoreSurface returns the surface EndDraw binds.
func (rt *RenderTarget) RestoreSurface() gfx.Surface { return rt.restore }

// Size returns the surface dimensions.
func (rt *RenderTarget) Size() (int, int) { return rt.w, rt.h }

// IsValid reports whether the target owns a surface.
func (rt *RenderTarget) IsValid() bool { return rt != nil && rt.surface != nil }

// Release disposes the surface.
func (rt *RenderTarget) Release() {
	if rt.surface == nil {
		return
	}
	rt.dev.DisposeSurface(rt.surface)
	rt.surface = nil
	rt.w, rt.h = 0, 0
	rt.drawing = false
}

// CopyRenderTarget copies src into dst, recreating dst at src's size when
// they differ.
func CopyRenderTarget(dev gfx.Device, dst, src *RenderTarget) error {
	if !src.IsValid() {
		return nil
	}
	if dst.w != src.w || dst.h != src.h || dst.surface == nil {
		if err := dst.Recreate(src.w, src.h); err != nil {
			return err
		}
	}
	dev.CopySurface(dst.surface, src.surface)
	return nil
}
