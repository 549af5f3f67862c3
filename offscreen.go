package cubism

import "github.com/phanxgames/cubism/gfx"

// --- Render target pool ---

type pooledTarget struct {
	target *RenderTarget
	used   bool
}

// OffscreenManager pools render targets for offscreen groups. Targets are
// handed out per frame and returned with StopUsingRenderTexture; the
// highest number in use at once during the previous frame bounds how many
// survive ReleaseStaleRenderTextures.
type OffscreenManager struct {
	dev     gfx.Device
	entries []pooledTarget

	previousActiveMax int
	currentActive     int
	hasResetThisFrame bool
}

// NewOffscreenManager returns an empty pool on dev.
func NewOffscreenManager(dev gfx.Device) *OffscreenManager {
	return &OffscreenManager{dev: dev}
}

// BeginFrameProcess starts a new high-water mark. Repeated calls in the same
// frame are ignored.
func (m *OffscreenManager) BeginFrameProcess() {
	if m.hasResetThisFrame {
		return
	}
	m.previousActiveMax = 0
	m.hasResetThisFrame = true
}

// EndFrameProcess closes the frame opened by BeginFrameProcess.
func (m *OffscreenManager) EndFrameProcess() {
	m.hasResetThisFrame = false
}

// GetOffscreenRenderTarget returns an unused target of w×h, reusing a pooled
// one (resized if needed) before allocating. It returns nil when the
// surface cannot be allocated.
func (m *OffscreenManager) GetOffscreenRenderTarget(w, h int) *RenderTarget {
	m.currentActive++
	m.previousActiveMax = max(m.previousActiveMax, m.currentActive)

	for i := range m.entries {
		e := &m.entries[i]
		if e.used {
			continue
		}
		e.used = true
		if gw, gh := e.target.Size(); gw != w || gh != h || !e.target.IsValid() {
			if err := e.target.Recreate(w, h); err != nil {
				Logger().Error("cubism: offscreen target", "error", err)
			}
		}
		return e.target
	}

	rt, err := NewRenderTarget(m.dev, w, h)
	if err != nil {
		Logger().Error("cubism: offscreen target", "error", err)
		m.currentActive--
		return nil
	}
	m.entries = append(m.entries, pooledTarget{target: rt, used: true})
	return rt
}

// UsingRenderTextureState reports whether rt is pooled and in use.
func (m *OffscreenManager) UsingRenderTextureState(rt *RenderTarget) bool {
	for _, e := range m.entries {
		if e.target == rt {
			return e.used
		}
	}
	return false
}

// StopUsingRenderTexture returns rt to the pool.
func (m *OffscreenManager) StopUsingRenderTexture(rt *RenderTarget) {
	for i := range m.entries {
		e := &m.entries[i]
		if e.target != rt {
			continue
		}
		if e.used {
			e.used = false
			if m.currentActive > 0 {
				m.currentActive--
			}
		}
		return
	}
}

// StopUsingAllRenderTextures returns every target to the pool.
func (m *OffscreenManager) StopUsingAllRenderTextures() {
	for i := range m.entries {
		m.entries[i].used = false
	}
	m.currentActive = 0
}

// ReleaseStaleRenderTextures shrinks the pool to the previous frame's
// high-water mark. Targets still in use beyond the mark are moved into free
// entries below it; if none is free the pool keeps them. Nothing happens
// while a frame is open.
func (m *OffscreenManager) ReleaseStaleRenderTextures() {
	n := len(m.entries)
	if m.hasResetThisFrame || n == 0 {
		return
	}
	keep := m.previousActiveMax
	free := 0
	for i := n; i > m.previousActiveMax; i-- {
		idx := i - 1
		if m.entries[idx].used {
			moved := false
			for ; free < m.previousActiveMax; free++ {
				if !m.entries[free].used {
					m.entries[free], m.entries[idx] = m.entries[idx], m.entries[free]
					moved = true
					break
				}
			}
			if !moved {
				keep = i
				break
			}
		}
		m.entries[idx].target.Release()
	}
	clear(m.entries[keep:])
	m.entries = m.entries[:keep]
}

// ReleaseAllRenderTextures disposes every pooled target.
func (m *OffscreenManager) ReleaseAllRenderTextures() {
	for _, e := range m.entries {
		e.target.Release()
	}
	m.entries = nil
	m.previousActiveMax = 0
	m.currentActive = 0
}

// ContainerSize returns the number of pooled targets.
func (m *OffscreenManager) ContainerSize() int { return len(m.entries) }

// UsingCount returns the number of targets in use.
func (m *OffscreenManager) UsingCount() int { return m.currentActive }

// PreviousActiveCount returns the high-water mark of the current or last frame.
func (m *OffscreenManager) PreviousActiveCount() int { return m.previousActiveMax }

// --- Offscreen handles ---

// OffscreenRenderTarget is the renderer's per-offscreen state. Parent and
// Old are indices into the renderer's offscreen list or NoIndex.
type OffscreenRenderTarget struct {
	Index  int
	Parent int
	Old    int
	target *RenderTarget
}

// RenderTarget returns the pooled target acquired for this frame, or nil.
func (o *OffscreenRenderTarget) RenderTarget() *RenderTarget { return o.target }

// acquire takes a target from the pool.
func (o *OffscreenRenderTarget) acquire(m *OffscreenManager, w, h int) {
	o.target = m.GetOffscreenRenderTarget(w, h)
}

// release hands the target back to the pool.
func (o *OffscreenRenderTarget) release(m *OffscreenManager) {
	if o.target == nil {
		return
	}
	m.StopUsingRenderTexture(o.target)
	o.target = nil
}
