package cubism

import (
	"testing"

	"github.com/phanxgames/cubism/gfx"
	"github.com/phanxgames/cubism/gfx/headless"
)

// --- RenderTarget ---

func TestRenderTargetBeginEndRestores(t *testing.T) {
	dev := headless.New(8, 8)
	rt, err := NewRenderTarget(dev, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	rt.BeginDraw(nil)
	if dev.Bound() != rt.Surface() {
		t.Fatal("BeginDraw did not bind the target")
	}
	rt.Clear(1, 0, 0, 1)
	rt.EndDraw()
	if dev.Bound() != gfx.Surface(dev.Root()) {
		t.Error("EndDraw did not restore the root")
	}
	img := rt.Surface().(*headless.Image)
	if got := img.At(1, 1); got != (gfx.Color{R: 1, A: 1}) {
		t.Errorf("pixel = %+v, want red", got)
	}

	// A second EndDraw is a no-op.
	dev.ResetEvents()
	rt.EndDraw()
	if dev.Count(headless.EventBind) != 0 {
		t.Error("unbalanced EndDraw rebound a surface")
	}
}

func TestRenderTargetRecreateAndRelease(t *testing.T) {
	dev := headless.New(8, 8)
	rt, _ := NewRenderTarget(dev, 4, 4)
	old := rt.Surface().(*headless.Image)
	if err := rt.Recreate(6, 2); err != nil {
		t.Fatal(err)
	}
	if w, h := rt.Size(); w != 6 || h != 2 {
		t.Errorf("size = %dx%d, want 6x2", w, h)
	}
	if !old.Disposed() {
		t.Error("old surface not disposed")
	}
	rt.Release()
	if rt.IsValid() {
		t.Error("IsValid after Release")
	}
	rt.Release()

	var nilRT *RenderTarget
	if nilRT.IsValid() {
		t.Error("nil target reported valid")
	}
}

func TestNewRenderTargetError(t *testing.T) {
	dev := headless.New(8, 8)
	if _, err := NewRenderTarget(dev, 0, 4); err == nil {
		t.Error("zero width should fail")
	}
	dev.FailSurfaces = true
	if _, err := NewRenderTarget(dev, 4, 4); err == nil {
		t.Error("device failure should surface")
	}
}

func TestCopyRenderTargetResizesDestination(t *testing.T) {
	dev := headless.New(8, 8)
	src, _ := NewRenderTarget(dev, 4, 4)
	src.BeginDraw(nil)
	src.Clear(0, 1, 0, 1)
	src.EndDraw()
	dst, _ := NewRenderTarget(dev, 2, 2)

	if err := CopyRenderTarget(dev, dst, src); err != nil {
		t.Fatal(err)
	}
	if w, h := dst.Size(); w != 4 || h != 4 {
		t.Errorf("dst size = %dx%d, want 4x4", w, h)
	}
	if got := dst.Surface().(*headless.Image).At(3, 3); got != (gfx.Color{G: 1, A: 1}) {
		t.Errorf("copied pixel = %+v", got)
	}
}

// --- OffscreenManager ---

func TestOffscreenManagerReusesFreeTargets(t *testing.T) {
	dev := headless.New(8, 8)
	m := NewOffscreenManager(dev)
	a := m.GetOffscreenRenderTarget(8, 8)
	b := m.GetOffscreenRenderTarget(8, 8)
	if a == b {
		t.Fatal("two in-use requests returned the same target")
	}
	if m.UsingCount() != 2 || m.ContainerSize() != 2 {
		t.Errorf("using=%d size=%d, want 2/2", m.UsingCount(), m.ContainerSize())
	}
	m.StopUsingRenderTexture(a)
	if m.UsingRenderTextureState(a) {
		t.Error("a still marked in use")
	}
	if got := m.GetOffscreenRenderTarget(8, 8); got != a {
		t.Error("free target not reused")
	}
	if m.ContainerSize() != 2 {
		t.Errorf("size = %d, want 2", m.ContainerSize())
	}
}

func TestOffscreenManagerResizesReusedTarget(t *testing.T) {
	dev := headless.New(8, 8)
	m := NewOffscreenManager(dev)
	a := m.GetOffscreenRenderTarget(8, 8)
	m.StopUsingRenderTexture(a)
	if got := m.GetOffscreenRenderTarget(16, 4); got != a {
		t.Fatal("target not reused")
	}
	if w, h := a.Size(); w != 16 || h != 4 {
		t.Errorf("size = %dx%d, want 16x4", w, h)
	}
}

func TestOffscreenManagerStopUsingIsIdempotent(t *testing.T) {
	m := NewOffscreenManager(headless.New(8, 8))
	a := m.GetOffscreenRenderTarget(8, 8)
	m.StopUsingRenderTexture(a)
	m.StopUsingRenderTexture(a)
	m.StopUsingRenderTexture(&RenderTarget{})
	if m.UsingCount() != 0 {
		t.Errorf("using = %d, want 0", m.UsingCount())
	}
}

func TestOffscreenManagerHighWaterMark(t *testing.T) {
	m := NewOffscreenManager(headless.New(8, 8))

	m.BeginFrameProcess()
	var held []*RenderTarget
	for range 3 {
		held = append(held, m.GetOffscreenRenderTarget(8, 8))
	}
	m.StopUsingAllRenderTextures()
	m.EndFrameProcess()
	if m.PreviousActiveCount() != 3 {
		t.Fatalf("high-water = %d, want 3", m.PreviousActiveCount())
	}

	// A lighter frame shrinks the pool to what it used.
	m.BeginFrameProcess()
	m.BeginFrameProcess() // ignored
	x := m.GetOffscreenRenderTarget(8, 8)
	m.StopUsingRenderTexture(x)
	m.ReleaseStaleRenderTextures() // frame still open
	if m.ContainerSize() != 3 {
		t.Fatalf("size = %d during frame, want 3", m.ContainerSize())
	}
	m.EndFrameProcess()
	m.ReleaseStaleRenderTextures()
	if m.ContainerSize() != 1 {
		t.Errorf("size = %d, want 1", m.ContainerSize())
	}
	if held[1].IsValid() || held[2].IsValid() {
		t.Error("stale targets not released")
	}
}

func TestOffscreenManagerReleaseStaleMovesUsedTarget(t *testing.T) {
	m := NewOffscreenManager(headless.New(8, 8))
	m.BeginFrameProcess()
	a := m.GetOffscreenRenderTarget(8, 8)
	b := m.GetOffscreenRenderTarget(8, 8)
	m.EndFrameProcess()

	// Next frame uses one target at a time, but b is the one still held.
	m.StopUsingRenderTexture(a)
	m.StopUsingRenderTexture(b)
	m.BeginFrameProcess()
	got := m.GetOffscreenRenderTarget(8, 8)
	m.EndFrameProcess()
	if got != a {
		t.Fatal("expected the first free entry")
	}
	m.StopUsingRenderTexture(a)
	m.entries[1].used = true // simulate b held past the frame
	m.currentActive = 1

	m.ReleaseStaleRenderTextures()
	if m.ContainerSize() != 1 {
		t.Fatalf("size = %d, want 1", m.ContainerSize())
	}
	if m.entries[0].target != b || !m.entries[0].used {
		t.Error("held target should move into the kept slot")
	}
	if a.IsValid() {
		t.Error("the free target should be released")
	}
}

func TestOffscreenManagerReleaseStaleKeepsWhenNoFreeSlot(t *testing.T) {
	m := NewOffscreenManager(headless.New(8, 8))
	m.BeginFrameProcess()
	a := m.GetOffscreenRenderTarget(8, 8)
	m.StopUsingRenderTexture(a)
	m.EndFrameProcess()

	// Outside a frame: two targets in use while the mark says one.
	b := m.GetOffscreenRenderTarget(8, 8)
	c := m.GetOffscreenRenderTarget(8, 8)
	m.previousActiveMax = 1

	m.ReleaseStaleRenderTextures()
	if m.ContainerSize() != 2 {
		t.Errorf("size = %d, want 2", m.ContainerSize())
	}
	if !b.IsValid() || !c.IsValid() {
		t.Error("targets in use were released")
	}
}

func TestOffscreenManagerReleaseAll(t *testing.T) {
	m := NewOffscreenManager(headless.New(8, 8))
	a := m.GetOffscreenRenderTarget(8, 8)
	m.ReleaseAllRenderTextures()
	if m.ContainerSize() != 0 || m.UsingCount() != 0 || a.IsValid() {
		t.Error("ReleaseAll left state behind")
	}
}

func TestOffscreenManagerAllocationFailure(t *testing.T) {
	dev := headless.New(8, 8)
	dev.FailSurfaces = true
	m := NewOffscreenManager(dev)
	if m.GetOffscreenRenderTarget(8, 8) != nil {
		t.Error("want nil on allocation failure")
	}
	if m.UsingCount() != 0 {
		t.Errorf("using = %d, want 0", m.UsingCount())
	}
}

func BenchmarkOffscreenAcquireRelease(b *testing.B) {
	m := NewOffscreenManager(headless.New(8, 8))
	for b.Loop() {
		rt := m.GetOffscreenRenderTarget(8, 8)
		m.StopUsingRenderTexture(rt)
	}
}
