package cubism

import "github.com/phanxgames/cubism/gfx"

// DeviceContext is the per-device configuration shared by every renderer
// drawing on the same device. It is copied into the renderer and never
// changes afterwards.
type DeviceContext struct {
	Device gfx.Device

	// BufferSetNum is the number of frames in flight. Mask buffers and
	// vertex staging are replicated per frame. Values below 1 mean 1.
	BufferSetNum int

	// Fence orders reuse of a frame slot. Nil trusts the host.
	Fence gfx.Fence

	// Loader optionally supplies shader source overrides.
	Loader FileLoader

	// Offscreens shares one render-target pool between renderers. When nil
	// each renderer owns a pool and runs its frame bookkeeping itself; when
	// set the host calls BeginFrameProcess, EndFrameProcess and
	// ReleaseStaleRenderTextures around all models of a frame.
	Offscreens *OffscreenManager
}

// Options configures one renderer.
type Options struct {
	// MaskBufferSize and OffscreenMaskBufferSize are mask buffer edges in
	// pixels. Zero means DefaultMaskBufferSize.
	MaskBufferSize          int
	OffscreenMaskBufferSize int

	// RenderTargetWidth and RenderTargetHeight size the model render
	// targets and offscreens. Zero means the size of the surface bound
	// when the renderer is created.
	RenderTargetWidth  int
	RenderTargetHeight int

	HighPrecisionMask  bool
	PremultipliedAlpha bool

	// Debug logs per-frame statistics at debug level.
	Debug bool
}
