// Package cubism renders Live2D Cubism models through a small graphics
// capability set, [gfx.Device].
//
// The renderer packs the clipping masks of every drawable and offscreen
// into shared mask atlases, draws the model in render order and composites
// offscreen groups into their parents, pooling the render targets they
// need. Backends live under gfx: [headless] rasterizes on the CPU and
// records every call, ebitengfx draws with Ebitengine and Kage shaders.
//
// # Quick start
//
// Wrap the model's core state with package model, create a renderer on a
// device and bind one texture per texture index:
//
//	dev := headless.New(512, 512)
//	r, err := cubism.NewRenderer(cubism.DeviceContext{Device: dev}, cubism.Options{})
//	if err != nil {
//		return err
//	}
//	if err := r.Initialize(model.New(core), 1); err != nil {
//		return err
//	}
//	r.BindTexture(0, tex)
//
// Then, every frame, bind the destination and draw:
//
//	dev.Bind(nil)
//	r.SetMVPMatrix(projection)
//	r.DrawModel()
//
// # Masks
//
// A [ClippingManager] groups drawables that share the same mask set into
// one [ClippingContext], assigns each group a channel and a rectangle of a
// mask buffer, and renders the masks once per frame before the model.
// With [Options].HighPrecisionMask each group instead gets the whole
// buffer, re-rendered right before the drawables it clips.
//
// # Offscreens
//
// Models authored with blend modes carry offscreens: parts whose subtree is
// drawn into a separate target and composited back with the part's blend
// mode and opacity. The renderer keeps at most one chain of offscreens open
// and flushes them as soon as the render order leaves their subtree.
// Targets come from an [OffscreenManager], shared between renderers through
// [DeviceContext].Offscreens when several models draw per frame.
//
// # Frames in flight
//
// [DeviceContext].BufferSetNum replicates vertex staging and mask buffers
// per frame. A [gfx.Fence] orders reuse of a slot against the GPU.
//
// # Logging
//
// Nothing is logged by default. Call [SetLogger] to receive warnings about
// clamped configuration and errors from surface allocation and shader
// compilation.
//
// [headless]: https://pkg.go.dev/github.com/phanxgames/cubism/gfx/headless
package cubism
