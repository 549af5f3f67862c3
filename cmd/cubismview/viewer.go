package main

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/cubism"
	"github.com/phanxgames/cubism/gfx"
	"github.com/phanxgames/cubism/gfx/ebitengfx"
	"github.com/phanxgames/cubism/model"
)

var background = gfx.Color{R: 0.09, G: 0.09, B: 0.14, A: 1}

// viewer implements ebiten.Game.
type viewer struct {
	cfg      config
	dev      *ebitengfx.Device
	core     *model.StaticCore
	model    *model.Model
	renderer *cubism.Renderer
	anim     *animator
	frame    int
	done     bool
}

func newViewer(cfg config, imgs []image.Image) (*viewer, error) {
	dev := ebitengfx.New(cfg.width, cfg.height)
	core := newScene()
	m := model.New(core)

	r, err := cubism.NewRenderer(cubism.DeviceContext{
		Device:       dev,
		BufferSetNum: cfg.bufferSets,
	}, cubism.Options{
		MaskBufferSize:     cfg.maskSize,
		HighPrecisionMask:  cfg.highPrecision,
		PremultipliedAlpha: true,
		Debug:              cfg.debug,
	})
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}
	if err := r.Initialize(m, cfg.maskBuffers); err != nil {
		return nil, fmt.Errorf("initialize renderer: %w", err)
	}
	for i, img := range imgs {
		r.BindTexture(i, ebitengfx.NewTextureFromImage(img))
	}
	r.SetMVPMatrix(aspectMatrix(cfg.width, cfg.height))

	return &viewer{
		cfg:      cfg,
		dev:      dev,
		core:     core,
		model:    m,
		renderer: r,
		anim:     newAnimator(core),
	}, nil
}

// aspectMatrix keeps model units square on a w×h target.
func aspectMatrix(w, h int) mgl32.Mat4 {
	if w > h {
		return mgl32.Scale3D(float32(h)/float32(w), 1, 1)
	}
	return mgl32.Scale3D(1, float32(w)/float32(h), 1)
}

func (v *viewer) Update() error {
	if v.done {
		return ebiten.Termination
	}
	v.anim.Update(v.core, 1/float32(ebiten.TPS()))
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	v.dev.Bind(nil)
	v.dev.SetViewport(gfx.Viewport{Width: v.cfg.width, Height: v.cfg.height})
	v.dev.Clear(background)
	v.renderer.DrawModel()
	v.core.ResetDynamicFlags()
	v.dev.Present(screen)

	v.frame++
	if v.cfg.shotDir != "" && v.frame == v.cfg.shotFrame {
		if _, err := v.dev.Screenshot(v.cfg.shotDir, windowTitle); err != nil {
			cubism.Logger().Error("screenshot failed", "err", err)
		}
		v.done = true
	}
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return v.cfg.width, v.cfg.height
}

// Close releases the renderer's surfaces.
func (v *viewer) Close() {
	v.renderer.Release()
}
