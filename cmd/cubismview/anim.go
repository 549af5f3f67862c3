package main

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/cubism"
	"github.com/phanxgames/cubism/model"
)

// pingPong runs a tween back and forth forever.
type pingPong struct {
	tween    *gween.Tween
	from, to float32
	duration float32
	fn       ease.TweenFunc
	value    float32
}

func newPingPong(from, to, duration float32, fn ease.TweenFunc) *pingPong {
	return &pingPong{
		tween:    gween.New(from, to, duration, fn),
		from:     from,
		to:       to,
		duration: duration,
		fn:       fn,
		value:    from,
	}
}

// Update advances the tween by dt seconds and returns the current value.
// Time past the end of a leg is dropped.
func (p *pingPong) Update(dt float32) float32 {
	val, finished := p.tween.Update(dt)
	p.value = val
	if finished {
		p.from, p.to = p.to, p.from
		p.tween = gween.New(p.from, p.to, p.duration, p.fn)
	}
	return p.value
}

// animator drives the synthetic model: the group fades, the eye sways
// under its mask and the mask breathes.
type animator struct {
	fade   *pingPong
	sway   *pingPong
	breath *pingPong

	eyeRest  []float32
	maskRest []float32
}

func newAnimator(c *model.StaticCore) *animator {
	return &animator{
		fade:     newPingPong(1, 0.35, 2.5, ease.InOutSine),
		sway:     newPingPong(-0.25, 0.25, 1.6, ease.InOutQuad),
		breath:   newPingPong(0.85, 1.1, 1.2, ease.InOutSine),
		eyeRest:  append([]float32(nil), c.Drawables[drawEye].Positions...),
		maskRest: append([]float32(nil), c.Drawables[drawEyeMask].Positions...),
	}
}

// Update advances every tween and writes the result into c, raising the
// dynamic flags the renderer reads.
func (a *animator) Update(c *model.StaticCore, dt float32) {
	c.Offscreens[offscreenGroup].Opacity = a.fade.Update(dt)

	dx := a.sway.Update(dt)
	eye := c.Drawables[drawEye].Positions
	for i := 0; i+1 < len(eye); i += 2 {
		eye[i] = a.eyeRest[i] + dx
	}

	s := a.breath.Update(dt)
	scaleAboutCenter(c.Drawables[drawEyeMask].Positions, a.maskRest, s)

	for i := range c.Drawables {
		c.Drawables[i].Dynamic |= cubism.FlagVertexPositionsDidChange
	}
}

// scaleAboutCenter writes rest scaled by s about its bounding-box center
// into dst.
func scaleAboutCenter(dst, rest []float32, s float32) {
	if len(rest) < 2 {
		return
	}
	minX, minY, maxX, maxY := rest[0], rest[1], rest[0], rest[1]
	for i := 2; i+1 < len(rest); i += 2 {
		minX, maxX = min(minX, rest[i]), max(maxX, rest[i])
		minY, maxY = min(minY, rest[i+1]), max(maxY, rest[i+1])
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	for i := 0; i+1 < len(rest); i += 2 {
		dst[i] = cx + (rest[i]-cx)*s
		dst[i+1] = cy + (rest[i+1]-cy)*s
	}
}
