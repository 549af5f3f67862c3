package cubism

import "log/slog"

// FrameStats counts the work done by the last DrawModel.
type FrameStats struct {
	// MaskGroups is the number of mask groups in use.
	MaskGroups int
	// MaskDraws counts draws into mask buffers.
	MaskDraws int
	// Draws counts drawable, offscreen and model-target composites.
	Draws int
	// OffscreenOpens and OffscreenFlushes count offscreen begin/end pairs.
	OffscreenOpens   int
	OffscreenFlushes int
	// Copies counts render-target copies made for blend sources.
	Copies int
	// Skipped counts draws dropped for a missing texture or pipeline.
	Skipped int
}

// LogValue implements slog.LogValuer.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("mask_groups", s.MaskGroups),
		slog.Int("mask_draws", s.MaskDraws),
		slog.Int("draws", s.Draws),
		slog.Int("offscreen_opens", s.OffscreenOpens),
		slog.Int("offscreen_flushes", s.OffscreenFlushes),
		slog.Int("copies", s.Copies),
		slog.Int("skipped", s.Skipped),
	)
}

// Stats returns the counters of the last frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// debugLog writes the frame counters at debug level when Options.Debug is set.
func (r *Renderer) debugLog() {
	if !r.opts.Debug {
		return
	}
	Logger().Debug("cubism: frame",
		"stats", r.stats,
		"slot", r.CommandBufferCurrent(),
		"pool", r.pool.ContainerSize())
	r.debugCheckBalanced()
}

// debugCheckBalanced warns when a frame ended with offscreens still open
// or pooled targets still in use.
func (r *Renderer) debugCheckBalanced() {
	if r.stats.OffscreenOpens != r.stats.OffscreenFlushes {
		Logger().Warn("cubism: unbalanced offscreens",
			"opens", r.stats.OffscreenOpens, "flushes", r.stats.OffscreenFlushes)
	}
	if r.ownPool && r.pool.UsingCount() != 0 {
		Logger().Warn("cubism: offscreen targets still in use", "count", r.pool.UsingCount())
	}
}
