package cubism

import "math"

const (
	// ColorChannelCount is the number of mask groups a buffer holds without
	// subdividing (one per RGBA channel).
	ColorChannelCount = 4

	// ClippingMaskMaxCountOnDefault is the group limit with one mask buffer.
	ClippingMaskMaxCountOnDefault = 36

	// ClippingMaskMaxCountOnMultiRenderTexture is the group limit per
	// buffer when more than one mask buffer is used.
	ClippingMaskMaxCountOnMultiRenderTexture = 32

	// DefaultMaskBufferSize is the default mask buffer edge in pixels.
	DefaultMaskBufferSize = 256
)

// Layout is where one mask group lives in the mask atlas.
type Layout struct {
	// Bounds is the cell in 0..1 buffer space.
	Bounds Rect
	// Channel selects R, G, B or A.
	Channel int
	// Buffer selects the mask buffer.
	Buffer int
}

// LayoutCapacity returns the number of groups that fit in bufferCount buffers.
func LayoutCapacity(bufferCount int) int {
	if bufferCount <= 1 {
		return ClippingMaskMaxCountOnDefault
	}
	return ClippingMaskMaxCountOnMultiRenderTexture * bufferCount
}

// ComputeLayout assigns n mask groups to cells of bufferCount mask buffers.
//
// Slots are (buffer, channel) pairs in raster order. Groups are spread as
// evenly as possible over the slots, consecutive groups in consecutive
// slots, and each slot's unit square is tiled by its groups. ok is false
// when n exceeds LayoutCapacity; every group then gets the full rectangle
// of buffer 0 channel 0.
func ComputeLayout(n, bufferCount int) (layouts []Layout, ok bool) {
	bufferCount = max(bufferCount, 1)
	if n <= 0 {
		return nil, true
	}
	layouts = make([]Layout, n)
	if n > LayoutCapacity(bufferCount) {
		for i := range layouts {
			layouts[i] = Layout{Bounds: fullRect}
		}
		return layouts, false
	}

	slots := ColorChannelCount * bufferCount
	base, extra := n/slots, n%slots
	g := 0
	for s := 0; s < slots && g < n; s++ {
		k := base
		if s < extra {
			k++
		}
		for _, cell := range slotCells(k) {
			layouts[g] = Layout{Bounds: cell, Channel: s % ColorChannelCount, Buffer: s / ColorChannelCount}
			g++
		}
	}
	return layouts, true
}

// slotCells tiles the unit square with k cells: full rows of L square cells
// and a last row whose cells share the remaining width and height.
func slotCells(k int) []Rect {
	switch {
	case k <= 0:
		return nil
	case k == 1:
		return []Rect{fullRect}
	}
	l := int(math.Ceil(math.Sqrt(float64(k))))
	rows := (k + l - 1) / l
	side := 1 / float32(l)

	cells := make([]Rect, 0, k)
	for row := 0; row < rows-1; row++ {
		for col := 0; col < l; col++ {
			cells = append(cells, Rect{
				X:     float32(col) / float32(l),
				Y:     float32(row) / float32(l),
				Width: side, Height: side,
			})
		}
	}
	last := k - l*(rows-1)
	y := float32(rows-1) / float32(l)
	for col := 0; col < last; col++ {
		cells = append(cells, Rect{
			X:     float32(col) / float32(last),
			Y:     y,
			Width: 1 / float32(last), Height: 1 - y,
		})
	}
	return cells
}
