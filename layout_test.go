package cubism

import (
	"math"
	"reflect"
	"testing"
)

// --- Channel assignment ---

func TestComputeLayoutFourGroupsUseDistinctChannels(t *testing.T) {
	for _, buffers := range []int{1, 2} {
		layouts, ok := ComputeLayout(4, buffers)
		if !ok {
			t.Fatalf("buffers=%d: ok = false", buffers)
		}
		for i, l := range layouts {
			if l.Buffer != 0 {
				t.Errorf("buffers=%d group %d: buffer = %d, want 0", buffers, i, l.Buffer)
			}
			if l.Channel != i {
				t.Errorf("buffers=%d group %d: channel = %d, want %d", buffers, i, l.Channel, i)
			}
			if l.Bounds != fullRect {
				t.Errorf("buffers=%d group %d: bounds = %+v, want full", buffers, i, l.Bounds)
			}
		}
	}
}

func TestComputeLayoutFifthGroupWrapsToNextBuffer(t *testing.T) {
	layouts, ok := ComputeLayout(5, 2)
	if !ok {
		t.Fatal("ok = false")
	}
	if got := layouts[4]; got.Buffer != 1 || got.Channel != 0 {
		t.Errorf("group 5 = buffer %d channel %d, want buffer 1 channel 0", got.Buffer, got.Channel)
	}
	if layouts[4].Bounds != fullRect {
		t.Errorf("group 5 bounds = %+v, want full", layouts[4].Bounds)
	}
}

func TestComputeLayoutFifthGroupSingleBufferSplitsChannelZero(t *testing.T) {
	layouts, _ := ComputeLayout(5, 1)
	wantChannels := []int{0, 0, 1, 2, 3}
	for i, l := range layouts {
		if l.Channel != wantChannels[i] || l.Buffer != 0 {
			t.Errorf("group %d = buffer %d channel %d, want buffer 0 channel %d",
				i, l.Buffer, l.Channel, wantChannels[i])
		}
	}
	if layouts[0].Bounds.Width != 0.5 || layouts[1].Bounds.X != 0.5 {
		t.Errorf("channel 0 cells = %+v %+v, want left and right halves", layouts[0].Bounds, layouts[1].Bounds)
	}
}

// --- Tiling ---

func TestComputeLayoutTilesEverySlot(t *testing.T) {
	for _, buffers := range []int{1, 2, 3} {
		for n := 1; n <= LayoutCapacity(buffers); n++ {
			layouts, ok := ComputeLayout(n, buffers)
			if !ok {
				t.Fatalf("n=%d buffers=%d: ok = false", n, buffers)
			}
			if len(layouts) != n {
				t.Fatalf("n=%d buffers=%d: %d layouts", n, buffers, len(layouts))
			}
			type slot struct{ buffer, channel int }
			bySlot := map[slot][]Rect{}
			for _, l := range layouts {
				s := slot{l.Buffer, l.Channel}
				bySlot[s] = append(bySlot[s], l.Bounds)
			}
			for s, cells := range bySlot {
				var area float64
				for i, a := range cells {
					if a.X < 0 || a.Y < 0 || a.Right() > 1+1e-6 || a.Bottom() > 1+1e-6 {
						t.Errorf("n=%d buffers=%d slot %v: cell %+v outside unit square", n, buffers, s, a)
					}
					area += float64(a.Width) * float64(a.Height)
					for _, b := range cells[i+1:] {
						if overlapsBeyond(a, b, 1e-6) {
							t.Errorf("n=%d buffers=%d slot %v: %+v overlaps %+v", n, buffers, s, a, b)
						}
					}
				}
				if math.Abs(area-1) > 1e-5 {
					t.Errorf("n=%d buffers=%d slot %v: area %v, want 1", n, buffers, s, area)
				}
			}
		}
	}
}

func overlapsBeyond(a, b Rect, eps float32) bool {
	return a.X < b.Right()-eps && b.X < a.Right()-eps && a.Y < b.Bottom()-eps && b.Y < a.Bottom()-eps
}

func TestSlotCellsRows(t *testing.T) {
	const third = float32(1.0 / 3)
	tests := []struct {
		k        int
		first    Rect
		lastRow  int
		lastSpan float32
	}{
		{2, Rect{Width: 0.5, Height: 1}, 2, 0.5},
		{3, Rect{Width: 0.5, Height: 0.5}, 1, 1},
		{4, Rect{Width: 0.5, Height: 0.5}, 2, 0.5},
		{5, Rect{Width: third, Height: third}, 2, 0.5},
		{7, Rect{Width: third, Height: third}, 1, 1},
		{8, Rect{Width: third, Height: third}, 2, 0.5},
		{9, Rect{Width: third, Height: third}, 3, third},
	}
	for _, tt := range tests {
		cells := slotCells(tt.k)
		if len(cells) != tt.k {
			t.Fatalf("k=%d: %d cells", tt.k, len(cells))
		}
		if cells[0] != tt.first {
			t.Errorf("k=%d: first cell %+v, want %+v", tt.k, cells[0], tt.first)
		}
		last := cells[len(cells)-1]
		if last.Width != tt.lastSpan {
			t.Errorf("k=%d: last cell width %v, want %v", tt.k, last.Width, tt.lastSpan)
		}
		if math.Abs(float64(last.Bottom())-1) > 1e-6 {
			t.Errorf("k=%d: last row ends at %v, want 1", tt.k, last.Bottom())
		}
		n := 0
		for _, c := range cells {
			if c.Y == last.Y {
				n++
			}
		}
		if n != tt.lastRow {
			t.Errorf("k=%d: last row has %d cells, want %d", tt.k, n, tt.lastRow)
		}
	}
}

// --- Determinism and overflow ---

func TestComputeLayoutDeterministic(t *testing.T) {
	for n := 1; n <= 64; n++ {
		a, _ := ComputeLayout(n, 2)
		b, _ := ComputeLayout(n, 2)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("n=%d: layouts differ between calls", n)
		}
	}
}

func TestComputeLayoutOverflow(t *testing.T) {
	tests := []struct {
		n, buffers int
		ok         bool
	}{
		{36, 1, true},
		{37, 1, false},
		{64, 2, true},
		{65, 2, false},
		{0, 1, true},
	}
	for _, tt := range tests {
		layouts, ok := ComputeLayout(tt.n, tt.buffers)
		if ok != tt.ok {
			t.Errorf("ComputeLayout(%d, %d) ok = %v, want %v", tt.n, tt.buffers, ok, tt.ok)
		}
		if ok {
			continue
		}
		for i, l := range layouts {
			if l != (Layout{Bounds: fullRect}) {
				t.Errorf("overflow group %d = %+v, want full rect on buffer 0 channel 0", i, l)
			}
		}
	}
}

func TestLayoutCapacity(t *testing.T) {
	if got := LayoutCapacity(1); got != 36 {
		t.Errorf("LayoutCapacity(1) = %d, want 36", got)
	}
	if got := LayoutCapacity(3); got != 96 {
		t.Errorf("LayoutCapacity(3) = %d, want 96", got)
	}
}

func BenchmarkComputeLayout(b *testing.B) {
	for b.Loop() {
		ComputeLayout(30, 1)
	}
}
