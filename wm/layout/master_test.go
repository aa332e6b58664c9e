package layout

import (
	"testing"

	"yulacomp.dev/display/internal/geom"
)

func TestApplyMasterStackSplitsLeftRight(t *testing.T) {
	screen := geom.Rect{X: 0, Y: 0, W: 1000, H: 1000}
	gaps := Gaps{Outer: 10, Inner: 10}
	master := Slot{ClientID: 1, SurfaceID: 1}
	rects := Apply([]int{0, 1, 2}, master, 0, screen, gaps)

	if len(rects) != 3 {
		t.Fatalf("Apply returned %d rects, want 3", len(rects))
	}
	m := rects[0]
	wantMasterW := (screen.W - 2*gaps.Outer - gaps.Inner) / 2
	if m.X != gaps.Outer || m.W != wantMasterW {
		t.Fatalf("master rect = %v, want X=%d W=%d", m, gaps.Outer, wantMasterW)
	}
	for _, idx := range []int{1, 2} {
		r := rects[idx]
		if r.X <= m.X+m.W {
			t.Fatalf("stack rect %v overlaps master %v", r, m)
		}
	}
	// Stack entries stack vertically and don't overlap each other.
	if rects[1].Y+rects[1].H > rects[2].Y {
		t.Fatalf("stack rects overlap: %v, %v", rects[1], rects[2])
	}
}

func TestApplyNoMasterSplitsEvenColumns(t *testing.T) {
	screen := geom.Rect{X: 0, Y: 0, W: 900, H: 300}
	rects := Apply([]int{0, 1, 2}, Slot{}, -1, screen, Gaps{})
	if len(rects) != 3 {
		t.Fatalf("Apply returned %d rects, want 3", len(rects))
	}
	for _, idx := range []int{0, 1, 2} {
		if rects[idx].H != screen.H {
			t.Fatalf("column %d height = %d, want %d", idx, rects[idx].H, screen.H)
		}
	}
	total := rects[0].W + rects[1].W + rects[2].W
	if total != screen.W {
		t.Fatalf("column widths sum to %d, want %d", total, screen.W)
	}
}

func TestApplySoleMasterFillsInner(t *testing.T) {
	screen := geom.Rect{X: 0, Y: 0, W: 500, H: 400}
	gaps := Gaps{Outer: 5, Inner: 5}
	rects := Apply([]int{0}, Slot{ClientID: 1, SurfaceID: 1}, 0, screen, gaps)
	want := geom.Rect{X: 5, Y: 5, W: 490, H: 390}
	if rects[0] != want {
		t.Fatalf("sole-master rect = %v, want %v", rects[0], want)
	}
}

func TestApplyEmptyLeavesReturnsNothing(t *testing.T) {
	rects := Apply(nil, Slot{}, -1, geom.Rect{W: 100, H: 100}, Gaps{})
	if len(rects) != 0 {
		t.Fatalf("Apply(nil) = %v, want empty", rects)
	}
}

func TestSlotMatchesAndEmpty(t *testing.T) {
	var s Slot
	if !s.Empty() {
		t.Fatalf("zero-value Slot should be Empty")
	}
	s = Slot{ClientID: 3, SurfaceID: 4}
	if s.Empty() {
		t.Fatalf("populated Slot should not be Empty")
	}
	if !s.Matches(3, 4) {
		t.Fatalf("Matches(3, 4) = false, want true")
	}
	if s.Matches(3, 5) {
		t.Fatalf("Matches(3, 5) = true, want false")
	}
}
