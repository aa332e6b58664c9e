package composite

import (
	"testing"

	"yulacomp.dev/display/internal/geom"
)

func TestAddCoalescesOverlapping(t *testing.T) {
	d := NewDamage(geom.Rect{X: 0, Y: 0, W: 1000, H: 1000})
	d.Add(geom.Rect{X: 0, Y: 0, W: 10, H: 10})
	d.Add(geom.Rect{X: 5, Y: 5, W: 10, H: 10})
	if len(d.Rects()) != 1 {
		t.Fatalf("Rects() = %v, want a single coalesced rect", d.Rects())
	}
	want := geom.Rect{X: 0, Y: 0, W: 15, H: 15}
	if d.Rects()[0] != want {
		t.Fatalf("Rects()[0] = %v, want %v", d.Rects()[0], want)
	}
}

func TestAddClipsToScreen(t *testing.T) {
	d := NewDamage(geom.Rect{X: 0, Y: 0, W: 100, H: 100})
	d.Add(geom.Rect{X: 90, Y: 90, W: 50, H: 50})
	want := geom.Rect{X: 90, Y: 90, W: 10, H: 10}
	if len(d.Rects()) != 1 || d.Rects()[0] != want {
		t.Fatalf("Rects() = %v, want [%v]", d.Rects(), want)
	}
}

func TestAddCollapsesWhenSaturated(t *testing.T) {
	screen := geom.Rect{X: 0, Y: 0, W: 1000, H: 1000}
	d := NewDamage(screen)
	for i := 0; i < MaxDamageRects+5; i++ {
		d.Add(geom.Rect{X: i * 20, Y: 0, W: 1, H: 1})
	}
	if len(d.Rects()) != 1 || d.Rects()[0] != screen {
		t.Fatalf("expected collapse to full screen, got %v", d.Rects())
	}
}

func TestDamageCompletenessForSurfaceMove(t *testing.T) {
	// spec.md §8.4: if frame N and N+1 differ at some pixel, at least one
	// damage rect in frame N+1 must contain it.
	prev := geom.Rect{X: 10, Y: 10, W: 20, H: 20}
	cur := geom.Rect{X: 15, Y: 10, W: 20, H: 20}
	d := NewDamage(geom.Rect{X: 0, Y: 0, W: 1000, H: 1000})
	d.Add(prev)
	d.Add(cur)
	changedPixel := geom.Rect{X: 30, Y: 15, W: 1, H: 1} // only covered post-move
	covered := false
	for _, r := range d.Rects() {
		if !r.Intersect(changedPixel).Empty() {
			covered = true
		}
	}
	if !covered {
		t.Fatalf("changed pixel not covered by damage: %v", d.Rects())
	}
}
