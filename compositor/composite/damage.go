// Package composite implements the damage-accumulation and clipped-blit
// composition pipeline of spec.md §4.4.
package composite

import "yulacomp.dev/display/internal/geom"

// MaxDamageRects bounds the damage set's cardinality; once saturated, the
// set collapses to a single screen-covering rectangle (spec.md §3).
const MaxDamageRects = 32

// Damage accumulates axis-aligned rectangles with union-with-coalescing
// growth and a bounded-cardinality collapse.
type Damage struct {
	rects  []geom.Rect
	screen geom.Rect
}

// NewDamage returns an empty damage accumulator clipped to screen.
func NewDamage(screen geom.Rect) *Damage {
	return &Damage{screen: screen}
}

// Reset empties the accumulator for the next frame.
func (d *Damage) Reset() { d.rects = d.rects[:0] }

// Rects returns the current damage rectangles.
func (d *Damage) Rects() []geom.Rect { return d.rects }

// Empty reports whether no damage has been recorded.
func (d *Damage) Empty() bool { return len(d.rects) == 0 }

// Add grows the damage set with r, clipped to the screen. If two existing
// rectangles overlap or touch the new one they are coalesced (merged) into
// it rather than kept separate, following the spec's "union-with-
// coalescing" growth rule. If the set would exceed MaxDamageRects, it
// collapses to a single screen-covering rectangle.
func (d *Damage) Add(r geom.Rect) {
	r = r.Intersect(d.screen)
	if r.Empty() {
		return
	}
	if len(d.rects) == 1 && d.rects[0] == d.screen {
		return // already fully saturated
	}
	out := d.rects[:0]
	for _, existing := range d.rects {
		if overlapsOrTouches(existing, r) {
			r = r.Union(existing)
			continue
		}
		out = append(out, existing)
	}
	out = append(out, r)
	d.rects = out
	if len(d.rects) > MaxDamageRects {
		d.rects = d.rects[:1]
		d.rects[0] = d.screen
	}
}

// AddFull marks the entire screen dirty (scene-dirty flag, §4.4(d)).
func (d *Damage) AddFull() {
	d.rects = d.rects[:0]
	d.rects = append(d.rects, d.screen)
}

func overlapsOrTouches(a, b geom.Rect) bool {
	// Touching (adjacent, zero-gap) rectangles are coalesced too, to keep
	// the set small under scenarios like cursor motion by one pixel.
	ax0, ay0, ax1, ay1 := a.X, a.Y, a.X+a.W, a.Y+a.H
	bx0, by0, bx1, by1 := b.X, b.Y, b.X+b.W, b.Y+b.H
	if ax1 < bx0 || bx1 < ax0 {
		return false
	}
	if ay1 < by0 || by1 < ay0 {
		return false
	}
	return true
}
