package layout

import "yulacomp.dev/display/internal/geom"

// Slot identifies the workspace's master view, or is empty (ClientID == 0).
type Slot struct {
	ClientID, SurfaceID uint32
}

// Empty reports whether the slot holds no master.
func (s Slot) Empty() bool { return s.ClientID == 0 && s.SurfaceID == 0 }

// Matches reports whether (clientID, surfaceID) is the current master.
func (s Slot) Matches(clientID, surfaceID uint32) bool {
	return !s.Empty() && s.ClientID == clientID && s.SurfaceID == surfaceID
}

// Gaps bundles the outer/inner spacing used by Apply (spec.md §4.6,
// axwm_internal.h's gap_outer/gap_inner fields).
type Gaps struct {
	Outer, Inner int
}

// Apply computes screen-space geometry for every tiled (non-floating,
// non-UI) view of one workspace: the master gets the left half minus the
// outer gap; the stack fills the right half, divided evenly with inner
// gaps between entries (spec.md §4.6). Floating and UI views are not
// included in leaves and keep their own geometry elsewhere.
func Apply(leaves []int, master Slot, masterIndex int, screen geom.Rect, gaps Gaps) map[int]geom.Rect {
	out := make(map[int]geom.Rect, len(leaves))
	if len(leaves) == 0 {
		return out
	}

	inner := geom.Rect{
		X: screen.X + gaps.Outer, Y: screen.Y + gaps.Outer,
		W: screen.W - 2*gaps.Outer, H: screen.H - 2*gaps.Outer,
	}
	if inner.W < 0 {
		inner.W = 0
	}
	if inner.H < 0 {
		inner.H = 0
	}

	hasMaster := masterIndex >= 0 && !master.Empty()
	stack := make([]int, 0, len(leaves))
	for _, idx := range leaves {
		if hasMaster && idx == masterIndex {
			continue
		}
		stack = append(stack, idx)
	}

	if !hasMaster || len(stack) == 0 {
		// No stack: whichever views exist split the full area evenly,
		// column-wise, same as the stack rule with the whole width.
		if hasMaster {
			out[masterIndex] = inner
			return out
		}
		n := len(leaves)
		colW := inner.W / n
		for i, idx := range leaves {
			r := geom.Rect{X: inner.X + i*colW, Y: inner.Y, W: colW, H: inner.H}
			if i == n-1 {
				r.W = inner.X + inner.W - r.X
			}
			out[idx] = r
		}
		return out
	}

	masterW := (inner.W - gaps.Inner) / 2
	out[masterIndex] = geom.Rect{X: inner.X, Y: inner.Y, W: masterW, H: inner.H}

	stackX := inner.X + masterW + gaps.Inner
	stackW := inner.X + inner.W - stackX
	n := len(stack)
	rowH := (inner.H - (n-1)*gaps.Inner) / n
	if rowH < 1 {
		rowH = 1
	}
	y := inner.Y
	for i, idx := range stack {
		h := rowH
		if i == n-1 {
			h = inner.Y + inner.H - y
		}
		out[idx] = geom.Rect{X: stackX, Y: y, W: stackW, H: h}
		y += h + gaps.Inner
	}
	return out
}

// OffscreenSentinel is the agreed hide position for views on inactive
// workspaces (spec.md §4.6: "move them far off-screen"; §8 scenario S3
// and programs/wm.c:825-826 both use -20000 exactly).
const OffscreenSentinel = -20000
