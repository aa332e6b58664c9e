package wm

// MaxViews and MaxWorkspaces bound the WM's view table and workspace count
// (spec.md §3, axwm_internal.h's WM_MAX_VIEWS/WM_MAX_WORKSPACES).
const (
	MaxViews      = 64
	MaxWorkspaces = 5
)

// View is one mapped non-background surface (spec.md §3).
type View struct {
	ClientID, SurfaceID uint32
	Workspace           uint32
	Mapped              bool
	Floating            bool
	Focused             bool
	Hidden              bool
	UI                  bool
	X, Y                int32
	W, H                uint32
	LastX, LastY        int32
}

// findViewIdx returns the view index for (clientID, surfaceID), or -1.
func (w *WM) findViewIdx(clientID, surfaceID uint32) int {
	for i := range w.views {
		v := &w.views[i]
		if v.Mapped && v.ClientID == clientID && v.SurfaceID == surfaceID {
			return i
		}
	}
	return -1
}

// getOrCreateView returns the existing view for (clientID, surfaceID) or
// allocates a fresh slot, defaulting to the active workspace.
func (w *WM) getOrCreateView(clientID, surfaceID uint32) (int, *View) {
	if idx := w.findViewIdx(clientID, surfaceID); idx >= 0 {
		return idx, &w.views[idx]
	}
	for i := range w.views {
		if !w.views[i].Mapped {
			w.views[i] = View{
				ClientID: clientID, SurfaceID: surfaceID,
				Workspace: w.activeWS, Mapped: true,
			}
			return i, &w.views[i]
		}
	}
	return -1, nil
}

// dropView clears a view slot entirely.
func (w *WM) dropView(idx int) {
	w.views[idx] = View{}
}

// isVisibleOnActiveWS reports whether v is mapped, not hidden, and either
// floating/UI (always shown) or on the active workspace.
func (w *WM) isVisibleOnActiveWS(v *View) bool {
	if !v.Mapped || v.Hidden {
		return false
	}
	if v.UI || v.Floating {
		return true
	}
	return v.Workspace == w.activeWS
}

// pickNextFocusIdx scans forward from startIdx (exclusive) for the next
// visible, non-UI view (axwm_events.c's wm_pick_next_focus_idx).
func (w *WM) pickNextFocusIdx(startIdx int) int {
	if startIdx < 0 || startIdx >= MaxViews {
		startIdx = 0
	}
	for step := 1; step <= MaxViews; step++ {
		idx := (startIdx + step) % MaxViews
		v := &w.views[idx]
		if w.isVisibleOnActiveWS(v) && !v.UI {
			return idx
		}
	}
	return -1
}

// focusNextIdx scans in the given direction (+1/-1) from the focused view,
// wrapping, for the next visible non-UI view (axwm_actions.c's
// wm_focus_next).
func (w *WM) focusNextIdx(dir int) int {
	if dir == 0 {
		return -1
	}
	start := w.focusedIdx
	if start < 0 || start >= MaxViews {
		start = 0
	}
	for step := 1; step <= MaxViews; step++ {
		idx := (start + dir*step) % MaxViews
		if idx < 0 {
			idx += MaxViews
		}
		if w.isVisibleOnActiveWS(&w.views[idx]) && !w.views[idx].UI {
			return idx
		}
	}
	return -1
}

// clearFocus drops keyboard focus without touching any view's geometry.
func (w *WM) clearFocus() {
	if w.focusedIdx >= 0 && w.focusedIdx < MaxViews {
		w.views[w.focusedIdx].Focused = false
	}
	w.focusedIdx = -1
}

// focusViewIdx makes idx the focused view and tells the compositor.
func (w *WM) focusViewIdx(idx int) {
	if idx < 0 || idx >= MaxViews || !w.views[idx].Mapped {
		return
	}
	w.clearFocus()
	w.views[idx].Focused = true
	w.focusedIdx = idx
	w.sendCmd(cmdFocus(w.views[idx].ClientID, w.views[idx].SurfaceID))
}
