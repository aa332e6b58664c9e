// Package interact implements the pure, view-independent math of the WM's
// drag/resize interaction state machine and keybinding table (spec.md
// §4.7), grounded on axwm_events.c's wm_on_pointer/wm_on_key and the
// WM_RESIZE_* constants in axwm_internal.h. Drag bookkeeping that needs the
// view table lives in the wm package itself; this package only classifies
// input and computes geometry.
package interact

import "yulacomp.dev/display/internal/geom"

// State is the interaction state machine's current mode.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
	RunMode
)

// Resize-edge bits and hit-testing/minimum-size constants
// (axwm_internal.h).
const (
	EdgeLeft   uint32 = 1 << 0
	EdgeRight  uint32 = 1 << 1
	EdgeTop    uint32 = 1 << 2
	EdgeBottom uint32 = 1 << 3

	ResizeHitPx = 10
	MinWidth    = 240
	MinHeight   = 160
)

// Control scancodes used while RunMode is active; everything else in the
// printable range feeds RunBuffer.Push instead of the binding table.
const (
	KeyBackspace = 0x08
	KeyEnter     = 0x0D
	KeyEscape    = 0x1B
)

// Button bitmask values (matching wire.Input's Buttons field bit layout).
const (
	ButtonLeft   uint32 = 1 << 0
	ButtonRight  uint32 = 1 << 1
	ButtonMiddle uint32 = 1 << 2
)

// EdgesForPoint returns which edges of v a point near its border is within
// ResizeHitPx of, defaulting to 0 when the point isn't near any border.
func EdgesForPoint(v geom.Rect, px, py int32) uint32 {
	var edges uint32
	x, y := int(px), int(py)
	if x >= v.X && x < v.X+v.W {
		if y-v.Y >= 0 && y-v.Y <= ResizeHitPx {
			edges |= EdgeTop
		}
		if (v.Y+v.H)-y >= 0 && (v.Y+v.H)-y <= ResizeHitPx {
			edges |= EdgeBottom
		}
	}
	if y >= v.Y && y < v.Y+v.H {
		if x-v.X >= 0 && x-v.X <= ResizeHitPx {
			edges |= EdgeLeft
		}
		if (v.X+v.W)-x >= 0 && (v.X+v.W)-x <= ResizeHitPx {
			edges |= EdgeRight
		}
	}
	return edges
}

// Resize applies edge math to (start, dx, dy), clamping to the minimum
// size, exactly per axwm_events.c's wm_on_pointer resize branch.
func Resize(start geom.Rect, edges uint32, dx, dy int32) geom.Rect {
	nx, ny := start.X, start.Y
	nw, nh := start.W, start.H

	if edges&EdgeLeft != 0 {
		nx += int(dx)
		nw -= int(dx)
	}
	if edges&EdgeRight != 0 {
		nw += int(dx)
	}
	if edges&EdgeTop != 0 {
		ny += int(dy)
		nh -= int(dy)
	}
	if edges&EdgeBottom != 0 {
		nh += int(dy)
	}

	if nw < MinWidth {
		if edges&EdgeLeft != 0 {
			nx = start.X + start.W - MinWidth
		}
		nw = MinWidth
	}
	if nh < MinHeight {
		if edges&EdgeTop != 0 {
			ny = start.Y + start.H - MinHeight
		}
		nh = MinHeight
	}
	return geom.Rect{X: nx, Y: ny, W: nw, H: nh}
}

// PressedNow reports whether bit transitioned from unset to set between
// prev and cur (axwm_events.c's left_pressed/right_pressed tests).
func PressedNow(prev, cur, bit uint32) bool {
	return cur&bit != 0 && prev&bit == 0
}

// ReleasedNow reports whether bit transitioned from set to unset.
func ReleasedNow(prev, cur, bit uint32) bool {
	return prev&bit != 0 && cur&bit == 0
}

// Action is the closed set of keybinding outcomes (spec.md §4.7).
type Action int

const (
	ActionNone Action = iota
	ActionSuperPress
	ActionSuperRelease
	ActionSwitchWorkspace
	ActionMoveToWorkspace
	ActionSpawnTerm
	ActionCloseFocused
	ActionSpawnExplorer
	ActionSpawnLauncher
	ActionToggleFloating
	ActionExit
	ActionFocusPrev
	ActionFocusNext
)

// Keybinding is a decoded key action, with its workspace operand (for
// ActionSwitchWorkspace/ActionMoveToWorkspace).
type Keybinding struct {
	Action    Action
	Workspace uint32
}

// Decode maps a scancode to its bound action, per the keycode table in
// spec.md §4.7.
func Decode(code byte) Keybinding {
	switch {
	case code == 0xC0:
		return Keybinding{Action: ActionSuperPress}
	case code == 0xC1:
		return Keybinding{Action: ActionSuperRelease}
	case code >= 0x90 && code <= 0x95:
		ws := uint32(code - 0x90)
		if ws == 5 {
			ws = 0
		}
		return Keybinding{Action: ActionSwitchWorkspace, Workspace: ws}
	case code >= 0xA0 && code <= 0xA5:
		ws := uint32(code - 0xA0)
		if ws == 5 {
			ws = 0
		}
		return Keybinding{Action: ActionMoveToWorkspace, Workspace: ws}
	case code == 0xA8:
		return Keybinding{Action: ActionSpawnTerm}
	case code == 0xA9:
		return Keybinding{Action: ActionCloseFocused}
	case code == 0xAA:
		return Keybinding{Action: ActionSpawnExplorer}
	case code == 0xAB:
		return Keybinding{Action: ActionSpawnLauncher}
	case code == 0xAC:
		return Keybinding{Action: ActionToggleFloating}
	case code == 0xAD:
		return Keybinding{Action: ActionExit}
	case code == 0xB1, code == 0xB3:
		return Keybinding{Action: ActionFocusPrev}
	case code == 0xB2, code == 0xB4:
		return Keybinding{Action: ActionFocusNext}
	default:
		return Keybinding{Action: ActionNone}
	}
}

// RunBuffer accumulates printable ASCII for the bar's run-mode launcher
// (spec.md §4.7).
type RunBuffer struct {
	buf []byte
}

// Push appends a printable ASCII byte (0x20..0x7E); others are ignored.
func (r *RunBuffer) Push(b byte) {
	if b >= 0x20 && b <= 0x7E {
		r.buf = append(r.buf, b)
	}
}

// Backspace removes the last byte, if any.
func (r *RunBuffer) Backspace() {
	if len(r.buf) > 0 {
		r.buf = r.buf[:len(r.buf)-1]
	}
}

// Reset empties the buffer.
func (r *RunBuffer) Reset() { r.buf = r.buf[:0] }

// String returns the buffer's current contents.
func (r *RunBuffer) String() string { return string(r.buf) }
