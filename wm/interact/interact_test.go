package interact

import (
	"testing"

	"yulacomp.dev/display/internal/geom"
)

func TestEdgesForPointDetectsBorders(t *testing.T) {
	v := geom.Rect{X: 100, Y: 100, W: 200, H: 200}
	cases := []struct {
		px, py int32
		want   uint32
	}{
		{100, 150, EdgeLeft},
		{300, 150, EdgeRight},
		{150, 100, EdgeTop},
		{150, 300, EdgeBottom},
		{100, 100, EdgeLeft | EdgeTop},
		{150, 150, 0}, // deep interior, not near any border
	}
	for _, c := range cases {
		if got := EdgesForPoint(v, c.px, c.py); got != c.want {
			t.Errorf("EdgesForPoint(%d,%d) = %#x, want %#x", c.px, c.py, got, c.want)
		}
	}
}

func TestResizeFromRightBottomGrows(t *testing.T) {
	start := geom.Rect{X: 0, Y: 0, W: 300, H: 300}
	got := Resize(start, EdgeRight|EdgeBottom, 50, -20)
	want := geom.Rect{X: 0, Y: 0, W: 350, H: 280}
	if got != want {
		t.Fatalf("Resize() = %v, want %v", got, want)
	}
}

func TestResizeFromLeftTopMovesOrigin(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, W: 300, H: 300}
	got := Resize(start, EdgeLeft|EdgeTop, 20, 30)
	want := geom.Rect{X: 120, Y: 130, W: 280, H: 270}
	if got != want {
		t.Fatalf("Resize() = %v, want %v", got, want)
	}
}

func TestResizeClampsToMinimumAnchoringOppositeEdge(t *testing.T) {
	start := geom.Rect{X: 100, Y: 100, W: 300, H: 300}
	got := Resize(start, EdgeLeft, 280, 0) // would shrink width below MinWidth
	if got.W != MinWidth {
		t.Fatalf("Resize().W = %d, want clamped to %d", got.W, MinWidth)
	}
	if got.X != start.X+start.W-MinWidth {
		t.Fatalf("Resize().X = %d, want anchored to the right edge", got.X)
	}
}

func TestPressedAndReleasedNow(t *testing.T) {
	if !PressedNow(0, ButtonLeft, ButtonLeft) {
		t.Fatalf("PressedNow should detect 0 -> set transition")
	}
	if PressedNow(ButtonLeft, ButtonLeft, ButtonLeft) {
		t.Fatalf("PressedNow should not fire when already set")
	}
	if !ReleasedNow(ButtonLeft, 0, ButtonLeft) {
		t.Fatalf("ReleasedNow should detect set -> 0 transition")
	}
}

func TestDecodeKeybindingTable(t *testing.T) {
	cases := []struct {
		code byte
		want Action
		ws   uint32
	}{
		{0xC0, ActionSuperPress, 0},
		{0xC1, ActionSuperRelease, 0},
		{0x90, ActionSwitchWorkspace, 0},
		{0x94, ActionSwitchWorkspace, 4},
		{0x95, ActionSwitchWorkspace, 0}, // wraps
		{0xA0, ActionMoveToWorkspace, 0},
		{0xA5, ActionMoveToWorkspace, 0}, // wraps
		{0xA8, ActionSpawnTerm, 0},
		{0xA9, ActionCloseFocused, 0},
		{0xAA, ActionSpawnExplorer, 0},
		{0xAB, ActionSpawnLauncher, 0},
		{0xAC, ActionToggleFloating, 0},
		{0xAD, ActionExit, 0},
		{0xB1, ActionFocusPrev, 0},
		{0xB3, ActionFocusPrev, 0},
		{0xB2, ActionFocusNext, 0},
		{0xB4, ActionFocusNext, 0},
		{0x41, ActionNone, 0}, // ordinary ASCII 'A', not a binding
	}
	for _, c := range cases {
		kb := Decode(c.code)
		if kb.Action != c.want {
			t.Errorf("Decode(%#x).Action = %v, want %v", c.code, kb.Action, c.want)
		}
		if kb.Action == ActionSwitchWorkspace || kb.Action == ActionMoveToWorkspace {
			if kb.Workspace != c.ws {
				t.Errorf("Decode(%#x).Workspace = %d, want %d", c.code, kb.Workspace, c.ws)
			}
		}
	}
}

func TestRunBufferPushBackspaceReset(t *testing.T) {
	var rb RunBuffer
	rb.Push('t')
	rb.Push('e')
	rb.Push('r')
	rb.Push('m')
	rb.Push(0x01) // non-printable, ignored
	if rb.String() != "term" {
		t.Fatalf("RunBuffer.String() = %q, want %q", rb.String(), "term")
	}
	rb.Backspace()
	if rb.String() != "ter" {
		t.Fatalf("after Backspace, String() = %q, want %q", rb.String(), "ter")
	}
	rb.Reset()
	if rb.String() != "" {
		t.Fatalf("after Reset, String() = %q, want empty", rb.String())
	}
}
