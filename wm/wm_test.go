package wm

import (
	"log"
	"testing"

	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/internal/wire"
)

func newTestWM() *WM {
	dial := func() (ipc.Conn, error) { return nil, errDialUnavailable }
	client := NewCompositorClient(dial)
	barClient := NewBarClient(nil, 1)
	logger := log.New(discard{}, "", 0)
	w := New(client, barClient, logger)
	w.SetScreen(800, 600)
	return w
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

var errDialUnavailable = &notConnectedError{}

func mapView(w *WM, clientID, surfaceID uint32, sw, sh int32) {
	w.handleEvent(wire.WMEvent{Kind: wire.WMEventMap, ClientID: clientID, SurfaceID: surfaceID, SW: sw, SH: sh})
}

func TestOnMapInsertsTiledViewAndFocuses(t *testing.T) {
	w := newTestWM()
	mapView(w, 1, 1, 100, 100)

	idx := w.findViewIdx(1, 1)
	if idx < 0 {
		t.Fatalf("view (1,1) not found after map")
	}
	if w.focusedIdx != idx {
		t.Fatalf("focusedIdx = %d, want %d (the single mapped view)", w.focusedIdx, idx)
	}
	leaves := w.trees[w.activeWS].Leaves()
	if len(leaves) != 1 || leaves[0] != idx {
		t.Fatalf("tree leaves = %v, want [%d]", leaves, idx)
	}
	if !w.master[w.activeWS].Matches(1, 1) {
		t.Fatalf("first tiled view should become master")
	}
}

func TestOnMapSecondViewSplitsTree(t *testing.T) {
	w := newTestWM()
	mapView(w, 1, 1, 100, 100)
	mapView(w, 2, 1, 100, 100)

	leaves := w.trees[w.activeWS].Leaves()
	if len(leaves) != 2 {
		t.Fatalf("Leaves() = %v, want 2 entries after mapping two tiled views", leaves)
	}
	idx2 := w.findViewIdx(2, 1)
	if w.focusedIdx != idx2 {
		t.Fatalf("focusedIdx = %d, want the most recently mapped view %d", w.focusedIdx, idx2)
	}
}

func TestOnUnmapRefocusesRemainingView(t *testing.T) {
	w := newTestWM()
	mapView(w, 1, 1, 100, 100)
	mapView(w, 2, 1, 100, 100)
	idx1 := w.findViewIdx(1, 1)

	w.handleEvent(wire.WMEvent{Kind: wire.WMEventUnmap, ClientID: 2, SurfaceID: 1})

	if w.findViewIdx(2, 1) >= 0 {
		t.Fatalf("view (2,1) should be gone after unmap")
	}
	if w.focusedIdx != idx1 {
		t.Fatalf("focusedIdx = %d, want the remaining view %d", w.focusedIdx, idx1)
	}
	leaves := w.trees[w.activeWS].Leaves()
	if len(leaves) != 1 || leaves[0] != idx1 {
		t.Fatalf("Leaves() after unmap = %v, want [%d]", leaves, idx1)
	}
}

func TestOnUnmapLastViewClearsMaster(t *testing.T) {
	w := newTestWM()
	mapView(w, 1, 1, 100, 100)
	w.handleEvent(wire.WMEvent{Kind: wire.WMEventUnmap, ClientID: 1, SurfaceID: 1})

	if !w.master[w.activeWS].Empty() {
		t.Fatalf("master slot should be empty once its only view unmaps")
	}
	if w.focusedIdx != -1 {
		t.Fatalf("focusedIdx = %d, want -1 with no views left", w.focusedIdx)
	}
}

func TestOnCommitResizesFloatingView(t *testing.T) {
	w := newTestWM()
	mapView(w, 1, 1, 100, 100)
	idx := w.findViewIdx(1, 1)
	w.views[idx].Floating = true

	w.handleEvent(wire.WMEvent{Kind: wire.WMEventCommit, ClientID: 1, SurfaceID: 1, SW: 321, SH: 222})

	if w.views[idx].W != 321 || w.views[idx].H != 222 {
		t.Fatalf("floating view size after commit = %dx%d, want 321x222", w.views[idx].W, w.views[idx].H)
	}
}

func TestOnClickFocusesTargetView(t *testing.T) {
	w := newTestWM()
	mapView(w, 1, 1, 100, 100)
	mapView(w, 2, 1, 100, 100)
	idx1 := w.findViewIdx(1, 1)

	w.handleEvent(wire.WMEvent{Kind: wire.WMEventClick, ClientID: 1, SurfaceID: 1})

	if w.focusedIdx != idx1 {
		t.Fatalf("focusedIdx = %d after click, want %d", w.focusedIdx, idx1)
	}
}

func TestOnKeySwitchWorkspaceHidesOtherWorkspaceViews(t *testing.T) {
	w := newTestWM()
	mapView(w, 1, 1, 100, 100)
	idx := w.findViewIdx(1, 1)

	w.handleEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: 0x91, KeyState: 1}) // switch to workspace 1

	if w.activeWS != 1 {
		t.Fatalf("activeWS = %d, want 1", w.activeWS)
	}
	if !w.views[idx].Hidden {
		t.Fatalf("view left on workspace 0 should be hidden after switching to workspace 1")
	}
	if w.focusedIdx != -1 {
		t.Fatalf("focusedIdx = %d, want -1 with nothing mapped on the new workspace", w.focusedIdx)
	}
}

func TestOnKeyIgnoresKeyRelease(t *testing.T) {
	w := newTestWM()
	w.handleEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: 0x91, KeyState: 0})
	if w.activeWS != 0 {
		t.Fatalf("key release events must not trigger actions, activeWS = %d", w.activeWS)
	}
}

func TestRunModeTypeEnterSpawns(t *testing.T) {
	w := newTestWM()

	w.handleEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: 0xAB, KeyState: 1}) // ActionSpawnLauncher -> run mode
	if !w.barState.RunMode {
		t.Fatalf("ActionSpawnLauncher should enter run mode")
	}

	for _, c := range []byte("term") {
		w.handleEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: uint32(c), KeyState: 1})
	}
	if w.barState.RunText != "term" {
		t.Fatalf("RunText = %q, want %q", w.barState.RunText, "term")
	}

	w.handleEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: 0x0D, KeyState: 1}) // Enter
	if w.barState.RunMode {
		t.Fatalf("run mode should end after Enter")
	}
	if w.barState.RunText != "" {
		t.Fatalf("RunText should be cleared after Enter, got %q", w.barState.RunText)
	}
}

func TestRunModeEscapeCancelsWithoutSpawning(t *testing.T) {
	w := newTestWM()
	w.handleEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: 0xAB, KeyState: 1})
	w.handleEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: uint32('x'), KeyState: 1})
	w.handleEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: 0x1B, KeyState: 1}) // Escape

	if w.barState.RunMode {
		t.Fatalf("run mode should end after Escape")
	}
	if w.barState.RunText != "" {
		t.Fatalf("RunText should be cleared after Escape, got %q", w.barState.RunText)
	}
}

func TestHandleBarClickSwitchesWorkspace(t *testing.T) {
	w := newTestWM()
	w.handleBarClick(25) // second workspace slot, see wm/bar's 20px slot width
	if w.activeWS != 1 {
		t.Fatalf("activeWS after bar click at x=25 = %d, want 1", w.activeWS)
	}
}

func TestToggleFloatingRemovesFromTree(t *testing.T) {
	w := newTestWM()
	mapView(w, 1, 1, 100, 100)
	idx := w.findViewIdx(1, 1)

	w.toggleFloating()
	if !w.views[idx].Floating {
		t.Fatalf("view should be floating after toggle")
	}
	if len(w.trees[w.activeWS].Leaves()) != 0 {
		t.Fatalf("tiling tree should be empty once its only view floats")
	}

	w.toggleFloating()
	if w.views[idx].Floating {
		t.Fatalf("view should be tiled again after second toggle")
	}
	if len(w.trees[w.activeWS].Leaves()) != 1 {
		t.Fatalf("tiling tree should regain the view after un-floating")
	}
}
