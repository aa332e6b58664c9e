package bar

import "testing"

func TestHitTestWorkspaceSlots(t *testing.T) {
	b := &Bar{Workspaces: 5, Launchers: []string{"term", "explorer"}}
	got := b.HitTest(10) // inside slot 0 (0..20)
	if got.Kind != HitWorkspace || got.Workspace != 0 {
		t.Fatalf("HitTest(10) = %+v, want workspace 0", got)
	}
	got = b.HitTest(25) // inside slot 1 (20..40)
	if got.Kind != HitWorkspace || got.Workspace != 1 {
		t.Fatalf("HitTest(25) = %+v, want workspace 1", got)
	}
}

func TestHitTestLauncherSlots(t *testing.T) {
	b := &Bar{Workspaces: 2, Launchers: []string{"term", "explorer"}}
	slots := b.layout()
	var launcherX int32 = -1
	for _, s := range slots {
		if s.launcher == 0 {
			launcherX = int32(s.rect.X) + 1
			break
		}
	}
	if launcherX < 0 {
		t.Fatalf("no launcher slot laid out")
	}
	got := b.HitTest(launcherX)
	if got.Kind != HitLauncher || got.Launcher != 0 {
		t.Fatalf("HitTest(%d) = %+v, want launcher 0", launcherX, got)
	}
}

func TestHitTestRunModeHasNoLauncherSlots(t *testing.T) {
	b := &Bar{Workspaces: 2, Launchers: []string{"term"}, RunMode: true}
	for _, s := range b.layout() {
		if s.launcher >= 0 {
			t.Fatalf("run mode should not lay out launcher hit boxes, got %+v", s)
		}
	}
}

func TestHitTestPastEndIsNone(t *testing.T) {
	b := &Bar{Workspaces: 1, Launchers: nil}
	got := b.HitTest(100000)
	if got.Kind != HitNone {
		t.Fatalf("HitTest far past bar content = %+v, want HitNone", got)
	}
}

func TestRenderFillsBackgroundAndActiveSlot(t *testing.T) {
	stride := 200
	pixels := make([]byte, stride*Height*4)
	b := &Bar{Workspaces: 3, ActiveWS: 1, Launchers: nil}
	Render(pixels, stride, b)

	// Background corner should be tinted.
	readPixel := func(x, y int) uint32 {
		off := (y*stride + x) * 4
		return uint32(pixels[off]) | uint32(pixels[off+1])<<8 | uint32(pixels[off+2])<<16 | uint32(pixels[off+3])<<24
	}
	if readPixel(stride-1, Height-1) != colorBarBG {
		t.Fatalf("far corner pixel = %#x, want background %#x", readPixel(stride-1, Height-1), colorBarBG)
	}
	// Active workspace slot (index 1, x in [20,40)) should be tinted.
	if readPixel(25, 5) != colorSlotActive {
		t.Fatalf("active workspace slot pixel = %#x, want %#x", readPixel(25, 5), colorSlotActive)
	}
	// Inactive workspace slot (index 0) keeps the plain slot color.
	if readPixel(5, 5) != colorSlot {
		t.Fatalf("inactive workspace slot pixel = %#x, want %#x", readPixel(5, 5), colorSlot)
	}
}
