// Package bar implements the WM's bar UI surface: layout, hit-testing, and
// pixel rendering of its own client-owned buffer (spec.md §4.8). The WM is
// an ordinary compositor client for this one surface — it attaches shared
// memory and commits it like any application would.
//
// Glyph rasterization is an external collaborator this core never
// reimplements (spec.md §1); labels are rendered as solid-color blocks
// whose widths are exactly the hit-test boundaries, rather than shaped
// text.
package bar

import "yulacomp.dev/display/internal/geom"

// Height is the bar's fixed height in pixels (axwm_internal.h's
// WM_UI_BAR_H).
const Height = 28

// SurfaceID is the reserved surface id the compositor treats specially
// (axwm_internal.h's WM_UI_BAR_SURFACE_ID).
const SurfaceID uint32 = 0x80000001

const (
	slotWidth    = 20
	runLabelW    = 40
	launcherW    = 70
	labelPadding = 4
)

// Bar holds the state needed to lay out, hit-test, and draw the bar
// (spec.md §4.8): workspace slots, the Run control, and the right-aligned
// focus label.
type Bar struct {
	Workspaces int
	ActiveWS   uint32
	RunMode    bool
	RunText    string
	Launchers  []string
	FocusLabel string // "c<id>:s<id>", or "" when nothing is focused

	Width int
}

// slot is one laid-out hit region: either a workspace index or a launcher
// index (mutually exclusive).
type slot struct {
	rect       geom.Rect
	workspace  int // -1 if not a workspace slot
	launcher   int // -1 if not a launcher slot
}

func (b *Bar) layout() []slot {
	var slots []slot
	x := 0
	for i := 0; i < b.Workspaces; i++ {
		slots = append(slots, slot{rect: geom.Rect{X: x, Y: 0, W: slotWidth, H: Height}, workspace: i, launcher: -1})
		x += slotWidth
	}
	x += labelPadding // "Run" label
	x += runLabelW
	if b.RunMode {
		x += runLabelW * 2 // run buffer region, not independently hit-tested
	} else {
		for i := range b.Launchers {
			slots = append(slots, slot{rect: geom.Rect{X: x, Y: 0, W: launcherW, H: Height}, workspace: -1, launcher: i})
			x += launcherW
		}
	}
	return slots
}

// HitKind classifies what a bar click landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitWorkspace
	HitLauncher
)

// HitResult is the outcome of HitTest.
type HitResult struct {
	Kind      HitKind
	Workspace uint32
	Launcher  int
}

// HitTest resolves a click at surface-local x (spec.md §4.8: "workspace
// slot widths are fixed; launcher hit boxes derive from label widths").
func (b *Bar) HitTest(x int32) HitResult {
	for _, s := range b.layout() {
		if int(x) < s.rect.X || int(x) >= s.rect.X+s.rect.W {
			continue
		}
		if s.workspace >= 0 {
			return HitResult{Kind: HitWorkspace, Workspace: uint32(s.workspace)}
		}
		if s.launcher >= 0 {
			return HitResult{Kind: HitLauncher, Launcher: s.launcher}
		}
	}
	return HitResult{Kind: HitNone}
}

// Render paints the bar into pixels (BGRA8888, row stride in pixels),
// width wide. Workspace slots are tinted for the active workspace; the Run
// control and launcher/focus labels are flat blocks sized to their hit
// regions (no glyph rasterizer in this core, see package doc).
func Render(pixels []byte, stride int, b *Bar) {
	b.Width = stride
	fill(pixels, stride, geom.Rect{X: 0, Y: 0, W: stride, H: Height}, colorBarBG)
	for _, s := range b.layout() {
		c := colorSlot
		if s.workspace >= 0 && uint32(s.workspace) == b.ActiveWS {
			c = colorSlotActive
		}
		if s.launcher >= 0 {
			c = colorLauncher
		}
		fill(pixels, stride, s.rect, c)
	}
	if b.FocusLabel != "" {
		w := 8 * len(b.FocusLabel)
		r := geom.Rect{X: stride - w, Y: 0, W: w, H: Height}
		fill(pixels, stride, r, colorFocusLabel)
	}
}

const (
	colorBarBG      uint32 = 0xFF101010
	colorSlot       uint32 = 0xFF303030
	colorSlotActive uint32 = 0xFF4070C0
	colorLauncher   uint32 = 0xFF282828
	colorFocusLabel uint32 = 0xFF205020
)

func fill(pixels []byte, stride int, rect geom.Rect, color uint32) {
	rect = rect.Intersect(geom.Rect{X: 0, Y: 0, W: stride, H: Height})
	if rect.Empty() {
		return
	}
	var px [4]byte
	px[0] = byte(color)
	px[1] = byte(color >> 8)
	px[2] = byte(color >> 16)
	px[3] = byte(color >> 24)
	for y := rect.Y; y < rect.Y+rect.H; y++ {
		rowOff := y * stride * 4
		row := pixels[rowOff+rect.X*4 : rowOff+(rect.X+rect.W)*4]
		for x := 0; x < rect.W; x++ {
			copy(row[x*4:x*4+4], px[:])
		}
	}
}
