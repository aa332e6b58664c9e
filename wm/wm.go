// Package wm implements the window-manager policy process: views,
// workspaces, the tiling/master layout rule, drag/resize interaction, and
// the bar — reacting to WM_EVENT and issuing WM_CMD (spec.md §4.6-§4.9),
// grounded throughout on original_source/programs/axwm's wm_state_t and
// event handlers.
package wm

import (
	"log"

	"yulacomp.dev/display/internal/geom"
	"yulacomp.dev/display/internal/proc"
	"yulacomp.dev/display/internal/wire"
	"yulacomp.dev/display/wm/bar"
	"yulacomp.dev/display/wm/interact"
	"yulacomp.dev/display/wm/layout"
)

// WM is the window-manager aggregate (spec.md §3's View/Workspace data
// model plus the interaction/bar state axwm_internal.h keeps in
// wm_state_t).
type WM struct {
	Log    *log.Logger
	Client *CompositorClient
	Bar    *BarClient

	views      [MaxViews]View
	activeWS   uint32
	focusedIdx int

	master [MaxWorkspaces]layout.Slot
	trees  [MaxWorkspaces]*layout.Tree

	screen     geom.Rect
	haveScreen bool
	gaps       layout.Gaps

	superDown      bool
	pointerButtons uint32
	pointerX       int32
	pointerY       int32

	interact      interact.State
	dragViewIdx   int
	dragOffX      int32
	dragOffY      int32
	dragStartPX   int32
	dragStartPY   int32
	dragButtons   uint32
	dragReqSuper  bool
	dragEdges     uint32
	dragStartRect geom.Rect
	dragPreviewW  int
	dragPreviewH  int

	barState   bar.Bar
	uiClientID uint32
	runBuf     interact.RunBuffer
	launchers  []string
}

// New builds a WM aggregate over its two connections (the WM endpoint and
// the bar's ordinary client endpoint).
func New(client *CompositorClient, barClient *BarClient, logger *log.Logger) *WM {
	w := &WM{
		Log: logger, Client: client, Bar: barClient,
		focusedIdx:  -1,
		gaps:        layout.Gaps{Outer: 10, Inner: 10},
		dragViewIdx: -1,
		launchers:   []string{"term", "explorer"},
	}
	arena := layout.NewArena()
	for i := range w.trees {
		w.trees[i] = layout.New(arena)
	}
	w.barState = bar.Bar{Workspaces: MaxWorkspaces, Launchers: w.launchers}
	return w
}

func (w *WM) sendCmd(cmd wire.WMCmd) {
	if err := w.Client.SendCmd(cmd); err != nil {
		w.Log.Printf("wm: command %v failed: %v", cmd.Kind, err)
	}
}

func cmdFocus(clientID, surfaceID uint32) wire.WMCmd {
	return wire.WMCmd{Kind: wire.WMCmdFocus, ClientID: clientID, SurfaceID: surfaceID}
}
func cmdRaise(clientID, surfaceID uint32) wire.WMCmd {
	return wire.WMCmd{Kind: wire.WMCmdRaise, ClientID: clientID, SurfaceID: surfaceID}
}
func cmdMove(clientID, surfaceID uint32, x, y int32) wire.WMCmd {
	return wire.WMCmd{Kind: wire.WMCmdMove, ClientID: clientID, SurfaceID: surfaceID, X: x, Y: y}
}
func cmdResize(clientID, surfaceID uint32, w, h int) wire.WMCmd {
	return wire.WMCmd{Kind: wire.WMCmdResize, ClientID: clientID, SurfaceID: surfaceID, Flags: packWH(w, h)}
}
func cmdPreviewRect(clientID, surfaceID uint32, x, y int32, w, h int) wire.WMCmd {
	return wire.WMCmd{Kind: wire.WMCmdPreviewRect, ClientID: clientID, SurfaceID: surfaceID, X: x, Y: y, Flags: packWH(w, h)}
}
func cmdPreviewClear() wire.WMCmd { return wire.WMCmd{Kind: wire.WMCmdPreviewClear} }
func cmdPointerGrab(clientID, surfaceID uint32, enable bool) wire.WMCmd {
	return wire.WMCmd{Kind: wire.WMCmdPointerGrab, ClientID: clientID, SurfaceID: surfaceID, Flags: boolFlag(enable)}
}

func packWH(w, h int) uint32 { return uint32(w&0xFFFF)<<16 | uint32(h&0xFFFF) }
func boolFlag(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Step runs one iteration of the WM's event-driven pump (axwm_main.c's
// loop body): reconnect handling, bar pixel pump, pending-command flush,
// and event dispatch.
func (w *WM) Step() {
	events, justConnected, justDisconnected := w.Client.Pump()
	if justConnected {
		w.resetSessionState()
	}
	if justDisconnected {
		w.resetSessionState()
	}
	if w.Bar.attached {
		w.Bar.Pump()
	} else if w.haveScreen {
		if err := w.Bar.Open(w.screen.W, bar.Height); err != nil {
			w.Log.Printf("wm: bar open failed: %v", err)
		}
	}
	for _, ev := range events {
		w.handleEvent(ev)
	}
}

// resetSessionState clears everything tied to a single compositor session
// (axwm_main.c calls wm_reset_session_state on both connect and
// disconnect: stale view/drag state must never survive a reconnect).
func (w *WM) resetSessionState() {
	for i := range w.views {
		w.views[i] = View{}
	}
	arena := layout.NewArena()
	for i := range w.trees {
		w.trees[i] = layout.New(arena)
		w.master[i] = layout.Slot{}
	}
	w.focusedIdx = -1
	w.interact = interact.Idle
	w.dragViewIdx = -1
	w.superDown = false
	w.pointerButtons = 0
	w.uiClientID = 0
}

func (w *WM) handleEvent(ev wire.WMEvent) {
	switch ev.Kind {
	case wire.WMEventMap:
		w.onMap(ev)
	case wire.WMEventUnmap:
		w.onUnmap(ev)
		w.applyLayout()
	case wire.WMEventCommit:
		w.onCommit(ev)
	case wire.WMEventClick:
		w.onClick(ev)
	case wire.WMEventPointer:
		w.onPointer(ev)
	case wire.WMEventKey:
		w.onKey(ev)
	}
}

func (w *WM) onMap(ev wire.WMEvent) {
	if ev.SurfaceID == 0 {
		return
	}
	if ev.SurfaceID == bar.SurfaceID {
		w.uiClientID = ev.ClientID
		_, v := w.getOrCreateView(ev.ClientID, ev.SurfaceID)
		v.UI, v.Floating, v.Hidden = true, true, false
		v.X, v.Y = 0, 0
		v.W, v.H = uint32(ev.SW), uint32(ev.SH)
		w.raiseAndPlaceBar()
		w.applyLayout()
		return
	}

	existed := w.findViewIdx(ev.ClientID, ev.SurfaceID) >= 0
	idx, v := w.getOrCreateView(ev.ClientID, ev.SurfaceID)
	if v == nil {
		return
	}
	v.W, v.H = uint32(ev.SW), uint32(ev.SH)
	v.X, v.Y = ev.SX, ev.SY
	v.Hidden = false

	if !existed && !v.Floating {
		w.insertIntoTree(v.Workspace, idx)
	}
	if !existed && w.master[v.Workspace].Empty() && !v.Floating {
		w.master[v.Workspace] = layout.Slot{ClientID: v.ClientID, SurfaceID: v.SurfaceID}
	}

	if ev.Flags&wire.WMEventFlagReplay == 0 {
		w.applyLayout()
		if idx := w.findViewIdx(ev.ClientID, ev.SurfaceID); idx >= 0 {
			w.focusViewIdx(idx)
		}
	} else {
		if v.Workspace != w.activeWS {
			w.hideView(v)
		}
		if w.focusedIdx < 0 && v.Workspace == w.activeWS {
			if idx := w.findViewIdx(ev.ClientID, ev.SurfaceID); idx >= 0 {
				w.focusViewIdx(idx)
			}
		}
		w.applyLayout()
	}
}

func (w *WM) insertIntoTree(ws uint32, viewIdx int) {
	t := w.trees[ws]
	if t.Empty() {
		t.Insert(-1, viewIdx)
		return
	}
	leaf := -1
	if w.focusedIdx >= 0 {
		fv := &w.views[w.focusedIdx]
		if fv.Mapped && !fv.UI && !fv.Floating && fv.Workspace == ws && w.focusedIdx != viewIdx {
			leaf = t.FindLeafByView(w.focusedIdx)
		}
	}
	if leaf < 0 {
		leaf = t.FindAnyLeaf()
	}
	if leaf >= 0 {
		t.Insert(leaf, viewIdx)
	}
}

func (w *WM) onUnmap(ev wire.WMEvent) {
	idx := w.findViewIdx(ev.ClientID, ev.SurfaceID)
	if idx < 0 {
		return
	}
	v := &w.views[idx]
	if v.UI || ev.SurfaceID == bar.SurfaceID {
		if w.uiClientID == ev.ClientID {
			w.uiClientID = 0
		}
		w.dropView(idx)
		return
	}
	if w.interact != interact.Idle && w.dragViewIdx == idx {
		w.stopDrag()
	}
	wasFocused := w.focusedIdx == idx
	ws := v.Workspace
	wasMaster := w.master[ws].Matches(v.ClientID, v.SurfaceID)

	if !v.Floating {
		w.trees[ws].Remove(idx)
	}
	w.dropView(idx)
	if wasFocused {
		w.clearFocus()
	}
	if wasMaster {
		w.master[ws] = layout.Slot{}
		w.reselectMaster(ws)
	}
	if wasFocused || w.focusedIdx < 0 {
		if next := w.pickNextFocusIdx(idx); next >= 0 {
			w.focusViewIdx(next)
		} else {
			w.clearFocus()
			w.redrawBar()
			w.raiseAndPlaceBar()
		}
	}
}

func (w *WM) reselectMaster(ws uint32) {
	for _, idx := range w.trees[ws].Leaves() {
		if idx >= 0 {
			w.master[ws] = layout.Slot{ClientID: w.views[idx].ClientID, SurfaceID: w.views[idx].SurfaceID}
			return
		}
	}
}

func (w *WM) onCommit(ev wire.WMEvent) {
	if ev.SurfaceID == 0 {
		return
	}
	_, v := w.getOrCreateView(ev.ClientID, ev.SurfaceID)
	if v == nil {
		return
	}
	if v.Floating {
		v.W, v.H = uint32(ev.SW), uint32(ev.SH)
	}
	if ev.SurfaceID == bar.SurfaceID || v.UI {
		v.UI, v.Floating, v.Hidden = true, true, false
		v.X, v.Y = 0, 0
		w.uiClientID = ev.ClientID
		w.raiseAndPlaceBar()
	}
}

func (w *WM) onClick(ev wire.WMEvent) {
	if ev.SurfaceID == 0 || ev.SurfaceID == bar.SurfaceID {
		return
	}
	if idx := w.findViewIdx(ev.ClientID, ev.SurfaceID); idx >= 0 {
		w.focusViewIdx(idx)
	}
}

func (w *WM) onPointer(ev wire.WMEvent) {
	prev := w.pointerButtons
	cur := ev.Buttons
	leftPressed := interact.PressedNow(prev, cur, interact.ButtonLeft)
	rightPressed := interact.PressedNow(prev, cur, interact.ButtonRight)

	w.pointerButtons = cur
	w.pointerX, w.pointerY = ev.PX, ev.PY

	if ev.SurfaceID == bar.SurfaceID && leftPressed {
		w.handleBarClick(ev.PX - ev.SX)
		return
	}

	if w.interact == interact.Dragging || w.interact == interact.Resizing {
		if interact.ReleasedNow(prev, cur, w.dragButtons) || (w.dragReqSuper && !w.superDown) {
			w.stopDrag()
			return
		}
		idx := w.dragViewIdx
		if idx < 0 || idx >= MaxViews {
			w.stopDrag()
			return
		}
		v := &w.views[idx]
		if !w.isVisibleOnActiveWS(v) || !v.Floating {
			w.stopDrag()
			return
		}
		if w.interact == interact.Resizing {
			w.continueResize(v, ev.PX, ev.PY)
		} else {
			w.continueDrag(v, ev.PX, ev.PY)
		}
		return
	}

	if rightPressed && w.superDown {
		if ev.SurfaceID == 0 {
			return
		}
		idx := w.findViewIdx(ev.ClientID, ev.SurfaceID)
		if idx < 0 {
			return
		}
		w.focusViewIdx(idx)
		v := &w.views[idx]
		edges := interact.EdgesForPoint(v.Geometry(), ev.PX, ev.PY)
		if edges == 0 {
			edges = interact.EdgeRight | interact.EdgeBottom
		}
		w.startResize(idx, ev.PX, ev.PY, interact.ButtonRight, edges)
		return
	}
	if leftPressed && w.superDown {
		if ev.SurfaceID == 0 {
			return
		}
		idx := w.findViewIdx(ev.ClientID, ev.SurfaceID)
		if idx < 0 {
			return
		}
		w.focusViewIdx(idx)
		w.startDrag(idx, ev.PX, ev.PY, interact.ButtonLeft, true)
	}
}

// Geometry returns v's current placement rectangle.
func (v *View) Geometry() geom.Rect {
	return geom.Rect{X: int(v.X), Y: int(v.Y), W: int(v.W), H: int(v.H)}
}

func (w *WM) startDrag(idx int, px, py int32, buttons uint32, requiresSuper bool) {
	v := &w.views[idx]
	if !v.Floating {
		v.Floating = true
		w.trees[v.Workspace].Remove(idx)
		w.applyLayout()
	}
	w.interact = interact.Dragging
	w.dragViewIdx = idx
	w.dragOffX = px - v.X
	w.dragOffY = py - v.Y
	w.dragStartPX, w.dragStartPY = px, py
	w.dragButtons = buttons
	w.dragReqSuper = requiresSuper
	w.sendCmd(cmdPointerGrab(v.ClientID, v.SurfaceID, true))
}

func (w *WM) startResize(idx int, px, py int32, buttons, edges uint32) {
	v := &w.views[idx]
	w.interact = interact.Resizing
	w.dragViewIdx = idx
	w.dragStartPX, w.dragStartPY = px, py
	w.dragButtons = buttons
	w.dragEdges = edges
	w.dragStartRect = v.Geometry()
	w.dragPreviewW, w.dragPreviewH = int(v.W), int(v.H)
	w.sendCmd(cmdPointerGrab(v.ClientID, v.SurfaceID, true))
}

func (w *WM) continueDrag(v *View, px, py int32) {
	nx, ny := px-w.dragOffX, py-w.dragOffY
	if nx != v.X || ny != v.Y {
		v.X, v.Y = nx, ny
		w.sendCmd(cmdMove(v.ClientID, v.SurfaceID, nx, ny))
	}
}

func (w *WM) continueResize(v *View, px, py int32) {
	r := interact.Resize(w.dragStartRect, w.dragEdges, px-w.dragStartPX, py-w.dragStartPY)
	if r.X != int(v.X) || r.Y != int(v.Y) {
		v.X, v.Y = int32(r.X), int32(r.Y)
		w.sendCmd(cmdMove(v.ClientID, v.SurfaceID, v.X, v.Y))
	}
	if r.W != w.dragPreviewW || r.H != w.dragPreviewH {
		w.dragPreviewW, w.dragPreviewH = r.W, r.H
		w.sendCmd(cmdPreviewRect(v.ClientID, v.SurfaceID, v.X, v.Y, r.W, r.H))
	}
	v.W, v.H = uint32(r.W), uint32(r.H)
}

func (w *WM) stopDrag() {
	if w.dragViewIdx >= 0 && w.dragViewIdx < MaxViews {
		v := &w.views[w.dragViewIdx]
		if w.interact == interact.Resizing {
			w.sendCmd(cmdMove(v.ClientID, v.SurfaceID, v.X, v.Y))
			w.sendCmd(cmdResize(v.ClientID, v.SurfaceID, int(v.W), int(v.H)))
			w.sendCmd(cmdPreviewClear())
		}
		w.sendCmd(cmdPointerGrab(v.ClientID, v.SurfaceID, false))
	}
	w.interact = interact.Idle
	w.dragViewIdx = -1
}

func (w *WM) onKey(ev wire.WMEvent) {
	if ev.KeyState == 0 {
		return
	}
	if w.barState.RunMode {
		w.handleRunModeKey(byte(ev.Keycode))
		return
	}
	kb := interact.Decode(byte(ev.Keycode))
	switch kb.Action {
	case interact.ActionSuperPress:
		w.superDown = true
	case interact.ActionSuperRelease:
		w.superDown = false
		if w.interact != interact.Idle {
			w.stopDrag()
		}
	case interact.ActionSwitchWorkspace:
		w.switchWorkspace(kb.Workspace)
	case interact.ActionMoveToWorkspace:
		w.moveFocusedToWS(kb.Workspace)
	case interact.ActionSpawnTerm:
		w.spawn("term")
	case interact.ActionCloseFocused:
		w.closeFocused()
	case interact.ActionSpawnExplorer:
		w.spawn("explorer")
	case interact.ActionSpawnLauncher:
		w.enterRunMode()
	case interact.ActionToggleFloating:
		w.toggleFloating()
	case interact.ActionExit:
		w.Client.RequestExit()
	case interact.ActionFocusPrev:
		if idx := w.focusNextIdx(-1); idx >= 0 {
			w.focusViewIdx(idx)
		}
	case interact.ActionFocusNext:
		if idx := w.focusNextIdx(1); idx >= 0 {
			w.focusViewIdx(idx)
		}
	}
}

// enterRunMode switches the bar into typed-command entry (spec.md §4.7's
// ActionSpawnLauncher binding opens Run rather than launching a fixed
// program directly).
func (w *WM) enterRunMode() {
	w.runBuf.Reset()
	w.barState.RunMode = true
	w.barState.RunText = ""
	w.redrawBar()
}

func (w *WM) exitRunMode() {
	w.barState.RunMode = false
	w.runBuf.Reset()
	w.barState.RunText = ""
	w.redrawBar()
}

func (w *WM) handleRunModeKey(code byte) {
	switch code {
	case interact.KeyEnter:
		cmd := w.runBuf.String()
		w.exitRunMode()
		if cmd != "" {
			w.spawn(cmd)
		}
	case interact.KeyEscape:
		w.exitRunMode()
	case interact.KeyBackspace:
		w.runBuf.Backspace()
		w.barState.RunText = w.runBuf.String()
		w.redrawBar()
	default:
		w.runBuf.Push(code)
		w.barState.RunText = w.runBuf.String()
		w.redrawBar()
	}
}

func (w *WM) spawn(name string) {
	if err := proc.Spawn(name); err != nil {
		w.Log.Printf("wm: spawn %s: %v", name, err)
	}
}

func (w *WM) switchWorkspace(ws uint32) {
	if ws >= MaxWorkspaces || w.activeWS == ws {
		return
	}
	w.activeWS = ws
	for i := range w.views {
		v := &w.views[i]
		if !v.Mapped || v.UI {
			continue
		}
		if v.Workspace == w.activeWS {
			w.showView(v)
		} else {
			w.hideView(v)
		}
	}
	w.clearFocus()
	for i := range w.views {
		if w.isVisibleOnActiveWS(&w.views[i]) && !w.views[i].UI {
			w.focusViewIdx(i)
			break
		}
	}
	if w.master[w.activeWS].Empty() {
		w.reselectMaster(w.activeWS)
	}
	w.applyLayout()
	w.redrawBar()
	w.raiseAndPlaceBar()
}

func (w *WM) moveFocusedToWS(ws uint32) {
	if ws >= MaxWorkspaces {
		return
	}
	idx := w.focusedIdx
	if idx < 0 {
		return
	}
	v := &w.views[idx]
	if !w.isVisibleOnActiveWS(v) {
		return
	}
	oldWS := v.Workspace
	if !v.Floating {
		w.trees[oldWS].Remove(idx)
	}
	if w.master[oldWS].Matches(v.ClientID, v.SurfaceID) {
		w.master[oldWS] = layout.Slot{}
	}
	v.Workspace = ws
	if w.master[ws].Empty() && !v.Floating {
		w.master[ws] = layout.Slot{ClientID: v.ClientID, SurfaceID: v.SurfaceID}
	}
	if !v.Floating {
		w.insertIntoTree(ws, idx)
	}
	if ws != w.activeWS {
		w.hideView(v)
		w.clearFocus()
		for i := range w.views {
			if w.isVisibleOnActiveWS(&w.views[i]) && !w.views[i].UI {
				w.focusViewIdx(i)
				break
			}
		}
	}
	if oldWS != ws && w.master[oldWS].Empty() {
		w.reselectMaster(oldWS)
	}
	w.applyLayout()
}

func (w *WM) toggleFloating() {
	idx := w.focusedIdx
	if idx < 0 {
		return
	}
	v := &w.views[idx]
	if !w.isVisibleOnActiveWS(v) {
		return
	}
	v.Floating = !v.Floating
	if v.Floating {
		w.trees[v.Workspace].Remove(idx)
	} else {
		w.insertIntoTree(v.Workspace, idx)
	}
	w.applyLayout()
}

func (w *WM) closeFocused() {
	idx := w.focusedIdx
	if idx < 0 {
		return
	}
	v := &w.views[idx]
	if !w.isVisibleOnActiveWS(v) {
		return
	}
	clientID, surfaceID := v.ClientID, v.SurfaceID
	next := w.pickNextFocusIdx(idx)
	w.Client.RequestClose(clientID, surfaceID)
	if next >= 0 {
		w.focusViewIdx(next)
	}
}

// hideView/showView move a view to/from the off-screen sentinel position,
// saving/restoring its last on-screen geometry (spec.md §4.6).
func (w *WM) hideView(v *View) {
	if v.Hidden {
		return
	}
	v.LastX, v.LastY = v.X, v.Y
	v.Hidden = true
	v.X, v.Y = layout.OffscreenSentinel, layout.OffscreenSentinel
	w.sendCmd(cmdMove(v.ClientID, v.SurfaceID, v.X, v.Y))
}

func (w *WM) showView(v *View) {
	if !v.Hidden {
		return
	}
	v.Hidden = false
	v.X, v.Y = v.LastX, v.LastY
	w.sendCmd(cmdMove(v.ClientID, v.SurfaceID, v.X, v.Y))
}

// applyLayout recomputes tiled geometry for the active workspace and
// raises the bar (spec.md §4.6's apply_layout rule).
func (w *WM) applyLayout() {
	if !w.haveScreen {
		return
	}
	ws := w.activeWS
	leaves := w.trees[ws].Leaves()
	masterIdx := -1
	if !w.master[ws].Empty() {
		for _, idx := range leaves {
			if idx >= 0 && w.master[ws].Matches(w.views[idx].ClientID, w.views[idx].SurfaceID) {
				masterIdx = idx
				break
			}
		}
	}
	content := w.screen
	content.Y += bar.Height
	content.H -= bar.Height
	if content.H < 0 {
		content.H = 0
	}
	rects := layout.Apply(leaves, w.master[ws], masterIdx, content, w.gaps)
	for idx, r := range rects {
		v := &w.views[idx]
		if v.Floating || v.UI || !v.Mapped {
			continue
		}
		nx, ny, nw, nh := int32(r.X), int32(r.Y), uint32(r.W), uint32(r.H)
		if nx != v.X || ny != v.Y {
			v.X, v.Y = nx, ny
			w.sendCmd(cmdMove(v.ClientID, v.SurfaceID, nx, ny))
		}
		if nw != v.W || nh != v.H {
			v.W, v.H = nw, nh
			w.sendCmd(cmdResize(v.ClientID, v.SurfaceID, r.W, r.H))
		}
	}
	w.raiseAndPlaceBar()
	if w.focusedIdx >= 0 {
		w.sendCmd(cmdFocus(w.views[w.focusedIdx].ClientID, w.views[w.focusedIdx].SurfaceID))
	}
}

func (w *WM) raiseAndPlaceBar() {
	if w.uiClientID == 0 {
		return
	}
	w.sendCmd(cmdMove(w.uiClientID, bar.SurfaceID, 0, 0))
	w.sendCmd(cmdRaise(w.uiClientID, bar.SurfaceID))
}

// SetScreen records the compositor's screen size, discovered out-of-band
// (spec.md §6(9): the WM reads framebuffer info via the same facade the
// compositor uses). Until this is called, layout is not applied.
func (w *WM) SetScreen(width, height int) {
	w.screen = geom.Rect{X: 0, Y: 0, W: width, H: height}
	w.haveScreen = true
	w.applyLayout()
}

func (w *WM) handleBarClick(localX int32) {
	hit := w.barState.HitTest(localX)
	switch hit.Kind {
	case bar.HitWorkspace:
		w.switchWorkspace(hit.Workspace)
	case bar.HitLauncher:
		if hit.Launcher >= 0 && hit.Launcher < len(w.launchers) {
			w.spawn(w.launchers[hit.Launcher])
		}
	}
}

func (w *WM) redrawBar() {
	w.barState.ActiveWS = w.activeWS
	if w.focusedIdx >= 0 {
		v := &w.views[w.focusedIdx]
		w.barState.FocusLabel = focusLabel(v.ClientID, v.SurfaceID)
	} else {
		w.barState.FocusLabel = ""
	}
	if !w.Bar.attached {
		return
	}
	pixels := w.Bar.Pixels()
	if pixels == nil {
		return
	}
	bar.Render(pixels, w.Bar.Stride(), &w.barState)
	if err := w.Bar.Commit(); err != nil {
		w.Log.Printf("wm: bar commit failed: %v", err)
	}
}

func focusLabel(clientID, surfaceID uint32) string {
	return "c" + itoa(clientID) + ":s" + itoa(surfaceID)
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
