package compositor

import (
	"fmt"
	"log"

	"yulacomp.dev/display/compositor/composite"
	"yulacomp.dev/display/compositor/wmbridge"
	"yulacomp.dev/display/internal/fbdev"
	"yulacomp.dev/display/internal/geom"
	"yulacomp.dev/display/internal/inputdev"
	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/internal/shmring"
	"yulacomp.dev/display/internal/shmseg"
	"yulacomp.dev/display/internal/wire"
)

// BackgroundColor is the BGRA8888 color painted beneath all surfaces.
const BackgroundColor uint32 = 0xFF202020

// Compositor is the process-wide aggregate (spec.md §9: an explicit
// aggregate passed by reference through the frame loop, replacing the
// original's process-wide statics).
type Compositor struct {
	Log *log.Logger

	FB       fbdev.Device
	Mouse    inputdev.Mouse
	Keyboard inputdev.Keyboard
	Clients  ipc.Listener
	WM       *wmbridge.Bridge

	screen geom.Rect
	damage *composite.Damage
	frame  *composite.Frame

	sessions     map[ClientID]*Session
	nextClientID ClientID
	zCounter     uint64

	focusClient  ClientID
	focusSurface uint32
	hasFocus     bool

	grabClient  ClientID
	grabSurface uint32
	hasGrab     bool

	cursorX, cursorY     int32
	prevCursorX, prevCursorY int32
	cursorButtons        uint32
	hasCursorPos         bool

	previewRect    geom.Rect
	hasPreview     bool
	prevPreviewValid bool
	prevPreviewRect  geom.Rect

	sceneDirty bool
}

// New builds a Compositor over the given collaborators and screen size.
func New(fb fbdev.Device, mouse inputdev.Mouse, kbd inputdev.Keyboard, clients ipc.Listener, wm *wmbridge.Bridge, logger *log.Logger) *Compositor {
	info := fb.Info()
	screen := geom.Rect{X: 0, Y: 0, W: info.Width, H: info.Height}
	return &Compositor{
		Log:          logger,
		FB:           fb,
		Mouse:        mouse,
		Keyboard:     kbd,
		Clients:      clients,
		WM:           wm,
		screen:       screen,
		damage:       composite.NewDamage(screen),
		frame:        &composite.Frame{Pixels: make([]byte, info.Width*info.Height*4), Stride: info.Width, W: info.Width, H: info.Height},
		sessions:     make(map[ClientID]*Session),
		nextClientID: 1,
	}
}

// bumpZ returns the next strictly-increasing z value (spec.md §4.4,
// testable property §8.3).
func (c *Compositor) bumpZ() uint64 {
	c.zCounter++
	return c.zCounter
}

// RunFrame executes one iteration of the ~60Hz frame loop (spec.md §2):
// accept, pump clients, poll WM, route input, compute damage, composite,
// present, redraw cursor.
func (c *Compositor) RunFrame() {
	c.acceptClients()
	c.pumpClients()
	c.pollWM()
	c.routeInput()
	c.composeFrame()
}

func (c *Compositor) acceptClients() {
	conn, ok := c.Clients.TryAccept()
	if !ok {
		return
	}
	id := c.nextClientID
	c.nextClientID++
	c.sessions[id] = newSession(id, conn, int64(id))
}

func (c *Compositor) pumpClients() {
	for id, s := range c.sessions {
		frames, teardown := s.Pump()
		for _, f := range frames {
			c.dispatch(s, f)
		}
		if teardown {
			c.teardownSession(id)
		}
	}
}

func (c *Compositor) teardownSession(id ClientID) {
	s, ok := c.sessions[id]
	if !ok {
		return
	}
	released := s.teardown()
	for _, sf := range released {
		c.emitWMEvent(wire.WMEvent{Kind: wire.WMEventUnmap, ClientID: uint32(id), SurfaceID: sf.ID})
		c.damage.Add(sf.Geometry())
	}
	delete(c.sessions, id)
	if c.hasFocus && c.focusClient == id {
		c.hasFocus = false
	}
	if c.hasGrab && c.grabClient == id {
		c.hasGrab = false
	}
}

func (c *Compositor) emitWMEvent(e wire.WMEvent) {
	if c.WM == nil || !c.WM.Connected() {
		return
	}
	if err := c.WM.SendEvent(e); err != nil {
		c.Log.Printf("compositor: WM event send failed: %v", err)
	}
}

func (c *Compositor) dispatch(s *Session, f Frame) {
	switch f.Header.Type {
	case wire.TypeHello:
		c.handleHello(s, f)
	case wire.TypeAttachShmName:
		c.handleAttach(s, f)
	case wire.TypeCommit:
		c.handleCommit(s, f)
	case wire.TypeDestroySurface:
		c.handleDestroy(s, f)
	case wire.TypeInputRingName:
		c.handleInputRingName(s, f)
	case wire.TypeInputRingAck:
		c.handleInputRingAck(s, f)
	default:
		// Unknown/async-only types from a client are ignored.
	}
}

func (c *Compositor) handleHello(s *Session, f Frame) {
	hello, err := wire.DecodeHello(f.Payload)
	if err != nil {
		s.replyError(f.Header.Seq, wire.TypeHello, wire.ErrInvalid, 0, 0)
		return
	}
	s.Pid = hello.Pid
	s.replyAck(f.Header.Seq, wire.TypeHello, 0, 0)

	// Negotiate the SPSC input ring (spec.md §4.2, scenario S1).
	name := fmt.Sprintf("ycomp-input-%d", s.ID)
	size := shmring.Layout(InputRingCapacity)
	seg, err := shmseg.Create(name, size)
	if err != nil {
		c.Log.Printf("compositor: input ring alloc for client %d failed: %v", s.ID, err)
		return
	}
	shmring.Init(seg.Bytes(), InputRingCapacity)
	s.inputRingShm = seg
	s.inputRing = shmring.Open(seg.Bytes())
	s.sendAsync(wire.TypeInputRingName, wire.EncodeInputRingName(wire.InputRingName{
		Size: uint32(size), Cap: InputRingCapacity, Name: name,
	}))
}

func (c *Compositor) handleInputRingAck(s *Session, f Frame) {
	s.inputRingAck = true
	s.replyAck(f.Header.Seq, wire.TypeInputRingAck, 0, 0)
	if s.inputRingShm != nil {
		s.inputRingShm.Unlink()
	}
}

func (c *Compositor) handleInputRingName(s *Session, f Frame) {
	// Clients never send this; ignore defensively.
	s.replyError(f.Header.Seq, wire.TypeInputRingName, wire.ErrInvalid, 0, 0)
}

func (c *Compositor) handleAttach(s *Session, f Frame) {
	m, err := wire.DecodeAttachShmName(f.Payload)
	if err != nil {
		s.replyError(f.Header.Seq, wire.TypeAttachShmName, wire.ErrInvalid, 0, 0)
		return
	}
	if m.SurfaceID == 0 {
		s.replyError(f.Header.Seq, wire.TypeAttachShmName, wire.ErrInvalid, m.SurfaceID, 0)
		return
	}
	sf, exists := s.surfaces[m.SurfaceID]
	if !exists {
		if len(s.surfaces) >= MaxSurfaces {
			s.replyError(f.Header.Seq, wire.TypeAttachShmName, wire.ErrInvalid, m.SurfaceID, 0)
			return
		}
		sf = &Surface{ID: m.SurfaceID}
		s.surfaces[m.SurfaceID] = sf
	}
	if !sf.validGeometry(int(m.W), int(m.H), int(m.Stride), int(m.Size)) {
		s.replyError(f.Header.Seq, wire.TypeAttachShmName, wire.ErrInvalid, m.SurfaceID, 0)
		return
	}
	seg, err := shmseg.Open(m.Name, int(m.Size))
	if err != nil {
		s.replyError(f.Header.Seq, wire.TypeAttachShmName, wire.ErrShmOpen, m.SurfaceID, 0)
		return
	}
	sf.client = seg
	sf.shmName = m.Name
	sf.shmSize = int(m.Size)
	sf.W, sf.H, sf.Stride = int(m.W), int(m.H), int(m.Stride)
	if !sf.shadow.matches(sf.W, sf.H, sf.Stride) {
		if sf.shadow != nil {
			sf.shadow.close()
		}
		pair, err := newShadowPair(fmt.Sprintf("c%d-s%d", s.ID, sf.ID), sf.W, sf.H, sf.Stride)
		if err != nil {
			s.replyError(f.Header.Seq, wire.TypeAttachShmName, wire.ErrShmMap, m.SurfaceID, 0)
			return
		}
		sf.shadow = pair
	}
	sf.Attached = true
	s.replyAck(f.Header.Seq, wire.TypeAttachShmName, m.SurfaceID, 0)
}

func (c *Compositor) handleCommit(s *Session, f Frame) {
	m, err := wire.DecodeCommit(f.Payload)
	if err != nil {
		s.replyError(f.Header.Seq, wire.TypeCommit, wire.ErrInvalid, 0, 0)
		return
	}
	sf, ok := s.surfaces[m.SurfaceID]
	if !ok || !sf.Attached {
		s.replyError(f.Header.Seq, wire.TypeCommit, wire.ErrNoSurface, m.SurfaceID, 0)
		return
	}
	firstCommit := !sf.Committed
	sf.X, sf.Y = int(m.X), int(m.Y)
	sf.Committed = true
	sf.CommitGen++

	if sf.shadow != nil && sf.client != nil {
		sf.shadow.snapshot(sf.client.Bytes(), s.rng)
	}

	if firstCommit {
		sf.Z = c.bumpZ()
		c.emitWMEvent(wire.WMEvent{
			Kind: wire.WMEventMap, ClientID: uint32(s.ID), SurfaceID: sf.ID,
			SX: int32(sf.X), SY: int32(sf.Y), SW: int32(sf.W), SH: int32(sf.H),
		})
	} else {
		if m.Flags&wire.FlagRaise != 0 && !(c.WM != nil && c.WM.Connected()) {
			sf.Z = c.bumpZ()
		}
		c.emitWMEvent(wire.WMEvent{
			Kind: wire.WMEventCommit, ClientID: uint32(s.ID), SurfaceID: sf.ID,
			SX: int32(sf.X), SY: int32(sf.Y), SW: int32(sf.W), SH: int32(sf.H),
		})
	}
	c.damage.Add(sf.Geometry())

	if m.Flags&wire.FlagACK != 0 {
		s.replyAck(f.Header.Seq, wire.TypeCommit, sf.ID, 0)
	}
}

func (c *Compositor) handleDestroy(s *Session, f Frame) {
	m, err := wire.DecodeDestroySurface(f.Payload)
	if err != nil {
		s.replyError(f.Header.Seq, wire.TypeDestroySurface, wire.ErrInvalid, 0, 0)
		return
	}
	sf, ok := s.surfaces[m.SurfaceID]
	if !ok {
		s.replyError(f.Header.Seq, wire.TypeDestroySurface, wire.ErrNoSurface, m.SurfaceID, 0)
		return
	}
	geometry := sf.Geometry()
	sf.release()
	delete(s.surfaces, m.SurfaceID)
	c.emitWMEvent(wire.WMEvent{Kind: wire.WMEventUnmap, ClientID: uint32(s.ID), SurfaceID: m.SurfaceID})
	c.damage.Add(geometry)
	if c.hasFocus && c.focusClient == s.ID && c.focusSurface == m.SurfaceID {
		c.hasFocus = false
	}
	if c.hasGrab && c.grabClient == s.ID && c.grabSurface == m.SurfaceID {
		c.hasGrab = false
	}
	s.replyAck(f.Header.Seq, wire.TypeDestroySurface, m.SurfaceID, 0)
}

// pollWM drains the WM bridge, replays mapped surfaces on (re)connect, and
// clears focus/grab/preview on disconnect (spec.md §4.9).
func (c *Compositor) pollWM() {
	if c.WM == nil {
		return
	}
	res := c.WM.Pump()
	if res.JustConnected {
		c.replayMappedSurfaces()
	}
	if res.JustDisconnected {
		c.hasFocus = false
		c.hasGrab = false
		c.hasPreview = false
		c.prevPreviewValid = false
		c.sceneDirty = true
	}
	for _, cmd := range res.Cmds {
		c.applyWMCmd(cmd)
	}
}

func (c *Compositor) replayMappedSurfaces() {
	for cid, s := range c.sessions {
		for _, sf := range s.surfaces {
			if !sf.Committed {
				continue
			}
			c.emitWMEvent(wire.WMEvent{
				Kind: wire.WMEventMap, ClientID: uint32(cid), SurfaceID: sf.ID,
				SX: int32(sf.X), SY: int32(sf.Y), SW: int32(sf.W), SH: int32(sf.H),
				Flags: wire.WMEventFlagReplay,
			})
		}
	}
}

func (c *Compositor) applyWMCmd(cmd wire.WMCmd) {
	switch cmd.Kind {
	case wire.WMCmdFocus:
		c.focusClient = ClientID(cmd.ClientID)
		c.focusSurface = cmd.SurfaceID
		c.hasFocus = true
	case wire.WMCmdRaise:
		if sf := c.lookupSurface(ClientID(cmd.ClientID), cmd.SurfaceID); sf != nil {
			sf.Z = c.bumpZ()
			c.damage.Add(sf.Geometry())
		}
	case wire.WMCmdMove:
		if sf := c.lookupSurface(ClientID(cmd.ClientID), cmd.SurfaceID); sf != nil {
			old := sf.Geometry()
			sf.X, sf.Y = int(cmd.X), int(cmd.Y)
			c.damage.Add(old)
			c.damage.Add(sf.Geometry())
		}
	case wire.WMCmdResize:
		// Resize geometry arrives pre-clamped by the WM (spec.md §4.7); the
		// compositor only tracks w/h via a later COMMIT from the client, so
		// this simply marks the region dirty for repaint.
		if sf := c.lookupSurface(ClientID(cmd.ClientID), cmd.SurfaceID); sf != nil {
			c.damage.Add(sf.Geometry())
		}
	case wire.WMCmdClose:
		if s, ok := c.sessions[ClientID(cmd.ClientID)]; ok {
			if sf, ok := s.surfaces[cmd.SurfaceID]; ok {
				geometry := sf.Geometry()
				sf.release()
				delete(s.surfaces, cmd.SurfaceID)
				c.damage.Add(geometry)
			}
		}
	case wire.WMCmdPreviewRect:
		// PreviewRect has no dedicated w/h fields on the wire; the WM packs
		// them into Flags as (w<<16)|h, the only generic command carrying a
		// full rect (spec.md §4.7 move-preview).
		c.prevPreviewValid = c.hasPreview
		c.prevPreviewRect = c.previewRect
		c.previewRect = geom.Rect{X: int(cmd.X), Y: int(cmd.Y), W: int(cmd.Flags >> 16), H: int(cmd.Flags & 0xFFFF)}
		c.hasPreview = true
	case wire.WMCmdPreviewClear:
		c.prevPreviewValid = c.hasPreview
		c.prevPreviewRect = c.previewRect
		c.hasPreview = false
	case wire.WMCmdPointerGrab:
		if cmd.Flags != 0 {
			c.grabClient = ClientID(cmd.ClientID)
			c.grabSurface = cmd.SurfaceID
			c.hasGrab = true
		} else {
			c.hasGrab = false
		}
	case wire.WMCmdKeyboardGrab:
		// Keyboard grab piggybacks on the same focus fields in this core;
		// WM remains authoritative for focus while connected (§4.5).
		if cmd.Flags != 0 {
			c.focusClient = ClientID(cmd.ClientID)
			c.focusSurface = cmd.SurfaceID
			c.hasFocus = true
		}
	case wire.WMCmdExit:
		c.sceneDirty = true
	default:
		// Unknown commands are ignored (spec.md §4.5).
	}
}

func (c *Compositor) lookupSurface(id ClientID, surfaceID uint32) *Surface {
	s, ok := c.sessions[id]
	if !ok {
		return nil
	}
	sf, ok := s.surfaces[surfaceID]
	if !ok {
		return nil
	}
	return sf
}

func (c *Compositor) composeFrame() {
	if c.sceneDirty {
		c.damage.AddFull()
		c.sceneDirty = false
	}
	if c.hasPreview {
		c.damage.Add(c.previewRect)
	}
	if c.prevPreviewValid {
		c.damage.Add(c.prevPreviewRect)
		c.prevPreviewValid = false
	}
	if c.damage.Empty() {
		return
	}

	var visible []composite.VisibleSurface
	for cid, s := range c.sessions {
		for _, sf := range s.surfaces {
			if !sf.Committed {
				continue
			}
			pixels := sf.shadow.activeBytes()
			stride := sf.Stride
			if pixels == nil && sf.client != nil {
				pixels = sf.client.Bytes()
			}
			visible = append(visible, composite.VisibleSurface{
				Geometry: sf.Geometry(), Stride: stride, Z: sf.Z, Pixels: pixels,
			})
		}
		_ = cid
	}
	composite.ByZAscending(visible)
	composite.ComposeDamage(c.frame, BackgroundColor, visible, c.damage.Rects())

	if fb, err := c.FB.Acquire(); err == nil {
		composite.Present(fb, c.FB.Info().Pitch, c.frame, c.damage.Rects())
		c.FB.Release()
	}
	c.damage.Reset()
}
