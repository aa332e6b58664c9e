package compositor

import (
	"yulacomp.dev/display/internal/inputdev"
	"yulacomp.dev/display/internal/shmring"
	"yulacomp.dev/display/internal/wire"
)

// routeInput samples the pointer and keyboard devices once per frame and
// routes events to the WM and to whichever client currently owns them
// (spec.md §4.5): a pointer/keyboard grab wins over hit-testing, hit-testing
// wins over nothing, and focus is WM-authoritative whenever a WM is
// connected, falling back to click-to-focus otherwise.
func (c *Compositor) routeInput() {
	c.routePointer()
	c.routeKeyboard()
}

func (c *Compositor) routePointer() {
	sample, ok := c.Mouse.Sample()
	if !ok {
		return
	}
	moved := !c.hasCursorPos || sample.X != c.cursorX || sample.Y != c.cursorY
	pressed := sample.Buttons&^c.cursorButtons != 0
	c.prevCursorX, c.prevCursorY = c.cursorX, c.cursorY
	c.cursorX, c.cursorY = sample.X, sample.Y
	c.cursorButtons = sample.Buttons
	c.hasCursorPos = true

	wmConnected := c.WM != nil && c.WM.Connected()

	targetClient, targetSurface := c.pointerTarget(sample.X, sample.Y)

	if pressed && !wmConnected && targetSurface != nil {
		c.focusClient = targetClient
		c.focusSurface = targetSurface.ID
		c.hasFocus = true
	}

	if wmConnected {
		kind := wire.WMEventPointer
		if pressed {
			kind = wire.WMEventClick
		}
		ev := wire.WMEvent{Kind: kind, PX: sample.X, PY: sample.Y, Buttons: sample.Buttons}
		if targetSurface != nil {
			ev.ClientID = uint32(targetClient)
			ev.SurfaceID = targetSurface.ID
		}
		c.emitWMEvent(ev)
	}

	if targetSurface == nil {
		return
	}
	if !moved && !pressed && sample.Buttons == c.cursorButtons {
		return
	}
	kind := shmring.EventPointerMove
	if pressed {
		kind = shmring.EventPointerButton
	}
	localX := sample.X - int32(targetSurface.X)
	localY := sample.Y - int32(targetSurface.Y)
	c.deliverToClient(targetClient, targetSurface, shmring.Event{
		Kind: kind, X: localX, Y: localY, SurfaceID: targetSurface.ID, Buttons: sample.Buttons,
	})
}

// pointerTarget resolves which (client, surface) a pointer event belongs to:
// a pointer grab wins outright, else the topmost hit-tested surface.
func (c *Compositor) pointerTarget(x, y int32) (ClientID, *Surface) {
	if c.hasGrab {
		if sf := c.lookupSurface(c.grabClient, c.grabSurface); sf != nil {
			return c.grabClient, sf
		}
	}
	return c.hitTest(int(x), int(y))
}

// hitTest returns the topmost (highest z) committed surface containing the
// point, across every session.
func (c *Compositor) hitTest(x, y int) (ClientID, *Surface) {
	var best *Surface
	var bestClient ClientID
	for cid, s := range c.sessions {
		for _, sf := range s.surfaces {
			if !sf.Committed {
				continue
			}
			g := sf.Geometry()
			if x < g.X || x >= g.X+g.W || y < g.Y || y >= g.Y+g.H {
				continue
			}
			if best == nil || sf.Z > best.Z {
				best = sf
				bestClient = cid
			}
		}
	}
	return bestClient, best
}

func (c *Compositor) routeKeyboard() {
	wmConnected := c.WM != nil && c.WM.Connected()
	for {
		sample, ok := c.Keyboard.Sample()
		if !ok {
			return
		}
		state := uint32(0)
		if sample.State == inputdev.KeyPressed {
			state = 1
		}
		if wmConnected {
			c.emitWMEvent(wire.WMEvent{Kind: wire.WMEventKey, Keycode: uint32(sample.Code), KeyState: state})
		}
		if !c.hasFocus {
			continue
		}
		s, ok := c.sessions[c.focusClient]
		if !ok {
			c.hasFocus = false
			continue
		}
		sf, ok := s.surfaces[c.focusSurface]
		if !ok {
			c.hasFocus = false
			continue
		}
		c.deliverToClient(c.focusClient, sf, shmring.Event{
			Kind: shmring.EventKey, SurfaceID: sf.ID, Keycode: uint32(sample.Code), Buttons: state,
		})
	}
}

// deliverToClient delivers an input event to a surface's owning client,
// preferring the negotiated shared-memory ring once the client has
// acknowledged it and falling back to a framed INPUT message otherwise
// (spec.md §4.2).
func (c *Compositor) deliverToClient(clientID ClientID, sf *Surface, ev shmring.Event) {
	s, ok := c.sessions[clientID]
	if !ok {
		return
	}
	if s.inputRing != nil && s.inputRingAck {
		s.inputRing.Push(ev)
		return
	}
	in := wire.Input{
		SurfaceID: sf.ID,
		Keycode:   ev.Keycode,
		KeyState:  ev.Buttons,
		Buttons:   ev.Buttons,
		X:         ev.X,
		Y:         ev.Y,
	}
	switch ev.Kind {
	case shmring.EventPointerMove:
		in.Kind = wire.InputPointerMove
	case shmring.EventPointerButton:
		in.Kind = wire.InputPointerButton
	case shmring.EventKey:
		in.Kind = wire.InputKey
	}
	s.sendAsync(wire.TypeInput, wire.EncodeInput(in))
}
