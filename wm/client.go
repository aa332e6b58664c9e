package wm

import (
	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/internal/ringbuf"
	"yulacomp.dev/display/internal/wire"
)

// ReconnectCooldownTicks mirrors compositor/wmbridge's respawn cooldown;
// here it paces the WM's own reconnect attempts to the "compositor_wm"
// endpoint (axwm_main.c's comp_wait_events(&c, 100000u) poll-and-retry,
// reexpressed as a tick count for the WM's own event-driven pump).
const ReconnectCooldownTicks = 120

// CompositorClient is the WM's connection to the compositor's WM endpoint:
// dial/reconnect, WM_EVENT receive, WM_CMD send, with failed sends staged
// for retry (spec.md §5 Cancellation: "WM commands that fail transport are
// staged for retry on the next pump").
type CompositorClient struct {
	dial func() (ipc.Conn, error)

	conn     ipc.Conn
	recv     *ringbuf.Ring
	cooldown int

	pendingExit  bool
	pendingClose bool
	pendingCloseClientID, pendingCloseSurfaceID uint32
}

// NewCompositorClient wraps a dial function (how to connect to the
// compositor's WM endpoint) in fresh client state.
func NewCompositorClient(dial func() (ipc.Conn, error)) *CompositorClient {
	return &CompositorClient{dial: dial}
}

// Connected reports whether the compositor connection is currently live.
func (c *CompositorClient) Connected() bool { return c.conn != nil }

// Pump attempts reconnect (cooldown-gated), drains buffered WM_EVENT
// frames, flushes any staged commands, and reports disconnects so the
// caller can reset its session state (axwm_main.c's wm_reset_session_state
// on both connect and disconnect).
func (c *CompositorClient) Pump() (events []wire.WMEvent, justConnected, justDisconnected bool) {
	if c.conn == nil {
		if c.cooldown > 0 {
			c.cooldown--
			return nil, false, false
		}
		conn, err := c.dial()
		if err != nil {
			c.cooldown = ReconnectCooldownTicks
			return nil, false, false
		}
		c.conn = conn
		c.recv = ringbuf.New(2 * wire.MaxFrame)
		return nil, true, false
	}

	for {
		free := c.recv.Free() - wire.MaxFrame
		if free <= 0 {
			break
		}
		buf := make([]byte, free)
		n, err, wouldBlock := c.conn.TryRead(buf)
		if wouldBlock {
			break
		}
		if err != nil || n == 0 {
			c.disconnect()
			return nil, false, true
		}
		c.recv.Push(buf[:n])
		if n < free {
			break
		}
	}

	hdr := make([]byte, wire.HeaderLen)
	for {
		if c.recv.Len() < 4 {
			break
		}
		var magic [4]byte
		c.recv.Peek(0, magic[:])
		if !wire.PeekMagic(magic[:]) {
			c.recv.Drop(1)
			continue
		}
		if c.recv.Len() < wire.HeaderLen {
			break
		}
		c.recv.Peek(0, hdr)
		h, err := wire.DecodeHeader(hdr)
		if err != nil {
			c.recv.Drop(1)
			continue
		}
		total := wire.HeaderLen + int(h.Len)
		if c.recv.Len() < total {
			break
		}
		payload := make([]byte, h.Len)
		if h.Len > 0 {
			c.recv.Peek(wire.HeaderLen, payload)
		}
		c.recv.Drop(total)
		if h.Type != wire.TypeWMEvent {
			continue
		}
		ev, err := wire.DecodeWMEvent(payload)
		if err != nil {
			continue
		}
		events = append(events, ev)
	}

	c.flushPending()
	return events, false, false
}

func (c *CompositorClient) disconnect() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = nil
	c.recv = nil
	c.cooldown = ReconnectCooldownTicks
}

// SendCmd frames and writes a WM_CMD. A transport failure disconnects and
// returns the error; callers needing at-least-once delivery (Exit, Close)
// use RequestExit/RequestClose instead, which stage on failure.
func (c *CompositorClient) SendCmd(cmd wire.WMCmd) error {
	if c.conn == nil {
		return errNotConnected
	}
	_, err := c.conn.Write(wire.EncodeFrame(wire.TypeWMCmd, 0, wire.EncodeWMCmd(cmd)))
	if err != nil {
		c.disconnect()
	}
	return err
}

// RequestExit sends EXIT, staging it for retry on the next Pump if the
// transport is currently down (axwm_actions.c's wm_request_exit).
func (c *CompositorClient) RequestExit() {
	if c.SendCmd(wire.WMCmd{Kind: wire.WMCmdExit}) != nil {
		c.pendingExit = true
	}
}

// RequestClose sends CLOSE for (clientID, surfaceID), staging it on failure
// (axwm_actions.c's wm_request_close).
func (c *CompositorClient) RequestClose(clientID, surfaceID uint32) {
	cmd := wire.WMCmd{Kind: wire.WMCmdClose, ClientID: clientID, SurfaceID: surfaceID}
	if c.SendCmd(cmd) != nil {
		c.pendingClose = true
		c.pendingCloseClientID = clientID
		c.pendingCloseSurfaceID = surfaceID
	}
}

// flushPending retries any staged commands (axwm_actions.c's
// wm_flush_pending_cmds).
func (c *CompositorClient) flushPending() {
	if c.pendingExit {
		if c.SendCmd(wire.WMCmd{Kind: wire.WMCmdExit}) == nil {
			c.pendingExit = false
		}
	}
	if c.pendingClose {
		cmd := wire.WMCmd{Kind: wire.WMCmdClose, ClientID: c.pendingCloseClientID, SurfaceID: c.pendingCloseSurfaceID}
		if c.SendCmd(cmd) == nil {
			c.pendingClose = false
		}
	}
}

var errNotConnected = &notConnectedError{}

type notConnectedError struct{}

func (*notConnectedError) Error() string { return "wm: not connected to compositor" }
