package wmbridge

import (
	"errors"
	"testing"

	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/internal/wire"
)

type fakeConn struct {
	in, out []byte
	eof     bool
	closed  bool
}

var _ ipc.Conn = (*fakeConn)(nil)

func (c *fakeConn) Read(p []byte) (int, error) {
	n, err, block := c.TryRead(p)
	if block {
		return 0, errors.New("fakeConn: would block")
	}
	return n, err
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.closed {
		return 0, errors.New("fakeConn: closed")
	}
	c.out = append(c.out, p...)
	return len(p), nil
}

func (c *fakeConn) TryRead(buf []byte) (int, error, bool) {
	if len(c.in) == 0 {
		if c.eof {
			return 0, errors.New("fakeConn: eof"), false
		}
		return 0, nil, true
	}
	n := copy(buf, c.in)
	c.in = c.in[n:]
	return n, nil, false
}

func (c *fakeConn) Close() error { c.closed = true; return nil }

type fakeListener struct {
	pending *fakeConn
}

var _ ipc.Listener = (*fakeListener)(nil)

func (l *fakeListener) TryAccept() (ipc.Conn, bool) {
	if l.pending == nil {
		return nil, false
	}
	c := l.pending
	l.pending = nil
	return c, true
}

func (l *fakeListener) Close() error { return nil }

func wmCmdFrame(kind wire.WMCmdKind, clientID, surfaceID uint32) []byte {
	return wire.EncodeFrame(wire.TypeWMCmd, 0, wire.EncodeWMCmd(wire.WMCmd{
		Kind: kind, ClientID: clientID, SurfaceID: surfaceID,
	}))
}

func TestPumpAcceptsPendingConnection(t *testing.T) {
	conn := &fakeConn{}
	l := &fakeListener{pending: conn}
	b := NewBridge(l)

	if b.Connected() {
		t.Fatalf("expected no connection before first Pump")
	}
	res := b.Pump()
	if !res.JustConnected {
		t.Fatalf("expected JustConnected")
	}
	if !b.Connected() {
		t.Fatalf("expected Connected() after accept")
	}
}

func TestPumpParsesBufferedWMCmds(t *testing.T) {
	conn := &fakeConn{}
	l := &fakeListener{pending: conn}
	b := NewBridge(l)
	b.Pump() // accept

	conn.in = append(conn.in, wmCmdFrame(wire.WMCmdFocus, 7, 3)...)
	conn.in = append(conn.in, wmCmdFrame(wire.WMCmdRaise, 7, 3)...)

	res := b.Pump()
	if len(res.Cmds) != 2 {
		t.Fatalf("got %d cmds, want 2: %+v", len(res.Cmds), res.Cmds)
	}
	if res.Cmds[0].Kind != wire.WMCmdFocus || res.Cmds[1].Kind != wire.WMCmdRaise {
		t.Fatalf("unexpected cmd order: %+v", res.Cmds)
	}
}

func TestPumpDisconnectsOnEOFAndStartsCooldown(t *testing.T) {
	conn := &fakeConn{eof: true}
	l := &fakeListener{pending: conn}
	b := NewBridge(l)
	b.Pump() // accept

	res := b.Pump()
	if !res.JustDisconnected {
		t.Fatalf("expected JustDisconnected")
	}
	if b.Connected() {
		t.Fatalf("expected disconnected")
	}
	if !conn.closed {
		t.Fatalf("expected underlying conn closed")
	}

	// No new connection is accepted until the cooldown elapses, even if one
	// is pending.
	l.pending = &fakeConn{}
	for i := 0; i < RespawnCooldownTicks-1; i++ {
		if r := b.Pump(); r.JustConnected {
			t.Fatalf("accepted during cooldown at tick %d", i)
		}
	}
	if r := b.Pump(); !r.JustConnected {
		t.Fatalf("expected accept once cooldown elapsed")
	}
}

func TestSendEventFailsWhenNotConnected(t *testing.T) {
	b := NewBridge(&fakeListener{})
	if err := b.SendEvent(wire.WMEvent{Kind: wire.WMEventMap}); err == nil {
		t.Fatalf("expected error sending with no WM connected")
	}
}

func TestSendEventWritesFramedEvent(t *testing.T) {
	conn := &fakeConn{}
	l := &fakeListener{pending: conn}
	b := NewBridge(l)
	b.Pump() // accept

	if err := b.SendEvent(wire.WMEvent{Kind: wire.WMEventMap, SurfaceID: 9}); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}
	h, err := wire.DecodeHeader(conn.out[:wire.HeaderLen])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if h.Type != wire.TypeWMEvent {
		t.Fatalf("got type %v, want WM_EVENT", h.Type)
	}
	ev, err := wire.DecodeWMEvent(conn.out[wire.HeaderLen:])
	if err != nil {
		t.Fatalf("DecodeWMEvent: %v", err)
	}
	if ev.Kind != wire.WMEventMap || ev.SurfaceID != 9 {
		t.Fatalf("got %+v, want Kind=Map SurfaceID=9", ev)
	}
}

func TestSendEventDisconnectsOnWriteError(t *testing.T) {
	conn := &fakeConn{closed: true} // Write fails immediately
	l := &fakeListener{pending: conn}
	b := NewBridge(l)
	b.Pump() // accept

	if err := b.SendEvent(wire.WMEvent{Kind: wire.WMEventMap}); err == nil {
		t.Fatalf("expected write error")
	}
	if b.Connected() {
		t.Fatalf("expected disconnect after write error")
	}
}
