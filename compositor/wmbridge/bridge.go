// Package wmbridge implements the compositor's side of the compositor<->WM
// coupling (spec.md §4.5, §4.9): accepting the single WM connection,
// framing WM_EVENT/WM_CMD messages, and the cooldown-gated respawn/replay
// cycle on disconnect. It knows nothing about surfaces or clients — the
// compositor supplies replay data through ReplaySurface when a WM just
// (re)connected.
package wmbridge

import (
	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/internal/ringbuf"
	"yulacomp.dev/display/internal/wire"
)

// RespawnCooldownTicks is how many frame ticks the compositor waits after a
// WM disconnect before attempting to respawn it (spec.md §4.9 says "after
// a cooldown" without specifying a shape; axwm's reconnect loop uses a
// simple tick-counted cooldown, carried forward here — see DESIGN.md).
const RespawnCooldownTicks = 120 // ~2s at 60Hz

// Bridge owns the single WM connection's lifecycle.
type Bridge struct {
	listener ipc.Listener
	conn     ipc.Conn
	recv     *ringbuf.Ring
	seq      uint32

	cooldown int
}

// NewBridge wraps a listener for the "compositor_wm" endpoint.
func NewBridge(listener ipc.Listener) *Bridge {
	return &Bridge{listener: listener}
}

// Connected reports whether a WM is currently attached.
func (b *Bridge) Connected() bool { return b.conn != nil }

// PumpResult is what one frame-tick of bridge activity produced.
type PumpResult struct {
	JustConnected    bool
	JustDisconnected bool
	Cmds             []wire.WMCmd
}

// Pump accepts a pending WM connection (if none is attached and the
// cooldown has elapsed), drains any buffered WM_CMD frames, and detects
// transport failure/EOF, tearing the connection down and starting the
// respawn cooldown (spec.md §4.9: focus/grab/preview are cleared by the
// caller on JustDisconnected).
func (b *Bridge) Pump() PumpResult {
	var res PumpResult
	if b.conn == nil {
		if b.cooldown > 0 {
			b.cooldown--
			return res
		}
		if conn, ok := b.listener.TryAccept(); ok {
			b.conn = conn
			b.recv = ringbuf.New(2 * wire.MaxFrame)
			b.seq = 0
			res.JustConnected = true
		}
		return res
	}

	for {
		cap := b.recv.Free() - wire.MaxFrame
		if cap <= 0 {
			break
		}
		buf := make([]byte, cap)
		n, err, wouldBlock := b.conn.TryRead(buf)
		if wouldBlock {
			break
		}
		if err != nil || n == 0 {
			b.disconnect()
			res.JustDisconnected = true
			return res
		}
		b.recv.Push(buf[:n])
		if n < cap {
			break
		}
	}

	hdr := make([]byte, wire.HeaderLen)
	for {
		if b.recv.Len() < 4 {
			break
		}
		var magic [4]byte
		b.recv.Peek(0, magic[:])
		if !wire.PeekMagic(magic[:]) {
			b.recv.Drop(1)
			continue
		}
		if b.recv.Len() < wire.HeaderLen {
			break
		}
		b.recv.Peek(0, hdr)
		h, err := wire.DecodeHeader(hdr)
		if err != nil {
			b.recv.Drop(1)
			continue
		}
		total := wire.HeaderLen + int(h.Len)
		if b.recv.Len() < total {
			break
		}
		payload := make([]byte, h.Len)
		if h.Len > 0 {
			b.recv.Peek(wire.HeaderLen, payload)
		}
		b.recv.Drop(total)
		if h.Type != wire.TypeWMCmd {
			continue
		}
		cmd, err := wire.DecodeWMCmd(payload)
		if err != nil {
			continue
		}
		res.Cmds = append(res.Cmds, cmd)
	}
	return res
}

func (b *Bridge) disconnect() {
	if b.conn != nil {
		b.conn.Close()
	}
	b.conn = nil
	b.recv = nil
	b.cooldown = RespawnCooldownTicks
}

// SendEvent frames and writes a WM_EVENT; returns an error (treated as a
// disconnect by the caller's next Pump) if the WM is unreachable.
func (b *Bridge) SendEvent(e wire.WMEvent) error {
	if b.conn == nil {
		return errNotConnected
	}
	buf := wire.EncodeFrame(wire.TypeWMEvent, 0, wire.EncodeWMEvent(e))
	_, err := b.conn.Write(buf)
	if err != nil {
		b.disconnect()
	}
	return err
}

var errNotConnected = &notConnectedError{}

type notConnectedError struct{}

func (*notConnectedError) Error() string { return "wmbridge: no WM connected" }
