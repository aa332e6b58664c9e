package wm

import (
	"fmt"

	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/internal/ringbuf"
	"yulacomp.dev/display/internal/shmseg"
	"yulacomp.dev/display/internal/wire"
	"yulacomp.dev/display/wm/bar"
)

// BarClient is the WM acting as an ordinary compositor client for its own
// bar surface (spec.md §4.8): HELLO, ATTACH_SHM_NAME, COMMIT, same as any
// application, over the regular client endpoint rather than the WM
// endpoint CompositorClient uses.
type BarClient struct {
	conn ipc.Conn
	recv *ringbuf.Ring
	seq  uint32

	seg              *shmseg.Segment
	w, h, stride     int
	attached         bool
	pid              uint32
}

// NewBarClient wraps a dialed connection to the regular client endpoint.
func NewBarClient(conn ipc.Conn, pid uint32) *BarClient {
	return &BarClient{conn: conn, recv: ringbuf.New(2 * wire.MaxFrame), pid: pid}
}

func (b *BarClient) nextSeq() uint32 { b.seq++; return b.seq }

// Open sends HELLO then ATTACH_SHM_NAME for a w x h BGRA8888 bar buffer,
// allocating the backing shared memory.
func (b *BarClient) Open(w, h int) error {
	if _, err := b.conn.Write(wire.EncodeFrame(wire.TypeHello, b.nextSeq(), wire.EncodeHello(wire.Hello{Pid: b.pid}))); err != nil {
		return fmt.Errorf("wm: bar HELLO: %w", err)
	}
	stride := w
	size := h * stride * 4
	seg, err := shmseg.Create(fmt.Sprintf("ywm-bar-%d", b.pid), size)
	if err != nil {
		return fmt.Errorf("wm: bar shm create: %w", err)
	}
	msg := wire.AttachShmName{
		SurfaceID: bar.SurfaceID, W: uint32(w), H: uint32(h), Stride: uint32(stride), Size: uint32(size),
		Name: seg.Name(),
	}
	if _, err := b.conn.Write(wire.EncodeFrame(wire.TypeAttachShmName, b.nextSeq(), wire.EncodeAttachShmName(msg))); err != nil {
		seg.Close()
		seg.Unlink()
		return fmt.Errorf("wm: bar ATTACH_SHM_NAME: %w", err)
	}
	b.seg, b.w, b.h, b.stride = seg, w, h, stride
	b.attached = true
	return nil
}

// Pixels returns the bar's writable BGRA8888 buffer.
func (b *BarClient) Pixels() []byte {
	if b.seg == nil {
		return nil
	}
	return b.seg.Bytes()
}

// Stride is the bar buffer's row stride in pixels.
func (b *BarClient) Stride() int { return b.stride }

// Commit signals the buffer is ready to present, requesting a raise so the
// bar stays above ordinary client surfaces on every commit, including
// after a reconnect where z-order has reset.
func (b *BarClient) Commit() error {
	if !b.attached {
		return fmt.Errorf("wm: bar commit before attach")
	}
	msg := wire.Commit{SurfaceID: bar.SurfaceID, X: 0, Y: 0, Flags: wire.FlagRaise}
	_, err := b.conn.Write(wire.EncodeFrame(wire.TypeCommit, b.nextSeq(), wire.EncodeCommit(msg)))
	return err
}

// Pump drains and discards any buffered ACK/ERROR/INPUT replies, keeping
// the receive ring from filling; the bar doesn't act on input directly
// (pointer clicks on it arrive as WM_EVENT CLICK/POINTER via
// CompositorClient instead).
func (b *BarClient) Pump() {
	for {
		buf := make([]byte, 4096)
		n, err, wouldBlock := b.conn.TryRead(buf)
		if wouldBlock || err != nil || n == 0 {
			break
		}
		b.recv.Push(buf[:n])
	}
	hdr := make([]byte, wire.HeaderLen)
	for {
		if b.recv.Len() < 4 {
			return
		}
		var magic [4]byte
		b.recv.Peek(0, magic[:])
		if !wire.PeekMagic(magic[:]) {
			b.recv.Drop(1)
			continue
		}
		if b.recv.Len() < wire.HeaderLen {
			return
		}
		b.recv.Peek(0, hdr)
		h, err := wire.DecodeHeader(hdr)
		if err != nil {
			b.recv.Drop(1)
			continue
		}
		total := wire.HeaderLen + int(h.Len)
		if b.recv.Len() < total {
			return
		}
		b.recv.Drop(total)
	}
}

// Close releases the bar's shared memory.
func (b *BarClient) Close() {
	if b.seg != nil {
		b.seg.Close()
		b.seg.Unlink()
		b.seg = nil
	}
}
