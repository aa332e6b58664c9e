package compositor

import (
	"errors"

	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/internal/wire"
)

// fakeConn is an in-memory ipc.Conn backed by a byte queue, letting parser
// tests feed bytes in arbitrary chunks without a real socket.
type fakeConn struct {
	in           []byte
	out          []byte
	eof          bool
	closed       bool
	maxReadChunk int // 0 means unlimited
}

var _ ipc.Conn = (*fakeConn)(nil)

func (c *fakeConn) feed(b []byte) { c.in = append(c.in, b...) }

func (c *fakeConn) Read(p []byte) (int, error) {
	n, _, block := c.TryRead(p)
	if block {
		return 0, errors.New("fakeConn: would block")
	}
	return n, nil
}

func (c *fakeConn) Write(p []byte) (int, error) {
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
	src := c.in
	if c.maxReadChunk > 0 && len(src) > c.maxReadChunk {
		src = src[:c.maxReadChunk]
	}
	n := copy(buf, src)
	c.in = c.in[n:]
	return n, nil, false
}

func (c *fakeConn) Close() error { c.closed = true; return nil }

func newTestSession(conn ipc.Conn) *Session {
	return newSession(1, conn, 42)
}

func helloFrame(seq uint32, pid uint32) []byte {
	return wire.EncodeFrame(wire.TypeHello, seq, wire.EncodeHello(wire.Hello{Pid: pid}))
}
