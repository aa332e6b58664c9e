// Package ipc names the pipe-based IPC accept/connect facility (spec.md
// §6(7)): two named endpoints, "compositor" for clients and
// "compositor_wm" for the single WM, each a pair of unidirectional byte
// streams. Accept is non-blocking; this package is a thin, syscall-backed
// facade, not a transport reimplementation — the same role
// golang.org/x/sys/unix plays for ehrlich-b-go-ublk's raw fd plumbing.
package ipc

import "io"

// Conn is one accepted/connected endpoint: a readable and a writable byte
// stream, independently non-blocking.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
	// TryRead performs one non-blocking read attempt, returning
	// (0, nil, false) when nothing is currently available rather than
	// blocking, distinct from Read's blocking io.Reader contract.
	TryRead(buf []byte) (n int, err error, wouldBlock bool)
}

// Listener accepts Conns on a named endpoint. Accept never blocks: it
// returns (nil, false) immediately when no connection is pending.
type Listener interface {
	TryAccept() (Conn, bool)
	Close() error
}
