package ipc

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// unixListener accepts rendezvous connections on a non-blocking Unix
// domain socket, then for each accepted peer mints a fresh pair of
// unidirectional, non-blocking pipes and hands the far ends across as
// ancillary data (golang.org/x/sys/unix's UnixRights/Sendmsg, the same
// SCM_RIGHTS technique helix-drm-manager's pkg/drm uses to hand a
// leased fd to a caller). The rendezvous socket never carries a session
// byte; it only gets two pipe fds into the peer's hands without a
// shared filesystem namespace for per-connection FIFOs. This reproduces
// comp_conn_t's fd_c2s_w/fd_s2c_r pair (usr/comp.h) without fork/exec
// fd inheritance, since sessions here are accepted from already-running,
// unrelated processes rather than spawned as children with the pipe
// fds passed on argv.
type unixListener struct {
	fd int
}

// Listen creates and binds a non-blocking listening rendezvous socket at
// the given path (the endpoint is removed first if stale).
func Listen(path string) (Listener, error) {
	_ = os.Remove(path)
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("ipc: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ipc: bind %s: %w", path, err)
	}
	if err := unix.Listen(fd, 16); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ipc: listen %s: %w", path, err)
	}
	return &unixListener{fd: fd}, nil
}

// TryAccept accepts one pending rendezvous, mints the session's c2s/s2c
// pipe pair, passes the far ends to the peer, and returns a Conn built
// on the near ends. A peer that can't be handed its fds is dropped
// (spec.md §6: "a client that cannot be allocated is dropped").
func (l *unixListener) TryAccept() (Conn, bool) {
	rfd, _, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK)
	if err != nil {
		return nil, false
	}
	defer unix.Close(rfd)

	c2s := make([]int, 2)
	if err := unix.Pipe2(c2s, unix.O_NONBLOCK); err != nil {
		return nil, false
	}
	c2sR, c2sW := c2s[0], c2s[1]

	s2c := make([]int, 2)
	if err := unix.Pipe2(s2c, unix.O_NONBLOCK); err != nil {
		unix.Close(c2sR)
		unix.Close(c2sW)
		return nil, false
	}
	s2cR, s2cW := s2c[0], s2c[1]

	rights := unix.UnixRights(c2sW, s2cR)
	if err := unix.Sendmsg(rfd, []byte{0}, rights, nil, 0); err != nil {
		unix.Close(c2sR)
		unix.Close(c2sW)
		unix.Close(s2cR)
		unix.Close(s2cW)
		return nil, false
	}
	// The peer now owns its own duplicates of c2sW/s2cR; close ours.
	unix.Close(c2sW)
	unix.Close(s2cR)
	return &unixConn{readFD: c2sR, writeFD: s2cW}, true
}

func (l *unixListener) Close() error { return unix.Close(l.fd) }

// Connect dials a listening endpoint, completes the fd handoff, and
// returns a Conn built on the two pipe fds the listener minted (used by
// clients and by the WM to reach the compositor_wm endpoint).
func Connect(path string) (Conn, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("ipc: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Connect(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ipc: connect %s: %w", path, err)
	}
	defer unix.Close(fd)

	buf := make([]byte, 1)
	oob := make([]byte, unix.CmsgSpace(2*4))
	_, oobn, _, _, err := unix.Recvmsg(fd, buf, oob, 0)
	if err != nil {
		return nil, fmt.Errorf("ipc: connect %s: fd handoff: %w", path, err)
	}
	scms, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil || len(scms) == 0 {
		return nil, fmt.Errorf("ipc: connect %s: no control message", path)
	}
	fds, err := unix.ParseUnixRights(&scms[0])
	if err != nil {
		return nil, fmt.Errorf("ipc: connect %s: parse rights: %w", path, err)
	}
	if len(fds) != 2 {
		for _, f := range fds {
			unix.Close(f)
		}
		return nil, fmt.Errorf("ipc: connect %s: expected 2 fds, got %d", path, len(fds))
	}
	c2sW, s2cR := fds[0], fds[1]
	return &unixConn{readFD: s2cR, writeFD: c2sW}, nil
}

// unixConn is a pair of unidirectional, non-blocking pipe fds: readFD
// for incoming bytes, writeFD for outgoing, matching comp_conn_t's
// fd_s2c_r/fd_c2s_w split (the listener side of a session holds the
// mirror pair, c2sR/s2cW).
type unixConn struct {
	readFD, writeFD int
	closed          bool
}

func (c *unixConn) Read(p []byte) (int, error) {
	return unix.Read(c.readFD, p)
}

func (c *unixConn) Write(p []byte) (int, error) {
	return unix.Write(c.writeFD, p)
}

func (c *unixConn) TryRead(buf []byte) (int, error, bool) {
	n, err := unix.Read(c.readFD, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, nil, true
		}
		return 0, err, false
	}
	return n, nil, false
}

func (c *unixConn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err1 := unix.Close(c.readFD)
	err2 := unix.Close(c.writeFD)
	if err1 != nil {
		return err1
	}
	return err2
}
