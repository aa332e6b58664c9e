package compositor

import (
	"yulacomp.dev/display/internal/wire"
)

// Frame is one fully decoded, dispatch-ready message pulled off a
// session's receive ring.
type Frame struct {
	Header  wire.Header
	Payload []byte
}

// pumpTransport drains the session's connection in bounded chunks — capped
// at "remaining ring capacity minus one max frame" so the ring never fails
// to accept a full incoming frame (spec.md §4.1) — and latches EOF.
func (s *Session) pumpTransport() {
	for {
		cap := s.recv.Free() - wire.MaxFrame
		if cap <= 0 {
			return
		}
		chunk := make([]byte, cap)
		n, err, wouldBlock := s.conn.TryRead(chunk)
		if wouldBlock {
			return
		}
		if err != nil || n == 0 {
			s.eof = true
			return
		}
		s.recv.Push(chunk[:n])
		if n < cap {
			return
		}
	}
}

// drainFrames parses as many complete frames as are currently buffered,
// resynchronizing on bad magic/version/length one byte at a time (spec.md
// §4.1), and returns them in arrival order.
func (s *Session) drainFrames() []Frame {
	var out []Frame
	hdr := make([]byte, wire.HeaderLen)
	for {
		if s.recv.Len() < 4 {
			return out
		}
		var magicBuf [4]byte
		s.recv.Peek(0, magicBuf[:])
		if !wire.PeekMagic(magicBuf[:]) {
			s.recv.Drop(1)
			continue
		}
		if s.recv.Len() < wire.HeaderLen {
			return out
		}
		s.recv.Peek(0, hdr)
		h, err := wire.DecodeHeader(hdr)
		if err != nil {
			s.recv.Drop(1)
			continue
		}
		total := wire.HeaderLen + int(h.Len)
		if s.recv.Len() < total {
			return out
		}
		payload := make([]byte, h.Len)
		if h.Len > 0 {
			s.recv.Peek(wire.HeaderLen, payload)
		}
		s.recv.Drop(total)
		out = append(out, Frame{Header: h, Payload: payload})
	}
}

// Pump drains the transport and parser for one client, returning the
// frames ready for dispatch this tick and whether the session should now
// be torn down (EOF latched and all buffered complete frames consumed).
func (s *Session) Pump() (frames []Frame, shouldTeardown bool) {
	s.pumpTransport()
	frames = s.drainFrames()
	shouldTeardown = s.eof && s.recv.Len() < 4
	return frames, shouldTeardown
}

// writeFrame encodes and writes a complete frame, returning any transport
// error (which the caller treats as fatal for the session, spec.md §7).
func (s *Session) writeFrame(typ wire.Type, seq uint32, payload []byte) error {
	buf := wire.EncodeFrame(typ, seq, payload)
	_, err := s.conn.Write(buf)
	return err
}

// replyAck sends ACK{req_type, surface_id, flags} at the given seq.
func (s *Session) replyAck(seq uint32, reqType wire.Type, surfaceID uint32, flags uint32) error {
	return s.writeFrame(wire.TypeAck, seq, wire.EncodeAck(wire.Ack{
		ReqType: reqType, SurfaceID: surfaceID, Flags: flags,
	}))
}

// replyError sends ERROR{req_type, code, surface_id, detail} at the given
// seq; the request is not applied and session state is unchanged (spec.md
// §7).
func (s *Session) replyError(seq uint32, reqType wire.Type, code wire.ErrorCode, surfaceID uint32, detail uint32) error {
	return s.writeFrame(wire.TypeError, seq, wire.EncodeError(wire.ErrorMsg{
		ReqType: reqType, Code: code, SurfaceID: surfaceID, Detail: detail,
	}))
}

// sendAsync sends a seq=0 asynchronous message (input events, ring
// announcements).
func (s *Session) sendAsync(typ wire.Type, payload []byte) error {
	return s.writeFrame(typ, 0, payload)
}
