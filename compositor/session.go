package compositor

import (
	"math/rand"

	"yulacomp.dev/display/internal/ipc"
	"yulacomp.dev/display/internal/ringbuf"
	"yulacomp.dev/display/internal/shmring"
	"yulacomp.dev/display/internal/shmseg"
	"yulacomp.dev/display/internal/wire"
)

// ClientID is an opaque small integer identifying a client session.
type ClientID uint32

// Session is one connected client (spec.md §3): its transport, receive
// ring, outgoing sequence counter, and surface table.
type Session struct {
	ID       ClientID
	Pid      uint32
	conn     ipc.Conn
	recv     *ringbuf.Ring
	outSeq   uint32
	surfaces map[uint32]*Surface
	rng      *rand.Rand

	inputRing    *shmring.Ring
	inputRingShm *shmseg.Segment
	inputRingAck bool

	eof         bool
	tornDown    bool
}

// newSession wraps an accepted connection in fresh session state.
func newSession(id ClientID, conn ipc.Conn, seed int64) *Session {
	return &Session{
		ID:       id,
		conn:     conn,
		recv:     ringbuf.New(2 * wire.MaxFrame),
		surfaces: make(map[uint32]*Surface, 8),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// nextOutSeq allocates the next locally-generated outgoing sequence
// number, used for compositor-initiated replies.
func (s *Session) nextOutSeq() uint32 {
	s.outSeq++
	return s.outSeq
}

// Surface looks up a surface by client-scoped id.
func (s *Session) Surface(id uint32) (*Surface, bool) {
	sf, ok := s.surfaces[id]
	return sf, ok
}

// Surfaces returns a snapshot slice of all live surfaces, for iteration
// during composition and teardown. Order is unspecified.
func (s *Session) Surfaces() []*Surface {
	out := make([]*Surface, 0, len(s.surfaces))
	for _, sf := range s.surfaces {
		out = append(out, sf)
	}
	return out
}

// teardown releases every owned resource exactly once: surfaces (and their
// shadows), the input ring mapping, and the transport.
func (s *Session) teardown() []*Surface {
	if s.tornDown {
		return nil
	}
	s.tornDown = true
	released := make([]*Surface, 0, len(s.surfaces))
	for id, sf := range s.surfaces {
		sf.release()
		released = append(released, sf)
		delete(s.surfaces, id)
	}
	if s.inputRingShm != nil {
		s.inputRingShm.Close()
		s.inputRingShm = nil
	}
	s.conn.Close()
	return released
}
