package compositor

import (
	"yulacomp.dev/display/internal/geom"
	"yulacomp.dev/display/internal/shmseg"
)

// Rect is the screen/client-space rectangle type used throughout the
// compositor package.
type Rect = geom.Rect

// Surface is one client-owned pixel surface (spec.md §3).
type Surface struct {
	ID        uint32
	X, Y      int
	W, H      int
	Stride    int
	Z         uint64
	CommitGen uint64
	Attached  bool
	Committed bool

	shmName string
	shmSize int
	client  *shmseg.Segment // the client-supplied buffer; not owned

	shadow *shadowPair // exclusively owned
}

// Geometry returns the surface's current placement rectangle.
func (s *Surface) Geometry() Rect {
	return Rect{X: s.X, Y: s.Y, W: s.W, H: s.H}
}

// validGeometry reports the invariants of spec.md §3: stride >= w, size
// covers h*stride*4.
func (s *Surface) validGeometry(w, h, stride, size int) bool {
	if stride < w {
		return false
	}
	if size < h*stride*4 {
		return false
	}
	return true
}

// release frees everything the surface exclusively owns (shadow buffers);
// the client-supplied buffer mapping, if any, is dropped but not unlinked
// (the client owns its lifecycle).
func (s *Surface) release() {
	if s.shadow != nil {
		s.shadow.close()
		s.shadow = nil
	}
	s.client = nil
}
