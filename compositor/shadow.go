package compositor

import (
	"fmt"
	"math/rand"

	"yulacomp.dev/display/internal/shmseg"
)

// sampleCount is the number of pseudo-random pixels sampled before and
// after the copy to detect tearing (spec.md §4.3).
const sampleCount = 16

// shadowPair is a surface's double-buffered shadow: two shared-memory
// regions sized h*stride*4, with at most one "active" (valid, presentable)
// at a time. Owned exclusively by the Surface; on geometry change it is
// replaced wholesale, never mutated in place (spec.md §9).
type shadowPair struct {
	bufs       [2]*shmseg.Segment
	active     int  // index into bufs of the last successfully flipped shadow
	validFlags [2]bool
	w, h, stride int
}

// newShadowPair allocates two shm segments sized for (w, h, stride).
func newShadowPair(namePrefix string, w, h, stride int) (*shadowPair, error) {
	size := h * stride * 4
	var segs [2]*shmseg.Segment
	for i := range segs {
		seg, err := shmseg.Create(fmt.Sprintf("%s-shadow%d", namePrefix, i), size)
		if err != nil {
			for j := 0; j < i; j++ {
				segs[j].Close()
				segs[j].Unlink()
			}
			return nil, err
		}
		segs[i] = seg
	}
	return &shadowPair{bufs: segs, active: -1, w: w, h: h, stride: stride}, nil
}

// matches reports whether the pair is already sized for (w, h, stride); a
// mismatch means the caller must allocate a fresh pair instead of reusing
// this one (spec.md §4.3: "changing any triggers a free-and-reallocate").
func (p *shadowPair) matches(w, h, stride int) bool {
	return p != nil && p.w == w && p.h == h && p.stride == stride
}

func (p *shadowPair) close() {
	for _, seg := range p.bufs {
		if seg != nil {
			seg.Close()
			seg.Unlink()
		}
	}
}

// activeBytes returns the currently valid shadow's bytes, or nil if no
// snapshot has ever succeeded.
func (p *shadowPair) activeBytes() []byte {
	if p == nil || p.active < 0 || !p.validFlags[p.active] {
		return nil
	}
	return p.bufs[p.active].Bytes()
}

// snapshot attempts a non-tearing copy of the client buffer into the
// inactive shadow slot (spec.md §4.3):
//  1. sample sampleCount pseudo-random pixels from src
//  2. copy all of src into the inactive shadow
//  3. re-sample the same pixels from src and compare
//
// If any sample differs pre/post (or from what landed in the shadow), the
// snapshot is abandoned and that shadow slot is left invalid; the caller
// falls back to the live client pointer. On success, the inactive slot
// becomes active.
func (p *shadowPair) snapshot(src []byte, rng *rand.Rand) (ok bool) {
	if p == nil || len(src) == 0 {
		return false
	}
	inactive := 0
	if p.active == 0 {
		inactive = 1
	}
	dst := p.bufs[inactive].Bytes()
	if len(dst) != len(src) {
		p.validFlags[inactive] = false
		return false
	}

	n := sampleCount
	if n > len(src) {
		n = len(src)
	}
	offsets := make([]int, n)
	before := make([]byte, n)
	for i := 0; i < n; i++ {
		off := rng.Intn(len(src))
		offsets[i] = off
		before[i] = src[off]
	}

	copy(dst, src)

	for i, off := range offsets {
		after := src[off]
		if after != before[i] || dst[off] != before[i] {
			p.validFlags[inactive] = false
			return false
		}
	}

	p.validFlags[inactive] = true
	p.active = inactive
	return true
}
