// Package shmring implements the lock-free SPSC input-event ring shared
// between the compositor (producer) and one client (consumer), laid out
// exactly as spec.md §4.2 describes: a header followed by a fixed array of
// events. Go has no raw memory-fence primitive, so the release/acquire
// discipline on the w/r indices is implemented with sync/atomic loads and
// stores on those fields, the idiomatic Go equivalent — the same way
// paultag-go-diskring guards its Cursor head/tail pair.
package shmring

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// EventKind mirrors wire.InputKind for events delivered via the ring.
type EventKind uint32

const (
	EventPointerMove EventKind = iota + 1
	EventPointerButton
	EventKey
)

// Event is one fixed-size slot in the ring's event array.
type Event struct {
	Kind      EventKind
	X, Y      int32
	SurfaceID uint32
	Keycode   uint32
	Buttons   uint32
}

// EventSize is the encoded byte size of one Event slot.
const EventSize = 4 * 6

// FlagWaitR is set by the consumer before blocking, and cleared by the
// producer when it wakes the consumer (futex-like field, §4.2).
const FlagWaitR uint32 = 1 << 0

// HeaderMagic identifies a valid ring header.
const HeaderMagic uint32 = 0x52504e49 // "INPR"

// HeaderVersion is the only ring layout version this implementation speaks.
const HeaderVersion uint32 = 1

// headerSize is the byte layout: magic, version, capacity, mask, head(r),
// tail(w), dropped, flags — all u32.
const headerSize = 4 * 8

// Ring is a view over a shared-memory-backed input event ring. The backing
// byte slice must outlive the Ring (callers own the shmseg.Segment).
type Ring struct {
	buf []byte // header + cap*EventSize
	cap uint32
}

// Layout computes the total byte size required for a ring of the given
// event capacity (must be a power of two).
func Layout(capacity uint32) int {
	return headerSize + int(capacity)*EventSize
}

// Init formats buf (which must be Layout(capacity) bytes) as a fresh empty
// ring and returns a Ring view over it. Called by the producer.
func Init(buf []byte, capacity uint32) *Ring {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		panic("shmring: capacity must be a nonzero power of two")
	}
	if len(buf) < Layout(capacity) {
		panic("shmring: buffer too small for capacity")
	}
	r := &Ring{buf: buf, cap: capacity}
	binary.LittleEndian.PutUint32(buf[0:4], HeaderMagic)
	binary.LittleEndian.PutUint32(buf[4:8], HeaderVersion)
	binary.LittleEndian.PutUint32(buf[8:12], capacity)
	binary.LittleEndian.PutUint32(buf[12:16], capacity-1)
	r.storeHead(0)
	r.storeTail(0)
	r.storeDropped(0)
	r.storeFlags(0)
	return r
}

// Open returns a Ring view over an already-initialized buffer (consumer
// side, after mmap).
func Open(buf []byte) *Ring {
	capacity := binary.LittleEndian.Uint32(buf[8:12])
	return &Ring{buf: buf, cap: capacity}
}

func (r *Ring) field(off int) *uint32 {
	return (*uint32)(unsafe.Pointer(&r.buf[off]))
}

func (r *Ring) loadHead() uint32    { return atomic.LoadUint32(r.field(16)) }
func (r *Ring) storeHead(v uint32)  { atomic.StoreUint32(r.field(16), v) }
func (r *Ring) loadTail() uint32    { return atomic.LoadUint32(r.field(20)) }
func (r *Ring) storeTail(v uint32)  { atomic.StoreUint32(r.field(20), v) }
func (r *Ring) loadDropped() uint32 { return atomic.LoadUint32(r.field(24)) }
func (r *Ring) storeDropped(v uint32) {
	atomic.StoreUint32(r.field(24), v)
}
func (r *Ring) LoadFlags() uint32  { return atomic.LoadUint32(r.field(28)) }
func (r *Ring) storeFlags(v uint32) { atomic.StoreUint32(r.field(28), v) }

// Dropped returns the monotone count of events dropped due to overflow.
func (r *Ring) Dropped() uint32 { return r.loadDropped() }

// SetWaiting marks/clears the consumer's FlagWaitR bit.
func (r *Ring) SetWaiting(waiting bool) {
	f := r.LoadFlags()
	if waiting {
		f |= FlagWaitR
	} else {
		f &^= FlagWaitR
	}
	r.storeFlags(f)
}

func (r *Ring) slot(i uint32) []byte {
	off := headerSize + int(i&(r.cap-1))*EventSize
	return r.buf[off : off+EventSize]
}

func encodeEvent(dst []byte, e Event) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(e.Kind))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(e.X))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(e.Y))
	binary.LittleEndian.PutUint32(dst[12:16], e.SurfaceID)
	binary.LittleEndian.PutUint32(dst[16:20], e.Keycode)
	binary.LittleEndian.PutUint32(dst[20:24], e.Buttons)
}

func decodeEvent(src []byte) Event {
	return Event{
		Kind:      EventKind(binary.LittleEndian.Uint32(src[0:4])),
		X:         int32(binary.LittleEndian.Uint32(src[4:8])),
		Y:         int32(binary.LittleEndian.Uint32(src[8:12])),
		SurfaceID: binary.LittleEndian.Uint32(src[12:16]),
		Keycode:   binary.LittleEndian.Uint32(src[16:20]),
		Buttons:   binary.LittleEndian.Uint32(src[20:24]),
	}
}

// Push is called by the producer (compositor). When the ring is full it
// drops the oldest event to make room, incrementing Dropped, per §4.2.
func (r *Ring) Push(e Event) {
	head := r.loadHead() // acquire: synchronizes with the consumer's advance
	tail := r.loadTail()
	if tail-head >= r.cap {
		// Full: drop oldest by advancing head (never observed by the
		// consumer as a torn read since it's ring's full-array move).
		head++
		r.storeDropped(r.loadDropped() + 1)
	}
	encodeEvent(r.slot(tail), e)
	r.storeTail(tail + 1) // release: publishes the write above
	if head != r.loadHead() {
		r.storeHead(head)
	}
}

// Pop is called by the consumer (client). Returns false when the ring is
// empty.
func (r *Ring) Pop() (Event, bool) {
	head := r.loadHead()
	tail := r.loadTail() // acquire: synchronizes with the producer's write
	if head == tail {
		return Event{}, false
	}
	e := decodeEvent(r.slot(head))
	r.storeHead(head + 1) // release: frees the slot for reuse
	return e, true
}

// Count returns the number of unread events (w - r).
func (r *Ring) Count() uint32 {
	return r.loadTail() - r.loadHead()
}
