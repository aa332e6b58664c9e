// Package shmseg provides a small RAII wrapper over a POSIX shared-memory
// segment, following the design note in spec.md §9: a (fd, mapped_ptr,
// size) triple released together on Close, never mutated in place — on a
// geometry change the caller creates a new Segment and drops the old one.
//
// It is built directly on golang.org/x/sys/unix, the same package
// ehrlich-b-go-ublk wraps raw mmap/shm syscalls with, rather than hand
// rolling cgo bindings.
package shmseg

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Segment owns one mapped shared-memory region.
type Segment struct {
	fd     int
	data   []byte
	name   string
	closed bool
}

// Create allocates a new named shared-memory segment of the given size and
// maps it read-write. The name is a short, non-path identifier; this
// mirrors shm_create_named/shm_open_named/mmap from spec.md §6(6).
func Create(name string, size int) (*Segment, error) {
	fd, err := unix.ShmOpen(shmPath(name), unix.O_CREAT|unix.O_RDWR|unix.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("shmseg: create %q: %w", name, err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		unix.ShmUnlink(shmPath(name))
		return nil, fmt.Errorf("shmseg: truncate %q: %w", name, err)
	}
	return mapSegment(fd, name, size)
}

// Open maps an existing named segment read-write without creating it,
// mirroring a client attaching to a compositor-created region.
func Open(name string, size int) (*Segment, error) {
	fd, err := unix.ShmOpen(shmPath(name), unix.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("shmseg: open %q: %w", name, err)
	}
	return mapSegment(fd, name, size)
}

func mapSegment(fd int, name string, size int) (*Segment, error) {
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shmseg: mmap %q: %w", name, err)
	}
	return &Segment{fd: fd, data: data, name: name}, nil
}

// shmPath turns a bare name into the "/name" form POSIX shm_open expects.
func shmPath(name string) string {
	if len(name) > 0 && name[0] == '/' {
		return name
	}
	return "/" + name
}

// Bytes returns the mapped region. The slice is valid until Close.
func (s *Segment) Bytes() []byte { return s.data }

// Name returns the segment's shm name.
func (s *Segment) Name() string { return s.name }

// Unlink removes the named segment so that only existing mappings survive
// (spec.md §4.2: "the named shared region is then unlinked so only the
// mapping survives").
func (s *Segment) Unlink() error {
	if err := unix.ShmUnlink(shmPath(s.name)); err != nil {
		return fmt.Errorf("shmseg: unlink %q: %w", s.name, err)
	}
	return nil
}

// Close unmaps and closes the segment's fd. Safe to call once; a second
// call is a programmer error, matching the wayland.Display double-close
// panic convention from the teacher pack.
func (s *Segment) Close() error {
	if s.closed {
		panic("shmseg: double close of Segment")
	}
	s.closed = true
	var err error
	if s.data != nil {
		if e := unix.Munmap(s.data); e != nil {
			err = fmt.Errorf("shmseg: munmap %q: %w", s.name, e)
		}
		s.data = nil
	}
	if e := unix.Close(s.fd); e != nil && err == nil {
		err = fmt.Errorf("shmseg: close %q: %w", s.name, e)
	}
	return err
}
