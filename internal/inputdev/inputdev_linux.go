package inputdev

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// mouseRecordSize is the wire size of one {x, y, buttons} struct (spec.md
// §6(4)): three little-endian 32-bit fields, read directly off the device
// node the same way fbdev reads a fixed ioctl struct.
const mouseRecordSize = 12

type linuxMouse struct {
	fd  int
	buf []byte
}

// OpenMouse opens the mouse device node at path non-blocking.
func OpenMouse(path string) (Mouse, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("inputdev: open mouse %s: %w", path, err)
	}
	return &linuxMouse{fd: fd, buf: make([]byte, mouseRecordSize*32)}, nil
}

// Sample reads every record currently buffered by the device and reports
// the most recent one; a compositor frame only needs the latest position.
func (m *linuxMouse) Sample() (MouseSample, bool) {
	n, err := unix.Read(m.fd, m.buf)
	if err != nil || n < mouseRecordSize {
		return MouseSample{}, false
	}
	off := n - n%mouseRecordSize - mouseRecordSize
	return MouseSample{
		X:       int32(binary.LittleEndian.Uint32(m.buf[off:])),
		Y:       int32(binary.LittleEndian.Uint32(m.buf[off+4:])),
		Buttons: binary.LittleEndian.Uint32(m.buf[off+8:]),
	}, true
}

func (m *linuxMouse) Close() error { return unix.Close(m.fd) }

// keyRecordSize is the wire size of one scancode event: the scancode byte
// (spec.md §6(5)) plus a press/release byte.
const keyRecordSize = 2

type linuxKeyboard struct {
	fd    int
	buf   []byte
	queue [][2]byte
}

// OpenKeyboard opens the keyboard device node at path non-blocking.
func OpenKeyboard(path string) (Keyboard, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("inputdev: open keyboard %s: %w", path, err)
	}
	return &linuxKeyboard{fd: fd, buf: make([]byte, keyRecordSize*64)}, nil
}

// Sample dequeues one buffered scancode event, refilling its queue from the
// device when empty.
func (k *linuxKeyboard) Sample() (KeySample, bool) {
	if len(k.queue) == 0 {
		n, err := unix.Read(k.fd, k.buf)
		if err != nil || n < keyRecordSize {
			return KeySample{}, false
		}
		for off := 0; off+keyRecordSize <= n; off += keyRecordSize {
			k.queue = append(k.queue, [2]byte{k.buf[off], k.buf[off+1]})
		}
	}
	if len(k.queue) == 0 {
		return KeySample{}, false
	}
	rec := k.queue[0]
	k.queue = k.queue[1:]
	state := KeyReleased
	if rec[1] != 0 {
		state = KeyPressed
	}
	return KeySample{Code: rec[0], State: state}, true
}

func (k *linuxKeyboard) Close() error { return unix.Close(k.fd) }
