package fbdev

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// linuxDevice maps /dev/fb0 directly. Acquire/Release are modeled as a
// simple mutex since this process is the framebuffer's sole client; a
// richer rendezvous (e.g. with a VT switch handler) is outside this core's
// scope.
type linuxDevice struct {
	fd   int
	info Info
	data []byte
	mu   sync.Mutex
}

// Open maps the framebuffer at path (conventionally "/dev/fb0") after
// reading its fixed geometry via the fbdev ioctl ABI.
func Open(path string) (Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fbdev: open %s: %w", path, err)
	}
	info, err := readInfo(fd)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	size := info.Height * info.Pitch
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("fbdev: mmap: %w", err)
	}
	return &linuxDevice{fd: fd, info: info, data: data}, nil
}

func (d *linuxDevice) Info() Info { return d.info }

func (d *linuxDevice) Acquire() ([]byte, error) {
	d.mu.Lock()
	return d.data, nil
}

func (d *linuxDevice) Release() {
	d.mu.Unlock()
}

func (d *linuxDevice) Close() error {
	if err := unix.Munmap(d.data); err != nil {
		return err
	}
	return unix.Close(d.fd)
}
