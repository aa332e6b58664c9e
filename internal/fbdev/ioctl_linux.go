package fbdev

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux fbdev ioctl numbers (linux/fb.h); kept as untyped consts rather
// than importing a cgo header, the same "just the numbers we need" style
// ehrlich-b-go-ublk uses for its io_uring ioctl constants.
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// varScreenInfoSize and fixScreenInfoSize are the fixed struct sizes the
// kernel ABI defines for fb_var_screeninfo/fb_fix_screeninfo on Linux.
const (
	varScreenInfoSize = 160
	fixScreenInfoSize = 80
)

func readInfo(fd int) (Info, error) {
	var vbuf [varScreenInfoSize]byte
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(fbioGetVScreenInfo), uintptr(unsafe.Pointer(&vbuf[0]))); errno != 0 {
		return Info{}, fmt.Errorf("fbdev: FBIOGET_VSCREENINFO: %w", errno)
	}
	var fbuf [fixScreenInfoSize]byte
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(fbioGetFScreenInfo), uintptr(unsafe.Pointer(&fbuf[0]))); errno != 0 {
		return Info{}, fmt.Errorf("fbdev: FBIOGET_FSCREENINFO: %w", errno)
	}
	// fb_var_screeninfo: xres, yres are the first two u32 fields.
	width := int(binary.LittleEndian.Uint32(vbuf[0:4]))
	height := int(binary.LittleEndian.Uint32(vbuf[4:8]))
	// fb_fix_screeninfo: id[16], smem_start(long), smem_len(u32), type(u32),
	// type_aux(u32), visual(u32), xpanstep/ypanstep/ywrapstep(u16 each),
	// line_length(u32) follows at a fixed offset on 64-bit Linux.
	const lineLengthOffset = 16 + 8 + 4 + 4 + 4 + 4 + 2 + 2 + 2 + 2
	pitch := int(binary.LittleEndian.Uint32(fbuf[lineLengthOffset : lineLengthOffset+4]))
	return Info{Width: width, Height: height, Pitch: pitch}, nil
}
