package wire

import (
	"encoding/binary"
	"fmt"
)

// CommitFlag and DestroyFlag bits travel in the COMMIT/DESTROY_SURFACE
// payload's flags field.
const (
	FlagACK   uint32 = 1 << 0
	FlagRaise uint32 = 1 << 1
)

// Hello is the first message a client sends, reporting its pid.
type Hello struct {
	Pid uint32
}

func EncodeHello(m Hello) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, m.Pid)
	return buf
}

func DecodeHello(b []byte) (Hello, error) {
	if len(b) < 4 {
		return Hello{}, fmt.Errorf("wire: HELLO payload too short")
	}
	return Hello{Pid: binary.LittleEndian.Uint32(b)}, nil
}

// nameFieldLen is the fixed width of the name[32] wire field.
const nameFieldLen = 32

func putName(buf []byte, name string) {
	n := copy(buf, name)
	for i := n; i < nameFieldLen; i++ {
		buf[i] = 0
	}
}

func getName(buf []byte) string {
	n := 0
	for n < len(buf) && buf[n] != 0 {
		n++
	}
	return string(buf[:n])
}

// AttachShmName requests that a surface's backing pixel buffer be the
// named shared-memory region.
type AttachShmName struct {
	SurfaceID uint32
	W, H      uint32
	Stride    uint32
	Format    uint32
	Size      uint32
	Name      string
}

const attachShmNameLen = 4*6 + nameFieldLen

func EncodeAttachShmName(m AttachShmName) []byte {
	buf := make([]byte, attachShmNameLen)
	binary.LittleEndian.PutUint32(buf[0:4], m.SurfaceID)
	binary.LittleEndian.PutUint32(buf[4:8], m.W)
	binary.LittleEndian.PutUint32(buf[8:12], m.H)
	binary.LittleEndian.PutUint32(buf[12:16], m.Stride)
	binary.LittleEndian.PutUint32(buf[16:20], m.Format)
	binary.LittleEndian.PutUint32(buf[20:24], m.Size)
	putName(buf[24:24+nameFieldLen], m.Name)
	return buf
}

func DecodeAttachShmName(b []byte) (AttachShmName, error) {
	if len(b) < attachShmNameLen {
		return AttachShmName{}, fmt.Errorf("wire: ATTACH_SHM_NAME payload too short")
	}
	return AttachShmName{
		SurfaceID: binary.LittleEndian.Uint32(b[0:4]),
		W:         binary.LittleEndian.Uint32(b[4:8]),
		H:         binary.LittleEndian.Uint32(b[8:12]),
		Stride:    binary.LittleEndian.Uint32(b[12:16]),
		Format:    binary.LittleEndian.Uint32(b[16:20]),
		Size:      binary.LittleEndian.Uint32(b[20:24]),
		Name:      getName(b[24 : 24+nameFieldLen]),
	}, nil
}

// Commit signals that a surface's pixel buffer is ready to present.
type Commit struct {
	SurfaceID uint32
	X, Y      int32
	Flags     uint32
}

const commitLen = 4 * 4

func EncodeCommit(m Commit) []byte {
	buf := make([]byte, commitLen)
	binary.LittleEndian.PutUint32(buf[0:4], m.SurfaceID)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.X))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(m.Y))
	binary.LittleEndian.PutUint32(buf[12:16], m.Flags)
	return buf
}

func DecodeCommit(b []byte) (Commit, error) {
	if len(b) < commitLen {
		return Commit{}, fmt.Errorf("wire: COMMIT payload too short")
	}
	return Commit{
		SurfaceID: binary.LittleEndian.Uint32(b[0:4]),
		X:         int32(binary.LittleEndian.Uint32(b[4:8])),
		Y:         int32(binary.LittleEndian.Uint32(b[8:12])),
		Flags:     binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

// DestroySurface releases a surface.
type DestroySurface struct {
	SurfaceID uint32
	Flags     uint32
}

const destroySurfaceLen = 8

func EncodeDestroySurface(m DestroySurface) []byte {
	buf := make([]byte, destroySurfaceLen)
	binary.LittleEndian.PutUint32(buf[0:4], m.SurfaceID)
	binary.LittleEndian.PutUint32(buf[4:8], m.Flags)
	return buf
}

func DecodeDestroySurface(b []byte) (DestroySurface, error) {
	if len(b) < destroySurfaceLen {
		return DestroySurface{}, fmt.Errorf("wire: DESTROY_SURFACE payload too short")
	}
	return DestroySurface{
		SurfaceID: binary.LittleEndian.Uint32(b[0:4]),
		Flags:     binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// Ack replies to a request at the same seq.
type Ack struct {
	ReqType   Type
	SurfaceID uint32
	Flags     uint32
}

const ackLen = 2 + 4 + 4

func EncodeAck(m Ack) []byte {
	buf := make([]byte, ackLen)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(m.ReqType))
	binary.LittleEndian.PutUint32(buf[2:6], m.SurfaceID)
	binary.LittleEndian.PutUint32(buf[6:10], m.Flags)
	return buf
}

func DecodeAck(b []byte) (Ack, error) {
	if len(b) < ackLen {
		return Ack{}, fmt.Errorf("wire: ACK payload too short")
	}
	return Ack{
		ReqType:   Type(binary.LittleEndian.Uint16(b[0:2])),
		SurfaceID: binary.LittleEndian.Uint32(b[2:6]),
		Flags:     binary.LittleEndian.Uint32(b[6:10]),
	}, nil
}

// ErrorMsg replies to a request that could not be applied.
type ErrorMsg struct {
	ReqType   Type
	Code      ErrorCode
	SurfaceID uint32
	Detail    uint32
}

const errorMsgLen = 2 + 4 + 4 + 4

func EncodeError(m ErrorMsg) []byte {
	buf := make([]byte, errorMsgLen)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(m.ReqType))
	binary.LittleEndian.PutUint32(buf[2:6], uint32(m.Code))
	binary.LittleEndian.PutUint32(buf[6:10], m.SurfaceID)
	binary.LittleEndian.PutUint32(buf[10:14], m.Detail)
	return buf
}

func DecodeError(b []byte) (ErrorMsg, error) {
	if len(b) < errorMsgLen {
		return ErrorMsg{}, fmt.Errorf("wire: ERROR payload too short")
	}
	return ErrorMsg{
		ReqType:   Type(binary.LittleEndian.Uint16(b[0:2])),
		Code:      ErrorCode(binary.LittleEndian.Uint32(b[2:6])),
		SurfaceID: binary.LittleEndian.Uint32(b[6:10]),
		Detail:    binary.LittleEndian.Uint32(b[10:14]),
	}, nil
}

// InputRingName announces the shared-memory input ring's name and geometry.
type InputRingName struct {
	Size uint32
	Cap  uint32
	Name string
}

const inputRingNameLen = 8 + nameFieldLen

func EncodeInputRingName(m InputRingName) []byte {
	buf := make([]byte, inputRingNameLen)
	binary.LittleEndian.PutUint32(buf[0:4], m.Size)
	binary.LittleEndian.PutUint32(buf[4:8], m.Cap)
	putName(buf[8:8+nameFieldLen], m.Name)
	return buf
}

func DecodeInputRingName(b []byte) (InputRingName, error) {
	if len(b) < inputRingNameLen {
		return InputRingName{}, fmt.Errorf("wire: INPUT_RING_NAME payload too short")
	}
	return InputRingName{
		Size: binary.LittleEndian.Uint32(b[0:4]),
		Cap:  binary.LittleEndian.Uint32(b[4:8]),
		Name: getName(b[8 : 8+nameFieldLen]),
	}, nil
}

// InputKind is the closed set of INPUT message kinds.
type InputKind uint32

const (
	InputPointerMove InputKind = iota + 1
	InputPointerButton
	InputKey
)

// Input is a framed-fallback delivery of an input event (used only when the
// SPSC shared-memory ring has not been negotiated, §4.2).
type Input struct {
	Kind              InputKind
	SurfaceID         uint32
	X, Y              int32
	SX, SY            int32
	Keycode           uint32
	KeyState          uint32
	Buttons           uint32
}

const inputLen = 4*3 + 4*4 + 4*3

func EncodeInput(m Input) []byte {
	buf := make([]byte, inputLen)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.Kind))
	binary.LittleEndian.PutUint32(buf[4:8], m.SurfaceID)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(m.X))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(m.Y))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(m.SX))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(m.SY))
	binary.LittleEndian.PutUint32(buf[24:28], m.Keycode)
	binary.LittleEndian.PutUint32(buf[28:32], m.KeyState)
	binary.LittleEndian.PutUint32(buf[32:36], m.Buttons)
	return buf
}

func DecodeInput(b []byte) (Input, error) {
	if len(b) < inputLen {
		return Input{}, fmt.Errorf("wire: INPUT payload too short")
	}
	return Input{
		Kind:      InputKind(binary.LittleEndian.Uint32(b[0:4])),
		SurfaceID: binary.LittleEndian.Uint32(b[4:8]),
		X:         int32(binary.LittleEndian.Uint32(b[8:12])),
		Y:         int32(binary.LittleEndian.Uint32(b[12:16])),
		SX:        int32(binary.LittleEndian.Uint32(b[16:20])),
		SY:        int32(binary.LittleEndian.Uint32(b[20:24])),
		Keycode:   binary.LittleEndian.Uint32(b[24:28]),
		KeyState:  binary.LittleEndian.Uint32(b[28:32]),
		Buttons:   binary.LittleEndian.Uint32(b[32:36]),
	}, nil
}

// WMEventKind is the closed set of compositor -> WM event kinds (§4.5).
type WMEventKind uint32

const (
	WMEventMap WMEventKind = iota + 1
	WMEventUnmap
	WMEventCommit
	WMEventClick
	WMEventPointer
	WMEventKey
)

// WMEventFlagReplay marks a MAP event synthesized on WM (re)connect for an
// already-mapped surface, so the WM doesn't steal focus rebuilding state.
const WMEventFlagReplay uint32 = 1 << 0

// WMEvent is a compositor -> WM notification.
type WMEvent struct {
	Kind                 WMEventKind
	ClientID, SurfaceID  uint32
	SX, SY, SW, SH       int32
	PX, PY               int32
	Keycode              uint32
	KeyState             uint32
	Buttons              uint32
	Flags                uint32
}

const wmEventLen = 4*2 + 4*4 + 4*2 + 4*3 + 4

func EncodeWMEvent(m WMEvent) []byte {
	buf := make([]byte, wmEventLen)
	o := 0
	put32 := func(v uint32) { binary.LittleEndian.PutUint32(buf[o:o+4], v); o += 4 }
	put32(uint32(m.Kind))
	put32(m.ClientID)
	put32(m.SurfaceID)
	put32(uint32(m.SX))
	put32(uint32(m.SY))
	put32(uint32(m.SW))
	put32(uint32(m.SH))
	put32(uint32(m.PX))
	put32(uint32(m.PY))
	put32(m.Keycode)
	put32(m.KeyState)
	put32(m.Buttons)
	put32(m.Flags)
	return buf
}

func DecodeWMEvent(b []byte) (WMEvent, error) {
	if len(b) < wmEventLen {
		return WMEvent{}, fmt.Errorf("wire: WM_EVENT payload too short")
	}
	o := 0
	get32 := func() uint32 { v := binary.LittleEndian.Uint32(b[o : o+4]); o += 4; return v }
	m := WMEvent{}
	m.Kind = WMEventKind(get32())
	m.ClientID = get32()
	m.SurfaceID = get32()
	m.SX = int32(get32())
	m.SY = int32(get32())
	m.SW = int32(get32())
	m.SH = int32(get32())
	m.PX = int32(get32())
	m.PY = int32(get32())
	m.Keycode = get32()
	m.KeyState = get32()
	m.Buttons = get32()
	m.Flags = get32()
	return m, nil
}

// WMCmdKind is the closed set of WM -> compositor command kinds (§4.5).
type WMCmdKind uint32

const (
	WMCmdFocus WMCmdKind = iota + 1
	WMCmdRaise
	WMCmdMove
	WMCmdResize
	WMCmdClose
	WMCmdPreviewRect
	WMCmdPreviewClear
	WMCmdPointerGrab
	WMCmdKeyboardGrab
	WMCmdExit
)

// WMCmd is a WM -> compositor instruction.
type WMCmd struct {
	Kind                WMCmdKind
	ClientID, SurfaceID uint32
	X, Y                int32
	Flags               uint32
}

const wmCmdLen = 4*2 + 4*2 + 4

func EncodeWMCmd(m WMCmd) []byte {
	buf := make([]byte, wmCmdLen)
	o := 0
	put32 := func(v uint32) { binary.LittleEndian.PutUint32(buf[o:o+4], v); o += 4 }
	put32(uint32(m.Kind))
	put32(m.ClientID)
	put32(m.SurfaceID)
	put32(uint32(m.X))
	put32(uint32(m.Y))
	put32(m.Flags)
	return buf
}

func DecodeWMCmd(b []byte) (WMCmd, error) {
	if len(b) < wmCmdLen {
		return WMCmd{}, fmt.Errorf("wire: WM_CMD payload too short")
	}
	o := 0
	get32 := func() uint32 { v := binary.LittleEndian.Uint32(b[o : o+4]); o += 4; return v }
	m := WMCmd{}
	m.Kind = WMCmdKind(get32())
	m.ClientID = get32()
	m.SurfaceID = get32()
	m.X = int32(get32())
	m.Y = int32(get32())
	m.Flags = get32()
	return m, nil
}
