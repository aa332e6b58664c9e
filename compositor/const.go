// Package compositor implements the compositor-side session state machine
// of spec.md §3-§4: client sessions, the per-client parser, surfaces and
// their shadow buffers, and the frame loop tying composition, damage, and
// the WM bridge together.
package compositor

// MaxSurfaces bounds each client's surface table (spec.md §3).
const MaxSurfaces = 64

// UIBar is the reserved surface id the WM uses for its bar overlay.
const UIBar uint32 = 0x80000001

// InputRingCapacity is the number of event slots negotiated for each
// client's shared-memory input ring (spec.md S1 example uses 128).
const InputRingCapacity = 128

// FrameInterval is the compositor's fixed frame-loop cadence (~60 Hz,
// spec.md §5).
const FrameIntervalMillis = 16
