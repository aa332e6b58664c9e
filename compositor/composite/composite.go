package composite

import (
	"yulacomp.dev/display/internal/geom"
)

// VisibleSurface is the minimal view composition needs of a surface: its
// screen geometry, z-order, and BGRA8888 pixel source (shadow when valid,
// else the live client buffer — spec.md §4.4).
type VisibleSurface struct {
	Geometry geom.Rect
	Stride   int // row stride in pixels
	Z        uint64
	Pixels   []byte // BGRA8888, len >= H*Stride*4
}

// ByZAscending sorts surfaces by z ascending via insertion sort, matching
// spec.md §4.4 ("insertion-sort by z ascending") — appropriate since z is
// nearly sorted frame to frame (only raises reorder a handful of entries).
func ByZAscending(surfaces []VisibleSurface) {
	for i := 1; i < len(surfaces); i++ {
		v := surfaces[i]
		j := i - 1
		for j >= 0 && surfaces[j].Z > v.Z {
			surfaces[j+1] = surfaces[j]
			j--
		}
		surfaces[j+1] = v
	}
}

// Frame is the compositor's off-screen composition target: a BGRA8888
// buffer with its own row stride in pixels.
type Frame struct {
	Pixels []byte
	Stride int // pixels per row
	W, H   int
}

func (f *Frame) rowOffset(y int) int { return y * f.Stride * 4 }

// Fill paints rect with a solid BGRA8888 color (the background), clipped to
// the frame bounds.
func (f *Frame) Fill(rect geom.Rect, color uint32) {
	rect = rect.Intersect(geom.Rect{X: 0, Y: 0, W: f.W, H: f.H})
	if rect.Empty() {
		return
	}
	var px [4]byte
	px[0] = byte(color)
	px[1] = byte(color >> 8)
	px[2] = byte(color >> 16)
	px[3] = byte(color >> 24)
	for y := rect.Y; y < rect.Y+rect.H; y++ {
		row := f.Pixels[f.rowOffset(y)+rect.X*4 : f.rowOffset(y)+(rect.X+rect.W)*4]
		for x := 0; x < rect.W; x++ {
			copy(row[x*4:x*4+4], px[:])
		}
	}
}

// Blit copies src's pixels into f within dstClip (screen coordinates),
// clipped to both src's own geometry and the frame bounds. src.Pixels rows
// are read using src.Stride; dst rows use f.Stride.
func (f *Frame) Blit(src VisibleSurface, clip geom.Rect) {
	area := src.Geometry.Intersect(clip).Intersect(geom.Rect{X: 0, Y: 0, W: f.W, H: f.H})
	if area.Empty() || len(src.Pixels) == 0 {
		return
	}
	for y := area.Y; y < area.Y+area.H; y++ {
		srcY := y - src.Geometry.Y
		srcRowOff := srcY * src.Stride * 4
		srcRow := src.Pixels[srcRowOff : srcRowOff+src.Geometry.W*4]
		srcX0 := area.X - src.Geometry.X
		dstRowOff := f.rowOffset(y)
		dstRow := f.Pixels[dstRowOff : dstRowOff+f.W*4]
		copy(dstRow[area.X*4:(area.X+area.W)*4], srcRow[srcX0*4:(srcX0+area.W)*4])
	}
}

// ComposeDamage repaints every rect in damage: background fill, then every
// visible surface (already z-sorted ascending) blitted in order, clipped to
// that rect (spec.md §4.4).
func ComposeDamage(f *Frame, background uint32, surfaces []VisibleSurface, damage []geom.Rect) {
	for _, rect := range damage {
		f.Fill(rect, background)
		for _, s := range surfaces {
			f.Blit(s, rect)
		}
	}
}

// Present copies only the damaged row-spans from f into fb (the real
// framebuffer mapping), honoring fb's own pitch which may differ from f's.
func Present(fb []byte, fbPitch int, f *Frame, damage []geom.Rect) {
	for _, rect := range damage {
		rect = rect.Intersect(geom.Rect{X: 0, Y: 0, W: f.W, H: f.H})
		if rect.Empty() {
			continue
		}
		for y := rect.Y; y < rect.Y+rect.H; y++ {
			srcOff := f.rowOffset(y) + rect.X*4
			dstOff := y*fbPitch + rect.X*4
			n := rect.W * 4
			copy(fb[dstOff:dstOff+n], f.Pixels[srcOff:srcOff+n])
		}
	}
}

// SortedCopy returns a defensively copied, z-sorted slice (used when
// callers must not mutate the caller's backing array).
func SortedCopy(surfaces []VisibleSurface) []VisibleSurface {
	out := make([]VisibleSurface, len(surfaces))
	copy(out, surfaces)
	ByZAscending(out)
	return out
}

