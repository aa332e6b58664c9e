package composite

import (
	"testing"

	"yulacomp.dev/display/internal/geom"
)

func TestByZAscending(t *testing.T) {
	s := []VisibleSurface{{Z: 5}, {Z: 1}, {Z: 3}}
	ByZAscending(s)
	for i := 1; i < len(s); i++ {
		if s[i-1].Z > s[i].Z {
			t.Fatalf("not sorted: %v", s)
		}
	}
}

func TestBlitClipsToDamageRect(t *testing.T) {
	f := &Frame{Pixels: make([]byte, 10*10*4), Stride: 10, W: 10, H: 10}
	src := make([]byte, 4*4*4)
	for i := range src {
		src[i] = 0xAA
	}
	surf := VisibleSurface{Geometry: geom.Rect{X: 2, Y: 2, W: 4, H: 4}, Stride: 4, Pixels: src}
	f.Fill(geom.Rect{X: 0, Y: 0, W: 10, H: 10}, 0)
	f.Blit(surf, geom.Rect{X: 0, Y: 0, W: 10, H: 10})

	// Pixel inside the surface should be painted.
	off := f.rowOffset(3) + 3*4
	if f.Pixels[off] != 0xAA {
		t.Fatalf("expected surface pixel painted, got %x", f.Pixels[off])
	}
	// Pixel outside the surface should remain background (0).
	off2 := f.rowOffset(8) + 8*4
	if f.Pixels[off2] != 0 {
		t.Fatalf("expected background outside surface, got %x", f.Pixels[off2])
	}
}

func TestPresentCopiesOnlyDamagedRows(t *testing.T) {
	f := &Frame{Pixels: make([]byte, 4*4*4), Stride: 4, W: 4, H: 4}
	for i := range f.Pixels {
		f.Pixels[i] = 0x11
	}
	fb := make([]byte, 4*4*4)
	Present(fb, 4*4, f, []geom.Rect{{X: 0, Y: 1, W: 4, H: 1}})
	// Row 1 copied.
	if fb[1*16] != 0x11 {
		t.Fatalf("row 1 not copied")
	}
	// Row 0 untouched.
	if fb[0] != 0 {
		t.Fatalf("row 0 unexpectedly copied")
	}
}
