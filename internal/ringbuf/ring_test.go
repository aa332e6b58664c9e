package ringbuf

import "testing"

func TestPushPeekDrop(t *testing.T) {
	r := New(8) // rounds to 64... use a tiny explicit case instead
	r = &Ring{buf: make([]byte, 8), mask: 7}

	if d := r.Push([]byte("abcd")); d != 0 {
		t.Fatalf("unexpected drop: %d", d)
	}
	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", r.Len())
	}
	buf := make([]byte, 4)
	if n := r.Peek(0, buf); n != 4 || string(buf) != "abcd" {
		t.Fatalf("Peek = %q (%d), want abcd", buf[:n], n)
	}
	r.Drop(2)
	if r.Len() != 2 {
		t.Fatalf("Len() after Drop = %d, want 2", r.Len())
	}
	n := r.Peek(0, buf)
	if string(buf[:n]) != "cd" {
		t.Fatalf("Peek after Drop = %q, want cd", buf[:n])
	}
}

func TestPushOverflowDropsOldest(t *testing.T) {
	r := &Ring{buf: make([]byte, 8), mask: 7}
	r.Push([]byte("123456"))
	dropped := r.Push([]byte("789"))
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if r.Len() != 8 {
		t.Fatalf("Len() = %d, want 8 (full)", r.Len())
	}
	buf := make([]byte, 8)
	n := r.Peek(0, buf)
	if string(buf[:n]) != "23456789" {
		t.Fatalf("contents = %q, want 23456789", buf[:n])
	}
}

func TestPushLargerThanCapacity(t *testing.T) {
	r := &Ring{buf: make([]byte, 4), mask: 3}
	dropped := r.Push([]byte("abcdefgh"))
	if dropped != 4 {
		t.Fatalf("dropped = %d, want 4", dropped)
	}
	buf := make([]byte, 4)
	n := r.Peek(0, buf)
	if string(buf[:n]) != "efgh" {
		t.Fatalf("contents = %q, want efgh", buf[:n])
	}
}

func TestNewRoundsToPowerOfTwo(t *testing.T) {
	r := New(100)
	if r.Cap() != 128 {
		t.Fatalf("Cap() = %d, want 128", r.Cap())
	}
	r2 := New(8)
	if r2.Cap() != 64 {
		t.Fatalf("Cap() = %d, want minimum 64", r2.Cap())
	}
}
