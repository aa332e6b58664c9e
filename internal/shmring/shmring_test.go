package shmring

import "testing"

func TestPushPopOrder(t *testing.T) {
	buf := make([]byte, Layout(4))
	r := Init(buf, 4)
	for i := uint32(0); i < 3; i++ {
		r.Push(Event{Kind: EventKey, Keycode: i})
	}
	if r.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", r.Count())
	}
	for i := uint32(0); i < 3; i++ {
		e, ok := r.Pop()
		if !ok {
			t.Fatalf("Pop() unexpectedly empty at i=%d", i)
		}
		if e.Keycode != i {
			t.Fatalf("Pop() keycode = %d, want %d", e.Keycode, i)
		}
	}
	if _, ok := r.Pop(); ok {
		t.Fatalf("Pop() on empty ring should fail")
	}
}

func TestPushOverflowDropsOldestAndCountsDropped(t *testing.T) {
	buf := make([]byte, Layout(2))
	r := Init(buf, 2)
	r.Push(Event{Keycode: 1})
	r.Push(Event{Keycode: 2})
	r.Push(Event{Keycode: 3}) // ring full (cap=2): drops keycode 1
	if r.Dropped() != 1 {
		t.Fatalf("Dropped() = %d, want 1", r.Dropped())
	}
	if r.Count() > 2 {
		t.Fatalf("Count() = %d exceeds capacity 2", r.Count())
	}
	e, ok := r.Pop()
	if !ok || e.Keycode != 2 {
		t.Fatalf("Pop() = %+v, want keycode 2", e)
	}
}

func TestOpenReadsCapacityFromHeader(t *testing.T) {
	buf := make([]byte, Layout(8))
	Init(buf, 8)
	r := Open(buf)
	r.Push(Event{Kind: EventPointerMove, X: 10, Y: 20})
	e, ok := r.Pop()
	if !ok || e.X != 10 || e.Y != 20 {
		t.Fatalf("Pop() = %+v, ok=%v", e, ok)
	}
}
