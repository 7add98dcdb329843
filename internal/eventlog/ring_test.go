package eventlog

import (
	"testing"
)

func TestRingEmptySnapshot(t *testing.T) {
	r := newRing(10)
	got := r.snapshot()
	if len(got) != 0 {
		t.Errorf("expected empty snapshot, got %d items", len(got))
	}
}

func TestRingPushAndSnapshot(t *testing.T) {
	r := newRing(10)
	for i := 0; i < 5; i++ {
		r.push(Entry{Type: TypeNotifyOK, Data: int32(i)})
	}

	got := r.snapshot()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].Data != int32(i) {
			t.Errorf("item %d: expected data %d, got %d", i, i, got[i].Data)
		}
	}

	// Snapshot does not consume
	if again := r.snapshot(); len(again) != 5 {
		t.Errorf("expected 5 items on second snapshot, got %d", len(again))
	}
}

func TestRingFillToCapacity(t *testing.T) {
	capacity := 10
	r := newRing(capacity)
	for i := 0; i < capacity; i++ {
		r.push(Entry{Data: int32(i)})
	}

	got := r.snapshot()
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := 0; i < capacity; i++ {
		if got[i].Data != int32(i) {
			t.Errorf("item %d: expected data %d, got %d", i, i, got[i].Data)
		}
	}
}

func TestRingOverflow(t *testing.T) {
	capacity := 5
	r := newRing(capacity)

	// Push cap+3 items (0..7), ring should keep the most recent 5 (3..7)
	for i := 0; i < capacity+3; i++ {
		r.push(Entry{Data: int32(i)})
	}

	got := r.snapshot()
	if len(got) != capacity {
		t.Fatalf("expected %d items, got %d", capacity, len(got))
	}
	for i := 0; i < capacity; i++ {
		want := int32(i + 3) // oldest 3 were overwritten
		if got[i].Data != want {
			t.Errorf("item %d: expected data %d, got %d", i, want, got[i].Data)
		}
	}
	if r.len() != capacity {
		t.Errorf("expected len %d, got %d", capacity, r.len())
	}
}

func TestRingSnapshotIsIndependent(t *testing.T) {
	r := newRing(3)
	r.push(Entry{Data: 1})

	got := r.snapshot()
	got[0].Data = 99

	if r.snapshot()[0].Data != 1 {
		t.Error("mutating a snapshot must not affect the ring")
	}
}

func TestRingCapacityOne(t *testing.T) {
	r := newRing(1)
	r.push(Entry{Data: 1})
	r.push(Entry{Data: 2})

	got := r.snapshot()
	if len(got) != 1 || got[0].Data != 2 {
		t.Errorf("expected [2], got %v", got)
	}
}
