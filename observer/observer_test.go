package observer

import (
	"testing"

	"github.com/vle-forge/irritator-sub000/kernel"
)

func TestRawRingOverwritesOldestAndLatchesDataLost(t *testing.T) {
	o := NewObserver(2, 0, InterpolationNone, 0)
	o.Update(kernel.ObservationMessage{Time: 0, X: 1})
	o.Update(kernel.ObservationMessage{Time: 1, X: 2})
	if o.DataLost() {
		t.Fatalf("data_lost set before any overwrite")
	}
	o.Update(kernel.ObservationMessage{Time: 2, X: 3})
	if !o.DataLost() {
		t.Fatalf("data_lost not set after overwrite")
	}
	if !o.BufferFull() {
		t.Fatalf("buffer_full not set once ring reached capacity")
	}
	if o.RawAt(0).X != 2 || o.RawAt(1).X != 3 {
		t.Fatalf("raw ring contents = [%v,%v], want [2,3]", o.RawAt(0).X, o.RawAt(1).X)
	}
}

func TestClearPreservesDataLost(t *testing.T) {
	o := NewObserver(1, 0, InterpolationNone, 0)
	o.Update(kernel.ObservationMessage{Time: 0, X: 1})
	o.Update(kernel.ObservationMessage{Time: 1, X: 2})
	if !o.DataLost() {
		t.Fatalf("data_lost not set")
	}
	o.Clear()
	if !o.DataLost() {
		t.Fatalf("Clear should preserve data_lost")
	}
	if o.RawLen() != 0 {
		t.Fatalf("Clear should empty the raw ring, got len %d", o.RawLen())
	}
}

func TestLinearizedBufferSamplesAtTimeStep(t *testing.T) {
	o := NewObserver(8, 8, InterpolationQSS1, 1)
	o.Update(kernel.ObservationMessage{Time: 0, X: 0, XPrime: 1})
	o.Update(kernel.ObservationMessage{Time: 3, X: 3, XPrime: 1})
	if o.LinearLen() != 3 {
		t.Fatalf("linear ring len = %d, want 3 (t=0,1,2)", o.LinearLen())
	}
	for i := 0; i < o.LinearLen(); i++ {
		want := float64(i)
		if o.LinearAt(i).X != want {
			t.Fatalf("LinearAt(%d).X = %v, want %v", i, o.LinearAt(i).X, want)
		}
	}
}

func TestFinalizeFlushesTrailingSegment(t *testing.T) {
	o := NewObserver(8, 8, InterpolationNone, 1)
	o.Update(kernel.ObservationMessage{Time: 0, X: 5})
	if o.LinearLen() != 0 {
		t.Fatalf("linear ring should be empty before a second sample arrives")
	}
	o.Finalize()
	if o.LinearLen() != 1 {
		t.Fatalf("Finalize should flush the single trailing sample, got len %d", o.LinearLen())
	}
}

func TestMonotoneHoldsAcrossLinearization(t *testing.T) {
	o := NewObserver(8, 8, InterpolationQSS1, 0.5)
	for i := 0; i < 5; i++ {
		o.Update(kernel.ObservationMessage{Time: kernel.Time(i), X: float64(i), XPrime: 1})
	}
	if !o.Monotone() {
		t.Fatalf("linearized ring is not monotone in time")
	}
}
