package logic

import (
	"math/rand"
	"testing"
)

func TestNewFilterDefaultWindow(t *testing.T) {
	for _, w := range []int{0, -3} {
		f := NewFilter(w, 70)
		if f.Size() != DefaultWindow {
			t.Errorf("NewFilter(%d): expected window %d, got %d", w, DefaultWindow, f.Size())
		}
	}
}

func TestFilterInitialResult(t *testing.T) {
	f := NewFilter(10, 70)
	r := f.Result()
	if r.Filtered || r.Percent != 0 {
		t.Errorf("expected empty window to be (false, 0), got (%v, %d)", r.Filtered, r.Percent)
	}
}

func TestFilterBound(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, threshold := range []int{10, 50, 70, 100} {
		f := NewFilter(10, threshold)
		for i := 0; i < 1000; i++ {
			r := f.Update(rng.Intn(3) == 0)
			if r.Percent < 0 || r.Percent > 100 {
				t.Fatalf("threshold %d step %d: percent out of range: %d", threshold, i, r.Percent)
			}
			if r.Filtered != (r.Percent >= threshold) {
				t.Fatalf("threshold %d step %d: filtered=%v but percent=%d", threshold, i, r.Filtered, r.Percent)
			}
			assertCountInvariant(t, f)
		}
	}
}

func TestFilterRejectsSingleGlitch(t *testing.T) {
	f := NewFilter(10, 70)

	samples := make([]bool, 30)
	samples[15] = true

	for i, s := range samples {
		if r := f.Update(s); r.Filtered {
			t.Fatalf("sample %d: single glitch made filter true (percent=%d)", i, r.Percent)
		}
	}
}

func TestFilterBelowThreshold(t *testing.T) {
	f := NewFilter(10, 70)

	var r FilterResult
	for i := 0; i < 4; i++ {
		r = f.Update(true)
	}
	if r.Percent != 40 {
		t.Errorf("expected 40%% after 4 positives, got %d", r.Percent)
	}
	if r.Filtered {
		t.Error("40% should not pass a 70% threshold")
	}

	r = f.Update(false)
	if r.Percent != 40 || r.Filtered {
		t.Errorf("expected (false, 40) after a negative, got (%v, %d)", r.Filtered, r.Percent)
	}
}

func TestFilterReachesThresholdWithinWindow(t *testing.T) {
	f := NewFilter(10, 70)

	for i := 1; i <= 10; i++ {
		r := f.Update(true)
		if r.Percent != i*10 {
			t.Errorf("sample %d: expected %d%%, got %d", i, i*10, r.Percent)
		}
		if want := i >= 7; r.Filtered != want {
			t.Errorf("sample %d: expected filtered=%v, got %v", i, want, r.Filtered)
		}
	}
}

func TestFilterEvictsOldest(t *testing.T) {
	f := NewFilter(10, 70)
	for i := 0; i < 10; i++ {
		f.Update(true)
	}

	wants := []int{90, 80, 70, 60}
	for i, want := range wants {
		r := f.Update(false)
		if r.Percent != want {
			t.Errorf("negative %d: expected %d%%, got %d", i+1, want, r.Percent)
		}
	}
	if f.Result().Filtered {
		t.Error("60% should not pass a 70% threshold")
	}
}

func TestFilterPercentFloors(t *testing.T) {
	f := NewFilter(3, 34)
	r := f.Update(true)
	if r.Percent != 33 {
		t.Errorf("expected floor(100/3)=33, got %d", r.Percent)
	}
	if r.Filtered {
		t.Error("33% should not pass a 34% threshold")
	}
}

func TestFilterSetThresholdClamps(t *testing.T) {
	f := NewFilter(10, 70)

	f.SetThreshold(150)
	if f.Threshold() != 100 {
		t.Errorf("expected threshold clamped to 100, got %d", f.Threshold())
	}
	f.SetThreshold(-5)
	if f.Threshold() != 1 {
		t.Errorf("expected threshold clamped to 1, got %d", f.Threshold())
	}
	f.SetThreshold(0)
	if f.Threshold() != 1 {
		t.Errorf("expected zero threshold raised to 1, got %d", f.Threshold())
	}
}

func TestFilterSetThresholdAppliesNextUpdate(t *testing.T) {
	f := NewFilter(10, 70)
	for i := 0; i < 5; i++ {
		f.Update(true)
	}

	f.SetThreshold(50)
	if r := f.Update(false); !r.Filtered {
		t.Errorf("expected 50%% to pass lowered threshold, got percent=%d", r.Percent)
	}
}

func assertCountInvariant(t *testing.T, f *Filter) {
	t.Helper()
	n := 0
	for _, v := range f.window {
		if v {
			n++
		}
	}
	if n != f.count {
		t.Fatalf("running count %d does not match window contents %d", f.count, n)
	}
	if f.count < 0 || f.count > len(f.window) {
		t.Fatalf("running count %d out of range [0,%d]", f.count, len(f.window))
	}
}
