package vkbackend

import "testing"

func TestSurfaceStateAlternates(t *testing.T) {
	tr := newSurfaceStateTracker(3)

	for frame := 0; frame < 4; frame++ {
		img := frame % 3
		if err := tr.toRenderTarget(img); err != nil {
			t.Fatalf("frame %d: toRenderTarget: %v", frame, err)
		}
		if got := tr.state(img); got != stateRenderTarget {
			t.Fatalf("frame %d: state = %v", frame, got)
		}
		if err := tr.toPresent(img); err != nil {
			t.Fatalf("frame %d: toPresent: %v", frame, err)
		}
	}
}

func TestSurfaceStateRejectsDoubleTransition(t *testing.T) {
	tr := newSurfaceStateTracker(2)

	if err := tr.toRenderTarget(0); err != nil {
		t.Fatal(err)
	}
	if err := tr.toRenderTarget(0); err == nil {
		t.Errorf("second toRenderTarget on the same image succeeded")
	}
	if err := tr.toPresent(0); err != nil {
		t.Fatal(err)
	}
	if err := tr.toPresent(0); err == nil {
		t.Errorf("toPresent on an already presentable image succeeded")
	}
}

func TestSurfaceStatePresentBeforeRenderRejected(t *testing.T) {
	tr := newSurfaceStateTracker(1)
	if err := tr.toPresent(0); err == nil {
		t.Errorf("fresh image presented without rendering first")
	}
}

func TestSurfaceStateRangeChecks(t *testing.T) {
	tr := newSurfaceStateTracker(2)
	if err := tr.toRenderTarget(-1); err == nil {
		t.Errorf("negative index accepted")
	}
	if err := tr.toRenderTarget(2); err == nil {
		t.Errorf("out-of-range index accepted")
	}
	if err := tr.toPresent(5); err == nil {
		t.Errorf("out-of-range present accepted")
	}
}
