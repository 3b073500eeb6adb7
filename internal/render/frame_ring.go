package render

// Fence abstracts the GPU-to-CPU completion signal of the explicit
// command-list backend as a monotonically increasing value: the fence has
// reached value v once all work submitted with values <= v has finished on
// the GPU.
type Fence interface {
	// Completed returns the highest value the GPU has signaled so far.
	Completed() uint64

	// WaitFor blocks until the fence reaches at least value. A stalled GPU
	// blocks here indefinitely; that is surfaced up as an unrecoverable
	// condition, never retried.
	WaitFor(value uint64)
}

// FrameRing rotates a fixed set of per-frame slots (command allocator,
// render target, fence value). A slot may only be reused once the GPU has
// signaled the fence value assigned on its previous use — resetting earlier
// can corrupt command data still being read by the GPU.
type FrameRing struct {
	fence Fence
	// fence value last assigned to each slot; zero means never used
	assigned []uint64
	current  int
	next     uint64
}

// NewFrameRing creates a ring of n slots guarded by fence. n must be at
// least 1; two or three frames in flight is typical.
func NewFrameRing(n int, fence Fence) *FrameRing {
	if n < 1 {
		n = 1
	}
	return &FrameRing{
		fence:    fence,
		assigned: make([]uint64, n),
	}
}

// Slots returns the ring size.
func (r *FrameRing) Slots() int {
	return len(r.assigned)
}

// Acquire returns the current slot index, blocking first until the GPU has
// completed the fence value previously assigned to it.
func (r *FrameRing) Acquire() int {
	prev := r.assigned[r.current]
	if prev > r.fence.Completed() {
		r.fence.WaitFor(prev)
	}
	return r.current
}

// Submit records that work for the current slot was handed to the GPU,
// assigns it the next fence value and advances to the following slot. It
// returns the value the GPU must signal when that work completes.
func (r *FrameRing) Submit() uint64 {
	r.next++
	r.assigned[r.current] = r.next
	r.current = (r.current + 1) % len(r.assigned)
	return r.next
}

// LastSubmitted returns the highest fence value handed out so far.
func (r *FrameRing) LastSubmitted() uint64 {
	return r.next
}

// WaitAll blocks until every submitted slot has completed on the GPU. Used
// by WaitIdle and during swap-chain teardown.
func (r *FrameRing) WaitAll() {
	if r.next > r.fence.Completed() {
		r.fence.WaitFor(r.next)
	}
}
