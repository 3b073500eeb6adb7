package render

import "sync/atomic"

// RefCount implements the shared-ownership lifetime of resource wrappers: the
// native object is destroyed exactly once, when the count reaches zero.
// Backends embed it in their Buffer/Texture/Shader implementations.
type RefCount struct {
	n int32
}

// NewRefCount returns a count holding the creating caller's reference.
func NewRefCount() *RefCount {
	return &RefCount{n: 1}
}

// Retain adds a reference.
func (r *RefCount) Retain() {
	atomic.AddInt32(&r.n, 1)
}

// Release drops a reference and invokes destroy when the last one goes away.
// Reports whether the resource was destroyed by this call.
func (r *RefCount) Release(destroy func()) bool {
	if atomic.AddInt32(&r.n, -1) == 0 {
		if destroy != nil {
			destroy()
		}
		return true
	}
	return false
}

// Refs returns the current reference count.
func (r *RefCount) Refs() int32 {
	return atomic.LoadInt32(&r.n)
}
