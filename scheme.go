// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

// Scheme selects how a connected slot is invoked when its signal is
// emitted (spec §3).
type Scheme int

const (
	// Synchronous invokes the slot on the emitting goroutine, in
	// connection order, before Emit returns.
	Synchronous Scheme = iota
	// DeferredSynchronous queues the invocation on the signal's own
	// deferred queue; a later call to InvokeDeferred runs it
	// synchronously on the caller of InvokeDeferred.
	DeferredSynchronous
	// Asynchronous runs the slot on a dedicated detached goroutine,
	// bounded by the signal's async inflight semaphore.
	Asynchronous
	// Strand runs the slot on its own dedicated worker goroutine, one
	// per Strand slot, preserving emission order for that slot.
	Strand
	// ThreadPooled runs the slot on the process-wide worker pool.
	ThreadPooled
)

func (s Scheme) String() string {
	switch s {
	case Synchronous:
		return "Synchronous"
	case DeferredSynchronous:
		return "DeferredSynchronous"
	case Asynchronous:
		return "Asynchronous"
	case Strand:
		return "Strand"
	case ThreadPooled:
		return "ThreadPooled"
	default:
		return "Scheme(unknown)"
	}
}
