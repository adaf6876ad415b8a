// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sigslot provides an in-process typed signal/slot dispatcher.
//
// A Signal carries a fixed argument tuple (the type parameter T) and any
// number of slots — callables over T — each attached under an execution
// scheme that decides how the slot runs on emission.
//
// # Quick Start
//
//	type Args struct{ A, B int }
//
//	sig := sigslot.New[Args]()
//	id := sig.Connect(sigslot.Synchronous, func(a Args) {
//		fmt.Println(a.A + a.B)
//	})
//	sig.Emit(Args{A: 1, B: 2})
//	sig.Disconnect(id)
//
// # Execution schemes
//
//	Synchronous         - runs on the emitter's goroutine, blocks Emit
//	DeferredSynchronous - queued, runs when the owner calls InvokeDeferred
//	Asynchronous        - runs on a fresh goroutine, bounded by a semaphore
//	Strand              - runs on the slot's own dedicated goroutine, FIFO
//	ThreadPooled        - runs on the process-wide pool, unordered
//
// # Concurrent connect/disconnect
//
// By default a Signal assumes connect/disconnect never race with Emit.
// Construct with EmissionGuard() to make Connect/Disconnect/Emit safe to
// call concurrently from any goroutine:
//
//	sig := sigslot.New[Args](sigslot.EmissionGuard())
//
// Under the guard, connects and disconnects are staged in back-buffers
// and reconciled into the live slot map at the start of the next Emit
// call, so a Connect that returns before an Emit begins is live for that
// Emit.
//
// # Thread pool
//
// ThreadPooled slots share one process-wide pool of 32 worker goroutines,
// started lazily the first time any Signal connects a ThreadPooled slot.
// There is no user-visible pool configuration.
//
// # Error handling
//
// Connect, Disconnect, and Emit are total — they cannot fail. A slot body
// that panics is a programmer error in the slot, not in the dispatcher:
// Synchronous and DeferredSynchronous propagate the panic to the caller
// of Emit/InvokeDeferred respectively; Asynchronous, Strand, and
// ThreadPooled contain the panic to the worker goroutine.
//
// # Persisted state
//
// None. No files, sockets, or environment variables are consulted.
package sigslot
