// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import (
	"context"
	"sync"
	"sync/atomic"

	"code.hybscloud.com/iox"
)

// slotEntry pairs a connected function with the scheme it was connected
// under.
type slotEntry[T any] struct {
	scheme Scheme
	fn     func(T)
}

// Signal is a typed, many-slot dispatch point: functions connect to it
// with a chosen [Scheme] and are invoked, in connection order, whenever
// Emit is called (spec §2, §3).
//
// The zero value is not usable; construct with [New].
type Signal[T any] struct {
	opts signalOptions

	nextID atomic.Uint32

	// signalLock gates the live slot map: Emit takes the shared (reader)
	// side, Connect/Disconnect's unguarded path takes the exclusive
	// (writer) side (spec §4.5, §4.7.1).
	signalLock *sharedLock
	slots      map[uint32]*slotEntry[T]
	order      []uint32

	// backBufferLock and the two buffers implement the emission-guarded
	// connect/disconnect path (spec §4.7.2, §4.7.4): writers append here
	// under emissionGuard instead of touching the live map directly, and
	// a guarded Emit reconciles them before running its own pass.
	backBufferLock   *sharedLock
	connectBuffer    map[uint32]*slotEntry[T]
	disconnectBuffer map[uint32]struct{}

	asyncSem *asyncSemaphore

	strandMu     sync.Mutex
	strandQueues map[uint32]*mpscQueue[func()]

	deferredOnce  sync.Once
	deferredQueue *mpscQueue[deferredThunk]

	closed atomic.Bool
}

// New constructs a Signal carrying values of type T through Emit.
func New[T any](opts ...SignalOption) *Signal[T] {
	o := newSignalOptions(opts...)
	return &Signal[T]{
		opts:             o,
		signalLock:       newSharedLock(),
		slots:            make(map[uint32]*slotEntry[T]),
		backBufferLock:   newSharedLock(),
		connectBuffer:    make(map[uint32]*slotEntry[T]),
		disconnectBuffer: make(map[uint32]struct{}),
		asyncSem:         newAsyncSemaphore(o.maxAsyncInflight),
		strandQueues:     make(map[uint32]*mpscQueue[func()]),
	}
}

// Connect adds fn as a slot invoked with the given scheme whenever Emit
// is called, and returns an id usable with Disconnect. Total: never
// fails or returns an error (spec §7). Without EmissionGuard it takes the
// exclusive side of the slot lock and so waits for any Emit in progress.
func (s *Signal[T]) Connect(scheme Scheme, fn func(T)) uint32 {
	id := s.nextID.Add(1)
	entry := &slotEntry[T]{scheme: scheme, fn: fn}
	if s.opts.emissionGuard {
		s.backBufferLock.Lock()
		s.connectBuffer[id] = entry
		s.backBufferLock.Unlock()
		return id
	}
	s.connectSlot(id, entry)
	return id
}

// ConnectMember connects a bound method value as a slot. Go method
// values already close over their receiver, so this is Connect applied
// to fn directly — provided as the idiomatic equivalent of the
// reference implementation's member-function-pointer overload (spec's
// original connectMemberSlot).
func (s *Signal[T]) ConnectMember(scheme Scheme, fn func(T)) uint32 {
	return s.Connect(scheme, fn)
}

// connectSlot installs entry into the live slot map and, for Strand,
// starts its dedicated worker goroutine; for ThreadPooled, ensures the
// process-wide pool is running.
func (s *Signal[T]) connectSlot(id uint32, entry *slotEntry[T]) {
	s.signalLock.Lock()
	s.slots[id] = entry
	s.order = append(s.order, id)
	s.signalLock.Unlock()

	switch entry.scheme {
	case Strand:
		s.strandMu.Lock()
		q := newMPSCQueue[func()](ringSegmentCapacity)
		s.strandQueues[id] = q
		s.strandMu.Unlock()
		go s.strandListener(q)
	case ThreadPooled:
		getThreadPool(s.opts.logger)
	}
}

// Disconnect removes the slot with the given id. Total: disconnecting
// an id that does not exist (or was already disconnected) is a no-op
// (spec §7).
func (s *Signal[T]) Disconnect(id uint32) {
	if s.opts.emissionGuard {
		s.backBufferLock.Lock()
		delete(s.connectBuffer, id)
		s.disconnectBuffer[id] = struct{}{}
		s.backBufferLock.Unlock()
		return
	}
	s.disconnectSlot(id)
}

func (s *Signal[T]) disconnectSlot(id uint32) {
	s.signalLock.Lock()
	entry, ok := s.slots[id]
	if ok {
		delete(s.slots, id)
		s.order = removeID(s.order, id)
	}
	s.signalLock.Unlock()
	if !ok {
		return
	}

	if entry.scheme == Strand {
		s.strandMu.Lock()
		q, ok := s.strandQueues[id]
		delete(s.strandQueues, id)
		s.strandMu.Unlock()
		if ok {
			q.enqueue(nil) // sentinel: tells strandListener to exit
		}
	}
}

func removeID(order []uint32, id uint32) []uint32 {
	for i, v := range order {
		if v == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// DisconnectAll removes every connected slot and tells each Strand
// worker goroutine to exit once it has run the invocations already
// queued for it. It does not wait for those goroutines to finish.
func (s *Signal[T]) DisconnectAll() {
	s.signalLock.Lock()
	ids := append([]uint32(nil), s.order...)
	s.slots = make(map[uint32]*slotEntry[T])
	s.order = nil
	s.signalLock.Unlock()

	s.strandMu.Lock()
	queues := s.strandQueues
	s.strandQueues = make(map[uint32]*mpscQueue[func()])
	s.strandMu.Unlock()
	for _, id := range ids {
		if q, ok := queues[id]; ok {
			q.enqueue(nil)
		}
	}
}

// Len reports the number of slots in the live slot map. Under
// EmissionGuard, staged connects and disconnects are not reflected until
// the next Emit reconciles them.
func (s *Signal[T]) Len() int {
	s.signalLock.RLock()
	defer s.signalLock.RUnlock()
	return len(s.slots)
}

// Emit dispatches value to every connected slot according to each
// slot's scheme. Total: Emit itself never blocks on a slot body longer
// than that slot's scheme implies, and never returns an error — slot
// panics are contained per scheme (spec §7, §8).
func (s *Signal[T]) Emit(value T) {
	if s.opts.emissionGuard {
		s.emitGuarded(value)
		return
	}
	s.emitUnsafe(value)
}

func (s *Signal[T]) emitUnsafe(value T) {
	s.signalLock.RLock()
	defer s.signalLock.RUnlock()
	order := s.order
	slots := s.slots
	for _, id := range order {
		entry := slots[id]
		s.dispatch(id, entry, value)
	}
}

// emitGuarded first reconciles any buffered connects/disconnects, then
// runs the same pass as emitUnsafe, skipping any slot whose id has
// since been buffered for disconnection (spec §4.7.4). The back-buffer
// lock is released around each reconciled entry rather than held for
// the whole pass, so a slot body that re-enters Connect/Disconnect
// during this same Emit cannot deadlock against itself.
func (s *Signal[T]) emitGuarded(value T) {
	for {
		s.backBufferLock.RLock()
		empty := len(s.connectBuffer) == 0 && len(s.disconnectBuffer) == 0
		s.backBufferLock.RUnlock()
		if empty {
			break
		}

		s.backBufferLock.Lock()
		// take the lowest staged id so slots go live in connection order
		var id uint32
		var entry *slotEntry[T]
		for k, v := range s.connectBuffer {
			if entry == nil || k < id {
				id, entry = k, v
			}
		}
		if entry != nil {
			delete(s.connectBuffer, id)
			s.backBufferLock.Unlock()
			s.connectSlot(id, entry)
			continue
		}
		var discID uint32
		var hasDisc bool
		for k := range s.disconnectBuffer {
			discID, hasDisc = k, true
			break
		}
		s.backBufferLock.Unlock()
		if hasDisc {
			s.backBufferLock.Lock()
			delete(s.disconnectBuffer, discID)
			s.backBufferLock.Unlock()
			s.disconnectSlot(discID)
		}
	}

	s.signalLock.RLock()
	defer s.signalLock.RUnlock()
	order := s.order
	slots := s.slots
	for _, id := range order {
		s.backBufferLock.RLock()
		_, disconnecting := s.disconnectBuffer[id]
		s.backBufferLock.RUnlock()
		if disconnecting {
			continue
		}
		s.dispatch(id, slots[id], value)
	}
}

func (s *Signal[T]) dispatch(id uint32, entry *slotEntry[T], value T) {
	switch entry.scheme {
	case Synchronous:
		s.runSynchronous(entry, value)
	case DeferredSynchronous:
		s.runDeferred(id, entry, value)
	case Asynchronous:
		s.runAsynchronous(id, entry, value)
	case Strand:
		s.runStrand(id, entry, value)
	case ThreadPooled:
		s.runThreadPooled(id, entry, value)
	}
}

func (s *Signal[T]) runSynchronous(entry *slotEntry[T], value T) {
	entry.fn(value)
}

// deferredThunk pairs a queued DeferredSynchronous invocation with the
// id of the slot that produced it, so InvokeDeferred can skip thunks
// whose slot was disconnected before the queue was drained (spec
// §4.7.5).
type deferredThunk struct {
	slotID uint32
	fn     func()
}

// runDeferred queues the invocation on the signal's own deferred queue
// instead of running it now; a later InvokeDeferred call drains it.
func (s *Signal[T]) runDeferred(id uint32, entry *slotEntry[T], value T) {
	s.deferredOnce.Do(func() {
		s.deferredQueue = newMPSCQueue[deferredThunk](ringSegmentCapacity)
	})
	fn, v := entry.fn, value
	s.deferredQueue.enqueue(deferredThunk{slotID: id, fn: func() { fn(v) }})
}

// InvokeDeferred synchronously runs every DeferredSynchronous
// invocation queued since the last call, on the calling goroutine, in
// emission order. Under EmissionGuard, a thunk whose slot was
// disconnected after it was queued but before this call is skipped
// rather than run (spec §4.7.5). Safe to call with nothing queued.
func (s *Signal[T]) InvokeDeferred() {
	s.deferredOnce.Do(func() {
		s.deferredQueue = newMPSCQueue[deferredThunk](ringSegmentCapacity)
	})
	for {
		thunk, err := s.deferredQueue.dequeue()
		if err != nil {
			return
		}
		if s.opts.emissionGuard && !s.stillConnected(thunk.slotID) {
			continue
		}
		// Unlike the worker-goroutine schemes, this runs on the caller
		// of InvokeDeferred, so a slot panic propagates to it directly
		// (spec §7) rather than being contained.
		thunk.fn()
	}
}

func (s *Signal[T]) runAsynchronous(id uint32, entry *slotEntry[T], value T) {
	// Blocks briefly if the inflight cap is already saturated, matching
	// the reference implementation's blocking sem.acquire() ahead of
	// spawning a detached worker (spec §6's "briefly... at the inflight
	// cap"); a cap reached this routinely is itself worth a lifecycle
	// note.
	if err := s.asyncSem.acquire(context.Background()); err != nil {
		return
	}
	go func() {
		defer s.asyncSem.release()
		if s.opts.emissionGuard && !s.stillConnected(id) {
			return
		}
		s.runContained(func() { entry.fn(value) })
	}()
}

func (s *Signal[T]) runStrand(id uint32, entry *slotEntry[T], value T) {
	s.strandMu.Lock()
	q, ok := s.strandQueues[id]
	s.strandMu.Unlock()
	if !ok {
		return
	}
	fn, v := entry.fn, value
	q.enqueue(func() { fn(v) })
}

func (s *Signal[T]) runThreadPooled(id uint32, entry *slotEntry[T], value T) {
	fn, v := entry.fn, value
	getThreadPool(s.opts.logger).submit(func() {
		if s.opts.emissionGuard && !s.stillConnected(id) {
			return
		}
		s.runContained(func() { fn(v) })
	})
}

// stillConnected reports whether id is currently connected and not
// pending disconnection, for a ThreadPooled or Asynchronous worker to
// re-check just before invoking the slot body (spec §4.7.5/§4.7.6's
// "check connection at execution time, not at submission time").
func (s *Signal[T]) stillConnected(id uint32) bool {
	s.backBufferLock.RLock()
	_, disconnecting := s.disconnectBuffer[id]
	s.backBufferLock.RUnlock()
	if disconnecting {
		return false
	}
	s.signalLock.RLock()
	_, ok := s.slots[id]
	s.signalLock.RUnlock()
	return ok
}

// strandListener drains one Strand slot's queue in FIFO order on a
// dedicated goroutine until disconnectSlot enqueues the nil sentinel.
// Adaptive back-off identical in spirit to the thread pool's (spec
// §4.7.6): non-blocking dequeue, doubling sleep up to a calibrated
// threshold, then a blocking dequeue.
func (s *Signal[T]) strandListener(q *mpscQueue[func()]) {
	maxSpinWait := calibrateMaxSpinWait()
	backoff := iox.Backoff{}
	spinStart := startTimer()
	for {
		fn, err := q.dequeue()
		if err == nil {
			if fn == nil {
				return
			}
			backoff.Reset()
			spinStart = startTimer()
			s.runContained(fn)
			continue
		}
		if !isWouldBlock(err) {
			continue
		}
		if spinStart.elapsed() < maxSpinWait {
			backoff.Wait()
			continue
		}
		fn = q.dequeueBlocking()
		if fn == nil {
			return
		}
		backoff.Reset()
		spinStart = startTimer()
		s.runContained(fn)
	}
}

// runContained invokes fn, silently recovering any panic so it cannot
// escape this worker goroutine and crash the process — the Go
// realization of the reference scheme's "contained to worker
// thread...otherwise silent" invariant (spec §7, §8).
func (s *Signal[T]) runContained(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

// Close disconnects every slot and blocks until every outstanding
// Asynchronous worker for this signal has returned (spec §4.7.7's
// destruction semantics). Strand workers are told to exit by
// DisconnectAll but are not waited on, so a Strand slot body may still
// be running when Close returns. ThreadPooled submissions already in
// flight are not waited on either.
func (s *Signal[T]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.DisconnectAll()
	_ = s.asyncSem.acquireAll(context.Background())
}
