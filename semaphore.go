// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// asyncSemaphore caps the number of simultaneously live Asynchronous
// worker goroutines for one Signal (spec §3 Invariant 6, §4.7). It wraps
// a weighted semaphore rather than a plain counting one so destruction
// can block for the full weight in one call (acquireAll) instead of
// looping acquire-by-one.
type asyncSemaphore struct {
	sem    *semaphore.Weighted
	weight int64
}

func newAsyncSemaphore(n int64) *asyncSemaphore {
	return &asyncSemaphore{sem: semaphore.NewWeighted(n), weight: n}
}

// tryAcquire claims one permit without blocking. Returns false if the
// semaphore is fully claimed.
func (s *asyncSemaphore) tryAcquire() bool {
	return s.sem.TryAcquire(1)
}

// acquire claims one permit, blocking until one is available. Mirrors
// the original's blocking `sem.acquire()` call ahead of spawning a
// detached worker (spec's "briefly blocks on async-permit acquisition
// if at the inflight cap").
func (s *asyncSemaphore) acquire(ctx context.Context) error {
	return s.sem.Acquire(ctx, 1)
}

// release returns one permit.
func (s *asyncSemaphore) release() {
	s.sem.Release(1)
}

// acquireAll blocks until every outstanding permit has been returned,
// i.e. until no Asynchronous worker for this signal is still running.
// Used by Signal destruction (spec §4.7.7) to drain in-flight async
// slot invocations before the signal is torn down.
func (s *asyncSemaphore) acquireAll(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, s.weight); err != nil {
		return err
	}
	s.sem.Release(s.weight)
	return nil
}
