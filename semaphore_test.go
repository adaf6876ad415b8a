// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import (
	"context"
	"testing"
	"time"
)

func TestAsyncSemaphoreCapsConcurrentPermits(t *testing.T) {
	s := newAsyncSemaphore(2)

	if !s.tryAcquire() {
		t.Fatal("first tryAcquire should succeed")
	}
	if !s.tryAcquire() {
		t.Fatal("second tryAcquire should succeed")
	}
	if s.tryAcquire() {
		t.Fatal("third tryAcquire should fail, cap is 2")
	}

	s.release()
	if !s.tryAcquire() {
		t.Fatal("tryAcquire should succeed after a release")
	}
}

func TestAsyncSemaphoreAcquireAllWaitsForOutstanding(t *testing.T) {
	s := newAsyncSemaphore(1)
	if !s.tryAcquire() {
		t.Fatal("tryAcquire should succeed")
	}

	done := make(chan struct{})
	go func() {
		_ = s.acquireAll(context.Background())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("acquireAll returned before the outstanding permit was released")
	case <-time.After(50 * time.Millisecond):
	}

	s.release()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("acquireAll never returned after the permit was released")
	}
}
