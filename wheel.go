// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import "code.hybscloud.com/atomix"

// wheel is a fixed-size round-robin shard selector with lock-free shard
// choice (spec §4.3): an array of N spokes plus an atomic cursor
// advanced via a CAS loop. Used by the process-wide thread pool to
// distribute submissions across its per-spoke queues without a global
// lock.
type wheel[T any] struct {
	spokes  []T
	current atomix.Uint64
}

func newWheel[T any](n int, make_ func() T) *wheel[T] {
	w := &wheel[T]{spokes: make([]T, n)}
	for i := range w.spokes {
		w.spokes[i] = make_()
	}
	return w
}

func (w *wheel[T]) size() int {
	return len(w.spokes)
}

func (w *wheel[T]) spoke(index int) T {
	return w.spokes[index]
}

// next returns the next spoke in round-robin order and advances the
// cursor. Fairness is approximate: under CAS races a losing caller
// retries, but no caller starves while the wheel globally makes
// progress.
func (w *wheel[T]) next() T {
	n := uint64(len(w.spokes))
	for {
		cur := w.current.LoadAcquire()
		next := (cur + 1) % n
		if w.current.CompareAndSwapAcqRel(cur, next) {
			return w.spokes[cur]
		}
	}
}
