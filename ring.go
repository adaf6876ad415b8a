// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// ringSegmentCapacity is the fixed capacity of each segment that backs
// an unbounded MPSC queue (spec §4.2).
const ringSegmentCapacity = 256

// ring is a fixed-capacity, power-of-two bounded multi-producer
// multi-consumer queue. Each cell carries a payload plus an atomic
// sequence number; enqueue/dequeue compare the cell's sequence against
// the claiming cursor to detect full/empty and to hand the cell off
// between producer and consumer without a lock (spec §4.1, Vyukov's
// bounded MPMC queue design).
//
// ring only ever has one consumer in this package (mpsc.go drains the
// tail segment from a single goroutine), but the algorithm itself is
// MPMC: multiple producer goroutines enqueue into the same segment
// concurrently while the consumer drains it.
type ring[T any] struct {
	_        pad
	enqueue_ atomix.Uint64 // producer cursor
	_        pad
	dequeue_ atomix.Uint64 // consumer cursor
	_        pad
	cells    []ringCell[T]
	mask     uint64
}

type ringCell[T any] struct {
	sequence atomix.Uint64
	data     T
	_        padShort
}

// newRing creates a ring of capacity n, rounded up to the next power of
// two; n < 2 yields a capacity of 2.
func newRing[T any](n int) *ring[T] {
	n = roundToPow2(n)
	r := &ring[T]{
		cells: make([]ringCell[T], n),
		mask:  uint64(n - 1),
	}
	for i := range r.cells {
		r.cells[i].sequence.StoreRelaxed(uint64(i))
	}
	return r
}

func (r *ring[T]) cap() int {
	return int(r.mask + 1)
}

// tryEnqueue adds elem to the ring. Returns errWouldBlock if the ring is
// full at the instant of the attempt.
func (r *ring[T]) tryEnqueue(elem T) error {
	sw := spin.Wait{}
	for {
		pos := r.enqueue_.LoadAcquire()
		cell := &r.cells[pos&r.mask]
		seq := cell.sequence.LoadAcquire()
		diff := int64(seq) - int64(pos)

		switch {
		case diff == 0:
			if r.enqueue_.CompareAndSwapAcqRel(pos, pos+1) {
				cell.data = elem
				cell.sequence.StoreRelease(pos + 1)
				return nil
			}
		case diff < 0:
			return errWouldBlock
		default:
			// another producer raced ahead of us; reload and retry
		}
		sw.Once()
	}
}

// tryDequeue removes and returns an element. Returns errWouldBlock if the
// ring is empty at the instant of the attempt.
func (r *ring[T]) tryDequeue() (T, error) {
	sw := spin.Wait{}
	for {
		pos := r.dequeue_.LoadAcquire()
		cell := &r.cells[pos&r.mask]
		seq := cell.sequence.LoadAcquire()
		diff := int64(seq) - int64(pos+1)

		switch {
		case diff == 0:
			if r.dequeue_.CompareAndSwapAcqRel(pos, pos+1) {
				elem := cell.data
				var zero T
				cell.data = zero
				cell.sequence.StoreRelease(pos + r.mask + 1)
				return elem, nil
			}
		case diff < 0:
			var zero T
			return zero, errWouldBlock
		default:
			// another consumer raced ahead of us; reload and retry
		}
		sw.Once()
	}
}
