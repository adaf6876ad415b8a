// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// sharedLock is a preferred-writer shared lock (spec §4.5): many readers
// xor one writer, and a waiting writer blocks new readers from
// acquiring the shared side so writers cannot be starved by a steady
// stream of readers.
//
// Used by Signal to gate Emit (readers, one per concurrent emitter)
// against Connect/Disconnect's unguarded path (the single writer).
type sharedLock struct {
	readers        atomix.Int32
	waitingWriters atomix.Int32
	writer         atomix.Bool

	mu       sync.Mutex
	readerCV sync.Cond
	writerCV sync.Cond
}

func newSharedLock() *sharedLock {
	l := &sharedLock{}
	l.readerCV.L = &l.mu
	l.writerCV.L = &l.mu
	return l
}

// Lock acquires the exclusive (writer) side. Waits for readers == 0 and
// no writer currently held.
func (l *sharedLock) Lock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waitingWriters.AddAcqRel(1)
	for l.readers.LoadAcquire() > 0 || l.writer.LoadAcquire() {
		l.writerCV.Wait()
	}
	l.waitingWriters.AddAcqRel(-1)
	l.writer.StoreRelease(true)
}

// Unlock releases the exclusive side and wakes one waiting writer and
// all waiting readers. Woken readers re-check and go back to waiting
// while any writer is waiting, so a waiting writer still goes first.
func (l *sharedLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.StoreRelease(false)
	l.writerCV.Signal()
	l.readerCV.Broadcast()
}

// RLock acquires the shared (reader) side. Waits for no writer held and
// no writer waiting (writer preference).
func (l *sharedLock) RLock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.writer.LoadAcquire() || l.waitingWriters.LoadAcquire() > 0 {
		l.readerCV.Wait()
	}
	l.readers.AddAcqRel(1)
}

// RUnlock releases the shared side. The last reader to leave wakes a
// waiting writer.
func (l *sharedLock) RUnlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers.AddAcqRel(-1) == 0 {
		l.writerCV.Signal()
	}
}
