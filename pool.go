// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import (
	"sync"
	"time"

	"code.hybscloud.com/iox"
	"go.uber.org/zap"
)

// poolSpokes is the fixed number of worker goroutines backing the
// process-wide ThreadPooled pool (spec §4.3, §4.4).
const poolSpokes = 32

// blockAfterMultiple is how many multiples of the calibrated time of one
// empty dequeue attempt a listener spins before escalating to a blocking
// dequeue.
const blockAfterMultiple = 1000

// threadPool is the process-wide ThreadPooled worker pool: a wheel of
// MPSC queues, one per worker goroutine, fed round-robin by submit.
// Lazily started on first use by a ThreadPooled slot connection and
// never torn down — it lives for the lifetime of the process, matching
// the teacher's global-singleton lifecycle for shared infrastructure.
type threadPool struct {
	wheel       *wheel[*mpscQueue[func()]]
	logger      *zap.Logger
	maxSpinWait time.Duration
}

var (
	maxSpinWaitOnce   sync.Once
	cachedMaxSpinWait time.Duration
)

// calibrateMaxSpinWait times 1000 empty dequeue attempts on a scratch
// queue and scales the per-attempt average by blockAfterMultiple to size
// this process's spin-then-block threshold, rather than
// hard-coding a duration that would be wrong on a slower or faster
// machine (spec §4.4's "calibrated once via a monotonic clock" design
// note). Computed once process-wide and shared by every thread-pool
// spoke and every strand listener.
func calibrateMaxSpinWait() time.Duration {
	maxSpinWaitOnce.Do(func() {
		q := newMPSCQueue[func()](2)
		timer := startTimer()
		for i := 0; i < 1000; i++ {
			_, _ = q.dequeue()
		}
		perAttempt := timer.elapsed() / 1000
		if perAttempt <= 0 {
			perAttempt = time.Nanosecond
		}
		cachedMaxSpinWait = perAttempt * blockAfterMultiple
	})
	return cachedMaxSpinWait
}

var (
	globalPool     *threadPool
	globalPoolOnce sync.Once
)

// getThreadPool returns the singleton pool, starting its workers on the
// first call.
func getThreadPool(logger *zap.Logger) *threadPool {
	globalPoolOnce.Do(func() {
		p := &threadPool{
			wheel:       newWheel(poolSpokes, func() *mpscQueue[func()] { return newMPSCQueue[func()](ringSegmentCapacity) }),
			logger:      logger,
			maxSpinWait: calibrateMaxSpinWait(),
		}
		for i := 0; i < poolSpokes; i++ {
			go p.queueListener(p.wheel.spoke(i))
		}
		p.logger.Debug("thread pool started",
			zap.Int("spokes", poolSpokes),
			zap.Duration("max_spin_wait", p.maxSpinWait),
		)
		globalPool = p
	})
	return globalPool
}

// submit enqueues task onto the next spoke in round-robin order (spec
// §4.3's "lock-free shard choice").
func (p *threadPool) submit(task func()) {
	p.wheel.next().enqueue(task)
}

// queueListener drains one spoke for the lifetime of the process,
// adapting between spinning, sleeping with exponential backoff, and
// finally a blocking dequeue once the backoff exceeds its threshold
// (spec §4.4's calibrated spin-then-block design note; grounded on the
// original queueListener's doubling-wait loop).
func (p *threadPool) queueListener(q *mpscQueue[func()]) {
	backoff := iox.Backoff{}
	spinStart := startTimer()
	for {
		task, err := q.dequeue()
		if err == nil {
			backoff.Reset()
			spinStart = startTimer()
			p.runTask(task)
			continue
		}
		if !isWouldBlock(err) {
			continue
		}
		if spinStart.elapsed() < p.maxSpinWait {
			backoff.Wait()
			continue
		}
		// spun/slept past the calibrated threshold: block until a
		// producer signals rather than busy-polling further.
		p.runTask(q.dequeueBlocking())
		backoff.Reset()
		spinStart = startTimer()
	}
}

// runTask invokes task, silently containing any panic to this worker
// goroutine. An unrecovered panic would otherwise crash the whole
// process, unlike the original C++ implementation's per-thread crash
// containment — see
// DESIGN.md's Open Question decisions for why this recover is silent.
func (p *threadPool) runTask(task func()) {
	defer func() { _ = recover() }()
	task()
}
