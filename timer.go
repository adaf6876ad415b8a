// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import "time"

// monotonicTimer measures elapsed wall-clock-independent duration. Used
// once per process by calibrateMaxSpinWait to size the spin-then-block
// threshold, and by the pool and strand consumer loops to track how long
// they have spun empty against that threshold (spec §4.4's "calibrated
// once via a monotonic clock" design note).
//
// time.Now/time.Since are monotonic on every platform Go supports, so
// this needs no third-party clock source — the teacher and the rest of
// the pack never reach for one either.
type monotonicTimer struct {
	start time.Time
}

func startTimer() monotonicTimer {
	return monotonicTimer{start: time.Now()}
}

func (t monotonicTimer) elapsed() time.Duration {
	return time.Since(t.start)
}
