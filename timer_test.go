// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import (
	"testing"
	"time"
)

func TestMonotonicTimerElapsed(t *testing.T) {
	timer := startTimer()
	time.Sleep(10 * time.Millisecond)
	if got := timer.elapsed(); got < 10*time.Millisecond {
		t.Fatalf("elapsed: got %v, want >= 10ms", got)
	}
}

func TestCalibrateMaxSpinWaitIsPositiveAndCached(t *testing.T) {
	a := calibrateMaxSpinWait()
	b := calibrateMaxSpinWait()
	if a <= 0 {
		t.Fatalf("calibrateMaxSpinWait: got %v, want > 0", a)
	}
	if a != b {
		t.Fatalf("calibrateMaxSpinWait: not cached, got %v then %v", a, b)
	}
}
