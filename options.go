// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import "go.uber.org/zap"

// defaultMaxAsyncInflight is the default per-signal cap on simultaneously
// live Asynchronous worker goroutines (spec §3, §4.7, §6).
const defaultMaxAsyncInflight = 1024

// signalOptions configures a Signal at construction. There is no file,
// flag, or environment-variable based configuration surface (spec §6) —
// this is the entire configuration model, the same functional shape the
// teacher's Builder uses for queue construction.
type signalOptions struct {
	emissionGuard    bool
	maxAsyncInflight int64
	logger           *zap.Logger
}

// SignalOption configures a [Signal] at construction time.
type SignalOption func(*signalOptions)

// EmissionGuard enables the concurrency-safe connect/disconnect path
// (spec §4.7.1, §4.7.2, §4.7.4). Without it, Connect and Disconnect take
// an exclusive lock directly against the live slot map; a slot body that
// re-enters Connect/Disconnect on the same Signal while the guard is off
// deadlocks (spec §5 "No unsafe reentrancy").
func EmissionGuard() SignalOption {
	return func(o *signalOptions) { o.emissionGuard = true }
}

// MaxAsyncInflight overrides the default cap (1024) on simultaneously
// live Asynchronous worker goroutines for one Signal (spec §3 Invariant 6).
func MaxAsyncInflight(n int) SignalOption {
	return func(o *signalOptions) {
		if n > 0 {
			o.maxAsyncInflight = int64(n)
		}
	}
}

// WithLogger attaches a structured logger for lifecycle diagnostics.
// The only event logged is the process-wide pool's startup, and only the
// logger of the Signal whose ThreadPooled connect starts the pool is
// used; strand start/stop and Close are not logged. Never used to log
// per-emission slot failures — see the package doc's "Error handling"
// section. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) SignalOption {
	return func(o *signalOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

func newSignalOptions(opts ...SignalOption) signalOptions {
	o := signalOptions{
		maxAsyncInflight: defaultMaxAsyncInflight,
		logger:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// roundToPow2 rounds n up to the next power of 2. Shared by ring.go and
// mpsc.go segment sizing.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing between hot atomic
// fields, carried from the teacher's ring/queue layout idiom.
type pad [64]byte

// padShort pads out the remainder of a cache line after an 8-byte field.
type padShort [64 - 8]byte
