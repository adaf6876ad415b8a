// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package sigslot

// raceEnabled is true when the race detector is active.
// Used by tests to skip linearizability-style concurrent tests on the
// atomics-based ring, which trigger false positives because the race
// detector cannot observe happens-before relationships established
// through acquire-release atomics alone.
const raceEnabled = true
