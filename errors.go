// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import "code.hybscloud.com/iox"

// errWouldBlock indicates a ring segment cannot proceed immediately: full
// on enqueue, empty on dequeue. It is an internal control-flow signal used
// while walking the segment chain in mpsc.go, never returned across the
// public Signal API — emit, connect, and disconnect are all total per
// spec §7.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency with
// the rest of the hybscloud queue stack.
var errWouldBlock = iox.ErrWouldBlock

// isWouldBlock reports whether err is the ring's would-block signal.
func isWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}
