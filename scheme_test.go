// Copyright 2026 The sigslot Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigslot

import "testing"

func TestSchemeString(t *testing.T) {
	cases := []struct {
		s    Scheme
		want string
	}{
		{Synchronous, "Synchronous"},
		{DeferredSynchronous, "DeferredSynchronous"},
		{Asynchronous, "Asynchronous"},
		{Strand, "Strand"},
		{ThreadPooled, "ThreadPooled"},
		{Scheme(99), "Scheme(unknown)"},
	}
	for _, c := range cases {
		if got := c.s.String(); got != c.want {
			t.Fatalf("Scheme(%d).String(): got %q, want %q", c.s, got, c.want)
		}
	}
}
