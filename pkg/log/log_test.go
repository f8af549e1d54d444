// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package log

import (
	"testing"
)

func init() {
	EnableLogCaching(3, 12)
}

func TestCaching(t *testing.T) {
	prependTime = false
	tests := []struct{ str, want string }{
		{"fit", "fit\n"},
		{"bad k", "fit\nbad k\n"},
		{"", "fit\nbad k\n"}, // empty messages are not cached
		{"scored", "bad k\nscored\n"},
		{"saved", "scored\nsaved\n"},
		{"x", "scored\nsaved\nx\n"},
		// Oversized messages evict everything but stay cached themselves.
		{"this message is very long", "this message is very long\n"},
	}
	for _, test := range tests {
		// Above the console verbosity, caching happens regardless.
		Logf(1, test.str)
		if out := CachedLogOutput(); out != test.want {
			t.Fatalf("wrote: %v\nwant: %v\ngot: %v", test.str, test.want, out)
		}
	}
	Errorf("fit failed: bad k")
	if out, want := CachedLogOutput(), "fit failed: bad k\n"; out != want {
		t.Fatalf("after Errorf want: %v\ngot: %v", want, out)
	}
}
