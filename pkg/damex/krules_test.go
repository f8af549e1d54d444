// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package damex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKRules(t *testing.T) {
	assert.Equal(t, 31, KSqrt(1000))
	assert.Equal(t, 2, KSqrt(4))
	assert.Equal(t, 1, KSqrt(2))
	assert.Equal(t, 6, KLog(1000))
	assert.Equal(t, 2, KLog(8))
	assert.Equal(t, 100, KFrac(0.1)(1000))
	assert.Equal(t, 1, KFrac(0.001)(100)) // clamped to at least 1
}

func TestParseKRule(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"", 1000, 31},
		{"sqrt", 1000, 31},
		{"log", 1000, 6},
		{"frac:0.25", 1000, 250},
	}
	for _, test := range tests {
		rule, err := ParseKRule(test.name)
		require.NoError(t, err, "rule %q", test.name)
		assert.Equal(t, test.want, rule(test.n), "rule %q", test.name)
	}
	for _, name := range []string{"median", "frac:abc", "frac:0", "frac:1", "frac:-0.5"} {
		_, err := ParseKRule(name)
		assert.Error(t, err, "rule %q", name)
	}
}
