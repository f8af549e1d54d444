// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromScores(t *testing.T) {
	p := FromScores([]float64{5, 1, 3}, 2)
	assert.Equal(t, 3, p.Dim())
	assert.True(t, p.Bit(0))
	assert.False(t, p.Bit(1))
	assert.True(t, p.Bit(2))
	assert.Equal(t, 2, p.Count())
	assert.False(t, p.Empty())

	// The cutoff comparison is strict.
	onCutoff := FromScores([]float64{2, 3}, 2)
	assert.False(t, onCutoff.Bit(0))
	assert.True(t, onCutoff.Bit(1))

	none := FromScores([]float64{1, 1}, 2)
	assert.True(t, none.Empty())
	assert.Equal(t, 0, none.Count())
}

func TestFromIndices(t *testing.T) {
	p := FromIndices(5, 0, 3)
	assert.Equal(t, FromScores([]float64{9, 1, 1, 9, 1}, 2).Key(), p.Key())
	assert.Panics(t, func() { FromIndices(5, 5) })
	assert.Panics(t, func() { FromIndices(5, -1) })
}

func TestKeyRoundtrip(t *testing.T) {
	tests := []struct {
		dim     int
		indices []int
	}{
		{1, nil},
		{1, []int{0}},
		{5, []int{0, 3}},
		{64, []int{0, 63}},
		{65, []int{64}},
		{70, []int{1, 69}},
		{130, []int{0, 64, 129}},
	}
	for _, test := range tests {
		p := FromIndices(test.dim, test.indices...)
		got, err := FromKey(p.Key(), test.dim)
		require.NoError(t, err)
		assert.Equal(t, p.Key(), got.Key())
		assert.Equal(t, p.Dim(), got.Dim())
		assert.Equal(t, len(test.indices), got.Count())
	}
}

func TestKeyCanonical(t *testing.T) {
	// Same index set, same key, however the pattern was built.
	a := FromIndices(70, 2, 69)
	b := FromScores(scoresWith(70, 2, 69), 1)
	assert.Equal(t, a.Key(), b.Key())

	// Different dimensions never collide on key length within a map.
	assert.Equal(t, 8, len(FromIndices(5).Key()))
	assert.Equal(t, 16, len(FromIndices(70).Key()))
}

func TestFromKeyErrors(t *testing.T) {
	_, err := FromKey("short", 5)
	assert.Error(t, err)

	// A key carrying bits beyond the dimension is corrupt.
	bad := FromIndices(72, 71).Key()
	_, err = FromKey(bad, 70)
	assert.Error(t, err)
	ok := FromIndices(70, 69).Key()
	_, err = FromKey(ok, 70)
	assert.NoError(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, "{0,3}", FromIndices(5, 0, 3).String())
	assert.Equal(t, "{2}", FromIndices(3, 2).String())
	assert.Equal(t, "{}", FromIndices(3).String())
}

func scoresWith(dim int, indices ...int) []float64 {
	v := make([]float64, dim)
	for _, i := range indices {
		v[i] = 2
	}
	return v
}
