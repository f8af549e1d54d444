// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package stat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	v := New("test counter", "description")
	v.Add(3)
	v.Add(4)
	assert.Equal(t, 7, v.Val())
	v.Set(10)
	assert.Equal(t, 10, v.Val())
}

func TestExternal(t *testing.T) {
	val := 42
	v := New("test external", "description", func() int { return val })
	assert.Equal(t, 42, v.Val())
	val = 43
	assert.Equal(t, 43, v.Val())
	assert.Panics(t, func() { v.Add(1) })
	assert.Panics(t, func() { v.Set(1) })
}

func TestDistribution(t *testing.T) {
	v := New("test distribution", "description", Distribution{})
	assert.Equal(t, 0, v.Val())
	assert.Equal(t, 0.0, v.Quantile(0.5))
	for i := 1; i <= 100; i++ {
		v.Sample(float64(i))
	}
	assert.InDelta(t, 50.5, v.Float(), 1)
	q := v.Quantile(0.9)
	assert.Greater(t, q, 80.0)
	assert.LessOrEqual(t, q, 101.0)
	assert.Panics(t, func() { v.Set(1) })
}

func TestSampleOnCounter(t *testing.T) {
	v := New("test sample on counter", "description")
	assert.Panics(t, func() { v.Sample(1) })
}

func TestCollect(t *testing.T) {
	New("test collect b", "desc b", Console, func(v int) string { return fmt.Sprintf("%v ms", v) }).Add(5)
	New("test collect a", "desc a", Console)
	all := Collect(Console)
	var got []UI
	for _, ui := range all {
		if ui.Name == "test collect a" || ui.Name == "test collect b" {
			got = append(got, ui)
		}
	}
	assert.Len(t, got, 2)
	// Name-sorted output.
	assert.Equal(t, "test collect a", got[0].Name)
	assert.Equal(t, "test collect b", got[1].Name)
	assert.Equal(t, "5 ms", got[1].Value)
	assert.Equal(t, 5, got[1].V)
}
