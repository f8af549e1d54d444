// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package pattern provides the support pattern type (which coordinates
// of a standardized observation are simultaneously large) and a sparse
// mass map keyed by such patterns.
package pattern

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

const wordBits = 64

// Pattern is a fixed-width bit set over feature indices. Two
// observations with the same pattern are the same extreme direction
// regardless of magnitude.
type Pattern struct {
	dim  int
	bits []uint64
}

// FromScores builds the pattern of a standardized vector: bit i is set
// iff v[i] > cutoff.
func FromScores(v []float64, cutoff float64) Pattern {
	p := Pattern{
		dim:  len(v),
		bits: make([]uint64, (len(v)+wordBits-1)/wordBits),
	}
	for i, s := range v {
		if s > cutoff {
			p.bits[i/wordBits] |= 1 << (i % wordBits)
		}
	}
	return p
}

// FromIndices builds a pattern of the given dimension with exactly the
// listed bits set.
func FromIndices(dim int, indices ...int) Pattern {
	p := Pattern{
		dim:  dim,
		bits: make([]uint64, (dim+wordBits-1)/wordBits),
	}
	for _, i := range indices {
		if i < 0 || i >= dim {
			panic(fmt.Sprintf("index %v out of range for dim %v", i, dim))
		}
		p.bits[i/wordBits] |= 1 << (i % wordBits)
	}
	return p
}

// Dim returns the number of features the pattern spans.
func (p Pattern) Dim() int { return p.dim }

// Bit reports whether feature i is part of the pattern.
func (p Pattern) Bit(i int) bool {
	return p.bits[i/wordBits]&(1<<(i%wordBits)) != 0
}

// Count returns the pattern cardinality (number of large coordinates).
func (p Pattern) Count() int {
	n := 0
	for _, w := range p.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Empty reports whether no coordinate is large.
func (p Pattern) Empty() bool {
	for _, w := range p.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

// Key returns the canonical fixed-width encoding of the pattern.
// Equal patterns of equal dimension always produce identical keys, so
// the result is safe to use for hashing and map lookups.
func (p Pattern) Key() string {
	buf := make([]byte, 8*len(p.bits))
	for i, w := range p.bits {
		binary.LittleEndian.PutUint64(buf[8*i:], w)
	}
	return string(buf)
}

// FromKey reconstructs a pattern of the given dimension from its Key
// encoding.
func FromKey(key string, dim int) (Pattern, error) {
	words := (dim + wordBits - 1) / wordBits
	if len(key) != 8*words {
		return Pattern{}, fmt.Errorf("pattern key has %v bytes, dim %v needs %v", len(key), dim, 8*words)
	}
	p := Pattern{dim: dim, bits: make([]uint64, words)}
	for i := range p.bits {
		p.bits[i] = binary.LittleEndian.Uint64([]byte(key[8*i : 8*i+8]))
	}
	if words > 0 && dim%wordBits != 0 {
		if p.bits[words-1]>>(dim%wordBits) != 0 {
			return Pattern{}, fmt.Errorf("pattern key has bits beyond dim %v", dim)
		}
	}
	return p, nil
}

// String renders the pattern as its set of feature indices, e.g. {0,3}.
func (p Pattern) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := 0; i < p.dim; i++ {
		if !p.Bit(i) {
			continue
		}
		if !first {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(i))
		first = false
	}
	sb.WriteByte('}')
	return sb.String()
}
