// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package rank implements the empirical rank transform that puts all
// features of a sample matrix on a common pseudo-Pareto scale.
// The transform is a per-feature monotone bijection between rank order
// and standardized score; it knows nothing about cross-feature
// dependence, which is recovered downstream from co-occurrence of
// large standardized scores.
package rank

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Score converts a 0-indexed rank among n values to the standardized
// pseudo-Pareto score 1/(1 - r/(n+1)). Scores are >= 1 and strictly
// increase with rank; the largest in-sample score is (n+1)/2.
func Score(rank, n int) float64 {
	return 1 / (1 - float64(rank)/float64(n+1))
}

// Transform standardizes an n x d sample matrix column by column.
// Each entry maps to Score(r, n) where r is its stable ascending rank
// within its feature column (ties keep input order). The second result
// holds the column-sorted raw values, aligned so that order[j][i] is
// the raw value behind score Score(i, n); callers keep it for
// out-of-sample lookups via Table.
//
// For n=1 every rank is 0 and every score is exactly 1; this is a
// boundary of the formula, not an error.
func Transform(x [][]float64) (v, order [][]float64, err error) {
	if err := Validate(x); err != nil {
		return nil, nil, err
	}
	n, d := len(x), len(x[0])
	v = make([][]float64, n)
	for i := range v {
		v[i] = make([]float64, d)
	}
	order = make([][]float64, d)
	// Columns are independent, rank them in parallel.
	var eg errgroup.Group
	for j := 0; j < d; j++ {
		j := j
		eg.Go(func() error {
			idx := make([]int, n)
			for i := range idx {
				idx[i] = i
			}
			sort.SliceStable(idx, func(a, b int) bool {
				return x[idx[a]][j] < x[idx[b]][j]
			})
			col := make([]float64, n)
			for pos, i := range idx {
				col[pos] = x[i][j]
				v[i][j] = Score(pos, n)
			}
			order[j] = col
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return v, order, nil
}

// Validate reports whether x is a usable sample matrix: non-empty,
// rectangular and free of NaN/Inf values. Inputs are never coerced.
func Validate(x [][]float64) error {
	if len(x) == 0 {
		return fmt.Errorf("empty sample matrix")
	}
	d := len(x[0])
	if d == 0 {
		return fmt.Errorf("sample matrix has no features")
	}
	for i, row := range x {
		if len(row) != d {
			return fmt.Errorf("ragged sample matrix: row %v has %v features, row 0 has %v", i, len(row), d)
		}
		for j, val := range row {
			if math.IsNaN(val) || math.IsInf(val, 0) {
				return fmt.Errorf("non-finite value %v at row %v, feature %v", val, i, j)
			}
		}
	}
	return nil
}

// Table holds the per-feature order statistics of a training set:
// the sorted raw values plus a +Inf sentinel, so that a lookup always
// finds an insertion position even for values beyond anything seen.
// A Table is built once at fit time and is read-only afterwards.
type Table struct {
	cols [][]float64 // sorted, sentinel-terminated
	n    int         // training sample count (sentinel excluded)
}

// NewTable wraps the order statistics returned by Transform.
func NewTable(order [][]float64) *Table {
	t := &Table{cols: make([][]float64, len(order))}
	for j, col := range order {
		c := make([]float64, len(col)+1)
		copy(c, col)
		c[len(col)] = math.Inf(1)
		t.cols[j] = c
	}
	if len(order) > 0 {
		t.n = len(order[0])
	}
	return t
}

// Dim returns the number of features.
func (t *Table) Dim() int { return len(t.cols) }

// Len returns the number of training samples behind the table.
func (t *Table) Len() int { return t.n }

// Columns returns a copy of the stored order statistics without the
// sentinel, in the shape Transform produced them.
func (t *Table) Columns() [][]float64 {
	cols := make([][]float64, len(t.cols))
	for j, col := range t.cols {
		c := make([]float64, t.n)
		copy(c, col[:t.n])
		cols[j] = c
	}
	return cols
}

// Query standardizes an out-of-sample point against the stored order
// statistics: the insertion position of x[j] among the training values
// (first index holding a value >= x[j]) plays the role of its rank.
// This realizes the empirical CDF learned at fit time; ranks are never
// recomputed with the query point included. A value beyond all
// training values lands on the sentinel and scores n+1.
func (t *Table) Query(x []float64) ([]float64, error) {
	if len(x) != len(t.cols) {
		return nil, fmt.Errorf("query has %v features, table has %v", len(x), len(t.cols))
	}
	v := make([]float64, len(x))
	for j, val := range x {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("non-finite value %v at feature %v", val, j)
		}
		pos := sort.SearchFloat64s(t.cols[j], val)
		v[j] = Score(pos, t.n)
	}
	return v, nil
}
