// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package damex

import (
	"fmt"
	"math"

	"github.com/mhardion/damex/pkg/pattern"
	"github.com/mhardion/damex/pkg/rank"
)

// Snapshot is the serializable fitted state of an estimator: the order
// statistics table plus the mass map and the scalars needed to score.
// The K rule is a function and is not captured; an estimator restored
// from a snapshot scores with the recorded k and falls back to the
// default rule if it is ever re-fitted.
type Snapshot struct {
	N         int
	Dim       int
	K         int
	Eps       float64
	P         float64
	Cutoff    float64
	TotalMass float64
	Order     [][]float64 // per-feature sorted training values, no sentinel
	Patterns  []pattern.Item
}

// Snapshot captures the fitted state. Fails on an unfitted estimator.
func (e *Estimator) Snapshot() (*Snapshot, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	return &Snapshot{
		N:         e.n,
		Dim:       e.dim,
		K:         e.k,
		Eps:       e.cfg.Eps,
		P:         e.cfg.P,
		Cutoff:    e.cutoff,
		TotalMass: e.totalMass,
		Order:     e.table.Columns(),
		Patterns:  e.masses.Items(),
	}, nil
}

// FromSnapshot reconstructs a fitted estimator. Scores produced by the
// restored estimator match the original bit for bit.
func FromSnapshot(s *Snapshot) (*Estimator, error) {
	if s.N < 1 || s.Dim < 1 || s.K < 1 {
		return nil, fmt.Errorf("corrupt snapshot: n=%v dim=%v k=%v", s.N, s.Dim, s.K)
	}
	if !(s.Eps > 0) || !(s.P > 0 && s.P <= 1) || math.IsNaN(s.Cutoff) {
		return nil, fmt.Errorf("corrupt snapshot: eps=%v p=%v cutoff=%v", s.Eps, s.P, s.Cutoff)
	}
	if len(s.Order) != s.Dim {
		return nil, fmt.Errorf("corrupt snapshot: %v order columns for dim %v", len(s.Order), s.Dim)
	}
	for j, col := range s.Order {
		if len(col) != s.N {
			return nil, fmt.Errorf("corrupt snapshot: order column %v has %v values for n=%v", j, len(col), s.N)
		}
	}
	masses := pattern.NewMassMap()
	for _, item := range s.Patterns {
		if item.Pattern.Dim() != s.Dim {
			return nil, fmt.Errorf("corrupt snapshot: pattern %v has dim %v, want %v",
				item.Pattern, item.Pattern.Dim(), s.Dim)
		}
		if item.Pattern.Empty() {
			return nil, fmt.Errorf("corrupt snapshot: empty pattern stored")
		}
		masses.Add(item.Pattern, item.Mass)
	}
	e, err := New(Config{Eps: s.Eps, P: s.P})
	if err != nil {
		return nil, err
	}
	e.fitted = true
	e.n = s.N
	e.dim = s.Dim
	e.k = s.K
	e.cutoff = s.Cutoff
	e.table = rank.NewTable(s.Order)
	e.masses = masses
	e.totalMass = s.TotalMass
	return e, nil
}
