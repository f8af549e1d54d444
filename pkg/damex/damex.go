// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package damex implements the DAMEX estimator: it learns the
// dependence structure of the tail of a multivariate sample and scores
// how "extremally normal" new observations are. Anomalies are points
// whose large-coordinate pattern matches no frequently observed
// extreme direction.
package damex

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/mhardion/damex/pkg/log"
	"github.com/mhardion/damex/pkg/pattern"
	"github.com/mhardion/damex/pkg/rank"
)

// ErrNotFitted is returned by inference methods called before Fit.
var ErrNotFitted = errors.New("estimator is not fitted")

// Config holds the estimator parameters, fixed at construction.
type Config struct {
	// Eps scales the return-time scale t = n/k into the large-coordinate
	// cutoff: coordinate j of a standardized point is large when its
	// score exceeds eps*t. Must be positive.
	Eps float64
	// K maps the training sample count to the extreme-region parameter
	// k. Nil defaults to KSqrt.
	K func(n int) int
	// P in (0, 1] sets the pruning bar at p times the average mass per
	// observed pattern; patterns with far-below-average support are
	// treated as noise rather than recurring extreme directions.
	P float64
}

// Estimator learns a sparse mass map over support patterns from
// training data and scores queries against it.
//
// All fitted state is written by Fit and read-only afterwards, so
// concurrent Score/Predict/ExtremeRegion calls on a fitted estimator
// are safe without locking. Re-fitting concurrently with in-flight
// inference is not; callers must synchronize or fit a fresh estimator.
type Estimator struct {
	cfg Config

	fitted    bool
	n, dim    int
	k         int
	cutoff    float64 // eps * n/k
	table     *rank.Table
	masses    *pattern.MassMap
	totalMass float64 // accumulated mass before thresholding
}

// New validates cfg and returns an unfitted estimator.
func New(cfg Config) (*Estimator, error) {
	if !(cfg.Eps > 0) || math.IsInf(cfg.Eps, 0) {
		return nil, fmt.Errorf("eps must be a positive finite number, got %v", cfg.Eps)
	}
	if !(cfg.P > 0 && cfg.P <= 1) {
		return nil, fmt.Errorf("p must be in (0, 1], got %v", cfg.P)
	}
	if cfg.K == nil {
		cfg.K = KSqrt
	}
	return &Estimator{cfg: cfg}, nil
}

// Fit learns the tail dependence structure of x (n samples by d
// features) and replaces any previously fitted state.
//
// The extreme-region parameter k comes from the configured rule;
// k >= n is degenerate (the whole sample counts as extreme) and is
// clamped to n-1 with a warning rather than rejected. An empty mass
// map after thresholding is a valid, maximally conservative fit where
// every query scores 0; it is logged, not failed.
func (e *Estimator) Fit(x [][]float64) error {
	if len(x) < 2 {
		return fmt.Errorf("fit needs at least 2 samples, got %v", len(x))
	}
	v, order, err := rank.Transform(x)
	if err != nil {
		return err
	}
	n := len(x)
	k := e.cfg.K(n)
	if k < 1 {
		return fmt.Errorf("k rule produced %v for n=%v", k, n)
	}
	if k >= n {
		log.Logf(0, "damex: k=%v >= n=%v, clamping to %v", k, n, n-1)
		k = n - 1
	}
	cutoff := e.cfg.Eps * float64(n) / float64(k)
	if cutoff <= 1 {
		// Standardized scores are >= 1, so such a cutoff marks every
		// coordinate of every sample as large and the mass map
		// collapses onto the all-true pattern.
		log.Logf(0, "damex: cutoff eps*n/k = %.4g <= 1, support patterns are degenerate", cutoff)
	}
	masses, extreme := accumulate(v, cutoff, 1/float64(k))
	total := float64(extreme) / float64(k)

	pruned := 0
	if cardA := masses.Len(); cardA == 0 {
		log.Logf(0, "damex: no extreme support patterns observed (cutoff %.4g), every query will score 0", cutoff)
	} else {
		threshold := e.cfg.P * total / float64(cardA)
		pruned = masses.Prune(threshold)
		if masses.Len() == 0 {
			log.Logf(0, "damex: thresholding pruned all %v patterns, every query will score 0", cardA)
		}
	}

	e.fitted = true
	e.n = n
	e.dim = len(x[0])
	e.k = k
	e.cutoff = cutoff
	e.table = rank.NewTable(order)
	e.masses = masses
	e.totalMass = total
	statFits.Add(1)
	statPatterns.Set(masses.Len())
	statPruned.Set(pruned)
	return nil
}

// accumulate distributes rows of the standardized matrix across shards,
// builds a partial mass map per shard and merges them. Mass values do
// not depend on the sharding beyond floating-point summation order.
func accumulate(v [][]float64, cutoff, unit float64) (*pattern.MassMap, int) {
	procs := runtime.GOMAXPROCS(0)
	if procs > len(v) {
		procs = len(v)
	}
	parts := make([]*pattern.MassMap, procs)
	counts := make([]int, procs)
	var wg sync.WaitGroup
	for shard := 0; shard < procs; shard++ {
		shard := shard
		wg.Add(1)
		go func() {
			defer wg.Done()
			part := pattern.NewMassMap()
			count := 0
			for i := shard; i < len(v); i += procs {
				alpha := pattern.FromScores(v[i], cutoff)
				if alpha.Empty() {
					continue
				}
				part.Add(alpha, unit)
				count++
			}
			parts[shard] = part
			counts[shard] = count
		}()
	}
	wg.Wait()
	masses := pattern.NewMassMap()
	extreme := 0
	for shard := range parts {
		masses.Merge(parts[shard])
		extreme += counts[shard]
	}
	return masses, extreme
}

// Score maps a single observation to its anomaly score: the mass of
// its support pattern divided by its maximal standardized coordinate.
// The division normalizes for how far into the tail the point lies
// (mass decays as 1/radius under regular variation). A pattern never
// observed in training, or pruned as noise, scores exactly 0, the
// minimum possible.
func (e *Estimator) Score(x []float64) (float64, error) {
	if !e.fitted {
		return 0, ErrNotFitted
	}
	v, err := e.table.Query(x)
	if err != nil {
		return 0, err
	}
	alpha := pattern.FromScores(v, e.cutoff)
	mass := 0.0
	if !alpha.Empty() {
		mass = e.masses.Get(alpha)
	}
	maxV := v[0]
	for _, s := range v[1:] {
		if s > maxV {
			maxV = s
		}
	}
	// Standardized scores are >= 1, so maxV never divides by zero.
	score := mass / maxV
	statScored.Add(1)
	statScores.Sample(score)
	return score, nil
}

// Predict scores every row of x independently; output order matches
// input order.
func (e *Estimator) Predict(x [][]float64) ([]float64, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	if err := e.validateQuery(x); err != nil {
		return nil, err
	}
	scores := make([]float64, len(x))
	for i, row := range x {
		s, err := e.Score(row)
		if err != nil {
			return nil, fmt.Errorf("row %v: %w", i, err)
		}
		scores[i] = s
	}
	return scores, nil
}

// ExtremeRegion flags the rows of x that are large enough in at least
// one marginal to count as tail observations. The ranks are computed
// over the query set itself, not against the training order
// statistics: "extreme" here is relative to the evaluation set's own
// empirical distribution. This asymmetry with Score is deliberate.
func (e *Estimator) ExtremeRegion(x [][]float64) ([]bool, error) {
	if !e.fitted {
		return nil, ErrNotFitted
	}
	if err := e.validateQuery(x); err != nil {
		return nil, err
	}
	v, _, err := rank.Transform(x)
	if err != nil {
		return nil, err
	}
	radius := float64(e.n) / float64(e.k)
	mask := make([]bool, len(v))
	for i, row := range v {
		for _, s := range row {
			if s >= radius {
				mask[i] = true
				break
			}
		}
	}
	return mask, nil
}

func (e *Estimator) validateQuery(x [][]float64) error {
	if err := rank.Validate(x); err != nil {
		return err
	}
	if len(x[0]) != e.dim {
		return fmt.Errorf("query has %v features, estimator was fitted on %v", len(x[0]), e.dim)
	}
	return nil
}

// Diagnostics describes the fitted state for reporting.
type Diagnostics struct {
	Fitted         bool
	N              int
	Dim            int
	K              int
	Cutoff         float64
	Patterns       int     // support patterns retained after thresholding
	AvgCardinality float64 // mean pattern cardinality, NaN when no patterns
	TotalMass      float64 // accumulated mass before thresholding
	RetainedMass   float64 // mass surviving thresholding
}

func (e *Estimator) Diagnostics() Diagnostics {
	if !e.fitted {
		return Diagnostics{}
	}
	diag := Diagnostics{
		Fitted:       true,
		N:            e.n,
		Dim:          e.dim,
		K:            e.k,
		Cutoff:       e.cutoff,
		Patterns:     e.masses.Len(),
		TotalMass:    e.totalMass,
		RetainedMass: e.masses.Total(),
	}
	card, err := e.masses.AverageCardinality()
	if err != nil {
		card = math.NaN()
	}
	diag.AvgCardinality = card
	return diag
}
