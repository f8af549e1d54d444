// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package stat provides prometheus/streamz style metrics (Val type)
// for instrumenting code, and a global registry for them. Counters are
// plain atomics; Distribution metrics keep a streaming histogram of
// individual samples.
package stat

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/VividCortex/gohistogram"
	"github.com/prometheus/client_golang/prometheus"
)

// UI is a snapshot of a single metric for reporting.
type UI struct {
	Name  string
	Desc  string
	Level Level
	Value string
	V     int
}

func New(name, desc string, opts ...any) *Val {
	return global.New(name, desc, opts...)
}

func Collect(level Level) []UI {
	return global.Collect(level)
}

var global = &set{vals: make(map[string]*Val)}

type set struct {
	mu   sync.Mutex
	vals map[string]*Val
}

// Level controls if the metric is included in simple reports or only
// in expert output.
type Level int

const (
	All Level = iota
	Simple
	Console
)

// Prometheus exports the metric to Prometheus under the given name.
type Prometheus string

// Distribution says to collect a histogram of individual samples
// rather than a running total.
type Distribution struct{}

const histogramBuckets = 255

func (s *set) New(name, desc string, opts ...any) *Val {
	v := &Val{
		name: name,
		desc: desc,
		fmt:  strconv.Itoa,
	}
	for _, o := range opts {
		switch opt := o.(type) {
		case Level:
			v.level = opt
		case Distribution:
			v.hist = true
		case func() int:
			v.ext = opt
		case func(int) string:
			v.fmt = opt
		case Prometheus:
			prometheus.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: string(opt),
				Help: desc,
			},
				func() float64 { return v.Float() },
			))
		default:
			panic(fmt.Sprintf("unknown stat option %#v", o))
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[name] = v
	return v
}

func (s *set) Collect(level Level) []UI {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []UI
	for _, v := range s.vals {
		if v.level < level {
			continue
		}
		val := v.Val()
		res = append(res, UI{
			Name:  v.name,
			Desc:  v.desc,
			Level: v.level,
			Value: v.fmt(val),
			V:     val,
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

type Val struct {
	name    string
	desc    string
	level   Level
	val     atomic.Int64
	ext     func() int
	fmt     func(int) string
	hist    bool
	histMu  sync.Mutex
	histVal *gohistogram.NumericHistogram
}

func (v *Val) Add(val int) {
	if v.ext != nil {
		panic(fmt.Sprintf("stat %v is in external mode", v.name))
	}
	if v.hist {
		v.Sample(float64(val))
		return
	}
	v.val.Add(int64(val))
}

// Set replaces the current value; intended for gauges that are
// recomputed wholesale (e.g. after a re-fit).
func (v *Val) Set(val int) {
	if v.ext != nil || v.hist {
		panic(fmt.Sprintf("stat %v cannot be set", v.name))
	}
	v.val.Store(int64(val))
}

// Sample records one observation into a Distribution metric.
func (v *Val) Sample(val float64) {
	if !v.hist {
		panic(fmt.Sprintf("stat %v is not a distribution", v.name))
	}
	v.histMu.Lock()
	defer v.histMu.Unlock()
	if v.histVal == nil {
		v.histVal = gohistogram.NewHistogram(histogramBuckets)
	}
	v.histVal.Add(val)
}

// Quantile returns the approximate q-th quantile of a Distribution
// metric, 0 if nothing was sampled yet.
func (v *Val) Quantile(q float64) float64 {
	v.histMu.Lock()
	defer v.histMu.Unlock()
	if v.histVal == nil {
		return 0
	}
	return v.histVal.Quantile(q)
}

func (v *Val) Val() int {
	if v.ext != nil {
		return v.ext()
	}
	if v.hist {
		v.histMu.Lock()
		defer v.histMu.Unlock()
		if v.histVal == nil {
			return 0
		}
		return int(v.histVal.Mean())
	}
	return int(v.val.Load())
}

func (v *Val) Float() float64 {
	if v.hist {
		v.histMu.Lock()
		defer v.histMu.Unlock()
		if v.histVal == nil {
			return 0
		}
		return v.histVal.Mean()
	}
	return float64(v.Val())
}
