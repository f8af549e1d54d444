// Copyright 2026 damex project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package pattern

import (
	"errors"
	"sort"
)

// ErrEmpty is returned by AverageCardinality when the map holds no
// patterns, which signals a degenerate fit (no extreme points observed).
var ErrEmpty = errors.New("mass map is empty")

// MassMap accumulates probability mass per support pattern. The number
// of possible patterns is 2^d, but extreme data populates only a tiny
// subset, so the map is sparse by construction. The all-false pattern
// is never stored.
type MassMap struct {
	entries map[string]*entry
}

type entry struct {
	pat  Pattern
	mass float64
}

// Item is a (pattern, mass) pair as reported by Items and MaxItem.
type Item struct {
	Pattern Pattern
	Mass    float64
}

func NewMassMap() *MassMap {
	return &MassMap{entries: make(map[string]*entry)}
}

// Get returns the accumulated mass of p, or 0 if p was never observed.
// Absence is not an error: it means "never seen as an extreme direction".
func (m *MassMap) Get(p Pattern) float64 {
	e := m.entries[p.Key()]
	if e == nil {
		return 0
	}
	return e.mass
}

// Add accumulates delta into the mass of p, creating the entry if
// absent. Empty patterns must be filtered by the caller.
func (m *MassMap) Add(p Pattern, delta float64) {
	if p.Empty() {
		panic("adding empty pattern to mass map")
	}
	key := p.Key()
	e := m.entries[key]
	if e == nil {
		e = &entry{pat: p}
		m.entries[key] = e
	}
	e.mass += delta
}

// Merge sums the masses of other into m. Used to combine per-shard
// partial maps; the result does not depend on merge order beyond
// floating-point summation drift.
func (m *MassMap) Merge(other *MassMap) {
	for key, e := range other.entries {
		cur := m.entries[key]
		if cur == nil {
			m.entries[key] = &entry{pat: e.pat, mass: e.mass}
			continue
		}
		cur.mass += e.mass
	}
}

// Len returns the number of stored patterns.
func (m *MassMap) Len() int { return len(m.entries) }

// Total returns the sum of all stored masses.
func (m *MassMap) Total() float64 {
	total := 0.0
	for _, e := range m.entries {
		total += e.mass
	}
	return total
}

// AverageCardinality returns the mean number of large coordinates
// across stored patterns, the average tail-dependence dimensionality.
func (m *MassMap) AverageCardinality() (float64, error) {
	if len(m.entries) == 0 {
		return 0, ErrEmpty
	}
	sum := 0
	for _, e := range m.entries {
		sum += e.pat.Count()
	}
	return float64(sum) / float64(len(m.entries)), nil
}

// Prune irreversibly deletes every entry whose mass is strictly below
// threshold and returns the number of deleted entries.
func (m *MassMap) Prune(threshold float64) int {
	deleted := 0
	for key, e := range m.entries {
		if e.mass < threshold {
			delete(m.entries, key)
			deleted++
		}
	}
	return deleted
}

// Items returns a key-sorted snapshot of the map, suitable for
// serialization and deterministic reporting.
func (m *MassMap) Items() []Item {
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		e := m.entries[key]
		items = append(items, Item{Pattern: e.pat, Mass: e.mass})
	}
	return items
}

// MaxItem returns the entry with the highest mass, ties broken by key
// order for determinism. ok is false when the map is empty.
func (m *MassMap) MaxItem() (best Item, ok bool) {
	bestKey := ""
	for key, e := range m.entries {
		if !ok || e.mass > best.Mass || (e.mass == best.Mass && key < bestKey) {
			best = Item{Pattern: e.pat, Mass: e.mass}
			bestKey = key
			ok = true
		}
	}
	return best, ok
}
