// Package randengine wraps a seeded RNG with a mutex so it can be shared
// safely by callers that don't otherwise coordinate access.
package randengine

import (
	"sync"

	"golang.org/x/exp/rand"
)

// Engine is a mutex-guarded seeded random source.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an Engine seeded deterministically from seed.
func New(seed uint64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// VehicleSeed mixes a vehicle id into a process seed, per spec: "every
// vehicle owns a seeded generator derived from its id (mixing constant
// 0xC0FFEE-class odd multiplier acceptable)".
func VehicleSeed(processSeed uint64, vehicleID int) uint64 {
	return processSeed ^ (uint64(vehicleID)*0xC0FFEE1 + 0x9E3779B9)
}

// Float64Safe returns a uniform float64 in [0,1).
func (e *Engine) Float64Safe() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

// NormFloat64Safe returns a standard-normal sample.
func (e *Engine) NormFloat64Safe() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.NormFloat64()
}

// IntnSafe returns a uniform int in [0,n).
func (e *Engine) IntnSafe(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

// PTrue returns true with probability p (p clamped to [0,1]).
func (e *Engine) PTrue(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return e.Float64Safe() < p
}

// UniformSafe returns a uniform float64 in [lo, hi).
func (e *Engine) UniformSafe(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + e.Float64Safe()*(hi-lo)
}

// DiscreteDistributionSafe picks an index in [0,len(weights)) with
// probability proportional to weights[i]. Returns -1 for an empty or
// all-zero weight slice.
func (e *Engine) DiscreteDistributionSafe(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}
	r := e.Float64Safe() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}
