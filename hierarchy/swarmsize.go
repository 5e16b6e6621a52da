// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hierarchy

import (
	"math"
	"sync"
)

// defaultBranchingFactor is k in depth = ceil(log_k(N)), capped at a
// hierarchy depth of 10.
const (
	defaultBranchingFactor = 10
	maxDepthCap            = 10
	emaWindow              = 5
)

// BucketSample is one observation of the local DHT routing table's
// occupancy.
type BucketSample struct {
	FilledBuckets  int
	PeersPerBucket []int
}

// estimatedSize sums peers across filled buckets, the raw per-sample
// population estimate before smoothing.
func (b BucketSample) estimatedSize() float64 {
	total := 0
	for _, n := range b.PeersPerBucket {
		total += n
	}
	return float64(total)
}

// SwarmSizeEstimator maintains an exponential moving average of the
// DHT-derived population estimate over the last emaWindow samples,
// exposing both the smoothed size N and the derived hierarchy
// depth.
type SwarmSizeEstimator struct {
	mu              sync.Mutex
	branchingFactor int
	alpha           float64
	ema             float64
	samples         int
}

// NewSwarmSizeEstimator constructs an estimator for the given branching
// factor k (0 selects the default of 10).
func NewSwarmSizeEstimator(branchingFactor int) *SwarmSizeEstimator {
	if branchingFactor <= 0 {
		branchingFactor = defaultBranchingFactor
	}
	return &SwarmSizeEstimator{
		branchingFactor: branchingFactor,
		alpha:           2.0 / float64(emaWindow+1),
	}
}

// Observe folds a new bucket sample into the moving average.
func (e *SwarmSizeEstimator) Observe(sample BucketSample) {
	e.mu.Lock()
	defer e.mu.Unlock()
	raw := sample.estimatedSize()
	if e.samples == 0 {
		e.ema = raw
	} else {
		e.ema = e.alpha*raw + (1-e.alpha)*e.ema
	}
	e.samples++
}

// EstimatedSize returns the current smoothed population estimate N.
func (e *SwarmSizeEstimator) EstimatedSize() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ema
}

// Depth returns ceil(log_k(N)), capped at maxDepthCap, for the current
// estimate.
func (e *SwarmSizeEstimator) Depth() int {
	e.mu.Lock()
	n := e.ema
	e.mu.Unlock()

	if n <= 1 {
		return 1
	}
	d := int(math.Ceil(math.Log(n) / math.Log(float64(e.branchingFactor))))
	if d < 1 {
		d = 1
	}
	if d > maxDepthCap {
		d = maxDepthCap
	}
	return d
}
