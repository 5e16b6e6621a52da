// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwarmSizeEstimatorDepth(t *testing.T) {
	e := NewSwarmSizeEstimator(10)
	e.Observe(BucketSample{PeersPerBucket: []int{100}})
	require.InDelta(t, 100, e.EstimatedSize(), 1e-9)
	require.Equal(t, 2, e.Depth()) // ceil(log10(100)) = 2
}

func TestSwarmSizeEstimatorSmoothsOverWindow(t *testing.T) {
	e := NewSwarmSizeEstimator(10)
	e.Observe(BucketSample{PeersPerBucket: []int{100}})
	e.Observe(BucketSample{PeersPerBucket: []int{1000}})
	require.Greater(t, e.EstimatedSize(), 100.0)
	require.Less(t, e.EstimatedSize(), 1000.0)
}

func TestSwarmSizeEstimatorDepthCappedAndFloored(t *testing.T) {
	e := NewSwarmSizeEstimator(10)
	require.Equal(t, 1, e.Depth()) // no samples yet

	huge := NewSwarmSizeEstimator(2)
	huge.Observe(BucketSample{PeersPerBucket: []int{1 << 30}})
	require.LessOrEqual(t, huge.Depth(), maxDepthCap)
}
