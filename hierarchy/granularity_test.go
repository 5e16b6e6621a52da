// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGranularityDirectAssignmentSmallBranch(t *testing.T) {
	p := GranularityPolicy{BranchingFactor: 10}
	s, mode := p.Decide(5, false)
	require.Equal(t, DirectAssignment, mode)
	require.GreaterOrEqual(t, s, 1)
}

func TestGranularityForcesDeeperDecomposition(t *testing.T) {
	p := GranularityPolicy{BranchingFactor: 10}
	_, mode := p.Decide(500, false) // > k^2 = 100
	require.Equal(t, ForceDeeperDecomposition, mode)
}

func TestGranularityRedundantAssignmentForAtomicTask(t *testing.T) {
	p := GranularityPolicy{BranchingFactor: 10}
	n, mode := p.Decide(4, true)
	require.Equal(t, RedundantAssignment, mode)
	require.Equal(t, 4, n)
}

func TestGranularityDirectAssignmentForSingleAtomicTask(t *testing.T) {
	p := GranularityPolicy{BranchingFactor: 10}
	n, mode := p.Decide(1, true)
	require.Equal(t, DirectAssignment, mode)
	require.Equal(t, 1, n)
}
