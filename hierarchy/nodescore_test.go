// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScoreCompositeWeights(t *testing.T) {
	s := Score{ProofOfContribution: 1, Reputation: 1, Uptime: 1, Stake: 1}
	require.InDelta(t, 1.0, s.Composite(), 1e-9)

	s2 := Score{ProofOfContribution: 1}
	require.InDelta(t, 0.25, s2.Composite(), 1e-9)
}

func TestEligibleThreshold(t *testing.T) {
	require.True(t, Eligible(Score{ProofOfContribution: 1, Reputation: 1, Uptime: 1, Stake: 1}))
	require.False(t, Eligible(Score{}))
}
