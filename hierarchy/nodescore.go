// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hierarchy implements swarm-size estimation, Tier-1 election,
// recursive tier assignment, keep-alive/succession, and the granularity
// policy that drives task decomposition depth.
package hierarchy

// Score is the composite NodeScore used for candidacy eligibility,
// election tie-breaks, and branch-coordinator selection:
// S = 0.25·PoC + 0.40·Rep + 0.20·Up + 0.15·Stake.
type Score struct {
	ProofOfContribution float64
	Reputation          float64
	Uptime              float64
	Stake               float64
}

const (
	weightPoC   = 0.25
	weightRep   = 0.40
	weightUp    = 0.20
	weightStake = 0.15
)

// Composite computes S.
func (s Score) Composite() float64 {
	return weightPoC*s.ProofOfContribution + weightRep*s.Reputation + weightUp*s.Uptime + weightStake*s.Stake
}
