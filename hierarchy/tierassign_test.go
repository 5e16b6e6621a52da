// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNearestLeaderUsesVivaldiDistance(t *testing.T) {
	self := Candidate3D{AgentID: "me", Coord: &LocationVector{0, 0, 0}}
	leaders := []Candidate3D{
		{AgentID: "near", Coord: &LocationVector{1, 0, 0}},
		{AgentID: "far", Coord: &LocationVector{10, 0, 0}},
	}
	require.Equal(t, "near", NearestLeader(self, leaders))
}

func TestNearestLeaderFallsBackToHashDistanceWhenCoordUnknown(t *testing.T) {
	self := Candidate3D{AgentID: "me"}
	leaders := []Candidate3D{
		{AgentID: "leader-a"},
		{AgentID: "leader-b"},
	}
	got := NearestLeader(self, leaders)
	require.Contains(t, []string{"leader-a", "leader-b"}, got)
	// deterministic: repeated calls agree
	require.Equal(t, got, NearestLeader(self, leaders))
}

func TestAssignBranchTopScorersBecomeCoordinators(t *testing.T) {
	members := map[string]Score{
		"a": {Reputation: 0.9},
		"b": {Reputation: 0.5},
		"c": {Reputation: 0.1},
	}
	result := AssignBranch(members, 2)
	require.Equal(t, []string{"a", "b"}, result.Coordinators)
	require.Equal(t, []string{"c"}, result.Remainder)
}
