// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hierarchy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSuccessionMonitorTimesOutAfterThreeMissedIntervals(t *testing.T) {
	start := time.Now()
	m := NewSuccessionMonitor("parent", start)
	require.False(t, m.TimedOut(start.Add(20*time.Second)))
	require.True(t, m.TimedOut(start.Add(31*time.Second)))
}

func TestSuccessionMonitorKeepaliveResetsClock(t *testing.T) {
	start := time.Now()
	m := NewSuccessionMonitor("parent", start)
	m.Keepalive(start.Add(25 * time.Second))
	require.False(t, m.TimedOut(start.Add(40*time.Second)))
}

func TestShouldClaimSuccessionHighestScoreWins(t *testing.T) {
	siblings := map[string]Score{
		"b": {Reputation: 0.5},
		"c": {Reputation: 0.9},
	}
	require.False(t, ShouldClaimSuccession("a", Score{Reputation: 0.5}, siblings))
	require.True(t, ShouldClaimSuccession("c", Score{Reputation: 0.9}, siblings))
}

func TestAcceptSuccessionRequiresObservedTimeoutAndScore(t *testing.T) {
	require.True(t, AcceptSuccession(true, 0.8, 0.7))
	require.False(t, AcceptSuccession(false, 0.8, 0.7))
	require.False(t, AcceptSuccession(true, 0.6, 0.7))
}
