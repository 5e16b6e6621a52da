// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestORSetAddQuery(t *testing.T) {
	s := NewORSet[string]()
	s.Add("alice")
	s.Add("bob")
	require.True(t, s.Has("alice"))
	require.True(t, s.Has("bob"))
	require.False(t, s.Has("carol"))
}

func TestORSetRemoveWins(t *testing.T) {
	s := NewORSet[string]()
	s.Add("alice")
	s.Remove("alice")
	require.False(t, s.Has("alice"))
}

func TestORSetConcurrentAddSurvivesRemove(t *testing.T) {
	// Replica A adds "alice", replica B independently adds "alice" too (a
	// distinct tag), then A's remove (observing only its own tag) is merged
	// into B. The OR-Set guarantee: B's concurrent add survives.
	a := NewORSet[string]()
	b := NewORSet[string]()

	a.Add("alice")
	b.Add("alice")

	a.Remove("alice")

	b.Merge(a.Snapshot())

	require.True(t, b.Has("alice"), "concurrent add not observed by the remove must survive merge")
}

func TestORSetMergeConverges(t *testing.T) {
	a := NewORSet[string]()
	b := NewORSet[string]()

	a.Add("x")
	a.Add("y")
	b.Add("z")

	snapA := a.Snapshot()
	snapB := b.Snapshot()

	a.Merge(snapB)
	b.Merge(snapA)

	qa := a.Query()
	qb := b.Query()
	sort.Strings(qa)
	sort.Strings(qb)
	require.Equal(t, qa, qb)
	require.Equal(t, []string{"x", "y", "z"}, qa)
}

func TestORSetMergeIdempotent(t *testing.T) {
	a := NewORSet[string]()
	a.Add("x")
	snap := a.Snapshot()

	a.Merge(snap)
	a.Merge(snap)
	require.Equal(t, []string{"x"}, a.Query())
}
