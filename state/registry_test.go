// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEpochRegisterMonotonic(t *testing.T) {
	r := NewEpochRegister()
	require.Zero(t, r.Current())

	r.Observe(5)
	require.Equal(t, uint64(5), r.Current())

	// Stale write is a silent no-op, never a rollback.
	r.Observe(3)
	require.Equal(t, uint64(5), r.Current())

	require.Equal(t, uint64(6), r.Advance())
	require.Equal(t, uint64(6), r.Current())
}

func TestEpochRegisterStalenessWindow(t *testing.T) {
	r := NewEpochRegister()
	r.Observe(10)

	require.False(t, r.IsStale(10))
	require.False(t, r.IsStale(9))
	require.False(t, r.IsStale(8))
	require.True(t, r.IsStale(7))
}

func TestEpochRegisterNoUnderflow(t *testing.T) {
	r := NewEpochRegister()
	r.Observe(1)
	// Current-2 would underflow; nothing is stale this early.
	require.False(t, r.IsStale(0))
}

func TestTaskRegistryPutGetRemove(t *testing.T) {
	r := NewTaskRegistry()
	r.Put(&TaskRecord{TaskID: "t1", Status: "Pending", UpdatedEpoch: 1})

	rec, ok := r.Get("t1")
	require.True(t, ok)
	require.Equal(t, "Pending", rec.Status)

	_, ok = r.Get("t2")
	require.False(t, ok)

	r.Remove("t1")
	_, ok = r.Get("t1")
	require.False(t, ok)
	require.Empty(t, r.List())
}

func TestTaskRegistryMergeNewerEpochWins(t *testing.T) {
	a := NewTaskRegistry()
	b := NewTaskRegistry()

	a.Put(&TaskRecord{TaskID: "t1", Status: "InProgress", UpdatedEpoch: 2})
	b.Put(&TaskRecord{TaskID: "t1", Status: "Completed", UpdatedEpoch: 3})
	b.Put(&TaskRecord{TaskID: "t2", Status: "Pending", UpdatedEpoch: 3})

	a.Merge(b.Snapshot(), map[string]*TaskRecord{
		"t1": {TaskID: "t1", Status: "Completed", UpdatedEpoch: 3},
		"t2": {TaskID: "t2", Status: "Pending", UpdatedEpoch: 3},
	})

	rec, ok := a.Get("t1")
	require.True(t, ok)
	require.Equal(t, "Completed", rec.Status)

	_, ok = a.Get("t2")
	require.True(t, ok)
	require.Len(t, a.List(), 2)
}

func TestTaskRegistryMergeStaleRecordIgnored(t *testing.T) {
	a := NewTaskRegistry()
	a.Put(&TaskRecord{TaskID: "t1", Status: "Completed", UpdatedEpoch: 5})

	b := NewTaskRegistry()
	b.Put(&TaskRecord{TaskID: "t1", Status: "InProgress", UpdatedEpoch: 4})

	a.Merge(b.Snapshot(), map[string]*TaskRecord{
		"t1": {TaskID: "t1", Status: "InProgress", UpdatedEpoch: 4},
	})

	rec, ok := a.Get("t1")
	require.True(t, ok)
	require.Equal(t, "Completed", rec.Status)
}

func TestAgentRegistryListByTier(t *testing.T) {
	r := NewAgentRegistry()
	r.Put(&AgentRecord{AgentID: "did:swarm:aa", Tier: 1, LastSeen: 1})
	r.Put(&AgentRecord{AgentID: "did:swarm:bb", Tier: 2, LastSeen: 1})
	r.Put(&AgentRecord{AgentID: "did:swarm:cc", Tier: 1, LastSeen: 1})

	tier1 := r.ListByTier(1)
	require.Len(t, tier1, 2)
	require.Contains(t, tier1, "did:swarm:aa")
	require.Contains(t, tier1, "did:swarm:cc")
	require.Empty(t, r.ListByTier(3))
}

func TestAgentRegistryEvictAndMerge(t *testing.T) {
	a := NewAgentRegistry()
	b := NewAgentRegistry()

	a.Put(&AgentRecord{AgentID: "did:swarm:aa", Tier: 1, LastSeen: 10})
	b.Put(&AgentRecord{AgentID: "did:swarm:aa", Tier: 2, LastSeen: 20})

	a.Evict("did:swarm:aa")

	// b's add carries a tag a never observed, so the agent revives on merge
	// with b's fresher record.
	a.Merge(b.Snapshot(), map[string]*AgentRecord{
		"did:swarm:aa": {AgentID: "did:swarm:aa", Tier: 2, LastSeen: 20},
	})

	rec, ok := a.Get("did:swarm:aa")
	require.True(t, ok)
	require.Equal(t, 2, rec.Tier)
}
