// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "sync"

// TaskRecord is the replicated view of one task's lifecycle metadata.
// The task's payload/result content lives
// in the Store, addressed by ContentID; the registry carries only the
// small mutable envelope every replica needs to agree on.
type TaskRecord struct {
	TaskID       string
	Status       string // Pending | ProposalPhase | VotingPhase | InProgress | Completed | Failed | Rejected
	OwnerTier    int
	PayloadID    ContentID
	ResultID     ContentID
	Reassigns    int
	UpdatedEpoch uint64
}

// AgentRecord is the replicated view of one agent's presence and
// capability advertisement.
type AgentRecord struct {
	AgentID      string
	Tier         int
	Capabilities []string
	Reputation   float64
	LastSeen     uint64
}

// TaskRegistry is the OR-Set-backed replicated table of tasks. Keys are
// task IDs; values are carried out-of-band in a plain
// map guarded by the same lock, since the CRDT itself only needs to
// converge on *membership* — a record is replaced by Put, and on Merge by
// a remote record with a higher UpdatedEpoch (anti-entropy's job, not the
// CRDT's).
type TaskRegistry struct {
	mu      sync.RWMutex
	set     *ORSet[string]
	records map[string]*TaskRecord
}

// NewTaskRegistry constructs an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{set: NewORSet[string](), records: make(map[string]*TaskRecord)}
}

// Put inserts or replaces a task record.
func (r *TaskRegistry) Put(rec *TaskRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set.Has(rec.TaskID) {
		r.set.Add(rec.TaskID)
	}
	r.records[rec.TaskID] = rec
}

// Get retrieves a task record by ID.
func (r *TaskRegistry) Get(taskID string) (*TaskRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.set.Has(taskID) {
		return nil, false
	}
	rec, ok := r.records[taskID]
	return rec, ok
}

// Remove retires a task from the registry.
func (r *TaskRegistry) Remove(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set.Remove(taskID)
	delete(r.records, taskID)
}

// List returns all currently tracked task IDs.
func (r *TaskRegistry) List() []string {
	return r.set.Query()
}

// Snapshot returns the underlying CRDT delta for anti-entropy exchange.
func (r *TaskRegistry) Snapshot() Delta[string] { return r.set.Snapshot() }

// Merge merges a delta from another replica and adopts any task records
// carried alongside it that this replica hasn't seen, or that are newer
// by UpdatedEpoch.
func (r *TaskRegistry) Merge(d Delta[string], remoteRecords map[string]*TaskRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set.Merge(d)
	for id, rec := range remoteRecords {
		local, ok := r.records[id]
		if !ok || rec.UpdatedEpoch > local.UpdatedEpoch {
			r.records[id] = rec
		}
	}
}

// AgentRegistry is the OR-Set-backed replicated table of known agents.
type AgentRegistry struct {
	mu      sync.RWMutex
	set     *ORSet[string]
	records map[string]*AgentRecord
}

// NewAgentRegistry constructs an empty registry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{set: NewORSet[string](), records: make(map[string]*AgentRecord)}
}

// Put inserts or refreshes an agent record (called on keepalive receipt).
func (r *AgentRegistry) Put(rec *AgentRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.set.Has(rec.AgentID) {
		r.set.Add(rec.AgentID)
	}
	r.records[rec.AgentID] = rec
}

// Get retrieves an agent record by ID.
func (r *AgentRegistry) Get(agentID string) (*AgentRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.set.Has(agentID) {
		return nil, false
	}
	rec, ok := r.records[agentID]
	return rec, ok
}

// Evict removes an agent whose keepalive has lapsed past the succession
// timeout.
func (r *AgentRegistry) Evict(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set.Remove(agentID)
	delete(r.records, agentID)
}

// ListByTier returns the IDs of all agents currently assigned to tier.
func (r *AgentRegistry) ListByTier(tier int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, id := range r.set.Query() {
		if rec, ok := r.records[id]; ok && rec.Tier == tier {
			out = append(out, id)
		}
	}
	return out
}

// List returns all currently tracked agent IDs.
func (r *AgentRegistry) List() []string {
	return r.set.Query()
}

// Snapshot returns the underlying CRDT delta for anti-entropy exchange.
func (r *AgentRegistry) Snapshot() Delta[string] { return r.set.Snapshot() }

// Merge merges a delta and adopts fresher agent records by LastSeen.
func (r *AgentRegistry) Merge(d Delta[string], remoteRecords map[string]*AgentRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set.Merge(d)
	for id, rec := range remoteRecords {
		local, ok := r.records[id]
		if !ok || rec.LastSeen > local.LastSeen {
			r.records[id] = rec
		}
	}
}
