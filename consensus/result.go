// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"sync"

	"github.com/luxfi/swarmcore/state"
	"github.com/luxfi/swarmcore/swarmerr"
)

// maxReassignments bounds how many times a rejected subtask is handed to
// a different executor before the subtask is declared Failed.
const maxReassignments = 3

// SubmittedResult is the payload an executor publishes on
// `results/<task_id>`.
type SubmittedResult struct {
	TaskID  string
	AgentID string
	Proof   *state.Proof
}

// ResultFlow tracks acceptance of each child subtask's result for one
// parent coordinator, verifying Merkle proofs and counting
// reassignments before a subtask is declared permanently Failed.
type ResultFlow struct {
	mu          sync.Mutex
	expected    map[string]bool // task_id -> accepted
	reassigns   map[string]int
	totalChild  int
	acceptedCnt int
}

// NewResultFlow starts tracking childTaskIDs, the k subtasks cascaded to
// this coordinator's subordinates.
func NewResultFlow(childTaskIDs []string) *ResultFlow {
	expected := make(map[string]bool, len(childTaskIDs))
	for _, id := range childTaskIDs {
		expected[id] = false
	}
	return &ResultFlow{expected: expected, reassigns: make(map[string]int), totalChild: len(childTaskIDs)}
}

// Submit verifies a submitted result's Merkle proof and records
// acceptance or rejection. On rejection it reports whether a
// reassignment is still available or the subtask must be declared
// Failed.
func (rf *ResultFlow) Submit(res SubmittedResult) (accepted bool, reassignAvailable bool, err error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if _, known := rf.expected[res.TaskID]; !known {
		return false, false, swarmerr.New(swarmerr.TaskNotFound, "result for unknown subtask", map[string]string{"task_id": res.TaskID})
	}
	if rf.expected[res.TaskID] {
		return true, false, nil // already accepted, idempotent resubmission
	}

	if res.Proof == nil || !state.VerifyProof(res.Proof) {
		rf.reassigns[res.TaskID]++
		if rf.reassigns[res.TaskID] > maxReassignments {
			return false, false, swarmerr.New(swarmerr.ResultRejected, "subtask exceeded reassignment limit", map[string]string{"task_id": res.TaskID})
		}
		return false, true, swarmerr.New(swarmerr.ResultRejected, "merkle proof verification failed", map[string]string{"task_id": res.TaskID})
	}

	rf.expected[res.TaskID] = true
	rf.acceptedCnt++
	return true, false, nil
}

// AllAccepted reports whether every child subtask's result has been
// accepted, the trigger for computing the parent hash and propagating
// upward.
func (rf *ResultFlow) AllAccepted() bool {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.acceptedCnt == rf.totalChild
}
