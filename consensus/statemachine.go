// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"sync"

	"github.com/luxfi/swarmcore/swarmerr"
)

// TaskStatus is one state in the per-task lifecycle.
type TaskStatus string

const (
	Pending       TaskStatus = "Pending"
	ProposalPhase TaskStatus = "ProposalPhase"
	VotingPhase   TaskStatus = "VotingPhase"
	InProgress    TaskStatus = "InProgress"
	Completed     TaskStatus = "Completed"
	Failed        TaskStatus = "Failed"
	Rejected      TaskStatus = "Rejected"
)

func (s TaskStatus) terminal() bool {
	return s == Completed || s == Failed || s == Rejected
}

// valid transitions, keyed by current state, value is the set of states
// the engine may move to next.
var transitions = map[TaskStatus]map[TaskStatus]bool{
	Pending:       {ProposalPhase: true, Rejected: true},
	ProposalPhase: {VotingPhase: true, Rejected: true, Failed: true},
	VotingPhase:   {InProgress: true, Rejected: true, Failed: true},
	InProgress:    {Completed: true, Failed: true},
}

// TaskFSM guards one task's status against illegal transitions — in
// particular the terminal-state stickiness invariant: once
// Completed/Failed/Rejected, every further transition attempt
// is a protocol error, never a silent no-op.
type TaskFSM struct {
	mu     sync.Mutex
	taskID string
	status TaskStatus
}

// NewTaskFSM starts a task in Pending.
func NewTaskFSM(taskID string) *TaskFSM {
	return &TaskFSM{taskID: taskID, status: Pending}
}

// Status returns the current state.
func (f *TaskFSM) Status() TaskStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Transition moves the task to next, rejecting both illegal edges and
// any attempt to leave a terminal state.
func (f *TaskFSM) Transition(next TaskStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status.terminal() {
		return swarmerr.New(swarmerr.InvalidRequest, "task is in a terminal state", map[string]string{
			"task_id": f.taskID, "status": string(f.status), "attempted": string(next),
		})
	}
	if !transitions[f.status][next] {
		return swarmerr.New(swarmerr.InvalidRequest, "illegal task state transition", map[string]string{
			"task_id": f.taskID, "from": string(f.status), "to": string(next),
		})
	}
	f.status = next
	return nil
}
