// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import "github.com/luxfi/swarmcore/swarmerr"

// Assignment is one subtask handed down to a specific subordinate via
// `task.assign`.
type Assignment struct {
	Task         string
	Assignee     string
	ParentTaskID string
	WinningPlan  string
}

// Cascade assigns each of the winning plan's subtasks to one of
// assignees round-robin, and marks the winning proposer as Prime
// Orchestrator for the task. len(assignees) should equal
// len(plan.Subtasks); extra subtasks wrap round-robin rather than fail,
// so a branch smaller than its subtask count still gets every subtask
// assigned (redundantly where needed).
func Cascade(plan Plan, assignees []string) ([]Assignment, error) {
	if len(assignees) == 0 {
		return nil, swarmerr.New(swarmerr.InvalidParams, "cascade requires at least one assignee", map[string]string{"task_id": plan.TaskID})
	}
	out := make([]Assignment, 0, len(plan.Subtasks))
	for i, subtask := range plan.Subtasks {
		out = append(out, Assignment{
			Task:         subtask,
			Assignee:     assignees[i%len(assignees)],
			ParentTaskID: plan.TaskID,
			WinningPlan:  plan.Proposer,
		})
	}
	return out, nil
}

// PrimeOrchestrator returns the agent ID that becomes responsible for
// producing the task's root result once its plan wins voting.
func PrimeOrchestrator(winningPlan Plan) string {
	return winningPlan.Proposer
}
