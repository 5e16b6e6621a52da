// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCascadeAssignsRoundRobin(t *testing.T) {
	plan := Plan{TaskID: "t1", Proposer: "prime", Subtasks: []string{"s1", "s2", "s3"}}
	assignments, err := Cascade(plan, []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []Assignment{
		{Task: "s1", Assignee: "a", ParentTaskID: "t1", WinningPlan: "prime"},
		{Task: "s2", Assignee: "b", ParentTaskID: "t1", WinningPlan: "prime"},
		{Task: "s3", Assignee: "a", ParentTaskID: "t1", WinningPlan: "prime"},
	}, assignments)
}

func TestCascadeRejectsNoAssignees(t *testing.T) {
	_, err := Cascade(Plan{TaskID: "t1"}, nil)
	require.Error(t, err)
}

func TestPrimeOrchestratorIsWinningProposer(t *testing.T) {
	require.Equal(t, "agent-x", PrimeOrchestrator(Plan{Proposer: "agent-x"}))
}
