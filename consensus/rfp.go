// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"sync"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/swarmcore/codec"
	"github.com/luxfi/swarmcore/swarmerr"
)

// Plan is a task-decomposition proposal: opaque payload plus the
// identity of its proposer. Subtasks is carried so Cascade
// can assign each one without re-deriving it from Payload.
type Plan struct {
	TaskID   string
	Proposer string
	Payload  interface{}
	Subtasks []string
}

// PlanHash is SHA-256(canonical_json(plan_fields)), the commit a
// proposer publishes ahead of the reveal.
type PlanHash = ids.ID

func HashPlan(p Plan) (PlanHash, error) {
	sum, err := codec.CanonicalHash(p)
	if err != nil {
		return PlanHash{}, err
	}
	return PlanHash(sum), nil
}

// commitRecord tracks one proposer's commit, pending its reveal.
type commitRecord struct {
	proposer string
	hash     PlanHash
	revealed bool
	plan     Plan
}

// RFP drives one task's commit-reveal proposal round: wait
// for all k commits or a 60s timeout, then collect reveals and verify
// each against its commit hash.
type RFP struct {
	mu       sync.Mutex
	taskID   string
	k        int
	timeout  time.Duration
	commits  map[string]*commitRecord // proposer -> commit
	deadline time.Time
	started  bool
}

// NewRFP starts a commit window for taskID among k expected proposers.
func NewRFP(taskID string, k int, timeout time.Duration) *RFP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RFP{taskID: taskID, k: k, timeout: timeout, commits: make(map[string]*commitRecord)}
}

// Commit records a proposer's commit. A second commit from the same
// proposer for this task is rejected.
func (r *RFP) Commit(proposer string, hash PlanHash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		r.deadline = time.Now().Add(r.timeout)
		r.started = true
	}
	if _, exists := r.commits[proposer]; exists {
		return swarmerr.New(swarmerr.DuplicateProposal, "proposer already committed for this task", map[string]string{"task_id": r.taskID, "proposer": proposer})
	}
	r.commits[proposer] = &commitRecord{proposer: proposer, hash: hash}
	return nil
}

// CommitWindowClosed reports whether all k commits arrived or the
// 60-second timeout elapsed, whichever fires first.
func (r *RFP) CommitWindowClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.commits) >= r.k {
		return true
	}
	return r.started && time.Now().After(r.deadline)
}

// Reveal verifies a revealed plan against its recorded commit hash and
// records the plan on success.
func (r *RFP) Reveal(plan Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.commits[plan.Proposer]
	if !ok {
		return swarmerr.New(swarmerr.CommitRevealMismatch, "reveal with no matching commit", map[string]string{"task_id": r.taskID, "proposer": plan.Proposer})
	}
	hash, err := HashPlan(plan)
	if err != nil {
		return err
	}
	if hash != rec.hash {
		return swarmerr.New(swarmerr.CommitRevealMismatch, "revealed plan does not match commit hash", map[string]string{"task_id": r.taskID, "proposer": plan.Proposer})
	}
	rec.revealed = true
	rec.plan = plan
	return nil
}

// RevealedPlans returns every plan that passed Reveal verification.
func (r *RFP) RevealedPlans() []Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Plan, 0, len(r.commits))
	for _, rec := range r.commits {
		if rec.revealed {
			out = append(out, rec.plan)
		}
	}
	return out
}
