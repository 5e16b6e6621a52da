// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package facade implements the Coordinator Facade: the public
// contract invoked by the local agent endpoint. It is the only subsystem
// that agents ever call directly; everything it does is delegated to the
// identity, state, hierarchy, and consensus packages it wires together.
package facade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/luxfi/log"

	"github.com/luxfi/swarmcore/config"
	"github.com/luxfi/swarmcore/consensus"
	"github.com/luxfi/swarmcore/hierarchy"
	"github.com/luxfi/swarmcore/identity"
	"github.com/luxfi/swarmcore/metrics"
	"github.com/luxfi/swarmcore/state"
	"github.com/luxfi/swarmcore/swarmerr"
	"github.com/luxfi/swarmcore/transport"
)

// Task is the facade's view of a task record: the fields an agent
// can observe through get_task/inject_task/receive_task. The replicated
// lifecycle status lives in consensus.TaskFSM; Task mirrors it for
// presentation rather than owning it.
type Task struct {
	TaskID       string     `json:"task_id"`
	ParentTaskID string     `json:"parent_task_id,omitempty"`
	Epoch        uint64     `json:"epoch"`
	Status       string     `json:"status"`
	Description  string     `json:"description"`
	AssignedTo   string     `json:"assigned_to,omitempty"`
	TierLevel    int        `json:"tier_level"`
	Subtasks     []string   `json:"subtasks,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

// Swarm is a swarm record: {swarm_id, token?, members[]}.
type Swarm struct {
	SwarmID string   `json:"swarm_id"`
	Token   string   `json:"token,omitempty"`
	Members []string `json:"members"`
}

// taskEntry bundles a Task with the consensus engine state tracking its
// lifecycle: the RFP for its commit-reveal phase (nil before a plan round
// opens) and the FSM guarding its status transitions.
type taskEntry struct {
	task *Task
	fsm  *consensus.TaskFSM
	rfp  *consensus.RFP
}

// Facade is the Coordinator Facade: the local operation surface, backed
// by this node's identity, replicated state, hierarchy position, and
// consensus machinery. One Facade exists per running node.
type Facade struct {
	log log.Logger
	cfg config.Config
	id  *identity.Identity

	epoch  *state.EpochRegister
	tasks  *state.TaskRegistry
	agents *state.AgentRegistry
	store  *state.Store
	dag    *state.DAG
	dialer transport.StreamDialer
	met    *metrics.Swarm // nil disables metrics, e.g. in unit tests

	mu        sync.Mutex
	selfTier  hierarchy.Tier
	parentID  string
	pending   map[string]*taskEntry      // task_id -> entry, not yet Completed/Failed/Rejected
	committed map[string]map[string]bool // task_id -> proposer -> committed, guards double-proposal
	swarms    map[string]*Swarm
}

// New constructs a Facade over already-wired subsystems. selfTier and
// parentID reflect this node's current position in the hierarchy as
// assigned by hierarchy.AssignBranch/NearestLeader; they are updated via
// SetPosition as elections and succession move the node.
func New(logger log.Logger, cfg config.Config, id *identity.Identity, epoch *state.EpochRegister, tasks *state.TaskRegistry, agents *state.AgentRegistry, store *state.Store, dag *state.DAG, dialer transport.StreamDialer, met *metrics.Swarm) *Facade {
	return &Facade{
		log:       logger,
		cfg:       cfg,
		id:        id,
		epoch:     epoch,
		tasks:     tasks,
		agents:    agents,
		store:     store,
		dag:       dag,
		dialer:    dialer,
		met:       met,
		selfTier:  hierarchy.Tier1,
		pending:   make(map[string]*taskEntry),
		committed: make(map[string]map[string]bool),
		swarms:    make(map[string]*Swarm),
	}
}

// SetPosition updates this node's tier and parent, as assigned by the
// Hierarchy Manager or after a succession event.
func (f *Facade) SetPosition(tier hierarchy.Tier, parentID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selfTier = tier
	f.parentID = parentID
}

// StatusResult is get_status's result shape.
type StatusResult struct {
	AgentID      identity.AgentID `json:"agent_id"`
	Status       string           `json:"status"`
	Tier         int              `json:"tier"`
	Epoch        uint64           `json:"epoch"`
	ParentID     string           `json:"parent_id,omitempty"`
	ActiveTasks  int              `json:"active_tasks"`
	KnownAgents  int              `json:"known_agents"`
	ContentItems int              `json:"content_items"`
}

// GetStatus implements the get_status operation.
func (f *Facade) GetStatus() StatusResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := "idle"
	if len(f.pending) > 0 {
		status = "active"
	}
	return StatusResult{
		AgentID:     f.id.ID,
		Status:      status,
		Tier:        f.selfTier.Level,
		Epoch:       f.epoch.Current(),
		ParentID:    f.parentID,
		ActiveTasks: len(f.pending),
		KnownAgents: len(f.agents.List()),
		// ContentItems undercounts a full production backing store (the
		// content store has no List()); a node reports what it can observe
		// without the store exposing iteration.
		ContentItems: 0,
	}
}

// NetworkStatsResult is get_network_stats's result shape.
type NetworkStatsResult struct {
	TotalAgents      int    `json:"total_agents"`
	HierarchyDepth   int    `json:"hierarchy_depth"`
	BranchingFactor  int    `json:"branching_factor"`
	CurrentEpoch     uint64 `json:"current_epoch"`
	MyTier           int    `json:"my_tier"`
	SubordinateCount int    `json:"subordinate_count"`
	ParentID         string `json:"parent_id,omitempty"`
}

// GetNetworkStats implements get_network_stats, deriving hierarchy_depth
// from the Hierarchy Manager's swarm-size estimator.
func (f *Facade) GetNetworkStats(estimator *hierarchy.SwarmSizeEstimator) NetworkStatsResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	known := f.agents.List()
	subordinates := 0
	for _, aid := range known {
		if rec, ok := f.agents.Get(aid); ok && rec.Tier == f.selfTier.Level+1 {
			subordinates++
		}
	}
	depth := 0
	if estimator != nil {
		depth = estimator.Depth()
	}
	return NetworkStatsResult{
		TotalAgents:      len(known),
		HierarchyDepth:   depth,
		BranchingFactor:  f.cfg.BranchingFactor,
		CurrentEpoch:     f.epoch.Current(),
		MyTier:           f.selfTier.Level,
		SubordinateCount: subordinates,
		ParentID:         f.parentID,
	}
}

// HierarchyResult is get_hierarchy's result shape.
type HierarchyResult struct {
	Self            identity.AgentID `json:"self"`
	Peers           []string         `json:"peers"`
	TotalAgents     int              `json:"total_agents"`
	HierarchyDepth  int              `json:"hierarchy_depth"`
	BranchingFactor int              `json:"branching_factor"`
	Epoch           uint64           `json:"epoch"`
}

// GetHierarchy implements get_hierarchy.
func (f *Facade) GetHierarchy(estimator *hierarchy.SwarmSizeEstimator) HierarchyResult {
	f.mu.Lock()
	tier := f.selfTier.Level
	f.mu.Unlock()
	peers := f.agents.ListByTier(tier)
	depth := 0
	if estimator != nil {
		depth = estimator.Depth()
	}
	return HierarchyResult{
		Self:            f.id.ID,
		Peers:           peers,
		TotalAgents:     len(f.agents.List()),
		HierarchyDepth:  depth,
		BranchingFactor: f.cfg.BranchingFactor,
		Epoch:           f.epoch.Current(),
	}
}

// ReceiveTaskResult is receive_task's result shape: the pending tasks
// assigned to or visible at this node's tier, for an agent process
// polling for work.
type ReceiveTaskResult struct {
	PendingTasks []*Task          `json:"pending_tasks"`
	AgentID      identity.AgentID `json:"agent_id"`
	Tier         int              `json:"tier"`
}

// ReceiveTask implements receive_task.
func (f *Facade) ReceiveTask() ReceiveTaskResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Task, 0, len(f.pending))
	for _, e := range f.pending {
		out = append(out, e.task)
	}
	return ReceiveTaskResult{PendingTasks: out, AgentID: f.id.ID, Tier: f.selfTier.Level}
}

// GetTaskResult is get_task's result shape.
type GetTaskResult struct {
	Task      *Task `json:"task"`
	IsPending bool  `json:"is_pending"`
}

// GetTask implements get_task. Returns TaskNotFound if task_id is unknown
// both locally and in the replicated Task Registry.
func (f *Facade) GetTask(taskID string) (GetTaskResult, error) {
	f.mu.Lock()
	entry, pending := f.pending[taskID]
	f.mu.Unlock()
	if pending {
		return GetTaskResult{Task: entry.task, IsPending: true}, nil
	}
	if rec, ok := f.tasks.Get(taskID); ok {
		return GetTaskResult{
			Task: &Task{
				TaskID:    rec.TaskID,
				Status:    rec.Status,
				TierLevel: rec.OwnerTier,
			},
			IsPending: false,
		}, nil
	}
	return GetTaskResult{}, swarmerr.New(swarmerr.TaskNotFound, "no task with this id", map[string]string{"task_id": taskID})
}

// InjectTaskResult is inject_task's result shape.
type InjectTaskResult struct {
	TaskID      string `json:"task_id"`
	Description string `json:"description"`
	Epoch       uint64 `json:"epoch"`
	Injected    bool   `json:"injected"`
}

// InjectTask implements inject_task: the Facade creates the task
// exclusively on injection, records it
// in the Task Registry CRDT in Pending status, and returns it for the
// caller to announce on the tier's task channel.
func (f *Facade) InjectTask(description string) InjectTaskResult {
	taskID := uuid.New().String()
	epoch := f.epoch.Current()

	f.mu.Lock()
	tier := f.selfTier.Level
	f.pending[taskID] = &taskEntry{
		task: &Task{
			TaskID:      taskID,
			Epoch:       epoch,
			Status:      string(consensus.Pending),
			Description: description,
			TierLevel:   tier,
			CreatedAt:   time.Now(),
		},
		fsm: consensus.NewTaskFSM(taskID),
	}
	f.mu.Unlock()

	f.tasks.Put(&state.TaskRecord{
		TaskID:       taskID,
		Status:       string(consensus.Pending),
		OwnerTier:    tier,
		UpdatedEpoch: epoch,
	})

	return InjectTaskResult{TaskID: taskID, Description: description, Epoch: epoch, Injected: true}
}

// ProposePlanParams is propose_plan's input.
type ProposePlanParams struct {
	TaskID               string           `json:"task_id"`
	Proposer             identity.AgentID `json:"proposer"`
	Subtasks             []string         `json:"subtasks"`
	Rationale            string           `json:"rationale"`
	EstimatedParallelism float64          `json:"estimated_parallelism"`
	PeerCount            int              `json:"peer_count"`
}

// ProposePlanResult is propose_plan's result shape.
type ProposePlanResult struct {
	PlanID          string `json:"plan_id"`
	PlanHash        string `json:"plan_hash"`
	TaskID          string `json:"task_id"`
	Accepted        bool   `json:"accepted"`
	CommitPublished bool   `json:"commit_published"`
	RevealPublished bool   `json:"reveal_published"`
}

// ProposePlan implements propose_plan: opens (or joins) the task's
// RFP, commits the proposer's plan hash, and immediately reveals
// once committed (the facade speaks for a single local proposer; the
// RFP's window-closing semantics are driven by the caller polling
// CommitWindowClosed via the Consensus Engine's own RFP loop, not here).
// Errors: wrong-tier if this node is not at the task's tier_level,
// duplicate-proposal if the proposer already committed for this task.
func (f *Facade) ProposePlan(p ProposePlanParams) (ProposePlanResult, error) {
	f.mu.Lock()
	entry, ok := f.pending[p.TaskID]
	if !ok {
		f.mu.Unlock()
		return ProposePlanResult{}, swarmerr.New(swarmerr.TaskNotFound, "cannot propose for unknown task", map[string]string{"task_id": p.TaskID})
	}
	if entry.task.TierLevel != f.selfTier.Level {
		f.mu.Unlock()
		return ProposePlanResult{}, swarmerr.New(swarmerr.InvalidRequest, "wrong-tier: proposer is not at the task's tier", map[string]string{"task_id": p.TaskID})
	}
	if f.committed[p.TaskID][string(p.Proposer)] {
		f.mu.Unlock()
		return ProposePlanResult{}, swarmerr.New(swarmerr.DuplicateProposal, "proposer already committed for this task", map[string]string{"task_id": p.TaskID, "proposer": string(p.Proposer)})
	}
	if entry.rfp == nil {
		entry.rfp = consensus.NewRFP(p.TaskID, p.PeerCount, f.cfg.CommitRevealTimeout())
		if err := entry.fsm.Transition(consensus.ProposalPhase); err == nil {
			entry.task.Status = string(consensus.ProposalPhase)
		}
	}
	rfp := entry.rfp
	if f.committed[p.TaskID] == nil {
		f.committed[p.TaskID] = make(map[string]bool)
	}
	f.mu.Unlock()

	plan := consensus.Plan{TaskID: p.TaskID, Proposer: string(p.Proposer), Subtasks: p.Subtasks, Payload: p}
	hash, err := consensus.HashPlan(plan)
	if err != nil {
		return ProposePlanResult{}, err
	}
	if err := rfp.Commit(string(p.Proposer), hash); err != nil {
		return ProposePlanResult{}, err
	}
	f.mu.Lock()
	f.committed[p.TaskID][string(p.Proposer)] = true
	f.mu.Unlock()

	revealErr := rfp.Reveal(plan)
	planID := uuid.New().String()
	return ProposePlanResult{
		PlanID:          planID,
		PlanHash:        hexHash(hash),
		TaskID:          p.TaskID,
		Accepted:        revealErr == nil,
		CommitPublished: true,
		RevealPublished: revealErr == nil,
	}, nil
}

// SubmitResultParams is submit_result's input.
type SubmitResultParams struct {
	TaskID      string           `json:"task_id"`
	AgentID     identity.AgentID `json:"agent_id"`
	Artifact    []byte           `json:"artifact"`
	MerkleProof *state.Proof     `json:"merkle_proof"`
}

// SubmitResultResult is submit_result's result shape.
type SubmitResultResult struct {
	TaskID     string `json:"task_id"`
	ArtifactID string `json:"artifact_id"`
	Accepted   bool   `json:"accepted"`
}

// SubmitResult implements submit_result: publishes the artifact to the
// content store, verifies the Merkle proof, and marks the task
// Completed once verification passes. Errors: task-not-found,
// verification-failed.
func (f *Facade) SubmitResult(p SubmitResultParams) (SubmitResultResult, error) {
	f.mu.Lock()
	entry, ok := f.pending[p.TaskID]
	f.mu.Unlock()
	if !ok {
		return SubmitResultResult{}, swarmerr.New(swarmerr.TaskNotFound, "no pending task with this id", map[string]string{"task_id": p.TaskID})
	}

	cid, err := f.store.Put(p.Artifact)
	if err != nil {
		return SubmitResultResult{}, err
	}

	if p.MerkleProof == nil || !state.VerifyProof(p.MerkleProof) {
		if f.met != nil {
			f.met.ResultReassigns.Inc()
		}
		return SubmitResultResult{TaskID: p.TaskID, ArtifactID: string(cid), Accepted: false},
			swarmerr.New(swarmerr.ResultRejected, "merkle proof verification failed", map[string]string{"task_id": p.TaskID})
	}

	f.mu.Lock()
	// A task with no peers at its tier skips straight from whatever phase
	// it was last observed in to completion; walk the FSM through every intervening legal
	// edge so the terminal transition itself is never illegal.
	for _, next := range []consensus.TaskStatus{consensus.ProposalPhase, consensus.VotingPhase, consensus.InProgress, consensus.Completed} {
		if entry.fsm.Status() == next {
			continue
		}
		if err := entry.fsm.Transition(next); err != nil {
			break
		}
		entry.task.Status = string(next)
	}
	epoch := f.epoch.Current()
	delete(f.pending, p.TaskID)
	f.mu.Unlock()

	f.tasks.Put(&state.TaskRecord{
		TaskID:       p.TaskID,
		Status:       string(consensus.Completed),
		ResultID:     cid,
		UpdatedEpoch: epoch,
	})
	if f.met != nil {
		f.met.TasksCompleted.Inc()
	}

	return SubmitResultResult{TaskID: p.TaskID, ArtifactID: string(cid), Accepted: true}, nil
}

// ConnectResult is connect's result shape.
type ConnectResult struct {
	Connected bool `json:"connected"`
}

// Connect implements connect: dials addr over the transport substrate.
// Error: dial-failed.
func (f *Facade) Connect(ctx context.Context, addr transport.PeerID) (ConnectResult, error) {
	if f.dialer == nil {
		return ConnectResult{}, swarmerr.New(swarmerr.PeerUnreachable, "dial-failed: no transport dialer configured", map[string]string{"addr": string(addr)})
	}
	stream, err := f.dialer.Dial(ctx, addr)
	if err != nil {
		return ConnectResult{}, swarmerr.New(swarmerr.PeerUnreachable, "dial-failed: "+err.Error(), map[string]string{"addr": string(addr)})
	}
	_ = stream.Close()
	return ConnectResult{Connected: true}, nil
}

// ListSwarms implements list_swarm.
func (f *Facade) ListSwarms() []*Swarm {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Swarm, 0, len(f.swarms))
	for _, s := range f.swarms {
		out = append(out, s)
	}
	return out
}

// CreateSwarm implements create_swarm: mints a fresh swarm_id and
// registers the caller as its first member.
func (f *Facade) CreateSwarm(token string) *Swarm {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &Swarm{SwarmID: uuid.New().String(), Token: token, Members: []string{string(f.id.ID)}}
	f.swarms[s.SwarmID] = s
	return s
}

// JoinSwarm implements join_swarm. Error: bad-token.
func (f *Facade) JoinSwarm(swarmID, token string) (*Swarm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.swarms[swarmID]
	if !ok {
		return nil, swarmerr.New(swarmerr.InvalidParams, "no swarm with this id", map[string]string{"swarm_id": swarmID})
	}
	if s.Token != "" && s.Token != token {
		return nil, swarmerr.New(swarmerr.InvalidRequest, "bad-token", map[string]string{"swarm_id": swarmID})
	}
	for _, m := range s.Members {
		if m == string(f.id.ID) {
			return s, nil
		}
	}
	s.Members = append(s.Members, string(f.id.ID))
	return s, nil
}

func hexHash(h consensus.PlanHash) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(h)*2)
	for i, b := range h {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0x0f]
	}
	return string(out)
}
