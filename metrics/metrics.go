// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wires the coordination core's Prometheus counters and
// histograms: Tier-1 election outcomes, commit-reveal/RFP timing, and
// CRDT merge volume. A single constructor takes a prometheus.Registerer
// and registers every collector up front.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Swarm bundles every Prometheus collector the coordination core
// publishes.
type Swarm struct {
	ElectionsHeld       prometheus.Counter
	ElectionSeatsFilled prometheus.Counter
	RFPDuration         prometheus.Histogram
	VotingDuration      prometheus.Histogram
	CRDTMerges          *prometheus.CounterVec
	TasksCompleted      prometheus.Counter
	TasksFailed         prometheus.Counter
	ResultReassigns     prometheus.Counter
}

// NewSwarm constructs and registers every collector against reg.
func NewSwarm(reg prometheus.Registerer) (*Swarm, error) {
	s := &Swarm{
		ElectionsHeld: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openswarm_elections_held_total",
			Help: "Total number of Tier-1 elections this node has observed conclude.",
		}),
		ElectionSeatsFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openswarm_election_seats_filled_total",
			Help: "Total number of Tier-1 seats awarded across all elections observed.",
		}),
		RFPDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "openswarm_rfp_commit_reveal_seconds",
			Help:    "Wall-clock duration of the commit-reveal phase per RFP round.",
			Buckets: prometheus.LinearBuckets(5, 10, 7), // up to the 60s commit-reveal cap
		}),
		VotingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "openswarm_voting_seconds",
			Help:    "Wall-clock duration of the IRV tally phase per task, including extensions.",
			Buckets: prometheus.LinearBuckets(10, 20, 13), // up to the 240s extended voting cap
		}),
		CRDTMerges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "openswarm_crdt_merges_total",
			Help: "Total OR-Set merge operations, labeled by registry.",
		}, []string{"registry"}),
		TasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openswarm_tasks_completed_total",
			Help: "Total tasks that reached the Completed terminal state.",
		}),
		TasksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openswarm_tasks_failed_total",
			Help: "Total tasks that reached the Failed terminal state.",
		}),
		ResultReassigns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "openswarm_result_reassigns_total",
			Help: "Total subtask reassignments triggered by Merkle proof verification failures.",
		}),
	}

	for _, c := range []prometheus.Collector{
		s.ElectionsHeld, s.ElectionSeatsFilled, s.RFPDuration, s.VotingDuration,
		s.CRDTMerges, s.TasksCompleted, s.TasksFailed, s.ResultReassigns,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}
