// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hierarchy

import (
	"github.com/luxfi/swarmcore/consensus"
	"github.com/luxfi/swarmcore/swarmerr"
)

// LocationVector is the three-dimensional Vivaldi-style network
// coordinate a candidacy announcement carries.
type LocationVector [3]float64

// Candidacy is one node's `candidacy(agent_id, epoch, score,
// location_vector)` broadcast on `election/tier1`.
type Candidacy struct {
	AgentID  string
	Epoch    uint64
	Score    Score
	Location LocationVector
}

// EligibilityThreshold is the minimum composite score a node must clear
// before broadcasting a candidacy.
const EligibilityThreshold = 0.5

// Eligible reports whether s clears the candidacy threshold.
func Eligible(s Score) bool { return s.Composite() > EligibilityThreshold }

// Election runs one epoch's Tier-1 election over collected candidacies
// and ballots. N is the swarm-size estimate used as the
// N/k seating threshold denominator; seats is k.
func Election(candidacies []Candidacy, ballots []consensus.Ballot, n float64, seats int) (consensus.Result, error) {
	if seats <= 0 {
		return consensus.Result{}, swarmerr.New(swarmerr.InvalidParams, "election requires at least one seat", nil)
	}

	candidates := make([]consensus.Candidate, 0, len(candidacies))
	scoreByCandidate := make(map[consensus.Candidate]float64, len(candidacies))
	for _, c := range candidacies {
		cand := consensus.Candidate(c.AgentID)
		candidates = append(candidates, cand)
		scoreByCandidate[cand] = c.Score.Composite()
	}
	score := func(c consensus.Candidate) float64 { return scoreByCandidate[c] }

	filtered := make([]consensus.Ballot, 0, len(ballots))
	for _, b := range ballots {
		ranking := consensus.FilterSelfFirst(consensus.Candidate(b.Voter), b.Ranking)
		if ranking == nil {
			// Self-first ballot discarded from the tally. Surfacing
			// swarmerr.SelfVoteProhibited to the offending voter is the
			// inbound envelope handler's job, at the point the vote
			// notification is received and rejected — not this batch
			// tally, which only ever sees ballots already past that check.
			continue
		}
		filtered = append(filtered, consensus.Ballot{Voter: b.Voter, Ranking: ranking})
	}

	threshold := 1.0 / float64(seats)
	return consensus.Tally(filtered, candidates, seats, threshold, int(n), score), nil
}
