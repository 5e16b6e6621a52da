// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consensus

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

// Electorate computes the voting body for a task's plan-selection
// round: the k peer coordinators at this tier, plus a "Senate" sample of size min(k, len(tierBelow)/2) drawn from the tier directly
// below by a deterministic function of epoch‖task_id, so every replica
// that observes the same epoch and task_id computes the identical
// electorate without a round of negotiation.
func Electorate(peers []string, tierBelow []string, epoch uint64, taskID string, k int) []string {
	electorate := append([]string(nil), peers...)

	senateSize := len(tierBelow) / 2
	if senateSize > k {
		senateSize = k
	}
	if senateSize <= 0 || len(tierBelow) == 0 {
		return electorate
	}

	seed := seedOf(epoch, taskID)
	senate := deterministicSample(tierBelow, senateSize, seed)
	return append(electorate, senate...)
}

func seedOf(epoch uint64, taskID string) [32]byte {
	h := sha256.New()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], epoch)
	h.Write(b[:])
	h.Write([]byte(taskID))
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// deterministicSample draws n elements from pool without replacement,
// ranked by SHA-256(seed ‖ element) so the choice depends only on
// (epoch, task_id) and the candidate pool — reproducible on every
// replica, no coordination or shared RNG state required.
func deterministicSample(pool []string, n int, seed [32]byte) []string {
	type scored struct {
		id    string
		score [32]byte
	}
	ranked := make([]scored, len(pool))
	for i, id := range pool {
		h := sha256.New()
		h.Write(seed[:])
		h.Write([]byte(id))
		var s [32]byte
		copy(s[:], h.Sum(nil))
		ranked[i] = scored{id: id, score: s}
	}
	sort.Slice(ranked, func(i, j int) bool {
		for b := 0; b < 32; b++ {
			if ranked[i].score[b] != ranked[j].score[b] {
				return ranked[i].score[b] < ranked[j].score[b]
			}
		}
		return ranked[i].id < ranked[j].id
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].id
	}
	return out
}

// CriticScores is one voter's per-plan critic breakdown.
type CriticScores struct {
	Feasibility  float64
	Completeness float64
	Parallelism  float64
	Risk         float64
}

// Aggregate computes the weighted critic score used only for IRV
// tie-breaks: 0.30·feas + 0.30·comp + 0.25·par + 0.15·(1-risk).
func (c CriticScores) Aggregate() float64 {
	return 0.30*c.Feasibility + 0.30*c.Completeness + 0.25*c.Parallelism + 0.15*(1-c.Risk)
}

// CriticAverager resolves per-plan ScoreFunc from the per-voter critic
// submissions gathered during voting: the IRV tally's tie-break
// and exhaustion-fallback score is each plan's mean aggregate critic
// score across all voters who submitted one.
func CriticAverager(byVoter map[string]map[Candidate]CriticScores) ScoreFunc {
	sums := make(map[Candidate]float64)
	counts := make(map[Candidate]int)
	for _, plans := range byVoter {
		for plan, cs := range plans {
			sums[plan] += cs.Aggregate()
			counts[plan]++
		}
	}
	return func(c Candidate) float64 {
		n := counts[c]
		if n == 0 {
			return 0
		}
		return sums[c] / float64(n)
	}
}
