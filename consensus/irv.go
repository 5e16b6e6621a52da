// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package consensus implements the commit-reveal Request-for-Proposal
// flow, electorate sampling, Instant-Runoff voting, cascade assignment,
// result verification, and the per-task state machine.
package consensus

import "sort"

// Candidate is an opaque ballot choice: a Tier-1 election uses agent IDs,
// plan-selection voting uses plan IDs. The IRV engine is identical either
// way — it never interprets the string, only compares and scores it.
type Candidate string

// Ranking is one voter's ordered preference list, most preferred first.
type Ranking []Candidate

// ScoreFunc resolves a candidate's tie-break score: composite NodeScore
// for an election, aggregate critic score for plan-selection. Tally
// applies it the same way for both callers: the higher score wins a tie
// at the seat-threshold step, and the lower score is eliminated first.
type ScoreFunc func(Candidate) float64

// Ballot is one voter's ranking, already filtered of any disqualified
// first choice.
type Ballot struct {
	Voter   string
	Ranking Ranking
}

// Round records one elimination/seating step for observability and
// testing. Not required by the protocol, but tallies must be debuggable.
type Round struct {
	FirstChoiceCounts map[Candidate]int
	Eliminated        Candidate
	Seated            Candidate
}

// Result is the outcome of a completed tally.
type Result struct {
	Winners []Candidate
	Rounds  []Round
	// ByCriticFallback is true when the tally exhausted all ballots
	// without a majority/threshold winner and fell back to ScoreFunc.
	ByCriticFallback bool
}

// Tally runs Instant-Runoff Voting to fill seats seats from ballots,
// breaking ties by score. When seats == 1 and threshold == 0.5 exactly
// this reduces to majority-winner plan selection; when seats == k and
// threshold == 1/k it reduces to the Tier-1 multi-seat election.
//
// threshold is the fraction of live first-choice votes a candidate must
// clear to be seated outright in a round. electorateSize is the
// denominator N used for the election's N/k check; pass 0 for
// plan-selection, where the threshold is evaluated against live ballot
// count instead.
func Tally(ballots []Ballot, candidates []Candidate, seats int, threshold float64, electorateSize int, score ScoreFunc) Result {
	live := make(map[Candidate]bool, len(candidates))
	for _, c := range candidates {
		live[c] = true
	}

	// ptr[voter] is the index into that voter's ranking of their current
	// live preference; advanced whenever their current choice is removed.
	type voterState struct {
		ranking Ranking
		ptr     int
	}
	voters := make([]*voterState, 0, len(ballots))
	for _, b := range ballots {
		voters = append(voters, &voterState{ranking: b.Ranking})
	}

	var res Result
	var seated []Candidate

	for len(live) > 0 && len(seated) < seats {
		counts := make(map[Candidate]int)
		liveBallots := 0
		for _, v := range voters {
			for v.ptr < len(v.ranking) && !live[v.ranking[v.ptr]] {
				v.ptr++
			}
			if v.ptr >= len(v.ranking) {
				continue
			}
			counts[v.ranking[v.ptr]]++
			liveBallots++
		}

		round := Round{FirstChoiceCounts: counts}

		// Candidate pool exhausted down to exactly the remaining seats:
		// no further elimination is possible, so whoever is left wins by
		// process of elimination regardless of raw threshold.
		if len(live) <= seats-len(seated) {
			for c := range live {
				round.Seated = c
				seated = append(seated, c)
				delete(live, c)
			}
			res.Rounds = append(res.Rounds, round)
			continue
		}

		denominator := electorateSize
		if denominator == 0 {
			denominator = liveBallots
		}

		// Seat any candidate clearing the threshold.
		var winner Candidate
		haveWinner := false
		if denominator > 0 {
			for c, n := range counts {
				if float64(n) > threshold*float64(denominator) {
					if !haveWinner || n > counts[winner] || (n == counts[winner] && score(c) > score(winner)) {
						winner = c
						haveWinner = true
					}
				}
			}
		}

		if haveWinner {
			round.Seated = winner
			seated = append(seated, winner)
			delete(live, winner)
			res.Rounds = append(res.Rounds, round)
			continue
		}

		if liveBallots == 0 {
			// All ballots exhausted without a decision: fall back to the
			// highest scoring remaining candidate.
			res.Rounds = append(res.Rounds, round)
			res.ByCriticFallback = true
			best := highestScoring(live, score)
			if best != "" {
				seated = append(seated, best)
				delete(live, best)
			}
			continue
		}

		// Otherwise eliminate the lowest-count candidate, tie-broken by
		// lower score then lower Candidate value for full determinism.
		loser := lowestCount(counts, live, score)
		round.Eliminated = loser
		delete(live, loser)
		res.Rounds = append(res.Rounds, round)
	}

	res.Winners = seated
	return res
}

func highestScoring(live map[Candidate]bool, score ScoreFunc) Candidate {
	var best Candidate
	bestScore := -1.0
	first := true
	for c := range live {
		s := score(c)
		if first || s > bestScore || (s == bestScore && c < best) {
			best, bestScore, first = c, s, false
		}
	}
	return best
}

// FilterSelfFirst discards a ballot whose top choice is the voter's own
// candidacy. Returns nil if the ballot must be dropped.
func FilterSelfFirst(self Candidate, ranking Ranking) Ranking {
	if len(ranking) > 0 && ranking[0] == self {
		return nil
	}
	return ranking
}

func lowestCount(counts map[Candidate]int, live map[Candidate]bool, score ScoreFunc) Candidate {
	candidates := make([]Candidate, 0, len(live))
	for c := range live {
		candidates = append(candidates, c)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	var worst Candidate
	worstCount := -1
	worstScore := 0.0
	first := true
	for _, c := range candidates {
		n := counts[c] // zero if c received no first-choice votes this round
		s := score(c)
		if first || n < worstCount || (n == worstCount && s < worstScore) {
			worst, worstCount, worstScore, first = c, n, s, false
		}
	}
	return worst
}
