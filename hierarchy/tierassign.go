// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hierarchy

import (
	"crypto/sha256"
	"math"
	"sort"
)

// Tier is the position a node occupies in the hierarchy: Tier1 is the
// swarm's top leadership, TierN(n) for n>1 is an intermediate
// coordinator level, and Executor is a leaf with no subordinates.
type Tier struct {
	Level    int // 1 for Tier1, increasing with depth; 0 means Executor
	Executor bool
}

// Tier1 and ExecutorTier (below) are the named extremes of the Tier sum type; any
// other level is addressed by TierN.
var (
	Tier1 = Tier{Level: 1}
)

// TierN constructs an intermediate tier at the given depth.
func TierN(level int) Tier { return Tier{Level: level} }

// ExecutorTier is the leaf tier with no further coordination role.
var ExecutorTier = Tier{Executor: true}

// Candidate3D is a node and its network-coordinate embedding, or nil
// Coord if no ping-time samples have been collected yet.
type Candidate3D struct {
	AgentID string
	Coord   *LocationVector
}

func vivaldiDistance(a, b LocationVector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func hashDistance(a, b string) uint64 {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	var dist uint64
	for i := 0; i < 8; i++ {
		dist = dist<<8 | uint64(ha[i]^hb[i])
	}
	return dist
}

// NearestLeader picks, for a joining node's own coordinate, the leader
// among candidates with the lowest distance — Vivaldi Euclidean distance
// when both sides have a coordinate, lexicographic SHA-256 hash distance
// otherwise.
func NearestLeader(self Candidate3D, leaders []Candidate3D) string {
	if len(leaders) == 0 {
		return ""
	}
	type scored struct {
		id   string
		dist float64
		hdst uint64
		useHash bool
	}
	scoredLeaders := make([]scored, len(leaders))
	for i, l := range leaders {
		if self.Coord != nil && l.Coord != nil {
			scoredLeaders[i] = scored{id: l.AgentID, dist: vivaldiDistance(*self.Coord, *l.Coord)}
		} else {
			scoredLeaders[i] = scored{id: l.AgentID, hdst: hashDistance(self.AgentID, l.AgentID), useHash: true}
		}
	}
	sort.Slice(scoredLeaders, func(i, j int) bool {
		a, b := scoredLeaders[i], scoredLeaders[j]
		if a.useHash != b.useHash {
			// mixed population: prefer a real coordinate measurement
			// over the hash fallback whenever one is available.
			return !a.useHash
		}
		if a.useHash {
			return a.hdst < b.hdst
		}
		return a.dist < b.dist
	})
	return scoredLeaders[0].id
}

// BranchAssignment is the result of recursing into one Tier-1 leader's
// branch: the top-scoring members become the next tier's coordinators,
// the remainder recurse further.
type BranchAssignment struct {
	Coordinators []string
	Remainder    []string
}

// AssignBranch splits members of a branch into coordinators (the
// top-scoring k) and a remainder that recurses into the next tier down.
func AssignBranch(members map[string]Score, k int) BranchAssignment {
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := members[ids[i]].Composite(), members[ids[j]].Composite()
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})
	if k > len(ids) {
		k = len(ids)
	}
	return BranchAssignment{Coordinators: ids[:k], Remainder: ids[k:]}
}
