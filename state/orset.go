// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state implements the Replicated State Layer: OR-Set
// CRDTs for the Task and Agent registries, a last-writer-wins Epoch
// Register, a Merkle-DAG for results, and the content-addressed store.
package state

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"golang.org/x/exp/maps"
)

// Tag uniquely identifies one add-operation on an element, the way
// utils/set.Set tracks membership but without a remove-by-value primitive —
// ORSet needs per-insertion tags to support "add wins over a concurrent
// remove that didn't observe it" semantics.
type Tag string

func newTag() Tag {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return Tag(hex.EncodeToString(b[:]))
}

// ORSet is a state-based Observed-Remove Set CRDT over a comparable
// element type. Add/Remove/Query/Merge are its core operations, alongside
// Has, Snapshot, and TruncateTombstones; elements are only added or
// removed through Add/Remove so Merge stays a pure pointwise union.
type ORSet[T comparable] struct {
	mu    sync.RWMutex
	adds  map[T]map[Tag]struct{}
	tombs map[Tag]struct{}
}

// NewORSet constructs an empty OR-Set.
func NewORSet[T comparable]() *ORSet[T] {
	return &ORSet[T]{
		adds:  make(map[T]map[Tag]struct{}),
		tombs: make(map[Tag]struct{}),
	}
}

// Add(x): assign a fresh unique tag and insert (x, tag).
func (s *ORSet[T]) Add(x T) Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	tag := newTag()
	if s.adds[x] == nil {
		s.adds[x] = make(map[Tag]struct{})
	}
	s.adds[x][tag] = struct{}{}
	return tag
}

// Remove(x): record all currently observed tags of x into the tombstone
// set. A concurrent Add(x) on another replica whose tag this
// replica hasn't observed yet survives the merge — the OR-Set "revive
// after partition" guarantee.
func (s *ORSet[T]) Remove(x T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tag := range s.adds[x] {
		s.tombs[tag] = struct{}{}
	}
}

// Has reports whether x is currently in the set.
func (s *ORSet[T]) Has(x T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for tag := range s.adds[x] {
		if _, tombed := s.tombs[tag]; !tombed {
			return true
		}
	}
	return false
}

// Query returns {x : (x,tag) ∈ adds ∧ tag ∉ tombstones}.
func (s *ORSet[T]) Query() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.adds))
	for x, tags := range s.adds {
		for tag := range tags {
			if _, tombed := s.tombs[tag]; !tombed {
				out = append(out, x)
				break
			}
		}
	}
	return out
}

// Delta captures the adds/tombstones produced since a prior snapshot, for
// piggybacking on keep-alive notifications.
type Delta[T comparable] struct {
	Adds  map[T][]Tag
	Tombs []Tag
}

// Snapshot returns the full replicated state for anti-entropy exchange.
func (s *ORSet[T]) Snapshot() Delta[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	adds := make(map[T][]Tag, len(s.adds))
	for x, tags := range s.adds {
		adds[x] = maps.Keys(tags)
	}
	tombs := maps.Keys(s.tombs)
	return Delta[T]{Adds: adds, Tombs: tombs}
}

// Merge performs the pointwise union of adds and tombstones from another
// replica's delta or full state. Merge is commutative, associative, and
// idempotent, so any two replicas that have observed the same set of
// operations converge to the same Query() result regardless of delivery
// order.
func (s *ORSet[T]) Merge(d Delta[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for x, tags := range d.Adds {
		if s.adds[x] == nil {
			s.adds[x] = make(map[Tag]struct{})
		}
		for _, t := range tags {
			s.adds[x][t] = struct{}{}
		}
	}
	for _, t := range d.Tombs {
		s.tombs[t] = struct{}{}
	}
}

// TruncateTombstones bounds tombstone growth by deleting every tombstone
// for which keepIf reports false. It does not order tombstones by age and
// enforces no minimum retention window of its own; whatever window
// applies is decided entirely by keepIf.
func (s *ORSet[T]) TruncateTombstones(keepIf func(Tag) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.tombs {
		if !keepIf(t) {
			delete(s.tombs, t)
		}
	}
}
