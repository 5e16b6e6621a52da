// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "sync"

// EpochRegister is a last-writer-wins register over the swarm's coarse
// logical clock: it advances monotonically, ignores stale writes, and
// tolerates the 2-epoch staleness window a
// message may arrive within before being rejected by identity.Verify.
type EpochRegister struct {
	mu      sync.RWMutex
	current uint64
}

// NewEpochRegister starts the register at epoch 0.
func NewEpochRegister() *EpochRegister {
	return &EpochRegister{}
}

// Current returns the highest epoch observed so far.
func (r *EpochRegister) Current() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Observe merges an epoch value seen on the wire or from a local tick.
// It is last-writer-wins over the max: the register only ever moves
// forward, so a replay of a stale epoch is a silent no-op rather than an
// error (staleness rejection is identity.Verify's job, not the
// register's).
func (r *EpochRegister) Observe(epoch uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if epoch > r.current {
		r.current = epoch
	}
}

// Advance increments the register by one, the local tick driven by the
// configured EpochDuration, and returns the new value.
func (r *EpochRegister) Advance() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current++
	return r.current
}

// IsStale reports whether epoch falls outside the 2-epoch tolerance
// window behind Current.
func (r *EpochRegister) IsStale(epoch uint64) bool {
	cur := r.Current()
	return cur >= 2 && epoch < cur-2
}
