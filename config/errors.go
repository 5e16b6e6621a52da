// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var (
	ErrInvalidBranchingFactor     = errors.New("branching_factor must be >= 1")
	ErrInvalidEpochDuration       = errors.New("epoch_duration_secs must be >= 1")
	ErrInvalidKeepalive           = errors.New("keepalive_interval_secs must be >= 1")
	ErrLeaderTimeoutTooLow        = errors.New("leader_timeout_secs must be >= 3x keepalive_interval_secs")
	ErrInvalidCommitRevealTimeout = errors.New("commit_reveal_timeout_secs must be >= 1")
	ErrInvalidVotingTimeout       = errors.New("voting_timeout_secs must be >= 1")
	ErrInvalidMaxDepth            = errors.New("max_hierarchy_depth must be >= 1")
	ErrMissingRPCBindAddr         = errors.New("rpc_bind_addr must be set")
)
