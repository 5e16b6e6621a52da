// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "time"

// Config holds every option recognized by the coordination core.
// Precedence on load is command-line flags > environment (OPENSWARM_ prefix)
// > configuration file > these defaults.
type Config struct {
	BranchingFactor        int           `json:"branching_factor" yaml:"branching_factor"`
	EpochDurationSecs      int           `json:"epoch_duration_secs" yaml:"epoch_duration_secs"`
	KeepaliveIntervalSecs  int           `json:"keepalive_interval_secs" yaml:"keepalive_interval_secs"`
	LeaderTimeoutSecs      int           `json:"leader_timeout_secs" yaml:"leader_timeout_secs"`
	CommitRevealTimeoutSecs int          `json:"commit_reveal_timeout_secs" yaml:"commit_reveal_timeout_secs"`
	VotingTimeoutSecs      int           `json:"voting_timeout_secs" yaml:"voting_timeout_secs"`
	PowDifficulty          int           `json:"pow_difficulty" yaml:"pow_difficulty"`
	MaxHierarchyDepth      int           `json:"max_hierarchy_depth" yaml:"max_hierarchy_depth"`
	RPCBindAddr            string        `json:"rpc_bind_addr" yaml:"rpc_bind_addr"`
	ListenAddr             string        `json:"listen_addr" yaml:"listen_addr"`
	BootstrapPeers         []string      `json:"bootstrap_peers" yaml:"bootstrap_peers"`
	MDNSEnabled            bool          `json:"mdns_enabled" yaml:"mdns_enabled"`
	SwarmID                string        `json:"swarm_id" yaml:"swarm_id"`
	SwarmToken             string        `json:"swarm_token" yaml:"swarm_token"`
	AgentName              string        `json:"agent_name" yaml:"agent_name"`
	Capabilities           []string      `json:"capabilities" yaml:"capabilities"`
	LogLevel               string        `json:"log_level" yaml:"log_level"`

	// KeyFile is not wire-recognized but is needed to locate
	// the persistent identity seed.
	KeyFile string `json:"-" yaml:"key_file"`
}

// EpochDuration returns EpochDurationSecs as a time.Duration.
func (c Config) EpochDuration() time.Duration {
	return time.Duration(c.EpochDurationSecs) * time.Second
}

// KeepaliveInterval returns KeepaliveIntervalSecs as a time.Duration.
func (c Config) KeepaliveInterval() time.Duration {
	return time.Duration(c.KeepaliveIntervalSecs) * time.Second
}

// LeaderTimeout returns LeaderTimeoutSecs as a time.Duration.
func (c Config) LeaderTimeout() time.Duration {
	return time.Duration(c.LeaderTimeoutSecs) * time.Second
}

// CommitRevealTimeout returns CommitRevealTimeoutSecs as a time.Duration.
func (c Config) CommitRevealTimeout() time.Duration {
	return time.Duration(c.CommitRevealTimeoutSecs) * time.Second
}

// VotingTimeout returns VotingTimeoutSecs as a time.Duration.
func (c Config) VotingTimeout() time.Duration {
	return time.Duration(c.VotingTimeoutSecs) * time.Second
}

// Valid returns an error describing the first condition the
// configuration fails, or nil.
func (c Config) Valid() error {
	switch {
	case c.BranchingFactor < 1:
		return ErrInvalidBranchingFactor
	case c.EpochDurationSecs < 1:
		return ErrInvalidEpochDuration
	case c.KeepaliveIntervalSecs < 1:
		return ErrInvalidKeepalive
	case c.LeaderTimeoutSecs < c.KeepaliveIntervalSecs*3:
		return ErrLeaderTimeoutTooLow
	case c.CommitRevealTimeoutSecs < 1:
		return ErrInvalidCommitRevealTimeout
	case c.VotingTimeoutSecs < 1:
		return ErrInvalidVotingTimeout
	case c.MaxHierarchyDepth < 1:
		return ErrInvalidMaxDepth
	case c.RPCBindAddr == "":
		return ErrMissingRPCBindAddr
	}
	return nil
}
