// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the coordination core's configuration, layering
// command-line flags over environment variables over a configuration file
// over built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix recognized on environment variables.
const EnvPrefix = "OPENSWARM_"

// DefaultRPCPort is the local agent endpoint's default bind port. The
// source documentation for this project names both 9370 and 9390; 9390 is
// the value this implementation declares.
const DefaultRPCPort = 9390

// Default returns the built-in default configuration.
func Default() Config {
	return Config{
		BranchingFactor:         10,
		EpochDurationSecs:       3600,
		KeepaliveIntervalSecs:   10,
		LeaderTimeoutSecs:       30,
		CommitRevealTimeoutSecs: 60,
		VotingTimeoutSecs:       120,
		PowDifficulty:           0,
		MaxHierarchyDepth:       10,
		RPCBindAddr:             fmt.Sprintf("127.0.0.1:%d", DefaultRPCPort),
		ListenAddr:              "0.0.0.0:0",
		BootstrapPeers:          nil,
		MDNSEnabled:             true,
		SwarmID:                 "default",
		AgentName:               "",
		Capabilities:            nil,
		LogLevel:                "info",
		KeyFile:                 "openswarm.key",
	}
}

// Flags carries command-line-flag-sourced overrides. The core never parses
// argv itself;
// a caller's flag package hands the parsed values in here.
type Flags struct {
	Values map[string]string
}

// Load resolves a Config by merging, lowest to highest precedence: built-in
// defaults, an optional YAML file at filePath, environment variables
// prefixed OPENSWARM_, then flags.
func Load(filePath string, environ []string, flags Flags) (Config, error) {
	cfg := Default()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", filePath, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", filePath, err)
		}
	}

	env := parseEnviron(environ)
	applyOverrides(&cfg, env)
	applyOverrides(&cfg, flags.Values)

	if err := cfg.Valid(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseEnviron(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
		out[key] = v
	}
	return out
}

// applyOverrides mutates cfg in place from a flat key/value map whose keys
// match the Config's json tags (e.g. "branching_factor", "swarm_id").
func applyOverrides(cfg *Config, values map[string]string) {
	for key, val := range values {
		switch key {
		case "branching_factor":
			cfg.BranchingFactor = atoiOr(val, cfg.BranchingFactor)
		case "epoch_duration_secs":
			cfg.EpochDurationSecs = atoiOr(val, cfg.EpochDurationSecs)
		case "keepalive_interval_secs":
			cfg.KeepaliveIntervalSecs = atoiOr(val, cfg.KeepaliveIntervalSecs)
		case "leader_timeout_secs":
			cfg.LeaderTimeoutSecs = atoiOr(val, cfg.LeaderTimeoutSecs)
		case "commit_reveal_timeout_secs":
			cfg.CommitRevealTimeoutSecs = atoiOr(val, cfg.CommitRevealTimeoutSecs)
		case "voting_timeout_secs":
			cfg.VotingTimeoutSecs = atoiOr(val, cfg.VotingTimeoutSecs)
		case "pow_difficulty":
			cfg.PowDifficulty = atoiOr(val, cfg.PowDifficulty)
		case "max_hierarchy_depth":
			cfg.MaxHierarchyDepth = atoiOr(val, cfg.MaxHierarchyDepth)
		case "rpc_bind_addr":
			cfg.RPCBindAddr = val
		case "listen_addr":
			cfg.ListenAddr = val
		case "bootstrap_peers":
			cfg.BootstrapPeers = splitNonEmpty(val)
		case "mdns_enabled":
			cfg.MDNSEnabled = val == "true" || val == "1"
		case "swarm_id":
			cfg.SwarmID = val
		case "swarm_token":
			cfg.SwarmToken = val
		case "agent_name":
			cfg.AgentName = val
		case "capabilities":
			cfg.Capabilities = splitNonEmpty(val)
		case "log_level":
			cfg.LogLevel = val
		case "key_file":
			cfg.KeyFile = val
		}
	}
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
