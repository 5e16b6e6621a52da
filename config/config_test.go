// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValid(t *testing.T) {
	require.NoError(t, Default().Valid())
}

func TestLoadPrecedence(t *testing.T) {
	env := []string{EnvPrefix + "SWARM_ID=from-env", EnvPrefix + "BRANCHING_FACTOR=7"}
	flags := Flags{Values: map[string]string{"swarm_id": "from-flag"}}

	cfg, err := Load("", env, flags)
	require.NoError(t, err)
	require.Equal(t, "from-flag", cfg.SwarmID, "flags must win over env")
	require.Equal(t, 7, cfg.BranchingFactor, "env must win over defaults")
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load("/nonexistent/openswarm.yaml", nil, Flags{})
	require.NoError(t, err)
	require.Equal(t, Default().BranchingFactor, cfg.BranchingFactor)
}

func TestValidRejectsLowLeaderTimeout(t *testing.T) {
	cfg := Default()
	cfg.LeaderTimeoutSecs = 5
	require.ErrorIs(t, cfg.Valid(), ErrLeaderTimeoutTooLow)
}
