// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewSwarmRegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewSwarm(reg)
	require.NoError(t, err)
	require.NotNil(t, s)

	s.ElectionsHeld.Inc()
	s.CRDTMerges.WithLabelValues("tasks").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestNewSwarmRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewSwarm(reg)
	require.NoError(t, err)

	_, err = NewSwarm(reg)
	require.Error(t, err)
}
