// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package topic

import (
	"sync"
	"testing"

	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"
)

type memPubSub struct {
	mu     sync.Mutex
	subs   map[string][]func([]byte)
	subCnt int
}

func newMemPubSub() *memPubSub { return &memPubSub{subs: make(map[string][]func([]byte))} }

func (m *memPubSub) Subscribe(topic string, deliver func(payload []byte)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subCnt++
	m.subs[topic] = append(m.subs[topic], deliver)
	idx := len(m.subs[topic]) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.subs[topic][idx] = nil
	}, nil
}

func (m *memPubSub) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.subs[topic] {
		if d != nil {
			d(payload)
		}
	}
	return nil
}

func TestRouterRefcountsSubscriptions(t *testing.T) {
	ps := newMemPubSub()
	r := New(ps, log.NewNoOpLogger())

	var gotA, gotB int
	unsubA, err := r.Subscribe("swarm-1", Keepalive, func(string, Channel, Envelope) { gotA++ })
	require.NoError(t, err)
	unsubB, err := r.Subscribe("swarm-1", Keepalive, func(string, Channel, Envelope) { gotB++ })
	require.NoError(t, err)

	require.Equal(t, 1, ps.subCnt, "second subscriber on the same topic must not re-subscribe upstream")

	require.NoError(t, r.Publish("swarm-1", Keepalive, []byte("ping")))
	require.Equal(t, 1, gotA)
	require.Equal(t, 1, gotB)

	unsubA()
	require.NoError(t, r.Publish("swarm-1", Keepalive, []byte("ping")))
	require.Equal(t, 1, gotA, "unsubscribed handler must not be invoked again")
	require.Equal(t, 2, gotB)

	unsubB()
	_, exists := r.subs[String("swarm-1", Keepalive)]
	require.False(t, exists, "topic entry must be torn down once last handle releases")
}

func TestTopicStringNamespacesBySwarm(t *testing.T) {
	require.Equal(t, "/openswarm/1.0.0/s/s1/keepalive", String("s1", Keepalive))
	require.NotEqual(t, String("s1", Keepalive), String("s2", Keepalive))
}
