// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/swarmcore/config"
	"github.com/luxfi/swarmcore/facade"
	"github.com/luxfi/swarmcore/identity"
	"github.com/luxfi/swarmcore/state"
	"github.com/luxfi/swarmcore/topic"
	"github.com/luxfi/swarmcore/transport"
)

// fakePubSub is a minimal in-memory transport.PubSub/topic.PubSub
// implementation for exercising the gossip announcement path without a
// real substrate.
type fakePubSub struct {
	mu        sync.Mutex
	published map[string][][]byte
}

func newFakePubSub() *fakePubSub { return &fakePubSub{published: make(map[string][][]byte)} }

func (p *fakePubSub) Subscribe(string, func(payload []byte)) (func(), error) {
	return func() {}, nil
}

func (p *fakePubSub) Publish(t string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published[t] = append(p.published[t], payload)
	return nil
}

func (p *fakePubSub) messages(t string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published[t]
}

var _ transport.PubSub = (*fakePubSub)(nil)

func newTestServer(t *testing.T) (*Server, net.Listener) {
	t.Helper()
	return newTestServerWithRouter(t, nil, "")
}

func newTestServerWithRouter(t *testing.T, router *topic.Router, swarmID string) (*Server, net.Listener) {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)

	f := facade.New(
		log.NewNoOpLogger(),
		config.Default(),
		id,
		state.NewEpochRegister(),
		state.NewTaskRegistry(),
		state.NewAgentRegistry(),
		state.NewStore(memdb.New(), nil),
		state.NewDAG(),
		nil,
		nil,
	)
	s := NewServer(log.NewNoOpLogger(), f, nil, router, swarmID)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.handleConn(ctx, conn)
		}
	}()
	return s, ln
}

func roundTrip(t *testing.T, conn net.Conn, req Request) Response {
	t.Helper()
	req.JSONRPC = "2.0"
	line, err := json.Marshal(req)
	require.NoError(t, err)
	_, err = conn.Write(append(line, '\n'))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	scanner := bufio.NewScanner(conn)
	require.True(t, scanner.Scan())
	var resp Response
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
	return resp
}

func TestInjectAndGetTaskOverRPC(t *testing.T) {
	_, ln := newTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	params, _ := json.Marshal(map[string]string{"description": "do a thing"})
	resp := roundTrip(t, conn, Request{Method: "inject_task", Params: params, ID: json.RawMessage(`1`)})
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	taskID, ok := result["task_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, taskID)

	getParams, _ := json.Marshal(map[string]string{"task_id": taskID})
	resp = roundTrip(t, conn, Request{Method: "get_task", Params: getParams, ID: json.RawMessage(`2`)})
	require.Nil(t, resp.Error)
}

func TestUnknownMethodIsMethodNotFound(t *testing.T) {
	_, ln := newTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	resp := roundTrip(t, conn, Request{Method: "not_a_real_method", ID: json.RawMessage(`1`)})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)
	require.Equal(t, "unknown method: not_a_real_method", resp.Error.Message)
}

func TestGetStatusOverRPC(t *testing.T) {
	_, ln := newTestServer(t)
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	resp := roundTrip(t, conn, Request{Method: "get_status", ID: json.RawMessage(`1`)})
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Result)
}

// TestInjectTaskAnnouncesOnTierChannel checks that an injected task is
// announced on the tier-1 task channel, end to end over the wired
// topic.Router/transport.PubSub substrate.
func TestInjectTaskAnnouncesOnTierChannel(t *testing.T) {
	ps := newFakePubSub()
	router := topic.New(ps, log.NewNoOpLogger())
	_, ln := newTestServerWithRouter(t, router, "swarm-a")
	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	params, _ := json.Marshal(map[string]string{"description": "do a thing"})
	resp := roundTrip(t, conn, Request{Method: "inject_task", Params: params, ID: json.RawMessage(`1`)})
	require.Nil(t, resp.Error)

	full := topic.String("swarm-a", topic.TasksForTier(1))
	require.Len(t, ps.messages(full), 1)

	var got taskAnnouncement
	require.NoError(t, json.Unmarshal(ps.messages(full)[0], &got))
	require.Equal(t, "do a thing", got.Description)
}
