// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rpc implements the local agent endpoint: a line-oriented
// JSON-RPC 2.0 server over a loopback TCP and/or Unix domain socket
// stream, exposing facade.Facade's operations by method name. The
// signature field an envelope would otherwise carry is present on the
// wire but ignored — this package never verifies it.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"sync"

	"github.com/luxfi/log"

	"github.com/luxfi/swarmcore/facade"
	"github.com/luxfi/swarmcore/hierarchy"
	"github.com/luxfi/swarmcore/swarmerr"
	"github.com/luxfi/swarmcore/topic"
	"github.com/luxfi/swarmcore/transport"
)

// Request is one JSON-RPC 2.0 request line.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	// Signature rides along on every envelope but is never checked for
	// local requests.
	Signature json.RawMessage `json:"signature,omitempty"`
}

// Response is one JSON-RPC 2.0 response line.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *swarmerr.Error `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Server binds facade.Facade operations to the local JSON-RPC endpoint.
// One Server handles arbitrarily many concurrent connections; each
// connection processes its requests sequentially and is reusable across
// many request/response pairs.
type Server struct {
	log       log.Logger
	facade    *facade.Facade
	estimator *hierarchy.SwarmSizeEstimator
	router    *topic.Router // nil disables gossip announcement, e.g. in unit tests
	swarmID   string

	mu        sync.Mutex
	listeners []net.Listener
}

// NewServer constructs a Server over an already-wired Facade. estimator
// may be nil, in which case hierarchy_depth reports 0 in get_hierarchy
// and get_network_stats. router may be nil, in which case inject_task
// records the task locally but does not announce it on the tier's task
// channel.
func NewServer(logger log.Logger, f *facade.Facade, estimator *hierarchy.SwarmSizeEstimator, router *topic.Router, swarmID string) *Server {
	return &Server{log: logger, facade: f, estimator: estimator, router: router, swarmID: swarmID}
}

// taskAnnouncement is the payload gossiped on `tasks/tier<N>` when a task
// is injected.
type taskAnnouncement struct {
	TaskID      string `json:"task_id"`
	Description string `json:"description"`
	Epoch       uint64 `json:"epoch"`
}

func (s *Server) announceTask(result facade.InjectTaskResult) {
	if s.router == nil {
		return
	}
	tier := s.facade.GetStatus().Tier
	payload, err := json.Marshal(taskAnnouncement{TaskID: result.TaskID, Description: result.Description, Epoch: result.Epoch})
	if err != nil {
		s.log.Warn("rpc: marshal task announcement failed", "error", err)
		return
	}
	if err := s.router.Publish(s.swarmID, topic.TasksForTier(tier), payload); err != nil {
		s.log.Warn("rpc: task announcement publish failed", "error", err)
	}
}

// Serve accepts connections on network ("tcp" or "unix") at addr until
// ctx is cancelled or the listener errors. Multiple calls may be made
// with different networks to bind both a TCP and a Unix socket listener
// simultaneously.
func (s *Server) Serve(ctx context.Context, network, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, network, addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handleConn(ctx, conn)
	}
}

// Close closes every listener Serve has opened.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			_ = enc.Encode(Response{JSONRPC: "2.0", Error: swarmerr.New(swarmerr.Parse, "invalid JSON-RPC request: "+err.Error(), nil)})
			continue
		}
		resp := s.dispatch(ctx, req)
		if err := enc.Encode(resp); err != nil {
			s.log.Warn("rpc: write response failed", "error", err)
			return
		}
	}
}

// dispatch routes one decoded Request to the matching facade operation
// and shapes its result or error into a Response.
func (s *Server) dispatch(ctx context.Context, req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}

	result, err := s.invoke(ctx, req.Method, req.Params)
	if err != nil {
		se, ok := err.(*swarmerr.Error)
		if !ok {
			se = swarmerr.New(swarmerr.InvalidRequest, err.Error(), nil)
		}
		resp.Error = se
		return resp
	}
	resp.Result = result
	return resp
}

func (s *Server) invoke(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "get_status":
		return s.facade.GetStatus(), nil
	case "get_network_stats":
		return s.facade.GetNetworkStats(s.estimator), nil
	case "get_hierarchy":
		return s.facade.GetHierarchy(s.estimator), nil
	case "receive_task":
		return s.facade.ReceiveTask(), nil
	case "get_task":
		var p struct {
			TaskID string `json:"task_id"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return s.facade.GetTask(p.TaskID)
	case "inject_task":
		var p struct {
			Description string `json:"description"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		result := s.facade.InjectTask(p.Description)
		s.announceTask(result)
		return result, nil
	case "propose_plan":
		var p facade.ProposePlanParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return s.facade.ProposePlan(p)
	case "submit_result":
		var p facade.SubmitResultParams
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return s.facade.SubmitResult(p)
	case "connect":
		var p struct {
			Addr string `json:"addr"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return s.facade.Connect(ctx, transport.PeerID(p.Addr))
	case "list_swarm":
		return s.facade.ListSwarms(), nil
	case "create_swarm":
		var p struct {
			Token string `json:"token"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return s.facade.CreateSwarm(p.Token), nil
	case "join_swarm":
		var p struct {
			SwarmID string `json:"swarm_id"`
			Token   string `json:"token"`
		}
		if err := unmarshalParams(params, &p); err != nil {
			return nil, err
		}
		return s.facade.JoinSwarm(p.SwarmID, p.Token)
	default:
		return nil, swarmerr.New(swarmerr.MethodNotFound, "unknown method: "+method, map[string]string{"method": method})
	}
}

func unmarshalParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return swarmerr.New(swarmerr.InvalidParams, "invalid params: "+err.Error(), nil)
	}
	return nil
}
