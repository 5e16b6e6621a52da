// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command swarmd is the coordination core's process entrypoint: it
// loads configuration, loads or generates
// the node's persistent identity, wires the Replicated State Layer,
// Hierarchy Manager, Consensus Engine, and Coordinator Facade together,
// and serves the local agent endpoint. CLI argument parsing proper is an
// external collaborator; this entrypoint only recognizes the
// two flags needed to locate config and key material before config.Load
// takes over precedence resolution.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/swarmcore/config"
	"github.com/luxfi/swarmcore/facade"
	"github.com/luxfi/swarmcore/hierarchy"
	"github.com/luxfi/swarmcore/identity"
	"github.com/luxfi/swarmcore/metrics"
	"github.com/luxfi/swarmcore/rpc"
	"github.com/luxfi/swarmcore/state"
	"github.com/luxfi/swarmcore/topic"
	"github.com/luxfi/swarmcore/transport"
)

// Exit codes.
const (
	exitOK               = 0
	exitConfigError      = 1
	exitKeypairIOError   = 2
	exitTransportBindErr = 3
)

func main() {
	os.Exit(run())
}

// parseLogLevel maps the config's log_level string onto the
// log.Level the luxfi/log sink expects, defaulting unrecognized values to
// Info rather than rejecting them outright.
func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func run() int {
	configFile := flag.String("config", "", "path to an OPENSWARM YAML configuration file")
	keyFile := flag.String("key-file", "", "path to the persistent identity seed file (overrides config key_file)")
	flag.Parse()

	cfg, err := config.Load(*configFile, os.Environ(), config.Flags{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "swarmd: configuration error: %v\n", err)
		return exitConfigError
	}
	if *keyFile != "" {
		cfg.KeyFile = *keyFile
	}

	logger := log.New("component", "swarmd").Level(parseLogLevel(cfg.LogLevel))

	id, err := identity.LoadOrGenerate(cfg.KeyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swarmd: keypair error: %v\n", err)
		return exitKeypairIOError
	}
	logger.Info("swarmd: identity ready", "agent_id", string(id.ID))

	epoch := state.NewEpochRegister()
	tasks := state.NewTaskRegistry()
	agents := state.NewAgentRegistry()
	store := state.NewStore(memdb.New(), nil)
	dag := state.NewDAG()
	estimator := hierarchy.NewSwarmSizeEstimator(cfg.BranchingFactor)

	met, err := metrics.NewSwarm(prometheus.NewRegistry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "swarmd: metrics registration error: %v\n", err)
		return exitConfigError
	}

	f := facade.New(logger, cfg, id, epoch, tasks, agents, store, dag, nil, met)

	// This entrypoint binds no gossip substrate, whether or not
	// cfg.BootstrapPeers is set (single-node mode, the same stance taken
	// for the nil transport.StreamDialer above): Publish/Subscribe are
	// no-ops and no p2p.Sender is attached.
	ps := &transport.SenderPubSub{
		SubscribeFunc: func(string, func([]byte)) (func(), error) { return func() {}, nil },
		PublishFunc:   func(string, []byte) error { return nil },
	}
	router := topic.New(ps, logger)
	server := rpc.NewServer(logger, f, estimator, router, cfg.SwarmID)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("swarmd: shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(ctx, "tcp", cfg.RPCBindAddr) }()

	select {
	case <-ctx.Done():
		server.Close()
		return exitOK
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "swarmd: rpc bind failed: %v\n", err)
			return exitTransportBindErr
		}
		return exitOK
	}
}
