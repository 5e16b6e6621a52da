// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"time"

	"github.com/luxfi/log"
)

// Exchanger is what the anti-entropy scheduler needs from the transport
// layer: publish a delta on the keepalive channel, and publish a full
// snapshot on the swarm_announce channel.
type Exchanger interface {
	PublishDelta(payload []byte) error
	PublishFullState(payload []byte) error
}

// Encoder produces the wire payloads anti-entropy piggybacks: a small
// delta for the frequent keepalive cadence and a full snapshot for the
// periodic reconciliation pass.
type Encoder interface {
	EncodeDelta() ([]byte, error)
	EncodeFullState() ([]byte, error)
}

// AntiEntropy runs the two scheduled replication passes: a delta
// piggybacked on every keepalive tick (cheap, frequent)
// and a full-state exchange at a much coarser interval (expensive,
// infrequent, converges stragglers that missed deltas).
type AntiEntropy struct {
	log        log.Logger
	enc        Encoder
	ex         Exchanger
	deltaEvery time.Duration
	fullEvery  time.Duration
}

// NewAntiEntropy constructs a scheduler. deltaEvery defaults to the
// 10s keepalive interval and fullEvery to the 60s full reconciliation
// interval when the caller passes 0.
func NewAntiEntropy(logger log.Logger, enc Encoder, ex Exchanger, deltaEvery, fullEvery time.Duration) *AntiEntropy {
	if deltaEvery <= 0 {
		deltaEvery = 10 * time.Second
	}
	if fullEvery <= 0 {
		fullEvery = 60 * time.Second
	}
	return &AntiEntropy{log: logger, enc: enc, ex: ex, deltaEvery: deltaEvery, fullEvery: fullEvery}
}

// Run drives both tickers until ctx is cancelled.
func (a *AntiEntropy) Run(ctx context.Context) {
	deltaTicker := time.NewTicker(a.deltaEvery)
	fullTicker := time.NewTicker(a.fullEvery)
	defer deltaTicker.Stop()
	defer fullTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deltaTicker.C:
			a.sendDelta()
		case <-fullTicker.C:
			a.sendFullState()
		}
	}
}

func (a *AntiEntropy) sendDelta() {
	payload, err := a.enc.EncodeDelta()
	if err != nil {
		a.log.Warn("anti-entropy: encode delta failed", "error", err)
		return
	}
	if err := a.ex.PublishDelta(payload); err != nil {
		a.log.Warn("anti-entropy: publish delta failed", "error", err)
	}
}

func (a *AntiEntropy) sendFullState() {
	payload, err := a.enc.EncodeFullState()
	if err != nil {
		a.log.Warn("anti-entropy: encode full state failed", "error", err)
		return
	}
	if err := a.ex.PublishFullState(payload); err != nil {
		a.log.Warn("anti-entropy: publish full state failed", "error", err)
	}
}
