// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import "github.com/luxfi/p2p"

// Sender is an alias for p2p.Sender, the concrete gossip/request-response
// primitive github.com/luxfi/p2p hands a running node. cmd/swarmd builds a
// SenderPubSub with a nil Sender and no-op funcs, and binds no DHT; everything above
// this package talks only to the PubSub/DHT interfaces so the binding can
// be swapped without touching topic, state, hierarchy, or consensus.
type Sender = p2p.Sender

// SenderPubSub adapts a p2p.Sender into the PubSub contract gossip
// channels need. publish/subscribe are supplied by the embedding wiring
// through SubscribeFunc/PublishFunc (cmd/swarmd supplies no-ops); this
// type only carries the adaptation shape so call sites stay decoupled
// from the p2p package.
type SenderPubSub struct {
	Sender Sender

	SubscribeFunc func(topic string, deliver func(payload []byte)) (func(), error)
	PublishFunc   func(topic string, payload []byte) error
}

func (s *SenderPubSub) Subscribe(topic string, deliver func(payload []byte)) (func(), error) {
	return s.SubscribeFunc(topic, deliver)
}

func (s *SenderPubSub) Publish(topic string, payload []byte) error {
	return s.PublishFunc(topic, payload)
}
