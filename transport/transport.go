// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport declares the substrate interfaces the coordination
// core runs over: gossip pub/sub, a DHT for peer and content discovery,
// and raw peer streams. The substrate itself is out of scope —
// this package only fixes the contract. facade.Connect dials through
// StreamDialer, and topic.Router declares its own PubSub interface of the
// same shape as PubSub here; DHT has no caller in this module.
package transport

import "context"

// PeerID identifies a participant on the substrate. Swarm-level identity
// (identity.AgentID) is a layer above this and is not required to equal
// PeerID, though a production binding will typically derive one from the
// other.
type PeerID string

// PubSub is the gossip publish/subscribe substrate. topic.Router is the
// sole consumer inside this module.
type PubSub interface {
	Subscribe(topic string, deliver func(payload []byte)) (cancel func(), err error)
	Publish(topic string, payload []byte) error
}

// DHT is the distributed hash table used for swarm-size sampling,
// content provide/lookup, and peer discovery.
type DHT interface {
	FindPeers(ctx context.Context, swarmID string, limit int) ([]PeerID, error)
	Provide(ctx context.Context, key string) error
	FindProviders(ctx context.Context, key string, limit int) ([]PeerID, error)
}

// Stream is a direct, ordered byte-stream to a single peer, used for
// point-to-point RPCs the gossip layer shouldn't carry (e.g. large result
// payload transfer ahead of a Merkle proof).
type Stream interface {
	Peer() PeerID
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error
}

// StreamDialer opens a Stream to a peer.
type StreamDialer interface {
	Dial(ctx context.Context, peer PeerID) (Stream, error)
}
