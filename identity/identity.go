// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package identity derives deterministic node identity from a signing
// keypair and persists it.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// AgentID is a string "did:swarm:<hex(SHA-256(public_key))>".
// It is immutable per keypair and serves as both overlay identity and
// signing identity.
type AgentID string

// Identity holds a node's Ed25519-equivalent signing keypair and derived
// AgentID. The seed is generated once and persisted; AgentID is a pure
// function of the public key and is never itself stored.
type Identity struct {
	Public  ed25519.PublicKey
	private ed25519.PrivateKey
	ID      AgentID
}

// DeriveAgentID computes the did:swarm:<hex> identifier for a public key.
func DeriveAgentID(pub ed25519.PublicKey) AgentID {
	sum := sha256.Sum256(pub)
	return AgentID("did:swarm:" + hex.EncodeToString(sum[:]))
}

// Sign signs msg with the node's private key.
func (id *Identity) Sign(msg []byte) []byte {
	return ed25519.Sign(id.private, msg)
}

// Verify checks sig over msg against the node's own public key. Useful in
// tests and loopback paths; peer verification uses VerifyWith.
func (id *Identity) Verify(msg, sig []byte) bool {
	return ed25519.Verify(id.Public, msg, sig)
}

// VerifyWith checks sig over msg against an arbitrary public key, as
// recovered from an AgentID-bearing peer record.
func VerifyWith(pub ed25519.PublicKey, msg, sig []byte) bool {
	return ed25519.Verify(pub, msg, sig)
}

// Generate creates a fresh random keypair. Node identity signing is
// single-key Ed25519; see DESIGN.md for why no aggregated-signature
// scheme (BLS, warp signing) fits identity signing better than
// crypto/ed25519.
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate keypair: %w", err)
	}
	return &Identity{Public: pub, private: priv, ID: DeriveAgentID(pub)}, nil
}

// fromSeed reconstructs an Identity from a persisted 32-byte seed.
func fromSeed(seed []byte) (*Identity, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("identity: seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Identity{Public: pub, private: priv, ID: DeriveAgentID(pub)}, nil
}

// LoadOrGenerate loads the 32-byte Ed25519 seed from path, or generates and
// persists a new one with owner-only permissions if absent.
func LoadOrGenerate(path string) (*Identity, error) {
	seed, err := os.ReadFile(path)
	if err == nil {
		return fromSeed(seed)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("identity: read keyfile %s: %w", path, err)
	}

	id, err := Generate()
	if err != nil {
		return nil, err
	}
	seed = id.private.Seed()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("identity: create keyfile dir: %w", err)
		}
	}
	if err := os.WriteFile(path, seed, 0o600); err != nil {
		return nil, fmt.Errorf("identity: write keyfile %s: %w", path, err)
	}
	return id, nil
}
