// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package identity

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/luxfi/swarmcore/codec"
	"github.com/luxfi/swarmcore/swarmerr"
)

// ProtocolVersion is the envelope version tag this build speaks.
const ProtocolVersion = "openswarm/1.0.0"

// Envelope is the signed, versioned message wrapper every protocol message
// rides in. Messages partition into three kinds by id presence
// and direction: request/response (id set, a response is expected),
// notification (id unset, pub/sub or fire-and-forget), and local request
// (id may be set, Signature is present but ignored).
type Envelope struct {
	ProtocolVersion string          `json:"protocol_version"`
	Method          string          `json:"method"`
	ID              *string         `json:"id,omitempty"`
	Params          json.RawMessage `json:"params"`
	Signature       []byte          `json:"signature"`
}

// signedPayload is the struct whose canonical JSON the Signature covers.
type signedPayload struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Kind classifies an Envelope.
type Kind int

const (
	KindRequestResponse Kind = iota
	KindNotification
	KindLocal
)

// ClassifyKind returns Envelope's message kind. Local requests are
// distinguished by the caller's transport (loopback RPC vs. network
// stream/pub-sub), not by envelope shape alone, so this only distinguishes
// request/response from notification and never returns KindLocal; the
// local RPC endpoint (package rpc) decodes its own Request type and does
// not build an Envelope.
func (e *Envelope) ClassifyKind() Kind {
	if e.ID != nil {
		return KindRequestResponse
	}
	return KindNotification
}

// Seal builds and signs an Envelope for method/params using id's keypair.
func Seal(id *Identity, method string, params interface{}, requestID *string) (*Envelope, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("identity: marshal params: %w", err)
	}
	payload := signedPayload{Method: method, Params: rawParams}
	canon, err := codec.Canonical(payload)
	if err != nil {
		return nil, fmt.Errorf("identity: canonicalize envelope: %w", err)
	}
	return &Envelope{
		ProtocolVersion: ProtocolVersion,
		Method:          method,
		ID:              requestID,
		Params:          rawParams,
		Signature:       id.Sign(canon),
	}, nil
}

// Verify checks an incoming Envelope's signature, protocol version, and
// epoch freshness. currentEpoch/epochOf extract the epoch from
// the decoded params; epochOf may be nil for envelopes carrying no epoch
// (e.g. local requests), in which case the epoch check is skipped.
func Verify(e *Envelope, senderPub ed25519.PublicKey, currentEpoch uint64, epochOf func(json.RawMessage) (uint64, bool)) error {
	if e.ProtocolVersion != ProtocolVersion {
		return swarmerr.New(swarmerr.InvalidRequest, fmt.Sprintf("incompatible protocol version %q", e.ProtocolVersion), nil)
	}

	payload := signedPayload{Method: e.Method, Params: e.Params}
	canon, err := codec.Canonical(payload)
	if err != nil {
		return swarmerr.New(swarmerr.Parse, "canonicalize envelope for verification", nil)
	}
	if !VerifyWith(senderPub, canon, e.Signature) {
		return swarmerr.New(swarmerr.InvalidSignature, "envelope signature verification failed", nil)
	}

	if epochOf != nil {
		if epoch, ok := epochOf(e.Params); ok {
			if currentEpoch >= 2 && epoch < currentEpoch-2 {
				return swarmerr.New(swarmerr.EpochMismatch, fmt.Sprintf("message epoch %d is more than 2 behind current epoch %d", epoch, currentEpoch), nil)
			}
		}
	}
	return nil
}

// VerifyLocal verifies a local request's shape without checking the
// (ignored) signature field.
func VerifyLocal(e *Envelope) error {
	if e.ProtocolVersion != ProtocolVersion {
		return swarmerr.New(swarmerr.InvalidRequest, fmt.Sprintf("incompatible protocol version %q", e.ProtocolVersion), nil)
	}
	if e.Method == "" {
		return swarmerr.New(swarmerr.InvalidRequest, "missing method", nil)
	}
	return nil
}
