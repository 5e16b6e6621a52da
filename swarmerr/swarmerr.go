// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package swarmerr defines the coordination core's error-kind taxonomy
// and the structured {code, message, data} shape the local agent
// endpoint returns to callers.
package swarmerr

import "fmt"

// Kind enumerates the protocol error kinds.
type Kind string

const (
	Parse                 Kind = "Parse"
	InvalidRequest        Kind = "InvalidRequest"
	MethodNotFound        Kind = "MethodNotFound"
	InvalidParams         Kind = "InvalidParams"
	InvalidSignature      Kind = "InvalidSignature"
	EpochMismatch         Kind = "EpochMismatch"
	InvalidPoW            Kind = "InvalidPoW"
	InsufficientRep       Kind = "InsufficientReputation"
	SelfVoteProhibited    Kind = "SelfVoteProhibited"
	DuplicateProposal     Kind = "DuplicateProposal"
	CommitRevealMismatch  Kind = "CommitRevealMismatch"
	VotingTimeout         Kind = "VotingTimeout"
	TaskNotFound          Kind = "TaskNotFound"
	ResultRejected        Kind = "ResultRejected"
	DeadlineExceeded      Kind = "DeadlineExceeded"
	PeerUnreachable       Kind = "PeerUnreachable"
	DhtLookupFailed       Kind = "DhtLookupFailed"
)

// code maps each Kind to a JSON-RPC-style numeric code. Parse/InvalidRequest/
// MethodNotFound/InvalidParams use JSON-RPC 2.0's predefined codes; the
// protocol kinds use -32001..-32013, inside the -32000..-32099 band
// JSON-RPC 2.0 leaves for implementation-defined server errors.
var code = map[Kind]int{
	Parse:                -32700,
	InvalidRequest:       -32600,
	MethodNotFound:       -32601,
	InvalidParams:        -32602,
	InvalidSignature:     -32001,
	EpochMismatch:        -32002,
	InvalidPoW:           -32003,
	InsufficientRep:      -32004,
	SelfVoteProhibited:   -32005,
	DuplicateProposal:    -32006,
	CommitRevealMismatch: -32007,
	VotingTimeout:        -32008,
	TaskNotFound:         -32009,
	ResultRejected:       -32010,
	DeadlineExceeded:     -32011,
	PeerUnreachable:      -32012,
	DhtLookupFailed:      -32013,
}

// Error is the structured error returned to agents over the local endpoint:
// a code, a human message, and optional machine-readable data.
type Error struct {
	Kind    Kind   `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error for the given Kind.
func New(kind Kind, message string, data any) *Error {
	return &Error{Kind: kind, Code: code[kind], Message: message, Data: data}
}

// Is reports whether err carries the given Kind, so callers can use
// errors.Is-style checks without importing the errors package's wrapping.
func Is(err error, kind Kind) bool {
	se, ok := err.(*Error)
	return ok && se.Kind == kind
}
