// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/luxfi/database"
	"github.com/luxfi/swarmcore/swarmerr"
)

// ContentID is the hex-encoded SHA-256 digest of a stored blob, the key
// space the content-addressed store is keyed on.
type ContentID string

func contentIDOf(payload []byte) ContentID {
	sum := sha256.Sum256(payload)
	return ContentID(hex.EncodeToString(sum[:]))
}

// Store is the content-addressed blob store backing task payloads,
// proposals, and results: Put is idempotent and
// content-derived, Get reports a missing blob as a TaskNotFound error,
// and Put calls the optional provide callback to announce local
// availability on the DHT so peers can fetch by ID.
type Store struct {
	db      database.Database
	provide func(id ContentID) error
}

// NewStore wraps a database.Database as a content-addressed store.
// provide is called on every successful Put to announce the blob
// on the DHT; pass nil to disable announcement (e.g. in tests).
func NewStore(db database.Database, provide func(id ContentID) error) *Store {
	return &Store{db: db, provide: provide}
}

// Put stores payload and returns its content ID.
func (s *Store) Put(payload []byte) (ContentID, error) {
	id := contentIDOf(payload)
	if err := s.db.Put([]byte(id), payload); err != nil {
		return "", err
	}
	if s.provide != nil {
		if err := s.provide(id); err != nil {
			return id, err
		}
	}
	return id, nil
}

// Get retrieves the payload for a content ID.
func (s *Store) Get(id ContentID) ([]byte, error) {
	payload, err := s.db.Get([]byte(id))
	if err != nil {
		return nil, swarmerr.New(swarmerr.TaskNotFound, "content not found: "+string(id), nil)
	}
	return payload, nil
}

// Has reports whether id is present locally.
func (s *Store) Has(id ContentID) bool {
	ok, err := s.db.Has([]byte(id))
	return err == nil && ok
}
