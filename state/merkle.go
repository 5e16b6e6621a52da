// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"crypto/sha256"
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/swarmcore/swarmerr"
)

// NodeID identifies a node in the Merkle-DAG by its content hash.
type NodeID = ids.ID

// A leaf's hash is the content hash itself, so it equals the content
// store's content_cid; a parent hashes its children's hashes in index
// order with no separating byte.
func leafHash(payload []byte) NodeID {
	return NodeID(sha256.Sum256(payload))
}

func parentHash(children ...NodeID) NodeID {
	h := sha256.New()
	for _, c := range children {
		h.Write(c[:])
	}
	var id NodeID
	copy(id[:], h.Sum(nil))
	return id
}

// node is one vertex of the DAG: a leaf carries a payload, an internal
// node carries the ordered list of child IDs it was hashed over.
type node struct {
	id       NodeID
	payload  []byte   // nil for internal nodes
	children []NodeID // nil for leaves
}

// DAG is a content-addressed Merkle-DAG used to anchor task results and
// to produce inclusion proofs a requester can verify without trusting the
// executing node. Result
// aggregation forms a tree (each node has exactly one parent), which
// keeps proof construction a linear walk rather than a graph search.
type DAG struct {
	mu       sync.RWMutex
	nodes    map[NodeID]*node
	tips     map[NodeID]struct{}
	parentOf map[NodeID]NodeID
}

// NewDAG constructs an empty Merkle-DAG.
func NewDAG() *DAG {
	return &DAG{
		nodes:    make(map[NodeID]*node),
		tips:     make(map[NodeID]struct{}),
		parentOf: make(map[NodeID]NodeID),
	}
}

// AddLeaf inserts a payload as a new leaf and returns its content ID.
func (d *DAG) AddLeaf(payload []byte) NodeID {
	id := leafHash(payload)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.nodes[id]; !exists {
		d.nodes[id] = &node{id: id, payload: append([]byte(nil), payload...)}
		d.tips[id] = struct{}{}
	}
	return id
}

// AddParent hashes children together into a new internal node, linking
// the DAG upward. children must already exist in the DAG.
func (d *DAG) AddParent(children ...NodeID) (NodeID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range children {
		if _, ok := d.nodes[c]; !ok {
			return NodeID{}, swarmerr.New(swarmerr.ResultRejected, "unknown child node in merkle dag", nil)
		}
	}
	id := parentHash(children...)
	if _, exists := d.nodes[id]; !exists {
		d.nodes[id] = &node{id: id, children: append([]NodeID(nil), children...)}
	}
	for _, c := range children {
		delete(d.tips, c)
		d.parentOf[c] = id
	}
	d.tips[id] = struct{}{}
	return id, nil
}

// Get returns the payload of a leaf node.
func (d *DAG) Get(id NodeID) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nodes[id]
	if !ok || n.payload == nil {
		return nil, false
	}
	return n.payload, true
}

// Tips returns the current frontier of the DAG (nodes with no parent).
func (d *DAG) Tips() []NodeID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]NodeID, 0, len(d.tips))
	for t := range d.tips {
		out = append(out, t)
	}
	return out
}

// ProofStep is one level of ancestry: the full ordered child set the
// verifier must re-hash to obtain the next node up the chain (the DAG is
// an arbitrary fan-in tree, not fixed-arity, so a sibling list alone
// would not be enough to recompute parentHash).
type ProofStep struct {
	Children []NodeID
}

// Proof is an inclusion proof: the ordered steps from a leaf up to a
// designated root, sufficient for a verifier holding only the root and
// the leaf payload to recompute the chain and confirm membership.
type Proof struct {
	Leaf  NodeID
	Steps []ProofStep
	Root  NodeID
}

// Prove walks up from leaf to root via the recorded single-parent links
// and records, at each step, the full child set of the ancestor.
func (d *DAG) Prove(leaf, root NodeID) (*Proof, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.nodes[leaf]; !ok {
		return nil, swarmerr.New(swarmerr.ResultRejected, "unknown leaf", nil)
	}
	if _, ok := d.nodes[root]; !ok {
		return nil, swarmerr.New(swarmerr.ResultRejected, "unknown root", nil)
	}

	if leaf == root {
		return &Proof{Leaf: leaf, Root: root}, nil
	}

	var steps []ProofStep
	cur := leaf
	for cur != root {
		parent, ok := d.parentOf[cur]
		if !ok {
			return nil, swarmerr.New(swarmerr.ResultRejected, "leaf is not an ancestor of root", nil)
		}
		steps = append(steps, ProofStep{Children: d.nodes[parent].children})
		cur = parent
	}
	return &Proof{Leaf: leaf, Steps: steps, Root: root}, nil
}

// VerifyProof recomputes the hash chain implied by p and checks it
// terminates at p.Root, without access to the DAG itself — the check a
// requester performs on a task.verification payload.
func VerifyProof(p *Proof) bool {
	if p.Leaf == p.Root && len(p.Steps) == 0 {
		return true
	}
	cur := p.Leaf
	for _, step := range p.Steps {
		found := false
		for _, c := range step.Children {
			if c == cur {
				found = true
				break
			}
		}
		if !found {
			return false
		}
		cur = parentHash(step.Children...)
	}
	return cur == p.Root
}
