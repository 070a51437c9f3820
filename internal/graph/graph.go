package graph

import (
	"fmt"

	"cratevet/internal/cargo"
	"cratevet/internal/crate"
)

// Node is one resolved crate in the dependency graph.
type Node struct {
	// RawID is the reference exactly as the resolve document spells it,
	// e.g. "serde 1.0.90 (registry+https://github.com/rust-lang/crates.io-index)".
	RawID string
	// ID is the canonical identity derived from RawID.
	ID crate.ID
	// Deps holds the raw references of the direct dependencies, in
	// document order.
	Deps []string
}

// DepIDs returns the canonical identities of the direct dependencies.
func (n *Node) DepIDs() []crate.ID {
	ids := make([]crate.ID, len(n.Deps))
	for i, ref := range n.Deps {
		ids[i] = crate.Parse(ref)
	}
	return ids
}

// Graph holds every node of one resolve snapshot plus an identity index.
// Immutable after Build.
type Graph struct {
	nodes []*Node
	index map[crate.ID]*Node
}

// Build constructs the graph and its identity index in one pass.
// When two nodes normalize to the same identity (two versions of one
// crate in a single resolve), the first in document order claims the
// index slot, so lookups behave like a find-first scan of the document.
func Build(res *cargo.Resolve) *Graph {
	g := &Graph{
		nodes: make([]*Node, 0, len(res.Nodes)),
		index: make(map[crate.ID]*Node, len(res.Nodes)),
	}
	for _, rn := range res.Nodes {
		n := &Node{
			RawID: rn.ID,
			ID:    crate.Parse(rn.ID),
			Deps:  rn.Dependencies,
		}
		g.nodes = append(g.nodes, n)
		if _, taken := g.index[n.ID]; !taken {
			g.index[n.ID] = n
		}
	}
	return g
}

// UnknownCrateError reports a lookup for an identity absent from the
// resolve graph. It signals a configuration mistake: a root or allow-set
// entry naming a crate the workspace does not actually depend on.
type UnknownCrateError struct {
	ID crate.ID
}

func (e *UnknownCrateError) Error() string {
	return fmt.Sprintf("crate %q does not exist", string(e.ID))
}

// Find returns the node for the given identity.
func (g *Graph) Find(id crate.ID) (*Node, error) {
	if n, ok := g.index[id]; ok {
		return n, nil
	}
	return nil, &UnknownCrateError{ID: id}
}

// Len reports the number of nodes, duplicate identities included.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns the nodes in document order. Callers must not modify the
// returned slice.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}
