package whitelist

import (
	"cratevet/internal/crate"
	"cratevet/internal/graph"
)

// Resolver looks up a crate's node in a resolve graph. *graph.Graph
// satisfies it; tests substitute counting implementations to observe
// traversal behavior.
type Resolver interface {
	Find(id crate.ID) (*graph.Node, error)
}

// Check walks the dependency graph from every root and returns the
// crates reachable from any root that are missing from allow, sorted
// ascending by name. The visited set is shared across roots, so each
// node's edge list is expanded at most once per call no matter how many
// roots reach it. An identity that cannot be resolved aborts the whole
// check: the policy names a crate the graph does not contain, and a
// silently skipped root would hide every violation below it.
func Check(roots []crate.ID, deps Resolver, allow crate.Set) ([]crate.ID, error) {
	visited := make(map[crate.ID]bool)
	violations := make(crate.Set)

	for _, root := range roots {
		if err := expand(root, deps, allow, visited, violations); err != nil {
			return nil, err
		}
	}

	return violations.Sorted(), nil
}

// expand is the memoized depth-first walk. The id is marked visited
// before its edges are touched, which keeps the walk finite even if the
// input turns out not to be a DAG.
func expand(id crate.ID, deps Resolver, allow crate.Set, visited map[crate.ID]bool, violations crate.Set) error {
	if visited[id] {
		return nil
	}
	visited[id] = true

	if !allow.Has(id) {
		violations.Add(id)
	}

	node, err := deps.Find(id)
	if err != nil {
		return err
	}

	for _, ref := range node.Deps {
		if err := expand(crate.Parse(ref), deps, allow, visited, violations); err != nil {
			return err
		}
	}

	return nil
}
