package render

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"cratevet/internal/crate"
	"cratevet/internal/graph"
)

type diagramEdge struct {
	from crate.ID
	to   crate.ID
}

// Mermaid renders the dependency subgraph reachable from roots as a
// fenced mermaid flowchart, ready to paste into markdown. Crates
// outside allow get a violation style. Nodes and edges are emitted in
// sorted order, so identical inputs yield identical diagrams.
func Mermaid(w io.Writer, g *graph.Graph, roots []crate.ID, allow crate.Set) error {
	ids, edges, err := reachable(g, roots)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph TD\n")

	flagged := false
	for _, id := range ids {
		if allow.Has(id) {
			sb.WriteString(fmt.Sprintf("    %s[%q]\n", sanitizeID(string(id)), string(id)))
		} else {
			sb.WriteString(fmt.Sprintf("    %s[%q]:::violation\n", sanitizeID(string(id)), string(id)))
			flagged = true
		}
	}
	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeID(string(e.from)), sanitizeID(string(e.to))))
	}
	if flagged {
		sb.WriteString("    classDef violation stroke:#d33,stroke-width:2px\n")
	}
	sb.WriteString("```\n")

	_, err = io.WriteString(w, sb.String())
	return err
}

// reachable collects the identities and unique edges reachable from the
// roots. An unknown identity aborts, same as the whitelist walk.
func reachable(g *graph.Graph, roots []crate.ID) ([]crate.ID, []diagramEdge, error) {
	visited := make(map[crate.ID]bool)
	edgeSet := make(map[diagramEdge]bool)

	var walk func(id crate.ID) error
	walk = func(id crate.ID) error {
		if visited[id] {
			return nil
		}
		visited[id] = true

		node, err := g.Find(id)
		if err != nil {
			return err
		}
		for _, dep := range node.DepIDs() {
			edgeSet[diagramEdge{from: id, to: dep}] = true
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root); err != nil {
			return nil, nil, err
		}
	}

	ids := make([]crate.ID, 0, len(visited))
	for id := range visited {
		ids = append(ids, id)
	}
	crate.SortIDs(ids)

	edges := make([]diagramEdge, 0, len(edgeSet))
	for e := range edgeSet {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from == edges[j].from {
			return edges[i].to < edges[j].to
		}
		return edges[i].from < edges[j].from
	})

	return ids, edges, nil
}

var nonIDChars = regexp.MustCompile(`[^a-z0-9_]`)

func sanitizeID(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	v = nonIDChars.ReplaceAllString(strings.ReplaceAll(v, "-", "_"), "_")
	if v == "" {
		return "node"
	}
	if v[0] >= '0' && v[0] <= '9' {
		v = "n_" + v
	}
	return v
}
