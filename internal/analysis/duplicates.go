package analysis

import (
	"fmt"
	"sort"
	"strings"

	"cratevet/internal/crate"
	"cratevet/internal/graph"
)

// DuplicateGroup is one crate identity resolved at more than one version
// in a single snapshot.
type DuplicateGroup struct {
	Name     crate.ID `json:"name"`
	Versions []string `json:"versions"`
}

// String renders the group as a report line.
func (d DuplicateGroup) String() string {
	return fmt.Sprintf("%s resolved at %d versions: %s", d.Name, len(d.Versions), strings.Join(d.Versions, ", "))
}

// Analyzer runs informational scans over a resolve graph.
type Analyzer struct {
	g *graph.Graph
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(g *graph.Graph) *Analyzer {
	return &Analyzer{g: g}
}

// Duplicates returns the crates present under one identity with more
// than one resolved version, sorted by name with versions ascending.
// A crate pulled from two sources at the same version is not a
// duplicate.
func (a *Analyzer) Duplicates() []DuplicateGroup {
	versions := make(map[crate.ID][]string)
	seen := make(map[crate.ID]map[string]bool)

	for _, node := range a.g.Nodes() {
		v := versionOf(node.RawID)
		if v == "" {
			continue
		}
		if seen[node.ID] == nil {
			seen[node.ID] = make(map[string]bool)
		}
		if seen[node.ID][v] {
			continue
		}
		seen[node.ID][v] = true
		versions[node.ID] = append(versions[node.ID], v)
	}

	var groups []DuplicateGroup
	for id, vs := range versions {
		if len(vs) < 2 {
			continue
		}
		sort.Strings(vs)
		groups = append(groups, DuplicateGroup{Name: id, Versions: vs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// versionOf extracts the version token of a raw reference, the second
// separator-delimited field.
func versionOf(rawID string) string {
	fields := strings.Fields(rawID)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
