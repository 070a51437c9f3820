package manifest

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/toml"
)

// Manifest is the subset of a Cargo.toml the tool cares about.
type Manifest struct {
	Name              string   `json:"name"`
	Version           string   `json:"version,omitempty"`
	Edition           string   `json:"edition,omitempty"`
	License           string   `json:"license,omitempty"`
	LicenseFile       string   `json:"license_file,omitempty"`
	Description       string   `json:"description,omitempty"`
	Dependencies      []string `json:"dependencies,omitempty"`
	DevDependencies   []string `json:"dev_dependencies,omitempty"`
	BuildDependencies []string `json:"build_dependencies,omitempty"`
}

// The query matches every key/value pair plus the table headers, so
// both `serde = "1.0"` and `[dependencies.serde]` forms are seen.
const manifestQuery = `
(table) @table
(table_array_element) @table
(pair) @pair
`

// Parse extracts manifest fields from Cargo.toml source. This is the
// structured view behind the inventory surface; the license check works
// on raw manifest lines on purpose and never calls it.
func Parse(src []byte) (*Manifest, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(toml.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	query, err := sitter.NewQuery([]byte(manifestQuery), toml.GetLanguage())
	if err != nil {
		return nil, fmt.Errorf("build manifest query: %w", err)
	}

	qc := sitter.NewQueryCursor()
	qc.Exec(query, tree.RootNode())

	m := &Manifest{}
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			switch query.CaptureNameForId(c.Index) {
			case "table":
				m.addTable(c.Node, src)
			case "pair":
				m.addPair(c.Node, src)
			}
		}
	}

	return m, nil
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// addTable records dependencies declared in table form, e.g.
// [dependencies.serde].
// TODO: target-specific tables ([target.*.dependencies]) are not
// collected yet.
func (m *Manifest) addTable(table *sitter.Node, src []byte) {
	key := tableKey(table, src)
	for _, section := range []struct {
		prefix string
		into   *[]string
	}{
		{"dependencies.", &m.Dependencies},
		{"dev-dependencies.", &m.DevDependencies},
		{"build-dependencies.", &m.BuildDependencies},
	} {
		if strings.HasPrefix(key, section.prefix) {
			*section.into = append(*section.into, key[len(section.prefix):])
			return
		}
	}
}

func (m *Manifest) addPair(pair *sitter.Node, src []byte) {
	key, value := splitPair(pair, src)
	if key == "" {
		return
	}

	section, inline := enclosingSection(pair, src)
	if inline {
		// Pairs inside inline tables describe a dependency, they do
		// not declare one.
		return
	}
	if section == "" {
		// Top-level dotted keys like `package.name = "x"`.
		if dot := strings.Index(key, "."); dot >= 0 {
			section, key = key[:dot], key[dot+1:]
		}
	}

	switch section {
	case "package":
		switch key {
		case "name":
			m.Name = value
		case "version":
			m.Version = value
		case "edition":
			m.Edition = value
		case "license":
			m.License = value
		case "license-file":
			m.LicenseFile = value
		case "description":
			m.Description = value
		}
	case "dependencies":
		m.Dependencies = append(m.Dependencies, key)
	case "dev-dependencies":
		m.DevDependencies = append(m.DevDependencies, key)
	case "build-dependencies":
		m.BuildDependencies = append(m.BuildDependencies, key)
	}
}

// splitPair returns the key and value text of a pair node. The key is
// the first named child, the value the last; string values come back
// unquoted.
func splitPair(pair *sitter.Node, src []byte) (string, string) {
	count := int(pair.NamedChildCount())
	if count == 0 {
		return "", ""
	}

	keyNode := pair.NamedChild(0)
	key := unquote(keyNode.Content(src))

	value := ""
	if count > 1 {
		valueNode := pair.NamedChild(count - 1)
		value = valueNode.Content(src)
		if valueNode.Type() == "string" {
			value = unquote(value)
		}
	}
	return key, value
}

// enclosingSection walks up from a pair to the table that owns it.
// Pairs nested in an inline table are flagged instead so callers can
// skip them.
func enclosingSection(pair *sitter.Node, src []byte) (string, bool) {
	for p := pair.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "inline_table":
			return "", true
		case "table", "table_array_element":
			return tableKey(p, src), false
		}
	}
	return "", false
}

func tableKey(table *sitter.Node, src []byte) string {
	for i := 0; i < int(table.NamedChildCount()); i++ {
		child := table.NamedChild(i)
		switch child.Type() {
		case "bare_key", "quoted_key", "dotted_key":
			return unquote(child.Content(src))
		}
	}
	return ""
}

func unquote(s string) string {
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if len(s) >= 2*len(q) && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
