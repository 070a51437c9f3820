package render

import (
	"bytes"
	"strings"
	"testing"

	"cratevet/internal/cargo"
	"cratevet/internal/crate"
	"cratevet/internal/graph"
	"cratevet/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormat(t *testing.T) {
	var r report.Report
	r.Add(report.CheckResult{Name: report.LicenseCheck, Findings: []report.Finding{
		{Check: report.LicenseCheck, Path: "vendor/readline/Cargo.toml", Detail: "invalid license GPL-2.0 in vendor/readline/Cargo.toml"},
		{Check: report.LicenseCheck, Path: "vendor/mystery/Cargo.toml", Detail: "no license in vendor/mystery/Cargo.toml"},
	}})
	r.Add(report.CheckResult{Name: report.WhitelistCheck, Findings: []report.Finding{
		{Check: report.WhitelistCheck, Crate: "rand"},
		{Check: report.WhitelistCheck, Crate: "readline"},
	}})
	r.Finalize()

	var buf bytes.Buffer
	Text(&buf, &r)

	want := "invalid license GPL-2.0 in vendor/readline/Cargo.toml\n" +
		"no license in vendor/mystery/Cargo.toml\n" +
		"Dependencies not on the whitelist:\n" +
		"* rand \n" +
		"* readline \n"
	assert.Equal(t, want, buf.String())
}

func TestTextSilentWhenClean(t *testing.T) {
	var r report.Report
	r.Add(report.CheckResult{Name: report.LicenseCheck, Checked: 40})
	r.Add(report.CheckResult{Name: report.WhitelistCheck, Skipped: true, SkipReason: "no roots configured"})
	r.Finalize()

	var buf bytes.Buffer
	Text(&buf, &r)
	assert.Empty(t, buf.String())
}

func TestTextDuplicateSection(t *testing.T) {
	var r report.Report
	r.Add(report.CheckResult{Name: report.DuplicateCheck, Advisory: true, Findings: []report.Finding{
		{Check: report.DuplicateCheck, Crate: "rand", Detail: "rand resolved at 2 versions: 0.6.5, 0.7.0"},
	}})
	r.Finalize()

	var buf bytes.Buffer
	Text(&buf, &r)
	assert.Equal(t, "Crates resolved at more than one version:\n* rand resolved at 2 versions: 0.6.5, 0.7.0\n", buf.String())
}

func TestJSONDeterministic(t *testing.T) {
	var r report.Report
	r.Add(report.CheckResult{Name: report.LicenseCheck, Checked: 3, Findings: []report.Finding{
		{Check: report.LicenseCheck, Path: "vendor/x/Cargo.toml", Detail: "no license in vendor/x/Cargo.toml"},
	}})
	r.Finalize()

	var first, second bytes.Buffer
	require.NoError(t, JSON(&first, &r))
	require.NoError(t, JSON(&second, &r))

	assert.Equal(t, first.String(), second.String())
	assert.True(t, strings.HasSuffix(first.String(), "\n"))
	assert.Contains(t, first.String(), `"check_count": 1`)
	assert.Contains(t, first.String(), `"finding_count": 1`)
}

func TestMermaid(t *testing.T) {
	g := graph.Build(&cargo.Resolve{Nodes: []cargo.ResolveNode{
		{ID: "app 0.1.0", Dependencies: []string{"log 0.4.6", "rand 0.6.5"}},
		{ID: "log 0.4.6"},
		{ID: "rand 0.6.5"},
	}})

	var buf bytes.Buffer
	err := Mermaid(&buf, g, []crate.ID{"app"}, crate.NewSet("app", "log"))
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "```mermaid\ngraph TD\n"))
	assert.Contains(t, out, `app["app"]`)
	assert.Contains(t, out, `log["log"]`)
	assert.Contains(t, out, `rand["rand"]:::violation`)
	assert.Contains(t, out, "app --> log")
	assert.Contains(t, out, "app --> rand")
	assert.Contains(t, out, "classDef violation")

	// Declarations come before edges.
	assert.Less(t, strings.Index(out, `app["app"]`), strings.Index(out, "app --> log"))
}

func TestMermaidDeterministic(t *testing.T) {
	g := graph.Build(&cargo.Resolve{Nodes: []cargo.ResolveNode{
		{ID: "a 1.0.0", Dependencies: []string{"c 1.0.0", "b 1.0.0"}},
		{ID: "b 1.0.0", Dependencies: []string{"c 1.0.0"}},
		{ID: "c 1.0.0"},
	}})
	allow := crate.NewSet("a", "b", "c")

	var first, second bytes.Buffer
	require.NoError(t, Mermaid(&first, g, []crate.ID{"a"}, allow))
	require.NoError(t, Mermaid(&second, g, []crate.ID{"a"}, allow))
	assert.Equal(t, first.String(), second.String())
}

func TestMermaidUnknownRoot(t *testing.T) {
	g := graph.Build(&cargo.Resolve{})

	err := Mermaid(&bytes.Buffer{}, g, []crate.ID{"ghost"}, crate.NewSet())
	require.Error(t, err)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "serde_derive", sanitizeID("serde_derive"))
	assert.Equal(t, "openssl_sys", sanitizeID("openssl-sys"))
	assert.Equal(t, "n_2048", sanitizeID("2048"))
	assert.Equal(t, "node", sanitizeID(""))
}
