package policy

import (
	"os"
	"path/filepath"
	"testing"

	"cratevet/internal/crate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	p := Default()

	assert.Len(t, p.AllowedLicenses, 7)
	assert.Contains(t, p.AllowedLicenses, "MIT")
	assert.Contains(t, p.AllowedLicenses, "Unlicense/MIT")
	assert.Empty(t, p.Exceptions)
	assert.Empty(t, p.Roots)
	assert.Empty(t, p.Whitelist)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writePolicy(t, `
exceptions:
  - mdbook
  - openssl
roots:
  - core
whitelist:
  - core
  - libc
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, Default().AllowedLicenses, p.AllowedLicenses)
	assert.Equal(t, []string{"mdbook", "openssl"}, p.Exceptions)
	assert.Equal(t, []string{"core"}, p.Roots)
	assert.Equal(t, []string{"core", "libc"}, p.Whitelist)
}

func TestLoadCustomLicenses(t *testing.T) {
	path := writePolicy(t, `
allowed_licenses:
  - MIT
`)

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"MIT"}, p.AllowedLicenses)
}

func TestLoadEmptyPathIsDefault(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read policy")
}

func TestLoadBadYAML(t *testing.T) {
	path := writePolicy(t, "whitelist: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse policy")
}

func TestLoadEnvOverridesPath(t *testing.T) {
	override := writePolicy(t, "roots:\n  - core\n")
	t.Setenv("CRATEVET_POLICY", override)

	p, err := Load(filepath.Join(t.TempDir(), "ignored.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"core"}, p.Roots)
}

func TestEntriesAreNormalized(t *testing.T) {
	// Trailing separators and version text in policy entries must not
	// defeat matching against parsed identities.
	p := Policy{
		Roots:     []string{"core ", ""},
		Whitelist: []string{"core", "libc 0.2.54", "bitflags "},
	}

	assert.Equal(t, []crate.ID{"core"}, p.RootIDs())

	allow := p.AllowSet()
	assert.True(t, allow.Has("core"))
	assert.True(t, allow.Has("libc"))
	assert.True(t, allow.Has("bitflags"))
	assert.False(t, allow.Has("libc 0.2.54"))
}
