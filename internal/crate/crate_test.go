package crate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ID
	}{
		{"full reference", "serde 1.0.90 (registry+https://github.com/rust-lang/crates.io-index)", "serde"},
		{"name and version", "log 0.4.6", "log"},
		{"bare name", "rustc", "rustc"},
		{"trailing separator", "rustc ", "rustc"},
		{"surrounding whitespace", "  libc 0.2.54  ", "libc"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestParseNormalizesEquivalentReferences(t *testing.T) {
	refs := []string{
		"smallvec",
		"smallvec 0.6.9",
		"smallvec 0.6.9 (registry+https://github.com/rust-lang/crates.io-index)",
	}
	for _, ref := range refs {
		assert.Equal(t, ID("smallvec"), Parse(ref))
	}
}

func TestKeyPrefixDistinguishesSimilarNames(t *testing.T) {
	foo := Parse("foo 1.0.0")
	foobar := Parse("foobar 0.3.1")

	assert.True(t, strings.HasPrefix("foo 1.0.0 (registry)", foo.KeyPrefix()))
	assert.False(t, strings.HasPrefix("foobar 0.3.1 (registry)", foo.KeyPrefix()))
	assert.True(t, strings.HasPrefix("foobar 0.3.1 (registry)", foobar.KeyPrefix()))
}

func TestSet(t *testing.T) {
	s := NewSet("serde 1.0.90", "log", "rand ")

	assert.True(t, s.Has("serde"))
	assert.True(t, s.Has("log"))
	assert.True(t, s.Has("rand"))
	assert.False(t, s.Has("rando"))

	s.Add("adler32")
	assert.Equal(t, []ID{"adler32", "log", "rand", "serde"}, s.Sorted())
}
