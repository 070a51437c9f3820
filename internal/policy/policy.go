package policy

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cratevet/internal/crate"
)

// Policy is the complete rule set for one audit run. Checks receive it
// as a value and never write back.
type Policy struct {
	// AllowedLicenses are the exact license expressions a vendored crate
	// may declare. Matching is literal, not SPDX-aware: "MIT/Apache-2.0"
	// and "MIT / Apache-2.0" are distinct entries.
	AllowedLicenses []string `yaml:"allowed_licenses"`

	// Exceptions are crates exempt from the license check. A vendored
	// directory whose name starts with an entry is skipped wholly.
	// Every entry is a policy debt, not an endorsement.
	Exceptions []string `yaml:"exceptions"`

	// Roots are the crates whose transitive dependency trees must stay
	// inside Whitelist. Empty roots disable the whitelist check.
	Roots []string `yaml:"roots"`

	// Whitelist is the approved dependency set for the root trees.
	// Roots are not implicitly approved; list them here too.
	Whitelist []string `yaml:"whitelist"`
}

// Default returns the built-in policy: the stock permissive license
// expressions and no whitelist rules. Roots and whitelist name crates of
// a concrete workspace, so they only ever come from a policy file.
func Default() Policy {
	return Policy{
		AllowedLicenses: []string{
			"MIT/Apache-2.0",
			"MIT / Apache-2.0",
			"Apache-2.0/MIT",
			"Apache-2.0 / MIT",
			"MIT OR Apache-2.0",
			"MIT",
			"Unlicense/MIT",
		},
	}
}

// Load reads a policy file, filling anything it leaves out from Default.
// A .env file is honored and CRATEVET_POLICY overrides the path. An
// empty path yields the defaults.
func Load(path string) (Policy, error) {
	_ = godotenv.Load()

	if env := os.Getenv("CRATEVET_POLICY"); env != "" {
		path = env
	}
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}

	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy %s: %w", path, err)
	}

	if len(p.AllowedLicenses) == 0 {
		p.AllowedLicenses = Default().AllowedLicenses
	}

	return p, nil
}

// RootIDs returns the whitelist roots as canonical identities. Entries
// pass through crate.Parse, so stray version text or trailing separators
// in the file are harmless.
func (p Policy) RootIDs() []crate.ID {
	ids := make([]crate.ID, 0, len(p.Roots))
	for _, r := range p.Roots {
		if id := crate.Parse(r); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// AllowSet returns the whitelist as a normalized identity set.
func (p Policy) AllowSet() crate.Set {
	return crate.NewSet(p.Whitelist...)
}
