package license

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// BadParse is substituted for the license expression when a license line
// carries no quoted value. It never matches an allowed expression, so a
// malformed line always surfaces as a finding instead of crashing the run
// or slipping through.
const BadParse = "bad-license-parse"

// Verdict classifies the outcome of checking one manifest.
type Verdict int

const (
	// Allowed means the declared expression matched the policy exactly.
	Allowed Verdict = iota
	// Invalid means a license line was found but its value is not an
	// allowed expression.
	Invalid
	// Missing means the manifest declares no license at all.
	Missing
)

// Result is the outcome of checking a single manifest.
type Result struct {
	Path    string
	License string // extracted expression, empty when Missing
	Verdict Verdict
}

func (r Result) Passed() bool {
	return r.Verdict == Allowed
}

// Diagnostic returns the failure line for this result, empty when it
// passed.
func (r Result) Diagnostic() string {
	switch r.Verdict {
	case Invalid:
		return fmt.Sprintf("invalid license %s in %s", r.License, r.Path)
	case Missing:
		return fmt.Sprintf("no license in %s", r.Path)
	}
	return ""
}

// File checks the manifest at path against the allowed expressions.
// An unreadable manifest is an environment error, not a policy finding:
// the vendored tree itself is broken and the audit cannot proceed.
func File(path string, allowed []string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("read manifest: %w", err)
	}
	defer f.Close()

	res := Result{Path: path, Verdict: Missing}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "license") {
			continue
		}
		// The first license-prefixed line decides, license-file included.
		// Later lines never rescue or worsen the verdict.
		res.License = Extract(line)
		if isAllowed(allowed, res.License) {
			res.Verdict = Allowed
		} else {
			res.Verdict = Invalid
		}
		return res, nil
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return res, nil
}

// Extract pulls the quoted expression out of a manifest license line:
// everything between the first and the last double quote. A line without
// a spanning pair of quotes yields BadParse.
func Extract(line string) string {
	first := strings.Index(line, `"`)
	last := strings.LastIndex(line, `"`)
	if first == -1 || last <= first {
		return BadParse
	}
	return line[first+1 : last]
}

// isAllowed is an exact string match. License expressions are opaque
// here: "MIT/Apache-2.0" and "MIT / Apache-2.0" are distinct entries,
// not equivalent SPDX terms.
func isAllowed(allowed []string, expr string) bool {
	for _, a := range allowed {
		if a == expr {
			return true
		}
	}
	return false
}
