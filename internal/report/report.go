package report

// Names of the built-in checks, shared by the audit stages and the
// renderers.
const (
	LicenseCheck   = "licenses"
	WhitelistCheck = "whitelist"
	DuplicateCheck = "duplicate-versions"
)

// Finding is one policy violation. Findings are data, not log lines:
// checks accumulate them fully and the caller decides how to render
// them and whether the run fails.
type Finding struct {
	Check  string `json:"check"`
	Crate  string `json:"crate,omitempty"`
	Path   string `json:"path,omitempty"`
	Detail string `json:"detail"`
}

// CheckResult is the outcome of one check over the whole tree.
type CheckResult struct {
	Name     string    `json:"name"`
	Checked  int       `json:"checked"`
	Findings []Finding `json:"findings,omitempty"`
	// Advisory results never fail the run, whatever they find.
	Advisory   bool   `json:"advisory,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// Failed reports whether this check found violations that should fail
// the run.
func (c CheckResult) Failed() bool {
	return !c.Advisory && len(c.Findings) > 0
}

// Summary is derived from the checks in Finalize.
type Summary struct {
	CheckCount    int `json:"check_count"`
	FindingCount  int `json:"finding_count"`
	SkippedChecks int `json:"skipped_checks"`
}

// Report aggregates every check of one audit run. It carries nothing
// run-dependent like timestamps, so identical inputs yield identical
// reports.
type Report struct {
	Checks  []CheckResult `json:"checks"`
	Summary Summary       `json:"summary"`
}

// Add appends a finished check result.
func (r *Report) Add(c CheckResult) {
	r.Checks = append(r.Checks, c)
}

// Finalize recomputes the summary from the accumulated checks.
func (r *Report) Finalize() {
	s := Summary{CheckCount: len(r.Checks)}
	for _, c := range r.Checks {
		s.FindingCount += len(c.Findings)
		if c.Skipped {
			s.SkippedChecks++
		}
	}
	r.Summary = s
}

// OK reports whether every check came back clean. Skipped checks are
// neither pass nor fail; advisory findings never block.
func (r *Report) OK() bool {
	for _, c := range r.Checks {
		if c.Failed() {
			return false
		}
	}
	return true
}
