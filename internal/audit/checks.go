package audit

import (
	"context"
	"fmt"

	"cratevet/internal/analysis"
	"cratevet/internal/crate"
	"cratevet/internal/graph"
	"cratevet/internal/license"
	"cratevet/internal/report"
	"cratevet/internal/vendored"
	"cratevet/internal/whitelist"
)

// LicenseCheck validates the declared license of every vendored crate.
type LicenseCheck struct{}

func (LicenseCheck) Name() string { return report.LicenseCheck }

func (LicenseCheck) Run(_ context.Context, w *Workspace) (report.CheckResult, error) {
	out := report.CheckResult{Name: report.LicenseCheck}
	if w.VendorDir == "" {
		out.Skipped = true
		out.SkipReason = "no vendor directory configured"
		return out, nil
	}

	scanner := vendored.NewScanner(w.VendorDir, w.Policy.Exceptions)
	err := scanner.Scan(func(dir, manifestPath string) error {
		res, err := license.File(manifestPath, w.Policy.AllowedLicenses)
		if err != nil {
			return err
		}
		out.Checked++
		if !res.Passed() {
			out.Findings = append(out.Findings, report.Finding{
				Check:  report.LicenseCheck,
				Crate:  dir,
				Path:   res.Path,
				Detail: res.Diagnostic(),
			})
		}
		return nil
	})
	if err != nil {
		return report.CheckResult{}, err
	}
	return out, nil
}

// WhitelistCheck walks the resolve graph from the policy roots and
// reports reachable crates missing from the whitelist.
type WhitelistCheck struct{}

func (WhitelistCheck) Name() string { return report.WhitelistCheck }

func (WhitelistCheck) Run(ctx context.Context, w *Workspace) (report.CheckResult, error) {
	out := report.CheckResult{Name: report.WhitelistCheck}
	roots := w.Policy.RootIDs()
	if len(roots) == 0 {
		out.Skipped = true
		out.SkipReason = "no roots configured"
		return out, nil
	}

	g, err := w.Graph(ctx)
	if err != nil {
		return report.CheckResult{}, err
	}

	counted := &countingResolver{g: g}
	violations, err := whitelist.Check(roots, counted, w.Policy.AllowSet())
	if err != nil {
		return report.CheckResult{}, err
	}

	out.Checked = counted.finds
	for _, v := range violations {
		out.Findings = append(out.Findings, report.Finding{
			Check:  report.WhitelistCheck,
			Crate:  string(v),
			Detail: fmt.Sprintf("%s is not on the whitelist", v),
		})
	}
	return out, nil
}

// countingResolver wraps the graph to observe how many crates the
// traversal expanded, which becomes the stage's Checked figure.
type countingResolver struct {
	g     *graph.Graph
	finds int
}

func (c *countingResolver) Find(id crate.ID) (*graph.Node, error) {
	c.finds++
	return c.g.Find(id)
}

// DuplicateCheck flags crates resolved at more than one version. It is
// advisory and never fails the audit.
type DuplicateCheck struct{}

func (DuplicateCheck) Name() string { return report.DuplicateCheck }

func (DuplicateCheck) Run(ctx context.Context, w *Workspace) (report.CheckResult, error) {
	out := report.CheckResult{Name: report.DuplicateCheck, Advisory: true}
	if w.ManifestPath == "" {
		out.Skipped = true
		out.SkipReason = "no manifest path configured"
		return out, nil
	}

	g, err := w.Graph(ctx)
	if err != nil {
		return report.CheckResult{}, err
	}

	out.Checked = g.Len()
	for _, dup := range analysis.NewAnalyzer(g).Duplicates() {
		out.Findings = append(out.Findings, report.Finding{
			Check:  report.DuplicateCheck,
			Crate:  string(dup.Name),
			Detail: dup.String(),
		})
	}
	return out, nil
}
