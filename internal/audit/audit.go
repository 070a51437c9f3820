package audit

import (
	"context"
	"fmt"

	"cratevet/internal/cargo"
	"cratevet/internal/graph"
	"cratevet/internal/manifest"
	"cratevet/internal/policy"
	"cratevet/internal/report"
)

// Workspace is one audit target: where the crate tree lives and the
// policy to hold it against. Stages share the lazily built resolve
// graph through it, so cargo metadata runs at most once per audit.
type Workspace struct {
	ManifestPath string
	VendorDir    string
	CargoBin     string
	Policy       policy.Policy

	graph     *graph.Graph
	manifests *manifest.Cache
}

// Graph returns the resolve graph, invoking cargo metadata on first
// use. Failure is an environment error and aborts the audit.
func (w *Workspace) Graph(ctx context.Context) (*graph.Graph, error) {
	if w.graph != nil {
		return w.graph, nil
	}
	res, err := cargo.Metadata(ctx, w.CargoBin, w.ManifestPath)
	if err != nil {
		return nil, err
	}
	w.graph = graph.Build(res)
	return w.graph, nil
}

// Manifests returns the shared manifest parse cache, creating it on
// first use.
func (w *Workspace) Manifests() (*manifest.Cache, error) {
	if w.manifests == nil {
		c, err := manifest.NewCache(1024)
		if err != nil {
			return nil, err
		}
		w.manifests = c
	}
	return w.manifests, nil
}

// Reset drops the cached resolve graph so the next stage rebuilds it.
// Watch mode calls this between runs. The manifest cache stays put; it
// invalidates itself by mtime and size.
func (w *Workspace) Reset() {
	w.graph = nil
}

// Check is one audit stage. Policy violations land in the result; the
// error return is reserved for environment and configuration failures
// that make the stage meaningless.
type Check interface {
	Name() string
	Run(ctx context.Context, w *Workspace) (report.CheckResult, error)
}

// Runner executes checks in order and aggregates their outcomes.
type Runner struct {
	checks []Check
}

// NewRunner creates a runner over the given checks.
func NewRunner(checks ...Check) *Runner {
	return &Runner{checks: checks}
}

// NewDefaultRunner wires the standard audit: licenses, whitelist, then
// the advisory duplicate scan.
func NewDefaultRunner() *Runner {
	return NewRunner(LicenseCheck{}, WhitelistCheck{}, DuplicateCheck{})
}

// Run executes every check against the workspace. The first environment
// or configuration error aborts the audit; policy findings accumulate
// and never do.
func (r *Runner) Run(ctx context.Context, w *Workspace) (*report.Report, error) {
	var rep report.Report
	for _, c := range r.checks {
		res, err := c.Run(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("%s check: %w", c.Name(), err)
		}
		rep.Add(res)
	}
	rep.Finalize()
	return &rep, nil
}
