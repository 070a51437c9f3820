package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"cratevet/internal/audit"
	"cratevet/internal/manifest"
	"cratevet/internal/policy"
	"cratevet/internal/render"
	"cratevet/internal/report"
	"cratevet/internal/vendored"

	"github.com/spf13/cobra"
)

const defaultPolicyPath = "cratevet.yaml"

var (
	rootCmd = &cobra.Command{
		Use:   "cratevet",
		Short: "Dependency policy auditor for Cargo workspaces",
	}
	manifestPath string
	vendorDir    string
	cargoBin     string
	policyPath   string
	jsonOutput   bool
	graphOutput  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Defaults assume the tool runs from the workspace root
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest-path", "m", "Cargo.toml", "Path to the workspace Cargo.toml")
	rootCmd.PersistentFlags().StringVarP(&vendorDir, "vendor-dir", "v", "vendor", "Directory holding the vendored crate sources")
	rootCmd.PersistentFlags().StringVar(&cargoBin, "cargo", "cargo", "Cargo binary used to read the resolve graph")
	rootCmd.PersistentFlags().StringVarP(&policyPath, "policy", "p", defaultPolicyPath, "Path to the policy file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit reports as JSON")

	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Write the diagram to a file instead of stdout")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(licensesCmd)
	rootCmd.AddCommand(whitelistCmd)
	rootCmd.AddCommand(dupesCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(watchCmd)
}

// readPolicy loads the policy file. A missing file at the default path
// is not an error; the built-in defaults apply. A path given explicitly
// via --policy or CRATEVET_POLICY must exist.
func readPolicy() (policy.Policy, error) {
	pol, err := policy.Load(policyPath)
	if err != nil {
		if policyPath == defaultPolicyPath && os.Getenv("CRATEVET_POLICY") == "" && errors.Is(err, os.ErrNotExist) {
			return policy.Default(), nil
		}
		return policy.Policy{}, err
	}
	return pol, nil
}

// loadPolicy is readPolicy for the one-shot commands, where a broken
// policy file aborts the run.
func loadPolicy() policy.Policy {
	pol, err := readPolicy()
	if err != nil {
		log.Fatalf("Failed to load policy: %v", err)
	}
	return pol
}

// workspace assembles the audit target from the global flags.
func workspace() *audit.Workspace {
	return &audit.Workspace{
		ManifestPath: manifestPath,
		VendorDir:    vendorDir,
		CargoBin:     cargoBin,
		Policy:       loadPolicy(),
	}
}

// applyWorkspaceDir points the default paths at dir. Flags set
// explicitly on the command line win over the positional argument.
func applyWorkspaceDir(cmd *cobra.Command, dir string) {
	if !cmd.Flags().Changed("manifest-path") {
		manifestPath = filepath.Join(dir, "Cargo.toml")
	}
	if !cmd.Flags().Changed("vendor-dir") {
		vendorDir = filepath.Join(dir, "vendor")
	}
	if !cmd.Flags().Changed("policy") {
		if p := filepath.Join(dir, defaultPolicyPath); fileExists(p) {
			policyPath = p
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// runOnce executes the runner once and renders the outcome.
func runOnce(runner *audit.Runner, w *audit.Workspace) (*report.Report, error) {
	start := time.Now()
	rep, err := runner.Run(context.Background(), w)
	if err != nil {
		return nil, err
	}

	if jsonOutput {
		return rep, render.JSON(os.Stdout, rep)
	}

	render.Text(os.Stdout, rep)
	if rep.OK() {
		fmt.Printf("✅ %d checks passed in %v\n", rep.Summary.CheckCount, time.Since(start).Round(time.Millisecond))
	} else {
		fmt.Printf("❌ %d findings across %d checks\n", rep.Summary.FindingCount, rep.Summary.CheckCount)
	}
	return rep, nil
}

// runAudit is the shared body of the one-shot check commands. Policy
// findings set the exit code; environment failures abort immediately.
func runAudit(runner *audit.Runner) {
	rep, err := runOnce(runner, workspace())
	if err != nil {
		log.Fatalf("Failed to complete audit: %v", err)
	}
	if !rep.OK() {
		os.Exit(1)
	}
}

var checkCmd = &cobra.Command{
	Use:   "check [workspace]",
	Short: "Run every dependency policy check",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			applyWorkspaceDir(cmd, args[0])
		}
		if !jsonOutput {
			fmt.Printf("🔍 Auditing %s\n", manifestPath)
		}
		runAudit(audit.NewDefaultRunner())
	},
}

var licensesCmd = &cobra.Command{
	Use:   "licenses [workspace]",
	Short: "Check vendored crate licenses against the allowed expressions",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			applyWorkspaceDir(cmd, args[0])
		}
		runAudit(audit.NewRunner(audit.LicenseCheck{}))
	},
}

var whitelistCmd = &cobra.Command{
	Use:   "whitelist [workspace]",
	Short: "Check that the root crates only reach whitelisted dependencies",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			applyWorkspaceDir(cmd, args[0])
		}
		runAudit(audit.NewRunner(audit.WhitelistCheck{}))
	},
}

var dupesCmd = &cobra.Command{
	Use:   "dupes [workspace]",
	Short: "List crates resolved at more than one version",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			applyWorkspaceDir(cmd, args[0])
		}
		runAudit(audit.NewRunner(audit.DuplicateCheck{}))
	},
}

var inventoryCmd = &cobra.Command{
	Use:   "inventory [workspace]",
	Short: "List vendored crates with their declared license and dependency counts",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			applyWorkspaceDir(cmd, args[0])
		}

		w := workspace()
		entries, err := collectInventory(w)
		if err != nil {
			log.Fatalf("Failed to inventory %s: %v", w.VendorDir, err)
		}

		if jsonOutput {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				log.Fatalf("Failed to render inventory: %v", err)
			}
			fmt.Println(string(data))
			return
		}

		for _, e := range entries {
			fmt.Printf("%-32s %-12s %-28s %d deps\n", e.Dir, e.Manifest.Version, licenseLabel(e.Manifest), len(e.Manifest.Dependencies))
		}
		fmt.Printf("📦 %d vendored crates\n", len(entries))
	},
}

// inventoryEntry pairs a vendored directory with its parsed manifest.
type inventoryEntry struct {
	Dir      string             `json:"dir"`
	Manifest *manifest.Manifest `json:"manifest"`
}

// collectInventory parses every vendored manifest through the shared
// cache. License exceptions are not applied; an inventory lists everything.
func collectInventory(w *audit.Workspace) ([]inventoryEntry, error) {
	cache, err := w.Manifests()
	if err != nil {
		return nil, err
	}

	var entries []inventoryEntry
	scanner := vendored.NewScanner(w.VendorDir, nil)
	err = scanner.Scan(func(dir, path string) error {
		m, err := cache.Load(path)
		if err != nil {
			return err
		}
		entries = append(entries, inventoryEntry{Dir: dir, Manifest: m})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// licenseLabel condenses the manifest license fields into one cell.
func licenseLabel(m *manifest.Manifest) string {
	switch {
	case m.License != "":
		return m.License
	case m.LicenseFile != "":
		return "file:" + m.LicenseFile
	default:
		return "none"
	}
}

var graphCmd = &cobra.Command{
	Use:   "graph [workspace]",
	Short: "Export the dependency tree under the policy roots as a Mermaid diagram",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			applyWorkspaceDir(cmd, args[0])
		}
		w := workspace()
		roots := w.Policy.RootIDs()
		if len(roots) == 0 {
			log.Fatalf("No roots configured in %s; the diagram needs a place to start", policyPath)
		}

		g, err := w.Graph(context.Background())
		if err != nil {
			log.Fatalf("Failed to load resolve graph: %v", err)
		}

		out := os.Stdout
		if graphOutput != "" {
			f, err := os.Create(graphOutput)
			if err != nil {
				log.Fatalf("Failed to create %s: %v", graphOutput, err)
			}
			defer f.Close()
			out = f
		}

		if err := render.Mermaid(out, g, roots, w.Policy.AllowSet()); err != nil {
			log.Fatalf("Failed to render graph: %v", err)
		}
		if graphOutput != "" {
			fmt.Printf("💾 Diagram written to %s\n", graphOutput)
		}
	},
}
