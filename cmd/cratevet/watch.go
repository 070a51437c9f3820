package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"cratevet/internal/audit"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [check|licenses|whitelist|dupes]",
	Short: "Re-run checks whenever the workspace or policy changes",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := "check"
		if len(args) > 0 {
			target = args[0]
		}
		runner, err := runnerFor(target)
		if err != nil {
			log.Fatalf("Failed to start watch: %v", err)
		}
		runWatch(runner, workspace(), nil)
	},
}

// runnerFor maps a watch target to the checks it runs.
func runnerFor(target string) (*audit.Runner, error) {
	switch target {
	case "check":
		return audit.NewDefaultRunner(), nil
	case "licenses":
		return audit.NewRunner(audit.LicenseCheck{}), nil
	case "whitelist":
		return audit.NewRunner(audit.WhitelistCheck{}), nil
	case "dupes":
		return audit.NewRunner(audit.DuplicateCheck{}), nil
	default:
		return nil, fmt.Errorf("unknown watch target %q", target)
	}
}

// runWatch audits once, then re-audits after every burst of filesystem
// events until stop closes. A nil stop channel watches forever. The
// workspace lives across runs, so the manifest cache keeps its entries;
// the resolve graph is rebuilt and the policy file re-read on every run,
// so edits to roots and whitelists take effect without a restart.
func runWatch(runner *audit.Runner, w *audit.Workspace, stop <-chan struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("Failed to init watcher: %v", err)
	}
	defer watcher.Close()

	if addWatches(watcher, w) == 0 {
		log.Fatalf("Nothing to watch: neither %s nor %s exists", w.ManifestPath, w.VendorDir)
	}

	trigger := func() {
		// A policy file mid-edit keeps the last good policy for this run
		if pol, err := readPolicy(); err == nil {
			w.Policy = pol
		} else {
			log.Printf("⚠️ Policy error: %v", err)
		}
		w.Reset()
		if _, err := runOnce(runner, w); err != nil {
			log.Printf("⚠️ Audit error: %v", err)
		}
		// Crates added to vendor since the last run need watches too
		addWatches(watcher, w)
	}

	fmt.Printf("👀 Watching %s (policy %s)\n", filepath.Dir(w.ManifestPath), policyPath)
	trigger()

	// Re-runs fire from this loop, never from a timer goroutine; a slow
	// audit delays the next run instead of racing it.
	debounce := 300 * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ Watch error: %v", err)
		case <-timer.C:
			trigger()
		}
	}
}

// addWatches registers the manifest, its lock file, the policy file, the
// vendor root and each vendored crate directory. Paths that do not exist
// yet are skipped; the next trigger picks them up.
func addWatches(watcher *fsnotify.Watcher, w *audit.Workspace) int {
	n := 0
	add := func(p string) {
		if p == "" {
			return
		}
		if _, err := os.Stat(p); err != nil {
			return
		}
		if err := watcher.Add(p); err == nil {
			n++
		}
	}

	add(w.ManifestPath)
	add(filepath.Join(filepath.Dir(w.ManifestPath), "Cargo.lock"))
	add(policyPath)
	add(w.VendorDir)
	entries, err := os.ReadDir(w.VendorDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				add(filepath.Join(w.VendorDir, e.Name()))
			}
		}
	}
	return n
}
