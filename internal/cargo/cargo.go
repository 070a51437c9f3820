package cargo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Resolve is the dependency section of a cargo metadata document
// (--format-version 1). Only the resolve graph is decoded; the package
// list in the same document carries no edge information.
type Resolve struct {
	Nodes []ResolveNode `json:"nodes"`
}

// ResolveNode is one resolved package: its raw id plus the raw ids of its
// direct dependencies, exactly as the document spells them.
type ResolveNode struct {
	ID           string   `json:"id"`
	Dependencies []string `json:"dependencies"`
}

type metadataDoc struct {
	Resolve *Resolve `json:"resolve"`
}

// Metadata invokes cargo and returns the resolve graph for the workspace
// rooted at manifestPath. Any failure here means no audit is possible, so
// callers treat the returned error as fatal and never retry.
func Metadata(ctx context.Context, cargoBin, manifestPath string) (*Resolve, error) {
	if cargoBin == "" {
		cargoBin = "cargo"
	}
	cmd := exec.CommandContext(ctx, cargoBin,
		"metadata", "--format-version", "1", "--manifest-path", manifestPath)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("cargo metadata failed: %w: %s", err, bytes.TrimSpace(exitErr.Stderr))
		}
		return nil, fmt.Errorf("cargo metadata failed: %w", err)
	}

	return Decode(bytes.NewReader(output))
}

// Decode reads a metadata document and extracts its resolve section.
// A document without one (cargo run with --no-deps, or truncated output)
// is an error: there is no graph to audit.
func Decode(r io.Reader) (*Resolve, error) {
	var doc metadataDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse cargo metadata output: %w", err)
	}
	if doc.Resolve == nil {
		return nil, fmt.Errorf("cargo metadata output has no resolve graph")
	}
	return doc.Resolve, nil
}
