package render

import (
	"fmt"
	"io"

	"cratevet/internal/crate"
	"cratevet/internal/report"
)

// Text writes the findings of a report in the classic line format.
// Passing checks print nothing: absent output is the pass signal, and
// any status chatter around it belongs to the caller.
func Text(w io.Writer, r *report.Report) {
	for _, c := range r.Checks {
		if len(c.Findings) == 0 {
			continue
		}
		switch c.Name {
		case report.WhitelistCheck:
			fmt.Fprintln(w, "Dependencies not on the whitelist:")
			for _, f := range c.Findings {
				// The trailing separator is part of the format.
				fmt.Fprintf(w, "* %s%s\n", f.Crate, crate.Separator)
			}
		case report.DuplicateCheck:
			fmt.Fprintln(w, "Crates resolved at more than one version:")
			for _, f := range c.Findings {
				fmt.Fprintf(w, "* %s\n", f.Detail)
			}
		default:
			for _, f := range c.Findings {
				fmt.Fprintln(w, f.Detail)
			}
		}
	}
}
