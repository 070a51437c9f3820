package render

import (
	"encoding/json"
	"io"

	"cratevet/internal/report"
)

// JSON writes the full report as indented JSON with a trailing newline.
// The report carries no timestamps, so identical runs emit identical
// bytes.
func JSON(w io.Writer, r *report.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
