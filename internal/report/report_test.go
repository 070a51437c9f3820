package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportOK(t *testing.T) {
	var r Report
	r.Add(CheckResult{Name: LicenseCheck, Checked: 12})
	r.Add(CheckResult{Name: WhitelistCheck, Skipped: true, SkipReason: "no roots configured"})
	r.Finalize()

	assert.True(t, r.OK())
	assert.Equal(t, 2, r.Summary.CheckCount)
	assert.Equal(t, 0, r.Summary.FindingCount)
	assert.Equal(t, 1, r.Summary.SkippedChecks)
}

func TestReportFailsOnFindings(t *testing.T) {
	var r Report
	r.Add(CheckResult{Name: LicenseCheck, Checked: 3, Findings: []Finding{
		{Check: LicenseCheck, Path: "vendor/readline/Cargo.toml", Detail: "invalid license GPL-2.0 in vendor/readline/Cargo.toml"},
	}})
	r.Finalize()

	assert.False(t, r.OK())
	assert.Equal(t, 1, r.Summary.FindingCount)
}

func TestAdvisoryFindingsDoNotFail(t *testing.T) {
	var r Report
	r.Add(CheckResult{Name: DuplicateCheck, Advisory: true, Findings: []Finding{
		{Check: DuplicateCheck, Crate: "rand", Detail: "crate rand resolved at 2 versions: 0.6.5, 0.7.0"},
	}})
	r.Finalize()

	assert.True(t, r.OK())
	assert.False(t, r.Checks[0].Failed())
	assert.Equal(t, 1, r.Summary.FindingCount)
}
