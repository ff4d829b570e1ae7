package preview_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lezzdif22/payslip/cmd/preview"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/payrollparser"
	"github.com/lezzdif22/payslip/internal/report"
)

const payroll = `Seq,NAME,RATE,Oct 1-15,Oct 16-31,W/ TAX RATE
,,per hour,,,
1,"Cruz, Juan",300,8,8,10%
2,,250,10,,
`

func TestPreviewCommand_Metadata(t *testing.T) {
	assert.Equal(t, "preview [file.csv]", preview.Cmd.Use)
	assert.Contains(t, preview.Cmd.Short, "net pay")
	assert.NotNil(t, preview.Cmd.Flags().Lookup("report"))
	assert.NotNil(t, preview.Cmd.Flags().Lookup("summary"))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "october.csv")
	require.NoError(t, os.WriteFile(path, []byte(payroll), 0600))

	logger := logging.NewMockLogger()
	p := payrollparser.NewParser(payrollparser.Options{}, logger)
	gen := report.NewReportGenerator(logger)

	tests := []struct {
		name     string
		opts     preview.Options
		contains []string
		absent   []string
	}{
		{
			name:     "table",
			contains: []string{"1 record(s), 1 skipped, 2 period(s)", "Cruz, Juan", "4800.00", "480.00", "4320.00", "missing name"},
		},
		{
			name:     "yaml report",
			opts:     preview.Options{ReportFormat: "yaml"},
			contains: []string{"october.csv", "processed: 1", "skipped: 1"},
			absent:   []string{"record(s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, preview.Run(&buf, p, gen, path, tt.opts, logger))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestRun_Summary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "october.csv")
	require.NoError(t, os.WriteFile(path, []byte(payroll), 0600))
	summary := filepath.Join(dir, "out", "summary.csv")

	logger := logging.NewMockLogger()
	p := payrollparser.NewParser(payrollparser.Options{}, logger)

	var buf bytes.Buffer
	opts := preview.Options{SummaryPath: summary, Delimiter: ';'}
	require.NoError(t, preview.Run(&buf, p, report.NewReportGenerator(logger), path, opts, logger))

	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), "seq;account_no;name;rate")
	assert.Contains(t, string(data), "1;;Cruz, Juan;300.00")
}

func TestRun_BadReportFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "october.csv")
	require.NoError(t, os.WriteFile(path, []byte(payroll), 0600))
	logger := logging.NewMockLogger()

	var buf bytes.Buffer
	err := preview.Run(&buf, payrollparser.NewParser(payrollparser.Options{}, logger),
		report.NewReportGenerator(logger), path, preview.Options{ReportFormat: "xml"}, logger)
	assert.Error(t, err)
}
