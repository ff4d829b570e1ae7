// Package preview shows the computed payroll of a sheet without rendering.
package preview

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lezzdif22/payslip/cmd/common"
	"github.com/lezzdif22/payslip/cmd/root"
	pcommon "github.com/lezzdif22/payslip/internal/common"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/parser"
	"github.com/lezzdif22/payslip/internal/report"
)

var (
	reportFormat string
	summaryPath  string
)

// Cmd represents the preview command
var Cmd = &cobra.Command{
	Use:   "preview [file.csv]",
	Short: "Show computed pay, taxes and net pay per employee",
	Long: `Run the payroll engine on a sheet and print one line per employee, followed
by the rows that were skipped. Records flagged with * have a negative net pay or
disagree with the totals stated in the sheet.

Example:
  payslip preview payroll_october.csv
  payslip preview payroll_october.csv --report yaml
  payslip preview payroll_october.csv --summary summary.csv`,
	Args: cobra.MaximumNArgs(1),
	Run:  previewFunc,
}

func init() {
	Cmd.Flags().StringVar(&reportFormat, "report", "", "Print the run report instead (json or yaml)")
	Cmd.Flags().StringVar(&summaryPath, "summary", "", "Also write a per-employee summary CSV")
}

// Options controls Run.
type Options struct {
	Validate     bool
	ReportFormat string
	SummaryPath  string
	Delimiter    rune
}

func previewFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	path, err := common.InputPath(args, root.SharedFlags.Input)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	c := root.GetContainer()
	opts := Options{
		Validate:     root.SharedFlags.Validate,
		ReportFormat: reportFormat,
		SummaryPath:  summaryPath,
		Delimiter:    pcommon.Delimiter(c.GetConfig().CSV.Delimiter),
	}
	if err := Run(common.Stdout, c.GetParser(), c.GetReportGenerator(), path, opts, logger); err != nil {
		logger.Fatalf("Error previewing payroll: %v", err)
	}
}

// Run previews one sheet.
func Run(w io.Writer, p parser.BatchRunner, gen *report.ReportGenerator, path string, opts Options, logger logging.Logger) error {
	b, err := common.RunFile(p, path, opts.Validate, logger)
	if err != nil {
		return err
	}
	records, skips := b.Collect()

	if opts.SummaryPath != "" {
		rows := report.SummaryRows(records, b.Periods)
		if err := pcommon.WriteCSVFile(rows, opts.SummaryPath, opts.Delimiter, logger); err != nil {
			return err
		}
	}

	if opts.ReportFormat != "" {
		return common.WriteReport(w, gen, report.NewRunReport(b, records, skips), opts.ReportFormat, "")
	}

	fmt.Fprintf(w, "Batch %s: %d record(s), %d skipped, %d period(s)\n",
		b.ID, len(records), len(skips), len(b.Periods))
	common.PrintRecords(w, records)
	common.PrintSkips(w, skips)
	return nil
}
