// Package common contains shared functionality for command handlers
package common

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/lezzdif22/payslip/internal/batch"
	"github.com/lezzdif22/payslip/internal/fileutils"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/parser"
	"github.com/lezzdif22/payslip/internal/payrollparser"
	"github.com/lezzdif22/payslip/internal/report"
	"github.com/lezzdif22/payslip/internal/validation"
)

// ErrNoInput is returned when neither an argument nor --input names a file.
var ErrNoInput = errors.New("no input file: pass it as an argument or with --input")

// Stdout is where command output goes; tests replace it.
var Stdout io.Writer = os.Stdout

// InputPath picks the first positional argument, else the --input flag.
func InputPath(args []string, flag string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if flag != "" {
		return flag, nil
	}
	return "", ErrNoInput
}

// OutputDir picks the --output flag, else the configured directory.
func OutputDir(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}

// RunFile runs the payroll engine on one sheet, validating the path first
// when validate is set.
func RunFile(p parser.BatchRunner, path string, validate bool, logger logging.Logger) (*payrollparser.Batch, error) {
	if validate {
		logger.Info("Validating format...", logging.F(logging.FieldFile, path))
		if err := validation.IsValidPayrollFile(path); err != nil {
			return nil, fmt.Errorf("error validating file: %w", err)
		}
	}

	b, err := p.Run(path)
	if err != nil {
		return nil, fmt.Errorf("error reading payroll sheet: %w", err)
	}

	logger.Info("Payroll sheet loaded",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldEncoding, b.Encoding),
		logging.F(logging.FieldBatchID, b.ID),
		logging.F(logging.FieldPeriodCount, len(b.Periods)))
	return b, nil
}

// PrintPeriods lists the detected pay periods.
func PrintPeriods(w io.Writer, sheet *payrollparser.Sheet) {
	fmt.Fprintf(w, "Source:     %s\n", sheet.Source)
	fmt.Fprintf(w, "Encoding:   %s\n", sheet.Encoding)
	fmt.Fprintf(w, "Header row: %d\n", sheet.HeaderRow+1)
	fmt.Fprintf(w, "Periods:    %d\n", len(sheet.Periods))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLABEL\tKEY\tAMOUNT COLUMN")
	for i, p := range sheet.Periods {
		amount := "-"
		if p.HasAmountColumn() {
			amount = fmt.Sprintf("%d", p.AmountIndex+1)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, p.Label, p.Key, amount)
	}
	_ = tw.Flush()
}

// PrintRecords lists computed records, one line each.
func PrintRecords(w io.Writer, records []models.EmployeeRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SEQ\tNAME\tHOURS\tGROSS\tDEDUCTIONS\tNET\t")
	for _, r := range records {
		name := r.Name
		if r.NegativeNet || r.Discrepancy || r.GrossMismatch {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.SequenceString(), name, r.TotalHours().String(),
			r.Gross.StringFixed(2), r.TotalDeductions.StringFixed(2), r.NetPay.StringFixed(2))
	}
	_ = tw.Flush()
}

// PrintSkips lists rows that produced no record.
func PrintSkips(w io.Writer, skips []models.SkipEntry) {
	if len(skips) == 0 {
		return
	}
	fmt.Fprintf(w, "Skipped %d row(s):\n", len(skips))
	for _, s := range skips {
		fmt.Fprintf(w, "  %s\n", s.String())
	}
}

// PrintOutcomes prints status counts followed by every failed employee.
func PrintOutcomes(w io.Writer, counts map[batch.Status]int, failed []batch.Outcome) {
	for _, status := range batch.SortedStatuses(counts) {
		fmt.Fprintf(w, "%-18s %d\n", status, counts[status])
	}
	for _, o := range failed {
		fmt.Fprintf(w, "  %s %s: %s\n", o.Seq, o.Name, o.Error)
	}
}

// WriteReport renders rep to path, or to w when path is empty.
func WriteReport(w io.Writer, gen *report.ReportGenerator, rep *report.RunReport, format, path string) error {
	if err := validation.IsValidReportFormat(format); err != nil {
		return err
	}
	data, err := gen.GenerateReport(rep, format)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = w.Write(append(data, '\n'))
		return err
	}
	if err := fileutils.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ReportPath places a per-sheet report next to the payslips.
func ReportPath(outDir, source, format string) string {
	base := source[:len(source)-len(filepath.Ext(source))]
	return filepath.Join(outDir, filepath.Base(base)+"_report."+format)
}
