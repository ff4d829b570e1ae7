// Package detect shows the pay periods found in a payroll sheet.
package detect

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lezzdif22/payslip/cmd/common"
	"github.com/lezzdif22/payslip/cmd/root"
	"github.com/lezzdif22/payslip/internal/parser"
	"github.com/lezzdif22/payslip/internal/validation"
)

// Cmd represents the detect command
var Cmd = &cobra.Command{
	Use:   "detect [file.csv]",
	Short: "Show the pay periods detected in a payroll sheet",
	Long: `Locate the header row of a payroll sheet and list the pay-period columns
found in it, with the encoding the file was decoded with.

Example:
  payslip detect payroll_october.csv`,
	Args: cobra.MaximumNArgs(1),
	Run:  detectFunc,
}

func detectFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	path, err := common.InputPath(args, root.SharedFlags.Input)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if err := Run(common.Stdout, root.GetContainer().GetParser(), path, root.SharedFlags.Validate); err != nil {
		logger.Fatalf("Error detecting periods: %v", err)
	}
}

// Run prints the header and periods of path.
func Run(w io.Writer, p parser.PeriodDetector, path string, validate bool) error {
	if validate {
		if err := validation.IsValidPayrollFile(path); err != nil {
			return err
		}
	}
	sheet, err := p.DetectPeriods(path)
	if err != nil {
		return err
	}
	if len(sheet.Periods) == 0 {
		fmt.Fprintln(w, "No pay-period columns found.")
	}
	common.PrintPeriods(w, sheet)
	return nil
}
