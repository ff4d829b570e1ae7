// Package send renders payslips and emails them to employees.
package send

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lezzdif22/payslip/cmd/common"
	"github.com/lezzdif22/payslip/cmd/root"
	"github.com/lezzdif22/payslip/internal/batch"
	pcommon "github.com/lezzdif22/payslip/internal/common"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/parser"
)

// Cmd represents the send command
var Cmd = &cobra.Command{
	Use:   "send [file.csv]",
	Short: "Render payslips and email them to employees",
	Long: `Render one payslip per employee and email it. The recipient is the address
in the sheet, else the one stored in the address book for the employee's
sequence number, account number or name. Addresses found are remembered.

Sending is a dry run unless --dry-run=false is given (or mail.dry_run is false).

Example:
  payslip send payroll_october.csv
  payslip send payroll_october.csv --dry-run=false --throttle-ms 1000`,
	Args: cobra.MaximumNArgs(1),
	Run:  sendFunc,
}

func init() {
	root.AddRenderFlags(Cmd)
	root.AddMailFlags(Cmd)
	root.AddStoreFlags(Cmd.Flags())
}

func sendFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	path, err := common.InputPath(args, root.SharedFlags.Input)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	c := root.GetContainer()
	cfg := c.GetConfig()
	d, err := c.NewDispatcher()
	if err != nil {
		logger.Fatalf("Error configuring mail: %v", err)
	}
	outDir := common.OutputDir(root.SharedFlags.Output, cfg.Output.Directory)

	res, err := Run(cmd.Context(), common.Stdout, c.GetParser(), d, path, outDir, root.SharedFlags.Validate,
		pcommon.Delimiter(cfg.CSV.Delimiter), logger)
	if err != nil {
		logger.Fatalf("Error sending payslips: %v", err)
	}
	if failed := res.Failed(); len(failed) > 0 {
		logger.Fatalf("%d payslip(s) could not be sent", len(failed))
	}
}

// Run renders and mails the payslips of one sheet, then writes
// outcomes.csv next to them.
func Run(ctx context.Context, w io.Writer, p parser.BatchRunner, d *batch.Dispatcher, path, outDir string,
	validate bool, delim rune, logger logging.Logger) (*batch.Result, error) {
	b, err := common.RunFile(p, path, validate, logger)
	if err != nil {
		return nil, err
	}

	res, err := d.Send(ctx, b, outDir)
	if err != nil {
		return res, err
	}

	if len(res.Outcomes) > 0 {
		if err := pcommon.WriteCSVFile(res.Outcomes, filepath.Join(outDir, "outcomes.csv"), delim, logger); err != nil {
			return res, err
		}
	}

	fmt.Fprintf(w, "Batch %s: %d employee(s)\n", res.BatchID, len(res.Outcomes))
	common.PrintOutcomes(w, res.Counts(), res.Failed())
	for _, o := range res.Outcomes {
		if o.Status == batch.StatusNoEmail {
			fmt.Fprintf(w, "  no address: %s %s\n", o.Seq, o.Name)
		}
	}
	return res, nil
}
