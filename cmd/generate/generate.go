// Package generate renders one payslip per employee of a payroll sheet.
package generate

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
	"github.com/lezzdif22/payslip/internal/payrollparser"
	"github.com/lezzdif22/payslip/internal/report"
)

var (
	reportFormat string
	outcomesCSV  bool
	onlySeq      int
)

// Cmd represents the generate command
var Cmd = &cobra.Command{
	Use:   "generate [file.csv]",
	Short: "Render one payslip per employee",
	Long: `Run the payroll engine on a sheet and render one payslip per employee into
the output directory. Existing non-empty payslips are kept unless --force is given.

Example:
  payslip generate payroll_october.csv -o payslips/
  payslip generate payroll_october.csv --format xlsx --template template.xlsx
  payslip generate payroll_october.csv --seq 12 --force`,
	Args: cobra.MaximumNArgs(1),
	Run:  generateFunc,
}

func init() {
	root.AddRenderFlags(Cmd)
	Cmd.Flags().StringVar(&reportFormat, "report", "", "Write a run report next to the payslips (json or yaml)")
	Cmd.Flags().BoolVar(&outcomesCSV, "outcomes", false, "Write outcomes.csv next to the payslips")
	Cmd.Flags().IntVar(&onlySeq, "seq", 0, "Render only the employee with this sequence number")
}

// Options controls Run.
type Options struct {
	Validate     bool
	ReportFormat string
	OutcomesCSV  bool
	Delimiter    rune
	// Seq, when positive, renders only that employee.
	Seq int
}

func generateFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	path, err := common.InputPath(args, root.SharedFlags.Input)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	c := root.GetContainer()
	cfg := c.GetConfig()
	opts := Options{
		Validate:     root.SharedFlags.Validate,
		ReportFormat: reportFormat,
		OutcomesCSV:  outcomesCSV,
		Delimiter:    pcommon.Delimiter(cfg.CSV.Delimiter),
		Seq:          onlySeq,
	}
	outDir := common.OutputDir(root.SharedFlags.Output, cfg.Output.Directory)

	res, err := Run(cmd.Context(), c.GetParser(), c.NewGenerator(), c.GetReportGenerator(), path, outDir, opts, logger)
	if err != nil {
		logger.Fatalf("Error generating payslips: %v", err)
	}
	common.PrintOutcomes(common.Stdout, res.Counts(), res.Failed())
	if failed := res.Failed(); len(failed) > 0 {
		logger.Fatalf("%d payslip(s) could not be rendered", len(failed))
	}
}

// Run renders the payslips of one sheet into outDir.
func Run(ctx context.Context, p parser.BatchRunner, gen *batch.Generator, reports *report.ReportGenerator,
	path, outDir string, opts Options, logger logging.Logger) (*batch.Result, error) {
	b, err := common.RunFile(p, path, opts.Validate, logger)
	if err != nil {
		return nil, err
	}

	var res *batch.Result
	if opts.Seq > 0 {
		res, err = renderOne(ctx, gen, b, outDir, opts.Seq)
	} else {
		res, err = gen.Generate(ctx, b, outDir)
	}
	if err != nil {
		return res, err
	}

	if err := writeExtras(reports, res, outDir, opts, logger); err != nil {
		return res, err
	}
	return res, nil
}

func renderOne(ctx context.Context, gen *batch.Generator, b *payrollparser.Batch, outDir string, seq int) (*batch.Result, error) {
	res := &batch.Result{BatchID: b.ID, Source: b.Source, Encoding: b.Encoding, Periods: b.Periods}
	records, skips := b.Collect()
	res.Skips = skips
	for _, rec := range records {
		if rec.SequenceOr(-1) != seq {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		o, err := gen.RenderOne(rec, b.Periods, outDir)
		res.Records = append(res.Records, rec)
		res.Outcomes = append(res.Outcomes, o)
		if err != nil {
			return res, err
		}
	}
	if len(res.Outcomes) == 0 {
		return res, fmt.Errorf("no employee with sequence %d in %s", seq, filepath.Base(b.Source))
	}
	return res, nil
}

func writeExtras(reports *report.ReportGenerator, res *batch.Result, outDir string, opts Options, logger logging.Logger) error {
	if opts.ReportFormat != "" {
		path := common.ReportPath(outDir, res.Source, opts.ReportFormat)
		if err := common.WriteReport(io.Discard, reports, report.FromResult(res), opts.ReportFormat, path); err != nil {
			return err
		}
		logger.Info("Run report written", logging.F(logging.FieldOutputFile, path))
	}
	if opts.OutcomesCSV && len(res.Outcomes) > 0 {
		if err := pcommon.WriteCSVFile(res.Outcomes, filepath.Join(outDir, "outcomes.csv"), opts.Delimiter, logger); err != nil {
			return err
		}
	}
	return nil
}
