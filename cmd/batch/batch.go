// Package batch handles batch processing of payroll sheets
package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lezzdif22/payslip/cmd/common"
	"github.com/lezzdif22/payslip/cmd/root"
	"github.com/lezzdif22/payslip/internal/batch"
	pcommon "github.com/lezzdif22/payslip/internal/common"
	"github.com/lezzdif22/payslip/internal/fileutils"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/parser"
)

var recursive bool

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch [input_dir]",
	Short: "Batch process payroll sheets from a directory",
	Long: `Batch process every CSV payroll sheet of an input directory and render the
payslips of each sheet into its own sub-directory of the output directory.

Sheets are processed in parallel (batch.parallelism). A sheet that cannot be
read is reported and the other sheets continue.

Example:
  payslip batch -i input_dir/ -o output_dir/
  payslip batch input_dir/ --recursive --parallelism 8`,
	Args: cobra.MaximumNArgs(1),
	Run:  batchFunc,
}

func init() {
	root.AddRenderFlags(Cmd)
	Cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Also process sub-directories")
	Cmd.Flags().Int("parallelism", 0, "Sheets processed at the same time")
}

// Options controls Run.
type Options struct {
	Recursive   bool
	Parallelism int
	Delimiter   rune
}

func batchFunc(cmd *cobra.Command, args []string) {
	logger := root.GetLogrusAdapter()
	inputDir, err := common.InputPath(args, root.SharedFlags.Input)
	if err != nil {
		logger.Fatalf("Input directory must be specified: %v", err)
	}
	if !fileutils.DirectoryExists(inputDir) {
		logger.Fatalf("Input is not a directory: %s", inputDir)
	}

	c := root.GetContainer()
	cfg := c.GetConfig()
	outDir := common.OutputDir(root.SharedFlags.Output, cfg.Output.Directory)
	opts := Options{
		Recursive:   recursive,
		Parallelism: cfg.Batch.Parallelism,
		Delimiter:   pcommon.Delimiter(cfg.CSV.Delimiter),
	}

	results, err := Run(cmd.Context(), common.Stdout, c.GetParser(), c.NewGenerator(), inputDir, outDir, opts, logger)
	if err != nil {
		logger.Fatalf("Error during batch processing: %v", err)
	}
	if _, failedFiles := batch.Totals(results); failedFiles > 0 {
		logger.Fatalf("%d of %d sheet(s) failed", failedFiles, len(results))
	}
}

// Run renders the payslips of every sheet in inputDir.
func Run(ctx context.Context, w io.Writer, p parser.BatchRunner, gen *batch.Generator,
	inputDir, outDir string, opts Options, logger logging.Logger) ([]batch.FileResult, error) {
	files, err := fileutils.ListFilesWithExtension(inputDir, ".csv", opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("No payroll sheets found in input directory", logging.F(logging.FieldFile, inputDir))
		return nil, nil
	}
	logger.Info("Found files for processing", logging.F(logging.FieldCount, len(files)))

	results, err := batch.RunFiles(ctx, files, opts.Parallelism, logger, func(ctx context.Context, path string) (*batch.Result, error) {
		b, err := common.RunFile(p, path, false, logger)
		if err != nil {
			return nil, err
		}
		sheetDir := filepath.Join(outDir, sheetName(inputDir, path))
		res, err := gen.Generate(ctx, b, sheetDir)
		if err != nil {
			return res, err
		}
		if len(res.Outcomes) > 0 {
			err = pcommon.WriteCSVFile(res.Outcomes, filepath.Join(sheetDir, "outcomes.csv"), opts.Delimiter, logger)
		}
		return res, err
	})

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s: FAILED %v\n", r.Path, r.Err)
			continue
		}
		if r.Result == nil {
			continue
		}
		fmt.Fprintf(w, "%s: %d payslip(s), %d skipped row(s)\n", r.Path, len(r.Result.Outcomes), len(r.Result.Skips))
	}
	counts, failedFiles := batch.Totals(results)
	fmt.Fprintf(w, "Processed %d sheet(s), %d failed\n", len(results), failedFiles)
	common.PrintOutcomes(w, counts, nil)

	return results, err
}

// sheetName derives the per-sheet output directory from its path relative
// to the input directory.
func sheetName(inputDir, path string) string {
	rel, err := filepath.Rel(inputDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
}
