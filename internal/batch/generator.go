package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lezzdif22/payslip/internal/fileutils"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/metrics"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/payrollparser"
	"github.com/lezzdif22/payslip/internal/renderer"
)

// Generator writes one payslip per record of a batch.
type Generator struct {
	renderer renderer.Renderer
	logger   logging.Logger
	metrics  *metrics.Recorder

	// Force re-renders files that already exist.
	Force bool
}

// NewGenerator creates a Generator. rec may be nil.
func NewGenerator(r renderer.Renderer, logger logging.Logger, rec *metrics.Recorder) *Generator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Generator{renderer: r, logger: logger, metrics: rec}
}

// Generate drains b, rendering each record into outDir. A failing record is
// reported in its Outcome and does not stop the run; a cancelled ctx does.
func (g *Generator) Generate(ctx context.Context, b *payrollparser.Batch, outDir string) (*Result, error) {
	return g.run(ctx, b, outDir, func(_ context.Context, _ models.EmployeeRecord, o Outcome) Outcome { return o })
}

type afterRender func(ctx context.Context, rec models.EmployeeRecord, o Outcome) Outcome

func (g *Generator) run(ctx context.Context, b *payrollparser.Batch, outDir string, next afterRender) (*Result, error) {
	if err := fileutils.EnsureDirectoryExists(outDir); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{BatchID: b.ID, Source: b.Source, Encoding: b.Encoding, Periods: b.Periods}

	for rec := range b.Records() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Records = append(res.Records, rec)
		res.Outcomes = append(res.Outcomes, next(ctx, rec, g.render(rec, b.Periods, outDir)))
	}

	res.Skips = b.Skips()
	g.metrics.ObserveRun(b.Processed(), res.Skips, time.Since(start))
	g.logger.Info("Payslips generated",
		logging.F(logging.FieldBatchID, b.ID),
		logging.F(logging.FieldFile, b.Source),
		logging.F(logging.FieldCount, len(res.Outcomes)),
		logging.F(logging.FieldDuration, time.Since(start).String()))
	return res, nil
}

func (g *Generator) render(rec models.EmployeeRecord, periods []models.PeriodDescriptor, outDir string) Outcome {
	path := filepath.Join(outDir, renderer.FileName(rec, g.renderer.Extension()))
	o := Outcome{Name: rec.Name, Seq: rec.SequenceString(), Path: path}

	if !g.Force && fileutils.NonEmptyFile(path) {
		g.logger.Debug("Existing payslip kept", logging.F(logging.FieldOutputFile, path))
		o.Status = StatusExisting
		return o
	}

	if err := g.renderer.Render(rec, periods, path); err != nil {
		g.logger.WithError(err).Error("Failed to render payslip",
			logging.F(logging.FieldEmployee, rec.Name),
			logging.F(logging.FieldOutputFile, path))
		o.Status, o.Error = StatusError, err.Error()
		return o
	}

	g.metrics.DocumentRendered(g.renderer.Extension())
	o.Status = StatusGenerated
	return o
}

// RenderOne renders a single record outside a batch run.
func (g *Generator) RenderOne(rec models.EmployeeRecord, periods []models.PeriodDescriptor, outDir string) (Outcome, error) {
	if err := fileutils.EnsureDirectoryExists(outDir); err != nil {
		return Outcome{}, err
	}
	o := g.render(rec, periods, outDir)
	if o.Status == StatusError {
		return o, fmt.Errorf("render %s: %s", rec.Name, o.Error)
	}
	return o, nil
}
