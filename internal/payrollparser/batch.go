// Package payrollparser reads variable-layout payroll sheets: it finds the
// header, discovers the pay-period columns, assembles employee rows and
// computes earnings, deductions and net pay.
package payrollparser

import (
	"errors"
	"io"
	"iter"
	"sync"

	"github.com/google/uuid"
	"github.com/lezzdif22/payslip/internal/loader"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/parsererror"
)

const (
	// DefaultMarker identifies the header row.
	DefaultMarker = "per hour"
	// DefaultScanLimit bounds the header search.
	DefaultScanLimit = 20
)

// Options configures a Parser. Zero values select the defaults.
type Options struct {
	Marker    string
	ScanLimit int
	Encodings []string
	Delimiter rune
}

// Parser runs the full pipeline. It keeps no per-run state, so one Parser
// can serve concurrent runs.
type Parser struct {
	loader     *loader.Loader
	marker     string
	scanLimit  int
	calculator *Calculator
	logger     logging.Logger
}

// NewParser creates a Parser.
func NewParser(opts Options, logger logging.Logger) *Parser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = DefaultScanLimit
	}
	return &Parser{
		loader:     loader.New(opts.Encodings, opts.Delimiter),
		marker:     opts.Marker,
		scanLimit:  opts.ScanLimit,
		calculator: NewCalculator(logger),
		logger:     logger,
	}
}

// Sheet is a decoded sheet with its header and periods resolved.
type Sheet struct {
	Source    string                    `json:"source" yaml:"source"`
	Encoding  string                    `json:"encoding" yaml:"encoding"`
	HeaderRow int                       `json:"header_row" yaml:"header_row"`
	Headers   []string                  `json:"headers" yaml:"headers"`
	Periods   []models.PeriodDescriptor `json:"periods" yaml:"periods"`
	Layout    Layout                    `json:"-" yaml:"-"`

	rows [][]string
}

// DetectPeriods loads path and stops after period detection.
func (p *Parser) DetectPeriods(path string) (*Sheet, error) {
	res, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return p.prepare(res, path)
}

// Run processes the sheet at path. Fatal problems (unreadable file,
// unknown encoding, missing header) are returned as errors; row problems
// surface through Batch.Skips.
func (p *Parser) Run(path string) (*Batch, error) {
	res, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return p.batch(res, path)
}

// Parse is Run for content read from r; name identifies it in logs and
// errors.
func (p *Parser) Parse(r io.Reader, name string) (*Batch, error) {
	res, err := p.loader.LoadReader(r, name)
	if err != nil {
		return nil, err
	}
	return p.batch(res, name)
}

func (p *Parser) prepare(res *loader.Result, source string) (*Sheet, error) {
	log := p.logger.WithFields(logging.F(logging.FieldFile, source), logging.F(logging.FieldEncoding, res.Encoding))

	loc, err := LocateHeader(res.Rows, p.marker, p.scanLimit)
	if err != nil {
		if hnf, ok := err.(*parsererror.HeaderNotFoundError); ok {
			hnf.FilePath = source
		}
		return nil, err
	}

	periods := DetectPeriods(loc.Merged, p.marker)
	if len(periods) == 0 {
		log.Warn("No pay-period columns detected", logging.F(logging.FieldHeaderRow, loc.Index))
	} else {
		log.Debug("Detected pay periods",
			logging.F(logging.FieldHeaderRow, loc.Index),
			logging.F(logging.FieldPeriodCount, len(periods)))
	}

	return &Sheet{
		Source:    source,
		Encoding:  res.Encoding,
		HeaderRow: loc.Index,
		Headers:   loc.Merged,
		Periods:   periods,
		Layout:    ResolveLayout(loc.Merged, periods, p.marker),
		rows:      res.Rows,
	}, nil
}

func (p *Parser) batch(res *loader.Result, source string) (*Batch, error) {
	sheet, err := p.prepare(res, source)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	log := p.logger.WithFields(logging.F(logging.FieldBatchID, id), logging.F(logging.FieldFile, source))
	return &Batch{
		Sheet:      *sheet,
		ID:         id,
		assembler:  NewAssembler(sheet.Layout, sheet.Periods, log),
		calculator: p.calculator,
		logger:     log,
	}, nil
}

// Batch is the result of one run. Records are produced lazily and only
// once: the sequence returned by Records can be consumed a single time, and
// a second call yields nothing. Skips grows while records are consumed and
// is complete once the sequence has been drained.
type Batch struct {
	Sheet
	ID string `json:"batch_id" yaml:"batch_id"`

	assembler  *Assembler
	calculator *Calculator
	logger     logging.Logger

	mu        sync.Mutex
	consumed  bool
	drained   bool
	processed int
	skips     []models.SkipEntry
}

// Records returns the single-pass sequence of computed records.
func (b *Batch) Records() iter.Seq[models.EmployeeRecord] {
	return func(yield func(models.EmployeeRecord) bool) {
		b.mu.Lock()
		if b.consumed {
			b.mu.Unlock()
			return
		}
		b.consumed = true
		b.mu.Unlock()

		for i := b.HeaderRow + 1; i < len(b.rows); i++ {
			rec, ok := b.next(i)
			if !ok {
				continue
			}
			if !yield(rec) {
				return
			}
		}

		b.mu.Lock()
		b.drained = true
		b.mu.Unlock()
		b.logger.Info("Payroll sheet processed",
			logging.F(logging.FieldCount, b.Processed()),
			logging.F("skipped", len(b.Skips())))
	}
}

func (b *Batch) next(i int) (models.EmployeeRecord, bool) {
	draft, skip := b.assembler.AssembleRow(i, b.rows[i])
	if skip != nil {
		b.addSkip(*skip)
		return models.EmployeeRecord{}, false
	}
	if draft == nil {
		return models.EmployeeRecord{}, false
	}

	rec, err := b.calculator.Compute(*draft)
	if err != nil {
		entry := models.SkipEntry{Row: i, Reason: err.Error(), Name: draft.Name}
		var re *models.RowError
		if errors.As(err, &re) {
			entry.Reason, entry.Detail = re.Reason, re.Detail
		}
		b.addSkip(entry)
		return models.EmployeeRecord{}, false
	}

	b.mu.Lock()
	b.processed++
	b.mu.Unlock()
	return rec, true
}

func (b *Batch) addSkip(s models.SkipEntry) {
	b.logger.Warn("Skipping row",
		logging.F(logging.FieldRow, s.Row+1),
		logging.F(logging.FieldReason, s.Reason),
		logging.F(logging.FieldEmployee, s.Name))
	b.mu.Lock()
	b.skips = append(b.skips, s)
	b.mu.Unlock()
}

// Skips returns the skip entries recorded so far.
func (b *Batch) Skips() []models.SkipEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.SkipEntry, len(b.skips))
	copy(out, b.skips)
	return out
}

// Processed is the number of records yielded so far.
func (b *Batch) Processed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.processed
}

// Drained reports whether the record sequence ran to completion.
func (b *Batch) Drained() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drained
}

// Collect drains the records into a slice and returns them with the
// complete skip list.
func (b *Batch) Collect() ([]models.EmployeeRecord, []models.SkipEntry) {
	var records []models.EmployeeRecord
	for rec := range b.Records() {
		records = append(records, rec)
	}
	return records, b.Skips()
}
