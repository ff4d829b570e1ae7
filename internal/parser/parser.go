// Package parser declares the payroll engine contracts used by the
// commands and the HTTP server, and builds the engine from configuration.
package parser

import (
	"io"

	"github.com/lezzdif22/payslip/internal/payrollparser"
)

// PeriodDetector loads a sheet and stops after header and period
// detection.
type PeriodDetector interface {
	DetectPeriods(path string) (*payrollparser.Sheet, error)
}

// BatchRunner runs the full pipeline on a file.
type BatchRunner interface {
	Run(path string) (*payrollparser.Batch, error)
}

// ReaderParser runs the full pipeline on an in-memory upload.
type ReaderParser interface {
	Parse(r io.Reader, name string) (*payrollparser.Batch, error)
}

// PayrollParser is the whole engine.
type PayrollParser interface {
	PeriodDetector
	BatchRunner
	ReaderParser
}

var _ PayrollParser = (*payrollparser.Parser)(nil)
