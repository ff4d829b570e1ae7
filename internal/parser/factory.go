package parser

import (
	"unicode/utf8"

	"github.com/lezzdif22/payslip/internal/config"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/payrollparser"
)

// OptionsFromConfig maps the payroll and csv sections onto engine options.
func OptionsFromConfig(cfg *config.Config) payrollparser.Options {
	if cfg == nil {
		return payrollparser.Options{}
	}
	opts := payrollparser.Options{
		Marker:    cfg.Payroll.Marker,
		ScanLimit: cfg.Payroll.ScanLimit,
		Encodings: cfg.Payroll.Encodings,
	}
	if r, _ := utf8.DecodeRuneInString(cfg.CSV.Delimiter); r != utf8.RuneError {
		opts.Delimiter = r
	}
	return opts
}

// New returns the payroll engine configured from cfg.
func New(cfg *config.Config, logger logging.Logger) PayrollParser {
	return payrollparser.NewParser(OptionsFromConfig(cfg), logger)
}
