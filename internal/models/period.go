package models

// PeriodDescriptor identifies one pay-period column of a payroll sheet.
type PeriodDescriptor struct {
	// Index is the zero-based column of the period's hours value.
	Index int `json:"index" yaml:"index"`
	// AmountIndex is the companion amount column, or -1 when the sheet only
	// carries hours for this period.
	AmountIndex int `json:"amount_index" yaml:"amount_index"`
	// Label is the header text exactly as it appears in the sheet.
	Label string `json:"label" yaml:"label"`
	// Key is the normalised period text ("sept. 1-15"), stable across
	// spacing and dash variations.
	Key string `json:"key" yaml:"key"`
}

// HasAmountColumn reports whether the sheet declares an amount column for
// this period.
func (p PeriodDescriptor) HasAmountColumn() bool {
	return p.AmountIndex >= 0
}
