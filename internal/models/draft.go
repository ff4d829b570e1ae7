package models

import "github.com/shopspring/decimal"

// Draft is a row that passed assembly but has not been computed yet.
// Summary cells are kept as raw text; the calculator decides how to read them.
type Draft struct {
	Row        int
	Sequence   *int
	AccountNo  string
	Name       string
	HourlyRate decimal.Decimal
	Periods    []PeriodInput

	Email         string
	WorkEmail     string
	PersonalEmail string

	Summary SummaryCells
}

// PeriodInput is the raw period data of a draft. Amount is nil when the
// sheet has no amount value for the period.
type PeriodInput struct {
	Key    string
	Label  string
	Hours  decimal.Decimal
	Amount *decimal.Decimal
}

// SummaryCells are the optional totals and tax columns of a row.
type SummaryCells struct {
	AmountEarned     string
	NetAmountEarned  string
	AdjustmentHours  string
	AdjustmentAmount string
	WTaxRate         string
	WithholdingTax   string
	PTaxRate         string
	PercentTax       string
	TotalDeductions  string
	NetReceived      string
}
