// Package models holds the data types shared by the payroll engine, the
// renderers, the address book and the command layer.
package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// TaxKind enumerates the deductions a payroll sheet can carry.
type TaxKind string

const (
	TaxWTax        TaxKind = "W_TAX"
	TaxWithholding TaxKind = "WITHHOLDING"
	TaxPTax        TaxKind = "P_TAX"
)

// TaxOrder is the fixed order taxes appear in on a record.
var TaxOrder = []TaxKind{TaxWTax, TaxWithholding, TaxPTax}

// DisplayName is the label printed on payslips.
func (k TaxKind) DisplayName() string {
	switch k {
	case TaxWTax:
		return "W/Tax"
	case TaxWithholding:
		return "Withholding Tax"
	case TaxPTax:
		return "Percent Tax"
	default:
		return string(k)
	}
}

// TaxEntry is one computed deduction. Rate is a fraction in [0,1].
type TaxEntry struct {
	Kind   TaxKind         `json:"kind" yaml:"kind"`
	Rate   decimal.Decimal `json:"rate" yaml:"rate"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
	// Stated is true when Amount was read from the sheet rather than derived.
	Stated bool `json:"stated" yaml:"stated"`
}

// PeriodAmount holds an employee's hours and earnings for one period.
type PeriodAmount struct {
	Key    string          `json:"key" yaml:"key"`
	Label  string          `json:"label" yaml:"label"`
	Hours  decimal.Decimal `json:"hours" yaml:"hours"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
	// Derived is true when Amount was computed as hours x rate.
	Derived bool `json:"derived" yaml:"derived"`
}

// EmployeeRecord is one fully computed payroll line. It is immutable once
// returned by the calculator.
type EmployeeRecord struct {
	// Row is the zero-based source row, kept for diagnostics.
	Row        int             `json:"row" yaml:"row"`
	Sequence   *int            `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	AccountNo  string          `json:"account_no,omitempty" yaml:"account_no,omitempty"`
	Name       string          `json:"name" yaml:"name"`
	HourlyRate decimal.Decimal `json:"hourly_rate" yaml:"hourly_rate"`

	Periods []PeriodAmount `json:"periods" yaml:"periods"`

	Gross           decimal.Decimal `json:"gross" yaml:"gross"`
	Taxes           []TaxEntry      `json:"taxes" yaml:"taxes"`
	TotalDeductions decimal.Decimal `json:"total_deductions" yaml:"total_deductions"`
	NetPay          decimal.Decimal `json:"net_pay" yaml:"net_pay"`

	// Adjustment is informational (hours x rate or the sheet's adjustment
	// column). It is printed on the payslip but never enters NetPay.
	Adjustment decimal.Decimal `json:"adjustment" yaml:"adjustment"`

	// Figures stated by the sheet itself, when present.
	StatedGross      *decimal.Decimal `json:"stated_gross,omitempty" yaml:"stated_gross,omitempty"`
	StatedDeductions *decimal.Decimal `json:"stated_deductions,omitempty" yaml:"stated_deductions,omitempty"`
	StatedNet        *decimal.Decimal `json:"stated_net,omitempty" yaml:"stated_net,omitempty"`

	GrossMismatch bool `json:"gross_mismatch,omitempty" yaml:"gross_mismatch,omitempty"`
	Discrepancy   bool `json:"discrepancy,omitempty" yaml:"discrepancy,omitempty"`
	NegativeNet   bool `json:"negative_net,omitempty" yaml:"negative_net,omitempty"`

	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	WorkEmail     string `json:"work_email,omitempty" yaml:"work_email,omitempty"`
	PersonalEmail string `json:"personal_email,omitempty" yaml:"personal_email,omitempty"`
}

// Period returns the amounts for a period key.
func (r EmployeeRecord) Period(key string) (PeriodAmount, bool) {
	for _, p := range r.Periods {
		if p.Key == key {
			return p, true
		}
	}
	return PeriodAmount{}, false
}

// Tax returns the entry for a tax kind, if the record carries one.
func (r EmployeeRecord) Tax(kind TaxKind) (TaxEntry, bool) {
	for _, t := range r.Taxes {
		if t.Kind == kind {
			return t, true
		}
	}
	return TaxEntry{}, false
}

// TotalHours sums hours across all periods.
func (r EmployeeRecord) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Periods {
		total = total.Add(p.Hours)
	}
	return total
}

// PrimaryEmail returns the first non-empty of Email, WorkEmail and PersonalEmail.
func (r EmployeeRecord) PrimaryEmail() string {
	for _, e := range []string{r.Email, r.WorkEmail, r.PersonalEmail} {
		if e != "" {
			return e
		}
	}
	return ""
}

// SequenceOr returns the sequence number or fallback when absent.
func (r EmployeeRecord) SequenceOr(fallback int) int {
	if r.Sequence == nil {
		return fallback
	}
	return *r.Sequence
}

// SequenceString is the sequence as text, or "" when absent.
func (r EmployeeRecord) SequenceString() string {
	if r.Sequence == nil {
		return ""
	}
	return strconv.Itoa(*r.Sequence)
}
