package models

import "fmt"

// Skip reasons.
const (
	ReasonMissingName    = "missing name"
	ReasonInvalidRate    = "invalid rate"
	ReasonInvalidTaxRate = "invalid tax rate"
	ReasonInvalidAmount  = "invalid amount"
	ReasonNotDataRow     = "not a data row"
)

// SkipEntry records a row that produced no EmployeeRecord.
type SkipEntry struct {
	Row    int    `json:"row" yaml:"row" csv:"row"`
	Reason string `json:"reason" yaml:"reason" csv:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty" csv:"detail"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty" csv:"name"`
}

func (s SkipEntry) String() string {
	// rows are reported one-based, as a spreadsheet shows them
	msg := fmt.Sprintf("row %d: %s", s.Row+1, s.Reason)
	if s.Name != "" {
		msg += fmt.Sprintf(" (%s)", s.Name)
	}
	if s.Detail != "" {
		msg += ": " + s.Detail
	}
	return msg
}

// RowError is returned by the calculator for rows that cannot be computed.
type RowError struct {
	Reason string
	Detail string
}

func (e *RowError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return e.Reason + ": " + e.Detail
}
