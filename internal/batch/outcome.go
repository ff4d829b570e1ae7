// Package batch renders and dispatches payslips for the records of one or
// more payroll sheets.
package batch

import (
	"sort"

	"github.com/lezzdif22/payslip/internal/models"
)

// Status is the per-employee outcome of a generate or send run.
type Status string

const (
	StatusGenerated Status = "generated"
	StatusExisting  Status = "skipped:existing"
	StatusNoPDF     Status = "skipped:no_pdf"
	StatusNoEmail   Status = "skipped:no_email"
	StatusDryRun    Status = "dry_run"
	StatusSent      Status = "sent"
	StatusError     Status = "error"
)

// Outcome is what happened to one employee's payslip.
type Outcome struct {
	Name   string `json:"name" yaml:"name" csv:"name"`
	Seq    string `json:"seq" yaml:"seq" csv:"seq"`
	Path   string `json:"path" yaml:"path" csv:"path"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty" csv:"email"`
	Status Status `json:"status" yaml:"status" csv:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty" csv:"error"`
}

// Result collects everything a run produced for one sheet.
type Result struct {
	BatchID  string                    `json:"batch_id" yaml:"batch_id"`
	Source   string                    `json:"source" yaml:"source"`
	Encoding string                    `json:"encoding" yaml:"encoding"`
	Periods  []models.PeriodDescriptor `json:"periods" yaml:"periods"`
	Outcomes []Outcome                 `json:"outcomes" yaml:"outcomes"`
	Records  []models.EmployeeRecord   `json:"records" yaml:"records"`
	Skips    []models.SkipEntry        `json:"skips" yaml:"skips"`
}

// Counts tallies outcomes by status.
func (r *Result) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// Failed returns the outcomes with StatusError or StatusNoPDF, sorted by
// sequence then name.
func (r *Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusError || o.Status == StatusNoPDF {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].Name < out[j].Name
	})
	return out
}
