// Package report summarises payroll runs as JSON or YAML documents and
// per-employee CSV tables.
package report

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/lezzdif22/payslip/internal/batch"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/payrollparser"
)

// Totals are exact sums over the processed records.
type Totals struct {
	Gross      decimal.Decimal `json:"gross" yaml:"gross"`
	Deductions decimal.Decimal `json:"deductions" yaml:"deductions"`
	Net        decimal.Decimal `json:"net" yaml:"net"`
	Hours      decimal.Decimal `json:"hours" yaml:"hours"`
}

// Stats are display-only figures on net pay.
type Stats struct {
	MeanNet   float64 `json:"mean_net" yaml:"mean_net"`
	MedianNet float64 `json:"median_net" yaml:"median_net"`
	MinNet    float64 `json:"min_net" yaml:"min_net"`
	MaxNet    float64 `json:"max_net" yaml:"max_net"`
	StdDevNet float64 `json:"stddev_net" yaml:"stddev_net"`
}

// RunReport describes one processed payroll sheet.
type RunReport struct {
	BatchID     string                    `json:"batch_id" yaml:"batch_id"`
	Source      string                    `json:"source" yaml:"source"`
	Encoding    string                    `json:"encoding" yaml:"encoding"`
	HeaderRow   int                       `json:"header_row" yaml:"header_row"`
	GeneratedAt time.Time                 `json:"generated_at" yaml:"generated_at"`
	Periods     []models.PeriodDescriptor `json:"periods" yaml:"periods"`
	Incomplete  bool                      `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
	Processed   int                       `json:"processed" yaml:"processed"`
	Skipped     int                       `json:"skipped" yaml:"skipped"`
	Skips       []models.SkipEntry        `json:"skips" yaml:"skips"`
	Flagged     []string                  `json:"flagged,omitempty" yaml:"flagged,omitempty"`
	Totals      Totals                    `json:"totals" yaml:"totals"`
	Stats       Stats                     `json:"stats" yaml:"stats"`
	Outcomes    map[batch.Status]int      `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
}

// NewRunReport builds the report for a batch. A batch whose records were
// not consumed to the end is marked Incomplete.
func NewRunReport(b *payrollparser.Batch, records []models.EmployeeRecord, skips []models.SkipEntry) *RunReport {
	r := &RunReport{
		BatchID:    b.ID,
		Source:     b.Source,
		Encoding:   b.Encoding,
		HeaderRow:  b.HeaderRow,
		Periods:    b.Periods,
		Incomplete: !b.Drained(),
	}
	r.fill(records, skips)
	return r
}

// FromResult builds the report for a generate or send run.
func FromResult(res *batch.Result) *RunReport {
	r := &RunReport{
		BatchID:  res.BatchID,
		Source:   res.Source,
		Encoding: res.Encoding,
		Periods:  res.Periods,
		Outcomes: res.Counts(),
	}
	r.fill(res.Records, res.Skips)
	return r
}

func (r *RunReport) fill(records []models.EmployeeRecord, skips []models.SkipEntry) {
	r.GeneratedAt = time.Now().UTC()
	r.Processed = len(records)
	r.Skipped = len(skips)
	r.Skips = skips
	if r.Skips == nil {
		r.Skips = []models.SkipEntry{}
	}

	nets := make(stats.Float64Data, 0, len(records))
	for _, rec := range records {
		r.Totals.Gross = r.Totals.Gross.Add(rec.Gross)
		r.Totals.Deductions = r.Totals.Deductions.Add(rec.TotalDeductions)
		r.Totals.Net = r.Totals.Net.Add(rec.NetPay)
		r.Totals.Hours = r.Totals.Hours.Add(rec.TotalHours())
		nets = append(nets, rec.NetPay.InexactFloat64())
		if rec.GrossMismatch || rec.Discrepancy || rec.NegativeNet {
			r.Flagged = append(r.Flagged, rec.Name)
		}
	}
	r.Stats = netStats(nets)
}

func netStats(nets stats.Float64Data) Stats {
	if nets.Len() == 0 {
		return Stats{}
	}
	var s Stats
	s.MeanNet, _ = nets.Mean()
	s.MedianNet, _ = nets.Median()
	s.MinNet, _ = nets.Min()
	s.MaxNet, _ = nets.Max()
	s.StdDevNet, _ = nets.StandardDeviation()
	for _, v := range []*float64{&s.MeanNet, &s.MedianNet, &s.StdDevNet} {
		*v, _ = stats.Round(*v, 2)
	}
	return s
}
