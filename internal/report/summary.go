package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/lezzdif22/payslip/internal/models"
)

// SummaryRow is one line of the per-employee summary CSV.
type SummaryRow struct {
	Seq             string `csv:"seq"`
	AccountNo       string `csv:"account_no"`
	Name            string `csv:"name"`
	Rate            string `csv:"rate"`
	Periods         string `csv:"periods"`
	TotalHours      string `csv:"total_hours"`
	Gross           string `csv:"gross"`
	WTax            string `csv:"w_tax"`
	Withholding     string `csv:"withholding"`
	PTax            string `csv:"p_tax"`
	TotalDeductions string `csv:"total_deductions"`
	NetPay          string `csv:"net_pay"`
	Flags           string `csv:"flags"`
	Email           string `csv:"email"`
}

// SummaryRows flattens records; period hours are listed as
// "label=hours" pairs in sheet order.
func SummaryRows(records []models.EmployeeRecord, periods []models.PeriodDescriptor) []*SummaryRow {
	rows := make([]*SummaryRow, 0, len(records))
	for _, rec := range records {
		var hours []string
		for _, d := range periods {
			if p, ok := rec.Period(d.Key); ok {
				hours = append(hours, fmt.Sprintf("%s=%s", d.Label, p.Hours.String()))
			}
		}
		rows = append(rows, &SummaryRow{
			Seq:             rec.SequenceString(),
			AccountNo:       rec.AccountNo,
			Name:            rec.Name,
			Rate:            rec.HourlyRate.StringFixed(2),
			Periods:         strings.Join(hours, "; "),
			TotalHours:      rec.TotalHours().String(),
			Gross:           rec.Gross.StringFixed(2),
			WTax:            taxAmount(rec, models.TaxWTax),
			Withholding:     taxAmount(rec, models.TaxWithholding),
			PTax:            taxAmount(rec, models.TaxPTax),
			TotalDeductions: rec.TotalDeductions.StringFixed(2),
			NetPay:          rec.NetPay.StringFixed(2),
			Flags:           flags(rec),
			Email:           rec.PrimaryEmail(),
		})
	}
	return rows
}

// WriteSummaryCSV writes one line per record.
func WriteSummaryCSV(w io.Writer, records []models.EmployeeRecord, periods []models.PeriodDescriptor) error {
	if err := gocsv.Marshal(SummaryRows(records, periods), w); err != nil {
		return fmt.Errorf("failed to write summary CSV: %w", err)
	}
	return nil
}

func taxAmount(rec models.EmployeeRecord, kind models.TaxKind) string {
	if t, ok := rec.Tax(kind); ok {
		return t.Amount.StringFixed(2)
	}
	return ""
}

func flags(rec models.EmployeeRecord) string {
	var out []string
	if rec.GrossMismatch {
		out = append(out, "gross_mismatch")
	}
	if rec.Discrepancy {
		out = append(out, "discrepancy")
	}
	if rec.NegativeNet {
		out = append(out, "negative_net")
	}
	return strings.Join(out, "|")
}
