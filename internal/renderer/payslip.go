package renderer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lezzdif22/payslip/internal/currencyutils"
	"github.com/lezzdif22/payslip/internal/models"
)

// Placement says on which half-month the tax deductions are shown.
type Placement string

const (
	Placement15   Placement = "15"
	Placement30   Placement = "30"
	PlacementBoth Placement = "both"
)

// ParsePlacement accepts "15", "30" or "both" (case-insensitive). An empty
// value means both.
func ParsePlacement(s string) (Placement, error) {
	switch p := Placement(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PlacementBoth, nil
	case Placement15, Placement30, PlacementBoth:
		return p, nil
	default:
		return "", fmt.Errorf("invalid placement %q: expected 15, 30 or both", s)
	}
}

// PayLine is one period row of a payslip.
type PayLine struct {
	Label  string
	Hours  decimal.Decimal
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// HalfMonth holds the deductions shown against one half of the month.
type HalfMonth struct {
	Withholding   decimal.Decimal
	PercentageTax decimal.Decimal
	Total         decimal.Decimal
}

// Payslip is the render-ready view of one EmployeeRecord. Renderers read
// it and never recompute payroll figures themselves.
type Payslip struct {
	Title       string
	Institution string

	Seq       string
	AccountNo string
	Name      string
	Rate      decimal.Decimal

	Lines      []PayLine
	TotalHours decimal.Decimal
	Gross      decimal.Decimal
	Adjustment decimal.Decimal

	WithholdingRate   decimal.Decimal
	PercentageTaxRate decimal.Decimal
	First             HalfMonth
	Second            HalfMonth
	TotalDeductions   decimal.Decimal
	NetPay            decimal.Decimal
}

// NewPayslip builds the view for rec. Period lines follow the order of
// periods and pair with the record's periods by position, so repeated
// labels keep their own figures. Periods the record has no entry for are
// left out.
func NewPayslip(rec models.EmployeeRecord, periods []models.PeriodDescriptor, placement Placement) Payslip {
	p := Payslip{
		Seq:             rec.SequenceString(),
		AccountNo:       rec.AccountNo,
		Name:            rec.Name,
		Rate:            rec.HourlyRate,
		TotalHours:      rec.TotalHours(),
		Gross:           rec.Gross,
		Adjustment:      rec.Adjustment,
		TotalDeductions: rec.TotalDeductions,
		NetPay:          rec.NetPay,
	}

	for i, d := range periods {
		pa, ok := periodAt(rec, i, d.Key)
		if !ok {
			continue
		}
		p.Lines = append(p.Lines, PayLine{Label: d.Label, Hours: pa.Hours, Rate: rec.HourlyRate, Amount: pa.Amount})
	}

	withholding := decimal.Zero
	for _, kind := range []models.TaxKind{models.TaxWTax, models.TaxWithholding} {
		if t, ok := rec.Tax(kind); ok {
			withholding = withholding.Add(t.Amount)
			if p.WithholdingRate.IsZero() {
				p.WithholdingRate = t.Rate
			}
		}
	}
	percentage := decimal.Zero
	if t, ok := rec.Tax(models.TaxPTax); ok {
		percentage = t.Amount
		p.PercentageTaxRate = t.Rate
	}

	w15, w30 := split(withholding, placement)
	p15, p30 := split(percentage, placement)
	p.First = HalfMonth{Withholding: w15, PercentageTax: p15, Total: w15.Add(p15)}
	p.Second = HalfMonth{Withholding: w30, PercentageTax: p30, Total: w30.Add(p30)}
	return p
}

func periodAt(rec models.EmployeeRecord, i int, key string) (models.PeriodAmount, bool) {
	if i < len(rec.Periods) && rec.Periods[i].Key == key {
		return rec.Periods[i], true
	}
	return rec.Period(key)
}

// split divides v between the two halves. For "both" the first half is
// rounded and the second takes the remainder, so the halves always sum to v.
func split(v decimal.Decimal, placement Placement) (decimal.Decimal, decimal.Decimal) {
	switch placement {
	case Placement15:
		return v, decimal.Zero
	case Placement30:
		return decimal.Zero, v
	default:
		first := currencyutils.Round(v.Div(decimal.NewFromInt(2)))
		return first, v.Sub(first)
	}
}

// PeriodLabels joins the period labels for headers.
func (p Payslip) PeriodLabels() string {
	labels := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		if l.Label != "" {
			labels = append(labels, l.Label)
		}
	}
	return strings.Join(labels, ", ")
}

// WithholdingLabel is e.g. "Withholding Tax (15th) 10%".
func (p Payslip) WithholdingLabel(half string) string {
	return labelWithRate("Withholding Tax ("+half+")", p.WithholdingRate)
}

// PercentageTaxLabel is e.g. "Percentage Tax (30th) 3%".
func (p Payslip) PercentageTaxLabel(half string) string {
	return labelWithRate("Percentage Tax ("+half+")", p.PercentageTaxRate)
}

func labelWithRate(label string, rate decimal.Decimal) string {
	if rate.IsPositive() {
		return label + " " + currencyutils.FormatPercent(rate)
	}
	return label
}
