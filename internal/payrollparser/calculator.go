package payrollparser

import (
	"fmt"

	"github.com/lezzdif22/payslip/internal/currencyutils"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/shopspring/decimal"
)

// Calculator computes earnings and deductions for drafts. It holds no state
// besides its logger and may be shared between goroutines.
type Calculator struct {
	logger logging.Logger
}

// NewCalculator creates a Calculator.
func NewCalculator(logger logging.Logger) *Calculator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Calculator{logger: logger}
}

// Compute produces the final record for a draft.
//
// Gross is the sum of period amounts, each being the sheet's amount when
// present and hours x rate otherwise. Each tax takes its amount from the
// sheet when given, else gross x rate. Net pay is gross minus the sum of
// the taxes and may be negative. A tax rate outside 0..100% or an unreadable
// amount outside the period columns yields a *models.RowError.
func (c *Calculator) Compute(d models.Draft) (models.EmployeeRecord, error) {
	rec := models.EmployeeRecord{
		Row:           d.Row,
		Sequence:      d.Sequence,
		AccountNo:     d.AccountNo,
		Name:          d.Name,
		HourlyRate:    d.HourlyRate,
		Periods:       make([]models.PeriodAmount, 0, len(d.Periods)),
		Email:         d.Email,
		WorkEmail:     d.WorkEmail,
		PersonalEmail: d.PersonalEmail,
	}

	gross := decimal.Zero
	for _, p := range d.Periods {
		pa := models.PeriodAmount{Key: p.Key, Label: p.Label, Hours: p.Hours}
		if p.Amount != nil {
			pa.Amount = *p.Amount
		} else {
			pa.Amount = currencyutils.Round(p.Hours.Mul(d.HourlyRate))
			pa.Derived = true
		}
		gross = gross.Add(pa.Amount)
		rec.Periods = append(rec.Periods, pa)
	}
	rec.Gross = gross

	taxes, err := c.taxes(d.Summary, gross)
	if err != nil {
		return models.EmployeeRecord{}, err
	}
	rec.Taxes = taxes

	total := decimal.Zero
	for _, t := range taxes {
		total = total.Add(t.Amount)
	}
	rec.TotalDeductions = total
	rec.NetPay = gross.Sub(total)
	rec.NegativeNet = rec.NetPay.IsNegative()

	if rec.Adjustment, err = c.adjustment(d); err != nil {
		return models.EmployeeRecord{}, err
	}
	if err = c.compareStated(&rec, d.Summary); err != nil {
		return models.EmployeeRecord{}, err
	}
	return rec, nil
}

func (c *Calculator) taxes(s models.SummaryCells, gross decimal.Decimal) ([]models.TaxEntry, error) {
	wRate, err := c.rate("W/TAX RATE", s.WTaxRate)
	if err != nil {
		return nil, err
	}
	entries := map[models.TaxKind]models.TaxEntry{
		models.TaxWTax:        {Kind: models.TaxWTax, Rate: wRate},
		models.TaxWithholding: {Kind: models.TaxWithholding},
	}

	// W/HOLDING TAX holds either the computed W/TAX amount or, in some
	// sheets, a separate withholding percentage.
	if !currencyutils.IsBlank(s.WithholdingTax) && currencyutils.HasPercent(s.WithholdingTax) {
		whRate, err := c.rate("W/HOLDING TAX", s.WithholdingTax)
		if err != nil {
			return nil, err
		}
		entries[models.TaxWithholding] = models.TaxEntry{
			Kind:   models.TaxWithholding,
			Rate:   whRate,
			Amount: currencyutils.CalculateTaxAmount(gross, whRate),
		}
		w := entries[models.TaxWTax]
		w.Amount = currencyutils.CalculateTaxAmount(gross, wRate)
		entries[models.TaxWTax] = w
	} else {
		w := entries[models.TaxWTax]
		if w.Amount, w.Stated, err = statedOrDerived("W/HOLDING TAX", s.WithholdingTax, gross, wRate); err != nil {
			return nil, err
		}
		entries[models.TaxWTax] = w
	}

	pRate, err := c.rate("P-TAX RATE", s.PTaxRate)
	if err != nil {
		return nil, err
	}
	p := models.TaxEntry{Kind: models.TaxPTax, Rate: pRate}
	if p.Amount, p.Stated, err = statedOrDerived("PERCENT TAX", s.PercentTax, gross, pRate); err != nil {
		return nil, err
	}
	entries[models.TaxPTax] = p

	var out []models.TaxEntry
	for _, kind := range models.TaxOrder {
		e := entries[kind]
		if e.Rate.IsZero() && e.Amount.IsZero() {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Calculator) rate(column, raw string) (decimal.Decimal, error) {
	r, err := currencyutils.ParsePercent(raw)
	if err != nil {
		return decimal.Zero, &models.RowError{Reason: models.ReasonInvalidTaxRate, Detail: fmt.Sprintf("%s %q", column, raw)}
	}
	if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, &models.RowError{Reason: models.ReasonInvalidTaxRate, Detail: fmt.Sprintf("%s %q out of range", column, raw)}
	}
	return r, nil
}

// statedOrDerived returns the sheet's amount when the cell is filled and
// gross x rate when it is blank.
func statedOrDerived(column, raw string, gross, rate decimal.Decimal) (decimal.Decimal, bool, error) {
	stated, err := optionalAmount(column, raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	if stated != nil {
		return *stated, true, nil
	}
	return currencyutils.CalculateTaxAmount(gross, rate), false, nil
}

func (c *Calculator) adjustment(d models.Draft) (decimal.Decimal, error) {
	amount, err := optionalAmount("ADJUSTMENT AMOUNT", d.Summary.AdjustmentAmount)
	if err != nil {
		return decimal.Zero, err
	}
	hours, err := optionalAmount("ADJUSTMENT HOURS", d.Summary.AdjustmentHours)
	if err != nil {
		return decimal.Zero, err
	}
	switch {
	case amount != nil:
		return *amount, nil
	case hours != nil:
		return currencyutils.Round(hours.Mul(d.HourlyRate)), nil
	}
	return decimal.Zero, nil
}

// compareStated keeps the sheet's own totals next to the computed ones and
// flags disagreements. Nothing is corrected.
func (c *Calculator) compareStated(rec *models.EmployeeRecord, s models.SummaryCells) error {
	var err error
	if rec.StatedGross, err = optionalAmount("AMOUNT EARNED", s.AmountEarned); err != nil {
		return err
	}
	if rec.StatedDeductions, err = optionalAmount("TOTAL TAX DEDUCTIONS", s.TotalDeductions); err != nil {
		return err
	}
	if rec.StatedNet, err = optionalAmount("NET AMOUNT RECEIVED", s.NetReceived); err != nil {
		return err
	}

	if rec.StatedGross != nil && !rec.StatedGross.Equal(rec.Gross) {
		rec.GrossMismatch = true
	}
	if rec.StatedDeductions != nil && !rec.StatedDeductions.Equal(rec.TotalDeductions) {
		rec.Discrepancy = true
	}
	if rec.StatedNet != nil && !rec.StatedNet.Equal(rec.NetPay) {
		rec.Discrepancy = true
	}
	if rec.GrossMismatch || rec.Discrepancy {
		c.logger.Debug("Computed totals differ from the sheet",
			logging.F(logging.FieldRow, rec.Row), logging.F(logging.FieldEmployee, rec.Name))
	}
	return nil
}

// optionalAmount parses a non-period amount cell. Blank cells give nil and
// unreadable ones an invalid amount *models.RowError.
func optionalAmount(column, raw string) (*decimal.Decimal, error) {
	if currencyutils.IsBlank(raw) {
		return nil, nil
	}
	v, err := currencyutils.ParseAmount(raw)
	if err != nil {
		return nil, &models.RowError{Reason: models.ReasonInvalidAmount, Detail: fmt.Sprintf("%s %q", column, raw)}
	}
	return &v, nil
}
