package payrollparser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeSampleRow(t *testing.T) {
	a, _ := sampleAssembler(t)
	draft, skip := a.AssembleRow(4, splitCSV(sampleRow))
	require.Nil(t, skip)

	rec, err := NewCalculator(logging.NewMockLogger()).Compute(*draft)
	require.NoError(t, err)

	assert.Equal(t, "35067.00", rec.Gross.StringFixed(2))
	assert.Equal(t, "4558.71", rec.TotalDeductions.StringFixed(2))
	assert.Equal(t, "30508.29", rec.NetPay.StringFixed(2))

	require.Len(t, rec.Periods, 3)
	assert.Equal(t, "11226.00", rec.Periods[0].Amount.StringFixed(2))
	assert.Equal(t, "14142.00", rec.Periods[1].Amount.StringFixed(2))
	assert.Equal(t, "9699.00", rec.Periods[2].Amount.StringFixed(2))
	assert.True(t, rec.Periods[0].Derived)

	require.Len(t, rec.Taxes, 2)
	assert.Equal(t, models.TaxWTax, rec.Taxes[0].Kind)
	assert.Equal(t, "0.1", rec.Taxes[0].Rate.String())
	assert.Equal(t, "3506.70", rec.Taxes[0].Amount.StringFixed(2))
	assert.True(t, rec.Taxes[0].Stated)
	assert.Equal(t, models.TaxPTax, rec.Taxes[1].Kind)
	assert.Equal(t, "1052.01", rec.Taxes[1].Amount.StringFixed(2))

	assert.False(t, rec.GrossMismatch)
	assert.False(t, rec.Discrepancy)
	assert.False(t, rec.NegativeNet)
	assert.True(t, rec.Adjustment.IsZero())
}

func TestComputeDerivesMissingTaxAmounts(t *testing.T) {
	d := models.Draft{
		Name:       "Reyes, Ana",
		HourlyRate: dec("250"),
		Periods: []models.PeriodInput{
			{Key: "oct 1-15", Hours: dec("40")},
			{Key: "oct 16-31", Hours: dec("0"), Amount: ptr(dec("1500.50"))},
		},
		Summary: models.SummaryCells{WTaxRate: "10%", PTaxRate: "3%"},
	}

	rec, err := NewCalculator(nil).Compute(d)
	require.NoError(t, err)

	assert.Equal(t, "11500.50", rec.Gross.StringFixed(2))
	assert.False(t, rec.Periods[1].Derived, "explicit amount wins over hours x rate")
	require.Len(t, rec.Taxes, 2)
	assert.Equal(t, "1150.05", rec.Taxes[0].Amount.StringFixed(2))
	assert.Equal(t, "345.02", rec.Taxes[1].Amount.StringFixed(2))
	assert.False(t, rec.Taxes[0].Stated)
	assert.Equal(t, "1495.07", rec.TotalDeductions.StringFixed(2))
	assert.Equal(t, "10005.43", rec.NetPay.StringFixed(2))
}

func TestComputeWithholdingAsPercentage(t *testing.T) {
	d := models.Draft{
		Name:       "Lim, Dan",
		HourlyRate: dec("100"),
		Periods:    []models.PeriodInput{{Key: "sept 1-15", Hours: dec("100")}},
		Summary:    models.SummaryCells{WTaxRate: "5%", WithholdingTax: "2%"},
	}

	rec, err := NewCalculator(nil).Compute(d)
	require.NoError(t, err)

	require.Len(t, rec.Taxes, 2)
	assert.Equal(t, models.TaxWTax, rec.Taxes[0].Kind)
	assert.Equal(t, "500.00", rec.Taxes[0].Amount.StringFixed(2))
	assert.Equal(t, models.TaxWithholding, rec.Taxes[1].Kind)
	assert.Equal(t, "200.00", rec.Taxes[1].Amount.StringFixed(2))
	assert.Equal(t, "9300.00", rec.NetPay.StringFixed(2))
}

func TestComputeInvalidTaxRate(t *testing.T) {
	tests := []struct {
		name    string
		summary models.SummaryCells
	}{
		{"above 100%", models.SummaryCells{WTaxRate: "150%"}},
		{"negative", models.SummaryCells{PTaxRate: "(3%)"}},
		{"unreadable", models.SummaryCells{PTaxRate: "abc%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := models.Draft{Name: "X", HourlyRate: dec("1"), Summary: tt.summary}
			_, err := NewCalculator(nil).Compute(d)
			require.Error(t, err)

			var rowErr *models.RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, models.ReasonInvalidTaxRate, rowErr.Reason)
		})
	}
}

func TestComputeInvalidAmount(t *testing.T) {
	tests := []struct {
		name    string
		summary models.SummaryCells
		detail  string
	}{
		{"stated withholding", models.SummaryCells{WTaxRate: "10%", WithholdingTax: "N/A"}, `W/HOLDING TAX "N/A"`},
		{"stated percent tax", models.SummaryCells{PTaxRate: "3%", PercentTax: "27O.00"}, `PERCENT TAX "27O.00"`},
		{"amount earned", models.SummaryCells{AmountEarned: "1,OOO.00"}, `AMOUNT EARNED "1,OOO.00"`},
		{"total deductions", models.SummaryCells{TotalDeductions: "x"}, `TOTAL TAX DEDUCTIONS "x"`},
		{"net received", models.SummaryCells{NetReceived: "tbd"}, `NET AMOUNT RECEIVED "tbd"`},
		{"adjustment amount", models.SummaryCells{AdjustmentAmount: "?"}, `ADJUSTMENT AMOUNT "?"`},
		{"adjustment hours", models.SummaryCells{AdjustmentHours: "two"}, `ADJUSTMENT HOURS "two"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := models.Draft{
				Name:       "Cruz, Ben",
				HourlyRate: dec("100"),
				Periods:    []models.PeriodInput{{Key: "sept 1-15", Hours: dec("10")}},
				Summary:    tt.summary,
			}
			_, err := NewCalculator(nil).Compute(d)
			require.Error(t, err)

			var rowErr *models.RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, models.ReasonInvalidAmount, rowErr.Reason)
			assert.Equal(t, tt.detail, rowErr.Detail)
		})
	}
}

func TestComputeBlankStatedCellsAreDerived(t *testing.T) {
	d := models.Draft{
		Name:       "Cruz, Ben",
		HourlyRate: dec("100"),
		Periods:    []models.PeriodInput{{Key: "sept 1-15", Hours: dec("10")}},
		Summary:    models.SummaryCells{WTaxRate: "10%", WithholdingTax: "-", PTaxRate: "3%", NetReceived: " "},
	}
	rec, err := NewCalculator(nil).Compute(d)
	require.NoError(t, err)
	require.Len(t, rec.Taxes, 2)
	assert.Equal(t, "100.00", rec.Taxes[0].Amount.StringFixed(2))
	assert.False(t, rec.Taxes[0].Stated)
	assert.Nil(t, rec.StatedNet)
}

func TestComputeNegativeNetPassesThrough(t *testing.T) {
	d := models.Draft{
		Name:       "Cruz, Ben",
		HourlyRate: dec("100"),
		Periods:    []models.PeriodInput{{Key: "sept 1-15", Hours: dec("1")}},
		Summary:    models.SummaryCells{PTaxRate: "3%", PercentTax: "250.00"},
	}

	rec, err := NewCalculator(nil).Compute(d)
	require.NoError(t, err)
	assert.Equal(t, "-150.00", rec.NetPay.StringFixed(2))
	assert.True(t, rec.NegativeNet)
}

func TestComputeFlagsStatedDiscrepancies(t *testing.T) {
	d := models.Draft{
		Name:       "Tan, Eve",
		HourlyRate: dec("100"),
		Periods:    []models.PeriodInput{{Key: "sept 1-15", Hours: dec("10")}},
		Summary: models.SummaryCells{
			AmountEarned:    "1,100.00",
			WTaxRate:        "10%",
			TotalDeductions: "100.00",
			NetReceived:     "950.00",
		},
	}

	rec, err := NewCalculator(nil).Compute(d)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", rec.Gross.StringFixed(2), "gross is never replaced by the stated figure")
	assert.True(t, rec.GrossMismatch)
	assert.True(t, rec.Discrepancy)
	require.NotNil(t, rec.StatedNet)
	assert.Equal(t, "950", rec.StatedNet.String())
}

func TestComputeAdjustment(t *testing.T) {
	d := models.Draft{
		Name:       "Go, Fe",
		HourlyRate: dec("200"),
		Summary:    models.SummaryCells{AdjustmentHours: "2.5"},
	}
	rec, err := NewCalculator(nil).Compute(d)
	require.NoError(t, err)
	assert.Equal(t, "500.00", rec.Adjustment.StringFixed(2))
	assert.True(t, rec.NetPay.IsZero(), "adjustment is informational")

	d.Summary.AdjustmentAmount = "(120.00)"
	rec, err = NewCalculator(nil).Compute(d)
	require.NoError(t, err)
	assert.Equal(t, "-120.00", rec.Adjustment.StringFixed(2))
}

func TestComputeNetInvariant(t *testing.T) {
	calc := NewCalculator(nil)
	for i := 0; i < 200; i++ {
		hours := decimal.New(int64(i*37+11), -2)
		d := models.Draft{
			Name:       fmt.Sprintf("Employee %d", i),
			HourlyRate: decimal.New(int64(12345+i*7), -2),
			Periods: []models.PeriodInput{
				{Key: "a 1-15", Hours: hours},
				{Key: "a 16-30", Hours: hours.Add(decimal.New(3, -1))},
			},
			Summary: models.SummaryCells{
				WTaxRate: fmt.Sprintf("%d%%", i%15),
				PTaxRate: fmt.Sprintf("%d.5%%", i%4),
			},
		}
		rec, err := calc.Compute(d)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, tx := range rec.Taxes {
			sum = sum.Add(tx.Amount)
		}
		require.True(t, rec.TotalDeductions.Equal(sum))
		require.True(t, rec.NetPay.Equal(rec.Gross.Sub(rec.TotalDeductions)))
	}
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }
