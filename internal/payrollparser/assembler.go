package payrollparser

import (
	"strconv"
	"strings"

	"github.com/lezzdif22/payslip/internal/currencyutils"
	"github.com/lezzdif22/payslip/internal/logging"
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/textutils"
)

// Assembler turns data rows into drafts. It never fails a whole sheet:
// a row is either a draft, a skip entry, or ignored (blank spacer rows).
type Assembler struct {
	layout  Layout
	periods []models.PeriodDescriptor
	logger  logging.Logger
}

// NewAssembler creates an Assembler for a resolved sheet layout.
func NewAssembler(layout Layout, periods []models.PeriodDescriptor, logger logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Assembler{layout: layout, periods: periods, logger: logger}
}

// AssembleAll assembles every row strictly below headerIndex.
func (a *Assembler) AssembleAll(rows [][]string, headerIndex int) ([]models.Draft, []models.SkipEntry) {
	var drafts []models.Draft
	var skips []models.SkipEntry
	for i := headerIndex + 1; i < len(rows); i++ {
		draft, skip := a.AssembleRow(i, rows[i])
		switch {
		case skip != nil:
			skips = append(skips, *skip)
		case draft != nil:
			drafts = append(drafts, *draft)
		}
	}
	return drafts, skips
}

// AssembleRow assembles one row. Both results are nil for a blank row.
func (a *Assembler) AssembleRow(index int, row []string) (*models.Draft, *models.SkipEntry) {
	if isBlankRow(row) {
		return nil, nil
	}

	name := textutils.NormalizeHeader(cell(row, a.layout.Name))
	skip := func(reason, detail string) (*models.Draft, *models.SkipEntry) {
		return nil, &models.SkipEntry{Row: index, Reason: reason, Detail: detail, Name: name}
	}

	var seq *int
	if raw := strings.TrimSpace(cell(row, a.layout.Sequence)); raw != "" {
		n, err := strconv.Atoi(strings.TrimSuffix(raw, "."))
		if err != nil {
			return skip(models.ReasonNotDataRow, "sequence "+strconv.Quote(raw))
		}
		seq = &n
	}

	if name == "" {
		return skip(models.ReasonMissingName, "")
	}

	rawRate := cell(row, a.layout.HourlyRate)
	if currencyutils.IsBlank(rawRate) {
		return skip(models.ReasonInvalidRate, "blank")
	}
	rate, err := currencyutils.ParseAmount(rawRate)
	if err != nil || rate.IsNegative() {
		return skip(models.ReasonInvalidRate, strconv.Quote(strings.TrimSpace(rawRate)))
	}

	draft := &models.Draft{
		Row:           index,
		Sequence:      seq,
		AccountNo:     strings.TrimSpace(cell(row, a.layout.AccountNo)),
		Name:          name,
		HourlyRate:    rate,
		Periods:       make([]models.PeriodInput, 0, len(a.periods)),
		Email:         strings.TrimSpace(cell(row, a.layout.Email)),
		WorkEmail:     strings.TrimSpace(cell(row, a.layout.WorkEmail)),
		PersonalEmail: strings.TrimSpace(cell(row, a.layout.PersonalEmail)),
		Summary: models.SummaryCells{
			AmountEarned:     cell(row, a.layout.AmountEarned),
			NetAmountEarned:  cell(row, a.layout.NetAmountEarned),
			AdjustmentHours:  cell(row, a.layout.AdjustmentHours),
			AdjustmentAmount: cell(row, a.layout.AdjustmentAmount),
			WTaxRate:         cell(row, a.layout.WTaxRate),
			WithholdingTax:   cell(row, a.layout.WithholdingTax),
			PTaxRate:         cell(row, a.layout.PTaxRate),
			PercentTax:       cell(row, a.layout.PercentTax),
			TotalDeductions:  cell(row, a.layout.TotalDeductions),
			NetReceived:      cell(row, a.layout.NetReceived),
		},
	}

	for _, p := range a.periods {
		in := models.PeriodInput{Key: p.Key, Label: p.Label}

		rawHours := cell(row, p.Index)
		hours, err := currencyutils.ParseAmount(rawHours)
		switch {
		case err != nil:
			a.logger.Debug("Unreadable hours treated as zero",
				logging.F(logging.FieldRow, index), logging.F(logging.FieldColumn, p.Index),
				logging.F(logging.FieldReason, err.Error()))
		case hours.IsNegative():
			a.logger.Debug("Negative hours treated as zero",
				logging.F(logging.FieldRow, index), logging.F(logging.FieldColumn, p.Index))
		default:
			in.Hours = hours
		}

		if p.HasAmountColumn() {
			if rawAmount := cell(row, p.AmountIndex); !currencyutils.IsBlank(rawAmount) {
				amount, err := currencyutils.ParseAmount(rawAmount)
				if err != nil {
					a.logger.Debug("Unreadable period amount, deriving from hours",
						logging.F(logging.FieldRow, index), logging.F(logging.FieldColumn, p.AmountIndex))
				} else {
					in.Amount = &amount
				}
			}
		}
		draft.Periods = append(draft.Periods, in)
	}

	return draft, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
