package renderer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/lezzdif22/payslip/internal/models"
)

const templateSheet = "Payslip Template"

// Cell map of the payslip workbook.
const (
	cellHeaderPeriods = "H8"
	cellName          = "D9"
	cellRate          = "D11"
	cellTotalHours    = "D12"
	cellSalaryEarned  = "D13"
	cellAdjustment    = "D14"
	cellSubTotal      = "D15"
	cellLessTax       = "D16"
	cellNetPay        = "D17"

	cellW15Rate   = "H11"
	cellP15Rate   = "H12"
	cellW30Rate   = "H14"
	cellP30Rate   = "H15"
	cellW15Amount = "I11"
	cellP15Amount = "I12"
	cell15Total   = "I13"
	cellW30Amount = "I14"
	cellP30Amount = "I15"
	cell30Total   = "I16"
	cellTotalDed  = "I17"

	breakdownStartRow = 12
	payStartRow       = 18
	maxPeriodRows     = 5
	footerRow         = 22
)

// XLSXRenderer fills the payslip workbook. With a template configured the
// template's first "Payslip Template" sheet (or its first sheet) is filled in
// place; otherwise an equivalent sheet is built.
type XLSXRenderer struct {
	opts Options
}

func (r *XLSXRenderer) Extension() string { return FormatXLSX }

func (r *XLSXRenderer) Render(rec models.EmployeeRecord, periods []models.PeriodDescriptor, path string) error {
	p := NewPayslip(rec, periods, r.opts.Placement)
	p.Title, p.Institution = r.opts.Title, r.opts.Institution

	f, sheet, err := r.open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := fillWorkbook(f, sheet, p); err != nil {
		return fmt.Errorf("failed to fill payslip for %s: %w", rec.Name, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func (r *XLSXRenderer) open() (*excelize.File, string, error) {
	if r.opts.Template == "" {
		f := excelize.NewFile()
		if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
			return nil, "", err
		}
		if err := writeSkeleton(f, templateSheet, r.opts); err != nil {
			_ = f.Close()
			return nil, "", err
		}
		return f, templateSheet, nil
	}

	f, err := excelize.OpenFile(r.opts.Template)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open template %s: %w", r.opts.Template, err)
	}
	sheets := f.GetSheetList()
	sheet := sheets[0]
	for _, s := range sheets {
		if s == templateSheet {
			sheet = s
			break
		}
	}
	return f, sheet, nil
}

// writeSkeleton lays out the static labels of a payslip sheet.
func writeSkeleton(f *excelize.File, sheet string, opts Options) error {
	labels := map[string]string{
		"B7":  opts.Title,
		"B8":  opts.Institution,
		"G8":  "Period:",
		"B9":  "Name:",
		"B11": "Rate per hour",
		"B12": "Total hours",
		"B13": "Salary earned",
		"B14": "Adjustment",
		"B15": "Sub total",
		"B16": "Less: tax",
		"B17": "NET PAY",
		"E11": "DATE",
		"F11": "HOURS",
		"G11": "Withholding Tax (15th)",
		"G12": "Percentage Tax (15th)",
		"G13": "Total (15th)",
		"G14": "Withholding Tax (30th)",
		"G15": "Percentage Tax (30th)",
		"G16": "Total (30th)",
		"G17": "Total Deductions",
		"B22": "Date:",
		"G22": "Employee Signature",
	}
	for cell, v := range labels {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B7", "B7", bold); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "B", 18)
}

func fillWorkbook(f *excelize.File, sheet string, p Payslip) error {
	set := func(cell string, v any) error { return f.SetCellValue(sheet, cell, v) }
	money := func(cell string, d decimal.Decimal) error { return set(cell, d.InexactFloat64()) }

	scalars := []struct {
		cell string
		fn   func(string) error
	}{
		{cellName, func(c string) error { return set(c, p.Name) }},
		{cellRate, func(c string) error { return money(c, p.Rate) }},
		{cellTotalHours, func(c string) error { return money(c, p.TotalHours) }},
		{cellSalaryEarned, func(c string) error { return money(c, p.Gross) }},
		{cellAdjustment, func(c string) error { return money(c, p.Adjustment) }},
		{cellSubTotal, func(c string) error { return money(c, p.Gross) }},
		{cellLessTax, func(c string) error { return money(c, p.TotalDeductions) }},
		{cellNetPay, func(c string) error { return money(c, p.NetPay) }},
		{cellW15Amount, func(c string) error { return money(c, p.First.Withholding) }},
		{cellP15Amount, func(c string) error { return money(c, p.First.PercentageTax) }},
		{cell15Total, func(c string) error { return money(c, p.First.Total) }},
		{cellW30Amount, func(c string) error { return money(c, p.Second.Withholding) }},
		{cellP30Amount, func(c string) error { return money(c, p.Second.PercentageTax) }},
		{cell30Total, func(c string) error { return money(c, p.Second.Total) }},
		{cellTotalDed, func(c string) error { return money(c, p.TotalDeductions) }},
	}
	for _, s := range scalars {
		if err := s.fn(s.cell); err != nil {
			return fmt.Errorf("cell %s: %w", s.cell, err)
		}
	}

	if labels := p.PeriodLabels(); labels != "" {
		if err := set(cellHeaderPeriods, labels); err != nil {
			return err
		}
	}

	if err := fillPeriodRows(f, sheet, p.Lines); err != nil {
		return err
	}

	percent, err := f.NewStyle(&excelize.Style{NumFmt: 9})
	if err != nil {
		return err
	}
	for cell, rate := range map[string]decimal.Decimal{
		cellW15Rate: p.WithholdingRate,
		cellW30Rate: p.WithholdingRate,
		cellP15Rate: p.PercentageTaxRate,
		cellP30Rate: p.PercentageTaxRate,
	} {
		if rate.IsZero() {
			if err := set(cell, ""); err != nil {
				return err
			}
			continue
		}
		if err := set(cell, rate.InexactFloat64()); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, percent); err != nil {
			return err
		}
	}

	bottom := max(breakdownStartRow, payStartRow+min(len(p.Lines), maxPeriodRows)-1, footerRow) + 1
	return f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: fmt.Sprintf("'%s'!$B$7:$J$%d", sheet, bottom),
		Scope:    sheet,
	})
}

// fillPeriodRows writes the DATE/HOURS breakdown (E12:F16) and the pay per
// period (B18:D22). Periods beyond the fifth are folded into the last pay row.
func fillPeriodRows(f *excelize.File, sheet string, lines []PayLine) error {
	for i := 0; i < maxPeriodRows; i++ {
		for _, cell := range []string{
			fmt.Sprintf("E%d", breakdownStartRow+i), fmt.Sprintf("F%d", breakdownStartRow+i),
			fmt.Sprintf("B%d", payStartRow+i), fmt.Sprintf("D%d", payStartRow+i),
		} {
			if err := f.SetCellValue(sheet, cell, ""); err != nil {
				return err
			}
		}
	}

	for i, l := range lines {
		if i >= maxPeriodRows {
			break
		}
		br, pr := breakdownStartRow+i, payStartRow+i
		if err := f.SetCellValue(sheet, fmt.Sprintf("E%d", br), l.Label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("F%d", br), l.Hours.InexactFloat64()); err != nil {
			return err
		}

		label, amount := l.Label, l.Amount
		if i == maxPeriodRows-1 && len(lines) > maxPeriodRows {
			extra := make([]string, 0, len(lines)-maxPeriodRows+1)
			extra = append(extra, l.Label)
			for _, x := range lines[maxPeriodRows:] {
				extra = append(extra, x.Label)
				amount = amount.Add(x.Amount)
			}
			label = strings.Join(extra, "; ")
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", pr), label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("D%d", pr), amount.InexactFloat64()); err != nil {
			return err
		}
	}
	return nil
}
