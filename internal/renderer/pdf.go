package renderer

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/lezzdif22/payslip/internal/currencyutils"
	"github.com/lezzdif22/payslip/internal/models"
)

// PDFRenderer draws an A4 payslip: title, employee block, one row per pay
// period, deduction summary and signature footer.
type PDFRenderer struct {
	opts Options
	now  func() time.Time
}

func (r *PDFRenderer) Extension() string { return FormatPDF }

func (r *PDFRenderer) Render(rec models.EmployeeRecord, periods []models.PeriodDescriptor, path string) error {
	p := NewPayslip(rec, periods, r.opts.Placement)
	p.Title, p.Institution = r.opts.Title, r.opts.Institution

	now := time.Now
	if r.now != nil {
		now = r.now
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(p.Title+" "+p.Name, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	if p.Institution != "" {
		pdf.CellFormat(0, 9, tr(p.Institution), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 9, tr(p.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	header := fmt.Sprintf("Pay Periods: %s | Generated: %s", p.PeriodLabels(), now().Format("January 02, 2006"))
	pdf.CellFormat(0, 6, tr(header), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "EMPLOYEE INFORMATION", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	if p.Seq != "" {
		pdf.CellFormat(0, 6, "Sequence No.: "+p.Seq, "", 1, "L", false, 0, "")
	}
	if p.AccountNo != "" {
		pdf.CellFormat(0, 6, tr("Account No.: "+p.AccountNo), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr("Name: "+p.Name), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "PAY DETAILS", "", 1, "L", false, 0, "")
	widths := []float64{70, 30, 30, 40}
	tableHeader(pdf, widths, []string{"DATE", "HOURS EARNED", "RATE", "SALARY EARNED"})
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range p.Lines {
		row := []string{tr(l.Label), l.Hours.StringFixed(2), currencyutils.FormatAmount(l.Rate), currencyutils.FormatAmount(l.Amount)}
		for i, v := range row {
			pdf.CellFormat(widths[i], 7, v, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(211, 211, 211)
	for i, v := range []string{"TOTAL", p.TotalHours.StringFixed(2), "", currencyutils.FormatAmount(p.Gross)} {
		pdf.CellFormat(widths[i], 7, v, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "PAYROLL SUMMARY", "", 1, "L", false, 0, "")
	sw := []float64{110, 50}
	tableHeader(pdf, sw, []string{"Description", "Amount"})
	pdf.SetFont("Helvetica", "", 10)
	summary := [][2]string{
		{"Gross Pay", currencyutils.FormatAmount(p.Gross)},
		{p.WithholdingLabel("15th"), currencyutils.FormatAmount(p.First.Withholding)},
		{p.PercentageTaxLabel("15th"), currencyutils.FormatAmount(p.First.PercentageTax)},
		{"Total (15th)", currencyutils.FormatAmount(p.First.Total)},
		{p.WithholdingLabel("30th"), currencyutils.FormatAmount(p.Second.Withholding)},
		{p.PercentageTaxLabel("30th"), currencyutils.FormatAmount(p.Second.PercentageTax)},
		{"Total (30th)", currencyutils.FormatAmount(p.Second.Total)},
		{"Total Deductions", currencyutils.FormatAmount(p.TotalDeductions)},
	}
	if !p.Adjustment.IsZero() {
		summary = append(summary, [2]string{"Adjustment", currencyutils.FormatAmount(p.Adjustment)})
	}
	for _, s := range summary {
		pdf.CellFormat(sw[0], 7, s[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(sw[1], 7, s[1], "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(173, 216, 230)
	pdf.CellFormat(sw[0], 8, "NET PAY", "1", 0, "L", true, 0, "")
	pdf.CellFormat(sw[1], 8, currencyutils.FormatAmount(p.NetPay), "1", 1, "R", true, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 5, "For questions about this payslip, contact the accounting office", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "This payslip serves as official record of payment", "", 1, "C", false, 0, "")
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "______________________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Employee Signature", "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, cols []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(245, 245, 245)
	for i, c := range cols {
		pdf.CellFormat(widths[i], 8, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}
