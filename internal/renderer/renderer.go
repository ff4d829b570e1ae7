// Package renderer turns computed payroll records into payslip documents.
package renderer

import (
	"fmt"
	"strings"

	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/textutils"
)

// Supported output formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// Renderer writes one payslip document for a record.
type Renderer interface {
	Render(rec models.EmployeeRecord, periods []models.PeriodDescriptor, path string) error
	Extension() string
}

// Options configures the renderers.
type Options struct {
	Format      string
	Template    string
	Placement   Placement
	Title       string
	Institution string
}

// New returns the renderer for opts.Format.
func New(opts Options) (Renderer, error) {
	if opts.Placement == "" {
		opts.Placement = PlacementBoth
	}
	if opts.Title == "" {
		opts.Title = "PAYSLIP"
	}
	switch strings.ToLower(opts.Format) {
	case "", FormatPDF:
		return &PDFRenderer{opts: opts}, nil
	case FormatXLSX:
		return &XLSXRenderer{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported payslip format %q", opts.Format)
	}
}

// FileName returns the stable document name for rec, e.g.
// "payslip_007_Abante_Julie_H.pdf". Records without a sequence use 000.
func FileName(rec models.EmployeeRecord, ext string) string {
	name := strings.ReplaceAll(textutils.CleanName(rec.Name), " ", "_")
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("payslip_%03d_%s.%s", rec.SequenceOr(0), name, strings.TrimPrefix(ext, "."))
}
