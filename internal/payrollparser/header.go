package payrollparser

import (
	"strings"

	"github.com/lezzdif22/payslip/internal/parsererror"
	"github.com/lezzdif22/payslip/internal/textutils"
)

// HeaderLocation describes where the column header of a sheet sits.
type HeaderLocation struct {
	// Index is the row holding the marker token.
	Index int
	// Label is the row directly above, or nil when the marker is on row 0.
	Label []string
	// Marker is the marker row itself.
	Marker []string
	// Merged is the per-column combination of Label and Marker.
	Merged []string
}

// LocateHeader returns the first row within scanLimit rows that has a cell
// containing marker (case and spacing insensitive), together with the merged
// two-row header.
func LocateHeader(rows [][]string, marker string, scanLimit int) (HeaderLocation, error) {
	limit := min(scanLimit, len(rows))
	for i := 0; i < limit; i++ {
		if !rowHasMarker(rows[i], marker) {
			continue
		}
		loc := HeaderLocation{Index: i, Marker: rows[i]}
		if i > 0 {
			loc.Label = rows[i-1]
		}
		loc.Merged = MergeHeaderRows(loc.Label, loc.Marker)
		return loc, nil
	}
	return HeaderLocation{}, &parsererror.HeaderNotFoundError{Marker: marker, ScanLimit: scanLimit}
}

func rowHasMarker(row []string, marker string) bool {
	for _, cell := range row {
		if textutils.ContainsFold(cell, marker) {
			return true
		}
	}
	return false
}

// MergeHeaderRows combines the label row and the marker row column by
// column. When only one side has text it wins; when both do they are joined
// with a single space, label first. Cell text is otherwise kept as written.
func MergeHeaderRows(label, marker []string) []string {
	width := max(len(label), len(marker))
	merged := make([]string, width)
	for i := range width {
		var parts []string
		if i < len(label) {
			if s := strings.TrimSpace(label[i]); s != "" {
				parts = append(parts, s)
			}
		}
		if i < len(marker) {
			if s := strings.TrimSpace(marker[i]); s != "" {
				parts = append(parts, s)
			}
		}
		merged[i] = strings.Join(parts, " ")
	}
	return merged
}
