package payrollparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	labelRow  = `Seq.,ACCOUNT NO.,NAME,RATE,Sept. 1–15,Sept 16-30,Oct -15,AMOUNT,ADJUSTMENT,ADJUSTMENT,NET AMOUNT,W/ TAX,W/HOLDING,P-TAX,PERCENT.,TOTAL TAX,NET AMOUNT`
	markerRow = `,,,per hour,,,,EARNED,HOURS,AMOUNT,EARNED,RATE,TAX,RATE,TAX,DEDUCTIONS,RECEIVED`
	sampleRow = `1,,"Abante, Julie H.", 300.00, 37.42, 47.14, 32.33, "35,067.00",,, "35,067.00",10%,"3,506.70",3%,"1,052.01","4,558.71","30,508.29"`
)

// sheet joins lines into CSV content.
func sheet(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func writeSheet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payroll.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func sampleSheet(extra ...string) string {
	lines := []string{
		"PAYROLL FOR THE PERIOD SEPTEMBER 2024,,,",
		",,,",
		labelRow,
		markerRow,
		sampleRow,
	}
	return sheet(append(lines, extra...)...)
}
