package payrollparser

import (
	"regexp"
	"strings"

	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/textutils"
)

// periodRe matches a month token, an optional start day, a dash and an end
// day: "Sept. 1-15", "Oct -15", "January 13 – 31".
var periodRe = regexp.MustCompile(`(?i)([A-Za-z]{3,}\.?)\s*(\d{0,2})\s*[-–—]\s*(\d{1,2})`)

// DetectPeriods scans merged header cells left to right and returns one
// descriptor per pay-period column. A period column may carry the marker
// token as its sub-label ("Sept 1-15 per hour"); a marker column without a
// date range is never a period. A column right after a period whose header
// reads as an amount ("AMOUNT", or the same period label plus "amount") is
// recorded as that period's amount column instead of a new period.
func DetectPeriods(headers []string, marker string) []models.PeriodDescriptor {
	periods := make([]models.PeriodDescriptor, 0)
	for i, raw := range headers {
		normalized := textutils.NormalizeHeader(raw)
		if normalized == "" {
			continue
		}
		hasMarker := marker != "" && textutils.ContainsFold(normalized, marker)

		if n := len(periods); !hasMarker && n > 0 && periods[n-1].Index == i-1 && !periods[n-1].HasAmountColumn() {
			if isCompanionAmount(normalized, periods[n-1].Key) {
				periods[n-1].AmountIndex = i
				continue
			}
		}

		match := periodRe.FindString(normalized)
		if match == "" {
			continue
		}
		periods = append(periods, models.PeriodDescriptor{
			Index:       i,
			AmountIndex: -1,
			Label:       periodLabel(raw, marker, hasMarker),
			Key:         textutils.NormalizeKey(match),
		})
	}
	return periods
}

// IsPeriodHeader reports whether a single header cell names a pay period.
func IsPeriodHeader(header string) bool {
	return periodRe.MatchString(textutils.NormalizeHeader(header))
}

func isCompanionAmount(header, prevKey string) bool {
	compact := textutils.CompactAlnum(header)
	switch compact {
	case "amount", "amt":
		return true
	}
	if !textutils.ContainsAll(header, "amount") {
		return false
	}
	match := periodRe.FindString(header)
	return match != "" && textutils.NormalizeKey(match) == prevKey
}

// periodLabel drops a marker sub-label from a period header so payslips show
// only the period text.
func periodLabel(raw, marker string, hasMarker bool) string {
	if !hasMarker {
		return raw
	}
	fields := strings.Fields(marker)
	for i, f := range fields {
		fields[i] = regexp.QuoteMeta(f)
	}
	re := regexp.MustCompile(`(?i)\s*` + strings.Join(fields, `\s+`))
	return strings.TrimSpace(re.ReplaceAllString(raw, ""))
}
