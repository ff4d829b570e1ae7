package payrollparser

import (
	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/textutils"
)

// Layout maps the fields of a payroll row to column indexes. -1 means the
// sheet does not have that column.
type Layout struct {
	Sequence   int
	AccountNo  int
	Name       int
	HourlyRate int

	AmountEarned     int
	NetAmountEarned  int
	AdjustmentHours  int
	AdjustmentAmount int
	WTaxRate         int
	WithholdingTax   int
	PTaxRate         int
	PercentTax       int
	TotalDeductions  int
	NetReceived      int

	Email         int
	WorkEmail     int
	PersonalEmail int
}

type layoutResolver struct {
	headers []string
	claimed map[int]bool
}

// ResolveLayout locates the fixed, summary and email columns by their
// header text. Fixed fields fall back to the conventional positions
// (sequence, account, name, rate = columns 0..3) when no header names them.
// Columns already used by periods are never reassigned.
func ResolveLayout(headers []string, periods []models.PeriodDescriptor, marker string) Layout {
	r := &layoutResolver{headers: headers, claimed: map[int]bool{}}
	for _, p := range periods {
		r.claimed[p.Index] = true
		if p.HasAmountColumn() {
			r.claimed[p.AmountIndex] = true
		}
	}

	var l Layout
	// named columns first so a positional fallback never steals one
	l.Sequence = r.claim(r.find("seq"))
	l.Name = r.claim(r.find("name"))
	l.HourlyRate = r.claim(r.first(r.findMarker(marker), r.findRate()))
	l.AccountNo = r.claim(r.first(r.find("account"), r.find("acct")))
	l.Sequence = r.fallback(l.Sequence, 0)
	l.AccountNo = r.fallback(l.AccountNo, 1)
	l.Name = r.fallback(l.Name, 2)
	l.HourlyRate = r.fallback(l.HourlyRate, 3)

	// most specific first: "NET AMOUNT EARNED" also contains "amount earned"
	l.NetAmountEarned = r.claim(r.find("net", "amount", "earned"))
	l.NetReceived = r.claim(r.find("net", "amount", "received"))
	l.AmountEarned = r.claim(r.find("amount", "earned"))
	l.TotalDeductions = r.claim(r.find("total", "tax", "deduct"))
	l.PercentTax = r.claim(r.find("percent", "tax"))
	l.WithholdingTax = r.claim(r.find("holding", "tax"))
	l.PTaxRate = r.claim(r.find("p", "tax", "rate"))
	l.WTaxRate = r.claim(r.find("w", "tax", "rate"))
	l.AdjustmentHours = r.claim(r.find("adjust", "hour"))
	l.AdjustmentAmount = r.claim(r.first(
		r.find("adjust", "amount"),
		r.find("adjust", "tax"),
		r.find("addl", "tax"),
	))

	l.WorkEmail = r.claim(r.find("work", "email"))
	l.PersonalEmail = r.claim(r.find("personal", "email"))
	l.Email = r.claim(r.find("email"))

	return l
}

// find returns the first unclaimed column whose compacted header contains
// every part.
func (r *layoutResolver) find(parts ...string) int {
	for i, h := range r.headers {
		if r.claimed[i] {
			continue
		}
		if textutils.ContainsAll(h, parts...) {
			return i
		}
	}
	return -1
}

// findMarker returns the first unclaimed column carrying the marker. Period
// columns are claimed before rate resolution, so a "per hour" sub-label on a
// period is never taken for the rate.
func (r *layoutResolver) findMarker(marker string) int {
	if marker == "" {
		return -1
	}
	for i, h := range r.headers {
		if !r.claimed[i] && textutils.ContainsFold(h, marker) {
			return i
		}
	}
	return -1
}

func (r *layoutResolver) findRate() int {
	for i, h := range r.headers {
		if r.claimed[i] {
			continue
		}
		if textutils.ContainsAll(h, "rate") && !textutils.ContainsAll(h, "tax") {
			return i
		}
	}
	return -1
}

func (r *layoutResolver) first(candidates ...int) int {
	for _, c := range candidates {
		if c >= 0 {
			return c
		}
	}
	return -1
}

func (r *layoutResolver) claim(idx int) int {
	if idx >= 0 {
		r.claimed[idx] = true
	}
	return idx
}

// fallback returns idx when resolved, otherwise claims the conventional
// position if it is still free.
func (r *layoutResolver) fallback(idx, position int) int {
	if idx >= 0 {
		return idx
	}
	if position < len(r.headers) && !r.claimed[position] {
		return r.claim(position)
	}
	return -1
}
