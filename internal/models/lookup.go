package models

import (
	"strconv"

	"github.com/lezzdif22/payslip/internal/textutils"
)

// LookupKind names an address-book key.
type LookupKind string

const (
	LookupSequence LookupKind = "seq"
	LookupAccount  LookupKind = "account_no"
	LookupName     LookupKind = "name"
)

// LookupKey is one way of identifying an employee in the address book.
type LookupKey struct {
	Kind  LookupKind
	Value string
}

// LookupKeys returns the keys for a record in priority order: sequence,
// account number, normalised name. Absent keys are omitted.
func (r EmployeeRecord) LookupKeys() []LookupKey {
	return BuildLookupKeys(r.Sequence, r.AccountNo, r.Name)
}

// BuildLookupKeys builds the ordered key list from raw identifiers.
func BuildLookupKeys(seq *int, accountNo, name string) []LookupKey {
	keys := make([]LookupKey, 0, 3)
	if seq != nil {
		keys = append(keys, LookupKey{Kind: LookupSequence, Value: strconv.Itoa(*seq)})
	}
	if acct := textutils.NormalizeHeader(accountNo); acct != "" {
		keys = append(keys, LookupKey{Kind: LookupAccount, Value: acct})
	}
	if nk := NameKey(name); nk != "" {
		keys = append(keys, LookupKey{Kind: LookupName, Value: nk})
	}
	return keys
}

// NameKey is the address-book form of a name.
func NameKey(name string) string {
	return textutils.NormalizeKey(name)
}
