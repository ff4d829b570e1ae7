// Package store remembers employee e-mail addresses between payroll runs.
//
// An entry can be found by sequence number, account number or normalised
// name, tried in that order. Two implementations share the same semantics:
// SQLiteStore for real use and MemoryStore for tests and throwaway runs.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lezzdif22/payslip/internal/models"
	"github.com/lezzdif22/payslip/internal/textutils"
)

// ErrNoEmail is returned by Remember when the entry has no address.
var ErrNoEmail = errors.New("entry has no email address")

// AddressBook is the persistence contract used by the dispatcher, the CLI
// and the HTTP server.
type AddressBook interface {
	// Lookup returns the address for the first key that matches, or "" when
	// none does.
	Lookup(ctx context.Context, keys []models.LookupKey) (string, error)
	// Remember stores or updates an entry, merging it with an existing one
	// found by sequence, account or name.
	Remember(ctx context.Context, e Entry) error
	Count(ctx context.Context) (int, error)
	// All returns every entry, most recently updated first.
	All(ctx context.Context) ([]Entry, error)
	Close() error
}

// Entry is one remembered address.
type Entry struct {
	Seq       string    `json:"seq,omitempty" yaml:"seq,omitempty" csv:"seq"`
	AccountNo string    `json:"account_no,omitempty" yaml:"account_no,omitempty" csv:"account_no"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty" csv:"name"`
	Email     string    `json:"email" yaml:"email" csv:"email"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" csv:"-"`
}

// EntryFromRecord builds an entry for a computed payroll record.
func EntryFromRecord(rec models.EmployeeRecord, email string) Entry {
	return Entry{
		Seq:       rec.SequenceString(),
		AccountNo: rec.AccountNo,
		Name:      rec.Name,
		Email:     email,
	}
}

// Keys returns the entry's lookup keys in priority order.
func (e Entry) Keys() []models.LookupKey {
	var keys []models.LookupKey
	if s := strings.TrimSpace(e.Seq); s != "" {
		keys = append(keys, models.LookupKey{Kind: models.LookupSequence, Value: s})
	}
	if a := textutils.NormalizeHeader(e.AccountNo); a != "" {
		keys = append(keys, models.LookupKey{Kind: models.LookupAccount, Value: a})
	}
	if n := models.NameKey(e.Name); n != "" {
		keys = append(keys, models.LookupKey{Kind: models.LookupName, Value: n})
	}
	return keys
}

func (e Entry) normalized() Entry {
	return Entry{
		Seq:       strings.TrimSpace(e.Seq),
		AccountNo: textutils.NormalizeHeader(e.AccountNo),
		Name:      textutils.NormalizeHeader(e.Name),
		Email:     NormalizeEmail(e.Email),
		UpdatedAt: e.UpdatedAt,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ResolveEmail returns the record's own address when it has one, otherwise
// the address-book entry for its lookup keys.
func ResolveEmail(ctx context.Context, book AddressBook, rec models.EmployeeRecord) (string, error) {
	if e := rec.PrimaryEmail(); e != "" {
		return NormalizeEmail(e), nil
	}
	if book == nil {
		return "", nil
	}
	return book.Lookup(ctx, rec.LookupKeys())
}
