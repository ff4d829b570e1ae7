package store

import (
	"context"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// ImportCSV merges a legacy emails.csv (header seq,account_no,name,email)
// into book. Rows without an address are ignored. It returns the number of
// entries stored.
func ImportCSV(ctx context.Context, book AddressBook, r io.Reader) (int, error) {
	var rows []*Entry
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, fmt.Errorf("failed to read address CSV: %w", err)
	}

	n := 0
	for _, row := range rows {
		if NormalizeEmail(row.Email) == "" {
			continue
		}
		if err := book.Remember(ctx, *row); err != nil {
			return n, fmt.Errorf("failed to store %s: %w", row.Email, err)
		}
		n++
	}
	return n, nil
}

// ExportCSV writes every entry of book in the legacy emails.csv layout.
func ExportCSV(ctx context.Context, book AddressBook, w io.Writer) (int, error) {
	entries, err := book.All(ctx)
	if err != nil {
		return 0, err
	}
	if err := gocsv.Marshal(entries, w); err != nil {
		return 0, fmt.Errorf("failed to write address CSV: %w", err)
	}
	return len(entries), nil
}

// SequenceMap returns seq -> email for every entry that has a sequence.
func SequenceMap(ctx context.Context, book AddressBook) (map[string]string, error) {
	entries, err := book.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, e := range entries {
		if e.Seq != "" && e.Email != "" {
			if _, seen := out[e.Seq]; !seen {
				out[e.Seq] = e.Email
			}
		}
	}
	return out, nil
}
