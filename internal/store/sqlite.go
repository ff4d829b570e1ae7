package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lezzdif22/payslip/internal/models"
)

/*
SQLiteStore keeps the address book in a single SQLite file.

SCHEMA:

	email_addresses(id, seq UNIQUE, account_no UNIQUE, name_key UNIQUE,
	                display_name, email NOT NULL, last_updated)

	Each identifying column is unique but nullable, so an entry may be known
	by any subset of the three keys.

UPSERT:

	Remember finds an existing row by seq, then account_no, then name_key,
	inserts one when none matches, then merges the new values into it.
	A key that now identifies this row is released from any other row first.

CONCURRENCY:

	One connection, guarded by a mutex. The database is opened in WAL mode.
*/
type SQLiteStore struct {
	db *sqlx.DB
	mu sync.Mutex
}

type emailRow struct {
	ID          int64          `db:"id"`
	Seq         sql.NullString `db:"seq"`
	AccountNo   sql.NullString `db:"account_no"`
	NameKey     sql.NullString `db:"name_key"`
	DisplayName sql.NullString `db:"display_name"`
	Email       string         `db:"email"`
	LastUpdated time.Time      `db:"last_updated"`
}

// OpenSQLite opens (and migrates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS email_addresses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seq TEXT UNIQUE,
		account_no TEXT UNIQUE,
		name_key TEXT UNIQUE,
		display_name TEXT,
		email TEXT NOT NULL,
		last_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var lookupColumns = map[models.LookupKind]string{
	models.LookupSequence: "seq",
	models.LookupAccount:  "account_no",
	models.LookupName:     "name_key",
}

func (s *SQLiteStore) Lookup(ctx context.Context, keys []models.LookupKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		column, ok := lookupColumns[k.Kind]
		if !ok || k.Value == "" {
			continue
		}
		var email string
		query := fmt.Sprintf(`SELECT email FROM email_addresses WHERE %s = ? ORDER BY last_updated DESC, id DESC LIMIT 1`, column)
		err := s.db.GetContext(ctx, &email, query, lookupValue(k))
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("lookup by %s: %w", column, err)
		}
		return email, nil
	}
	return "", nil
}

func (s *SQLiteStore) Remember(ctx context.Context, e Entry) error {
	e = e.normalized()
	if e.Email == "" {
		return ErrNoEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	keys := map[string]sql.NullString{
		"seq":        nullable(e.Seq),
		"account_no": nullable(e.AccountNo),
		"name_key":   nullable(models.NameKey(e.Name)),
	}

	var id int64
	for _, column := range []string{"seq", "account_no", "name_key"} {
		v := keys[column]
		if !v.Valid {
			continue
		}
		err := tx.GetContext(ctx, &id, fmt.Sprintf(`SELECT id FROM email_addresses WHERE %s = ?`, column), v.String)
		if err == nil {
			break
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("find existing entry: %w", err)
		}
	}

	if id == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO email_addresses (display_name, email) VALUES (?, ?)`,
			nullable(firstNonEmpty(e.Name, e.Email)), e.Email)
		if err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
	}

	for column, v := range keys {
		if !v.Valid {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE email_addresses SET %s = NULL WHERE %s = ? AND id != ?`, column, column),
			v.String, id); err != nil {
			return fmt.Errorf("release %s: %w", column, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE email_addresses
		SET seq = COALESCE(?, seq),
		    account_no = COALESCE(?, account_no),
		    name_key = COALESCE(?, name_key),
		    display_name = COALESCE(?, display_name),
		    email = ?,
		    last_updated = ?
		WHERE id = ?`,
		keys["seq"], keys["account_no"], keys["name_key"], nullable(e.Name), e.Email,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM email_addresses`); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) All(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []emailRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, seq, account_no, name_key, display_name, email, last_updated
		FROM email_addresses
		ORDER BY last_updated DESC, id DESC`)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			Seq:       r.Seq.String,
			AccountNo: r.AccountNo.String,
			Name:      firstNonEmpty(r.DisplayName.String, r.NameKey.String),
			Email:     r.Email,
			UpdatedAt: r.LastUpdated,
		})
	}
	return entries, nil
}

func lookupValue(k models.LookupKey) string {
	if k.Kind == models.LookupName {
		return models.NameKey(k.Value)
	}
	return k.Value
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
