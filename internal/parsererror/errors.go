// Package parsererror defines the typed errors raised while reading payroll
// sheets. Fatal conditions (encoding, header) abort a run; ParseError is
// per-cell and normally downgraded to a skip or a default by the caller.
package parsererror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEncodingExhausted matches any EncodingExhaustedError via errors.Is.
	ErrEncodingExhausted = errors.New("no candidate encoding could decode the file")
	// ErrHeaderNotFound matches any HeaderNotFoundError via errors.Is.
	ErrHeaderNotFound = errors.New("header row not found")
)

// EncodingExhaustedError is returned when every candidate encoding failed.
type EncodingExhaustedError struct {
	FilePath string
	Tried    []string
}

func (e *EncodingExhaustedError) Error() string {
	return fmt.Sprintf("%s: could not decode with any of [%s]",
		e.FilePath, strings.Join(e.Tried, ", "))
}

func (e *EncodingExhaustedError) Unwrap() error {
	return ErrEncodingExhausted
}

// HeaderNotFoundError is returned when no row within the scan window
// contains the header marker.
type HeaderNotFoundError struct {
	FilePath  string
	Marker    string
	ScanLimit int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("%s: no row containing %q within the first %d rows",
		e.FilePath, e.Marker, e.ScanLimit)
}

func (e *HeaderNotFoundError) Unwrap() error {
	return ErrHeaderNotFound
}

// ParseError represents a cell that could not be converted.
type ParseError struct {
	Parser string
	Field  string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse %s='%s': %v",
		e.Parser, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure
type ValidationError struct {
	FilePath string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.FilePath, e.Reason)
}

// InvalidFormatError is returned when a file is readable but is not a
// payroll sheet (for example an empty file).
type InvalidFormatError struct {
	FilePath             string
	ExpectedFormat       string
	ActualContentSnippet string
	Msg                  string
}

func (e *InvalidFormatError) Error() string {
	if e.ActualContentSnippet != "" {
		return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s. Content snippet: '%s'",
			e.FilePath, e.Msg, e.ExpectedFormat, e.ActualContentSnippet)
	}
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// IsFatal reports whether err should abort a whole run rather than a row.
func IsFatal(err error) bool {
	return errors.Is(err, ErrEncodingExhausted) || errors.Is(err, ErrHeaderNotFound)
}
