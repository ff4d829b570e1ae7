// Package loader reads payroll CSV exports whose text encoding is unknown.
// Spreadsheets saved on different machines arrive as UTF-8, Latin-1 or
// Windows-1252; the loader tries each candidate in order and keeps the first
// that decodes cleanly.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/lezzdif22/payslip/internal/parsererror"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultEncodings is the default candidate order.
var DefaultEncodings = []string{"utf-8", "latin-1", "windows-1252", "iso-8859-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result is a decoded sheet.
type Result struct {
	Rows     [][]string
	Encoding string
}

// Loader decodes and splits CSV content. The zero value uses the default
// encodings and a comma delimiter.
type Loader struct {
	Encodings []string
	Delimiter rune
}

// New creates a Loader for the given candidate encodings and delimiter.
func New(encodings []string, delimiter rune) *Loader {
	return &Loader{Encodings: encodings, Delimiter: delimiter}
}

// Load reads path and returns its rows.
func (l *Loader) Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return l.LoadBytes(data, path)
}

// LoadReader is Load for content that does not come from a file; name is
// only used in error messages.
func (l *Loader) LoadReader(r io.Reader, name string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return l.LoadBytes(data, name)
}

// LoadBytes decodes data and parses it as CSV.
func (l *Loader) LoadBytes(data []byte, name string) (*Result, error) {
	text, enc, err := l.Decode(data)
	if err != nil {
		var exhausted *parsererror.EncodingExhaustedError
		if errors.As(err, &exhausted) {
			exhausted.FilePath = name
		}
		return nil, err
	}

	rows, err := l.split(text)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			FilePath:       name,
			ExpectedFormat: "CSV",
			Msg:            err.Error(),
		}
	}
	return &Result{Rows: rows, Encoding: enc}, nil
}

// Decode converts data to a UTF-8 string using the first candidate encoding
// that succeeds, and reports which one was used.
func (l *Loader) Decode(data []byte) (string, string, error) {
	candidates := l.encodings()
	for _, name := range candidates {
		text, ok := decodeAs(name, data)
		if ok {
			return text, name, nil
		}
	}
	return "", "", &parsererror.EncodingExhaustedError{Tried: candidates}
}

func (l *Loader) encodings() []string {
	if len(l.Encodings) == 0 {
		return DefaultEncodings
	}
	return l.Encodings
}

func (l *Loader) split(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	if l.Delimiter != 0 {
		r.Comma = l.Delimiter
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func decodeAs(name string, data []byte) (string, bool) {
	if isUTF8(name) {
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}

	enc := lookupCharmap(name)
	if enc == nil {
		return "", false
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	// undefined code points decode to U+FFFD
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

func isUTF8(name string) bool {
	switch normalizeName(name) {
	case "utf8", "utf-8":
		return true
	}
	return false
}

func lookupCharmap(name string) encoding.Encoding {
	switch normalizeName(name) {
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1", "l1":
		return charmap.ISO8859_1
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "iso-8859-15", "latin-9":
		return charmap.ISO8859_15
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}

// Supported reports whether an encoding name is recognised.
func Supported(name string) bool {
	return isUTF8(name) || lookupCharmap(name) != nil
}
