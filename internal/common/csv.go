// Package common holds the CSV output helpers shared by the commands.
package common

import (
	"encoding/csv"
	"fmt"

	"github.com/gocarina/gocsv"

	"github.com/lezzdif22/payslip/internal/fileutils"
	"github.com/lezzdif22/payslip/internal/logging"
)

// WriteCSVFile marshals rows (structs with csv tags) to path using delim,
// creating the parent directory when needed.
func WriteCSVFile[T any](rows []T, path string, delim rune, logger logging.Logger) error {
	if rows == nil {
		return fmt.Errorf("cannot write nil rows to %s", path)
	}
	if delim == 0 {
		delim = ','
	}

	file, err := fileutils.CreateFile(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil && logger != nil {
			logger.WithError(err).Warn("Failed to close file", logging.F(logging.FieldFile, path))
		}
	}()

	w := csv.NewWriter(file)
	w.Comma = delim
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}

	if logger != nil {
		logger.Info("Wrote CSV file",
			logging.F(logging.FieldFile, path),
			logging.F(logging.FieldCount, len(rows)))
	}
	return nil
}

// Delimiter returns the first rune of s, or ',' when s is empty.
func Delimiter(s string) rune {
	for _, r := range s {
		return r
	}
	return ','
}
