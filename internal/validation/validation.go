// Package validation checks operator-supplied paths, formats and addresses
// before a command starts work.
package validation

import (
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
)

// IsValidPath checks if a given path exists and is accessible.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}

	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}

	return nil
}

// IsValidPayrollFile checks that path is a readable .csv file.
func IsValidPayrollFile(path string) error {
	if err := IsValidPath(path); err != nil {
		return err
	}
	if info, _ := os.Stat(path); info != nil && info.IsDir() {
		return fmt.Errorf("expected a CSV file, got directory: %s", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return fmt.Errorf("unsupported payroll file: %s (expected .csv)", path)
	}
	return nil
}

// IsValidOutputFormat checks if the given payslip format is supported.
func IsValidOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "pdf", "xlsx":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'pdf', 'xlsx'", format)
	}
}

// IsValidPlacement checks a withholding placement ("15", "30" or "both").
func IsValidPlacement(placement string) error {
	switch strings.ToLower(placement) {
	case "15", "30", "both":
		return nil
	default:
		return fmt.Errorf("invalid withholding placement: %s (must be '15', '30' or 'both')", placement)
	}
}

// IsValidReportFormat checks a run report format.
func IsValidReportFormat(format string) error {
	switch strings.ToLower(format) {
	case "json", "yaml", "yml":
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s. Supported formats are 'json', 'yaml'", format)
	}
}

// IsValidEmail checks that addr is a single bare address.
func IsValidEmail(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("invalid email address %q: %w", addr, err)
	}
	if parsed.Name != "" || !strings.EqualFold(parsed.Address, strings.TrimSpace(addr)) {
		return fmt.Errorf("invalid email address %q: expected a bare address", addr)
	}
	return nil
}

// IsValidFilePermissions checks if the given file mode is valid for sensitive files.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0644", mode.String())
	}
	return nil
}
