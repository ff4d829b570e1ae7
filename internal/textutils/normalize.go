// Package textutils normalises spreadsheet header text so that labels typed
// by hand ("Sept. 1 – 15", "SEPT 1-15 ") compare equal.
package textutils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]+`)
	dashReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-")
)

// NormalizeHeader folds en/em dashes to '-', trims and collapses whitespace.
// Case is preserved.
func NormalizeHeader(s string) string {
	s = dashReplacer.Replace(s)
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeKey is NormalizeHeader plus lower-casing. It is the form used for
// map keys and address-book name keys.
func NormalizeKey(s string) string {
	return strings.ToLower(NormalizeHeader(s))
}

// CompactAlnum lower-cases s and drops everything except ASCII letters and
// digits: "W/HOLDING TAX" -> "wholdingtax".
func CompactAlnum(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
}

// ContainsAll reports whether the compacted form of header contains every
// compacted part.
func ContainsAll(header string, parts ...string) bool {
	compact := CompactAlnum(header)
	if compact == "" {
		return false
	}
	for _, p := range parts {
		if !strings.Contains(compact, CompactAlnum(p)) {
			return false
		}
	}
	return true
}

// ContainsFold reports whether substr occurs in s ignoring case and
// whitespace differences.
func ContainsFold(s, substr string) bool {
	return strings.Contains(NormalizeKey(s), NormalizeKey(substr))
}

// CleanName keeps letters, digits, spaces, '-' and '_' and collapses the
// spaces. It is used to build file names from employee names.
func CleanName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return NormalizeHeader(b.String())
}
