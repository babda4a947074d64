package validate

import (
	"errors"
	"math"
	"net/mail"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrInvalid = errors.New("invalid")

// fold maps compatibility forms (full-width digits, ligatures) to their plain
// equivalents.
func fold(s string) string {
	out, _, err := transform.String(norm.NFKC, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeISBN drops separators so "978-0-262 03384-8" and "9780262033848"
// are the same key. The check digit X is upper-cased. Length and checksum
// are not enforced; catalogues carry internal codes in this field.
func NormalizeISBN(s string) string {
	s = fold(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '-' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// NormalizeDepartment upper-cases a department code: "cs " -> "CS".
func NormalizeDepartment(s string) string {
	return strings.ToUpper(strings.TrimSpace(fold(s)))
}

// NormalizeCourseNumber trims a course number. Numbers are strings ("101L").
func NormalizeCourseNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(fold(s)))
}

// Names trims each entry and drops the empty ones.
func Names(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Email accepts a bare address and returns it trimmed.
func Email(s string) (string, error) {
	s = strings.TrimSpace(s)
	a, err := mail.ParseAddress(s)
	if err != nil || a.Address != s {
		return "", ErrInvalid
	}
	return s, nil
}

// Price rejects negative and non-finite amounts.
func Price(p float64) error {
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalid
	}
	return nil
}
