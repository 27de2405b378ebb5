// Package upc provides the canonical UPC value type used throughout
// barcodewheel.
//
// A UPC is stored as an 11-digit zero-padded numeric string, the form
// expected by the UPC-A symbology (the twelfth digit, the check digit,
// is derived). Shorter numeric inputs are left-padded with zeros, so
// "123" and 123 both normalize to "00000000123".
package upc

import (
	"strconv"
	"strings"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

// Length is the number of digits in a canonical UPC value.
const Length = 11

// UPC is a canonical 11-digit UPC value.
type UPC string

// Parse normalizes a raw string into a canonical UPC.
//
// The input must be a non-negative integer of at most 11 significant
// digits. Leading zeros are allowed and do not count toward the limit.
// Surrounding whitespace is ignored.
func Parse(raw string) (UPC, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New(errors.ErrCodeInvalidUPC, "UPC value cannot be empty")
	}

	if strings.HasPrefix(s, "-") {
		return "", errors.New(errors.ErrCodeInvalidUPC, "UPC values can only be positive: %s", raw)
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return "", errors.New(errors.ErrCodeInvalidUPC, "UPC values can only contain numbers: %s", raw)
		}
	}

	// Leading zeros carry no information; the significant digits decide
	// whether the value fits.
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	if len(trimmed) > Length {
		return "", errors.New(errors.ErrCodeInvalidUPC, "UPC values must be %d or fewer digits long: %s", Length, raw)
	}

	return UPC(strings.Repeat("0", Length-len(trimmed)) + trimmed), nil
}

// FromInt converts a non-negative integer into a canonical UPC.
func FromInt(n int64) (UPC, error) {
	if n < 0 {
		return "", errors.New(errors.ErrCodeInvalidUPC, "UPC values can only be positive: %d", n)
	}
	return Parse(strconv.FormatInt(n, 10))
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level defaults with known-good values.
func MustParse(raw string) UPC {
	u, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// String returns the canonical 11-digit form.
func (u UPC) String() string { return string(u) }

// Digits returns the 11 digits as ints, most significant first.
func (u UPC) Digits() []int {
	digits := make([]int, len(u))
	for i, r := range u {
		digits[i] = int(r - '0')
	}
	return digits
}

// CheckDigit computes the UPC-A check digit: digits in odd positions
// (1st, 3rd, ...) weigh three, digits in even positions weigh one, and
// the check digit brings the total to a multiple of ten.
func (u UPC) CheckDigit() int {
	var sum int
	for i, d := range u.Digits() {
		if i%2 == 0 {
			sum += 3 * d
		} else {
			sum += d
		}
	}
	return (10 - sum%10) % 10
}

// WithCheckDigit returns the full 12-digit UPC-A number, canonical
// value plus check digit, as printed under a retail barcode.
func (u UPC) WithCheckDigit() string {
	return string(u) + strconv.Itoa(u.CheckDigit())
}
