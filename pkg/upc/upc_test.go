package upc

import (
	"testing"

	"github.com/matzehuels/barcodewheel/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    UPC
		wantErr bool
	}{
		{"short value pads", "123", "00000000123", false},
		{"single digit", "7", "00000000007", false},
		{"zero", "0", "00000000000", false},
		{"full length", "12345678901", "12345678901", false},
		{"leading zeros kept canonical", "00123", "00000000123", false},
		{"surplus leading zeros allowed", "0000000000000123", "00000000123", false},
		{"whitespace trimmed", "  123 ", "00000000123", false},

		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"negative", "-123", "", true},
		{"non numeric", "12a45", "", true},
		{"decimal", "12.45", "", true},
		{"too long", "123456789012", "", true},
		{"plus sign", "+123", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidUPC) {
					t.Errorf("Parse(%q) error code = %v, want INVALID_UPC", tt.input, errors.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if len(got) != Length {
				t.Errorf("Parse(%q) length = %d, want %d", tt.input, len(got), Length)
			}
		})
	}
}

func TestFromInt(t *testing.T) {
	got, err := FromInt(123)
	if err != nil {
		t.Fatalf("FromInt(123) error = %v", err)
	}
	if got != "00000000123" {
		t.Errorf("FromInt(123) = %q, want %q", got, "00000000123")
	}

	if _, err := FromInt(-1); err == nil {
		t.Error("FromInt(-1) expected error, got nil")
	}
}

func TestMustParse(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse with invalid input did not panic")
		}
	}()
	MustParse("not-a-upc")
}

func TestCheckDigit(t *testing.T) {
	tests := []struct {
		value UPC
		want  int
	}{
		// 036000291452 is the canonical UPC-A reference number.
		{"03600029145", 2},
		{"00000000123", 6},
		{"00000000000", 0},
	}

	for _, tt := range tests {
		if got := tt.value.CheckDigit(); got != tt.want {
			t.Errorf("CheckDigit(%s) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestWithCheckDigit(t *testing.T) {
	u := MustParse("03600029145")
	if got := u.WithCheckDigit(); got != "036000291452" {
		t.Errorf("WithCheckDigit() = %q, want %q", got, "036000291452")
	}
}

func TestDigits(t *testing.T) {
	u := MustParse("123")
	digits := u.Digits()
	if len(digits) != Length {
		t.Fatalf("Digits() length = %d, want %d", len(digits), Length)
	}
	want := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3}
	for i, d := range want {
		if digits[i] != d {
			t.Errorf("Digits()[%d] = %d, want %d", i, digits[i], d)
		}
	}
}
