package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrencyIDR memformat nilai ke format Rupiah.
// Contoh: 15000.5 -> "Rp 15.000,50", 130000 -> "Rp 130.000", -500 -> "-Rp 500"
func FormatCurrencyIDR(amount decimal.Decimal) string {
	amount = amount.Round(2)
	negative := amount.IsNegative()
	amount = amount.Abs()

	integer := amount.Truncate(0)
	fraction := amount.Sub(integer)

	result := "Rp " + groupThousands(integer.String())
	if !fraction.IsZero() {
		result += fmt.Sprintf(",%02d", fraction.Mul(decimal.NewFromInt(100)).IntPart())
	}
	if negative {
		return "-" + result
	}
	return result
}

// groupThousands menambahkan titik sebagai pemisah ribuan pada string digit.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for i := len(digits); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{digits[start:i]}, parts...)
	}
	return strings.Join(parts, ".")
}
