package utils

import (
	"strconv"
	"strings"
)

// MaskCard -> hanya menampilkan 4 digit terakhir nomor kartu
// Example: "4242424242424242" -> "**** **** **** 4242"
func MaskCard(card string) string {
	digits := strings.ReplaceAll(card, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return "**** **** **** " + digits[len(digits)-4:]
}

// FormatBalance memformat saldo dengan pemisah ribuan
// Example: 35000 -> "35,000"
func FormatBalance(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.Itoa(amount)

	var parts []string
	for i := len(s); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{s[start:i]}, parts...)
	}
	return sign + strings.Join(parts, ",")
}
