package services

import "strings"

// NormalizePhone converts a locally formatted number to E.164-like form:
// non-digits are stripped, a trunk "0" is replaced by the country calling
// code, and the result always carries a leading "+".
//
//	"0501234567"    -> "+972501234567"
//	"050-123-4567"  -> "+972501234567"
//	"+972501234567" -> "+972501234567"
func NormalizePhone(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, countryCode) {
		return "+" + digits
	}
	if strings.HasPrefix(digits, "0") {
		return "+" + countryCode + digits[1:]
	}
	return "+" + digits
}
