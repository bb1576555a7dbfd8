// Package mpesa validates M-PESA style transaction confirmation codes.
package mpesa

import "strings"

// ValidateCode reports whether code looks like a genuine M-PESA confirmation
// code: exactly 10 characters, letters A-Z and digits 1-9 only (real codes
// never contain zero), with exactly 7 letters and 3 digits. Input is
// uppercased first, so lowercase codes are accepted.
func ValidateCode(code string) bool {
	if len(code) != 10 {
		return false
	}
	code = strings.ToUpper(code)
	letters, digits := 0, 0
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c >= 'A' && c <= 'Z':
			letters++
		case c >= '1' && c <= '9':
			digits++
		default:
			return false
		}
	}
	return letters == 7 && digits == 3
}
