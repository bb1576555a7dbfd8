package mpesa_test

import (
	"testing"

	"github.com/matbus-aora/aora-backend/internal/utils/mpesa"
	"github.com/stretchr/testify/assert"
)

func TestValidateCode(t *testing.T) {
	testCases := []struct {
		name  string
		code  string
		valid bool
	}{
		{"valid code", "QWE1RT2YU3", true},
		{"valid code digits at end", "ABCDEFG123", true},
		{"too short", "QWE1RT2YU", false},
		{"too long", "QWE1RT2YU3X", false},
		{"lowercase letters normalized", "qwe1rt2yu3", true},
		{"mixed case normalized", "qWe1Rt2Yu3", true},
		{"contains zero", "QWE0RT2YU3", false},
		{"lowercase contains zero", "qwe0rt2yu3", false},
		{"too few digits", "QWERTYUI1O", false},
		{"too many digits", "QW12RT34U5", false},
		{"all digits", "1234567891", false},
		{"empty", "", false},
		{"special characters", "QWE1RT2YU-", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, mpesa.ValidateCode(tc.code))
		})
	}
}
