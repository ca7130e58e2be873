package currencies

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrencies_Validate(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name  string
		code  string
		valid bool
	}{
		{"reference", "EUR", true},
		{"published", "PLN", true},
		{"empty", "", false},
		{"lowercase", "usd", false},
		{"mixed case", "Usd", false},
		{"digit", "U1D", false},
		{"symbol", "US$", false},
		{"too short", "US", false},
		{"too long", "USDX", false},
		{"non-ascii", "ÜSD", false},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(testCase.code)

			if testCase.valid {
				assert.NoError(t, err)

				return
			}

			assert.Error(t, err)
		})
	}
}
