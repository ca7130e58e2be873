package currencies

import (
	"github.com/go-playground/validator/v10"

	"github.com/sig-0/fxcross/storage/types"
)

// CodeRule is the validator rule of an ISO 4217 style code: three uppercase letters
const CodeRule = "len=3,alpha,uppercase"

var validate = validator.New()

// Validate checks that the code satisfies CodeRule
func Validate(code string) error {
	return validate.Var(code, CodeRule)
}

// EUR is the reference currency every published rate is quoted against
var EUR types.Currency = "EUR"

var (
	USD types.Currency = "USD"
	JPY types.Currency = "JPY"
	GBP types.Currency = "GBP"
	CHF types.Currency = "CHF"
	CNY types.Currency = "CNY"
	PLN types.Currency = "PLN"
	SEK types.Currency = "SEK"
	CZK types.Currency = "CZK"
)
