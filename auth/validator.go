package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	"fractal-bot/errors"
)

var validate = validator.New()

type credentials struct {
	Password string `validate:"required,min=12,max=72"`
}

// ValidatePassword enforces the console password policy: 12 to 72
// characters mixing upper, lower, digit and special. Checked once at boot
// against the configured password, not on every login.
func ValidatePassword(password string) error {
	if err := validate.Struct(credentials{Password: password}); err != nil {
		return err
	}
	if !isComplex(password) {
		return errors.ErrWeakPassword
	}
	return nil
}

func isComplex(s string) bool {
	var upper, lower, digit, special bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsNumber(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}
