package validators

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const apiDateLayout = "2006-01-02"

// PhonePrefix builds the "phoneprefix" rule: the number must start with
// the given country code and carry only digits after it.
func PhonePrefix(prefix string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return HasPhonePrefix(fl.Field().String(), prefix)
	}
}

func HasPhonePrefix(phone, prefix string) bool {
	if phone == "" || !strings.HasPrefix(phone, prefix) {
		return false
	}
	rest := phone[len(prefix):]
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func IsAPIDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(apiDateLayout, fl.Field().String())
	return err == nil
}

func IsIso8601(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

func NoWhiteSpaces(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
}

// Register installs every custom rule the gateway's structs use.
func Register(validate *validator.Validate, phonePrefix string) {
	_ = validate.RegisterValidation("phoneprefix", PhonePrefix(phonePrefix))
	_ = validate.RegisterValidation("apidate", IsAPIDate)
	_ = validate.RegisterValidation("iso8601", IsIso8601)
	_ = validate.RegisterValidation("nospaces", NoWhiteSpaces)
}
