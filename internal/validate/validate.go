// Package validate holds the client-side form validation that runs before
// any network call is made.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a tagged input struct and returns a single user-facing
// message for the first failing rule, or nil.
func Struct(input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.New("invalid input")
	}

	return errors.New(message(verrs[0]))
}

func message(fe validator.FieldError) string {
	field := humanize(fe.Field())

	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Enter a valid email address"
	case "min":
		if strings.Contains(fe.Field(), "Password") {
			return fmt.Sprintf("Password must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "eqfield":
		if fe.Field() == "PasswordConfirmation" {
			return "Passwords do not match"
		}
		return fmt.Sprintf("%s must match %s", field, humanize(fe.Param()))
	case "len":
		if fe.Field() == "OTP" {
			return "Enter the 6-digit code"
		}
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// humanize splits a CamelCase field name into spaced words, keeping
// initialisms intact ("UpiID" -> "Upi ID", "LawFirmName" -> "Law firm name").
func humanize(field string) string {
	var words []string
	start := 0
	runes := []rune(field)
	for i := 1; i < len(runes); i++ {
		if isUpper(runes[i]) && !isUpper(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))

	for i, w := range words {
		if i == 0 || w == strings.ToUpper(w) {
			continue
		}
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, " ")
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
