package app

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("passwordlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	return v
}

// isStrongPassword requires 8+ characters mixing lower, upper, digit and symbol.
func isStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

var fieldNames = map[string]string{
	"FirstName": "firstName",
	"LastName":  "lastName",
	"EmailID":   "emailId",
	"Password":  "password",
	"Age":       "age",
}

// describe turns the first validator failure into a caller facing message.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("Invalid input")
	}
	fe := verrs[0]
	name := fieldNames[fe.StructField()]
	if name == "" {
		name = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return invalid(fmt.Sprintf("%s is required", name))
	case "email":
		return invalid("Email is not valid")
	case "passwordlen":
		return invalid("Password is too long")
	case "strongpassword":
		return invalid("Password is not strong enough")
	}

	switch name {
	case "firstName":
		return invalid("firstName must be 3 to 20 characters")
	case "lastName":
		return invalid("lastName must be at most 20 characters")
	case "age":
		return invalid("age must be between 6 and 80")
	default:
		return invalid(fmt.Sprintf("%s is not valid", name))
	}
}
