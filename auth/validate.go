package auth

import (
	"regexp"
	"strings"
	"unicode"
)

// FieldError describes a single validation failure, keyed by input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	namePattern  = regexp.MustCompile(`^[\p{L}\s]+$`)
	phonePattern = regexp.MustCompile(`^[0-9+\s()-]+$`)
)

// ValidateLogin checks and normalizes a login request in place.
func ValidateLogin(req *LoginRequest) []FieldError {
	var errs []FieldError

	req.Email = NormalizeEmail(req.Email)
	errs = append(errs, checkEmail(req.Email)...)

	switch {
	case req.Password == "":
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	case len(req.Password) < 6:
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 6 characters"})
	case len(req.Password) > 100:
		errs = append(errs, FieldError{Field: "password", Message: "password is too long"})
	}

	return errs
}

// ValidateRegister checks and normalizes a registration request in place.
func ValidateRegister(req *RegisterRequest) []FieldError {
	var errs []FieldError

	req.GivenName = strings.TrimSpace(req.GivenName)
	req.FamilyName = strings.TrimSpace(req.FamilyName)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = NormalizeEmail(req.Email)

	errs = append(errs, checkName("given_name", req.GivenName)...)
	errs = append(errs, checkName("family_name", req.FamilyName)...)
	errs = append(errs, checkEmail(req.Email)...)
	errs = append(errs, checkPassword(req.Password)...)
	errs = append(errs, checkPhone(req.Phone)...)

	return errs
}

func checkEmail(email string) []FieldError {
	switch {
	case email == "":
		return []FieldError{{Field: "email", Message: "email is required"}}
	case len(email) > 255:
		return []FieldError{{Field: "email", Message: "email is too long"}}
	case !emailPattern.MatchString(email):
		return []FieldError{{Field: "email", Message: "invalid email"}}
	}
	return nil
}

func checkName(field, value string) []FieldError {
	switch {
	case value == "":
		return []FieldError{{Field: field, Message: field + " is required"}}
	case len([]rune(value)) < 2:
		return []FieldError{{Field: field, Message: field + " must be at least 2 characters"}}
	case len([]rune(value)) > 50:
		return []FieldError{{Field: field, Message: field + " is too long"}}
	case !namePattern.MatchString(value):
		return []FieldError{{Field: field, Message: field + " may only contain letters"}}
	}
	return nil
}

func checkPassword(password string) []FieldError {
	switch {
	case password == "":
		return []FieldError{{Field: "password", Message: "password is required"}}
	case len(password) < 6:
		return []FieldError{{Field: "password", Message: "password must be at least 6 characters"}}
	case len(password) > 100:
		return []FieldError{{Field: "password", Message: "password is too long"}}
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return []FieldError{{Field: "password", Message: "password must contain an uppercase letter, a lowercase letter and a digit"}}
	}
	return nil
}

func checkPhone(phone string) []FieldError {
	switch {
	case phone == "":
		return []FieldError{{Field: "phone", Message: "phone is required"}}
	case len(phone) < 10:
		return []FieldError{{Field: "phone", Message: "phone must have at least 10 digits"}}
	case len(phone) > 15:
		return []FieldError{{Field: "phone", Message: "phone is too long"}}
	case !phonePattern.MatchString(phone):
		return []FieldError{{Field: "phone", Message: "phone may only contain digits and + - ( ) characters"}}
	}
	return nil
}
