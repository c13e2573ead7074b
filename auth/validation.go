package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/go-case-portal/internal/errors"
)

const (
	minPasswordLength   = 6
	minUsernameLength   = 3
	minPhoneLength      = 5
	minNationalIDLength = 3
)

// Validator checks sign-in and registration input before it is sent.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogin checks that an identifier and a plausible password are set.
func (v *Validator) ValidateLogin(req LoginRequest) error {
	if strings.TrimSpace(req.Identifier) == "" {
		return MissingIdentifierErr
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return ShortPasswordErr
	}
	return nil
}

// ValidateRegistration returns every problem with req joined together, so a
// form can show them all at once.
func (v *Validator) ValidateRegistration(req RegisterRequest) error {
	var errs []error

	if utf8.RuneCountInString(strings.TrimSpace(req.Username)) < minUsernameLength {
		errs = append(errs, ShortUsernameErr)
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		errs = append(errs, MissingNameErr)
	}
	if !validEmail(req.Email) {
		errs = append(errs, InvalidEmailErr)
	}
	if len(strings.TrimSpace(req.Phone)) < minPhoneLength {
		errs = append(errs, InvalidPhoneErr)
	}
	if len(strings.TrimSpace(req.NationalID)) < minNationalIDLength {
		errs = append(errs, InvalidNationalIDErr)
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		errs = append(errs, ShortPasswordErr)
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		errs = append(errs, PasswordMismatchErr)
	}

	return errors.Join(errs...)
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, "@")
}
