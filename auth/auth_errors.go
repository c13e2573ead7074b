package auth

import "errors"

var (
	MissingIdentifierErr = errors.New("please enter username, email, phone, or national ID")
	ShortPasswordErr     = errors.New("password must be at least 6 characters")
	PasswordMismatchErr  = errors.New("passwords do not match")
	ShortUsernameErr     = errors.New("username is required (min 3 chars)")
	MissingNameErr       = errors.New("first and last name are required")
	InvalidEmailErr      = errors.New("please enter a valid email")
	InvalidPhoneErr      = errors.New("phone is required")
	InvalidNationalIDErr = errors.New("national ID is required")
)
