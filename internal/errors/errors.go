package errors

import (
	"errors"
	"fmt"
)

// Common error types for the case portal client
var (
	// Storage errors
	ErrNotFound = errors.New("not found")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	// Token errors
	ErrInvalidToken    = errors.New("invalid token")
	ErrNoRefreshToken  = errors.New("no refresh token")
	ErrRefreshFailed   = errors.New("token refresh failed")
	ErrSessionRequired = errors.New("not signed in")

	// Authorization errors
	ErrUnknownRole = errors.New("unknown role")

	// Transport errors
	ErrMalformedResponse = errors.New("malformed response")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternal       = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
